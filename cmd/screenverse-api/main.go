package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/screenverse/backend/internal/auth"
	"github.com/screenverse/backend/internal/config"
	"github.com/screenverse/backend/internal/database"
	"github.com/screenverse/backend/internal/logging"
	"github.com/screenverse/backend/internal/rated"
	"github.com/screenverse/backend/internal/server"
	"github.com/screenverse/backend/internal/titles"
	"github.com/screenverse/backend/internal/users"
	"github.com/screenverse/backend/internal/watchlist"
)

const tokenIssuerName = "screenverse-api"

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "screenverse-api",
		Short: "ScreenVerse watchlist and rating backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("signing-secret", "", "Token signing secret (overrides env)")
	cmd.PersistentFlags().Int("access-ttl-minutes", defaults.GetInt("auth.access_ttl_minutes"), "Access token TTL in minutes")
	cmd.PersistentFlags().Int("refresh-ttl-hours", defaults.GetInt("auth.refresh_ttl_hours"), "Refresh token TTL in hours")
	cmd.PersistentFlags().String("watchmode-api-key", "", "WatchMode API key (overrides env)")
	cmd.PersistentFlags().String("watchmode-base-url", defaults.GetString("watchmode.base_url"), "WatchMode API base URL")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
	bindFlag(cmd, "auth.access_ttl_minutes", "access-ttl-minutes")
	bindFlag(cmd, "auth.refresh_ttl_hours", "refresh-ttl-hours")
	bindFlag(cmd, "watchmode.api_key", "watchmode-api-key")
	bindFlag(cmd, "watchmode.base_url", "watchmode-base-url")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	userService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		return err
	}

	tokenCodec, err := auth.NewTokenCodec(auth.TokenCodecConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        tokenIssuerName,
		AccessTTL:     appConfig.AccessTokenTTL,
		RefreshTTL:    appConfig.RefreshTokenTTL,
	})
	if err != nil {
		return err
	}

	sessionIssuer, err := auth.NewSessionIssuer(userService, tokenCodec)
	if err != nil {
		return err
	}

	watchlistService, err := watchlist.NewService(watchlist.ServiceConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}

	ratedService, err := rated.NewService(rated.ServiceConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}

	titlesClient, err := titles.NewClient(titles.ClientConfig{
		APIKey:  appConfig.WatchModeAPIKey,
		BaseURL: appConfig.WatchModeBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenVerifier:    tokenCodec,
		SessionService:   sessionIssuer,
		UserService:      userService,
		WatchlistService: watchlistService,
		RatedService:     ratedService,
		TitlesClient:     titlesClient,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
