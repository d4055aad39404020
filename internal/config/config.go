package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "SCREENVERSE"
	defaultHTTPAddress     = "0.0.0.0:8080"
	defaultDatabasePath    = "screenverse.db"
	defaultLogLevel        = "info"
	defaultAccessTTL       = 2 * time.Hour
	defaultRefreshTTL      = 7 * 24 * time.Hour
	defaultWatchModeAPIURL = "https://api.watchmode.com/v1"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress      string
	DatabasePath     string
	LogLevel         string
	SigningSecret    string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	WatchModeAPIKey  string
	WatchModeBaseURL string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("auth.access_ttl_minutes", int(defaultAccessTTL.Minutes()))
	configViper.SetDefault("auth.refresh_ttl_hours", int(defaultRefreshTTL.Hours()))
	configViper.SetDefault("watchmode.base_url", defaultWatchModeAPIURL)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:      configViper.GetString("http.address"),
		DatabasePath:     configViper.GetString("database.path"),
		LogLevel:         configViper.GetString("log.level"),
		SigningSecret:    configViper.GetString("auth.signing_secret"),
		AccessTokenTTL:   time.Duration(configViper.GetInt("auth.access_ttl_minutes")) * time.Minute,
		RefreshTokenTTL:  time.Duration(configViper.GetInt("auth.refresh_ttl_hours")) * time.Hour,
		WatchModeAPIKey:  configViper.GetString("watchmode.api_key"),
		WatchModeBaseURL: configViper.GetString("watchmode.base_url"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_ttl_minutes must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("auth.refresh_ttl_hours must be positive")
	}
	if strings.TrimSpace(c.WatchModeAPIKey) == "" {
		return fmt.Errorf("watchmode.api_key is required")
	}
	if strings.TrimSpace(c.WatchModeBaseURL) == "" {
		return fmt.Errorf("watchmode.base_url is required")
	}
	return nil
}
