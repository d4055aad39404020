package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/screenverse/backend/internal/auth"
	"github.com/screenverse/backend/internal/rated"
	"github.com/screenverse/backend/internal/titles"
	"github.com/screenverse/backend/internal/users"
	"github.com/screenverse/backend/internal/watchlist"
)

const (
	principalContextKey = "screenverse_user"
	requestIDHeader     = "X-Request-ID"
)

var (
	errMissingTokenVerifier  = errors.New("token verifier dependency required")
	errMissingSessionService = errors.New("session service dependency required")
	errMissingUserService    = errors.New("user service dependency required")
)

// TokenVerifier verifies bearer tokens presented on protected routes.
type TokenVerifier interface {
	Verify(token string) (auth.TokenClaims, bool)
}

// SessionService issues and renews stateless sessions.
type SessionService interface {
	StartSession(ctx context.Context, assertion users.ExternalAssertion) (auth.Session, error)
	Renew(ctx context.Context, refreshToken string) (auth.Session, error)
}

// Dependencies bundles everything the HTTP surface needs.
type Dependencies struct {
	TokenVerifier    TokenVerifier
	SessionService   SessionService
	UserService      *users.Service
	WatchlistService *watchlist.Service
	RatedService     *rated.Service
	TitlesClient     *titles.Client
	Logger           *zap.Logger
}

// NewHTTPHandler wires the full route table.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenVerifier == nil {
		return nil, errMissingTokenVerifier
	}
	if deps.SessionService == nil {
		return nil, errMissingSessionService
	}
	if deps.UserService == nil {
		return nil, errMissingUserService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		verifier:  deps.TokenVerifier,
		sessions:  deps.SessionService,
		users:     deps.UserService,
		watchlist: deps.WatchlistService,
		rated:     deps.RatedService,
		titles:    deps.TitlesClient,
		logger:    logger,
	}

	// The principal binding runs on every request and never rejects; routes
	// that require a user enforce that themselves.
	router.Use(handler.bindPrincipal)

	authRoutes := router.Group("/auth")
	authRoutes.POST("/signup", handler.handleStartSession)
	authRoutes.POST("/clerk/signin", handler.handleStartSession)
	authRoutes.POST("/clerk/auth", handler.handleStartSession)
	authRoutes.POST("/refresh", handler.handleRefresh)
	authRoutes.GET("/check-user", handler.handleCheckUser)

	api := router.Group("/api")
	api.Use(handler.requireUser)
	api.GET("/watchlist", handler.handleListWatchlist)
	api.POST("/watchlist", handler.handleAddWatchlist)
	api.PUT("/watchlist/:id", handler.handleUpdateWatchlist)
	api.DELETE("/watchlist/:id", handler.handleDeleteWatchlist)
	api.PATCH("/watchlist/:id/watched", handler.handleMarkWatched)
	api.GET("/rated", handler.handleListRated)
	api.POST("/rated", handler.handleRateTitle)
	api.PUT("/rated/:id", handler.handleUpdateRated)
	api.DELETE("/rated/:id", handler.handleDeleteRated)
	api.GET("/search", handler.handleSearchTitles)
	api.GET("/title/:titleId", handler.handleTitleDetails)

	userRoutes := router.Group("/users")
	userRoutes.Use(handler.requireUser)
	userRoutes.GET("", handler.handleListUsers)
	userRoutes.GET("/:id", handler.handleGetUser)
	userRoutes.PUT("/:id", handler.handleUpdateUser)
	userRoutes.DELETE("/:id", handler.handleDeleteUser)

	return router, nil
}

type httpHandler struct {
	verifier  TokenVerifier
	sessions  SessionService
	users     *users.Service
	watchlist *watchlist.Service
	rated     *rated.Service
	titles    *titles.Client
	logger    *zap.Logger
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// bindPrincipal extracts and verifies a bearer token, resolves the subject to
// a stored user, and binds that user to the request. Any failure leaves the
// request anonymous and continues; rejection happens per-route.
func (h *httpHandler) bindPrincipal(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.Next()
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.Next()
		return
	}
	claims, ok := h.verifier.Verify(token)
	if !ok {
		h.logger.Debug("bearer token verification failed, continuing anonymous")
		c.Next()
		return
	}
	user, err := h.users.FindByEmail(c.Request.Context(), claims.Subject)
	if err != nil {
		if !errors.Is(err, users.ErrIdentityNotFound) {
			h.logger.Warn("principal lookup failed", zap.Error(err))
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, user)
	c.Next()
}

func (h *httpHandler) requireUser(c *gin.Context) {
	if _, ok := principalFrom(c); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func principalFrom(c *gin.Context) (users.User, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return users.User{}, false
	}
	user, ok := value.(users.User)
	return user, ok
}
