package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/screenverse/backend/internal/auth"
	"github.com/screenverse/backend/internal/users"
)

type assertionPayload struct {
	ProviderUserID string `json:"providerUserId" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProviderName   string `json:"providerName" binding:"required"`
}

type refreshPayload struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type sessionResponsePayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	IsNewUser    bool   `json:"isNewUser"`
}

type userCheckResponsePayload struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

func sessionResponse(session auth.Session) sessionResponsePayload {
	return sessionResponsePayload{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		UserID:       session.UserID,
		Email:        session.Email,
		FirstName:    session.FirstName,
		LastName:     session.LastName,
		IsNewUser:    session.IsNewUser,
	}
}

// handleStartSession serves the unified sign-up/sign-in entry points. The
// identity provider already vouched for the assertion; the backend's job is
// an idempotent upsert plus token issuance.
func (h *httpHandler) handleStartSession(c *gin.Context) {
	var request assertionPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	session, err := h.sessions.StartSession(c.Request.Context(), users.ExternalAssertion{
		ProviderUserID: request.ProviderUserID,
		Email:          request.Email,
		FirstName:      request.FirstName,
		LastName:       request.LastName,
		AuthProvider:   request.ProviderName,
	})
	if err != nil {
		h.logger.Warn("session start failed", zap.String("email", request.Email), zap.Error(err))
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *httpHandler) handleRefresh(c *gin.Context) {
	var request refreshPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.RefreshToken) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	session, err := h.sessions.Renew(c.Request.Context(), request.RefreshToken)
	if err != nil {
		h.logger.Warn("session renewal failed", zap.Error(err))
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *httpHandler) handleCheckUser(c *gin.Context) {
	email := c.Query("email")
	providerUserID := c.Query("providerUserId")

	exists, message, err := h.users.Exists(c.Request.Context(), email, providerUserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userCheckResponsePayload{Exists: exists, Message: message})
}
