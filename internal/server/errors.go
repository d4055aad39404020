package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/screenverse/backend/internal/auth"
	"github.com/screenverse/backend/internal/rated"
	"github.com/screenverse/backend/internal/titles"
	"github.com/screenverse/backend/internal/users"
	"github.com/screenverse/backend/internal/watchlist"
)

// errorBody is the structured error payload: a machine-readable code plus a
// suggested client action, not just a status.
type errorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Code      string    `json:"error,omitempty"`
	Action    string    `json:"action,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP responses. Unexpected
// failures fall through to a generic 500 with a non-leaking message.
func (h *httpHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, users.ErrIdentityConflict):
		c.JSON(http.StatusConflict, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusConflict,
			Message:   err.Error(),
			Code:      "USER_ALREADY_EXISTS",
			Action:    "REDIRECT_TO_SIGNIN",
		})
	case errors.Is(err, users.ErrIdentityNotFound):
		c.JSON(http.StatusNotFound, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusNotFound,
			Message:   err.Error(),
			Code:      "USER_NOT_FOUND",
			Action:    "REDIRECT_TO_SIGNUP",
		})
	case errors.Is(err, auth.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusUnauthorized,
			Message:   "invalid credential",
			Code:      "INVALID_CREDENTIAL",
		})
	case errors.Is(err, users.ErrInvalidAssertion),
		errors.Is(err, watchlist.ErrInvalidItem),
		errors.Is(err, rated.ErrInvalidItem),
		errors.Is(err, rated.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusBadRequest,
			Message:   err.Error(),
		})
	case errors.Is(err, watchlist.ErrNotOwner), errors.Is(err, rated.ErrNotOwner):
		c.JSON(http.StatusForbidden, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusForbidden,
			Message:   "you don't have permission to touch this item",
		})
	case errors.Is(err, watchlist.ErrItemNotFound),
		errors.Is(err, rated.ErrItemNotFound),
		errors.Is(err, titles.ErrTitleNotFound):
		c.JSON(http.StatusNotFound, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusNotFound,
			Message:   err.Error(),
		})
	case errors.Is(err, titles.ErrUpstreamUnauthorized):
		c.JSON(http.StatusUnauthorized, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusUnauthorized,
			Message:   "upstream rejected the configured api key",
		})
	case errors.Is(err, titles.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusServiceUnavailable,
			Message:   "title metadata service unavailable",
		})
	default:
		h.logger.Error("unhandled request failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusInternalServerError,
			Message:   "internal server error",
		})
	}
}
