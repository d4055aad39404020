package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/screenverse/backend/internal/users"
)

type userResponsePayload struct {
	ID             int64  `json:"id"`
	ProviderUserID string `json:"providerUserId"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	ProviderName   string `json:"providerName"`
}

func userResponse(user users.User) userResponsePayload {
	return userResponsePayload{
		ID:             user.ID,
		ProviderUserID: user.ProviderUserID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		ProviderName:   user.AuthProvider,
	}
}

func (h *httpHandler) handleListUsers(c *gin.Context) {
	all, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response := make([]userResponsePayload, 0, len(all))
	for _, user := range all {
		response = append(response, userResponse(user))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleGetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

func (h *httpHandler) handleUpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var request assertionPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), id, users.ExternalAssertion{
		ProviderUserID: request.ProviderUserID,
		Email:          request.Email,
		FirstName:      request.FirstName,
		LastName:       request.LastName,
		AuthProvider:   request.ProviderName,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

func (h *httpHandler) handleDeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
