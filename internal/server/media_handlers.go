package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/screenverse/backend/internal/rated"
	"github.com/screenverse/backend/internal/watchlist"
)

type watchlistItemPayload struct {
	TitleID      int     `json:"titleId"`
	Name         string  `json:"name"`
	Watched      *bool   `json:"watched"`
	PlotOverview *string `json:"plotOverview"`
	Year         *int    `json:"year"`
	Type         *string `json:"type"`
	GenreName    *string `json:"genreName"`
	Poster       *string `json:"poster"`
}

type watchlistItemResponse struct {
	ID           int64  `json:"id"`
	TitleID      int    `json:"titleId"`
	Name         string `json:"name"`
	Watched      bool   `json:"watched"`
	PlotOverview string `json:"plotOverview,omitempty"`
	Year         int    `json:"year,omitempty"`
	Type         string `json:"type,omitempty"`
	GenreName    string `json:"genreName,omitempty"`
	Poster       string `json:"poster,omitempty"`
}

type ratedItemPayload struct {
	TitleID      int     `json:"titleId"`
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	Watched      *bool   `json:"watched"`
	PlotOverview *string `json:"plotOverview"`
	Year         *int    `json:"year"`
	Type         *string `json:"type"`
	GenreName    *string `json:"genreName"`
	Poster       *string `json:"poster"`
}

type ratedItemResponse struct {
	ID           int64   `json:"id"`
	TitleID      int     `json:"titleId"`
	Name         string  `json:"name"`
	Watched      bool    `json:"watched"`
	Rating       float64 `json:"rating"`
	PlotOverview string  `json:"plotOverview,omitempty"`
	Year         int     `json:"year,omitempty"`
	Type         string  `json:"type,omitempty"`
	GenreName    string  `json:"genreName,omitempty"`
	Poster       string  `json:"poster,omitempty"`
}

func watchlistResponse(item watchlist.Item) watchlistItemResponse {
	return watchlistItemResponse{
		ID:           item.ID,
		TitleID:      item.TitleID,
		Name:         item.Name,
		Watched:      item.Watched,
		PlotOverview: item.PlotOverview,
		Year:         item.Year,
		Type:         item.Type,
		GenreName:    item.GenreName,
		Poster:       item.Poster,
	}
}

func ratedResponse(item rated.Item) ratedItemResponse {
	return ratedItemResponse{
		ID:           item.ID,
		TitleID:      item.TitleID,
		Name:         item.Name,
		Watched:      item.Watched,
		Rating:       item.Rating,
		PlotOverview: item.PlotOverview,
		Year:         item.Year,
		Type:         item.Type,
		GenreName:    item.GenreName,
		Poster:       item.Poster,
	}
}

func watchlistRequest(payload watchlistItemPayload) watchlist.ItemRequest {
	return watchlist.ItemRequest{
		TitleID:      payload.TitleID,
		Name:         payload.Name,
		Watched:      payload.Watched,
		PlotOverview: payload.PlotOverview,
		Year:         payload.Year,
		Type:         payload.Type,
		GenreName:    payload.GenreName,
		Poster:       payload.Poster,
	}
}

func ratedRequest(payload ratedItemPayload) rated.ItemRequest {
	return rated.ItemRequest{
		TitleID:      payload.TitleID,
		Name:         payload.Name,
		Rating:       payload.Rating,
		Watched:      payload.Watched,
		PlotOverview: payload.PlotOverview,
		Year:         payload.Year,
		Type:         payload.Type,
		GenreName:    payload.GenreName,
		Poster:       payload.Poster,
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return id, true
}

func (h *httpHandler) handleListWatchlist(c *gin.Context) {
	principal, _ := principalFrom(c)
	items, err := h.watchlist.List(c.Request.Context(), principal.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response := make([]watchlistItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, watchlistResponse(item))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleAddWatchlist(c *gin.Context) {
	principal, _ := principalFrom(c)
	var payload watchlistItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	item, err := h.watchlist.Add(c.Request.Context(), principal.ID, watchlistRequest(payload))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, watchlistResponse(item))
}

func (h *httpHandler) handleUpdateWatchlist(c *gin.Context) {
	principal, _ := principalFrom(c)
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload watchlistItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	item, err := h.watchlist.Update(c.Request.Context(), principal.ID, itemID, watchlistRequest(payload))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, watchlistResponse(item))
}

func (h *httpHandler) handleDeleteWatchlist(c *gin.Context) {
	principal, _ := principalFrom(c)
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.watchlist.Delete(c.Request.Context(), principal.ID, itemID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleMarkWatched(c *gin.Context) {
	principal, _ := principalFrom(c)
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	watched, err := strconv.ParseBool(c.Query("watched"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	item, err := h.watchlist.MarkWatched(c.Request.Context(), principal.ID, itemID, watched)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, watchlistResponse(item))
}

func (h *httpHandler) handleListRated(c *gin.Context) {
	principal, _ := principalFrom(c)
	items, err := h.rated.List(c.Request.Context(), principal.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response := make([]ratedItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, ratedResponse(item))
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleRateTitle(c *gin.Context) {
	principal, _ := principalFrom(c)
	var payload ratedItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	item, err := h.rated.Rate(c.Request.Context(), principal.ID, ratedRequest(payload))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ratedResponse(item))
}

func (h *httpHandler) handleUpdateRated(c *gin.Context) {
	principal, _ := principalFrom(c)
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload ratedItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	item, err := h.rated.Update(c.Request.Context(), principal.ID, itemID, ratedRequest(payload))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratedResponse(item))
}

func (h *httpHandler) handleDeleteRated(c *gin.Context) {
	principal, _ := principalFrom(c)
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.rated.Delete(c.Request.Context(), principal.ID, itemID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
