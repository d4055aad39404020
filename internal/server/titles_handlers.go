package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleSearchTitles(c *gin.Context) {
	searchValue := strings.TrimSpace(c.Query("searchValue"))
	if searchValue == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "searchValue is required"})
		return
	}
	searchField := c.DefaultQuery("searchField", "name")

	response, err := h.titles.SearchTitles(c.Request.Context(), searchValue, searchField)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleTitleDetails(c *gin.Context) {
	titleID, err := strconv.Atoi(c.Param("titleId"))
	if err != nil || titleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_title_id"})
		return
	}

	details, err := h.titles.TitleDetails(c.Request.Context(), titleID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
