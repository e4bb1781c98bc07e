package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filedock/backend/internal/profiles"
)

// ListProfiles returns every saved connection profile.
func (h *Handlers) ListProfiles(c *gin.Context) {
	out, err := h.store.LoadAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

// SaveProfile inserts or updates a connection profile.
func (h *Handlers) SaveProfile(c *gin.Context) {
	var p profiles.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile name required"})
		return
	}
	saved, err := h.store.Upsert(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteProfile removes a profile by ID.
func (h *Handlers) DeleteProfile(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
