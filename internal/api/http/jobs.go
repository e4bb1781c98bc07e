package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filedock/backend/internal/filesystem"
)

type compressRequest struct {
	Name    string   `json:"name"`
	Sources []string `json:"sources" binding:"required"`
	DestDir string   `json:"dest_dir" binding:"required"`
	Archive string   `json:"archive" binding:"required"`
}

// StartCompress launches an archive compression job.
func (h *Handlers) StartCompress(c *gin.Context) {
	var req compressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Sources) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one source required"})
		return
	}
	entries := make([]filesystem.Entry, 0, len(req.Sources)+1)
	for _, src := range req.Sources {
		entries = append(entries, filesystem.Entry{Path: src})
	}
	entries = append(entries, filesystem.Entry{Path: req.DestDir})

	name := req.Name
	if name == "" {
		name = "compress " + req.Archive
	}
	// The job outlives the HTTP request, so it runs on the background
	// context and is stopped through the host's cancel endpoint.
	job, err := h.host.StartCompress(context.Background(), name, entries, req.Archive)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

type extractRequest struct {
	Name    string `json:"name"`
	Source  string `json:"source" binding:"required"`
	DestDir string `json:"dest_dir" binding:"required"`
}

// StartExtract launches an archive extraction job.
func (h *Handlers) StartExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := req.Name
	if name == "" {
		name = "extract " + req.Source
	}
	job, err := h.host.StartExtract(context.Background(), name, []filesystem.Entry{
		{Path: req.Source},
		{Path: req.DestDir},
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// ListJobs returns all known jobs.
func (h *Handlers) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.host.List()})
}

// GetJob returns one job's current state.
func (h *Handlers) GetJob(c *gin.Context) {
	job, ok := h.host.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// CancelJob requests cancellation of a running job.
func (h *Handlers) CancelJob(c *gin.Context) {
	if !h.host.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no running job with that id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}
