// Package http exposes the filesystem driver, job host and profile store
// over a JSON API consumed by the editor UI.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filedock/backend/internal/filesystem"
	"github.com/filedock/backend/internal/infrastructure/logging"
	"github.com/filedock/backend/internal/infrastructure/monitoring"
	"github.com/filedock/backend/internal/jobs"
	"github.com/filedock/backend/internal/profiles"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	driver  *filesystem.Driver
	host    *jobs.Host
	store   *profiles.Store
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(driver *filesystem.Driver, host *jobs.Host, store *profiles.Store, metrics *monitoring.Metrics, log *logging.Logger) *Handlers {
	return &Handlers{driver: driver, host: host, store: store, metrics: metrics, log: log}
}

// record registers one driver call against the operation metrics.
func (h *Handlers) record(operation string, start time.Time, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		if code := filesystem.CodeOf(err); code != 0 {
			outcome = code.String()
		} else {
			outcome = "error"
		}
	}
	h.metrics.RecordDriverOp(operation, outcome, time.Since(start))
}

// Root handles the health check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Filedock Backend",
		"root":    h.driver.Root(),
	})
}

// statusFor maps a driver taxonomy failure to an HTTP status.
func statusFor(err error) int {
	switch filesystem.CodeOf(err) {
	case filesystem.CodeNotFound:
		return http.StatusNotFound
	case filesystem.CodeAlreadyExists:
		return http.StatusConflict
	case filesystem.CodeDirectoryExpected:
		return http.StatusBadRequest
	case filesystem.CodeUnsupportedArchiveFormat,
		filesystem.CodeEncryptedArchive,
		filesystem.CodeSplitArchive,
		filesystem.CodeInvalidArchive:
		return http.StatusUnprocessableEntity
	case filesystem.CodeOutOfMemory:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"path":  filesystem.PathOf(err),
	})
}

// List lists a directory's immediate children, optionally sorted.
func (h *Handlers) List(c *gin.Context) {
	start := time.Now()
	tree, err := h.driver.List(c.Request.Context(), c.Query("path"))
	h.record("list", start, err)
	if err != nil {
		fail(c, err)
		return
	}
	if key := c.Query("sort"); key != "" {
		if err := filesystem.SortEntries(tree.Children, filesystem.SortKey(key)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, tree)
}

type createRequest struct {
	Path string `json:"path" binding:"required"`
	Kind string `json:"kind"`
}

// Create makes a new file or directory.
func (h *Handlers) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := filesystem.KindFile
	if req.Kind == "directory" {
		kind = filesystem.KindDirectory
	}
	start := time.Now()
	entry, err := h.driver.Create(c.Request.Context(), filesystem.Entry{Path: req.Path, Kind: kind})
	h.record("create", start, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type renameRequest struct {
	Path    string `json:"path" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

// Rename renames an entry within its parent.
func (h *Handlers) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	entry, err := h.driver.Rename(c.Request.Context(), filesystem.Entry{Path: req.Path}, req.NewName)
	h.record("rename", start, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type pathRequest struct {
	Path string `json:"path" binding:"required"`
}

// Delete removes an entry recursively and returns its parent.
func (h *Handlers) Delete(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	parent, err := h.driver.Delete(c.Request.Context(), filesystem.Entry{Path: req.Path})
	h.record("delete", start, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, parent)
}

type copyRequest struct {
	Source  string `json:"source" binding:"required"`
	DestDir string `json:"dest_dir" binding:"required"`
}

// Copy duplicates an entry under a destination directory.
func (h *Handlers) Copy(c *gin.Context) {
	var req copyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	entry, err := h.driver.Copy(c.Request.Context(),
		filesystem.Entry{Path: req.Source},
		filesystem.Entry{Path: req.DestDir})
	h.record("copy", start, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Properties returns display metadata for an entry.
func (h *Handlers) Properties(c *gin.Context) {
	start := time.Now()
	props, err := h.driver.Properties(c.Request.Context(), filesystem.Entry{Path: c.Query("path")})
	h.record("properties", start, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

// Load reads a file as text with optional charset detection.
func (h *Handlers) Load(c *gin.Context) {
	params := filesystem.DefaultTextParams()
	if cs := c.Query("charset"); cs != "" {
		params.Charset = cs
		params.DetectCharset = false
	}
	if c.Query("detect") == "true" {
		params.DetectCharset = true
	}
	start := time.Now()
	text, err := h.driver.Load(c.Request.Context(), filesystem.Entry{Path: c.Query("path")}, params)
	h.record("load", start, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": c.Query("path"), "text": text})
}

type saveRequest struct {
	Path       string `json:"path" binding:"required"`
	Text       string `json:"text"`
	Charset    string `json:"charset"`
	LineEnding string `json:"line_ending"`
}

// Save writes text to a file, creating it and any missing parents.
func (h *Handlers) Save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params := filesystem.DefaultTextParams()
	params.DetectCharset = false
	if req.Charset != "" {
		params.Charset = req.Charset
	}
	switch req.LineEnding {
	case "crlf":
		params.LineEnding = filesystem.CRLF
	case "cr":
		params.LineEnding = filesystem.CR
	case "", "lf":
		params.LineEnding = filesystem.LF
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown line ending"})
		return
	}
	start := time.Now()
	err := h.driver.Save(c.Request.Context(), filesystem.Entry{Path: req.Path}, req.Text, params)
	h.record("save", start, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "path": req.Path})
}

// Find matches entries under the root against a glob pattern.
func (h *Handlers) Find(c *gin.Context) {
	pattern := c.Query("pattern")
	if pattern == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pattern parameter required"})
		return
	}
	start := time.Now()
	entries, err := h.driver.Find(c.Request.Context(), pattern)
	h.record("find", start, err)
	if err != nil {
		if filesystem.CodeOf(err) != 0 {
			fail(c, err)
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"pattern": pattern, "entries": entries, "count": len(entries)})
}
