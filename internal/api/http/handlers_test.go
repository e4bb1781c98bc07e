package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedock/backend/internal/filesystem"
	"github.com/filedock/backend/internal/infrastructure/logging"
	"github.com/filedock/backend/internal/jobs"
	"github.com/filedock/backend/internal/profiles"
)

type fixture struct {
	router *gin.Engine
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	log := logging.NewNop()
	driver := filesystem.New(filesystem.Options{Root: filepath.ToSlash(root), Logger: log})
	host := jobs.NewHost(driver, log, nil)
	store, err := profiles.Open(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandlers(driver, host, store, nil, log)
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/fs/list", h.List)
	router.POST("/fs/create", h.Create)
	router.POST("/fs/rename", h.Rename)
	router.POST("/fs/delete", h.Delete)
	router.POST("/fs/copy", h.Copy)
	router.GET("/fs/properties", h.Properties)
	router.GET("/fs/load", h.Load)
	router.POST("/fs/save", h.Save)
	router.GET("/fs/find", h.Find)
	router.POST("/jobs/compress", h.StartCompress)
	router.POST("/jobs/extract", h.StartExtract)
	router.GET("/jobs", h.ListJobs)
	router.GET("/jobs/:id", h.GetJob)
	router.POST("/jobs/:id/cancel", h.CancelJob)
	router.GET("/profiles", h.ListProfiles)
	router.POST("/profiles", h.SaveProfile)
	router.DELETE("/profiles/:id", h.DeleteProfile)

	return &fixture{router: router, root: filepath.ToSlash(root)}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRootReportsOnline(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, f.root, body["root"])
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/fs/create", gin.H{
		"path": f.root + "/notes.txt",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/fs/create", gin.H{
		"path": f.root + "/archive",
		"kind": "directory",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/fs/list?sort=name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	children := body["children"].([]any)
	require.Len(t, children, 2)
	assert.Equal(t, "archive", children[0].(map[string]any)["name"])
	assert.Equal(t, "notes.txt", children[1].(map[string]any)["name"])
}

func TestCreateConflictMapsTo409(t *testing.T) {
	f := newFixture(t)
	p := f.root + "/dup.txt"

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/fs/create", gin.H{"path": p}).Code)
	w := f.do(t, http.MethodPost, "/fs/create", gin.H{"path": p})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, p, decodeBody(t, w)["path"])
}

func TestListMissingMapsTo404(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/fs/list?path="+url.QueryEscape(f.root+"/ghost"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBadSortKeyMapsTo400(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/fs/list?sort=color", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveLoadRename(t *testing.T) {
	f := newFixture(t)
	p := f.root + "/doc.txt"

	w := f.do(t, http.MethodPost, "/fs/save", gin.H{
		"path": p,
		"text": "first line\nsecond line\n",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/fs/load?path="+url.QueryEscape(p), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "first line\nsecond line\n", decodeBody(t, w)["text"])

	w = f.do(t, http.MethodPost, "/fs/rename", gin.H{"path": p, "new_name": "renamed.txt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed.txt", decodeBody(t, w)["name"])
}

func TestSaveCRLF(t *testing.T) {
	f := newFixture(t)
	p := f.root + "/dos.txt"

	w := f.do(t, http.MethodPost, "/fs/save", gin.H{
		"path":        p,
		"text":        "a\nb\n",
		"line_ending": "crlf",
	})
	require.Equal(t, http.StatusOK, w.Code)

	raw, err := os.ReadFile(filepath.FromSlash(p))
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\n", string(raw))
}

func TestSaveUnknownLineEnding(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/fs/save", gin.H{
		"path":        f.root + "/x.txt",
		"text":        "a",
		"line_ending": "zigzag",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteThenPropertiesIs404(t *testing.T) {
	f := newFixture(t)
	p := f.root + "/gone.txt"
	require.NoError(t, os.WriteFile(filepath.FromSlash(p), []byte("x"), 0o644))

	w := f.do(t, http.MethodPost, "/fs/delete", gin.H{"path": p})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/fs/properties?path="+url.QueryEscape(p), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPropertiesCounts(t *testing.T) {
	f := newFixture(t)
	p := f.root + "/counted.txt"
	require.NoError(t, os.WriteFile(filepath.FromSlash(p), []byte("a b\n\ncd\n"), 0o644))

	w := f.do(t, http.MethodGet, "/fs/properties?path="+url.QueryEscape(p), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["line_count"])
	assert.Equal(t, float64(3), body["word_count"])
	assert.Equal(t, float64(8), body["char_count"])
}

func TestCopyConflict(t *testing.T) {
	f := newFixture(t)
	src := f.root + "/src.txt"
	destDir := f.root + "/dest"
	require.NoError(t, os.WriteFile(filepath.FromSlash(src), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.FromSlash(destDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.FromSlash(destDir+"/src.txt"), []byte("old"), 0o644))

	w := f.do(t, http.MethodPost, "/fs/copy", gin.H{"source": src, "dest_dir": destDir})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFind(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.FromSlash(f.root+"/a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.FromSlash(f.root+"/b.txt"), []byte("b"), 0o644))

	w := f.do(t, http.MethodGet, "/fs/find?pattern="+url.QueryEscape("*.go"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])
}

func TestExtractUnsupportedFailsJob(t *testing.T) {
	f := newFixture(t)
	p := f.root + "/bundle.tar"
	require.NoError(t, os.WriteFile(filepath.FromSlash(p), []byte("x"), 0o644))

	w := f.do(t, http.MethodPost, "/jobs/extract", gin.H{
		"source":   p,
		"dest_dir": f.root,
	})
	// Validation runs inside the job, so the start is accepted and the
	// failure shows up on the job record.
	require.Equal(t, http.StatusAccepted, w.Code)
	id := decodeBody(t, w)["id"].(string)

	require.Eventually(t, func() bool {
		jw := f.do(t, http.MethodGet, "/jobs/"+id, nil)
		if jw.Code != http.StatusOK {
			return false
		}
		return decodeBody(t, jw)["status"] == "failed"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCompressJobLifecycle(t *testing.T) {
	f := newFixture(t)
	src := f.root + "/a.txt"
	require.NoError(t, os.WriteFile(filepath.FromSlash(src), []byte("alpha"), 0o644))

	w := f.do(t, http.MethodPost, "/jobs/compress", gin.H{
		"sources":  []string{src},
		"dest_dir": f.root,
		"archive":  "out.zip",
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	id := decodeBody(t, w)["id"].(string)

	require.Eventually(t, func() bool {
		jw := f.do(t, http.MethodGet, "/jobs/"+id, nil)
		return jw.Code == http.StatusOK && decodeBody(t, jw)["status"] == "succeeded"
	}, 5*time.Second, 10*time.Millisecond)

	_, err := os.Stat(filepath.FromSlash(f.root + "/out.zip"))
	assert.NoError(t, err)

	lw := f.do(t, http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, lw.Code)
	assert.Len(t, decodeBody(t, lw)["jobs"].([]any), 1)
}

func TestCompressExistingArchiveMapsTo409(t *testing.T) {
	f := newFixture(t)
	src := f.root + "/a.txt"
	require.NoError(t, os.WriteFile(filepath.FromSlash(src), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.FromSlash(f.root+"/out.zip"), []byte("taken"), 0o644))

	w := f.do(t, http.MethodPost, "/jobs/compress", gin.H{
		"sources":  []string{src},
		"dest_dir": f.root,
		"archive":  "out.zip",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelUnknownJobIs404(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/jobs/nope/cancel", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/jobs/nope", nil).Code)
}

func TestProfileCRUD(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/profiles", gin.H{
		"name": "staging",
		"host": "staging.example.com",
		"port": 22,
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["id"].(string)
	require.NotEmpty(t, id)

	w = f.do(t, http.MethodGet, "/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["profiles"].([]any), 1)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/profiles/"+id, nil).Code)

	w = f.do(t, http.MethodGet, "/profiles", nil)
	body := decodeBody(t, w)
	assert.Nil(t, body["profiles"])
}

func TestProfileRequiresName(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/profiles", gin.H{"host": "h"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
