package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobri720/webserver/config"
)

// newTestDispatcher builds a Dispatcher over a fresh web root.
func newTestDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.WebDir = dir
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(cfg, logger), dir
}

func TestHandle_IndexFallback(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeFile(t, dir, "index.html", "<p>hi</p>")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "<p>hi</p>", string(resp.Body))
}

func TestHandle_DirWithAndWithoutSlash(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeFile(t, dir, "sub/index.html", "<p>sub</p>")

	for _, path := range []string{"/sub", "/sub/", "/sub/index.html"} {
		resp, err := d.Handle(newTestRequest(http.MethodGet, path))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status, "path=%q", path)
		assert.Equal(t, "<p>sub</p>", string(resp.Body), "path=%q", path)
	}
}

func TestHandle_FileBytesUnchanged(t *testing.T) {
	d, dir := newTestDispatcher(t)
	content := "line one\nline two\x00\x01binary tail"
	writeFile(t, dir, "data.bin", content)

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/data.bin"))
	require.NoError(t, err)

	want, readErr := os.ReadFile(filepath.Join(dir, "data.bin"))
	require.NoError(t, readErr)
	assert.Equal(t, want, resp.Body)
	assert.Equal(t, "application/octet-stream", resp.ContentType)
}

func TestHandle_NotFound(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/nope.txt"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Contains(t, string(resp.Body), "404 Not Found")
}

func TestHandle_IndexFileMayBeTemplate(t *testing.T) {
	d, dir := newTestDispatcher(t)
	d.cfg.IndexFiles = []string{"index.tmpl"}
	writeFile(t, dir, "sub/index.tmpl", "Hi {n}")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/sub?n=5"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "Hi 5", string(resp.Body))
}

func TestHandle_BracesInPlainHTMLAreLiteral(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeFile(t, dir, "page.html", "literal {x} stays")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/page.html?x=5"))
	require.NoError(t, err)

	// Only .tmpl files are rendered.
	assert.Equal(t, "literal {x} stays", string(resp.Body))
}

func TestHandle_TraversalStaysInRoot(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeFile(t, dir, "safe.txt", "safe")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/../../safe.txt"))
	require.NoError(t, err)

	// ".." segments are normalized away, so the path resolves inside the
	// web root instead of above it.
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "safe", string(resp.Body))
}

func TestHandle_MalformedPostPropagates(t *testing.T) {
	d, _ := newTestDispatcher(t)

	req := newTestRequest(http.MethodPost, "/anything")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Body = []byte("a=1")
	req.ContentLength = -1

	resp, err := d.Handle(req)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrMalformedRequest)
}
