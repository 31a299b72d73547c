package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func TestHandle_WebserverInfo(t *testing.T) {
	d, _ := newTestDispatcher(t)

	for _, path := range []string{"/webserver/info", "/webserver/info/"} {
		req := newTestRequest(http.MethodGet, path)
		req.RemoteAddr = "127.0.0.1:54321"
		resp, err := d.Handle(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.Status, "path=%q", path)
		assert.Equal(t, "text/html", resp.ContentType)
		body := string(resp.Body)
		assert.Contains(t, body, "Configuration Options")
		assert.Contains(t, body, "--port")
		assert.Contains(t, body, "--webdir")
		assert.Contains(t, body, "Server Information")
		assert.Contains(t, body, "urlpath")
		assert.Contains(t, body, "127.0.0.1:54321")
		assert.Contains(t, body, "Server Runtime")
		assert.Contains(t, body, "go_version")
	}
}

func TestHandle_InfoPatternIsAnchored(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/webserver/information"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestHandle_SystemName(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/system/name"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/plain", resp.ContentType)
	assert.NotEmpty(t, resp.Body)
}

func TestHandle_RawFile(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeFile(t, dir, "page.html", "<p>raw</p>")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/page.html@"))
	require.NoError(t, err)

	// Raw view always comes back as text/plain, whatever the real type.
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/plain", resp.ContentType)
	assert.Equal(t, "<p>raw</p>", string(resp.Body))
}

func TestHandle_RawDirBypassesIndex(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeFile(t, dir, "index.html", "<p>index</p>")
	writeFile(t, dir, "other.txt", "x")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/@"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/html", resp.ContentType)
	body := string(resp.Body)
	assert.NotContains(t, body, "<p>index</p>")
	assert.Contains(t, body, `<a href="/other.txt">other.txt</a>`)
}

func TestHandle_RawMissing(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/gone.txt@"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestHandle_ExecScript(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeScript(t, dir, "script.sh", "#!/bin/sh\necho hello\nexit 3\n")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/script.sh!"))
	require.NoError(t, err)

	// The exit status is ignored at the protocol level.
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/plain", resp.ContentType)
	assert.Equal(t, "hello\n", string(resp.Body))
}

func TestHandle_ExecContentTypeParam(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeScript(t, dir, "script.sh", "#!/bin/sh\necho '<b>bold</b>'\n")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/script.sh!?content-type=text/html"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "<b>bold</b>\n", string(resp.Body))
}

func TestHandle_ExecCapturesStderr(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeScript(t, dir, "script.sh", "#!/bin/sh\necho out\necho err 1>&2\n")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/script.sh!"))
	require.NoError(t, err)

	assert.Contains(t, string(resp.Body), "out")
	assert.Contains(t, string(resp.Body), "err")
}

func TestHandle_ExecMissing(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/gone.sh!"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Contains(t, string(resp.Body), "Not found:")
}

func TestHandle_ExecDirectoryRefused(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeFile(t, dir, "sub/x.txt", "x")

	resp, err := d.Handle(newTestRequest(http.MethodGet, "/sub!"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}
