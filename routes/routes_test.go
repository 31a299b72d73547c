package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobri720/webserver/config"
	"github.com/jobri720/webserver/handlers"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.WebDir = t.TempDir()
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type panicHandler struct{}

func (panicHandler) Handle(req *handlers.Request) (*handlers.Response, error) {
	panic("handler exploded")
}

func TestNew_DefaultHandlerServes(t *testing.T) {
	cfg := testConfig(t)
	chain := New(cfg, discardLogger(), nil)

	req := httptest.NewRequest(http.MethodGet, "/webserver/info", nil)
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Configuration Options")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestNew_CustomHandlerWins(t *testing.T) {
	cfg := testConfig(t)
	custom := handlers.HandlerFunc(func(req *handlers.Request) (*handlers.Response, error) {
		return &handlers.Response{
			Status:      http.StatusTeapot,
			ContentType: "text/plain",
			Body:        []byte("custom"),
		}, nil
	})
	chain := New(cfg, discardLogger(), custom)

	w := httptest.NewRecorder()
	chain.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "custom", w.Body.String())
}

func TestNew_RecoveryWired(t *testing.T) {
	cfg := testConfig(t)
	chain := New(cfg, discardLogger(), panicHandler{})

	w := httptest.NewRecorder()
	chain.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNew_NoPathRewriting(t *testing.T) {
	cfg := testConfig(t)
	var seen string
	capture := handlers.HandlerFunc(func(req *handlers.Request) (*handlers.Response, error) {
		seen = req.RawPath
		return &handlers.Response{Status: http.StatusOK, ContentType: "text/plain", Body: nil}, nil
	})
	chain := New(cfg, discardLogger(), capture)

	// A mux would clean this path or redirect; the chain must not.
	req := httptest.NewRequest(http.MethodGet, "/dir/index.html@", nil)
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/dir/index.html@", seen)
}
