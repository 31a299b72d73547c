package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
)

// Adapter bridges net/http to a Handler. It reads the body up front, builds
// the Request record, and writes the Response back with an exact
// Content-Length. A mutex serializes requests so the handler sees the same
// one-at-a-time world a single accept loop would give it, whatever the
// listener does with connections.
type Adapter struct {
	handler Handler
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewAdapter wraps handler for use as an http.Handler.
func NewAdapter(handler Handler, logger *slog.Logger) *Adapter {
	return &Adapter{handler: handler, logger: logger}
}

func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeResponse(w, errorPage(http.StatusNotImplemented,
			fmt.Sprintf("Unsupported method ('%s')", r.Method)))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeResponse(w, errorPage(http.StatusBadRequest, "malformed request body"))
		return
	}

	rawPath := r.RequestURI
	if rawPath == "" {
		rawPath = r.URL.RequestURI()
	}
	protocol := "HTTP"
	if r.TLS != nil {
		protocol = "HTTPS"
	}

	req := &Request{
		Method:        r.Method,
		RawPath:       rawPath,
		Header:        r.Header,
		Body:          body,
		ContentLength: r.ContentLength,
		RemoteAddr:    r.RemoteAddr,
		Protocol:      protocol,
	}

	resp, err := a.handler.Handle(req)
	switch {
	case errors.Is(err, ErrMalformedRequest):
		writeResponse(w, errorPage(http.StatusBadRequest, err.Error()))
		return
	case err != nil:
		a.logger.Error("handler failed", "error", err)
		writeResponse(w, errorPage(http.StatusInternalServerError, "handler failed"))
		return
	case resp == nil:
		a.logger.Error("handler returned no response")
		writeResponse(w, errorPage(http.StatusInternalServerError, "handler returned no response"))
		return
	}
	writeResponse(w, resp)
}

// writeResponse sends resp, always with Content-Length equal to the body
// length.
func writeResponse(w http.ResponseWriter, resp *Response) {
	for key, vals := range resp.Extra {
		for _, val := range vals {
			w.Header().Add(key, val)
		}
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}
