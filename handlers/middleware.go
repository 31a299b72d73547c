package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// statusWriter captures the status code and body size for request logging.
type statusWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.status = code
		sw.ResponseWriter.WriteHeader(code)
		sw.written = true
	}
}

func (sw *statusWriter) Write(data []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(sw.status)
	}
	n, err := sw.ResponseWriter.Write(data)
	sw.bytes += n
	return n, err
}

// LoggingMiddleware tags each request with an ID, echoes it as X-Request-Id,
// and logs one line per completed request.
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(sw, r)

		logger.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.RequestURI,
			"remote", r.RemoteAddr,
			"status", sw.status,
			"bytes", sw.bytes,
			"duration", time.Since(start))
	})
}

// RecoveryMiddleware converts a panic below it into a 500 response instead
// of tearing down the connection.
func RecoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered", "error", v, "path", r.RequestURI)
				writeResponse(w, errorPage(http.StatusInternalServerError, "internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
