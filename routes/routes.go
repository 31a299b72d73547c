// Package routes assembles the HTTP handler chain for the server.
package routes

import (
	"log/slog"
	"net/http"

	"github.com/jobri720/webserver/config"
	"github.com/jobri720/webserver/handlers"
)

// New composes the request-handling chain: panic recovery around request
// logging around the handler adapter. A nil handler selects the default
// dispatcher. There is deliberately no ServeMux in front: path cleaning and
// trailing-slash redirects would rewrite the URL forms the handler keys on.
func New(cfg *config.Config, logger *slog.Logger, handler handlers.Handler) http.Handler {
	if handler == nil {
		handler = handlers.New(cfg, logger)
	}
	chain := http.Handler(handlers.NewAdapter(handler, logger))
	chain = handlers.LoggingMiddleware(logger, chain)
	chain = handlers.RecoveryMiddleware(logger, chain)
	return chain
}
