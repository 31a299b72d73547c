package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// exampleHandler is the source emitted by the generate subcommand: a
// compiled-in replacement for the default dispatcher that users copy into
// their own tree and adapt.
const exampleHandler = `package main

import (
	"log/slog"
	"net/http"

	"github.com/jobri720/webserver/config"
	"github.com/jobri720/webserver/handlers"
)

// ExampleHandler answers /hello itself and delegates every other request to
// the default dispatcher. Use it as a starting point for site-specific
// behavior. Settings passed with --extra key=value show up in cfg.Extra.
//
// Wire it up in run() by replacing the nil handler:
//
//	return newServer(cfg, logger, NewExampleHandler(cfg, logger)).Run(ctx)
type ExampleHandler struct {
	cfg      *config.Config
	logger   *slog.Logger
	fallback handlers.Handler
}

// NewExampleHandler builds the handler around the resolved configuration.
func NewExampleHandler(cfg *config.Config, logger *slog.Logger) *ExampleHandler {
	return &ExampleHandler{
		cfg:      cfg,
		logger:   logger,
		fallback: handlers.New(cfg, logger),
	}
}

// Handle implements handlers.Handler. The request arrives unresolved; the
// default dispatcher does its own path and parameter resolution when the
// request is delegated.
func (h *ExampleHandler) Handle(req *handlers.Request) (*handlers.Response, error) {
	if req.RawPath == "/hello" {
		h.logger.Info("custom hello page", "remote", req.RemoteAddr)
		greeting := h.cfg.Extra["greeting"]
		if greeting == "" {
			greeting = "hello from a custom handler"
		}
		return &handlers.Response{
			Status:      http.StatusOK,
			ContentType: "text/plain",
			Body:        []byte(greeting + "\n"),
		}, nil
	}
	return h.fallback.Handle(req)
}
`

func newGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "write an example custom request handler to stdout and exit",
		Action: func(context.Context, *cli.Command) error {
			return writeExampleHandler(os.Stdout)
		},
	}
}

func writeExampleHandler(w io.Writer) error {
	_, err := io.WriteString(w, exampleHandler)
	return err
}
