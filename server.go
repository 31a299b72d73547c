package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tracerr "github.com/xplshn/tracerr2"

	"github.com/jobri720/webserver/config"
	"github.com/jobri720/webserver/handlers"
	"github.com/jobri720/webserver/routes"
)

const shutdownTimeout = 5 * time.Second

// Server ties the listener, the handler chain and the optional PID file
// together for one serving run.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler handlers.Handler
}

// newServer builds a Server. A nil handler selects the default dispatcher.
func newServer(cfg *config.Config, logger *slog.Logger, handler handlers.Handler) *Server {
	return &Server{cfg: cfg, logger: logger, handler: handler}
}

// Run listens on the configured address and serves until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if !s.cfg.HTTPS && s.cfg.CertFile != "" {
		s.logger.Warn("cert file specified but --https was not, did you mean to specify --https?")
	}

	if err := s.writePidFile(); err != nil {
		return err
	}
	defer s.removePidFile()

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return tracerr.Wrapf(err, "failed to start server on %s", s.cfg.Addr())
	}
	if s.cfg.HTTPS {
		// The certificate file carries both the PEM cert and the key,
		// e.g. "cat server.crt server.key >server.pem".
		cert, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.CertFile)
		if err != nil {
			listener.Close()
			return tracerr.Wrapf(err, "failed to load certificate %s", s.cfg.CertFile)
		}
		listener = tls.NewListener(listener, &tls.Config{Certificates: []tls.Certificate{cert}})
	}

	srv := &http.Server{Handler: routes.New(s.cfg, s.logger, s.handler)}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("listening",
		"addr", s.cfg.Addr(),
		"protocol", s.cfg.Protocol(),
		"url", s.cfg.URLPrefix(),
		"webdir", s.cfg.WebDir)

	select {
	case <-ctx.Done():
		s.logger.Info("stopping the server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", "error", err)
			return srv.Close()
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return tracerr.Wrapf(err, "server failed")
	}
}

var pidPattern = regexp.MustCompile(`^\d+$`)

// writePidFile records the process ID in the configured PID file. A leftover
// file from a previous run is removed if that process is gone; if it is
// still running, starting is refused.
func (s *Server) writePidFile() error {
	if s.cfg.PidFile == "" {
		return nil
	}

	if data, err := os.ReadFile(s.cfg.PidFile); err == nil {
		text := strings.TrimSpace(string(data))
		if !pidPattern.MatchString(text) {
			return tracerr.New(fmt.Sprintf("pid file %s exists and has invalid data, cannot continue", s.cfg.PidFile))
		}
		pid, _ := strconv.Atoi(text)
		if processRunning(pid) {
			return tracerr.New(fmt.Sprintf("pid file %s exists and process %d is running, cannot continue", s.cfg.PidFile, pid))
		}
		s.logger.Warn("removing stale pid file", "path", s.cfg.PidFile, "pid", pid)
		if err := os.Remove(s.cfg.PidFile); err != nil {
			return tracerr.Wrapf(err, "pid file %s cannot be removed, cannot continue", s.cfg.PidFile)
		}
	}

	if dir := filepath.Dir(s.cfg.PidFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return tracerr.Wrapf(err, "cannot create pid file directory %s", dir)
		}
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(s.cfg.PidFile, []byte(pid), 0o644); err != nil {
		return tracerr.Wrapf(err, "cannot write pid file %s", s.cfg.PidFile)
	}
	s.logger.Debug("wrote pid file", "path", s.cfg.PidFile, "pid", pid)
	return nil
}

func (s *Server) removePidFile() {
	if s.cfg.PidFile == "" {
		return
	}
	if err := os.Remove(s.cfg.PidFile); err != nil && !os.IsNotExist(err) {
		s.logger.Error("cannot remove pid file", "path", s.cfg.PidFile, "error", err)
	}
}

// processRunning reports whether a process with the given PID exists.
func processRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
