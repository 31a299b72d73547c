package main

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jobri720/webserver/config"
)

// newLogger builds the slog logger described by cfg. With a log file
// configured, output goes to stdout and to the rotated file; the returned
// closer owns the file handle and may be nil.
func newLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer
	if cfg.LogFile != "" && cfg.LogSizeBytes() > 0 {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    logMegabytes(cfg.LogSizeBytes()),
			MaxBackups: cfg.LogCount,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	opts := &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}
	var handler slog.Handler
	switch cfg.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// logMegabytes converts the rotation threshold to the whole megabytes
// lumberjack expects, rounding up so sub-megabyte thresholds still rotate.
func logMegabytes(size int64) int {
	megs := int(size / (1 << 20))
	if megs == 0 || size%(1<<20) != 0 {
		megs++
	}
	return megs
}
