// Command webserver serves a directory tree over HTTP or HTTPS, with a small
// set of URL conventions on top of plain file serving: ".tmpl" files are
// rendered as parameter templates, a trailing "@" shows the raw target or
// forces a directory listing, and a trailing "!" executes the target file on
// the host. The last two exist for demonstrations and are unsafe by design;
// see the README before exposing this to anything but localhost.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	tracerr "github.com/xplshn/tracerr2"

	"github.com/jobri720/webserver/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		if e, ok := err.(*tracerr.Error); ok {
			e.Print()
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "webserver",
		Usage:   "serve a directory tree over HTTP/HTTPS with template, raw-view and execute URL conventions",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Aliases: []string{"H"}, Value: "localhost", Usage: "hostname or IP address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "port to listen on"},
			&cli.StringFlag{Name: "webdir", Aliases: []string{"w"}, Value: ".", Usage: "web root directory with the HTML/CSS/JS files"},
			&cli.BoolFlag{Name: "https", Usage: "serve HTTPS, requires --cert"},
			&cli.StringFlag{Name: "cert", Aliases: []string{"c"}, Usage: "certificate file holding the PEM cert and key"},
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"L"}, Value: "info", Usage: "log level: debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "log format: text or json"},
			&cli.StringFlag{Name: "log-file", Aliases: []string{"l"}, Usage: "log file, rotated when it grows past --log-size"},
			&cli.StringFlag{Name: "log-size", Value: "10m", Usage: "log size before rollover, suffixes k, m, g"},
			&cli.IntFlag{Name: "log-count", Value: 4, Usage: "number of rollover log files to keep"},
			&cli.StringFlag{Name: "pid-file", Aliases: []string{"q"}, Usage: "write the process ID to this file"},
			&cli.StringSliceFlag{Name: "extra", Aliases: []string{"x"}, Usage: "extra key=value setting for custom handlers, repeatable"},
			&cli.DurationFlag{Name: "exec-timeout", Usage: "kill executed commands after this duration, 0 means no limit"},
		},
		Action: run,
		Commands: []*cli.Command{
			newGenerateCommand(),
		},
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer := newLogger(cfg)
	if closer != nil {
		defer closer.Close()
	}
	logger.Info("starting the server", "version", version)
	for _, entry := range cfg.Entries() {
		logger.Debug("option", "name", entry.Name, "value", entry.Value)
	}

	return newServer(cfg, logger, nil).Run(ctx)
}

// applyFlags copies every flag the user actually set onto cfg, overriding
// values from the config file and the environment.
func applyFlags(cmd *cli.Command, cfg *config.Config) error {
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("webdir") {
		cfg.WebDir = cmd.String("webdir")
	}
	if cmd.IsSet("https") {
		cfg.HTTPS = cmd.Bool("https")
	}
	if cmd.IsSet("cert") {
		cfg.CertFile = cmd.String("cert")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.LogFormat = cmd.String("log-format")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}
	if cmd.IsSet("log-size") {
		cfg.LogSize = cmd.String("log-size")
	}
	if cmd.IsSet("log-count") {
		cfg.LogCount = int(cmd.Int("log-count"))
	}
	if cmd.IsSet("pid-file") {
		cfg.PidFile = cmd.String("pid-file")
	}
	if cmd.IsSet("exec-timeout") {
		cfg.ExecTimeout = cmd.Duration("exec-timeout")
	}
	for _, pair := range cmd.StringSlice("extra") {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return tracerr.New(fmt.Sprintf("invalid --extra value %q, expected key=value", pair))
		}
		cfg.Extra[key] = val
	}
	return nil
}
