package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jobri720/webserver/config"
)

// templateExt marks files rendered by the template step.
const templateExt = ".tmpl"

// rule is one guard/serve pair of the special-case chain. Rules are evaluated
// top to bottom; the first match wins and short-circuits normal dispatch.
type rule struct {
	name  string
	match func(req *Request) bool
	serve func(req *Request) (*Response, error)
}

// Dispatcher is the default Handler. It resolves the request path, runs the
// special-case rules in order, and falls through to index lookup, template
// rendering, and static file serving.
type Dispatcher struct {
	cfg     *config.Config
	logger  *slog.Logger
	started time.Time
	rules   []rule
}

// New builds the default Dispatcher around cfg and logger.
func New(cfg *config.Config, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		cfg:     cfg,
		logger:  logger,
		started: time.Now(),
	}
	d.rules = []rule{
		{
			name:  "webserver info",
			match: func(req *Request) bool { return infoPattern.MatchString(req.URLPath) },
			serve: d.serveInfo,
		},
		{
			name:  "system name",
			match: func(req *Request) bool { return namePattern.MatchString(req.URLPath) },
			serve: d.serveSystemName,
		},
		{
			name:  "raw view",
			match: func(req *Request) bool { return strings.HasSuffix(req.URLPath, "@") },
			serve: d.serveRaw,
		},
		{
			name:  "execute",
			match: func(req *Request) bool { return strings.HasSuffix(req.URLPath, "!") },
			serve: d.serveExec,
		},
	}
	return d
}

// Handle maps one request to a response. The precedence is fixed: special
// cases first, then directory/index resolution, then templates, then plain
// file serving. A non-nil error is returned only for requests that could not
// be parsed at all (ErrMalformedRequest).
func (d *Dispatcher) Handle(req *Request) (*Response, error) {
	if err := resolveRequest(d.cfg.WebDir, req); err != nil {
		return nil, err
	}
	if req.Protocol == "" {
		req.Protocol = d.cfg.Protocol()
	}
	d.logger.Debug("handling request",
		"protocol", req.Protocol,
		"method", req.Method,
		"path", req.RawPath)
	d.logger.Debug("resolved request",
		"urlpath", req.URLPath,
		"syspath", req.SystemPath,
		"params", req.Params)

	for _, r := range d.rules {
		if r.match(req) {
			d.logger.Debug("special case", "rule", r.name, "urlpath", req.URLPath)
			return r.serve(req)
		}
	}

	info, err := os.Stat(req.SystemPath)
	if err != nil {
		return errorPage(http.StatusNotFound, "Not found"), nil
	}
	if info.IsDir() {
		index := d.findIndex(req.SystemPath)
		if index == "" {
			return d.listDirectory(req, req.SystemPath, req.URLPath), nil
		}
		req.SystemPath = index
	}

	if strings.HasSuffix(req.SystemPath, templateExt) {
		return d.serveTemplate(req)
	}
	return d.serveFile(req), nil
}

// findIndex returns the first configured index file present in dir, or "".
func (d *Dispatcher) findIndex(dir string) string {
	for _, name := range d.cfg.IndexFiles {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
