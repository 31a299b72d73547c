package handlers

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	infoPattern = regexp.MustCompile(`^/webserver/info/?$`)
	namePattern = regexp.MustCompile(`^/system/name/?$`)
)

// serveSystemName runs the host identify command and returns its combined
// output. The exit status is ignored; the page is always 200.
func (d *Dispatcher) serveSystemName(req *Request) (*Response, error) {
	out := runCmd(d.cfg.ExecTimeout, "uname -a")
	return respond(req, "text/plain", out), nil
}

// serveRaw handles a trailing "@": the suffix is stripped and the target is
// shown as-is. A directory gets a forced listing even when an index file is
// present; a regular file is returned as text/plain whatever its real type.
// This discloses raw file contents with no authorization check.
func (d *Dispatcher) serveRaw(req *Request) (*Response, error) {
	req.URLPath = strings.TrimSuffix(req.URLPath, "@")
	req.SystemPath = strings.TrimSuffix(req.SystemPath, "@")

	info, err := os.Stat(req.SystemPath)
	switch {
	case err != nil:
		return errorPage(http.StatusNotFound, "Not found"), nil
	case info.IsDir():
		return d.listDirectory(req, req.SystemPath, req.URLPath), nil
	case info.Mode().IsRegular():
		data, err := os.ReadFile(req.SystemPath)
		if err != nil {
			return errorPage(http.StatusNotFound, "Not found"), nil
		}
		return respond(req, "text/plain", data), nil
	}
	return errorPage(http.StatusNotFound, "Not found"), nil
}

// serveExec handles a trailing "!": the suffix is stripped and, if the
// target is a regular file, it is executed through the shell. The combined
// stdout/stderr becomes the response body with the content type taken from
// an optional "content-type" parameter. This executes host commands with no
// authorization check.
func (d *Dispatcher) serveExec(req *Request) (*Response, error) {
	ctype := req.Params.Get("content-type")
	if ctype == "" {
		ctype = "text/plain"
	}
	d.logger.Debug("execute request", "ctype", ctype)

	req.URLPath = strings.TrimSuffix(req.URLPath, "!")
	req.SystemPath = strings.TrimSuffix(req.SystemPath, "!")

	info, err := os.Stat(req.SystemPath)
	if err != nil || !info.Mode().IsRegular() {
		return errorPage(http.StatusNotFound, fmt.Sprintf("Not found: %q", req.SystemPath)), nil
	}
	out := runCmd(d.cfg.ExecTimeout, req.SystemPath)
	return respond(req, ctype, out), nil
}
