// Package handlers implements the request-handling core of the web server:
// the Handler contract, the default dispatching Handler with its URL-suffix
// conventions, and the net/http adapter and middleware around it.
//
// The default handler deliberately exposes two unsafe-by-design demonstration
// features: a trailing "@" on a URL discloses raw file contents or forces a
// directory listing, and a trailing "!" executes the named file on the host
// and returns its output. There is no authorization check on either. Do not
// point this server at anything you would not hand to an untrusted client.
package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
)

// ErrMalformedRequest reports a POST body that could not be parsed. It is
// returned from Handle rather than answered directly; the connection layer
// decides how to respond.
var ErrMalformedRequest = errors.New("malformed request body")

// Request is the per-exchange record given to a Handler. The raw fields are
// filled by the adapter once the body has been fully read; the derived fields
// are computed by the handler's path resolution step.
type Request struct {
	Method        string
	RawPath       string // path plus query string, as received
	Header        http.Header
	Body          []byte
	ContentLength int64 // -1 when unknown
	RemoteAddr    string

	// Derived fields.
	URLPath    string     // RawPath without the query string
	SystemPath string     // URLPath resolved under the web root
	Params     url.Values // query or POST-body parameters
	Protocol   string     // "HTTP" or "HTTPS", informational
}

// Response is what a Handler produces. The adapter writes Body verbatim and
// always sets Content-Length to len(Body).
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	Extra       http.Header // additional headers, e.g. echoed Set-Cookie
}

// Handler is the single-method contract a request handler implements. The
// Dispatcher below is the default implementation; custom handlers are
// compiled in and passed to the adapter in its place (see the generate
// command for a starting point).
type Handler interface {
	Handle(req *Request) (*Response, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(req *Request) (*Response, error)

// Handle calls f.
func (f HandlerFunc) Handle(req *Request) (*Response, error) { return f(req) }

// respond builds a 200 response and echoes any inbound cookie pairs back as
// Set-Cookie headers, one per pair. Error pages do not get the echo.
func respond(req *Request, contentType string, body []byte) *Response {
	resp := &Response{
		Status:      http.StatusOK,
		ContentType: contentType,
		Body:        body,
	}
	cookies := (&http.Request{Header: req.Header}).Cookies()
	if len(cookies) > 0 {
		resp.Extra = make(http.Header)
		for _, c := range cookies {
			resp.Extra.Add("Set-Cookie", c.Name+"="+c.Value)
		}
	}
	return resp
}

// errorPage builds a small HTML error response for the given status.
func errorPage(status int, detail string) *Response {
	body := []string{
		fmt.Sprintf("    <h1>%d %s</h1>", status, http.StatusText(status)),
	}
	if detail != "" {
		body = append(body, "    <p>"+html.EscapeString(detail)+"</p>")
	}
	return &Response{
		Status:      status,
		ContentType: "text/html",
		Body:        htmlPage("Webserver - Error", body),
	}
}

// htmlPage wraps pre-rendered body lines in the common page skeleton.
func htmlPage(title string, body []string) []byte {
	lines := []string{
		"<!DOCTYPE HTML>",
		"<html>",
		"  <head>",
		"    <meta charset=\"utf-8\">",
		"    <title>" + title + "</title>",
		"  </head>",
		"  <body>",
	}
	lines = append(lines, body...)
	lines = append(lines, "  </body>", "</html>")
	return []byte(strings.Join(lines, "\n"))
}
