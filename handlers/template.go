package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
)

// placeholderPattern matches a {name} token. Names run to the closing brace
// and may not contain braces or whitespace.
var placeholderPattern = regexp.MustCompile(`\{([^{}\s]+)\}`)

// serveTemplate reads the resolved file and substitutes request parameters
// into its {name} placeholders. A placeholder with no matching parameter
// does not fail the request: the unsubstituted body is returned as
// text/plain behind an HTML comment naming the missing key, status 200.
func (d *Dispatcher) serveTemplate(req *Request) (*Response, error) {
	d.logger.Debug("rendering template", "syspath", req.SystemPath)
	text, err := os.ReadFile(req.SystemPath)
	if err != nil {
		return errorPage(http.StatusNotFound, "Not found"), nil
	}

	out, err := renderTemplate(string(text), req.Params)
	if err != nil {
		out = fmt.Sprintf("<!-- ERROR: %v -->\n%s", err, text)
		return respond(req, "text/plain", []byte(out)), nil
	}
	return respond(req, "text/html", []byte(out)), nil
}

// renderTemplate replaces every {name} token with the first parameter value
// of that name. It fails on the first token with no matching parameter.
func renderTemplate(text string, params url.Values) (string, error) {
	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !params.Has(match[1]) {
			return "", fmt.Errorf("missing value for template key %q", match[1])
		}
	}
	out := placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		return params.Get(token[1 : len(token)-1])
	})
	return out, nil
}
