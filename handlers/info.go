package handlers

import (
	"fmt"
	"html"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// serveInfo renders the diagnostics page: the active configuration, the
// attributes of the request being handled, and a few process runtime
// figures.
func (d *Dispatcher) serveInfo(req *Request) (*Response, error) {
	body := []string{"    <pre>", "Configuration Options"}
	for _, entry := range d.cfg.Entries() {
		body = append(body, fmt.Sprintf("   --%-12s %s", entry.Name, infoValue(entry.Value)))
	}

	body = append(body, "", "Server Information")
	body = appendInfoSection(body, d.requestAttributes(req))

	body = append(body, "", "Server Runtime")
	body = appendInfoSection(body, d.runtimeAttributes())

	body = append(body, "    </pre>")
	return respond(req, "text/html", htmlPage("Webserver - Info", body)), nil
}

func (d *Dispatcher) requestAttributes(req *Request) map[string]string {
	names := make([]string, 0, len(req.Header))
	for name := range req.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	var header []string
	for _, name := range names {
		for _, val := range req.Header[name] {
			header = append(header, name+": "+val)
		}
	}
	return map[string]string{
		"body_length": strconv.Itoa(len(req.Body)),
		"header":      strings.Join(header, "\r\n"),
		"method":      req.Method,
		"params":      fmt.Sprintf("%v", req.Params),
		"path":        req.RawPath,
		"protocol":    req.Protocol,
		"remote_addr": req.RemoteAddr,
		"syspath":     req.SystemPath,
		"urlpath":     req.URLPath,
	}
}

func (d *Dispatcher) runtimeAttributes() map[string]string {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return map[string]string{
		"go_version":    runtime.Version(),
		"goroutines":    strconv.Itoa(runtime.NumGoroutine()),
		"memory_in_use": humanize.Bytes(stats.Alloc),
		"pid":           strconv.Itoa(os.Getpid()),
		"started":       humanize.Time(d.started),
	}
}

// appendInfoSection writes one aligned "key value" row per attribute, keys
// sorted case-insensitively.
func appendInfoSection(body []string, attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})
	for _, key := range keys {
		body = append(body, fmt.Sprintf("   %-16s %s", key, infoValue(attrs[key])))
	}
	return body
}

// infoValue escapes a value for the <pre> block and indents continuation
// lines so multiline values stay aligned with their key.
func infoValue(val string) string {
	text := html.EscapeString(val)
	text = strings.ReplaceAll(text, "\r\n", "\\r\\n\n")
	if strings.Contains(text, "\n") {
		text = strings.Join(strings.Split(text, "\n"), "\n                    ")
		text = strings.TrimRight(text, " \t\n")
	}
	return text
}
