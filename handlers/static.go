package handlers

import (
	"fmt"
	"html"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// serveFile returns the resolved file's full contents with a content type
// guessed from the extension.
func (d *Dispatcher) serveFile(req *Request) *Response {
	ctype := contentType(req.SystemPath)
	d.logger.Debug("serving file", "syspath", req.SystemPath, "ctype", ctype)

	data, err := os.ReadFile(req.SystemPath)
	if err != nil {
		return errorPage(http.StatusNotFound, "File not found")
	}
	return respond(req, ctype, data)
}

// contentType guesses a content type from the file extension. Shell scripts
// come back from the platform tables as application/x-sh, which browsers
// refuse to display, so they are remapped to text/plain.
func contentType(name string) string {
	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		return "application/octet-stream"
	}
	if i := strings.Index(ctype, ";"); i >= 0 {
		ctype = strings.TrimSpace(ctype[:i])
	}
	if ctype == "application/x-sh" {
		ctype = "text/plain"
	}
	return ctype
}

// listDirectory renders a directory as a preformatted table of links, one
// row per entry, sorted case-insensitively. Every row carries the entry's
// byte size and a dir/file tag. Unless the URL path is already the root, a
// ".." row pointing at the parent comes first.
func (d *Dispatcher) listDirectory(req *Request, syspath, urlpath string) *Response {
	entries, err := os.ReadDir(syspath)
	if err != nil {
		return errorPage(http.StatusNotFound, "Not found")
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	body := []string{"    <pre>", syspath + "\n"}
	if urlpath != "/" {
		parent := path.Dir(strings.TrimSuffix(urlpath, "/"))
		body = append(body, listingRow(0, "dir", parent, ".."))
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		ftype := "file"
		if entry.IsDir() {
			ftype = "dir"
		}
		link := urlpath + "/" + entry.Name()
		if strings.HasSuffix(urlpath, "/") {
			link = urlpath + entry.Name()
		}
		body = append(body, listingRow(info.Size(), ftype, link, entry.Name()))
	}
	body = append(body, "    </pre>")

	return respond(req, "text/html", htmlPage("Webserver - Directory", body))
}

func listingRow(size int64, ftype, link, name string) string {
	return fmt.Sprintf(`%10d  %-4s  <a href="%s">%s</a>`,
		size, ftype, html.EscapeString(link), html.EscapeString(name))
}
