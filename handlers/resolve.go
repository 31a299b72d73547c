package handlers

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// resolveRequest fills the derived fields of req: URLPath (query string
// stripped), Params, and SystemPath. It returns ErrMalformedRequest when a
// POST body cannot be parsed.
func resolveRequest(webdir string, req *Request) error {
	req.URLPath = req.RawPath
	rawQuery := ""
	if i := strings.Index(req.RawPath, "?"); i >= 0 {
		req.URLPath = req.RawPath[:i]
		rawQuery = req.RawPath[i+1:]
	}

	params, err := requestParams(req, rawQuery)
	if err != nil {
		return err
	}
	req.Params = params
	req.SystemPath = systemPath(webdir, req.URLPath)
	return nil
}

// requestParams parses the query string, then lets a POST body of a known
// content type replace the result. Blank values are dropped from the query
// string but kept in POST bodies.
func requestParams(req *Request, rawQuery string) (url.Values, error) {
	params := parseQuery(rawQuery)
	if req.Method != http.MethodPost {
		return params, nil
	}

	mediaType, mediaParams, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		// Unrecognized or absent content type: the query parameters stand.
		return params, nil
	}
	switch mediaType {
	case "multipart/form-data":
		return parseMultipart(req.Body, mediaParams["boundary"])
	case "application/x-www-form-urlencoded":
		if req.ContentLength < 0 {
			return nil, ErrMalformedRequest
		}
		body := req.Body
		if int64(len(body)) > req.ContentLength {
			body = body[:req.ContentLength]
		}
		parsed, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, ErrMalformedRequest
		}
		return parsed, nil
	}
	return params, nil
}

// parseQuery parses a raw query string, dropping pairs with an empty value.
// Undecodable pairs are skipped rather than failing the request.
func parseQuery(rawQuery string) url.Values {
	params := url.Values{}
	if rawQuery == "" {
		return params
	}
	parsed, _ := url.ParseQuery(rawQuery)
	for key, vals := range parsed {
		for _, val := range vals {
			if val != "" {
				params.Add(key, val)
			}
		}
	}
	return params
}

// parseMultipart collects the form fields of a multipart/form-data body.
// File parts contribute their content as the field value.
func parseMultipart(body []byte, boundary string) (url.Values, error) {
	if boundary == "" {
		return nil, ErrMalformedRequest
	}
	params := url.Values{}
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return params, nil
		}
		if err != nil {
			return nil, ErrMalformedRequest
		}
		name := part.FormName()
		value, err := io.ReadAll(part)
		if err != nil {
			return nil, ErrMalformedRequest
		}
		if name != "" {
			params.Add(name, string(value))
		}
	}
}

// systemPath maps a URL path onto the file system below webdir. The path is
// unescaped when possible, rooted, and cleaned, so ".." segments cannot
// climb out of the web root.
func systemPath(webdir, urlPath string) string {
	p := urlPath
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	p = path.Clean("/" + p)
	return filepath.Join(webdir, filepath.FromSlash(p))
}
