package content

import (
	"net/http"
	"strings"
)

// RedirectType selects the HTTP status of a redirect.
type RedirectType string

const (
	RedirectPermanent RedirectType = "permanent"
	RedirectTemporary RedirectType = "temporary"
)

// Redirect maps an obsolete or missing path to a destination.
type Redirect struct {
	From string         `json:"from" yaml:"from"`
	To   RedirectTarget `json:"to" yaml:"to"`
	Type RedirectType   `json:"type" yaml:"type"`
}

// RedirectTarget is either a document reference or an external URL.
type RedirectTarget struct {
	Reference *DocRef `json:"reference,omitempty" yaml:"reference,omitempty"`
	URL       string  `json:"url,omitempty" yaml:"url,omitempty"`
}

// Location returns the destination the view layer redirects to.
func (r Redirect) Location() string {
	if ref := r.To.Reference; ref != nil && (ref.Slug != "" || ref.Collection == Pages) {
		return ref.Path()
	}
	return r.To.URL
}

// StatusCode maps the redirect type to an HTTP status. Numeric types found in
// imported data ("301", "307", ...) are kept as is.
func (r Redirect) StatusCode() int {
	switch strings.TrimSpace(string(r.Type)) {
	case string(RedirectTemporary), "302":
		return http.StatusFound
	case "307":
		return http.StatusTemporaryRedirect
	case "308":
		return http.StatusPermanentRedirect
	default:
		return http.StatusMovedPermanently
	}
}

// NormalizePath turns a request path into the form redirect sources are stored
// in: a leading slash and no trailing slash, except for the root.
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
