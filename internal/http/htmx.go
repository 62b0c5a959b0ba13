package httpx

import (
	"net/http"
	"net/url"
	"strings"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// SetHXRedirect instructs htmx to redirect the browser to the given URL.
func SetHXRedirect(w http.ResponseWriter, url string) { w.Header().Set("Hx-Redirect", url) }

// currentPath is the path the browser is showing: the htmx current URL for htmx requests,
// otherwise the request path.
func currentPath(r *http.Request) string {
	if IsHTMX(r) {
		if u, err := url.Parse(r.Header.Get("Hx-Current-Url")); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return r.URL.Path
}
