// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

func render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", newPageData(r, status, title, msg, backURL))
}

// RenderUnauthorized shows a friendly "sign in required" page.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	render(w, r, http.StatusUnauthorized, "Sign in required", "Please sign in to continue.", backURL)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}

// RenderNotFound shows a not-found page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderBadRequest shows a page for malformed or invalid requests.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadRequest, "Bad request", msg, backURL)
}

// RenderServerError shows a generic failure page.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}

// RenderUpstreamError shows a page for a failed call to the contacts service,
// keeping the remote status visible so the user can tell outages from
// permission problems.
func RenderUpstreamError(w http.ResponseWriter, r *http.Request, status int, msg, backURL string) {
	if status < 400 {
		status = http.StatusBadGateway
	}
	render(w, r, status, "The contacts service returned an error", msg, backURL)
}

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// HTMXError answers an htmx request with status and a "showError" client
// event carrying msg; the page script turns it into a toast. Non-htmx
// requests fall through to fallback.
func HTMXError(w http.ResponseWriter, r *http.Request, status int, msg string, fallback func()) {
	if !IsHTMX(r) {
		fallback()
		return
	}
	trigger, _ := json.Marshal(map[string]any{"showError": map[string]string{"message": msg}})
	w.Header().Set("HX-Trigger", string(trigger))
	w.Header().Set("HX-Reswap", "none")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// HTMXBadRequest is HTMXError with a 400 and a full-page fallback.
func HTMXBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusBadRequest, msg, func() { RenderBadRequest(w, r, msg, backURL) })
}

// HTMXNotFound is HTMXError with a 404 and a full-page fallback.
func HTMXNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusNotFound, msg, func() { RenderNotFound(w, r, msg, backURL) })
}

// HTMXForbidden is HTMXError with a 403 and a full-page fallback.
func HTMXForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusForbidden, msg, func() { RenderForbidden(w, r, msg, backURL) })
}

// TooManyRequests answers a rate-limited request: a toast for htmx, a page
// otherwise.
func TooManyRequests(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusTooManyRequests, msg, func() {
		render(w, r, http.StatusTooManyRequests, "Too many changes", msg, backURL)
	})
}
