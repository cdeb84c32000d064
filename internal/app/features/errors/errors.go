// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

func newPageData(r *http.Request, status int, title, msg, backURL string) pageData {
	d := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backURL),
		Status:  status,
		Message: msg,
	}
	d.BackURL = backURL
	return d
}

// Handler is the errors feature handler.
// No backend needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, http.StatusForbidden, "Access denied",
		"You don't have permission to view this page.", "/")
	templates.Render(w, r, "error_page", data)
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, http.StatusUnauthorized, "Sign in required",
		"Please sign in to continue.", "/")
	templates.Render(w, r, "error_page", data)
}
