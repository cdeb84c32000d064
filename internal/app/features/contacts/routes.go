// internal/app/features/contacts/routes.go
package contacts

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the contacts pages. mw guards every route; bootstrap passes
// the credential check for the configured auth mode.
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw...)

		// LIST
		pr.Get("/", h.ServeList)
		pr.Post("/clear", h.HandleClearFilters)
		pr.Get("/export.xlsx", h.ServeExport)

		// CREATE
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)

		// DETAIL
		pr.Get("/{id}", h.ServeContact)

		// EDIT
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)

		// DELETE
		pr.Get("/{id}/delete", h.ServeDelete)
		pr.Post("/{id}/delete", h.HandleDelete)

		// STATUS + NOTES
		pr.Post("/{id}/status", h.HandleStatus)
		pr.Post("/{id}/notes", h.HandleNotes)

		// ROLES
		pr.Get("/{id}/roles/new", h.ServeNewRole)
		pr.Post("/{id}/roles", h.HandleCreateRole)
		pr.Get("/{id}/roles/{type}/{roleID}/edit", h.ServeEditRole)
		pr.Post("/{id}/roles/{type}/{roleID}/edit", h.HandleEditRole)
		pr.Post("/{id}/roles/{type}/{roleID}/delete", h.HandleDeleteRole)
	})

	return r
}
