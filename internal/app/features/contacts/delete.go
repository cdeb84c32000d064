// internal/app/features/contacts/delete.go
package contacts

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/formutil"
	"github.com/dalemusser/contacthub/internal/app/system/navigation"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeDelete handles GET /contacts/{id}/delete: the confirmation dialog,
// as a snippet for htmx and as a page otherwise.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete contact page")
	defer cancel()

	c, err := h.Queries.Detail(ctx, cacheScope(r), id)
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "load contact for delete failed", err, upstreamStatus(err), contactsapi.MessageOf(err), "/contacts")
		return
	}

	data := deleteData{ContactID: id, DisplayName: c.DisplayName}
	formutil.SetBase(&data.Base, r, "Delete "+c.DisplayName, contactURL(id))
	data.Return = urlutil.SafeReturn(r.URL.Query().Get("return"), id, "/contacts")

	if uierrors.IsHTMX(r) {
		templates.RenderSnippet(w, "contact_delete_modal", data)
		return
	}
	templates.Render(w, r, "contact_delete", data)
}

// HandleDelete handles POST /contacts/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", contactURL(id))
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete contact")
	defer cancel()

	if err := h.API.DeleteContact(ctx, id); err != nil {
		h.Log.Warn("delete contact failed",
			zap.String("contact_id", id),
			zap.Int("upstream_status", contactsapi.StatusOf(err)),
			zap.Error(err))
		if uierrors.IsHTMX(r) {
			uierrors.HTMXError(w, r, upstreamStatus(err), contactsapi.MessageOf(err), nil)
			return
		}
		data := deleteData{ContactID: id, DisplayName: name}
		formutil.SetBase(&data.Base, r, "Delete "+name, contactURL(id))
		data.Return = urlutil.SafeReturn(r.PostFormValue("return"), id, "/contacts")
		data.SetError(contactsapi.MessageOf(err))
		templates.Render(w, r, "contact_delete", data)
		return
	}

	h.Audit.ContactDeleted(ctx, r, id, name)
	h.Queries.InvalidateContact(ctx, id)

	navigation.Redirect(w, r, urlutil.SafeReturn(r.PostFormValue("return"), id, "/contacts"))
}
