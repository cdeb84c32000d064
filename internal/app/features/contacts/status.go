// internal/app/features/contacts/status.go
package contacts

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// changedEvent tells the list page to reload its table.
const changedEvent = "contactsChanged"

// HandleStatus handles POST /contacts/{id}/status with active=true|false.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := detailURL(id, tabStatus)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}
	active, err := strconv.ParseBool(r.PostFormValue("active"))
	if err != nil {
		if uierrors.IsHTMX(r) {
			uierrors.HTMXBadRequest(w, r, "Choose active or inactive.", back)
			return
		}
		uierrors.RenderBadRequest(w, r, "Choose active or inactive.", back)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "toggle contact status")
	defer cancel()

	if _, err := h.API.UpdateContact(ctx, id, contactsapi.UpdateContactDTO{IsActive: &active}); err != nil {
		h.ErrLog.LogUpstreamError(w, r, "toggle contact status failed", err, upstreamStatus(err), contactsapi.MessageOf(err), back)
		return
	}

	h.Audit.ContactStatusChanged(ctx, r, id, active)
	h.Queries.InvalidateContact(ctx, id)

	h.afterPanelMutation(w, r, id, tabStatus)
}

// afterPanelMutation finishes a change made from the detail panel. htmx
// gets the refetched panel plus an event for the table; a plain form post
// is redirected to the detail page.
func (h *Handler) afterPanelMutation(w http.ResponseWriter, r *http.Request, id, tab string) {
	if uierrors.IsHTMX(r) {
		w.Header().Set("HX-Trigger", changedEvent)
		h.servePanel(w, r, id, tab)
		return
	}
	http.Redirect(w, r, detailURL(id, tab), http.StatusSeeOther)
}
