// internal/app/features/contacts/notes.go
package contacts

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/system/contactform"
	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type notesStateData struct {
	ContactID string
	Previous  string
	Saved     bool
}

// HandleNotes handles POST /contacts/{id}/notes, the notes auto-save sent
// when the notes field loses focus. The form carries the last value known
// to be on the server in "previous"; when nothing changed no request is
// made and the answer is 204.
func (h *Handler) HandleNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := detailURL(id, tabNotes)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}
	next := r.PostFormValue("notes")
	if !contactform.NotesChanged(r.PostFormValue("previous"), next) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "save notes")
	defer cancel()

	// Read fresh: the patch carries the whole details payload.
	c, err := h.API.GetContact(ctx, id)
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "load contact for notes failed", err, upstreamStatus(err), contactsapi.MessageOf(err), back)
		return
	}

	dto, err := contactform.NotesDTO(c, next)
	if err != nil {
		msg := "These notes cannot be saved."
		if errors.Is(err, contactform.ErrNotesTooLong) {
			msg = "Notes must be at most " + strconv.Itoa(contactform.MaxNotes) + " characters."
		}
		h.Log.Debug("notes rejected", zap.String("contact_id", id), zap.Error(err))
		if uierrors.IsHTMX(r) {
			uierrors.HTMXBadRequest(w, r, msg, back)
			return
		}
		uierrors.RenderBadRequest(w, r, msg, back)
		return
	}

	updated, err := h.API.UpdateContact(ctx, id, dto)
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "save notes failed", err, upstreamStatus(err), contactsapi.MessageOf(err), back)
		return
	}

	saved := updated.Notes()
	h.Audit.NotesUpdated(ctx, r, id, utf8.RuneCountInString(saved))
	h.Queries.InvalidateContact(ctx, id)

	if uierrors.IsHTMX(r) {
		templates.RenderSnippet(w, "contact_notes_state", notesStateData{ContactID: id, Previous: saved, Saved: true})
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
