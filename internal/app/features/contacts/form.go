// internal/app/features/contacts/form.go
package contacts

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/system/contactform"
	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/formutil"
	"github.com/dalemusser/contacthub/internal/app/system/navigation"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func typeOptions(selected models.ContactType) []typeOption {
	types := models.ContactTypes()
	out := make([]typeOption, len(types))
	for i, t := range types {
		out[i] = typeOption{Value: t, Label: t.Label(), Selected: t == selected}
	}
	return out
}

// setForm copies the variant's fields into the view.
func (d *contactFormData) setForm(f contactform.Form) {
	d.Type = f.Type()
	d.Types = typeOptions(d.Type)
	switch f := f.(type) {
	case contactform.PersonForm:
		d.Person = f.PersonInput
		d.IsActive = f.IsActive
	case contactform.OrganizationForm:
		d.Organization = f.OrganizationInput
		d.IsActive = f.IsActive
	}
}

func (h *Handler) newFormData(r *http.Request, f contactform.Form) contactFormData {
	data := contactFormData{Action: "/contacts"}
	formutil.SetBase(&data.Base, r, "New contact", "/contacts")
	data.setForm(f)
	return data
}

func (h *Handler) editFormData(r *http.Request, c models.Contact, f contactform.Form) contactFormData {
	data := contactFormData{
		Editing:    true,
		ContactID:  c.ID,
		Action:     contactURL(c.ID) + "/edit",
		TypeLocked: true,
	}
	formutil.SetBase(&data.Base, r, "Edit "+c.DisplayName, contactURL(c.ID))
	data.setForm(f)
	return data
}

// ServeNew handles GET /contacts/new. ?type=organization preselects the
// organization form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	t := models.ContactType(r.URL.Query().Get("type"))
	if !t.IsValid() {
		t = models.ContactTypePerson
	}
	templates.Render(w, r, "contact_form", h.newFormData(r, contactform.Blank(t)))
}

// HandleCreate handles POST /contacts. Invalid input is re-rendered without
// calling the service.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/contacts")
		return
	}

	form, err := contactform.ParseForm(r.PostForm, contactform.Create, "")
	if errors.Is(err, contactform.ErrUnknownType) {
		// Echo both field groups so nothing typed is lost.
		data := h.newFormData(r, contactform.Blank(models.ContactTypePerson))
		if pf, err := contactform.ParseForm(r.PostForm, contactform.Edit, models.ContactTypePerson); err == nil {
			data.Person = pf.(contactform.PersonForm).PersonInput
		}
		if of, err := contactform.ParseForm(r.PostForm, contactform.Edit, models.ContactTypeOrganization); err == nil {
			data.Organization = of.(contactform.OrganizationForm).OrganizationInput
		}
		data.Type = ""
		data.Types = typeOptions("")
		data.SetError("Choose a contact type.")
		data.FieldErrors = map[string]string{"Type": "Choose a contact type."}
		templates.Render(w, r, "contact_form", data)
		return
	}

	data := h.newFormData(r, form)
	if res := contactform.Validate(form); res.HasErrors() {
		data.SetResult(res)
		templates.Render(w, r, "contact_form", data)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create contact")
	defer cancel()

	created, err := h.API.CreateContact(ctx, contactform.ToCreateDTO(form))
	if err != nil {
		h.Log.Warn("create contact failed", zap.Int("upstream_status", contactsapi.StatusOf(err)), zap.Error(err))
		data.SetError(contactsapi.MessageOf(err))
		templates.Render(w, r, "contact_form", data)
		return
	}

	h.Audit.ContactCreated(ctx, r, created)
	h.Queries.InvalidateContact(ctx, created.ID)

	navigation.Redirect(w, r, contactURL(created.ID))
}

// ServeEdit handles GET /contacts/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit contact page")
	defer cancel()

	c, err := h.Queries.Detail(ctx, cacheScope(r), id)
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "load contact for edit failed", err, upstreamStatus(err), contactsapi.MessageOf(err), "/contacts")
		return
	}
	templates.Render(w, r, "contact_form", h.editFormData(r, c, contactform.FromContact(c)))
}

// HandleEdit handles POST /contacts/{id}/edit. The contact type is taken from
// the stored record; a contactType field in the request is ignored.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", contactURL(id))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update contact")
	defer cancel()

	current, err := h.Queries.Detail(ctx, cacheScope(r), id)
	if err != nil {
		h.ErrLog.LogUpstreamError(w, r, "load contact for update failed", err, upstreamStatus(err), contactsapi.MessageOf(err), "/contacts")
		return
	}

	form, err := contactform.ParseForm(r.PostForm, contactform.Edit, current.ContactType)
	if err != nil {
		uierrors.RenderBadRequest(w, r, "This contact has an unknown type and cannot be edited.", contactURL(id))
		return
	}

	data := h.editFormData(r, current, form)
	if res := contactform.Validate(form); res.HasErrors() {
		data.SetResult(res)
		templates.Render(w, r, "contact_form", data)
		return
	}

	updated, err := h.API.UpdateContact(ctx, id, contactform.ToUpdateDTO(form))
	if err != nil {
		h.Log.Warn("update contact failed",
			zap.String("contact_id", id),
			zap.Int("upstream_status", contactsapi.StatusOf(err)),
			zap.Error(err))
		data.SetError(contactsapi.MessageOf(err))
		templates.Render(w, r, "contact_form", data)
		return
	}

	h.Audit.ContactUpdated(ctx, r, updated)
	h.Queries.InvalidateContact(ctx, id)

	navigation.Redirect(w, r, contactURL(id))
}
