// internal/app/features/contacts/roles.go
package contacts

import (
	"context"
	"net/http"
	"net/url"

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

func roleURL(contactID string, t models.RoleType, roleID string) string {
	return contactURL(contactID) + "/roles/" + url.PathEscape(string(t)) + "/" + url.PathEscape(roleID)
}

// contactName returns the display name for headings, or the id when the
// contact cannot be read.
func (h *Handler) contactName(ctx context.Context, r *http.Request, id string) string {
	c, err := h.Queries.Detail(ctx, cacheScope(r), id)
	if err != nil {
		h.Log.Debug("contact name lookup failed", zap.String("contact_id", id), zap.Error(err))
		return id
	}
	return c.DisplayName
}

func (h *Handler) roleFormData(r *http.Request, contactID, name string) roleFormData {
	data := roleFormData{ContactID: contactID, ContactName: name}
	formutil.SetBase(&data.Base, r, "Add role", detailURL(contactID, tabRoles))
	data.Action = contactURL(contactID) + "/roles"
	return data
}

// ServeNewRole handles GET /contacts/{id}/roles/new. Role types the contact
// already holds are shown disabled.
func (h *Handler) ServeNewRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "new role page")
	defer cancel()

	agg := h.Queries.Roles(ctx, cacheScope(r), id)
	data := h.roleFormData(r, id, h.contactName(ctx, r, id))
	data.Options = contactform.AvailableRoleTypes(agg.Roles)
	data.Input = contactform.RoleInput{Status: "active"}
	for _, o := range data.Options {
		if !o.Disabled {
			data.Input.Type = string(o.Type)
			break
		}
	}
	templates.Render(w, r, "role_form", data)
}

// HandleCreateRole handles POST /contacts/{id}/roles. A role type the
// contact already holds is rejected before any request is sent.
func (h *Handler) HandleCreateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", detailURL(id, tabRoles))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create role")
	defer cancel()

	in := contactform.ParseRole(r.PostForm, "")
	agg := h.Queries.Roles(ctx, cacheScope(r), id)

	data := h.roleFormData(r, id, h.contactName(ctx, r, id))
	data.Options = contactform.AvailableRoleTypes(agg.Roles)
	data.Input = in

	if res := contactform.ValidateRole(in, agg.Roles, true); res.HasErrors() {
		data.SetResult(res)
		templates.Render(w, r, "role_form", data)
		return
	}

	role, err := h.API.CreateRole(ctx, in.RoleType(), contactform.ToRoleDTO(in, id))
	if err != nil {
		h.Log.Warn("create role failed",
			zap.String("contact_id", id),
			zap.String("role_type", in.Type),
			zap.Int("upstream_status", contactsapi.StatusOf(err)),
			zap.Error(err))
		data.SetError(contactsapi.MessageOf(err))
		templates.Render(w, r, "role_form", data)
		return
	}
	if role.ContactID == "" {
		role.ContactID = id
	}

	h.Audit.RoleCreated(ctx, r, role)
	h.Queries.InvalidateContact(ctx, id)

	navigation.Redirect(w, r, detailURL(id, tabRoles))
}

// roleParams reads and checks the role path parameters.
func roleParams(r *http.Request) (contactID string, t models.RoleType, roleID string, ok bool) {
	contactID = chi.URLParam(r, "id")
	t = models.RoleType(chi.URLParam(r, "type"))
	roleID = chi.URLParam(r, "roleID")
	return contactID, t, roleID, t.IsValid() && roleID != ""
}

// ServeEditRole handles GET /contacts/{id}/roles/{type}/{roleID}/edit.
func (h *Handler) ServeEditRole(w http.ResponseWriter, r *http.Request) {
	id, t, roleID, ok := roleParams(r)
	back := detailURL(id, tabRoles)
	if !ok {
		uierrors.RenderNotFound(w, r, "Role not found.", back)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit role page")
	defer cancel()

	agg := h.Queries.Roles(ctx, cacheScope(r), id)
	if err, failed := agg.Failed[t]; failed {
		h.ErrLog.LogUpstreamError(w, r, "load roles for edit failed", err, upstreamStatus(err),
			t.Label()+" roles could not be loaded.", back)
		return
	}

	var found *models.Role
	for _, role := range agg.Roles.ByType(t) {
		if role.ID == roleID {
			found = &role
			break
		}
	}
	if found == nil {
		uierrors.RenderNotFound(w, r, "Role not found.", back)
		return
	}

	data := h.roleFormData(r, id, h.contactName(ctx, r, id))
	data.Title = "Edit " + t.Label() + " role"
	data.Editing = true
	data.RoleID = roleID
	data.Action = roleURL(id, t, roleID) + "/edit"
	data.Input = contactform.RoleFromModel(*found)
	templates.Render(w, r, "role_form", data)
}

// HandleEditRole handles POST /contacts/{id}/roles/{type}/{roleID}/edit.
// The role type comes from the path.
func (h *Handler) HandleEditRole(w http.ResponseWriter, r *http.Request) {
	id, t, roleID, ok := roleParams(r)
	back := detailURL(id, tabRoles)
	if !ok {
		uierrors.RenderNotFound(w, r, "Role not found.", back)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", back)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update role")
	defer cancel()

	in := contactform.ParseRole(r.PostForm, t)
	data := h.roleFormData(r, id, h.contactName(ctx, r, id))
	data.Title = "Edit " + t.Label() + " role"
	data.Editing = true
	data.RoleID = roleID
	data.Action = roleURL(id, t, roleID) + "/edit"
	data.Input = in

	if res := contactform.ValidateRole(in, models.RoleSet{}, false); res.HasErrors() {
		data.SetResult(res)
		templates.Render(w, r, "role_form", data)
		return
	}

	role, err := h.API.UpdateRole(ctx, t, roleID, contactform.ToRoleDTO(in, id))
	if err != nil {
		h.Log.Warn("update role failed",
			zap.String("contact_id", id),
			zap.String("role_id", roleID),
			zap.Int("upstream_status", contactsapi.StatusOf(err)),
			zap.Error(err))
		data.SetError(contactsapi.MessageOf(err))
		templates.Render(w, r, "role_form", data)
		return
	}
	if role.ContactID == "" {
		role.ContactID = id
	}

	h.Audit.RoleUpdated(ctx, r, role)
	h.Queries.InvalidateContact(ctx, id)

	navigation.Redirect(w, r, back)
}

// HandleDeleteRole handles POST /contacts/{id}/roles/{type}/{roleID}/delete.
func (h *Handler) HandleDeleteRole(w http.ResponseWriter, r *http.Request) {
	id, t, roleID, ok := roleParams(r)
	back := detailURL(id, tabRoles)
	if !ok {
		if uierrors.IsHTMX(r) {
			uierrors.HTMXNotFound(w, r, "Role not found.", back)
			return
		}
		uierrors.RenderNotFound(w, r, "Role not found.", back)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete role")
	defer cancel()

	if err := h.API.DeleteRole(ctx, t, roleID); err != nil {
		h.ErrLog.LogUpstreamError(w, r, "delete role failed", err, upstreamStatus(err), contactsapi.MessageOf(err), back)
		return
	}

	h.Audit.RoleDeleted(ctx, r, id, t, roleID)
	h.Queries.InvalidateContact(ctx, id)

	h.afterPanelMutation(w, r, id, tabRoles)
}
