// internal/app/features/contacts/detail.go
package contacts

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/store/audit"
	"github.com/dalemusser/contacthub/internal/app/system/navigation"
	"github.com/dalemusser/contacthub/internal/app/system/rolefetch"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// historyLimit is how many audit events the status tab lists.
const historyLimit = 10

// HistoryReader reads the audit trail of one contact, newest first.
type HistoryReader interface {
	GetByContact(ctx context.Context, contactID string, limit int64) ([]audit.Event, error)
}

// ServeContact handles GET /contacts/{id}?tab=... . htmx requests get the
// detail panel only; plain requests get it as a full page.
func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	h.servePanel(w, r, chi.URLParam(r, "id"), parseTab(r.URL.Query().Get("tab")))
}

func (h *Handler) servePanel(w http.ResponseWriter, r *http.Request, id, tab string) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contact detail")
	defer cancel()

	data := h.loadDetail(ctx, r, id, tab)

	if uierrors.IsHTMX(r) {
		templates.RenderSnippet(w, "contact_panel", data)
		return
	}
	if data.LoadError != nil {
		w.WriteHeader(data.LoadError.HTTPStatus())
	}
	templates.Render(w, r, "contact_detail", data)
}

// loadDetail fetches the contact and whatever the tab needs. The contact,
// its roles and its satellites are separate fetches with separate cache
// entries.
func (h *Handler) loadDetail(ctx context.Context, r *http.Request, id, tab string) detailData {
	data := detailData{
		BaseVM:  viewdata.NewBaseVM(r, "Contact", "/contacts"),
		ID:      id,
		Tab:     tab,
		ListURL: navigation.SafeBackURL(r, navigation.ContactsBackURL),
	}
	for _, t := range tabs {
		data.Tabs = append(data.Tabs, tabLink{
			Key:    t.Key,
			Label:  t.Label,
			URL:    detailURL(id, t.Key),
			Active: t.Key == tab,
		})
	}

	c, err := h.Queries.Detail(ctx, cacheScope(r), id)
	if err != nil {
		data.LoadError = h.readFailure(r, "contact fetch", err, detailURL(id, tab))
		return data
	}
	data.Contact = c
	data.Title = c.DisplayName

	switch tab {
	case tabRoles:
		agg := h.Queries.Roles(ctx, cacheScope(r), id)
		data.RoleGroups = roleGroups(agg)
		for _, t := range models.RoleTypes() {
			if !agg.Roles.Has(t) {
				data.CanAddRole = true
				break
			}
		}
	case tabStatus:
		h.loadHistory(ctx, &data)
	case tabGaming, tabDeals:
		sat := rolefetch.FetchSatellites(ctx, h.API, id, h.Log)
		data.GamingAccounts = sat.GamingAccounts
		data.Deals = sat.Deals
		if tab == tabGaming && sat.GamingErr != nil {
			data.SatelliteError = "Gaming accounts could not be loaded."
		}
		if tab == tabDeals && sat.DealsErr != nil {
			data.SatelliteError = "Deals could not be loaded."
		}
	}
	return data
}

// roleGroups lays the aggregate out per role type. A failed type shows a
// notice instead of an empty list.
func roleGroups(agg rolefetch.Aggregate) []roleGroup {
	out := make([]roleGroup, 0, len(models.RoleTypes()))
	for _, t := range models.RoleTypes() {
		_, failed := agg.Failed[t]
		out = append(out, roleGroup{
			Type:   t,
			Label:  t.Label(),
			Roles:  agg.Roles.ByType(t),
			Failed: failed,
		})
	}
	return out
}

// loadHistory fills the recent-changes block. A failed read only hides the
// list; the rest of the tab still renders.
func (h *Handler) loadHistory(ctx context.Context, data *detailData) {
	if h.History == nil {
		return
	}
	data.ShowHistory = true
	data.HistoryURL = "/audit?contact=" + url.QueryEscape(data.ID)

	events, err := h.History.GetByContact(ctx, data.ID, historyLimit)
	if err != nil {
		h.Log.Warn("contact history fetch failed", zap.String("contact_id", data.ID), zap.Error(err))
		data.HistoryError = "Recent changes could not be loaded."
		return
	}
	for _, e := range events {
		actor := e.ActorName
		if actor == "" {
			actor = e.ActorSubject
		}
		data.History = append(data.History, historyItem{
			When:    e.Timestamp,
			Event:   strings.ReplaceAll(e.EventType, "_", " "),
			Actor:   actor,
			Success: e.Success,
		})
	}
}
