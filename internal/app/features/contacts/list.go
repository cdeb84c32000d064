// internal/app/features/contacts/list.go
package contacts

import (
	"net/http"

	"github.com/dalemusser/contacthub/internal/app/system/joindate"
	"github.com/dalemusser/contacthub/internal/app/system/liststate"
	"github.com/dalemusser/contacthub/internal/app/system/listview"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// tableTarget is the element htmx swaps for table-only updates.
const tableTarget = "contacts-table-wrap"

// ServeList handles GET /contacts. Filters that the service understands go
// into the fetch; status, sort and paging are applied to the fetched rows.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contacts list")
	defer cancel()

	state := h.listState(r)
	data := listData{
		BaseVM:    viewdata.NewBaseVM(r, "Contacts", "/contacts"),
		State:     state,
		Columns:   listColumns,
		Types:     models.ContactTypes(),
		Buckets:   joindate.Buckets(),
		PageSizes: paging.PageSizes,
		ListURL:   listURL(state),
		ExportURL: "/contacts/export.xlsx" + trimQuery(state),
	}

	page, err := h.Queries.List(ctx, cacheScope(r), liststate.ServerParams(state, h.today()))
	if err != nil {
		data.LoadError = h.readFailure(r, "contacts list fetch", err, data.ListURL)
	} else {
		res := listview.Apply(page.Data, liststate.PipelineParams(state))
		data.Result = res
		data.Range = paging.ComputeRange(res.Page, res.PageSize, len(res.Rows), res.TotalPages)
		data.Pages = paging.Window(res.Page, res.TotalPages, 7)
		if res.TotalPages > 0 && state.Page > res.TotalPages {
			data.OutOfRange = true
			data.LastPageURL = listURL(liststate.ClampPage(state, res.TotalPages))
		}
		if page.Pagination.Total > len(page.Data) {
			data.Truncated = true
			data.ServerTotal = page.Pagination.Total
			h.Log.Debug("contacts list truncated",
				zap.Int("fetched", len(page.Data)),
				zap.Int("total", page.Pagination.Total))
		}
	}

	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == tableTarget {
		templates.RenderSnippet(w, "contacts_table", data)
		return
	}
	if data.LoadError != nil {
		w.WriteHeader(data.LoadError.HTTPStatus())
	}
	templates.Render(w, r, "contacts_list", data)
}

// HandleClearFilters handles POST /contacts/clear. The form carries the
// current state; search, status, type and join date are reset together and
// the sort and page size survive.
func (h *Handler) HandleClearFilters(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/contacts")
		return
	}
	state := liststate.FromQuery(r.PostForm, liststate.Default(h.PageSize))
	state = liststate.Reduce(state, liststate.ClearFilters{})
	http.Redirect(w, r, listURL(state), http.StatusSeeOther)
}

func trimQuery(s liststate.State) string {
	q := s.URL()
	if q == "?" {
		return ""
	}
	return q
}
