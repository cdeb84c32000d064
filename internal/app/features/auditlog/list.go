// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/contacthub/internal/app/store/audit"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /audit - displays the audit log list with filtering.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	f := parseFilters(r.URL.Query())
	page := paging.ParsePage(r)

	filter := audit.QueryFilter{
		ContactID: f.ContactID,
		Category:  f.Category,
		EventType: f.EventType,
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if f.StartDate != "" {
		if t, err := time.Parse("2006-01-02", f.StartDate); err == nil {
			filter.StartTime = &t
		}
	}
	if f.EndDate != "" {
		if t, err := time.Parse("2006-01-02", f.EndDate); err == nil {
			// End of day
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		}
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to query audit events", err, "A database error occurred.", "/contacts")
		return
	}

	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count audit events", err, "A database error occurred.", "/contacts")
		return
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			ContactID: e.ContactID,
			RoleType:  e.RoleType,
			RoleID:    e.RoleID,
			ActorName: e.ActorName,
			IP:        e.IP,
			Success:   e.Success,
			Details:   e.Details,
		}
		if item.ActorName == "" {
			item.ActorName = e.ActorSubject
		}
		if e.ContactID != "" && e.EventType != audit.EventContactDeleted {
			item.ContactURL = "/contacts?selected=" + url.QueryEscape(e.ContactID)
		}
		items = append(items, item)
	}

	totalPages := max(paging.TotalPages(int(total), pageSize), 1)
	rng := paging.ComputeRange(page, pageSize, len(items), totalPages)

	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Activity", "/contacts"),
		Items:      items,
		Filters:    f,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(f.Category),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
	}
	if rng.PrevPage > 0 {
		data.PrevURL = f.url(rng.PrevPage)
	}
	if rng.NextPage > 0 {
		data.NextURL = f.url(rng.NextPage)
	}

	h.Log.Debug("audit list served",
		zap.Int("page", page),
		zap.Int("shown", len(items)),
		zap.Int64("total", total))

	templates.Render(w, r, "audit_list", data)
}

// parseFilters reads the filter parameters. Unknown categories and event
// types are dropped rather than sent to the store.
func parseFilters(q url.Values) filters {
	f := filters{
		ContactID: strings.TrimSpace(q.Get("contact")),
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
	}
	if eventTypesForCategory(f.Category) == nil {
		f.Category = ""
	}
	if f.EventType != "" && !slices.Contains(eventTypesForCategory(f.Category), f.EventType) {
		f.EventType = ""
	}
	for _, d := range []*string{&f.StartDate, &f.EndDate} {
		if _, err := time.Parse("2006-01-02", *d); err != nil {
			*d = ""
		}
	}
	return f
}
