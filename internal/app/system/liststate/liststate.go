// Package liststate holds the contacts list view state (filters, sort, page,
// selection, panel width) as one value, changed only through Reduce.
//
// The state round-trips through the page URL, so every link in the list page
// is State.With(action) of the current state.
package liststate

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/joindate"
	"github.com/dalemusser/contacthub/internal/app/system/listview"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/domain/models"
)

const (
	MinPanelWidth     = 320
	MaxPanelWidth     = 960
	DefaultPanelWidth = 480

	// FetchLimit caps one list fetch. Status, sort and paging run over the
	// fetched rows, so the server is asked for one large page.
	FetchLimit = 500
)

// State is the complete view state of the contacts list.
type State struct {
	Search     string
	Status     listview.StatusFilter
	Type       models.ContactType // "" means all types
	JoinDate   joindate.Bucket
	SortField  listview.SortField
	SortDir    listview.SortDir
	Page       int
	PageSize   int
	Selected   string // contact id shown in the detail panel
	PanelWidth int

	// defaultSize is the configured page size, omitted from URLs.
	defaultSize int
}

// Default returns the initial state for the given default page size.
func Default(pageSize int) State {
	if !paging.IsAllowedSize(pageSize) {
		pageSize = paging.DefaultPageSize
	}
	return State{
		SortDir:     listview.Asc,
		Page:        1,
		PageSize:    pageSize,
		PanelWidth:  DefaultPanelWidth,
		defaultSize: pageSize,
	}
}

// HasFilters reports whether any filter is set.
func (s State) HasFilters() bool {
	return s.Search != "" || s.Status != listview.StatusAll || s.Type != "" || s.JoinDate != joindate.None
}

// DefaultPageSize is the page size omitted from URLs.
func (s State) DefaultPageSize() int {
	if s.defaultSize == 0 {
		return paging.DefaultPageSize
	}
	return s.defaultSize
}

func clampWidth(w int) int {
	return max(MinPanelWidth, min(w, MaxPanelWidth))
}

// ServerParams are the list filters sent to the contacts service. Status is
// sent as a hint only; listview re-applies it.
func ServerParams(s State, today time.Time) contactsapi.ListParams {
	p := contactsapi.ListParams{
		ContactType: s.Type,
		IsActive:    s.Status.IsActiveParam(),
		Search:      s.Search,
		Page:        1,
		Limit:       FetchLimit,
	}
	if r, ok := joindate.Range(s.JoinDate, today); ok {
		p.JoinDateFrom = r.From
		p.JoinDateTo = r.To
	}
	return p
}

// ServerKey identifies the server-side part of s. Two states with the same
// key are served by the same fetch.
func ServerKey(s State, today time.Time) string {
	return ServerParams(s, today).Values().Encode()
}

// PipelineParams are the client-side parameters for listview.Apply.
func PipelineParams(s State) listview.Params {
	return listview.Params{
		Status:    s.Status,
		SortField: s.SortField,
		SortDir:   s.SortDir,
		PageSize:  s.PageSize,
		Page:      s.Page,
	}
}

// ClampPage moves an out-of-range page back to the last page. The list page
// uses it to build the "go to last page" link; the pipeline never corrects.
func ClampPage(s State, totalPages int) State {
	switch {
	case totalPages < 1:
		s.Page = 1
	case s.Page > totalPages:
		s.Page = totalPages
	case s.Page < 1:
		s.Page = 1
	}
	return s
}

// Query keys.
const (
	keySearch   = "q"
	keyStatus   = "status"
	keyType     = "type"
	keyJoined   = "joined"
	keySort     = "sort"
	keyDir      = "dir"
	keyPage     = "page"
	keySize     = "size"
	keySelected = "selected"
	keyPanel    = "panel"
)

// FromQuery reads the state from URL query values. Missing or invalid values
// take the value from defaults.
func FromQuery(q url.Values, defaults State) State {
	s := defaults
	s.Search = strings.TrimSpace(q.Get(keySearch))
	s.Status = listview.ParseStatus(q.Get(keyStatus))
	if t := models.ContactType(q.Get(keyType)); t.IsValid() {
		s.Type = t
	} else {
		s.Type = ""
	}
	s.JoinDate = joindate.Parse(q.Get(keyJoined))
	s.SortField = listview.ParseSortField(q.Get(keySort))
	if s.SortField != listview.SortNone {
		s.SortDir = listview.ParseSortDir(q.Get(keyDir))
	}
	if n, err := strconv.Atoi(q.Get(keyPage)); err == nil && n >= 1 {
		s.Page = paging.ClampPage(n)
	}
	if n, err := strconv.Atoi(q.Get(keySize)); err == nil && paging.IsAllowedSize(n) {
		s.PageSize = n
	}
	s.Selected = strings.TrimSpace(q.Get(keySelected))
	if n, err := strconv.Atoi(q.Get(keyPanel)); err == nil {
		s.PanelWidth = clampWidth(n)
	}
	return s
}

// Query encodes s as URL query values, omitting default values.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Search != "" {
		q.Set(keySearch, s.Search)
	}
	if s.Status != listview.StatusAll {
		q.Set(keyStatus, string(s.Status))
	}
	if s.Type != "" {
		q.Set(keyType, string(s.Type))
	}
	if s.JoinDate != joindate.None {
		q.Set(keyJoined, string(s.JoinDate))
	}
	if s.SortField != listview.SortNone {
		q.Set(keySort, string(s.SortField))
		q.Set(keyDir, string(s.SortDir))
	}
	if s.Page > 1 {
		q.Set(keyPage, strconv.Itoa(s.Page))
	}
	if s.PageSize != s.DefaultPageSize() {
		q.Set(keySize, strconv.Itoa(s.PageSize))
	}
	if s.Selected != "" {
		q.Set(keySelected, s.Selected)
	}
	if s.PanelWidth != DefaultPanelWidth && s.PanelWidth != 0 {
		q.Set(keyPanel, strconv.Itoa(s.PanelWidth))
	}
	return q
}

// URL returns the query string for s, with a leading "?" when non-empty.
func (s State) URL() string {
	enc := s.Query().Encode()
	if enc == "" {
		return "?"
	}
	return "?" + enc
}

// With returns the URL of the state after applying a.
func (s State) With(a Action) string {
	return Reduce(s, a).URL()
}

// Template helpers. Templates cannot build Action values, so the common
// transitions get named methods.

func (s State) SortURL(field string) string {
	return s.With(ToggleSort{Field: listview.ParseSortField(field)})
}

func (s State) PageURL(page int) string { return s.With(SetPage{Page: page}) }

func (s State) PageSizeURL(size int) string { return s.With(SetPageSize{Size: size}) }

func (s State) SelectURL(id string) string { return s.With(Select{ID: id}) }

func (s State) ClearURL() string { return s.With(ClearFilters{}) }

// SortIndicator is "asc" or "desc" for the active sort column, else "".
func (s State) SortIndicator(field string) string {
	if s.SortField == listview.SortNone || string(s.SortField) != field {
		return ""
	}
	return string(s.SortDir)
}
