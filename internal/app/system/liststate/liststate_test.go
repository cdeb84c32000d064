package liststate

import (
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/joindate"
	"github.com/dalemusser/contacthub/internal/app/system/listview"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/google/go-cmp/cmp"
)

var allowState = cmp.AllowUnexported(State{})

func onPage(s State, page int) State {
	s.Page = page
	return s
}

func TestReduce_FilterChangesResetPage(t *testing.T) {
	base := onPage(Default(10), 4)

	tests := []struct {
		name   string
		action Action
	}{
		{"search", SetSearch{Value: "ada"}},
		{"status", SetStatus{Value: listview.StatusInactive}},
		{"type", SetType{Value: models.ContactTypeOrganization}},
		{"join date", SetJoinDate{Value: joindate.LastYear}},
		{"new sort field", ToggleSort{Field: listview.SortDisplayName}},
		{"page size", SetPageSize{Size: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(base, tt.action)
			if got.Page != 1 {
				t.Errorf("Page = %d after %T, want 1", got.Page, tt.action)
			}
		})
	}
}

func TestReduce_NonQueryActionsKeepPage(t *testing.T) {
	base := onPage(Default(10), 3)

	for _, a := range []Action{
		Select{ID: "c42"},
		ResizePanel{Width: 700},
		SetSearch{Value: ""},      // unchanged
		SetPageSize{Size: 7},      // not an allowed size, ignored
		SetStatus{Value: "bogus"}, // parses to the current "all"
	} {
		if got := Reduce(base, a); got.Page != 3 {
			t.Errorf("Page = %d after %#v, want 3", got.Page, a)
		}
	}
}

func TestReduce_ToggleSort(t *testing.T) {
	s := Default(10)

	s = Reduce(s, ToggleSort{Field: listview.SortDisplayName})
	if s.SortField != listview.SortDisplayName || s.SortDir != listview.Asc {
		t.Fatalf("first toggle = %s %s, want displayName asc", s.SortField, s.SortDir)
	}

	s = onPage(s, 2)
	s = Reduce(s, ToggleSort{Field: listview.SortDisplayName})
	if s.SortDir != listview.Desc || s.Page != 1 {
		t.Fatalf("second toggle = %s page %d, want desc page 1", s.SortDir, s.Page)
	}

	s = Reduce(s, ToggleSort{Field: listview.SortJoinDate})
	if s.SortField != listview.SortJoinDate || s.SortDir != listview.Asc {
		t.Fatalf("new field = %s %s, want joinDate asc", s.SortField, s.SortDir)
	}
}

func TestReduce_ClearFiltersIsAtomic(t *testing.T) {
	s := Default(25)
	s.Search = "acme"
	s.Status = listview.StatusActive
	s.Type = models.ContactTypeOrganization
	s.JoinDate = joindate.ThisYear
	s.SortField = listview.SortCountry
	s.SortDir = listview.Desc
	s.Page = 5
	s.PageSize = 50
	s.Selected = "c1"
	s.PanelWidth = 600

	got := Reduce(s, ClearFilters{})

	want := s
	want.Search = ""
	want.Status = listview.StatusAll
	want.Type = ""
	want.JoinDate = joindate.None
	want.Page = 1

	if diff := cmp.Diff(want, got, allowState); diff != "" {
		t.Errorf("ClearFilters (-want +got):\n%s", diff)
	}
	if got.HasFilters() {
		t.Error("HasFilters after clear")
	}
}

func TestReduce_PageAndPanelClamp(t *testing.T) {
	s := Default(10)
	if got := Reduce(s, SetPage{Page: -3}).Page; got != 1 {
		t.Errorf("SetPage(-3) = %d, want 1", got)
	}
	if got := Reduce(s, SetPage{Page: 9}).Page; got != 9 {
		t.Errorf("SetPage(9) = %d, want 9", got)
	}
	if got := Reduce(s, ResizePanel{Width: 100}).PanelWidth; got != MinPanelWidth {
		t.Errorf("narrow panel = %d, want %d", got, MinPanelWidth)
	}
	if got := Reduce(s, ResizePanel{Width: 5000}).PanelWidth; got != MaxPanelWidth {
		t.Errorf("wide panel = %d, want %d", got, MaxPanelWidth)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := onPage(Default(10), 2)
	before := s
	_ = Reduce(s, ClearFilters{})
	_ = Reduce(s, SetSearch{Value: "x"})
	if diff := cmp.Diff(before, s, allowState); diff != "" {
		t.Errorf("input changed:\n%s", diff)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	def := Default(25)

	states := []State{
		def,
		func() State {
			s := def
			s.Search = "ada lovelace"
			s.Status = listview.StatusInactive
			s.Type = models.ContactTypePerson
			s.JoinDate = joindate.Last90Days
			s.SortField = listview.SortJoinDate
			s.SortDir = listview.Desc
			s.Page = 3
			s.PageSize = 100
			s.Selected = "c-9"
			s.PanelWidth = 720
			return s
		}(),
		func() State {
			s := def
			s.PageSize = 10
			return s
		}(),
	}

	for _, s := range states {
		q, err := url.ParseQuery(s.Query().Encode())
		if err != nil {
			t.Fatal(err)
		}
		got := FromQuery(q, def)
		if diff := cmp.Diff(s, got, allowState); diff != "" {
			t.Errorf("round trip of %s (-want +got):\n%s", s.URL(), diff)
		}
	}

	if enc := def.Query().Encode(); enc != "" {
		t.Errorf("default state encodes to %q, want empty", enc)
	}
}

func TestFromQuery_InvalidValuesFallBack(t *testing.T) {
	def := Default(10)
	q := url.Values{
		"status": {"maybe"},
		"type":   {"robot"},
		"joined": {"last_week"},
		"sort":   {"password"},
		"dir":    {"desc"},
		"page":   {"0"},
		"size":   {"7"},
		"panel":  {"99999"},
	}
	got := FromQuery(q, def)

	want := def
	want.PanelWidth = MaxPanelWidth
	if diff := cmp.Diff(want, got, allowState); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFromQuery_CapsPage(t *testing.T) {
	got := FromQuery(url.Values{"page": {"922337203685477582"}}, Default(10))
	if got.Page != paging.MaxPage {
		t.Errorf("Page = %d, want %d", got.Page, paging.MaxPage)
	}
}

func TestWithBuildsNextURL(t *testing.T) {
	s := onPage(Default(10), 2)
	s.SortField = listview.SortDisplayName

	if got, want := s.SortURL("displayName"), "?dir=desc&sort=displayName"; got != want {
		t.Errorf("SortURL = %q, want %q", got, want)
	}
	if got, want := s.PageURL(3), "?dir=asc&page=3&sort=displayName"; got != want {
		t.Errorf("PageURL = %q, want %q", got, want)
	}
	if got, want := s.SelectURL("c1"), "?dir=asc&page=2&selected=c1&sort=displayName"; got != want {
		t.Errorf("SelectURL = %q, want %q", got, want)
	}
	if s.SortIndicator("displayName") != "asc" || s.SortIndicator("email") != "" {
		t.Error("SortIndicator mismatch")
	}
}

func TestServerParams(t *testing.T) {
	today := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := Default(10)
	s.Search = "acme"
	s.Status = listview.StatusActive
	s.Type = models.ContactTypeOrganization
	s.JoinDate = joindate.LastYear
	s.SortField = listview.SortDisplayName
	s.Page = 4

	p := ServerParams(s, today)
	if p.ContactType != models.ContactTypeOrganization || p.Search != "acme" {
		t.Errorf("filters not forwarded: %+v", p)
	}
	if p.IsActive == nil || !*p.IsActive {
		t.Errorf("IsActive hint = %v, want true", p.IsActive)
	}
	if p.JoinDateFrom != "2024-01-01" || p.JoinDateTo != "2024-12-31" {
		t.Errorf("join range = %s..%s", p.JoinDateFrom, p.JoinDateTo)
	}
	if p.Limit != FetchLimit || p.Page != 1 {
		t.Errorf("Limit=%d Page=%d, want %d and 1", p.Limit, p.Page, FetchLimit)
	}
	if p.SortBy != "" {
		t.Errorf("SortBy = %q, sorting is client-side", p.SortBy)
	}

	// Client-only changes keep the server key.
	moved := Reduce(Reduce(s, SetPage{Page: 2}), Select{ID: "x"})
	moved = Reduce(moved, ToggleSort{Field: listview.SortCountry})
	if ServerKey(s, today) != ServerKey(moved, today) {
		t.Error("sort/page/selection changed the server key")
	}
	if ServerKey(s, today) == ServerKey(Reduce(s, SetSearch{Value: "other"}), today) {
		t.Error("search change kept the server key")
	}
}

func TestPipelineParams(t *testing.T) {
	s := Default(25)
	s.Status = listview.StatusInactive
	s.SortField = listview.SortEmail
	s.SortDir = listview.Desc
	s.Page = 2

	want := listview.Params{Status: listview.StatusInactive, SortField: listview.SortEmail, SortDir: listview.Desc, PageSize: 25, Page: 2}
	if diff := cmp.Diff(want, PipelineParams(s)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct{ page, total, want int }{
		{5, 2, 2},
		{1, 0, 1},
		{2, 3, 2},
	}
	for _, tt := range tests {
		if got := ClampPage(onPage(Default(10), tt.page), tt.total).Page; got != tt.want {
			t.Errorf("ClampPage(page %d, total %d) = %d, want %d", tt.page, tt.total, got, tt.want)
		}
	}
}
