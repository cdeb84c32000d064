package listview

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/google/go-cmp/cmp"
)

func person(id, name string, active bool) models.Contact {
	return models.Contact{
		ID:            id,
		ContactType:   models.ContactTypePerson,
		DisplayName:   name,
		IsActive:      active,
		PersonDetails: &models.PersonDetails{FirstName: name},
	}
}

func org(id, name string, active bool) models.Contact {
	return models.Contact{
		ID:                  id,
		ContactType:         models.ContactTypeOrganization,
		DisplayName:         name,
		IsActive:            active,
		OrganizationDetails: &models.OrganizationDetails{LegalName: name},
	}
}

func ids(rows []models.Contact) []string {
	out := make([]string, len(rows))
	for i, c := range rows {
		out[i] = c.ID
	}
	return out
}

func TestApply_Idempotent(t *testing.T) {
	raw := []models.Contact{
		person("1", "Carol", true),
		org("2", "acme", false),
		person("3", "Bob", true),
		person("4", "alice", true),
	}
	p := Params{Status: StatusActive, SortField: SortDisplayName, SortDir: Desc, PageSize: 2, Page: 1}

	first := Apply(raw, p)
	second := Apply(raw, p)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Apply not idempotent (-first +second):\n%s", diff)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	raw := []models.Contact{
		person("1", "b", true),
		person("2", "a", false),
	}
	before := ids(raw)
	Apply(raw, Params{Status: StatusActive, SortField: SortDisplayName, PageSize: 10, Page: 1})
	if diff := cmp.Diff(before, ids(raw)); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

// The server may ignore isActive=false and return active rows anyway.
func TestFilterStatus_CompensatesForServerIgnoringFilter(t *testing.T) {
	raw := []models.Contact{
		person("1", "a", true),
		person("2", "b", false),
		org("3", "c", true),
		org("4", "d", false),
	}

	got := Apply(raw, Params{Status: StatusInactive, PageSize: 100, Page: 1})
	for _, c := range got.Rows {
		if c.IsActive {
			t.Errorf("inactive filter leaked active row %s", c.ID)
		}
	}
	if diff := cmp.Diff([]string{"2", "4"}, ids(got.Rows)); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}

	all := FilterStatus(raw, StatusAll)
	if len(all) != len(raw) {
		t.Errorf("empty status filter kept %d rows, want %d", len(all), len(raw))
	}
}

func TestSort_CaseInsensitive(t *testing.T) {
	raw := []models.Contact{
		person("1", "charlie", true),
		person("2", "Alice", true),
		person("3", "bob", true),
	}
	got := Sort(raw, SortDisplayName, Asc)
	if diff := cmp.Diff([]string{"2", "3", "1"}, ids(got)); diff != "" {
		t.Errorf("asc order (-want +got):\n%s", diff)
	}
	got = Sort(raw, SortDisplayName, Desc)
	if diff := cmp.Diff([]string{"1", "3", "2"}, ids(got)); diff != "" {
		t.Errorf("desc order (-want +got):\n%s", diff)
	}
}

func TestSort_StableForDuplicatesInBothDirections(t *testing.T) {
	raw := []models.Contact{
		person("a1", "Same", true),
		person("z", "Zed", true),
		person("a2", "same", true),
		person("b", "Bee", true),
		person("a3", "SAME", true),
	}

	asc := ids(Sort(raw, SortDisplayName, Asc))
	desc := ids(Sort(raw, SortDisplayName, Desc))

	if diff := cmp.Diff([]string{"b", "a1", "a2", "a3", "z"}, asc); diff != "" {
		t.Errorf("asc (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"z", "a1", "a2", "a3", "b"}, desc); diff != "" {
		t.Errorf("desc (-want +got):\n%s", diff)
	}
}

func TestSort_MissingValuesFirstAscLastDesc(t *testing.T) {
	date := "2024-03-01"
	earlier := "2023-12-31"
	withDate := person("dated", "x", true)
	withDate.JoinDate = &date
	withEarlier := person("earlier", "y", true)
	withEarlier.JoinDate = &earlier
	noDate := org("nodate", "z", true)

	raw := []models.Contact{withDate, noDate, withEarlier}

	if diff := cmp.Diff([]string{"nodate", "earlier", "dated"}, ids(Sort(raw, SortJoinDate, Asc))); diff != "" {
		t.Errorf("asc (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"dated", "earlier", "nodate"}, ids(Sort(raw, SortJoinDate, Desc))); diff != "" {
		t.Errorf("desc (-want +got):\n%s", diff)
	}

	// firstName only exists on people; organizations compare as "".
	mixed := []models.Contact{person("p", "Pat", true), org("o", "Org", true)}
	if diff := cmp.Diff([]string{"o", "p"}, ids(Sort(mixed, SortFirstName, Asc))); diff != "" {
		t.Errorf("person-only field asc (-want +got):\n%s", diff)
	}
}

func TestSort_TimestampsOrderChronologically(t *testing.T) {
	a := person("a", "a", true)
	a.CreatedAt = time.Date(2024, 1, 2, 10, 0, 0, 500, time.UTC)
	b := person("b", "b", true)
	b.CreatedAt = time.Date(2024, 1, 2, 10, 0, 0, 0, time.FixedZone("x", 3600)) // 09:00 UTC
	c := person("c", "c", true)
	c.CreatedAt = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	got := ids(Sort([]models.Contact{a, b, c}, SortCreatedAt, Asc))
	if diff := cmp.Diff([]string{"b", "c", "a"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSort_NoFieldKeepsServerOrder(t *testing.T) {
	raw := []models.Contact{person("2", "b", true), person("1", "a", true)}
	if diff := cmp.Diff([]string{"2", "1"}, ids(Sort(raw, SortNone, Desc))); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestApply_ActiveSortedSecondPage(t *testing.T) {
	var raw []models.Contact
	for i := 0; i < 25; i++ {
		// interleave so status filtering matters; names are reverse ordered
		active := i%5 < 3 // 15 active, 10 inactive
		raw = append(raw, person(fmt.Sprintf("c%02d", i), fmt.Sprintf("Name %02d", 24-i), active))
	}

	got := Apply(raw, Params{
		Status:    StatusActive,
		SortField: SortDisplayName,
		SortDir:   Asc,
		PageSize:  10,
		Page:      2,
	})

	if got.TotalItems != 15 {
		t.Fatalf("TotalItems = %d, want 15", got.TotalItems)
	}
	if got.TotalPages != 2 {
		t.Fatalf("TotalPages = %d, want 2", got.TotalPages)
	}
	if len(got.Rows) != 5 {
		t.Fatalf("len(Rows) = %d, want 5", len(got.Rows))
	}

	sortedActive := Sort(FilterStatus(raw, StatusActive), SortDisplayName, Asc)
	if diff := cmp.Diff(ids(sortedActive[10:15]), ids(got.Rows)); diff != "" {
		t.Errorf("page 2 rows (-want +got):\n%s", diff)
	}
	if got.Start != 11 || got.End != 15 {
		t.Errorf("display range = %d..%d, want 11..15", got.Start, got.End)
	}
}

func TestApply_EmptyInput(t *testing.T) {
	for _, p := range []Params{
		{PageSize: 10, Page: 1},
		{Status: StatusActive, SortField: SortDisplayName, SortDir: Desc, PageSize: 25, Page: 3},
		{Status: StatusInactive, SortField: SortJoinDate, PageSize: 0, Page: 0},
	} {
		got := Apply(nil, p)
		if got.Rows == nil || len(got.Rows) != 0 {
			t.Errorf("Apply(nil, %+v).Rows = %#v, want empty slice", p, got.Rows)
		}
		if got.TotalItems != 0 || got.TotalPages != 0 {
			t.Errorf("Apply(nil, %+v) totals = %d/%d, want 0/0", p, got.TotalItems, got.TotalPages)
		}
	}
}

func TestApply_PagePastEndIsEmpty(t *testing.T) {
	raw := []models.Contact{person("1", "a", true), person("2", "b", true), person("3", "c", true)}
	got := Apply(raw, Params{PageSize: 2, Page: 5})
	if len(got.Rows) != 0 {
		t.Errorf("len(Rows) = %d, want 0", len(got.Rows))
	}
	if got.TotalPages != 2 || got.Page != 5 {
		t.Errorf("TotalPages=%d Page=%d, want 2 and 5 (page not self-corrected)", got.TotalPages, got.Page)
	}
	if got.Start != 0 || got.End != 0 {
		t.Errorf("display range = %d..%d, want 0..0", got.Start, got.End)
	}
}

func TestPaginate_HugePageIsEmpty(t *testing.T) {
	page := math.MaxInt/10 + 1
	got := Paginate(make([]models.Contact, 3), 10, page)
	if len(got.Rows) != 0 || got.Start != 0 || got.End != 0 {
		t.Errorf("Paginate(3 rows, 10, %d) = %d rows, range %d..%d, want empty", page, len(got.Rows), got.Start, got.End)
	}
	if got.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", got.TotalPages)
	}
}

func TestParseHelpers(t *testing.T) {
	if ParseStatus("inactive") != StatusInactive || ParseStatus("bogus") != StatusAll {
		t.Error("ParseStatus mapping wrong")
	}
	if ParseSortField("joinDate") != SortJoinDate || ParseSortField("password") != SortNone {
		t.Error("ParseSortField mapping wrong")
	}
	if ParseSortDir("DESC") != Desc || ParseSortDir("") != Asc {
		t.Error("ParseSortDir mapping wrong")
	}
	if v := StatusActive.IsActiveParam(); v == nil || !*v {
		t.Error("active should send isActive=true")
	}
	if v := StatusInactive.IsActiveParam(); v == nil || *v {
		t.Error("inactive should send isActive=false")
	}
	if StatusAll.IsActiveParam() != nil {
		t.Error("all should not send isActive")
	}
}
