package listview

import (
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"golang.org/x/text/cases"
)

// SortField names a sortable column.
type SortField string

const (
	SortNone        SortField = ""
	SortDisplayName SortField = "displayName"
	SortContactType SortField = "contactType"
	SortIsActive    SortField = "isActive"
	SortJoinDate    SortField = "joinDate"
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
	SortEmail       SortField = "email"
	SortCountry     SortField = "country"
	SortFirstName   SortField = "firstName"
	SortLastName    SortField = "lastName"
	SortLegalName   SortField = "legalName"
)

var sortFields = []SortField{
	SortDisplayName, SortContactType, SortIsActive, SortJoinDate,
	SortCreatedAt, SortUpdatedAt, SortEmail, SortCountry,
	SortFirstName, SortLastName, SortLegalName,
}

// ParseSortField maps a query value to a SortField; unknown values mean none.
func ParseSortField(s string) SortField {
	for _, f := range sortFields {
		if string(f) == s {
			return f
		}
	}
	return SortNone
}

// SortDir is the sort direction.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// ParseSortDir maps a query value to a SortDir; anything but "desc" is asc.
func ParseSortDir(s string) SortDir {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Flip returns the opposite direction.
func (d SortDir) Flip() SortDir {
	if d == Desc {
		return Asc
	}
	return Desc
}

// timeKeyLayout is fixed width so that formatted UTC instants compare
// correctly as strings.
const timeKeyLayout = "2006-01-02T15:04:05.000000000Z"

// sortKey returns the raw string value of field for c. Missing values are "".
func sortKey(c models.Contact, field SortField) string {
	switch field {
	case SortDisplayName:
		return c.DisplayName
	case SortContactType:
		return string(c.ContactType)
	case SortIsActive:
		if c.IsActive {
			return "true"
		}
		return "false"
	case SortJoinDate:
		return models.Deref(c.JoinDate)
	case SortCreatedAt:
		return timeKey(c.CreatedAt)
	case SortUpdatedAt:
		return timeKey(c.UpdatedAt)
	case SortEmail:
		return c.Email()
	case SortCountry:
		return c.Country()
	case SortFirstName:
		if c.PersonDetails != nil {
			return c.PersonDetails.FirstName
		}
	case SortLastName:
		if c.PersonDetails != nil {
			return models.Deref(c.PersonDetails.LastName)
		}
	case SortLegalName:
		if c.OrganizationDetails != nil {
			return c.OrganizationDetails.LegalName
		}
	}
	return ""
}

func timeKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeKeyLayout)
}

// Sort returns a stably sorted copy of contacts.
//
// Values compare as case-folded strings; ISO dates and the fixed-width time
// keys order correctly that way. Missing values compare as "", so they come
// first ascending and last descending. Direction only flips the comparator
// sign: equal keys keep their input order in both directions. With no field
// the input order is returned unchanged.
func Sort(contacts []models.Contact, field SortField, dir SortDir) []models.Contact {
	out := slices.Clone(contacts)
	if field == SortNone || len(out) < 2 {
		return out
	}

	// Fold each key once; a Caser is stateful, so it is not shared.
	fold := cases.Fold()
	type keyed struct {
		c   models.Contact
		key string
	}
	rows := make([]keyed, len(out))
	for i, c := range out {
		rows[i] = keyed{c: c, key: fold.String(sortKey(c, field))}
	}

	sign := 1
	if dir == Desc {
		sign = -1
	}
	slices.SortStableFunc(rows, func(a, b keyed) int {
		return sign * strings.Compare(a.key, b.key)
	})

	for i := range rows {
		out[i] = rows[i].c
	}
	return out
}
