// internal/app/features/auditlog/types.go
package auditlog

import (
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/contacthub/internal/app/store/audit"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
)

// listItem represents a single audit event row for display.
type listItem struct {
	Timestamp  time.Time
	Category   string
	EventType  string
	ContactID  string
	ContactURL string // empty for deleted contacts
	RoleType   string
	RoleID     string
	ActorName  string // name, falling back to subject
	IP         string
	Success    bool
	Details    map[string]string
}

// filters are the query parameters the list understands.
type filters struct {
	ContactID string
	Category  string
	EventType string
	StartDate string
	EndDate   string
}

// url returns the list URL for these filters at page.
func (f filters) url(page int) string {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("contact", f.ContactID)
	set("category", f.Category)
	set("event_type", f.EventType)
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return "/audit"
	}
	return "/audit?" + q.Encode()
}

// listData is the view model for the audit log list page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	Filters filters

	// Filter options
	Categories []categoryOption
	EventTypes []string

	// Pagination
	Page       int
	TotalPages int
	Total      int64
	RangeStart int
	RangeEnd   int
	PrevURL    string
	NextURL    string
}

// categoryOption represents a category for the filter dropdown.
type categoryOption struct {
	Value string
	Label string
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryContact, Label: "Contacts"},
		{Value: audit.CategoryRole, Label: "Roles"},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	contactEvents := []string{
		audit.EventContactCreated,
		audit.EventContactUpdated,
		audit.EventContactDeleted,
		audit.EventContactStatusChanged,
		audit.EventContactNotesUpdated,
	}

	roleEvents := []string{
		audit.EventRoleCreated,
		audit.EventRoleUpdated,
		audit.EventRoleDeleted,
	}

	switch category {
	case audit.CategoryContact:
		return contactEvents
	case audit.CategoryRole:
		return roleEvents
	case "":
		all := make([]string, 0, len(contactEvents)+len(roleEvents))
		all = append(all, contactEvents...)
		all = append(all, roleEvents...)
		return all
	default:
		return nil
	}
}
