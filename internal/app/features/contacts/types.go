// internal/app/features/contacts/types.go
package contacts

import (
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/contactform"
	"github.com/dalemusser/contacthub/internal/app/system/formutil"
	"github.com/dalemusser/contacthub/internal/app/system/joindate"
	"github.com/dalemusser/contacthub/internal/app/system/liststate"
	"github.com/dalemusser/contacthub/internal/app/system/listview"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/contacthub/internal/domain/models"
)

// column is one sortable table header.
type column struct {
	Field string
	Label string
}

var listColumns = []column{
	{string(listview.SortDisplayName), "Name"},
	{string(listview.SortContactType), "Type"},
	{string(listview.SortEmail), "Email"},
	{string(listview.SortCountry), "Country"},
	{string(listview.SortJoinDate), "Joined"},
	{string(listview.SortIsActive), "Status"},
}

type listData struct {
	viewdata.BaseVM

	State   liststate.State
	Result  listview.Result
	Range   paging.Range
	Pages   []int
	Columns []column

	// filter bar options
	Types     []models.ContactType
	Buckets   []joindate.Option
	PageSizes []int

	// OutOfRange is set when the page is past the last page; LastPageURL
	// links back into range.
	OutOfRange  bool
	LastPageURL string

	// Truncated is set when the service matched more rows than one fetch
	// returns.
	Truncated   bool
	ServerTotal int

	ListURL   string
	ExportURL string
	LoadError *loadError
}

// Detail tabs.
const (
	tabDetails = "details"
	tabRoles   = "roles"
	tabStatus  = "status"
	tabNotes   = "notes"
	tabGaming  = "gaming"
	tabDeals   = "deals"
)

var tabs = []struct{ Key, Label string }{
	{tabDetails, "Details"},
	{tabRoles, "Roles"},
	{tabStatus, "Status"},
	{tabNotes, "Notes"},
	{tabGaming, "Gaming accounts"},
	{tabDeals, "Deals"},
}

func parseTab(s string) string {
	for _, t := range tabs {
		if t.Key == s {
			return s
		}
	}
	return tabDetails
}

type tabLink struct {
	Key    string
	Label  string
	URL    string
	Active bool
}

// roleGroup is the roles of one type in the roles tab.
type roleGroup struct {
	Type   models.RoleType
	Label  string
	Roles  []models.Role
	Failed bool
}

// historyItem is one audit event in the status tab.
type historyItem struct {
	When    time.Time
	Event   string
	Actor   string
	Success bool
}

type detailData struct {
	viewdata.BaseVM

	ID      string
	Contact models.Contact
	Tab     string
	Tabs    []tabLink

	// roles tab
	RoleGroups []roleGroup
	CanAddRole bool

	// status tab
	ShowHistory  bool
	History      []historyItem
	HistoryError string
	HistoryURL   string

	// satellite tabs
	GamingAccounts []models.GamingAccount
	Deals          []models.Deal
	SatelliteError string

	LoadError *loadError
	ListURL   string
}

// typeOption is one entry of the contact type selector.
type typeOption struct {
	Value    models.ContactType
	Label    string
	Selected bool
}

type contactFormData struct {
	formutil.Base

	Editing    bool
	ContactID  string
	Action     string
	Type       models.ContactType
	TypeLocked bool
	Types      []typeOption

	Person       contactform.PersonInput
	Organization contactform.OrganizationInput
	IsActive     bool
}

type deleteData struct {
	formutil.Base

	ContactID   string
	DisplayName string
	Return      string
}

type roleFormData struct {
	formutil.Base

	ContactID   string
	ContactName string
	RoleID      string
	Editing     bool
	Action      string
	Input       contactform.RoleInput
	Options     []contactform.RoleOption
}
