package liststate

import (
	"strings"

	"github.com/dalemusser/contacthub/internal/app/system/joindate"
	"github.com/dalemusser/contacthub/internal/app/system/listview"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/domain/models"
)

// Action is one user interaction on the list page.
type Action interface {
	isAction()
}

type (
	SetSearch    struct{ Value string }
	SetStatus    struct{ Value listview.StatusFilter }
	SetType      struct{ Value models.ContactType }
	SetJoinDate  struct{ Value joindate.Bucket }
	ToggleSort   struct{ Field listview.SortField }
	SetPage      struct{ Page int }
	SetPageSize  struct{ Size int }
	ClearFilters struct{}
	Select       struct{ ID string }
	ResizePanel  struct{ Width int }
)

func (SetSearch) isAction()    {}
func (SetStatus) isAction()    {}
func (SetType) isAction()      {}
func (SetJoinDate) isAction()  {}
func (ToggleSort) isAction()   {}
func (SetPage) isAction()      {}
func (SetPageSize) isAction()  {}
func (ClearFilters) isAction() {}
func (Select) isAction()       {}
func (ResizePanel) isAction()  {}

// Reduce returns the state after a. Any change to a filter, the sort or the
// page size puts the list back on page 1. Selecting a row and resizing the
// panel keep the page.
func Reduce(s State, a Action) State {
	next := s
	switch a := a.(type) {
	case SetSearch:
		next.Search = strings.TrimSpace(a.Value)
	case SetStatus:
		next.Status = listview.ParseStatus(string(a.Value))
	case SetType:
		if a.Value.IsValid() {
			next.Type = a.Value
		} else {
			next.Type = ""
		}
	case SetJoinDate:
		next.JoinDate = joindate.Parse(string(a.Value))
	case ToggleSort:
		switch {
		case a.Field == listview.SortNone:
			next.SortField = listview.SortNone
			next.SortDir = listview.Asc
		case a.Field == s.SortField:
			next.SortDir = s.SortDir.Flip()
		default:
			next.SortField = a.Field
			next.SortDir = listview.Asc
		}
	case SetPageSize:
		if paging.IsAllowedSize(a.Size) {
			next.PageSize = a.Size
		}
	case ClearFilters:
		next.Search = ""
		next.Status = listview.StatusAll
		next.Type = ""
		next.JoinDate = joindate.None
		next.Page = 1
		return next
	case SetPage:
		next.Page = max(a.Page, 1)
		return next
	case Select:
		next.Selected = strings.TrimSpace(a.ID)
		return next
	case ResizePanel:
		next.PanelWidth = clampWidth(a.Width)
		return next
	default:
		return s
	}

	if queryChanged(s, next) {
		next.Page = 1
	}
	return next
}

// queryChanged reports whether a filter, the sort or the page size differs.
func queryChanged(a, b State) bool {
	return a.Search != b.Search ||
		a.Status != b.Status ||
		a.Type != b.Type ||
		a.JoinDate != b.JoinDate ||
		a.SortField != b.SortField ||
		a.SortDir != b.SortDir ||
		a.PageSize != b.PageSize
}
