// Package listview turns the contacts returned by the last list fetch into the
// rows the table shows: status re-filter, stable sort, page slice.
//
// Apply is a pure function of its inputs. It never mutates the slice it is
// given and never talks to the network; search, type and join-date filters are
// already applied server-side and are reflected in the input.
package listview

import (
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/domain/models"
)

// Params is the client-side part of the list state.
type Params struct {
	Status    StatusFilter
	SortField SortField // "" means keep server order
	SortDir   SortDir
	PageSize  int
	Page      int // 1-based
}

// Result is the page of rows to render plus pagination metadata.
type Result struct {
	Rows       []models.Contact
	TotalItems int
	TotalPages int
	Page       int
	PageSize   int

	// Start and End are the 1-based positions of the first and last rendered
	// rows, both 0 when nothing is shown.
	Start int
	End   int
}

// Apply runs filter, sort and paginate in that order.
func Apply(raw []models.Contact, p Params) Result {
	rows := FilterStatus(raw, p.Status)
	rows = Sort(rows, p.SortField, p.SortDir)
	return Paginate(rows, p.PageSize, p.Page)
}

// Paginate slices one page out of rows. A page past the end yields no rows;
// it is the caller's job to move the user back into range.
func Paginate(rows []models.Contact, pageSize, page int) Result {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}
	total := len(rows)
	start, end := paging.Bounds(total, pageSize, page)

	res := Result{
		Rows:       make([]models.Contact, end-start),
		TotalItems: total,
		TotalPages: paging.TotalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
	}
	copy(res.Rows, rows[start:end])
	if end > start {
		res.Start = start + 1
		res.End = end
	}
	return res
}
