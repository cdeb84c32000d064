// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows shown when the request does not ask
// for a specific page size.
const DefaultPageSize = 10

// PageSizes are the page sizes offered in the rows-per-page select.
var PageSizes = []int{10, 25, 50, 100}

// MaxPage bounds page numbers read from URLs so offset math cannot overflow.
const MaxPage = 100_000

// ClampPage limits a requested page to [1, MaxPage].
func ClampPage(n int) int {
	return min(max(n, 1), MaxPage)
}

// IsAllowedSize reports whether n is one of PageSizes.
func IsAllowedSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	return ClampPage(parsePositive(query.Get(r, "page"), 1))
}

// ParsePageSize extracts the "size" query parameter. Values outside
// PageSizes fall back to def.
func ParsePageSize(r *http.Request, def int) int {
	n := parsePositive(query.Get(r, "size"), def)
	if !IsAllowedSize(n) {
		return def
	}
	return n
}

func parsePositive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// TotalPages returns ceil(total/pageSize). It is 0 only when total is 0.
// A non-positive pageSize is treated as 1.
func TotalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return (total + pageSize - 1) / pageSize
}

// Bounds returns the half-open slice bounds [start, end) of a 1-based page.
// Out-of-range pages yield start == end, so slicing never panics and never
// produces a negative length.
func Bounds(total, pageSize, page int) (start, end int) {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	// Compare page counts before multiplying; (page-1)*pageSize overflows
	// for huge pages.
	if page-1 >= TotalPages(total, pageSize) {
		return total, total
	}
	start = (page - 1) * pageSize
	end = min(start+pageSize, total)
	return start, end
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start    int // 1-based start index (0 if no results)
	End      int // 1-based end index (0 if no results)
	PrevPage int // page number for the previous link (0 if none)
	NextPage int // page number for the next link (0 if none)
}

// ComputeRange calculates the display range for a page.
//
// shown is the number of rows on the page, which is what the caller actually
// rendered; it may be zero when page is past the last page.
func ComputeRange(page, pageSize, shown, totalPages int) Range {
	if page < 1 {
		page = 1
	}
	rng := Range{}
	if shown > 0 {
		rng.Start = (page-1)*pageSize + 1
		rng.End = rng.Start + shown - 1
	}
	if page > 1 {
		rng.PrevPage = min(page-1, max(totalPages, 1))
	}
	if page < totalPages {
		rng.NextPage = page + 1
	}
	return rng
}

// Window returns up to width page numbers centred on the current page, for
// numbered page links. It returns nil when there are no pages.
func Window(page, totalPages, width int) []int {
	if totalPages <= 0 || width <= 0 {
		return nil
	}
	page = max(1, min(page, totalPages))
	lo := page - width/2
	hi := lo + width - 1
	if lo < 1 {
		lo = 1
		hi = min(width, totalPages)
	}
	if hi > totalPages {
		hi = totalPages
		lo = max(1, hi-width+1)
	}
	out := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	return out
}
