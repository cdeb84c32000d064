// Package joindate resolves the relative join-date buckets offered in the
// contacts filter bar into concrete calendar ranges.
package joindate

import "time"

// Bucket names a relative calendar range.
type Bucket string

const (
	None       Bucket = ""
	Last30Days Bucket = "last_30_days"
	Last90Days Bucket = "last_90_days"
	ThisYear   Bucket = "this_year"
	LastYear   Bucket = "last_year"
)

// DateLayout is the wire format of calendar dates (no time component).
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar dates in DateLayout.
type DateRange struct {
	From string
	To   string
}

// Option is one entry in the join-date filter dropdown.
type Option struct {
	Value Bucket
	Label string
}

var options = []Option{
	{Last30Days, "Last 30 days"},
	{Last90Days, "Last 90 days"},
	{ThisYear, "This year"},
	{LastYear, "Last year"},
}

// Buckets lists the selectable buckets in display order.
func Buckets() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// Parse maps a query value to a Bucket. Unknown values map to None.
func Parse(s string) Bucket {
	for _, o := range options {
		if string(o.Value) == s {
			return o.Value
		}
	}
	return None
}

// Label returns the dropdown label for b, or "" for None and unknown buckets.
func (b Bucket) Label() string {
	for _, o := range options {
		if o.Value == b {
			return o.Label
		}
	}
	return ""
}

// Today returns midnight of the current day in loc. A nil loc means UTC.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return truncateDay(time.Now().In(loc))
}

// Range resolves bucket against today. It reports false for None and unknown
// buckets, in which case no join-date filter applies.
//
// Only the calendar date of today is used; its clock time and location do not
// shift the result. The range must be recomputed for every request since
// today drifts.
func Range(bucket Bucket, today time.Time) (DateRange, bool) {
	day := truncateDay(today)
	y := day.Year()

	var from, to time.Time
	switch bucket {
	case Last30Days:
		from, to = day.AddDate(0, 0, -30), day
	case Last90Days:
		from, to = day.AddDate(0, 0, -90), day
	case ThisYear:
		from, to = date(y, time.January, 1), day
	case LastYear:
		from, to = date(y-1, time.January, 1), date(y-1, time.December, 31)
	default:
		return DateRange{}, false
	}
	return DateRange{From: from.Format(DateLayout), To: to.Format(DateLayout)}, true
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// truncateDay keeps the wall-clock calendar date and drops everything else.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return date(y, m, d)
}
