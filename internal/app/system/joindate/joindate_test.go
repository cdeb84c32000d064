package joindate

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 4, 5, 0, time.UTC)
}

func TestRange(t *testing.T) {
	today := day(2024, time.March, 15)

	tests := []struct {
		bucket Bucket
		want   DateRange
		ok     bool
	}{
		{Last30Days, DateRange{"2024-02-14", "2024-03-15"}, true},
		{Last90Days, DateRange{"2023-12-16", "2024-03-15"}, true},
		{ThisYear, DateRange{"2024-01-01", "2024-03-15"}, true},
		{LastYear, DateRange{"2023-01-01", "2023-12-31"}, true},
		{None, DateRange{}, false},
		{Bucket("last_decade"), DateRange{}, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			got, ok := Range(tt.bucket, today)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Range(%q) = %+v, %v; want %+v, %v", tt.bucket, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// last_year depends only on the year of today.
func TestRange_LastYearIsFixedWithinYear(t *testing.T) {
	want := DateRange{From: "2024-01-01", To: "2024-12-31"}
	for d := day(2025, time.January, 1); d.Year() == 2025; d = d.AddDate(0, 0, 1) {
		got, ok := Range(LastYear, d)
		if !ok || got != want {
			t.Fatalf("Range(last_year, %s) = %+v, want %+v", d.Format(DateLayout), got, want)
		}
	}
}

func TestRange_IgnoresClockAndZone(t *testing.T) {
	// 23:30 on Jan 1 in UTC-5 is already Jan 2 in UTC; the local date wins.
	loc := time.FixedZone("EST", -5*3600)
	late := time.Date(2024, time.January, 1, 23, 30, 0, 0, loc)

	got, _ := Range(ThisYear, late)
	if got.From != "2024-01-01" || got.To != "2024-01-01" {
		t.Errorf("Range(this_year) = %+v, want 2024-01-01..2024-01-01", got)
	}
}

func TestRange_CrossesLeapDay(t *testing.T) {
	got, _ := Range(Last30Days, day(2024, time.March, 1))
	if got.From != "2024-01-31" {
		t.Errorf("From = %s, want 2024-01-31", got.From)
	}
}

func TestParseAndBuckets(t *testing.T) {
	for _, o := range Buckets() {
		if Parse(string(o.Value)) != o.Value {
			t.Errorf("Parse(%q) did not round trip", o.Value)
		}
		if o.Value.Label() == "" {
			t.Errorf("%q has no label", o.Value)
		}
	}
	if Parse("yesterday") != None {
		t.Error("unknown bucket should parse to None")
	}
	if None.Label() != "" {
		t.Error("None should have no label")
	}
}
