// Package report computes the financial and operational reports of a kedai
// ledger. Every function is pure: it reads the slices it is given, never
// modifies them, and returns the same output for the same input.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownKind is returned for a period kind that is not recognised.
var ErrUnknownKind = errors.New("report: unknown period kind")

// Kind selects the window and granularity of a period.
type Kind string

const (
	// HourOfDay covers one civil day in 24 hourly buckets.
	HourOfDay Kind = "hour-of-day"
	// DayOfMonth covers one month in one bucket per day.
	DayOfMonth Kind = "day-of-month"
	// MonthOfYear covers one year in 12 monthly buckets.
	MonthOfYear Kind = "month-of-year"
)

// Kinds lists every period kind.
func Kinds() []Kind { return []Kind{HourOfDay, DayOfMonth, MonthOfYear} }

// ParseKind converts a string into a Kind. The report page names "daily",
// "monthly" and "yearly" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(HourOfDay), "daily", "day":
		return HourOfDay, nil
	case string(DayOfMonth), "monthly", "month":
		return DayOfMonth, nil
	case string(MonthOfYear), "yearly", "year":
		return MonthOfYear, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// MonthLabel returns the short Indonesian name of m.
func MonthLabel(m time.Month) string { return monthNames[m-1] }

// Bucket is one calendar slice [Start, End) of a period.
type Bucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls in [Start, End).
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Period is a reporting window split into contiguous buckets.
type Period struct {
	Kind    Kind      `json:"kind"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Buckets []Bucket  `json:"buckets"`
}

// NewPeriod anchors a period of the given kind on ref's civil date in
// ref.Location(): the day, month or year containing ref.
func NewPeriod(kind Kind, ref time.Time) (Period, error) {
	loc := ref.Location()
	y, m, d := ref.Date()

	p := Period{Kind: kind}
	switch kind {
	case HourOfDay:
		p.Start = time.Date(y, m, d, 0, 0, 0, 0, loc)
		p.End = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		p.Buckets = make([]Bucket, 24)
		for h := range 24 {
			p.Buckets[h] = Bucket{
				Label: strconv.Itoa(h) + ":00",
				Start: time.Date(y, m, d, h, 0, 0, 0, loc),
				End:   time.Date(y, m, d, h+1, 0, 0, 0, loc),
			}
		}
	case DayOfMonth:
		p.Start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		p.End = time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
		days := DaysIn(y, m)
		p.Buckets = make([]Bucket, days)
		for i := range days {
			p.Buckets[i] = Bucket{
				Label: strconv.Itoa(i + 1),
				Start: time.Date(y, m, i+1, 0, 0, 0, 0, loc),
				End:   time.Date(y, m, i+2, 0, 0, 0, 0, loc),
			}
		}
	case MonthOfYear:
		p.Start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		p.End = time.Date(y+1, time.January, 1, 0, 0, 0, 0, loc)
		p.Buckets = monthBuckets(p.Start, false)
	default:
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return p, nil
}

// MustPeriod is like NewPeriod but panics on an unknown kind.
func MustPeriod(kind Kind, ref time.Time) Period {
	p, err := NewPeriod(kind, ref)
	if err != nil {
		panic(err)
	}
	return p
}

// monthBuckets returns 12 consecutive month buckets starting at start,
// which must be the first instant of a month.
func monthBuckets(start time.Time, withYear bool) []Bucket {
	loc := start.Location()
	y, m, _ := start.Date()
	buckets := make([]Bucket, 12)
	for i := range 12 {
		bs := time.Date(y, m+time.Month(i), 1, 0, 0, 0, 0, loc)
		label := MonthLabel(bs.Month())
		if withYear {
			label += " " + strconv.Itoa(bs.Year())
		}
		buckets[i] = Bucket{
			Label: label,
			Start: bs,
			End:   time.Date(y, m+time.Month(i+1), 1, 0, 0, 0, 0, loc),
		}
	}
	return buckets
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t falls in the period window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Index returns the bucket holding t, or -1 when t is outside the period.
func (p Period) Index(t time.Time) int {
	i := sort.Search(len(p.Buckets), func(i int) bool {
		return t.Before(p.Buckets[i].End)
	})
	if i < len(p.Buckets) && p.Buckets[i].Contains(t) {
		return i
	}
	return -1
}

// Labels returns the bucket labels in order.
func (p Period) Labels() []string {
	labels := make([]string, len(p.Buckets))
	for i, b := range p.Buckets {
		labels[i] = b.Label
	}
	return labels
}

// Partition distributes records over the period's buckets using ts to read
// each record's timestamp. Records outside the window are dropped; every
// other record lands in exactly one bucket, keeping input order.
func Partition[T any](p Period, records []T, ts func(T) time.Time) [][]T {
	out := make([][]T, len(p.Buckets))
	for _, r := range records {
		if i := p.Index(ts(r)); i >= 0 {
			out[i] = append(out[i], r)
		}
	}
	return out
}

// Filter returns the records whose timestamp falls in the period window.
func Filter[T any](p Period, records []T, ts func(T) time.Time) []T {
	var out []T
	for _, r := range records {
		if p.Contains(ts(r)) {
			out = append(out, r)
		}
	}
	return out
}
