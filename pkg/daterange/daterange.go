// Package daterange models calendar-date intervals whose ends may be open. A nil start means the range
// has existed since always; a nil end means it lasts forever. Both ends are inclusive.
package daterange

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/srbenoit/mathops-db-sub013/pkg/dateutil"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

// DateRange is an inclusive interval of calendar dates.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// New builds a range, rejecting an end that precedes the start.
func New(start, end *time.Time) (DateRange, error) {
	if start != nil && end != nil && end.Before(*start) {
		return DateRange{}, appErrors.Clone(appErrors.ErrInvalidArgument,
			fmt.Sprintf("range end %s precedes start %s", dateutil.Format(*end), dateutil.Format(*start)))
	}
	return DateRange{Start: copyDate(start), End: copyDate(end)}, nil
}

// Between builds a bounded range. The caller guarantees start <= end.
func Between(start, end time.Time) DateRange {
	return DateRange{Start: &start, End: &end}
}

// Forever returns the range with neither a start nor an end.
func Forever() DateRange {
	return DateRange{}
}

// IsForever reports whether both ends are open.
func (r DateRange) IsForever() bool {
	return r.Start == nil && r.End == nil
}

// EndsBefore reports whether the range ends strictly before date.
func (r DateRange) EndsBefore(date time.Time) bool {
	return r.End != nil && r.End.Before(date)
}

// StartsAfter reports whether the range starts strictly after date.
func (r DateRange) StartsAfter(date time.Time) bool {
	return r.Start != nil && r.Start.After(date)
}

// Contains reports whether date lies within the range.
func (r DateRange) Contains(date time.Time) bool {
	return !r.EndsBefore(date) && !r.StartsAfter(date)
}

// Equal reports whether two ranges have the same ends.
func (r DateRange) Equal(other DateRange) bool {
	return sameDate(r.Start, other.Start) && sameDate(r.End, other.End)
}

func (r DateRange) String() string {
	var b strings.Builder
	b.WriteString("[")
	if r.Start == nil {
		b.WriteString("-inf")
	} else {
		b.WriteString(dateutil.Format(*r.Start))
	}
	b.WriteString(", ")
	if r.End == nil {
		b.WriteString("+inf")
	} else {
		b.WriteString(dateutil.Format(*r.End))
	}
	b.WriteString("]")
	return b.String()
}

// Compare orders ranges by start (open start first), then by end (open end last).
func Compare(a, b DateRange) int {
	switch {
	case a.Start == nil && b.Start != nil:
		return -1
	case a.Start != nil && b.Start == nil:
		return 1
	case a.Start != nil && b.Start != nil && !a.Start.Equal(*b.Start):
		if a.Start.Before(*b.Start) {
			return -1
		}
		return 1
	}

	switch {
	case a.End == nil && b.End == nil:
		return 0
	case a.End == nil:
		return 1
	case b.End == nil:
		return -1
	case a.End.Before(*b.End):
		return -1
	case a.End.After(*b.End):
		return 1
	}
	return 0
}

// Sort orders ranges in place using Compare.
func Sort(ranges []DateRange) {
	sort.SliceStable(ranges, func(i, j int) bool {
		return Compare(ranges[i], ranges[j]) < 0
	})
}

// MergeRanges returns the minimal sorted set of non-overlapping ranges covering exactly the dates covered
// by the input. Ranges separated by no gap (one ends the day before the other starts) are merged. The input
// slice is left untouched.
func MergeRanges(ranges []DateRange) []DateRange {
	if len(ranges) == 0 {
		return []DateRange{}
	}
	if len(ranges) == 1 {
		return []DateRange{ranges[0].clone()}
	}

	var before, after *DateRange
	bounded := make([]DateRange, 0, len(ranges))

	for _, r := range ranges {
		switch {
		case r.IsForever():
			return []DateRange{Forever()}
		case r.Start == nil:
			if before == nil || r.End.After(*before.End) {
				c := r.clone()
				before = &c
			}
		case r.End == nil:
			if after == nil || r.Start.Before(*after.Start) {
				c := r.clone()
				after = &c
			}
		default:
			bounded = append(bounded, r.clone())
		}
	}

	Sort(bounded)

	for changed := true; changed; {
		changed = false
		kept := make([]DateRange, 0, len(bounded))
		for _, r := range bounded {
			if before != nil && !r.Start.After(dayAfter(*before.End)) {
				if r.End.After(*before.End) {
					before.End = copyDate(r.End)
					changed = true
				}
				continue
			}
			if after != nil && !r.End.Before(dayBefore(*after.Start)) {
				if r.Start.Before(*after.Start) {
					after.Start = copyDate(r.Start)
					changed = true
				}
				continue
			}
			kept = append(kept, r)
		}
		bounded = kept
	}

	if before != nil && after != nil && !dayAfter(*before.End).Before(*after.Start) {
		return []DateRange{Forever()}
	}

	merged := make([]DateRange, 0, len(bounded)+2)
	if before != nil {
		merged = append(merged, *before)
	}

	last := -1
	for _, r := range bounded {
		if last >= 0 && !r.Start.After(dayAfter(*merged[last].End)) {
			if r.End.After(*merged[last].End) {
				merged[last].End = copyDate(r.End)
			}
			continue
		}
		merged = append(merged, r)
		last = len(merged) - 1
	}

	if after != nil {
		merged = append(merged, *after)
	}

	return merged
}

func (r DateRange) clone() DateRange {
	return DateRange{Start: copyDate(r.Start), End: copyDate(r.End)}
}

func copyDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func dayAfter(d time.Time) time.Time {
	return d.AddDate(0, 0, 1)
}

func dayBefore(d time.Time) time.Time {
	return d.AddDate(0, 0, -1)
}
