package daterange

import "time"

// Groups partitions a snapshot of ranges relative to a reference date. It is built once and never updated.
type Groups struct {
	Past    []DateRange `json:"past"`
	Current *DateRange  `json:"current,omitempty"`
	Future  []DateRange `json:"future"`
}

// NewGroups sorts the ranges and assigns each to the past, current or future group. If several ranges contain
// the reference date, the first in sort order becomes current and the rest are kept with the past ranges.
func NewGroups(ranges []DateRange, reference time.Time) Groups {
	sorted := make([]DateRange, 0, len(ranges))
	for _, r := range ranges {
		sorted = append(sorted, r.clone())
	}
	Sort(sorted)

	groups := Groups{Past: []DateRange{}, Future: []DateRange{}}
	for _, r := range sorted {
		switch {
		case r.EndsBefore(reference):
			groups.Past = append(groups.Past, r)
		case r.StartsAfter(reference):
			groups.Future = append(groups.Future, r)
		case groups.Current == nil:
			current := r
			groups.Current = &current
		default:
			groups.Past = append(groups.Past, r)
		}
	}
	Sort(groups.Past)

	return groups
}

// MostRecentPast returns the past range with the latest end, or nil when there is none.
func (g Groups) MostRecentPast() *DateRange {
	var recent *DateRange
	for i := range g.Past {
		candidate := g.Past[i]
		if recent == nil || endsLater(candidate, *recent) {
			c := candidate
			recent = &c
		}
	}
	return recent
}

// All returns every range in past, current, future order.
func (g Groups) All() []DateRange {
	all := make([]DateRange, 0, len(g.Past)+len(g.Future)+1)
	all = append(all, g.Past...)
	if g.Current != nil {
		all = append(all, *g.Current)
	}
	return append(all, g.Future...)
}

// endsLater treats an open end as later than any date.
func endsLater(a, b DateRange) bool {
	switch {
	case a.End == nil:
		return b.End != nil
	case b.End == nil:
		return false
	}
	return !a.End.Before(*b.End)
}
