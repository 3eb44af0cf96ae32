package daterange

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub013/pkg/dateutil"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

func jan(day int) *time.Time {
	return dateutil.Ptr(2024, time.January, day)
}

func bounded(startDay, endDay int) DateRange {
	return DateRange{Start: jan(startDay), End: jan(endDay)}
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New(jan(10), jan(5))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidArgument))

	r, err := New(nil, jan(5))
	require.NoError(t, err)
	assert.Nil(t, r.Start)
	assert.True(t, r.End.Equal(*jan(5)))
}

func TestContains(t *testing.T) {
	r := bounded(5, 10)
	assert.False(t, r.Contains(*jan(4)))
	assert.True(t, r.Contains(*jan(5)))
	assert.True(t, r.Contains(*jan(10)))
	assert.False(t, r.Contains(*jan(11)))

	assert.True(t, Forever().Contains(*jan(1)))
	assert.True(t, DateRange{End: jan(5)}.Contains(dateutil.Date(1900, time.January, 1)))
	assert.True(t, DateRange{Start: jan(5)}.Contains(dateutil.Date(2999, time.January, 1)))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(DateRange{End: jan(1)}, bounded(1, 2)))
	assert.Equal(t, 1, Compare(bounded(1, 2), DateRange{End: jan(30)}))
	assert.Equal(t, -1, Compare(bounded(1, 2), bounded(1, 3)))
	assert.Equal(t, -1, Compare(bounded(1, 30), DateRange{Start: jan(1)}))
	assert.Equal(t, 0, Compare(bounded(4, 8), bounded(4, 8)))
	assert.Equal(t, 1, Compare(bounded(5, 6), bounded(4, 8)))
}

func TestMergeRanges(t *testing.T) {
	tests := []struct {
		name string
		in   []DateRange
		want []DateRange
	}{
		{name: "empty", in: nil, want: []DateRange{}},
		{name: "single", in: []DateRange{bounded(3, 4)}, want: []DateRange{bounded(3, 4)}},
		{
			name: "adjacent ranges merge",
			in:   []DateRange{bounded(1, 5), bounded(6, 10)},
			want: []DateRange{bounded(1, 10)},
		},
		{
			name: "two day gap stays apart",
			in:   []DateRange{bounded(1, 5), bounded(7, 10)},
			want: []DateRange{bounded(1, 5), bounded(7, 10)},
		},
		{
			name: "forever absorbs everything",
			in:   []DateRange{bounded(1, 5), Forever(), {Start: jan(20)}},
			want: []DateRange{Forever()},
		},
		{
			name: "same start keeps later end",
			in:   []DateRange{bounded(3, 4), bounded(3, 9), bounded(3, 6)},
			want: []DateRange{bounded(3, 9)},
		},
		{
			name: "unsorted overlapping",
			in:   []DateRange{bounded(20, 25), bounded(2, 8), bounded(5, 12), bounded(24, 28)},
			want: []DateRange{bounded(2, 12), bounded(20, 28)},
		},
		{
			name: "open start absorbs covered and overlapping",
			in:   []DateRange{{End: jan(5)}, {End: jan(3)}, bounded(2, 4), bounded(5, 9), bounded(15, 16)},
			want: []DateRange{{End: jan(9)}, bounded(15, 16)},
		},
		{
			name: "open end absorbs backwards to fixpoint",
			in:   []DateRange{{Start: jan(20)}, bounded(18, 21), bounded(10, 17), bounded(1, 2)},
			want: []DateRange{bounded(1, 2), {Start: jan(10)}},
		},
		{
			name: "open ends meeting collapse to forever",
			in:   []DateRange{{End: jan(5)}, bounded(6, 12), {Start: jan(13)}},
			want: []DateRange{Forever()},
		},
		{
			name: "open ends apart",
			in:   []DateRange{{Start: jan(20)}, {End: jan(5)}, bounded(10, 12)},
			want: []DateRange{{End: jan(5)}, bounded(10, 12), {Start: jan(20)}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeRanges(tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("MergeRanges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeRangesDoesNotMutateInput(t *testing.T) {
	in := []DateRange{bounded(6, 10), bounded(1, 5)}
	_ = MergeRanges(in)
	assert.True(t, in[0].Equal(bounded(6, 10)))
	assert.True(t, in[1].Equal(bounded(1, 5)))
}

func TestMergeRangesIdempotentAndTotal(t *testing.T) {
	inputs := [][]DateRange{
		{bounded(1, 3), bounded(2, 6), bounded(9, 9), bounded(11, 14), {Start: jan(27)}},
		{{End: jan(2)}, bounded(4, 4), bounded(3, 3), bounded(20, 22), bounded(23, 23)},
		{bounded(10, 20), bounded(12, 14), bounded(25, 26), {Start: jan(24)}, {End: jan(1)}},
	}

	for _, in := range inputs {
		once := MergeRanges(in)
		twice := MergeRanges(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("merge not idempotent (-once +twice):\n%s", diff)
		}

		for d := dateutil.Date(2023, time.December, 25); d.Before(dateutil.Date(2024, time.February, 5)); d = d.AddDate(0, 0, 1) {
			assert.Equal(t, coveredBy(in, d), coveredBy(once, d), "coverage differs on %s", dateutil.Format(d))
		}

		for i := 1; i < len(once); i++ {
			require.Equal(t, -1, Compare(once[i-1], once[i]))
			require.True(t, once[i-1].End.AddDate(0, 0, 1).Before(*once[i].Start), "ranges %s and %s should not touch", once[i-1], once[i])
		}
	}
}

func coveredBy(ranges []DateRange, d time.Time) bool {
	for _, r := range ranges {
		if r.Contains(d) {
			return true
		}
	}
	return false
}

func TestString(t *testing.T) {
	assert.Equal(t, "[2024-01-01, 2024-01-05]", bounded(1, 5).String())
	assert.Equal(t, "[-inf, +inf]", Forever().String())
}
