package daterange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroups(t *testing.T) {
	ranges := []DateRange{
		bounded(20, 25),
		bounded(1, 3),
		bounded(8, 12),
		bounded(4, 6),
		{Start: jan(28)},
	}

	groups := NewGroups(ranges, *jan(10))

	require.Len(t, groups.Past, 2)
	assert.True(t, groups.Past[0].Equal(bounded(1, 3)))
	assert.True(t, groups.Past[1].Equal(bounded(4, 6)))
	require.NotNil(t, groups.Current)
	assert.True(t, groups.Current.Equal(bounded(8, 12)))
	require.Len(t, groups.Future, 2)
	assert.True(t, groups.Future[0].Equal(bounded(20, 25)))

	recent := groups.MostRecentPast()
	require.NotNil(t, recent)
	assert.True(t, recent.Equal(bounded(4, 6)))

	all := groups.All()
	require.Len(t, all, 5)
	assert.True(t, all[2].Equal(bounded(8, 12)))
}

func TestNewGroupsWithoutCurrent(t *testing.T) {
	groups := NewGroups([]DateRange{bounded(1, 2)}, *jan(15))

	assert.Nil(t, groups.Current)
	assert.Empty(t, groups.Future)
	assert.Len(t, groups.All(), 1)
}

func TestNewGroupsOverlappingCurrent(t *testing.T) {
	groups := NewGroups([]DateRange{bounded(5, 20), bounded(1, 10)}, *jan(8))

	require.NotNil(t, groups.Current)
	assert.True(t, groups.Current.Equal(bounded(1, 10)))
	require.Len(t, groups.Past, 1)
	assert.True(t, groups.Past[0].Equal(bounded(5, 20)))
}

func TestMostRecentPastEmpty(t *testing.T) {
	assert.Nil(t, Groups{}.MostRecentPast())
}
