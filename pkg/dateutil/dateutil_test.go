package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateKeepsLocalCalendarDate(t *testing.T) {
	denver := time.FixedZone("MST", -7*3600)
	late := time.Date(2024, time.March, 1, 22, 30, 0, 0, denver)

	assert.Equal(t, Date(2024, time.March, 1), Truncate(late))
}

func TestAddDaysCrossesMonths(t *testing.T) {
	assert.Equal(t, Date(2024, time.March, 1), AddDays(Date(2024, time.February, 28), 2))
	assert.Equal(t, Date(2024, time.February, 26), AddDays(Date(2024, time.March, 1), -4))
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(Date(2024, time.March, 2)))
	assert.True(t, IsWeekend(Date(2024, time.March, 3)))
	assert.False(t, IsWeekend(Date(2024, time.March, 4)))
}

func TestParseAndFormat(t *testing.T) {
	d, err := Parse("2024-04-15")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.April, 15), d)
	assert.Equal(t, "2024-04-15", Format(d))

	_, err = Parse("04/15/2024")
	assert.Error(t, err)
}
