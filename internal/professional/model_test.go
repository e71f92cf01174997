package professional

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDayTime(t *testing.T, hour, minute int) DayTime {
	t.Helper()
	d, err := NewDayTime(hour, minute)
	require.NoError(t, err)
	return d
}

func TestParseDayTime(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00:00"},
		{in: "09:30:00", want: "09:30:00"},
		{in: "23:59", want: "23:59:00"},
		{in: "24:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "garbage", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseDayTime(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got.String())
	}
}

func TestDayTimeShiftWrapsMidnight(t *testing.T) {
	d := mustDayTime(t, 1, 0)

	assert.Equal(t, "22:00:00", d.Shift(-3*time.Hour).String())
	assert.Equal(t, "04:00:00", d.Shift(3*time.Hour).String())
	assert.Equal(t, "01:00:00", d.Shift(0).String())
}

func TestContainsWeekdaySimpleRange(t *testing.T) {
	w := WeeklyWindow{StartWeekday: time.Monday, EndWeekday: time.Friday}

	assert.True(t, w.ContainsWeekday(time.Monday))
	assert.True(t, w.ContainsWeekday(time.Wednesday))
	assert.True(t, w.ContainsWeekday(time.Friday))
	assert.False(t, w.ContainsWeekday(time.Saturday))
	assert.False(t, w.ContainsWeekday(time.Sunday))
}

func TestContainsWeekdayWrapsWeekBoundary(t *testing.T) {
	// Friday through Monday.
	w := WeeklyWindow{StartWeekday: time.Friday, EndWeekday: time.Monday}

	assert.True(t, w.ContainsWeekday(time.Friday))
	assert.True(t, w.ContainsWeekday(time.Saturday))
	assert.True(t, w.ContainsWeekday(time.Sunday))
	assert.True(t, w.ContainsWeekday(time.Monday))
	assert.False(t, w.ContainsWeekday(time.Tuesday))
	assert.False(t, w.ContainsWeekday(time.Wednesday))
	assert.False(t, w.ContainsWeekday(time.Thursday))
}

func TestWindowValidateRejectsEqualTimes(t *testing.T) {
	w := WeeklyWindow{
		StartWeekday: time.Monday,
		EndWeekday:   time.Friday,
		StartTime:    mustDayTime(t, 9, 0),
		EndTime:      mustDayTime(t, 9, 0),
	}

	assert.Error(t, w.Validate())

	w.EndTime = mustDayTime(t, 18, 0)
	assert.NoError(t, w.Validate())
}
