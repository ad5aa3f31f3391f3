package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name string
		iso  string
		want Parts
		ok   bool
	}{
		{"full timestamp", "2025-02-07T11:00:00", Parts{2025, 2, 7, 11, 0}, true},
		{"seconds optional", "2025-02-07T11:30", Parts{2025, 2, 7, 11, 30}, true},
		{"single digit clock", "2025-02-07T9:5:0", Parts{2025, 2, 7, 9, 5}, true},
		{"trailing suffix ignored", "2025-02-07T11:00:00.000", Parts{2025, 2, 7, 11, 0}, true},
		{"feb 30 accepted, not a calendar validator", "2025-02-30T10:00:00", Parts{2025, 2, 30, 10, 0}, true},
		{"empty", "", Parts{}, false},
		{"garbage", "not-a-date", Parts{}, false},
		{"date only", "2025-02-07", Parts{}, false},
		{"month zero", "2025-00-07T10:00:00", Parts{}, false},
		{"month 13", "2025-13-07T10:00:00", Parts{}, false},
		{"day zero", "2025-02-00T10:00:00", Parts{}, false},
		{"day 32", "2025-02-32T10:00:00", Parts{}, false},
		{"hour 24", "2025-02-07T24:00:00", Parts{}, false},
		{"minute 60", "2025-02-07T10:60:00", Parts{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDateTime(tt.iso)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name string
		iso  string
		want TimeOfDay
		ok   bool
	}{
		{"sentinel dated", "2000-01-01T09:30:00", TimeOfDay{9, 30}, true},
		{"sentinel date discarded", "2000-01-01T23:59:00", TimeOfDay{23, 59}, true},
		{"real date also works, date ignored", "2025-02-07T11:00:00", TimeOfDay{11, 0}, true},
		{"no seconds", "2000-01-01T07:15", TimeOfDay{7, 15}, true},
		{"empty", "", TimeOfDay{}, false},
		{"too short", "T09:30", TimeOfDay{}, false},
		{"no time part", "2000-01-01 09:30:00", TimeOfDay{}, false},
		{"hour out of range", "2000-01-01T24:00:00", TimeOfDay{}, false},
		{"minute out of range", "2000-01-01T10:75:00", TimeOfDay{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimeOfDay(tt.iso)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAddHours(t *testing.T) {
	tests := []struct {
		name  string
		in    Parts
		hours int
		want  Parts
	}{
		{"zero is identity", Parts{2025, 2, 7, 10, 0}, 0, Parts{2025, 2, 7, 10, 0}},
		{"same day", Parts{2025, 2, 7, 10, 30}, 2, Parts{2025, 2, 7, 12, 30}},
		{"midnight rollover", Parts{2025, 2, 7, 23, 30}, 2, Parts{2025, 2, 8, 1, 30}},
		{"month rollover", Parts{2025, 1, 31, 23, 0}, 2, Parts{2025, 2, 1, 1, 0}},
		{"year rollover", Parts{2024, 12, 31, 23, 0}, 2, Parts{2025, 1, 1, 1, 0}},
		{"leap day", Parts{2024, 2, 28, 23, 0}, 2, Parts{2024, 2, 29, 1, 0}},
		{"non leap year", Parts{2025, 2, 28, 23, 0}, 2, Parts{2025, 3, 1, 1, 0}},
		{"negative hours", Parts{2025, 2, 7, 1, 0}, -2, Parts{2025, 2, 6, 23, 0}},
		{"multi day", Parts{2025, 2, 7, 10, 0}, 72, Parts{2025, 2, 10, 10, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddHours(tt.in, tt.hours))
		})
	}
}

func TestAddHoursComposes(t *testing.T) {
	samples := []Parts{
		{2025, 2, 7, 10, 0},
		{2024, 2, 28, 23, 59},
		{1999, 12, 31, 0, 0},
	}
	for _, p := range samples {
		for _, a := range []int{0, 1, 2, 25, 47} {
			for _, b := range []int{0, 2, 24, 100} {
				assert.Equal(t, AddHours(p, a+b), AddHours(AddHours(p, a), b),
					"p=%v a=%d b=%d", p, a, b)
			}
		}
	}
}

func TestCompare(t *testing.T) {
	ordered := []Parts{
		{2024, 12, 31, 23, 59},
		{2025, 1, 1, 0, 0},
		{2025, 1, 31, 23, 59},
		{2025, 2, 1, 0, 0},
		{2025, 2, 1, 0, 1},
		{2025, 2, 1, 1, 0},
		{2025, 2, 2, 0, 0},
	}
	for i, a := range ordered {
		for j, b := range ordered {
			switch {
			case i < j:
				assert.Negative(t, Compare(a, b), "a=%v b=%v", a, b)
				assert.Positive(t, Compare(b, a), "a=%v b=%v", a, b)
			case i == j:
				assert.Zero(t, Compare(a, b), "a=%v", a)
			}
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		name          string
		y, m, d, want int
	}{
		{"fri 2025-02-07", 2025, 2, 7, 4},
		{"mon 2025-02-03", 2025, 2, 3, 0},
		{"sun 2025-02-09", 2025, 2, 9, 6},
		{"sat 2000-01-01", 2000, 1, 1, 5},
		{"thu 1970-01-01", 1970, 1, 1, 3},
		{"thu leap 2024-02-29", 2024, 2, 29, 3},
		{"wed 2024-12-25", 2024, 12, 25, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WeekdayOf(tt.y, tt.m, tt.d)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range [][3]int{{2025, 0, 1}, {2025, 13, 1}, {2025, 2, 0}, {2025, 2, 32}} {
		_, ok := WeekdayOf(bad[0], bad[1], bad[2])
		assert.False(t, ok, "ymd=%v", bad)
	}
}

// WeekdayOf must agree with the Gregorian calendar; sweep two years of
// dates against the standard library.
func TestWeekdayOfAgreesWithCalendar(t *testing.T) {
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for range 730 {
		want := (int(day.Weekday()) + 6) % 7 // time.Weekday is Sunday-first
		got, ok := WeekdayOf(day.Year(), int(day.Month()), day.Day())
		require.True(t, ok)
		require.Equal(t, want, got, "date=%s", day.Format("2006-01-02"))
		day = day.AddDate(0, 0, 1)
	}
}

func TestPartsAt(t *testing.T) {
	at := time.Date(2025, 2, 7, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, Parts{2025, 2, 7, 10, 0}, PartsAt(at, time.UTC))

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, Parts{2025, 2, 7, 19, 0}, PartsAt(at, tokyo))
}

func TestPartsIn(t *testing.T) {
	at := time.Date(2025, 2, 7, 23, 30, 0, 0, time.UTC)

	got, ok := PartsIn(at, "UTC")
	require.True(t, ok)
	assert.Equal(t, Parts{2025, 2, 7, 23, 30}, got)

	// Crossing midnight eastward.
	got, ok = PartsIn(at, "Asia/Tokyo")
	require.True(t, ok)
	assert.Equal(t, Parts{2025, 2, 8, 8, 30}, got)

	_, ok = PartsIn(at, "")
	assert.False(t, ok)
	_, ok = PartsIn(at, "Not/AZone")
	assert.False(t, ok)
}

func TestTimeOfDayMinutes(t *testing.T) {
	assert.Equal(t, 0, TimeOfDay{0, 0}.Minutes())
	assert.Equal(t, 61, TimeOfDay{1, 1}.Minutes())
	assert.Equal(t, 1439, TimeOfDay{23, 59}.Minutes())
}
