package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdays(t *testing.T) {
	tests := []struct {
		name string
		rule string
		want []int
		ok   bool
	}{
		{"single day", "FREQ=WEEKLY;BYDAY=FR", []int{4}, true},
		{"several days", "FREQ=WEEKLY;BYDAY=MO,WE,FR", []int{0, 2, 4}, true},
		{"weekend", "FREQ=WEEKLY;BYDAY=SA,SU", []int{5, 6}, true},
		{"clock parts ignored", "FREQ=WEEKLY;BYDAY=FR;BYHOUR=9;BYMINUTE=0", []int{4}, true},
		{"order independent", "BYDAY=TU;FREQ=WEEKLY", []int{1}, true},
		{"case insensitive", "freq=weekly;byday=mo,su", []int{0, 6}, true},
		{"spaces tolerated", " FREQ=WEEKLY; BYDAY=MO, FR ", []int{0, 4}, true},
		{"empty", "", nil, false},
		{"blank", "   ", nil, false},
		{"daily unsupported", "FREQ=DAILY;BYDAY=FR", nil, false},
		{"monthly unsupported", "FREQ=MONTHLY;BYDAY=1FR", nil, false},
		{"no freq", "BYDAY=FR", nil, false},
		{"no byday", "FREQ=WEEKLY", nil, false},
		{"empty byday", "FREQ=WEEKLY;BYDAY=", nil, false},
		{"unknown day code", "FREQ=WEEKLY;BYDAY=FR,XX", nil, false},
		{"ordinal byday rejected", "FREQ=WEEKLY;BYDAY=2FR", nil, false},
		{"not a rule", "every friday", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, ok := Weekdays(tt.rule)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			for d := range 7 {
				want := false
				for _, w := range tt.want {
					if w == d {
						want = true
					}
				}
				assert.Equal(t, want, set.Has(d), "day %d", d)
			}
		})
	}
}

func TestDaySetHasOutOfRange(t *testing.T) {
	set, ok := Weekdays("FREQ=WEEKLY;BYDAY=MO")
	require.True(t, ok)
	assert.False(t, set.Has(-1))
	assert.False(t, set.Has(7))
}
