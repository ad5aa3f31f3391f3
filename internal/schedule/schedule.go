// Package schedule provides the write-path and preview helpers around
// scheduled pins: rule validation before storage, and expansion of a
// weekly rule into concrete upcoming occurrences in the pin's
// timezone. The open-now filter never calls into this package; it
// keeps its own minimal rule reader.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"pinmap/internal/datetime"
	"pinmap/internal/model"
	"pinmap/internal/recurrence"
)

const defaultMaxOccurrences = 100

// ValidateRule checks that a recurrence rule is storable. It must be a
// well-formed RFC 5545 rule and carry the weekly day list the open-now
// filter reads, so an author can never store a rule the filter would
// silently fail closed on.
func ValidateRule(rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return errors.New("empty recurrence rule")
	}
	if _, ok := recurrence.Weekdays(rule); !ok {
		return fmt.Errorf("unsupported rule %q: want FREQ=WEEKLY with a BYDAY list", rule)
	}
	if _, err := rrule.StrToRRule(rule); err != nil {
		return fmt.Errorf("parse rule %q: %w", rule, err)
	}
	return nil
}

// Occurrence is one concrete opening of a scheduled pin, in the pin's
// timezone.
type Occurrence struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Upcoming expands a scheduled pin's rule into occurrences within
// [from, from+days) evaluated in the pin's timezone. max caps the
// result (defaultMaxOccurrences when <= 0).
//
// The pin's own time-of-day fields are authoritative for the clock
// time of each occurrence; a missing start means midnight, a missing
// end means a zero-length occurrence. An end clock earlier than the
// start wraps past midnight.
func Upcoming(p model.Pin, from time.Time, days, max int) ([]Occurrence, error) {
	rule := strings.TrimSpace(p.ScheduleRule)
	if rule == "" {
		return nil, errors.New("pin has no recurrence rule")
	}
	if p.Timezone == "" {
		return nil, errors.New("pin has no timezone")
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", p.Timezone, err)
	}
	if days <= 0 {
		days = 7
	}
	if max <= 0 {
		max = defaultMaxOccurrences
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("parse rule %q: %w", rule, err)
	}

	start, hasStart := datetime.ParseTimeOfDay(p.StartTime)
	end, hasEnd := datetime.ParseTimeOfDay(p.EndTime)

	// Anchor DTSTART one week back from the window at the pin's start
	// clock so the first in-window occurrence is never skipped.
	local := from.In(loc)
	anchor := time.Date(local.Year(), local.Month(), local.Day(), start.Hour, start.Minute, 0, 0, loc)
	r.DTStart(anchor.AddDate(0, 0, -7))

	var set rrule.Set
	set.RRule(r)

	occTimes := set.Between(from, from.AddDate(0, 0, days), true)
	if len(occTimes) > max {
		occTimes = occTimes[:max]
	}

	dur := time.Duration(0)
	if hasStart && hasEnd {
		minutes := end.Minutes() - start.Minutes()
		if minutes < 0 {
			minutes += 24 * 60
		}
		dur = time.Duration(minutes) * time.Minute
	}

	out := make([]Occurrence, 0, len(occTimes))
	for _, t := range occTimes {
		t = t.In(loc)
		out = append(out, Occurrence{Start: t, End: t.Add(dur)})
	}
	return out, nil
}
