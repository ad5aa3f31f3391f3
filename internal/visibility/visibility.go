// Package visibility implements the open-now pin filter: a pure
// predicate deciding, for an arbitrary instant, whether a pin is
// currently open or opens within the lookahead window, with the pin's
// schedule read in its own IANA timezone.
//
// Failure policy is asymmetric on purpose. Missing schedule data
// (no timezone, no time fields, unresolvable zone name) fails open so
// bad data never hides a legitimate pin; a recurrence rule that is
// present but unreadable fails closed, because the author clearly
// intended a schedule and "always open" would be wrong.
//
// Everything here is synchronous and side-effect free; the predicate
// runs fresh per pin on every filter evaluation.
package visibility

import (
	"strings"
	"time"

	"pinmap/internal/datetime"
	"pinmap/internal/model"
	"pinmap/internal/recurrence"
)

// DefaultLookaheadHours is the forward window within which a
// not-yet-open pin still counts as open.
const DefaultLookaheadHours = 2

// FilterPins returns the subset of pins passing the filter against the
// current instant, with the default lookahead window.
func FilterPins(pins []model.Pin, f model.Filter) []model.Pin {
	return FilterPinsAt(pins, f, DefaultLookaheadHours, time.Now())
}

// FilterPinsAt is FilterPins with an explicit lookahead and evaluation
// instant.
func FilterPinsAt(pins []model.Pin, f model.Filter, lookaheadHours int, at time.Time) []model.Pin {
	out := make([]model.Pin, 0, len(pins))
	for _, p := range pins {
		if VisibleAt(p, f, lookaheadHours, at) {
			out = append(out, p)
		}
	}
	return out
}

// Visible reports whether the pin passes the filter right now.
func Visible(p model.Pin, f model.Filter, lookaheadHours int) bool {
	return VisibleAt(p, f, lookaheadHours, time.Now())
}

// VisibleAt reports whether the pin passes the filter when evaluated
// at the given instant. The tag check is independent of time and
// applied first; the time check only runs under the "now" filter.
func VisibleAt(p model.Pin, f model.Filter, lookaheadHours int, at time.Time) bool {
	if f.Tag != "" && !p.HasTag(f.Tag) {
		return false
	}
	if f.Time != model.TimeNow {
		return true
	}
	return openWithin(p, lookaheadHours, at)
}

// openWithin decides the time half of the filter: open at the instant,
// or opening within lookaheadHours of it, in the pin's timezone.
func openWithin(p model.Pin, lookaheadHours int, at time.Time) bool {
	rule := strings.TrimSpace(p.ScheduleRule)

	// No timezone, or no schedule information at all: always visible.
	if p.Timezone == "" {
		return true
	}
	if p.StartTime == "" && p.EndTime == "" && rule == "" {
		return true
	}

	now, ok := datetime.PartsIn(at, p.Timezone)
	if !ok {
		// Unresolvable zone name: cannot evaluate, keep the pin.
		return true
	}
	soon := datetime.AddHours(now, lookaheadHours)

	if rule != "" || p.Kind == model.KindScheduled {
		return recurringOpen(rule, p, now, soon)
	}
	return oneTimeOpen(p, now, soon)
}

// oneTimeOpen: not already closed, and opening at or before the
// lookahead horizon. A bound that is absent or unparsable simply does
// not constrain.
func oneTimeOpen(p model.Pin, now, soon datetime.Parts) bool {
	if start, ok := datetime.ParseDateTime(p.StartTime); ok && datetime.Compare(start, soon) > 0 {
		return false
	}
	if end, ok := datetime.ParseDateTime(p.EndTime); ok && datetime.Compare(now, end) > 0 {
		return false
	}
	return true
}

// recurringOpen evaluates a weekly pin. Two branches: today's rule day
// with the clock inside the open interval or the start inside the
// (possibly midnight-wrapping) [now, soon] window, and the rollover
// case where the window reaches into tomorrow and tomorrow is a rule
// day. The second branch exists because a pin opening at 01:00 Tuesday
// must be caught at 23:00 Monday, when today's weekday tells us
// nothing.
func recurringOpen(rule string, p model.Pin, now, soon datetime.Parts) bool {
	days, ok := recurrence.Weekdays(rule)
	if !ok {
		// Rule present but unreadable: fail closed.
		return false
	}

	start, hasStart := datetime.ParseTimeOfDay(p.StartTime)
	end, hasEnd := datetime.ParseTimeOfDay(p.EndTime)
	nowClock := now.TimeOfDay()
	soonClock := soon.TimeOfDay()

	if today, ok := datetime.WeekdayOf(now.Year, now.Month, now.Day); ok && days.Has(today) {
		openNow := (!hasStart || start.Minutes() <= nowClock.Minutes()) &&
			(!hasEnd || nowClock.Minutes() <= end.Minutes())
		opensSoon := hasStart && inWindow(start, nowClock, soonClock)
		if openNow || opensSoon {
			return true
		}
	}

	if now.SameDate(soon) {
		return false
	}
	next, ok := datetime.WeekdayOf(soon.Year, soon.Month, soon.Day)
	if !ok || !days.Has(next) {
		return false
	}
	return hasStart && start.Minutes() <= soonClock.Minutes()
}

// inWindow reports whether t lies in [from, to], where the window wraps
// past midnight when from is later than to.
func inWindow(t, from, to datetime.TimeOfDay) bool {
	x, a, b := t.Minutes(), from.Minutes(), to.Minutes()
	if a <= b {
		return a <= x && x <= b
	}
	return x >= a || x <= b
}
