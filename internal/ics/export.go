// Package ics renders the pin set as an iCalendar feed so food-sharing
// schedules can be subscribed to from any calendar client. One-time
// pins become plain VEVENTs; scheduled pins carry their weekly RRULE
// with a DTSTART anchored at their next concrete occurrence.
package ics

import (
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"pinmap/internal/datetime"
	"pinmap/internal/model"
	"pinmap/internal/schedule"
)

// Feed serializes the pins that carry a schedule into an iCalendar
// document. Pins without any time information are skipped: a VEVENT
// needs a start, and a schedule-free pin has nothing to anchor one on.
// The display location is used to resolve DTSTART instants for pins
// whose own timezone is missing or unreadable.
func Feed(pins []model.Pin, displayLoc *time.Location) (string, error) {
	if displayLoc == nil {
		displayLoc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	now := time.Now()
	count := 0
	for _, p := range pins {
		ev, ok := pinEvent(cal, p, now, displayLoc)
		if !ok {
			continue
		}
		ev.SetDtStampTime(now)
		ev.SetSummary(p.Title)
		if p.Description != "" {
			ev.SetDescription(p.Description)
		}
		count++
	}
	if count == 0 {
		return "", errors.New("no pins with schedules to export")
	}

	return cal.Serialize(), nil
}

func pinEvent(cal *ical.Calendar, p model.Pin, now time.Time, displayLoc *time.Location) (*ical.VEvent, bool) {
	loc := pinLocation(p, displayLoc)

	if rule := strings.TrimSpace(p.ScheduleRule); rule != "" {
		start, end, ok := nextOccurrence(p, now, loc)
		if !ok {
			return nil, false
		}
		ev := cal.AddEvent(p.ID)
		ev.SetStartAt(start)
		if end.After(start) {
			ev.SetEndAt(end)
		}
		ev.SetProperty(ical.ComponentPropertyRrule, rule)
		return ev, true
	}

	start, hasStart := datetime.ParseDateTime(p.StartTime)
	if !hasStart {
		return nil, false
	}
	ev := cal.AddEvent(p.ID)
	ev.SetStartAt(partsInstant(start, loc))
	if end, ok := datetime.ParseDateTime(p.EndTime); ok {
		ev.SetEndAt(partsInstant(end, loc))
	}
	return ev, true
}

// nextOccurrence resolves the DTSTART anchor for a scheduled pin: its
// next concrete opening, falling back to today at the pin's start
// clock when expansion fails.
func nextOccurrence(p model.Pin, now time.Time, loc *time.Location) (time.Time, time.Time, bool) {
	occs, err := schedule.Upcoming(p, now, 8, 1)
	if err == nil && len(occs) > 0 {
		return occs[0].Start, occs[0].End, true
	}

	start, ok := datetime.ParseTimeOfDay(p.StartTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	local := now.In(loc)
	t := time.Date(local.Year(), local.Month(), local.Day(), start.Hour, start.Minute, 0, 0, loc)
	return t, t, true
}

func pinLocation(p model.Pin, fallback *time.Location) *time.Location {
	if p.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// partsInstant interprets wall-clock parts in loc as a concrete
// instant. Seconds are dropped; the filter never reads them either.
func partsInstant(p datetime.Parts, loc *time.Location) time.Time {
	return time.Date(p.Year, time.Month(p.Month), p.Day, p.Hour, p.Minute, 0, 0, loc)
}
