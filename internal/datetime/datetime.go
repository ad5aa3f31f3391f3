// Package datetime provides the calendar arithmetic under the open-now
// pin filter: wall-clock parts of an instant in an arbitrary IANA
// timezone, pure integer weekday resolution, duration arithmetic with
// calendar rollover, and parsers for the two ISO shapes pins use.
//
// Everything here is a total function over value types. Timezone
// resolution is the single seam that touches the host tz database;
// the rest is plain calendar math that gives the same answer on every
// host.
package datetime

import (
	"regexp"
	"strconv"
	"time"
)

// SentinelDate is the placeholder date under which time-of-day values
// are stored inside full-timestamp fields. It carries no meaning and
// must never be interpreted as a calendar date.
const SentinelDate = "2000-01-01"

// Parts is the wall-clock (year, month, day, hour, minute) view of an
// instant in some timezone. Month is 1..12. Two Parts values are
// ordered lexicographically, which is the only ordering the filter
// relies on.
type Parts struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// TimeOfDay returns just the clock component of p.
func (p Parts) TimeOfDay() TimeOfDay {
	return TimeOfDay{Hour: p.Hour, Minute: p.Minute}
}

// SameDate reports whether p and o fall on the same calendar date.
func (p Parts) SameDate(o Parts) bool {
	return p.Year == o.Year && p.Month == o.Month && p.Day == o.Day
}

// TimeOfDay is a clock time with no date attached, ordered by minutes
// since midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns the minutes-since-midnight ordinal of t.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// PartsAt converts an instant to wall-clock parts as observed in loc.
func PartsAt(at time.Time, loc *time.Location) Parts {
	local := at.In(loc)
	return Parts{
		Year:   local.Year(),
		Month:  int(local.Month()),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
	}
}

// PartsIn converts an instant to wall-clock parts in the named IANA
// timezone. ok is false when the name is empty or not a recognized
// zone; callers treat that as "cannot evaluate" and fail open.
func PartsIn(at time.Time, tz string) (Parts, bool) {
	if tz == "" {
		return Parts{}, false
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Parts{}, false
	}
	return PartsAt(at, loc), true
}

// NowIn returns the current wall-clock parts in the named timezone.
func NowIn(tz string) (Parts, bool) {
	return PartsIn(time.Now(), tz)
}

// AddHours returns p shifted by the given number of hours, rolling
// minute, hour, day, month and year boundaries (month lengths and leap
// years included). The shift goes through a UTC instant purely as a
// normalization trick; no real timezone is consulted, so the result is
// relative calendar arithmetic only.
func AddHours(p Parts, hours int) Parts {
	t := time.Date(p.Year, time.Month(p.Month), p.Day, p.Hour+hours, p.Minute, 0, 0, time.UTC)
	return Parts{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// Compare orders two part sets chronologically. It returns a negative
// number when a is earlier than b, zero when equal, positive when
// later.
func Compare(a, b Parts) int {
	if a.Year != b.Year {
		return a.Year - b.Year
	}
	if a.Month != b.Month {
		return a.Month - b.Month
	}
	if a.Day != b.Day {
		return a.Day - b.Day
	}
	if a.Hour != b.Hour {
		return a.Hour - b.Hour
	}
	return a.Minute - b.Minute
}

var (
	fullDateTimeRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{1,2}):(\d{1,2})(?::\d{1,2})?`)
	timeOfDayRe    = regexp.MustCompile(`T(\d{1,2}):(\d{1,2})`)
)

// ParseDateTime parses an offset-free ISO string of the shape
// "YYYY-MM-DDTHH:MM[:SS]" into wall-clock parts. ok is false for
// malformed input or out-of-range month, day, hour or minute. Day is
// only checked against 1..31, not against the actual month length;
// calendar validity is the writer's job.
func ParseDateTime(iso string) (Parts, bool) {
	m := fullDateTimeRe.FindStringSubmatch(iso)
	if m == nil {
		return Parts{}, false
	}
	p := Parts{
		Year:   atoi(m[1]),
		Month:  atoi(m[2]),
		Day:    atoi(m[3]),
		Hour:   atoi(m[4]),
		Minute: atoi(m[5]),
	}
	if p.Month < 1 || p.Month > 12 || p.Day < 1 || p.Day > 31 {
		return Parts{}, false
	}
	if p.Hour < 0 || p.Hour > 23 || p.Minute < 0 || p.Minute > 59 {
		return Parts{}, false
	}
	return p, true
}

// ParseTimeOfDay extracts only the clock component from an ISO string,
// discarding the date portion entirely (for scheduled pins it is the
// sentinel date, not real data). ok is false on malformed input or
// out-of-range hour/minute.
func ParseTimeOfDay(iso string) (TimeOfDay, bool) {
	if len(iso) < 16 {
		return TimeOfDay{}, false
	}
	m := timeOfDayRe.FindStringSubmatch(iso)
	if m == nil {
		return TimeOfDay{}, false
	}
	t := TimeOfDay{Hour: atoi(m[1]), Minute: atoi(m[2])}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, false
	}
	return t, true
}

// WeekdayOf returns the Monday-first weekday index (0=MO .. 6=SU) of a
// Gregorian calendar date via Zeller's congruence. Pure integer math:
// no Date value, no timezone, so the same (y, m, d) always yields the
// same weekday on every host. ok is false for out-of-range month/day.
func WeekdayOf(year, month, day int) (int, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, false
	}
	m, y := month, year
	if m <= 2 {
		m += 12
		y--
	}
	k := y % 100
	j := y / 100
	h := (day + 13*(m+1)/5 + k + k/4 + j/4 - 2*j) % 7
	h = (h%7 + 7) % 7
	// Zeller counts 0=Saturday; rotate to 0=Monday.
	return (h + 5) % 7, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
