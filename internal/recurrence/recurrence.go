// Package recurrence reads the one recurrence shape scheduled pins may
// carry: a weekly rule with a day-of-week list, e.g.
// "FREQ=WEEKLY;BYDAY=MO,FR". The grammar is deliberately this small so
// the open-now filter's behavior stays auditable; anything else is a
// parse failure and the caller fails closed.
package recurrence

import "strings"

// DaySet is a set of Monday-first weekday indices (bit 0 = Monday,
// bit 6 = Sunday).
type DaySet uint8

// Has reports whether the Monday-first weekday index day is in the set.
func (s DaySet) Has(day int) bool {
	return day >= 0 && day <= 6 && s&(1<<uint(day)) != 0
}

var dayCodes = map[string]int{
	"MO": 0,
	"TU": 1,
	"WE": 2,
	"TH": 3,
	"FR": 4,
	"SA": 5,
	"SU": 6,
}

// Weekdays parses a weekly recurrence rule into its weekday set.
//
// The rule must specify FREQ=WEEKLY and a non-empty BYDAY list of
// two-letter day codes; other parts (BYHOUR, BYMINUTE, ...) are
// ignored because the pin's own time-of-day fields are authoritative.
// ok is false for anything else: empty or malformed text, an
// unsupported frequency, an unknown day code, or a missing day list.
func Weekdays(rule string) (DaySet, bool) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return 0, false
	}

	freq := ""
	byday := ""
	for _, part := range strings.Split(rule, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, found := strings.Cut(part, "=")
		if !found {
			return 0, false
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "FREQ":
			freq = strings.ToUpper(strings.TrimSpace(val))
		case "BYDAY":
			byday = val
		}
	}
	if freq != "WEEKLY" {
		return 0, false
	}

	var set DaySet
	found := false
	for _, tok := range strings.Split(byday, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		d, ok := dayCodes[tok]
		if !ok {
			return 0, false
		}
		set |= 1 << uint(d)
		found = true
	}
	if !found {
		return 0, false
	}
	return set, true
}
