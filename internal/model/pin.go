package model

import "time"

// PinKind distinguishes how a pin's schedule fields are interpreted.
type PinKind string

const (
	// KindOneTime pins carry full wall-clock start/end timestamps.
	KindOneTime PinKind = "one_time"
	// KindScheduled pins carry a weekly recurrence rule plus
	// time-of-day start/end fields (sentinel-dated on the wire).
	KindScheduled PinKind = "scheduled"
)

// Pin is a single map pin as stored and served by the API.
//
// StartTime / EndTime are ISO "YYYY-MM-DDTHH:MM:SS" strings without an
// offset; the digits are wall-clock time in Timezone. For scheduled
// pins the date portion is a fixed sentinel and only the time-of-day
// counts.
type Pin struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	Kind PinKind  `json:"pin_type,omitempty"`
	Tags []string `json:"tags"`

	Timezone     string `json:"schedule_timezone,omitempty"`
	ScheduleRule string `json:"schedule_rrule,omitempty"`
	StartTime    string `json:"start_time,omitempty"`
	EndTime      string `json:"end_time,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// HasTag reports whether the pin carries the given tag.
func (p Pin) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TimeFilter selects the temporal filtering mode.
type TimeFilter string

// TimeNow keeps only pins that are open now or opening within the
// lookahead window. The zero value disables time filtering.
const TimeNow TimeFilter = "now"

// Filter is the filter state applied to the pin set.
type Filter struct {
	// Tag, when non-empty, keeps only pins carrying that tag.
	Tag string
	// Time, when set to TimeNow, applies the open-now filter.
	Time TimeFilter
}
