package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinmap/internal/model"
)

func TestFeed(t *testing.T) {
	pins := []model.Pin{
		{
			ID:        "one-time-1",
			Title:     "Harvest giveaway",
			Kind:      model.KindOneTime,
			Timezone:  "UTC",
			StartTime: "2025-02-07T11:00:00",
			EndTime:   "2025-02-07T12:00:00",
		},
		{
			ID:           "weekly-1",
			Title:        "Friday food bank",
			Description:  "Bring a bag",
			Kind:         model.KindScheduled,
			Timezone:     "UTC",
			ScheduleRule: "FREQ=WEEKLY;BYDAY=FR",
			StartTime:    "2000-01-01T11:00:00",
			EndTime:      "2000-01-01T12:00:00",
		},
		{
			ID:    "free-1",
			Title: "Community fridge",
			Kind:  model.KindOneTime,
		},
	}

	feed, err := Feed(pins, time.UTC)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(feed, "BEGIN:VCALENDAR"))
	assert.Contains(t, feed, "METHOD:PUBLISH")
	assert.Contains(t, feed, "SUMMARY:Harvest giveaway")
	assert.Contains(t, feed, "SUMMARY:Friday food bank")
	assert.Contains(t, feed, "RRULE:FREQ=WEEKLY;BYDAY=FR")
	assert.Contains(t, feed, "DTSTART:20250207T110000Z")
	assert.Contains(t, feed, "DTEND:20250207T120000Z")
	assert.Contains(t, feed, "DESCRIPTION:Bring a bag")

	// Schedule-free pins have nothing to anchor a VEVENT on.
	assert.NotContains(t, feed, "Community fridge")
	assert.Equal(t, 2, strings.Count(feed, "BEGIN:VEVENT"))
}

func TestFeedNothingToExport(t *testing.T) {
	pins := []model.Pin{
		{ID: "free-1", Title: "Community fridge"},
		{ID: "broken-1", Title: "Broken times", Timezone: "UTC", StartTime: "whenever"},
	}

	_, err := Feed(pins, time.UTC)
	assert.Error(t, err)
}

func TestFeedWeeklyAnchoredOnRuleDay(t *testing.T) {
	pins := []model.Pin{{
		ID:           "weekly-2",
		Title:        "Tuesday soup",
		Kind:         model.KindScheduled,
		Timezone:     "UTC",
		ScheduleRule: "FREQ=WEEKLY;BYDAY=TU",
		StartTime:    "2000-01-01T18:00:00",
		EndTime:      "2000-01-01T19:00:00",
	}}

	feed, err := Feed(pins, time.UTC)
	require.NoError(t, err)

	// DTSTART must land on a Tuesday at the pin's start clock.
	start := extractProperty(t, feed, "DTSTART:")
	dt, err := time.Parse("20060102T150405Z", start)
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, dt.Weekday())
	assert.Equal(t, 18, dt.Hour())
}

func extractProperty(t *testing.T, feed, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(feed, "\r\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	t.Fatalf("property %q not found in feed", prefix)
	return ""
}
