// Package schedule renders trip start/end instants as the short text shown
// on discovery cards, e.g. "Today at 2:00 PM - 3:30 PM".
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const clockLayout = "3:04 PM"

// Formatter renders trip windows relative to a clock.
// The zero value uses time.Now and time.Local.
type Formatter struct {
	// Now returns the current instant. Tests pin it to a fixed time.
	Now func() time.Time
	// Location is the time zone days and clock times are rendered in.
	Location *time.Location
}

// NewFormatter returns a Formatter using the wall clock in loc.
// A nil loc means time.Local.
func NewFormatter(loc *time.Location) Formatter {
	return Formatter{Now: time.Now, Location: loc}
}

// Window renders "<day> at <start> - <end>". A zero start or end yields "".
// The day is Today, Tomorrow, Yesterday or a short date such as "Mar 15th".
func (f Formatter) Window(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return ""
	}
	loc := f.location()
	start, end = start.In(loc), end.In(loc)

	return fmt.Sprintf("%s at %s - %s",
		relativeDay(start, f.now().In(loc)),
		start.Format(clockLayout),
		end.Format(clockLayout),
	)
}

// WindowFromRaw is Window for raw inputs as they arrive from clients or
// the data store. Anything ParseInstant rejects yields "".
func (f Formatter) WindowFromRaw(start, end string) string {
	s, ok := ParseInstant(start)
	if !ok {
		return ""
	}
	e, ok := ParseInstant(end)
	if !ok {
		return ""
	}
	return f.Window(s, e)
}

// FormatTripWindow renders a trip window from raw inputs using the wall
// clock in the local time zone. It never panics; bad input yields "".
func FormatTripWindow(start, end string) string {
	return Formatter{}.WindowFromRaw(start, end)
}

func (f Formatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

func relativeDay(t, now time.Time) string {
	day := dateOf(t)
	today := dateOf(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return t.Format("Jan ") + strconv.Itoa(t.Day()) + ordinalSuffix(t.Day())
	}
}

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ordinalSuffix(day int) string {
	if n := day % 100; n >= 11 && n <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp or a Unix epoch in
// milliseconds. Empty, "null" and unparseable input report false.
func ParseInstant(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "null", "undefined":
		return time.Time{}, false
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
