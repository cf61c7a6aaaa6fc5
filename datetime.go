package main

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// defaultScheduleLocation is assumed for every schedule string without
// an explicit zone, a fixed UTC+5:30 offset.
var defaultScheduleLocation = time.FixedZone("IST", 5*3600+30*60)

const scheduleTimeFormat = "2006-01-02 15:04:05"

// scheduleTimeFormats are tried in order. Month-first wins for
// ambiguous slash dates like 03/04/2024.
var scheduleTimeFormats = []string{
	scheduleTimeFormat,
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// parseScheduleTime parses a schedule or completion cell from the post
// store. Blank and unparsable strings report false, they are never an
// error. Strings without zone information get loc attached.
func parseScheduleTime(str string, loc *time.Location) (time.Time, bool) {
	str = strings.TrimSpace(str)
	if str == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = defaultScheduleLocation
	}
	for _, format := range scheduleTimeFormats {
		if t, err := time.ParseInLocation(format, str, loc); err == nil {
			return t, true
		}
	}
	// Fall back to lenient parsing for RFC 3339 and other formats
	if t, err := dateparse.ParseIn(str, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// formatScheduleTime renders an instant the way the post store keeps
// timestamps.
func formatScheduleTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = defaultScheduleLocation
	}
	return t.In(loc).Format(scheduleTimeFormat)
}
