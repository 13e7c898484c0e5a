package ranking

import (
	"strings"
	"time"
)

// Timeslot strings come from the catalog as free text like
// "9:00 AM - 11:00 AM" or "14:00-16:00". Only the leading token matters for
// ordering.
var clockLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
	"15:04",
	"15",
}

// parseTimeslot converts the leading time token of a timeslot string into
// minutes since midnight. The second return is false when no layout matches;
// such orders sort after every parseable one.
func parseTimeslot(slot string) (int, bool) {
	token := slot
	for _, sep := range []string{" - ", "-", "–", " to ", " TO "} {
		if idx := strings.Index(token, sep); idx >= 0 {
			token = token[:idx]
		}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}

	upper := strings.ToUpper(token)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}
