package feeds

import (
	"strconv"
	"time"
)

// unixToTime converts a Unix epoch second timestamp, as used by the Hacker
// News and Reddit APIs, to time.Time in UTC.
func unixToTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// parseRFC3339 parses timestamps as returned by dev.to and similar JSON
// APIs, reporting whether parsing succeeded instead of erroring the fetch.
func parseRFC3339(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
