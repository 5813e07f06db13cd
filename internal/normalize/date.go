package normalize

import (
	"net/mail"
	"strings"
	"time"
)

// isoLayout matches JavaScript's Date.toISOString, which is what the web
// client sorts and displays against.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// dateLayouts are tried after net/mail gives up.
var dateLayouts = []string{
	time.RFC1123Z,                           // "Mon, 02 Jan 2006 15:04:05 -0700"
	time.RFC1123,                            // "Mon, 02 Jan 2006 15:04:05 MST"
	time.RFC822Z,                            // "02 Jan 06 15:04 -0700"
	time.RFC822,                             // "02 Jan 06 15:04 MST"
	"Mon, 2 Jan 2006 15:04:05 -0700",        // single-digit day
	"Mon, 2 Jan 2006 15:04:05 MST",          // single-digit day with named zone
	"2 Jan 2006 15:04:05 -0700",             // no weekday
	"2006-01-02T15:04:05Z07:00",             // ISO 8601
	"Mon, 02 Jan 2006 15:04:05 -0700 (MST)", // with parenthesized zone
}

// parseDate parses a Date header, returning the zero time when nothing fits.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := mail.ParseDate(s); err == nil {
		return t
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// formatDate picks the Date header when it parses and falls back to the
// provider's receive time in epoch milliseconds.
func formatDate(header string, internalMillis int64) string {
	if t := parseDate(header); !t.IsZero() {
		return t.UTC().Format(isoLayout)
	}
	if internalMillis > 0 {
		return time.UnixMilli(internalMillis).UTC().Format(isoLayout)
	}
	return ""
}
