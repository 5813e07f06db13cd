// Package normalize converts Gmail API messages into flat domain records.
//
// Everything here is best effort: malformed headers, bodies and dates
// degrade to empty values instead of returning errors, so a single odd
// message can never fail a whole page.
package normalize

import gmailapi "google.golang.org/api/gmail/v1"

// walk visits part and all of its descendants depth-first in document order.
// visit returning false stops the walk; walk reports whether it ran to
// completion. Nil parts are skipped.
func walk(part *gmailapi.MessagePart, visit func(*gmailapi.MessagePart) bool) bool {
	if part == nil {
		return true
	}
	if !visit(part) {
		return false
	}
	return walkParts(part.Parts, visit)
}

// walkParts walks a sibling list in order.
func walkParts(parts []*gmailapi.MessagePart, visit func(*gmailapi.MessagePart) bool) bool {
	for _, p := range parts {
		if !walk(p, visit) {
			return false
		}
	}
	return true
}
