package normalize

import (
	"encoding/base64"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
)

// Bodies holds the first HTML and first plain-text body of a message.
type Bodies struct {
	HTML string
	Text string
}

// ExtractBodies selects the first text/html and first text/plain body in
// document order. The root part's own body is considered before any child.
// A body that decodes to nothing does not claim its slot, so a later part of
// the same type can still fill it.
func ExtractBodies(root *gmailapi.MessagePart) Bodies {
	var b Bodies
	walk(root, func(p *gmailapi.MessagePart) bool {
		mime := strings.ToLower(p.MimeType)
		switch {
		case strings.Contains(mime, "html"):
			if b.HTML == "" {
				b.HTML = partData(p)
			}
		case strings.Contains(mime, "plain"):
			if b.Text == "" {
				b.Text = partData(p)
			}
		}
		return b.HTML == "" || b.Text == ""
	})
	return b
}

func partData(p *gmailapi.MessagePart) string {
	if p.Body == nil {
		return ""
	}
	return decodeBase64URL(p.Body.Data)
}

// decodeBase64URL decodes Gmail's URL-safe base64 body data. Padding is
// optional. Anything undecodable yields an empty string.
func decodeBase64URL(s string) string {
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	s = strings.TrimRight(s, "=")
	data, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(data)
}
