package normalize

import (
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/lu-zhengda/mailboard/internal/domain"
)

// ToEmail converts a provider message into the list-view record. mailboxID
// is the container the message was listed from and is passed through as-is.
func ToEmail(msg *gmailapi.Message, mailboxID string) domain.Email {
	if msg == nil {
		return domain.Email{MailboxID: mailboxID}
	}

	var headers []*gmailapi.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	e := domain.Email{
		ID:             msg.Id,
		ThreadID:       msg.ThreadId,
		MailboxID:      mailboxID,
		To:             emails(ParseAddresses(findHeader(headers, "To"))),
		CC:             emails(ParseAddresses(findHeader(headers, "Cc"))),
		BCC:            emails(ParseAddresses(findHeader(headers, "Bcc"))),
		Subject:        findHeader(headers, "Subject"),
		Snippet:        msg.Snippet,
		Date:           formatDate(findHeader(headers, "Date"), msg.InternalDate),
		IsRead:         !containsLabel(msg.LabelIds, domain.LabelUnread),
		HasAttachments: HasAttachments(msg.Payload),
	}
	if len(msg.LabelIds) > 0 {
		e.Labels = append([]string(nil), msg.LabelIds...)
	}

	from := findHeader(headers, "From")
	if addrs := ParseAddresses(from); len(addrs) > 0 {
		e.From = addrs[0].Email
		e.FromName = addrs[0].Name
	} else {
		e.From = strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(from))
	}

	return e
}

// ToEmailDetail converts a provider message into the reading-pane record:
// the list-view fields plus the first HTML and plain bodies and every
// attachment.
func ToEmailDetail(msg *gmailapi.Message, mailboxID string) domain.EmailDetail {
	d := domain.EmailDetail{Email: ToEmail(msg, mailboxID)}
	if msg == nil || msg.Payload == nil {
		return d
	}

	bodies := ExtractBodies(msg.Payload)
	d.BodyHTML = bodies.HTML
	d.BodyText = bodies.Text
	d.Attachments = ExtractAttachments([]*gmailapi.MessagePart{msg.Payload}, msg.Id)
	return d
}

// findHeader performs a case-insensitive lookup. The first match wins.
func findHeader(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
