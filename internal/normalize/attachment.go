package normalize

import (
	"fmt"
	"net/url"

	"github.com/lu-zhengda/mailboard/internal/domain"
	gmailapi "google.golang.org/api/gmail/v1"
)

const (
	defaultAttachmentType = "application/octet-stream"
	unknownMessageID      = "unknown"

	gmailAttachmentURL = "https://gmail.googleapis.com/gmail/v1/users/me/messages/%s/attachments/%s"
	proxyAttachmentURL = "/api/attachments/%s"
)

// ExtractAttachments collects every part with a non-empty filename, at any
// depth and in document order. A qualifying part's children are still
// visited, so attachments inside forwarded messages are included.
//
// Parts without a provider attachment id get the synthetic id
// "<messageID>:<filename>", which is stable across fetches.
func ExtractAttachments(parts []*gmailapi.MessagePart, messageID string) []domain.Attachment {
	var out []domain.Attachment
	walkParts(parts, func(p *gmailapi.MessagePart) bool {
		if p.Filename != "" {
			out = append(out, toAttachment(p, messageID))
		}
		return true
	})
	return out
}

// HasAttachments reports whether any part under root carries a filename. It
// stops at the first hit.
func HasAttachments(root *gmailapi.MessagePart) bool {
	found := false
	walk(root, func(p *gmailapi.MessagePart) bool {
		found = p.Filename != ""
		return !found
	})
	return found
}

func toAttachment(p *gmailapi.MessagePart, messageID string) domain.Attachment {
	att := domain.Attachment{
		FileName: p.Filename,
		MIMEType: p.MimeType,
	}
	if att.MIMEType == "" {
		att.MIMEType = defaultAttachmentType
	}

	var attachmentID string
	if p.Body != nil {
		attachmentID = p.Body.AttachmentId
		if p.Body.Size > 0 {
			att.Size = p.Body.Size
		}
	}

	if attachmentID != "" {
		att.ID = attachmentID
	} else {
		mid := messageID
		if mid == "" {
			mid = unknownMessageID
		}
		att.ID = mid + ":" + p.Filename
	}
	att.DownloadURL = downloadURL(messageID, attachmentID)
	return att
}

func downloadURL(messageID, attachmentID string) string {
	switch {
	case messageID != "" && attachmentID != "":
		return fmt.Sprintf(gmailAttachmentURL, url.PathEscape(messageID), url.PathEscape(attachmentID))
	case attachmentID != "":
		return fmt.Sprintf(proxyAttachmentURL, url.PathEscape(attachmentID))
	default:
		return ""
	}
}
