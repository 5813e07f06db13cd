package domain

const (
	LabelInbox  = "INBOX"
	LabelUnread = "UNREAD"
	LabelSent   = "SENT"
	LabelDraft  = "DRAFT"
	LabelTrash  = "TRASH"
	LabelSpam   = "SPAM"
)

// MailboxArchive is the mailbox of a message that carries none of the
// container labels.
const MailboxArchive = "ARCHIVE"

// MailboxFromLabels derives the container a message currently lives in from
// its provider labels. Trash and spam win over everything else.
func MailboxFromLabels(labels []string) string {
	has := make(map[string]bool, len(labels))
	for _, l := range labels {
		has[l] = true
	}
	for _, mb := range []string{LabelTrash, LabelSpam, LabelDraft, LabelInbox, LabelSent} {
		if has[mb] {
			return mb
		}
	}
	return MailboxArchive
}
