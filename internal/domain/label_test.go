package domain

import "testing"

func TestMailboxFromLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{"inbox", []string{"UNREAD", "INBOX"}, LabelInbox},
		{"trash wins", []string{"INBOX", "TRASH"}, LabelTrash},
		{"spam", []string{"SPAM", "UNREAD"}, LabelSpam},
		{"sent only", []string{"SENT"}, LabelSent},
		{"inbox before sent", []string{"SENT", "INBOX"}, LabelInbox},
		{"archived", []string{"STARRED", "Label_42"}, MailboxArchive},
		{"no labels", nil, MailboxArchive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MailboxFromLabels(tt.labels); got != tt.want {
				t.Errorf("MailboxFromLabels(%v) = %q, want %q", tt.labels, got, tt.want)
			}
		})
	}
}
