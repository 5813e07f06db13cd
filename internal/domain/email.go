package domain

// Address is a single parsed address header entry. Name is empty when the
// header carried no display name.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

type Attachment struct {
	ID          string
	FileName    string
	MIMEType    string
	Size        int64
	DownloadURL string
}

// Email is the flat list-view record derived from a provider message.
// From is always a bare address; FromName is empty when the header had no
// display name. CC and BCC are nil when the message had none. Date is an
// ISO-8601 UTC timestamp or empty when no date could be derived.
type Email struct {
	ID             string
	ThreadID       string
	MailboxID      string
	From           string
	FromName       string
	To             []string
	CC             []string
	BCC            []string
	Subject        string
	Snippet        string
	Date           string
	IsRead         bool
	HasAttachments bool
	Labels         []string
}

func (e *Email) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Sender returns the display name when present, otherwise the address.
func (e *Email) Sender() string {
	if e.FromName != "" {
		return e.FromName
	}
	return e.From
}

// EmailDetail is the reading-pane record. Empty bodies and a nil
// Attachments slice mean nothing of that kind was found.
type EmailDetail struct {
	Email
	BodyHTML    string
	BodyText    string
	Attachments []Attachment
}
