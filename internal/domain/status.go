package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is a triage column on the board.
type Status string

const (
	StatusInbox      Status = "INBOX"
	StatusToDo       Status = "TO_DO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusSnoozed    Status = "SNOOZED"
)

// Statuses lists every column in board order.
var Statuses = []Status{StatusInbox, StatusToDo, StatusInProgress, StatusDone, StatusSnoozed}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts column names case-insensitively, with either '-' or '_'
// as the word separator ("in-progress", "IN_PROGRESS").
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// StatusOverlay is the locally persisted triage state for one email of one
// user. PreviousStatus is only meaningful while the overlay is snoozed and
// SnoozedUntil is zero unless Status is StatusSnoozed.
type StatusOverlay struct {
	UserID         string
	EmailID        string
	MailboxID      string
	Status         Status
	PreviousStatus Status
	SnoozedUntil   time.Time
	UpdatedAt      time.Time
}

// SnoozeExpired reports whether a snoozed overlay is due at now.
func (o *StatusOverlay) SnoozeExpired(now time.Time) bool {
	return o.Status == StatusSnoozed && !o.SnoozedUntil.IsZero() && !o.SnoozedUntil.After(now)
}

// WakeStatus is the column a snoozed overlay returns to.
func (o *StatusOverlay) WakeStatus() Status {
	if o.PreviousStatus == "" || o.PreviousStatus == StatusSnoozed {
		return StatusInbox
	}
	return o.PreviousStatus
}

// TriagedEmail is an Email annotated with its effective triage state.
type TriagedEmail struct {
	Email
	Status       Status
	SnoozedUntil time.Time
}

// TriagedEmailDetail is an EmailDetail annotated with its effective triage
// state.
type TriagedEmailDetail struct {
	EmailDetail
	Status       Status
	SnoozedUntil time.Time
}
