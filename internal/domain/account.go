package domain

import "time"

// Account is a connected mailbox. Its ID doubles as the user ID that triage
// overlays are keyed by.
type Account struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	Provider    string    `db:"provider"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}
