// Package provider defines the mail backend capabilities the application is
// built against. Implementations return provider-native messages untouched;
// flattening them is the normalize package's job.
package provider

import (
	"context"
	"errors"

	gmailapi "google.golang.org/api/gmail/v1"
)

var (
	// ErrNotFound is returned when a message does not exist upstream.
	ErrNotFound = errors.New("message not found")

	// ErrHistoryExpired is returned when the requested history ID is too
	// old for the provider to replay. Callers should resync from
	// LatestHistoryID.
	ErrHistoryExpired = errors.New("history id expired")
)

type ListOptions struct {
	PageToken  string
	MaxResults int
	LabelIDs   []string
	Query      string
}

// Page is one page of full messages plus the cursor for the next one.
type Page struct {
	Messages           []*gmailapi.Message
	NextPageToken      string
	ResultSizeEstimate int64
}

// MessageSource fetches messages.
type MessageSource interface {
	// ListMessages returns full messages in the provider's listing order.
	ListMessages(ctx context.Context, opts ListOptions) (*Page, error)
	GetMessage(ctx context.Context, id string) (*gmailapi.Message, error)
}

// Mutator changes messages upstream.
type Mutator interface {
	ModifyLabels(ctx context.Context, msgID string, add, remove []string) error
	TrashMessage(ctx context.Context, msgID string) error
}

// HistorySource replays upstream changes.
type HistorySource interface {
	History(ctx context.Context, startHistoryID uint64) ([]HistoryEvent, uint64, error)
	LatestHistoryID(ctx context.Context) (uint64, error)
}

// Provider is a complete mail backend.
type Provider interface {
	MessageSource
	Mutator
	HistorySource
}

type HistoryEventType int

const (
	HistoryMessageAdded HistoryEventType = iota
	HistoryMessageDeleted
	HistoryLabelsAdded
	HistoryLabelsRemoved
)

func (t HistoryEventType) String() string {
	switch t {
	case HistoryMessageAdded:
		return "message_added"
	case HistoryMessageDeleted:
		return "message_deleted"
	case HistoryLabelsAdded:
		return "labels_added"
	case HistoryLabelsRemoved:
		return "labels_removed"
	default:
		return "unknown"
	}
}

type HistoryEvent struct {
	Type      HistoryEventType
	MessageID string
	// LabelIDs are the labels added or removed by the event.
	LabelIDs []string
	// Labels is the message's full label set after the event, when known.
	Labels []string
}
