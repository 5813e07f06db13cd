package app

import (
	"context"

	"github.com/lu-zhengda/mailboard/internal/domain"
)

// Column is one status lane of the board.
type Column struct {
	Status domain.Status
	Emails []domain.TriagedEmail
}

// Board is a merged page grouped by status, columns in domain.Statuses
// order. Every column is present even when empty.
type Board struct {
	Columns       []Column
	NextPageToken string
}

// Board lists a page and groups it by triage status.
func (s *MailService) Board(ctx context.Context, userID string, opts ListOptions) (*Board, error) {
	page, err := s.ListEmails(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	b := GroupByStatus(page.Emails)
	b.NextPageToken = page.NextPageToken
	return b, nil
}

// GroupByStatus buckets emails into columns, keeping their relative order.
func GroupByStatus(emails []domain.TriagedEmail) *Board {
	idx := make(map[domain.Status]int, len(domain.Statuses))
	b := &Board{Columns: make([]Column, len(domain.Statuses))}
	for i, st := range domain.Statuses {
		idx[st] = i
		b.Columns[i].Status = st
	}
	for _, e := range emails {
		i, ok := idx[e.Status]
		if !ok {
			i = idx[domain.StatusInbox]
		}
		b.Columns[i].Emails = append(b.Columns[i].Emails, e)
	}
	return b
}
