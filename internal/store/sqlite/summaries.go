package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func (s *DB) GetSummary(ctx context.Context, userID, emailID string) (string, bool, error) {
	var summary string
	err := s.db.GetContext(ctx, &summary,
		`SELECT summary FROM summaries WHERE user_id = ? AND email_id = ?`,
		userID, emailID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get summary "+emailID, err)
	}
	return summary, true, nil
}

func (s *DB) PutSummary(ctx context.Context, userID, emailID, summary string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (user_id, email_id, summary, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, email_id) DO UPDATE SET
			summary    = excluded.summary,
			created_at = excluded.created_at`,
		userID, emailID, summary, time.Now().UnixMilli(),
	)
	if err != nil {
		return unavailable("put summary "+emailID, err)
	}
	return nil
}
