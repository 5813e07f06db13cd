package app

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/mailboard/internal/ai"
	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/provider"
	"github.com/lu-zhengda/mailboard/internal/provider/fixture"
	"github.com/lu-zhengda/mailboard/internal/store/memory"
)

const user = "acc-1"

type testEnv struct {
	svc   *MailService
	src   *fixture.Source
	store *memory.Store
	now   time.Time
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	src, err := fixture.Load("../provider/fixture/testdata")
	require.NoError(t, err)

	env := &testEnv{
		src:   src,
		store: memory.New(),
		now:   time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	opts = append(opts, WithClock(func() time.Time { return env.now }))
	env.svc = NewMailService(src, env.store, opts...)
	return env
}

func statusOf(t *testing.T, page *EmailPage, id string) domain.Status {
	t.Helper()
	for _, e := range page.Emails {
		if e.ID == id {
			return e.Status
		}
	}
	t.Fatalf("email %s not in page", id)
	return ""
}

func TestListEmails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	page, err := env.svc.ListEmails(ctx, user, ListOptions{Mailbox: domain.LabelInbox})
	require.NoError(t, err)
	require.Len(t, page.Emails, 3)
	assert.Equal(t, int64(3), page.ResultSizeEstimate)

	first := page.Emails[0]
	assert.Equal(t, "18c0a1", first.ID)
	assert.Equal(t, "dana@example.com", first.From)
	assert.Equal(t, "Dana Reyes", first.FromName)
	assert.Equal(t, []string{"ops@example.com", "lee@example.com"}, first.CC)
	assert.Nil(t, first.BCC)
	assert.False(t, first.IsRead)
	assert.True(t, first.HasAttachments)
	assert.Equal(t, "2026-01-05T10:00:00.000Z", first.Date)
	assert.Equal(t, domain.LabelInbox, first.MailboxID)

	for _, e := range page.Emails {
		assert.Equal(t, domain.StatusInbox, e.Status)
	}
}

func TestListEmails_Paging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	page, err := env.svc.ListEmails(ctx, user, ListOptions{PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Emails, 3)
	require.NotEmpty(t, page.NextPageToken)

	next, err := env.svc.ListEmails(ctx, user, ListOptions{PageSize: 3, PageToken: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, next.Emails, 1)
	assert.Equal(t, "18c0a4", next.Emails[0].ID)
	assert.Equal(t, domain.LabelInbox, next.Emails[0].MailboxID)
}

func TestSetStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.SetStatus(ctx, user, "18c0a2", domain.StatusToDo))

	page, err := env.svc.ListEmails(ctx, user, ListOptions{Mailbox: domain.LabelInbox})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToDo, statusOf(t, page, "18c0a2"))
	assert.Equal(t, domain.StatusInbox, statusOf(t, page, "18c0a1"))

	rec, err := env.store.GetOverlay(ctx, user, "18c0a2")
	require.NoError(t, err)
	assert.Equal(t, domain.LabelInbox, rec.MailboxID)
}

func TestSetStatus_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.svc.SetStatus(ctx, user, "does-not-exist", domain.StatusDone)
	assert.ErrorIs(t, err, provider.ErrNotFound)

	err = env.svc.SetStatus(ctx, user, "18c0a2", domain.StatusSnoozed)
	assert.Error(t, err)
}

func TestSnoozeLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.SetStatus(ctx, user, "18c0a4", domain.StatusInProgress))
	until := env.now.Add(time.Hour)
	require.NoError(t, env.svc.Snooze(ctx, user, "18c0a4", until))

	page, err := env.svc.ListEmails(ctx, user, ListOptions{Mailbox: domain.LabelInbox})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSnoozed, statusOf(t, page, "18c0a4"))

	env.now = env.now.Add(2 * time.Hour)
	page, err = env.svc.ListEmails(ctx, user, ListOptions{Mailbox: domain.LabelInbox})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, statusOf(t, page, "18c0a4"))

	rec, err := env.store.GetOverlay(ctx, user, "18c0a4")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, rec.Status)
}

func TestUnsnooze(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.SetStatus(ctx, user, "18c0a1", domain.StatusDone))
	require.NoError(t, env.svc.Snooze(ctx, user, "18c0a1", env.now.Add(24*time.Hour)))

	got, err := env.svc.Unsnooze(ctx, user, "18c0a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got)
}

func TestSnoozed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Snooze(ctx, user, "18c0a1", env.now.Add(48*time.Hour)))
	require.NoError(t, env.svc.Snooze(ctx, user, "18c0a2", env.now.Add(time.Hour)))
	require.NoError(t, env.svc.SetStatus(ctx, user, "18c0a4", domain.StatusToDo))

	got, err := env.svc.Snoozed(ctx, user)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "18c0a2", got[0].EmailID)
	assert.Equal(t, "18c0a1", got[1].EmailID)
	assert.Equal(t, domain.StatusInbox, got[0].PreviousStatus)

	empty, err := env.svc.Snoozed(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d, err := env.svc.GetEmail(ctx, user, "18c0a1")
	require.NoError(t, err)
	assert.Equal(t, "Numbers are in the sheet.", d.BodyText)
	assert.Equal(t, "<p>Numbers are in the sheet.</p>", d.BodyHTML)
	require.Len(t, d.Attachments, 1)
	assert.Equal(t, "q4.pdf", d.Attachments[0].FileName)
	assert.Equal(t,
		"https://gmail.googleapis.com/gmail/v1/users/me/messages/18c0a1/attachments/ANGjdJ8q4",
		d.Attachments[0].DownloadURL)
	assert.Equal(t, domain.StatusInbox, d.Status)

	deep, err := env.svc.GetEmail(ctx, user, "18c0a3")
	require.NoError(t, err)
	assert.True(t, deep.HasAttachments)
	require.Len(t, deep.Attachments, 1)
	assert.Equal(t, "contract v2.docx", deep.Attachments[0].FileName)
	assert.Empty(t, deep.BodyText)
	assert.Equal(t, []string{"archive@example.com"}, deep.BCC)
	assert.Equal(t, "SENT", deep.MailboxID)
}

func TestArchiveKeepsColumn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.SetStatus(ctx, user, "18c0a2", domain.StatusInProgress))
	require.NoError(t, env.svc.Archive(ctx, user, "18c0a2"))

	msg, err := env.src.GetMessage(ctx, "18c0a2")
	require.NoError(t, err)
	assert.False(t, slices.Contains(msg.LabelIds, domain.LabelInbox))

	rec, err := env.store.GetOverlay(ctx, user, "18c0a2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, rec.Status)
	assert.Equal(t, domain.MailboxArchive, rec.MailboxID)

	page, err := env.svc.ListEmails(ctx, user, ListOptions{Mailbox: domain.LabelInbox})
	require.NoError(t, err)
	assert.Len(t, page.Emails, 2)
}

func TestTrashDropsSnooze(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.SetStatus(ctx, user, "18c0a1", domain.StatusToDo))
	require.NoError(t, env.svc.Snooze(ctx, user, "18c0a1", env.now.Add(time.Hour)))
	require.NoError(t, env.svc.Trash(ctx, user, "18c0a1"))

	rec, err := env.store.GetOverlay(ctx, user, "18c0a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToDo, rec.Status)
	assert.Equal(t, domain.LabelTrash, rec.MailboxID)
	assert.True(t, rec.SnoozedUntil.IsZero())
}

func TestBoard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.SetStatus(ctx, user, "18c0a1", domain.StatusDone))
	require.NoError(t, env.svc.Snooze(ctx, user, "18c0a4", env.now.Add(time.Hour)))

	b, err := env.svc.Board(ctx, user, ListOptions{Mailbox: domain.LabelInbox})
	require.NoError(t, err)
	require.Len(t, b.Columns, len(domain.Statuses))

	counts := map[domain.Status]int{}
	for _, c := range b.Columns {
		counts[c.Status] = len(c.Emails)
	}
	assert.Equal(t, map[domain.Status]int{
		domain.StatusInbox:      1,
		domain.StatusToDo:       0,
		domain.StatusInProgress: 0,
		domain.StatusDone:       1,
		domain.StatusSnoozed:    1,
	}, counts)
}

type fakeSummarizer struct {
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, subject, body string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return subject + ": " + body, nil
}

func TestSummarize_Caches(t *testing.T) {
	fs := &fakeSummarizer{}
	env := newTestEnv(t, WithSummarizer(fs))
	ctx := context.Background()

	got, err := env.svc.Summarize(ctx, user, "18c0a2")
	require.NoError(t, err)
	assert.Equal(t, "Lunch: Lunch on Thursday?", got)

	again, err := env.svc.Summarize(ctx, user, "18c0a2")
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, fs.calls)
}

func TestSummarize_FailureIsolated(t *testing.T) {
	fs := &fakeSummarizer{err: errors.New("overloaded")}
	env := newTestEnv(t, WithSummarizer(fs))
	ctx := context.Background()

	_, err := env.svc.Summarize(ctx, user, "18c0a2")
	require.Error(t, err)

	_, ok, err := env.store.GetSummary(ctx, user, "18c0a2")
	require.NoError(t, err)
	assert.False(t, ok)

	page, err := env.svc.ListEmails(ctx, user, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Emails, 4)
}

func TestSummarize_NotConfigured(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Summarize(context.Background(), user, "18c0a2")
	assert.ErrorIs(t, err, ai.ErrNotConfigured)
}

func TestGroupByStatus_KeepsOrder(t *testing.T) {
	in := []domain.TriagedEmail{
		{Email: domain.Email{ID: "a"}, Status: domain.StatusToDo},
		{Email: domain.Email{ID: "b"}, Status: domain.StatusInbox},
		{Email: domain.Email{ID: "c"}, Status: domain.StatusToDo},
	}
	b := GroupByStatus(in)
	todo := b.Columns[1]
	require.Equal(t, domain.StatusToDo, todo.Status)
	require.Len(t, todo.Emails, 2)
	assert.Equal(t, "a", todo.Emails[0].ID)
	assert.Equal(t, "c", todo.Emails[1].ID)
}
