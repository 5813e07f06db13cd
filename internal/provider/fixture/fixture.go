// Package fixture serves Gmail-shaped messages from memory, loaded from a
// directory of JSON files in the Gmail API wire format. It backs offline
// runs and tests.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/lu-zhengda/mailboard/internal/provider"
)

const defaultPageSize = 20

// Source is an in-memory provider.Provider. Mutations are recorded as
// history so reconciliation can be exercised without a network.
type Source struct {
	mu        sync.RWMutex
	messages  []*gmailapi.Message // newest first
	byID      map[string]*gmailapi.Message
	history   []record
	historyID uint64
}

type record struct {
	id    uint64
	event provider.HistoryEvent
}

// New returns a Source holding msgs.
func New(msgs ...*gmailapi.Message) *Source {
	s := &Source{byID: make(map[string]*gmailapi.Message), historyID: 1}
	for _, m := range msgs {
		s.messages = append(s.messages, m)
		s.byID[m.Id] = m
	}
	sort.SliceStable(s.messages, func(i, j int) bool {
		if s.messages[i].InternalDate != s.messages[j].InternalDate {
			return s.messages[i].InternalDate > s.messages[j].InternalDate
		}
		return s.messages[i].Id < s.messages[j].Id
	})
	return s
}

// Load reads every *.json file in dir as one message.
func Load(dir string) (*Source, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no message fixtures in %s", dir)
	}

	msgs := make([]*gmailapi.Message, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
		}
		var m gmailapi.Message
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
		}
		if m.Id == "" {
			m.Id = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		msgs = append(msgs, &m)
	}
	return New(msgs...), nil
}

// ListMessages pages through messages carrying every label in
// opts.LabelIDs. Query matches case-insensitively against the subject,
// sender and snippet. Page tokens are offsets.
func (s *Source) ListMessages(ctx context.Context, opts provider.ListOptions) (*provider.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := 0
	if opts.PageToken != "" {
		n, err := strconv.Atoi(opts.PageToken)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid page token %q", opts.PageToken)
		}
		offset = n
	}
	size := opts.MaxResults
	if size <= 0 {
		size = defaultPageSize
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*gmailapi.Message
	for _, m := range s.messages {
		if matches(m, opts) {
			matched = append(matched, m)
		}
	}

	page := &provider.Page{ResultSizeEstimate: int64(len(matched))}
	if offset >= len(matched) {
		return page, nil
	}
	end := min(offset+size, len(matched))
	page.Messages = slices.Clone(matched[offset:end])
	if end < len(matched) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func matches(m *gmailapi.Message, opts provider.ListOptions) bool {
	for _, l := range opts.LabelIDs {
		if !slices.Contains(m.LabelIds, l) {
			return false
		}
	}
	if opts.Query == "" {
		return true
	}
	q := strings.ToLower(opts.Query)
	fields := []string{m.Snippet, header(m, "Subject"), header(m, "From")}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func header(m *gmailapi.Message, name string) string {
	if m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func (s *Source) GetMessage(ctx context.Context, id string) (*gmailapi.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("fixture message %s: %w", id, provider.ErrNotFound)
	}
	return m, nil
}

// ModifyLabels replaces the stored message with a relabeled copy, so
// messages already handed out are never mutated.
func (s *Source) ModifyLabels(ctx context.Context, msgID string, add, remove []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relabel(msgID, add, remove)
}

// TrashMessage labels a message TRASH and drops its INBOX label.
func (s *Source) TrashMessage(ctx context.Context, msgID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relabel(msgID, []string{"TRASH"}, []string{"INBOX"})
}

// Delete removes a message permanently.
func (s *Source) Delete(msgID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[msgID]; !ok {
		return
	}
	delete(s.byID, msgID)
	s.messages = slices.DeleteFunc(s.messages, func(m *gmailapi.Message) bool { return m.Id == msgID })
	s.record(provider.HistoryEvent{Type: provider.HistoryMessageDeleted, MessageID: msgID})
}

func (s *Source) relabel(msgID string, add, remove []string) error {
	old, ok := s.byID[msgID]
	if !ok {
		return fmt.Errorf("fixture message %s: %w", msgID, provider.ErrNotFound)
	}

	labels := slices.DeleteFunc(slices.Clone(old.LabelIds), func(l string) bool {
		return slices.Contains(remove, l)
	})
	var added []string
	for _, l := range add {
		if !slices.Contains(labels, l) {
			labels = append(labels, l)
			added = append(added, l)
		}
	}
	var removed []string
	for _, l := range remove {
		if slices.Contains(old.LabelIds, l) {
			removed = append(removed, l)
		}
	}

	m := *old
	m.LabelIds = labels
	s.byID[msgID] = &m
	for i, cur := range s.messages {
		if cur.Id == msgID {
			s.messages[i] = &m
		}
	}

	if len(added) > 0 {
		s.record(provider.HistoryEvent{Type: provider.HistoryLabelsAdded, MessageID: msgID, LabelIDs: added, Labels: labels})
	}
	if len(removed) > 0 {
		s.record(provider.HistoryEvent{Type: provider.HistoryLabelsRemoved, MessageID: msgID, LabelIDs: removed, Labels: labels})
	}
	return nil
}

func (s *Source) record(ev provider.HistoryEvent) {
	s.historyID++
	s.history = append(s.history, record{id: s.historyID, event: ev})
}

// History returns events recorded after startHistoryID.
func (s *Source) History(ctx context.Context, startHistoryID uint64) ([]provider.HistoryEvent, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []provider.HistoryEvent
	for _, r := range s.history {
		if r.id > startHistoryID {
			events = append(events, r.event)
		}
	}
	return events, s.historyID, nil
}

func (s *Source) LatestHistoryID(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyID, nil
}

var _ provider.Provider = (*Source)(nil)
