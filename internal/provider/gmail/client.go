package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/lu-zhengda/mailboard/internal/provider"
	"github.com/lu-zhengda/mailboard/internal/store"
)

const (
	userID = "me"

	defaultFetchLimit = 10
)

// Provider implements provider.Provider for Gmail.
type Provider struct {
	tokenStore store.TokenStore
	accountID  string
	service    *gmailapi.Service
	token      *oauth2.Token
	fetchLimit int
}

// New creates a new Gmail provider for the given account.
func New(accountID string, tokenStore store.TokenStore) *Provider {
	return &Provider{
		accountID:  accountID,
		tokenStore: tokenStore,
		fetchLimit: defaultFetchLimit,
	}
}

// NewWithService wraps an already configured Gmail service.
func NewWithService(srv *gmailapi.Service) *Provider {
	return &Provider{service: srv, fetchLimit: defaultFetchLimit}
}

// SetFetchLimit bounds how many messages ListMessages fetches in parallel.
func (p *Provider) SetFetchLimit(n int) {
	if n > 0 {
		p.fetchLimit = n
	}
}

// Authenticate runs the OAuth2 flow, saves the token, and initializes the Gmail service.
func (p *Provider) Authenticate(ctx context.Context) error {
	token, err := authenticate(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate gmail: %w", err)
	}

	if err := p.tokenStore.SaveToken(p.accountID, token); err != nil {
		return fmt.Errorf("failed to save gmail token: %w", err)
	}

	return p.useToken(ctx, token)
}

func (p *Provider) useToken(ctx context.Context, token *oauth2.Token) error {
	p.token = token
	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	p.service = srv
	return nil
}

// ensureService lazily loads the stored token and creates the Gmail service.
func (p *Provider) ensureService(ctx context.Context) error {
	if p.service != nil {
		return nil
	}
	token, err := p.tokenStore.LoadToken(p.accountID)
	if err != nil {
		return fmt.Errorf("failed to load gmail token: %w", err)
	}
	return p.useToken(ctx, token)
}

// ListMessages returns a page of full messages matching the given options.
// Messages are fetched concurrently and returned in listing order.
func (p *Provider) ListMessages(ctx context.Context, opts provider.ListOptions) (*provider.Page, error) {
	if err := p.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	call := p.service.Users.Messages.List(userID)
	if opts.MaxResults > 0 {
		call = call.MaxResults(int64(opts.MaxResults))
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if len(opts.LabelIDs) > 0 {
		call = call.LabelIds(opts.LabelIDs...)
	}
	if opts.Query != "" {
		call = call.Q(opts.Query)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list gmail messages: %w", err)
	}

	msgs := make([]*gmailapi.Message, len(resp.Messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fetchLimit)
	for i, stub := range resp.Messages {
		g.Go(func() error {
			msg, err := p.fetch(gctx, stub.Id)
			if err != nil {
				return err
			}
			msgs[i] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &provider.Page{
		Messages:           msgs,
		NextPageToken:      resp.NextPageToken,
		ResultSizeEstimate: resp.ResultSizeEstimate,
	}, nil
}

// GetMessage returns a single full message by ID.
func (p *Provider) GetMessage(ctx context.Context, id string) (*gmailapi.Message, error) {
	if err := p.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}
	return p.fetch(ctx, id)
}

func (p *Provider) fetch(ctx context.Context, id string) (*gmailapi.Message, error) {
	msg, err := p.service.Users.Messages.Get(userID, id).
		Format("full").Context(ctx).Do()
	if isNotFound(err) {
		return nil, fmt.Errorf("gmail message %s: %w", id, provider.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gmail message %s: %w", id, err)
	}
	return msg, nil
}

// ModifyLabels adds and removes labels on a message.
func (p *Provider) ModifyLabels(ctx context.Context, msgID string, add, remove []string) error {
	if err := p.ensureService(ctx); err != nil {
		return fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	req := &gmailapi.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}
	_, err := p.service.Users.Messages.Modify(userID, msgID, req).Context(ctx).Do()
	if isNotFound(err) {
		return fmt.Errorf("gmail message %s: %w", msgID, provider.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to modify labels on message %s: %w", msgID, err)
	}
	return nil
}

// TrashMessage moves a message to trash.
func (p *Provider) TrashMessage(ctx context.Context, msgID string) error {
	if err := p.ensureService(ctx); err != nil {
		return fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	_, err := p.service.Users.Messages.Trash(userID, msgID).Context(ctx).Do()
	if isNotFound(err) {
		return fmt.Errorf("gmail message %s: %w", msgID, provider.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to trash gmail message %s: %w", msgID, err)
	}
	return nil
}

// History returns history events since the given history ID.
func (p *Provider) History(ctx context.Context, startHistoryID uint64) ([]provider.HistoryEvent, uint64, error) {
	if err := p.ensureService(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	var events []provider.HistoryEvent
	latestHistoryID := startHistoryID

	call := p.service.Users.History.List(userID).
		StartHistoryId(startHistoryID)

	err := call.Pages(ctx, func(resp *gmailapi.ListHistoryResponse) error {
		if resp.HistoryId > latestHistoryID {
			latestHistoryID = resp.HistoryId
		}

		for _, h := range resp.History {
			for _, added := range h.MessagesAdded {
				events = append(events, provider.HistoryEvent{
					Type:      provider.HistoryMessageAdded,
					MessageID: added.Message.Id,
					LabelIDs:  added.Message.LabelIds,
					Labels:    added.Message.LabelIds,
				})
			}
			for _, deleted := range h.MessagesDeleted {
				events = append(events, provider.HistoryEvent{
					Type:      provider.HistoryMessageDeleted,
					MessageID: deleted.Message.Id,
				})
			}
			for _, la := range h.LabelsAdded {
				events = append(events, provider.HistoryEvent{
					Type:      provider.HistoryLabelsAdded,
					MessageID: la.Message.Id,
					LabelIDs:  la.LabelIds,
					Labels:    la.Message.LabelIds,
				})
			}
			for _, lr := range h.LabelsRemoved {
				events = append(events, provider.HistoryEvent{
					Type:      provider.HistoryLabelsRemoved,
					MessageID: lr.Message.Id,
					LabelIDs:  lr.LabelIds,
					Labels:    lr.Message.LabelIds,
				})
			}
		}
		return nil
	})
	if isNotFound(err) {
		return nil, 0, provider.ErrHistoryExpired
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list gmail history: %w", err)
	}

	return events, latestHistoryID, nil
}

// LatestHistoryID returns the mailbox's current history ID.
func (p *Provider) LatestHistoryID(ctx context.Context) (uint64, error) {
	profile, err := p.profile(ctx)
	if err != nil {
		return 0, err
	}
	return profile.HistoryId, nil
}

// GetProfile returns the authenticated user's email address.
func (p *Provider) GetProfile(ctx context.Context) (string, error) {
	profile, err := p.profile(ctx)
	if err != nil {
		return "", err
	}
	return profile.EmailAddress, nil
}

func (p *Provider) profile(ctx context.Context) (*gmailapi.Profile, error) {
	if err := p.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	profile, err := p.service.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get gmail profile: %w", err)
	}
	return profile, nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// Compile-time interface compliance check.
var _ provider.Provider = (*Provider)(nil)
