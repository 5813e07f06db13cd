package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const serviceName = "mailboard"

// TokenStore persists OAuth2 tokens per account.
type TokenStore interface {
	SaveToken(accountID string, token *oauth2.Token) error
	LoadToken(accountID string) (*oauth2.Token, error)
	DeleteToken(accountID string) error
}

// KeyringTokenStore persists OAuth2 tokens in the OS keyring
// (macOS Keychain, Windows Credential Manager, or Linux Secret Service).
type KeyringTokenStore struct {
	service string
}

// NewKeyringTokenStore returns a KeyringTokenStore using the default
// keyring service name.
func NewKeyringTokenStore() *KeyringTokenStore {
	return &KeyringTokenStore{service: serviceName}
}

// SaveToken stores the given OAuth2 token in the OS keyring under the account ID.
func (k *KeyringTokenStore) SaveToken(accountID string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := keyring.Set(k.service, accountID, string(data)); err != nil {
		return fmt.Errorf("failed to save token to keyring: %w", err)
	}
	return nil
}

// LoadToken retrieves the OAuth2 token for the given account ID. A missing
// entry is reported as ErrNotFound so callers can prompt for login.
func (k *KeyringTokenStore) LoadToken(accountID string) (*oauth2.Token, error) {
	data, err := keyring.Get(k.service, accountID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("no token for account %s: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token from keyring: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// DeleteToken removes the OAuth2 token for the given account ID. Deleting a
// token that does not exist is not an error.
func (k *KeyringTokenStore) DeleteToken(accountID string) error {
	err := keyring.Delete(k.service, accountID)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}
