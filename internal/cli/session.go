package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailboard/internal/ai"
	"github.com/lu-zhengda/mailboard/internal/app"
	"github.com/lu-zhengda/mailboard/internal/config"
	"github.com/lu-zhengda/mailboard/internal/domain"
	"github.com/lu-zhengda/mailboard/internal/provider"
	"github.com/lu-zhengda/mailboard/internal/provider/fixture"
	"github.com/lu-zhengda/mailboard/internal/provider/gmail"
	"github.com/lu-zhengda/mailboard/internal/store"
	"github.com/lu-zhengda/mailboard/internal/store/sqlite"
)

// fixtureAccountID is the account used when mail comes from fixtures.
const fixtureAccountID = "fixture"

// session bundles everything a mail command needs for one account.
type session struct {
	cfg       *config.Config
	db        *sqlite.DB
	provider  provider.Provider
	accountID string
	logger    *slog.Logger
	mail      *app.MailService
}

func (s *session) Close() error {
	return s.db.Close()
}

// openSession loads config, opens the database and builds the provider and
// mail service for the selected account.
func openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	db, err := openDB()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, db: db, logger: logger}
	if err := s.initProvider(ctx); err != nil {
		db.Close()
		return nil, err
	}

	opts := []app.Option{app.WithLogger(logger)}
	if cfg.AI.APIKey != "" {
		opts = append(opts, app.WithSummarizer(ai.New(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens)))
	}
	s.mail = app.NewMailService(s.provider, db, opts...)

	logger.Debug("session opened", "account", s.accountID, "provider", cfg.Provider.Kind)
	return s, nil
}

func (s *session) initProvider(ctx context.Context) error {
	switch s.cfg.Provider.Kind {
	case config.ProviderFixture:
		src, err := fixture.Load(s.cfg.Provider.FixtureDir)
		if err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}
		s.provider = src
		s.accountID = accountFlag
		if s.accountID == "" {
			s.accountID = fixtureAccountID
		}
		return ensureAccount(ctx, s.db, s.accountID, "fixture")

	default:
		if err := resolveGmailCredentials(s.cfg); err != nil {
			return err
		}
		accountID, err := resolveAccountID(ctx, s.db, s.cfg)
		if err != nil {
			return err
		}
		g := gmail.New(accountID, store.NewKeyringTokenStore())
		g.SetFetchLimit(s.cfg.Gmail.FetchLimit)
		s.provider = g
		s.accountID = accountID
		return nil
	}
}

// ensureAccount creates a placeholder account row so per-account state has
// something to hang off.
func ensureAccount(ctx context.Context, db *sqlite.DB, id, providerName string) error {
	_, err := db.GetAccount(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return db.CreateAccount(ctx, &domain.Account{
		ID:          id,
		Email:       id + "@localhost",
		Provider:    providerName,
		DisplayName: id,
		CreatedAt:   time.Now(),
	})
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if verboseFlag {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// openDB creates the data directory and opens the SQLite database.
func openDB() (*sqlite.DB, error) {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "mailboard.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadConfig loads the application configuration from the config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.toml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveAccountID picks the account from the flag, the config default, or
// the first account in the database.
func resolveAccountID(ctx context.Context, db *sqlite.DB, cfg *config.Config) (string, error) {
	if accountFlag != "" {
		return accountFlag, nil
	}
	if cfg.Accounts.Default != "" {
		return cfg.Accounts.Default, nil
	}

	accounts, err := db.ListAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list accounts: %w", err)
	}
	for _, a := range accounts {
		if a.Provider == "gmail" {
			return a.ID, nil
		}
	}
	return "", errors.New("no accounts configured; run 'mailboard account add' first")
}

// resolveGmailCredentials hands the configured OAuth client to the gmail
// package.
func resolveGmailCredentials(cfg *config.Config) error {
	if cfg.Gmail.ClientID != "" && cfg.Gmail.ClientSecret != "" {
		gmail.SetCredentials(cfg.Gmail.ClientID, cfg.Gmail.ClientSecret)
	}
	return gmail.EnsureCredentials()
}
