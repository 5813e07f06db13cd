package gmail

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
)

// No credentials are embedded in the binary. Users supply their own Google
// Cloud OAuth client through [gmail] in config.toml or the GMAIL_CLIENT_ID
// and GMAIL_CLIENT_SECRET environment variables.

var oauthConfig = &oauth2.Config{
	// Modify covers reading, relabeling and trashing. Nothing is sent.
	Scopes:   []string{gmailapi.GmailModifyScope},
	Endpoint: google.Endpoint,
}

// Prompt is where the authorization URL is printed.
var Prompt io.Writer = os.Stderr

// SetCredentials sets the OAuth client ID and secret.
func SetCredentials(clientID, clientSecret string) {
	oauthConfig.ClientID = clientID
	oauthConfig.ClientSecret = clientSecret
}

// HasCredentials reports whether OAuth credentials have been configured.
func HasCredentials() bool {
	return oauthConfig.ClientID != "" && oauthConfig.ClientSecret != ""
}

// EnsureCredentials returns an error with setup instructions when no OAuth
// client is configured.
func EnsureCredentials() error {
	if HasCredentials() {
		return nil
	}
	return errors.New("gmail OAuth credentials not configured; set client_id and client_secret under [gmail] in ~/.config/mailboard/config.toml or export GMAIL_CLIENT_ID / GMAIL_CLIENT_SECRET")
}

type callbackResult struct {
	code string
	err  error
}

// authenticate runs the installed-app flow against a loopback listener,
// using PKCE and a random state value.
func authenticate(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	cfg := *oauthConfig
	cfg.RedirectURL = fmt.Sprintf("http://%s", listener.Addr().String())

	state, err := randomState()
	if err != nil {
		listener.Close()
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("oauth callback state mismatch")
		case q.Get("code") == "":
			res.err = fmt.Errorf("no code in callback: %s", q.Get("error"))
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			fmt.Fprint(w, "Authentication failed. You can close this tab.")
		} else {
			fmt.Fprint(w, "Authentication successful! You can close this tab.")
		}
		select {
		case results <- res:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go server.Serve(listener)
	defer server.Shutdown(context.Background())

	url := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	fmt.Fprintf(Prompt, "\nOpen this URL in your browser to authorize mailboard:\n\n  %s\n\nWaiting for authorization...\n", url)

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		token, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
		if err != nil {
			return nil, fmt.Errorf("failed to exchange auth code: %w", err)
		}
		return token, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
