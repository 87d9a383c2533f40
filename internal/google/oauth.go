// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"golang.org/x/oauth2"
)

// Scopes per Workspace service. A service package asks for its own slice;
// login requests the union so one grant covers every command.
var Scopes = map[string][]string{
	"calendar": {"https://www.googleapis.com/auth/calendar"},
	"gmail":    {"https://www.googleapis.com/auth/gmail.modify"},
	"sheets":   {"https://www.googleapis.com/auth/spreadsheets"},
	"drive":    {"https://www.googleapis.com/auth/drive"},
	"docs":     {"https://www.googleapis.com/auth/documents"},
}

// Endpoint is Google's OAuth 2.0 endpoint. Declared here rather than
// imported so the module doesn't drag in the cloud metadata packages.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

var (
	ErrNoCredentials    = errors.New("credentials.json not found")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AllScopes returns the union of every service scope, sorted so the consent
// URL is stable run to run.
func AllScopes() []string {
	seen := map[string]bool{}
	var all []string
	for _, scopes := range Scopes {
		for _, s := range scopes {
			if !seen[s] {
				seen[s] = true
				all = append(all, s)
			}
		}
	}
	sort.Strings(all)
	return all
}

// ScopesFor narrows the grant to the named services. Unknown names are an
// error so a typo doesn't silently authorize nothing.
func ScopesFor(services ...string) ([]string, error) {
	if len(services) == 0 {
		return AllScopes(), nil
	}
	seen := map[string]bool{}
	var out []string
	for _, svc := range services {
		scopes, ok := Scopes[svc]
		if !ok {
			return nil, fmt.Errorf("unknown service %q", svc)
		}
		for _, s := range scopes {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// AuthInfo is the auth status command's view of the stored token.
type AuthInfo struct {
	ID              string `jsonapi:"primary,auth"`
	Authenticated   bool   `jsonapi:"attr,authenticated"`
	Expired         bool   `jsonapi:"attr,expired"`
	Expiry          string `jsonapi:"attr,token_expiry"`
	HasRefreshToken bool   `jsonapi:"attr,refresh_token"`
	TokenPath       string `jsonapi:"attr,token_path"`
}

// Authenticator owns credentials.json and token.json beneath the config
// directory and runs the installed-app consent flow against them.
type Authenticator struct {
	configDir string
}

func NewAuthenticator(configDir string) *Authenticator {
	return &Authenticator{configDir: configDir}
}

func (a *Authenticator) CredentialsPath() string {
	return filepath.Join(a.configDir, "credentials.json")
}

func (a *Authenticator) TokenPath() string {
	return filepath.Join(a.configDir, "token.json")
}

// oauthConfig builds the oauth2 config from the downloaded client secrets.
// Both the "installed" and "web" layouts are accepted.
func (a *Authenticator) oauthConfig(scopes []string) (*oauth2.Config, error) {
	raw, err := os.ReadFile(a.CredentialsPath())
	if err != nil {
		return nil, fmt.Errorf("%w: download it from the Google Cloud Console and place it at %s",
			ErrNoCredentials, a.CredentialsPath())
	}

	var secrets struct {
		Installed *clientSecret `json:"installed"`
		Web       *clientSecret `json:"web"`
	}
	if err := json.Unmarshal(raw, &secrets); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", a.CredentialsPath(), err)
	}

	cs := secrets.Installed
	if cs == nil {
		cs = secrets.Web
	}
	if cs == nil || cs.ClientID == "" {
		return nil, fmt.Errorf("no client id in %s", a.CredentialsPath())
	}

	return &oauth2.Config{
		ClientID:     cs.ClientID,
		ClientSecret: cs.ClientSecret,
		Endpoint:     Endpoint,
		Scopes:       scopes,
	}, nil
}

type clientSecret struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Login walks the user through the consent flow. A localhost listener
// receives the redirect, so the whole exchange completes without pasting
// codes around. The resulting token is written to token.json. With no
// services named the grant covers all of them.
func (a *Authenticator) Login(ctx context.Context, out io.Writer, services ...string) error {
	if err := os.MkdirAll(a.configDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	scopes, err := ScopesFor(services...)
	if err != nil {
		return err
	}

	conf, err := a.oauthConfig(scopes)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to open redirect listener: %w", err)
	}
	defer listener.Close()

	conf.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)
	verifier := oauth2.GenerateVerifier()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier))

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("oauth state mismatch")
			return
		}
		if msg := r.URL.Query().Get("error"); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization refused: %s", msg)
			return
		}
		fmt.Fprintln(w, "gwsctl is authenticated. You can close this window.")
		codeCh <- r.URL.Query().Get("code")
	})}
	go func() { _ = srv.Serve(listener) }()
	defer func() { _ = srv.Close() }()

	fmt.Fprintf(out, "Open this URL in your browser to authorize gwsctl:\n\n  %s\n\n", authURL)

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := a.saveToken(tok); err != nil {
		return err
	}

	log.Debugf("token saved to %s", a.TokenPath())
	return nil
}

// Logout deletes the stored token. Returns ErrNotAuthenticated when there
// was nothing to delete.
func (a *Authenticator) Logout() error {
	err := os.Remove(a.TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotAuthenticated
	}
	return err
}

// Token loads the stored token without refreshing it.
func (a *Authenticator) Token() (*oauth2.Token, error) {
	raw, err := os.ReadFile(a.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: run gwsctl auth login", ErrNotAuthenticated)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", a.TokenPath(), err)
	}
	return &tok, nil
}

func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(a.TokenPath(), raw, 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// TokenSource returns a source that transparently refreshes and persists
// the token, so a dangling access token never forces a fresh login.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	conf, err := a.oauthConfig(AllScopes())
	if err != nil {
		return nil, err
	}
	tok, err := a.Token()
	if err != nil {
		return nil, err
	}
	return &savingSource{
		auth: a,
		src:  conf.TokenSource(ctx, tok),
		last: tok.AccessToken,
	}, nil
}

// HTTPClient returns an http.Client that attaches and refreshes the bearer
// token on every request.
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// Info reports the state of the stored token for auth status.
func (a *Authenticator) Info() AuthInfo {
	info := AuthInfo{ID: "auth", TokenPath: a.TokenPath()}

	tok, err := a.Token()
	if err != nil {
		return info
	}

	info.Authenticated = true
	info.HasRefreshToken = tok.RefreshToken != ""
	if !tok.Expiry.IsZero() {
		info.Expired = tok.Expiry.Before(time.Now())
		info.Expiry = tok.Expiry.Format(time.RFC3339)
	}
	return info
}

// savingSource persists refreshed tokens back to token.json.
type savingSource struct {
	auth *Authenticator
	src  oauth2.TokenSource
	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.auth.saveToken(tok); err != nil {
			log.WithError(err).Warn("failed to persist refreshed token")
		}
	}
	return tok, nil
}
