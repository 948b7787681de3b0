package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
)

// DefaultRedirectURL is used for the manual copy-and-paste flow when the
// client secret file declares no redirect URI.
const DefaultRedirectURL = "http://localhost"

// LoadConfig reads an OAuth client secret file downloaded from the Google
// Cloud console. A secret without redirect_uris gets DefaultRedirectURL.
func LoadConfig(credentialsPath string, scopes ...string) (*oauth2.Config, error) {
	if credentialsPath == "" {
		return nil, errors.New("no credentials file configured; set GMAIL_CREDENTIALS_PATH or credentials_path")
	}
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	data, err = withDefaultRedirect(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if len(scopes) == 0 {
		scopes = GmailScopes
	}
	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return conf, nil
}

// withDefaultRedirect inserts DefaultRedirectURL into the "installed" or
// "web" section when it lists no redirect URIs. ConfigFromJSON rejects such
// files otherwise.
func withDefaultRedirect(data []byte) ([]byte, error) {
	var file map[string]json.RawMessage
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	changed := false
	for _, key := range []string{"installed", "web"} {
		raw, ok := file[key]
		if !ok {
			continue
		}
		var section map[string]any
		if err := json.Unmarshal(raw, &section); err != nil {
			return nil, fmt.Errorf("invalid %q section: %w", key, err)
		}
		if section == nil {
			continue
		}
		if uris, _ := section["redirect_uris"].([]any); len(uris) > 0 {
			continue
		}
		section["redirect_uris"] = []string{DefaultRedirectURL}
		updated, err := json.Marshal(section)
		if err != nil {
			return nil, err
		}
		file[key] = updated
		changed = true
	}
	if !changed {
		return data, nil
	}
	return json.Marshal(file)
}

// Authenticator runs the authorization-code flow and hands out authorized
// HTTP clients. Tokens are written to the store after every exchange and
// every refresh.
type Authenticator struct {
	config  *oauth2.Config
	store   TokenStore
	metrics *instrumentation.Metrics
	logger  *slog.Logger
	base    http.RoundTripper
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithAuthMetrics records OAuth exchange and refresh outcomes.
func WithAuthMetrics(m *instrumentation.Metrics) AuthenticatorOption {
	return func(a *Authenticator) {
		a.metrics = m
	}
}

// WithAuthLogger sets the logger.
func WithAuthLogger(logger *slog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithBaseTransport replaces the transport under the OAuth transport.
func WithBaseTransport(rt http.RoundTripper) AuthenticatorOption {
	return func(a *Authenticator) {
		a.base = rt
	}
}

// NewAuthenticator creates an Authenticator. Outbound calls are traced with
// otelhttp unless WithBaseTransport overrides the transport.
func NewAuthenticator(config *oauth2.Config, store TokenStore, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		config: config,
		store:  store,
		logger: slog.Default(),
		base:   otelhttp.NewTransport(http.DefaultTransport),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HasToken reports whether a token is stored for account.
func (a *Authenticator) HasToken(account string) bool {
	_, err := a.store.Load(account)
	return err == nil
}

// AuthCodeURL returns the consent URL. The account name is carried in the
// state parameter.
func (a *Authenticator) AuthCodeURL(account string) string {
	return a.config.AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it. code may
// also be the full redirect URL the browser landed on.
func (a *Authenticator) Exchange(ctx context.Context, account, code string) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	code = ParseAuthCode(code)
	if code == "" {
		return errors.New("authorization code is empty")
	}

	tok, err := a.config.Exchange(a.httpContext(ctx), code)
	if err != nil {
		a.recordAuth(ctx, instrumentation.OAuthResultFailure)
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := a.store.Save(account, tok); err != nil {
		a.recordAuth(ctx, instrumentation.OAuthResultFailure)
		return fmt.Errorf("failed to store token: %w", err)
	}

	a.recordAuth(ctx, instrumentation.OAuthResultSuccess)
	a.logger.Info("stored OAuth token", logging.Account(account))
	return nil
}

// Revoke forgets the stored token for account.
func (a *Authenticator) Revoke(account string) error {
	return a.store.Delete(account)
}

// HTTPClient returns a client that authorizes requests as account and
// refreshes the token when it expires.
func (a *Authenticator) HTTPClient(ctx context.Context, account string) (*http.Client, error) {
	tok, err := a.store.Load(account)
	if err != nil {
		return nil, err
	}

	src := &persistingTokenSource{
		account: account,
		store:   a.store,
		base:    a.config.TokenSource(a.httpContext(context.WithoutCancel(ctx)), tok),
		last:    tok,
		onRefresh: func(result string) {
			if a.metrics != nil {
				a.metrics.RecordOAuthTokenRefresh(ctx, result)
			}
		},
		logger: a.logger,
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(tok, src),
			Base:   a.base,
		},
	}, nil
}

func (a *Authenticator) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: a.base})
}

func (a *Authenticator) recordAuth(ctx context.Context, result string) {
	if a.metrics != nil {
		a.metrics.RecordOAuthAuth(ctx, result)
	}
}

// ParseAuthCode extracts the code from a pasted redirect URL. Plain codes
// are returned trimmed.
func ParseAuthCode(input string) string {
	input = strings.TrimSpace(input)
	if !strings.Contains(input, "code=") {
		return input
	}

	query := input
	if u, err := url.Parse(input); err == nil && u.RawQuery != "" {
		query = u.RawQuery
	} else if i := strings.Index(input, "?"); i >= 0 {
		query = input[i+1:]
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return input
	}
	if code := values.Get("code"); code != "" {
		return code
	}
	return input
}

// persistingTokenSource writes every refreshed token back to the store.
type persistingTokenSource struct {
	account   string
	store     TokenStore
	base      oauth2.TokenSource
	onRefresh func(result string)
	logger    *slog.Logger

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		s.onRefresh(instrumentation.OAuthResultFailure)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil && s.last.AccessToken == tok.AccessToken {
		return tok, nil
	}
	s.last = tok
	s.onRefresh(instrumentation.OAuthResultSuccess)

	if err := s.store.Save(s.account, tok); err != nil {
		s.logger.Warn("failed to persist refreshed token",
			logging.Account(s.account), logging.Err(err))
	}
	return tok, nil
}

// DefaultTokenDir returns <user cache dir>/gmailmcp.
func DefaultTokenDir() string {
	return filepath.Join(userCacheDir(), "gmailmcp")
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
