package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestParseAuthCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain code", "4/abc", "4/abc"},
		{"surrounding whitespace", "  4/abc\n", "4/abc"},
		{"redirect url", "http://localhost/?state=default&code=4%2Fxyz&scope=mail", "4/xyz"},
		{"bare query", "code=plain&state=x", "plain"},
		{"url without code value", "http://localhost/?code=", "http://localhost/?code="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAuthCode(tt.input); got != tt.want {
				t.Errorf("ParseAuthCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "credentials.json")
	secret := `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.example/auth","token_uri":"https://accounts.example/token"}}`
	require.NoError(t, os.WriteFile(path, []byte(secret), 0600))

	conf, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "id", conf.ClientID)
	assert.Equal(t, DefaultRedirectURL, conf.RedirectURL)
	assert.Equal(t, GmailScopes, conf.Scopes)

	conf, err = LoadConfig(path, ReadOnlyScopes...)
	require.NoError(t, err)
	assert.Equal(t, ReadOnlyScopes, conf.Scopes)
}

func TestLoadConfig_RedirectURL(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		want    string
		wantErr bool
	}{
		{
			name:   "installed without redirect_uris",
			secret: `{"installed":{"client_id":"id","client_secret":"s","auth_uri":"https://a.example/auth","token_uri":"https://a.example/token"}}`,
			want:   DefaultRedirectURL,
		},
		{
			name:   "empty redirect_uris",
			secret: `{"installed":{"client_id":"id","client_secret":"s","redirect_uris":[],"auth_uri":"https://a.example/auth","token_uri":"https://a.example/token"}}`,
			want:   DefaultRedirectURL,
		},
		{
			name:   "web without redirect_uris",
			secret: `{"web":{"client_id":"id","client_secret":"s","auth_uri":"https://a.example/auth","token_uri":"https://a.example/token"}}`,
			want:   DefaultRedirectURL,
		},
		{
			name:   "explicit redirect kept",
			secret: `{"installed":{"client_id":"id","client_secret":"s","redirect_uris":["http://localhost:8085/callback"],"auth_uri":"https://a.example/auth","token_uri":"https://a.example/token"}}`,
			want:   "http://localhost:8085/callback",
		},
		{name: "not json", secret: `not json`, wantErr: true},
		{name: "unknown layout", secret: `{"other":{}}`, wantErr: true},
		{name: "null section", secret: `{"installed":null}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credentials.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.secret), 0600))

			conf, err := LoadConfig(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, conf.RedirectURL)
			assert.Equal(t, "id", conf.ClientID)
		})
	}
}

// tokenServer issues a new access token on every request.
func tokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + r.Form.Get("grant_type") + "-" + string(rune('0'+n)),
			"refresh_token": "refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  DefaultRedirectURL,
		Scopes:       GmailScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.example/auth",
			TokenURL: tokenURL,
		},
	}
}

func TestAuthenticator_AuthCodeURL(t *testing.T) {
	a := NewAuthenticator(testConfig("https://accounts.example/token"), NewFileTokenStore(t.TempDir()))

	u, err := url.Parse(a.AuthCodeURL("work"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "work", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.True(t, q.Get("prompt") == "consent" || q.Get("approval_prompt") == "force", u.RawQuery)
	assert.Contains(t, q.Get("scope"), "gmail.modify")
}

func TestAuthenticator_Exchange(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)
	store := NewFileTokenStore(t.TempDir())
	a := NewAuthenticator(testConfig(srv.URL), store, WithBaseTransport(http.DefaultTransport))

	assert.False(t, a.HasToken("default"))

	err := a.Exchange(context.Background(), "default", "http://localhost/?code=abc&state=default")
	require.NoError(t, err)
	assert.True(t, a.HasToken("default"))

	tok, err := store.Load("default")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok.AccessToken, "access-authorization_code"))

	require.NoError(t, a.Revoke("default"))
	assert.False(t, a.HasToken("default"))
}

func TestAuthenticator_ExchangeRejectsBadInput(t *testing.T) {
	a := NewAuthenticator(testConfig("http://127.0.0.1:1/token"), NewFileTokenStore(t.TempDir()))

	assert.Error(t, a.Exchange(context.Background(), "bad name", "code"))
	assert.Error(t, a.Exchange(context.Background(), "default", "   "))
}

func TestAuthenticator_HTTPClientPersistsRefresh(t *testing.T) {
	var calls int32
	tokenSrv := tokenServer(t, &calls)

	var gotAuth atomic.Value
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	store := NewFileTokenStore(t.TempDir())
	require.NoError(t, store.Save("default", &oauth2.Token{
		AccessToken:  "expired",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	a := NewAuthenticator(testConfig(tokenSrv.URL), store, WithBaseTransport(http.DefaultTransport))

	_, err := a.HTTPClient(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	client, err := a.HTTPClient(context.Background(), "default")
	require.NoError(t, err)

	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	auth, _ := gotAuth.Load().(string)
	assert.True(t, strings.HasPrefix(auth, "Bearer access-refresh_token"), auth)

	stored, err := store.Load("default")
	require.NoError(t, err)
	assert.NotEqual(t, "expired", stored.AccessToken)
}
