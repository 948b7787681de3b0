package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
)

// ErrTokenNotFound is returned when no token is stored for an account.
var ErrTokenNotFound = errors.New("no stored OAuth token")

// TokenStore persists OAuth tokens per account.
type TokenStore interface {
	Load(account string) (*oauth2.Token, error)
	Save(account string, tok *oauth2.Token) error
	Delete(account string) error
}

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateAccountName rejects account names that are unsafe as file or key names.
func ValidateAccountName(account string) error {
	if account == "" {
		return errors.New("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// FileTokenStore keeps one JSON token file per account in a directory.
type FileTokenStore struct {
	dir string
}

// NewFileTokenStore creates a store rooted at dir. An empty dir means
// DefaultTokenDir().
func NewFileTokenStore(dir string) *FileTokenStore {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &FileTokenStore{dir: dir}
}

// Dir returns the directory tokens are stored in.
func (s *FileTokenStore) Dir() string {
	return s.dir
}

// Path returns the token file for account.
func (s *FileTokenStore) Path(account string) string {
	return filepath.Join(s.dir, account+".token.json")
}

func (s *FileTokenStore) Load(account string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s", ErrTokenNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.Path(account), err)
	}
	return &tok, nil
}

// Save writes the token with owner-only permissions.
func (s *FileTokenStore) Save(account string, tok *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	tmp := s.Path(account) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.Path(account)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Delete(account string) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	err := os.Remove(s.Path(account))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w for account %s", ErrTokenNotFound, account)
	}
	if err != nil {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
