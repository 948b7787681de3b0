package google

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"golang.org/x/oauth2"
)

const keyringService = "gmailmcp"

// OpenKeyring opens the platform keyring. fileDir is used by the encrypted
// file backend when no system keyring is available.
func OpenKeyring(fileDir, filePassword string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(filePassword),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// KeyringTokenStore keeps tokens in a keyring, one item per account.
type KeyringTokenStore struct {
	ring keyring.Keyring
}

// NewKeyringTokenStore wraps an opened keyring.
func NewKeyringTokenStore(ring keyring.Keyring) *KeyringTokenStore {
	return &KeyringTokenStore{ring: ring}
}

func keyringKey(account string) string {
	return "oauth-token-" + account
}

func (s *KeyringTokenStore) Load(account string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	item, err := s.ring.Get(keyringKey(account))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w for account %s", ErrTokenNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("getting token for %q: %w", account, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(item.Data, &tok); err != nil {
		return nil, fmt.Errorf("parsing token for %q: %w", account, err)
	}
	return &tok, nil
}

func (s *KeyringTokenStore) Save(account string, tok *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	err = s.ring.Set(keyring.Item{
		Key:         keyringKey(account),
		Data:        data,
		Label:       "gmailmcp OAuth token (" + account + ")",
		Description: "Gmail OAuth2 token",
	})
	if err != nil {
		return fmt.Errorf("setting token for %q: %w", account, err)
	}
	return nil
}

func (s *KeyringTokenStore) Delete(account string) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}

	err := s.ring.Remove(keyringKey(account))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w for account %s", ErrTokenNotFound, account)
	}
	if err != nil {
		return fmt.Errorf("deleting token for %q: %w", account, err)
	}
	return nil
}
