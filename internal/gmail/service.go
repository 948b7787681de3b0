package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Authenticator supplies OAuth state for one or more accounts.
// *google.Authenticator satisfies it.
type Authenticator interface {
	HasToken(account string) bool
	AuthCodeURL(account string) string
	Exchange(ctx context.Context, account, code string) error
	HTTPClient(ctx context.Context, account string) (*http.Client, error)
}

// Service is the mail collaborator for a single account. The underlying
// Client is created on first use and rebuilt after a new code exchange.
type Service struct {
	account string
	auth    Authenticator
	opts    []ClientOption

	mu     sync.Mutex
	client *Client
}

// NewService creates a Service. auth may be nil when no OAuth client is
// configured, in which case every call fails with ErrNotAuthenticated.
func NewService(account string, auth Authenticator, opts ...ClientOption) *Service {
	return &Service{account: account, auth: auth, opts: opts}
}

// NewServiceWithClient wraps an existing client. Auth operations report the
// account as authenticated.
func NewServiceWithClient(c *Client) *Service {
	return &Service{account: c.Account(), client: c}
}

// Account returns the account name.
func (s *Service) Account() string {
	return s.account
}

func (s *Service) IsAuthenticated() bool {
	if s.auth == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.client != nil
	}
	return s.auth.HasToken(s.account)
}

// AuthURL returns the consent URL, or "" when OAuth is not configured.
func (s *Service) AuthURL() string {
	if s.auth == nil {
		return ""
	}
	return s.auth.AuthCodeURL(s.account)
}

// ExchangeCode stores a token for the authorization code and drops any
// cached client so the next call uses it.
func (s *Service) ExchangeCode(ctx context.Context, code string) error {
	if s.auth == nil {
		return errors.New("OAuth client credentials are not configured")
	}
	if err := s.auth.Exchange(ctx, s.account, code); err != nil {
		return err
	}
	s.mu.Lock()
	s.client = nil
	s.mu.Unlock()
	return nil
}

func (s *Service) getClient(ctx context.Context) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	if s.auth == nil || !s.auth.HasToken(s.account) {
		return nil, fmt.Errorf("%w for account %q", ErrNotAuthenticated, s.account)
	}

	hc, err := s.auth.HTTPClient(ctx, s.account)
	if err != nil {
		return nil, fmt.Errorf("%w for account %q: %v", ErrNotAuthenticated, s.account, err)
	}
	c, err := NewClient(context.WithoutCancel(ctx), s.account, hc, s.opts...)
	if err != nil {
		return nil, err
	}
	s.client = c
	return c, nil
}

func (s *Service) Send(ctx context.Context, raw, threadID string) (*SentMessage, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, raw, threadID)
}

func (s *Service) CreateDraft(ctx context.Context, raw, threadID string) (*Draft, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.CreateDraft(ctx, raw, threadID)
}

func (s *Service) Search(ctx context.Context, opts SearchOptions) ([]MessageSummary, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, opts)
}

func (s *Service) GetMessage(ctx context.Context, id, format string) (*MessageDetail, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetMessage(ctx, id, format)
}

func (s *Service) GetThread(ctx context.Context, id string) (*Thread, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetThread(ctx, id)
}

func (s *Service) ModifyLabels(ctx context.Context, id string, add, remove []string) (*MessageDetail, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.ModifyLabels(ctx, id, add, remove)
}

func (s *Service) TrashMessage(ctx context.Context, id string) error {
	c, err := s.getClient(ctx)
	if err != nil {
		return err
	}
	return c.TrashMessage(ctx, id)
}

func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	c, err := s.getClient(ctx)
	if err != nil {
		return err
	}
	return c.DeleteMessage(ctx, id)
}

func (s *Service) ListLabels(ctx context.Context) ([]Label, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListLabels(ctx)
}

func (s *Service) CreateLabel(ctx context.Context, spec LabelSpec) (*Label, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.CreateLabel(ctx, spec)
}

func (s *Service) DeleteLabel(ctx context.Context, id string) error {
	c, err := s.getClient(ctx)
	if err != nil {
		return err
	}
	return c.DeleteLabel(ctx, id)
}

func (s *Service) GetProfile(ctx context.Context) (*Profile, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetProfile(ctx)
}

func (s *Service) ListAttachments(ctx context.Context, messageID string) ([]AttachmentInfo, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListAttachments(ctx, messageID)
}

func (s *Service) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetAttachment(ctx, messageID, attachmentID)
}

func (s *Service) ListFilters(ctx context.Context) ([]Filter, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListFilters(ctx)
}

func (s *Service) GetFilter(ctx context.Context, id string) (*Filter, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetFilter(ctx, id)
}

func (s *Service) CreateFilter(ctx context.Context, criteria FilterCriteria, action FilterAction) (*Filter, error) {
	c, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.CreateFilter(ctx, criteria, action)
}

func (s *Service) DeleteFilter(ctx context.Context, id string) error {
	c, err := s.getClient(ctx)
	if err != nil {
		return err
	}
	return c.DeleteFilter(ctx, id)
}
