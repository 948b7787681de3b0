package gmail_tools

import (
	"context"

	"github.com/teemow/gmailmcp/internal/gmail"
)

// MailService is the Gmail collaborator the handlers call. gmail.Service
// implements it; tests supply fakes.
type MailService interface {
	IsAuthenticated() bool
	AuthURL() string
	ExchangeCode(ctx context.Context, code string) error

	Send(ctx context.Context, raw, threadID string) (*gmail.SentMessage, error)
	CreateDraft(ctx context.Context, raw, threadID string) (*gmail.Draft, error)

	Search(ctx context.Context, opts gmail.SearchOptions) ([]gmail.MessageSummary, error)
	GetMessage(ctx context.Context, id, format string) (*gmail.MessageDetail, error)
	GetThread(ctx context.Context, id string) (*gmail.Thread, error)

	ModifyLabels(ctx context.Context, id string, add, remove []string) (*gmail.MessageDetail, error)
	TrashMessage(ctx context.Context, id string) error
	DeleteMessage(ctx context.Context, id string) error

	ListLabels(ctx context.Context) ([]gmail.Label, error)
	CreateLabel(ctx context.Context, spec gmail.LabelSpec) (*gmail.Label, error)
	DeleteLabel(ctx context.Context, id string) error

	GetProfile(ctx context.Context) (*gmail.Profile, error)

	ListAttachments(ctx context.Context, messageID string) ([]gmail.AttachmentInfo, error)
	GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)

	ListFilters(ctx context.Context) ([]gmail.Filter, error)
	GetFilter(ctx context.Context, id string) (*gmail.Filter, error)
	CreateFilter(ctx context.Context, criteria gmail.FilterCriteria, action gmail.FilterAction) (*gmail.Filter, error)
	DeleteFilter(ctx context.Context, id string) error
}

var _ MailService = (*gmail.Service)(nil)

// ServiceFunc returns the MailService for an account.
type ServiceFunc func(account string) MailService
