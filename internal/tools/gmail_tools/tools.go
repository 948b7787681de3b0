package gmail_tools

import (
	"context"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/tools/common"
	"github.com/teemow/gmailmcp/internal/tools/dispatch"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

type toolset struct {
	services ServiceFunc
}

// Register binds the Gmail handlers to d. Operations missing from d's
// registry, such as write operations in read-only mode, are skipped.
func Register(d *dispatch.Dispatcher, services ServiceFunc) {
	t := &toolset{services: services}

	handlers := map[string]dispatch.Handler{
		OpAuthURL:    t.handleAuthURL,
		OpAuthToken:  t.handleAuthToken,
		OpAuthStatus: t.handleAuthStatus,
		OpGetProfile: t.handleGetProfile,

		OpSendEmail:   t.handleSendEmail,
		OpCreateDraft: t.handleCreateDraft,
		OpReplyEmail:  t.handleReplyToEmail,

		OpSearchEmails: t.handleSearchEmails,
		OpGetEmail:     t.handleGetEmail,
		OpGetThread:    t.handleGetThread,

		OpModifyLabels:      t.handleModifyLabels,
		OpBatchModifyLabels: t.handleBatchModifyLabels,
		OpMarkRead:          t.batchLabels(nil, []string{gmail.LabelUnread}),
		OpMarkUnread:        t.batchLabels([]string{gmail.LabelUnread}, nil),
		OpArchiveEmails:     t.batchLabels(nil, []string{gmail.LabelInbox}),
		OpTrashEmails:       t.batch(MailService.TrashMessage),
		OpDeleteEmails:      t.batch(MailService.DeleteMessage),

		OpListAttachments:    t.handleListAttachments,
		OpDownloadAttachment: t.handleDownloadAttachment,

		OpListLabels:  t.handleListLabels,
		OpCreateLabel: t.handleCreateLabel,
		OpDeleteLabel: t.handleDeleteLabel,

		OpListFilters:  t.handleListFilters,
		OpGetFilter:    t.handleGetFilter,
		OpCreateFilter: t.handleCreateFilter,
		OpDeleteFilter: t.handleDeleteFilter,
	}

	for _, desc := range Descriptors() {
		if d.Registry().Has(desc.Name) {
			d.Handle(desc.Name, handlers[desc.Name])
		}
	}
}

// mail resolves the service for the account argument.
func (t *toolset) mail(args validate.Arguments) (MailService, error) {
	account, err := common.Account(args)
	if err != nil {
		return nil, err
	}
	return t.services(account), nil
}

// authenticated is like mail but fails fast when no token is stored.
func (t *toolset) authenticated(args validate.Arguments) (MailService, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	if !svc.IsAuthenticated() {
		return nil, dispatch.NewError(dispatch.CodeNotAuthenticated, gmail.ErrNotAuthenticated)
	}
	return svc, nil
}

func (t *toolset) handleAuthURL(_ context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	url := svc.AuthURL()
	if url == "" {
		return nil, dispatch.NewError(dispatch.CodeOperationFailed, errNoCredentials)
	}
	return map[string]any{
		"authUrl": url,
		"instructions": "Open the URL in a browser, grant access, then call gmail_auth_token " +
			"with the code (or the whole URL) the browser was redirected to.",
	}, nil
}

func (t *toolset) handleAuthToken(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	if err := svc.ExchangeCode(ctx, args.String("code")); err != nil {
		return nil, dispatch.NewError(dispatch.CodeNotAuthenticated, err)
	}
	return map[string]any{
		"authenticated": true,
		"message":       "Gmail access authorized",
	}, nil
}

func (t *toolset) handleAuthStatus(_ context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	return map[string]any{"authenticated": svc.IsAuthenticated()}, nil
}

func (t *toolset) handleGetProfile(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	p, err := svc.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"emailAddress":  p.EmailAddress,
		"messagesTotal": p.MessagesTotal,
		"threadsTotal":  p.ThreadsTotal,
		"historyId":     p.HistoryID,
	}, nil
}
