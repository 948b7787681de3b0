package gmail_tools

import (
	"context"
	"errors"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/tools/dispatch"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

// composeFromArgs builds the outgoing message shared by send and draft.
func composeFromArgs(args validate.Arguments) (*gmail.Message, error) {
	msg := &gmail.Message{
		To:       args.Strings("to"),
		Cc:       args.Strings("cc"),
		Bcc:      args.Strings("bcc"),
		Subject:  args.String("subject"),
		Body:     args.String("body"),
		HTML:     args.Bool("html"),
		HTMLBody: args.String("htmlBody"),
	}
	if paths := args.Strings("attachments"); len(paths) > 0 {
		atts, err := gmail.LoadAttachments(paths)
		if err != nil {
			return nil, dispatch.NewError(dispatch.CodeValidation, err)
		}
		msg.Attachments = atts
	}
	return msg, nil
}

func encode(msg *gmail.Message) (string, error) {
	raw, err := gmail.Build(msg)
	if errors.Is(err, gmail.ErrHeaderInjection) {
		return "", dispatch.NewError(dispatch.CodeValidation, err)
	}
	if err != nil {
		return "", err
	}
	return gmail.EncodeRaw(raw), nil
}

func (t *toolset) handleSendEmail(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	msg, err := composeFromArgs(args)
	if err != nil {
		return nil, err
	}
	raw, err := encode(msg)
	if err != nil {
		return nil, err
	}

	sent, err := svc.Send(ctx, raw, "")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"messageId": sent.ID,
		"threadId":  sent.ThreadID,
	}, nil
}

func (t *toolset) handleCreateDraft(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	msg, err := composeFromArgs(args)
	if err != nil {
		return nil, err
	}
	raw, err := encode(msg)
	if err != nil {
		return nil, err
	}

	draft, err := svc.CreateDraft(ctx, raw, args.String("threadId"))
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"draftId":   draft.ID,
		"messageId": draft.MessageID,
	}
	if draft.ThreadID != "" {
		payload["threadId"] = draft.ThreadID
	}
	return payload, nil
}

// handleReplyToEmail answers the sender of messageId inside the same thread.
func (t *toolset) handleReplyToEmail(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	orig, err := svc.GetMessage(ctx, args.String("messageId"), gmail.FormatFull)
	if err != nil {
		return nil, err
	}

	reply := gmail.NewReply(orig, args.String("body"), args.Strings("cc"), args.Strings("bcc"), args.Bool("html"))
	if len(reply.To) == 0 || reply.To[0] == "" {
		return nil, invalid("original message has no sender to reply to")
	}
	raw, err := encode(reply)
	if err != nil {
		return nil, err
	}

	sent, err := svc.Send(ctx, raw, orig.ThreadID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"messageId": sent.ID,
		"threadId":  sent.ThreadID,
	}, nil
}

func (t *toolset) handleSearchEmails(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	emails, err := svc.Search(ctx, gmail.SearchOptions{
		Query:            args.String("query"),
		MaxResults:       int64(args.Int("maxResults")),
		LabelIDs:         args.Strings("labelIds"),
		IncludeSpamTrash: args.Bool("includeSpamTrash"),
	})
	if err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []gmail.MessageSummary{}
	}
	return map[string]any{
		"count":  len(emails),
		"emails": emails,
	}, nil
}

func (t *toolset) handleGetEmail(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	msg, err := svc.GetMessage(ctx, args.String("messageId"), args.String("format"))
	if err != nil {
		return nil, err
	}
	return messagePayload(msg), nil
}

func (t *toolset) handleGetThread(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	thread, err := svc.GetThread(ctx, args.String("threadId"))
	if err != nil {
		return nil, err
	}
	messages := thread.Messages
	if messages == nil {
		messages = []gmail.MessageDetail{}
	}
	return map[string]any{
		"threadId":     thread.ID,
		"messageCount": len(messages),
		"messages":     messages,
	}, nil
}

func messagePayload(m *gmail.MessageDetail) map[string]any {
	payload := map[string]any{
		"id":           m.ID,
		"threadId":     m.ThreadID,
		"labelIds":     m.LabelIDs,
		"snippet":      m.Snippet,
		"sizeEstimate": m.SizeEstimate,
		"internalDate": m.InternalDate,
	}
	if len(m.Headers) > 0 {
		payload["headers"] = m.Headers
	}
	if m.Body != "" {
		payload["body"] = m.Body
	}
	if len(m.Attachments) > 0 {
		payload["attachments"] = m.Attachments
	}
	return payload
}
