package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
)

// Message formats accepted by GetMessage.
const (
	FormatFull     = "full"
	FormatMetadata = "metadata"
	FormatMinimal  = "minimal"
)

// Label IDs with special meaning.
const (
	LabelInbox  = "INBOX"
	LabelUnread = "UNREAD"
	LabelTrash  = "TRASH"
)

var summaryHeaders = []string{"From", "To", "Subject", "Date"}

// Send submits an already encoded raw message. threadID may be empty.
func (c *Client) Send(ctx context.Context, raw, threadID string) (*SentMessage, error) {
	var sent *gmail.Message
	err := c.call(ctx, instrumentation.OperationSend, func(ctx context.Context) error {
		var err error
		sent, err = c.svc.Users.Messages.Send(userID, &gmail.Message{
			Raw:      raw,
			ThreadId: threadID,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	return &SentMessage{ID: sent.Id, ThreadID: sent.ThreadId}, nil
}

// CreateDraft stores an encoded raw message as a draft.
func (c *Client) CreateDraft(ctx context.Context, raw, threadID string) (*Draft, error) {
	var d *gmail.Draft
	err := c.call(ctx, instrumentation.OperationCreate, func(ctx context.Context) error {
		var err error
		d, err = c.svc.Users.Drafts.Create(userID, &gmail.Draft{
			Message: &gmail.Message{Raw: raw, ThreadId: threadID},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	out := &Draft{ID: d.Id}
	if d.Message != nil {
		out.MessageID = d.Message.Id
		out.ThreadID = d.Message.ThreadId
	}
	return out, nil
}

// Search lists messages matching opts and fetches their summary headers.
func (c *Client) Search(ctx context.Context, opts SearchOptions) ([]MessageSummary, error) {
	var list *gmail.ListMessagesResponse
	err := c.call(ctx, instrumentation.OperationSearch, func(ctx context.Context) error {
		req := c.svc.Users.Messages.List(userID).Context(ctx).
			Q(opts.Query).
			IncludeSpamTrash(opts.IncludeSpamTrash)
		if opts.MaxResults > 0 {
			req = req.MaxResults(opts.MaxResults)
		}
		if len(opts.LabelIDs) > 0 {
			req = req.LabelIds(opts.LabelIDs...)
		}
		var err error
		list, err = req.Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	out := make([]MessageSummary, 0, len(list.Messages))
	for _, ref := range list.Messages {
		var msg *gmail.Message
		err := c.call(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
			var err error
			msg, err = c.svc.Users.Messages.Get(userID, ref.Id).Context(ctx).
				Format(FormatMetadata).
				MetadataHeaders(summaryHeaders...).
				Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		out = append(out, toSummary(msg))
	}
	return out, nil
}

// GetMessage retrieves one message in the given format.
func (c *Client) GetMessage(ctx context.Context, id, format string) (*MessageDetail, error) {
	if format == "" {
		format = FormatFull
	}
	msg, err := c.getRaw(ctx, id, format)
	if err != nil {
		return nil, err
	}
	return toDetail(msg), nil
}

func (c *Client) getRaw(ctx context.Context, id, format string) (*gmail.Message, error) {
	var msg *gmail.Message
	err := c.call(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		msg, err = c.svc.Users.Messages.Get(userID, id).Context(ctx).Format(format).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return msg, nil
}

// GetThread retrieves a full thread.
func (c *Client) GetThread(ctx context.Context, id string) (*Thread, error) {
	var t *gmail.Thread
	err := c.call(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		t, err = c.svc.Users.Threads.Get(userID, id).Context(ctx).Format(FormatFull).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", id, err)
	}

	out := &Thread{ID: t.Id, Messages: make([]MessageDetail, 0, len(t.Messages))}
	for _, m := range t.Messages {
		out.Messages = append(out.Messages, *toDetail(m))
	}
	return out, nil
}

// ModifyLabels adds and removes labels on a message.
func (c *Client) ModifyLabels(ctx context.Context, id string, add, remove []string) (*MessageDetail, error) {
	var msg *gmail.Message
	err := c.call(ctx, instrumentation.OperationUpdate, func(ctx context.Context) error {
		var err error
		msg, err = c.svc.Users.Messages.Modify(userID, id, &gmail.ModifyMessageRequest{
			AddLabelIds:    add,
			RemoveLabelIds: remove,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to modify labels on %s: %w", id, err)
	}
	return toDetail(msg), nil
}

// TrashMessage moves a message to the trash.
func (c *Client) TrashMessage(ctx context.Context, id string) error {
	err := c.call(ctx, instrumentation.OperationUpdate, func(ctx context.Context) error {
		_, err := c.svc.Users.Messages.Trash(userID, id).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to trash message %s: %w", id, err)
	}
	return nil
}

// DeleteMessage permanently deletes a message.
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	err := c.call(ctx, instrumentation.OperationDelete, func(ctx context.Context) error {
		return c.svc.Users.Messages.Delete(userID, id).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	return nil
}

// GetProfile returns mailbox totals for the authenticated user.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p *gmail.Profile
	err := c.call(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		p, err = c.svc.Users.GetProfile(userID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	c.logger.Debug("fetched gmail profile", logging.Account(c.account), logging.UserHash(p.EmailAddress))
	return &Profile{
		EmailAddress:  p.EmailAddress,
		MessagesTotal: p.MessagesTotal,
		ThreadsTotal:  p.ThreadsTotal,
		HistoryID:     p.HistoryId,
	}, nil
}

func headerMap(msg *gmail.Message) map[string]string {
	if msg.Payload == nil || len(msg.Payload.Headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		if _, seen := out[h.Name]; !seen {
			out[h.Name] = h.Value
		}
	}
	return out
}

func toSummary(msg *gmail.Message) MessageSummary {
	d := MessageDetail{Headers: headerMap(msg)}
	return MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     d.Header("From"),
		To:       d.Header("To"),
		Subject:  d.Header("Subject"),
		Date:     d.Header("Date"),
		Snippet:  msg.Snippet,
		LabelIDs: msg.LabelIds,
	}
}

func toDetail(msg *gmail.Message) *MessageDetail {
	d := &MessageDetail{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		LabelIDs:     msg.LabelIds,
		Snippet:      msg.Snippet,
		Headers:      headerMap(msg),
		SizeEstimate: msg.SizeEstimate,
		InternalDate: msg.InternalDate,
	}
	if msg.Payload != nil {
		d.Body = MessageBody(msg.Payload)
		d.Attachments = ExtractAttachments(msg.Payload)
	}
	return d
}
