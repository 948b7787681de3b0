package gmail_tools

import (
	"context"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/tools/batch"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

func labelChanges(args validate.Arguments) (add, remove []string, err error) {
	add, remove = args.Strings("addLabelIds"), args.Strings("removeLabelIds")
	if len(add) == 0 && len(remove) == 0 {
		return nil, nil, invalid("at least one of addLabelIds or removeLabelIds is required")
	}
	return add, remove, nil
}

func (t *toolset) handleModifyLabels(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	add, remove, err := labelChanges(args)
	if err != nil {
		return nil, err
	}

	msg, err := svc.ModifyLabels(ctx, args.String("messageId"), add, remove)
	if err != nil {
		return nil, err
	}
	labels := msg.LabelIDs
	if labels == nil {
		labels = []string{}
	}
	return map[string]any{
		"messageId": msg.ID,
		"labelIds":  labels,
	}, nil
}

func (t *toolset) handleBatchModifyLabels(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	add, remove, err := labelChanges(args)
	if err != nil {
		return nil, err
	}
	return t.runBatch(ctx, args, func(ctx context.Context, svc MailService, id string) error {
		_, err := svc.ModifyLabels(ctx, id, add, remove)
		return err
	})
}

// batchLabels returns a batch handler applying a fixed label change.
func (t *toolset) batchLabels(add, remove []string) func(context.Context, validate.Arguments) (map[string]any, error) {
	return func(ctx context.Context, args validate.Arguments) (map[string]any, error) {
		return t.runBatch(ctx, args, func(ctx context.Context, svc MailService, id string) error {
			_, err := svc.ModifyLabels(ctx, id, add, remove)
			return err
		})
	}
}

// batch returns a batch handler calling a per-message MailService method.
func (t *toolset) batch(fn func(MailService, context.Context, string) error) func(context.Context, validate.Arguments) (map[string]any, error) {
	return func(ctx context.Context, args validate.Arguments) (map[string]any, error) {
		return t.runBatch(ctx, args, func(ctx context.Context, svc MailService, id string) error {
			return fn(svc, ctx, id)
		})
	}
}

// runBatch applies fn to every messageIds entry in order. Item failures are
// reported in the payload; the envelope fails only when the batch cannot
// start at all.
func (t *toolset) runBatch(ctx context.Context, args validate.Arguments, fn func(context.Context, MailService, string) error) (map[string]any, error) {
	svc, err := t.authenticated(args)
	if err != nil {
		return nil, err
	}
	results := batch.Process(ctx, args.Strings("messageIds"), func(ctx context.Context, id string) error {
		return fn(ctx, svc, id)
	})
	return batch.Payload(results), nil
}

func (t *toolset) handleListLabels(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	labels, err := svc.ListLabels(ctx)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []gmail.Label{}
	}
	return map[string]any{
		"count":  len(labels),
		"labels": labels,
	}, nil
}

func (t *toolset) handleCreateLabel(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	label, err := svc.CreateLabel(ctx, gmail.LabelSpec{
		Name:                  args.String("name"),
		MessageListVisibility: args.String("messageListVisibility"),
		LabelListVisibility:   args.String("labelListVisibility"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"labelId": label.ID,
		"name":    label.Name,
	}, nil
}

func (t *toolset) handleDeleteLabel(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	id := args.String("labelId")
	if err := svc.DeleteLabel(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"labelId": id}, nil
}
