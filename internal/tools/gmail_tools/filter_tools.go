package gmail_tools

import (
	"context"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

func (t *toolset) handleListFilters(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	filters, err := svc.ListFilters(ctx)
	if err != nil {
		return nil, err
	}
	if filters == nil {
		filters = []gmail.Filter{}
	}
	return map[string]any{
		"count":   len(filters),
		"filters": filters,
	}, nil
}

func (t *toolset) handleGetFilter(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	f, err := svc.GetFilter(ctx, args.String("filterId"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"filter": f}, nil
}

// handleCreateFilter requires at least one criterion and one action; Gmail
// rejects filters without either.
func (t *toolset) handleCreateFilter(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}

	criteria := gmail.FilterCriteria{
		From:          args.String("from"),
		To:            args.String("to"),
		Subject:       args.String("subject"),
		Query:         args.String("query"),
		HasAttachment: args.Bool("hasAttachment"),
	}
	if criteria.IsEmpty() {
		return nil, invalid("at least one criterion (from, to, subject, query, hasAttachment) is required")
	}
	action := gmail.FilterAction{
		AddLabelIDs:    args.Strings("addLabelIds"),
		RemoveLabelIDs: args.Strings("removeLabelIds"),
		Forward:        args.String("forward"),
	}
	if action.IsEmpty() {
		return nil, invalid("at least one action (addLabelIds, removeLabelIds, forward) is required")
	}

	f, err := svc.CreateFilter(ctx, criteria, action)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"filterId": f.ID,
		"filter":   f,
	}, nil
}

func (t *toolset) handleDeleteFilter(ctx context.Context, args validate.Arguments) (map[string]any, error) {
	svc, err := t.mail(args)
	if err != nil {
		return nil, err
	}
	id := args.String("filterId")
	if err := svc.DeleteFilter(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"filterId": id}, nil
}
