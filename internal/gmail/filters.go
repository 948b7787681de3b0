package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// FilterCriteria selects the messages a filter applies to.
type FilterCriteria struct {
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Query         string `json:"query,omitempty"`
	HasAttachment bool   `json:"hasAttachment,omitempty"`
}

// IsEmpty reports whether no criterion is set.
func (c FilterCriteria) IsEmpty() bool {
	return c.From == "" && c.To == "" && c.Subject == "" && c.Query == "" && !c.HasAttachment
}

// FilterAction is applied to matching messages.
type FilterAction struct {
	AddLabelIDs    []string `json:"addLabelIds,omitempty"`
	RemoveLabelIDs []string `json:"removeLabelIds,omitempty"`
	Forward        string   `json:"forward,omitempty"`
}

// IsEmpty reports whether the action does nothing.
func (a FilterAction) IsEmpty() bool {
	return len(a.AddLabelIDs) == 0 && len(a.RemoveLabelIDs) == 0 && a.Forward == ""
}

// Filter is a Gmail filter with its criteria and action.
type Filter struct {
	ID       string         `json:"id"`
	Criteria FilterCriteria `json:"criteria"`
	Action   FilterAction   `json:"action"`
}

// CreateFilter creates a new Gmail filter.
func (c *Client) CreateFilter(ctx context.Context, criteria FilterCriteria, action FilterAction) (*Filter, error) {
	filter := &gmail.Filter{
		Criteria: &gmail.FilterCriteria{
			From:          criteria.From,
			To:            criteria.To,
			Subject:       criteria.Subject,
			Query:         criteria.Query,
			HasAttachment: criteria.HasAttachment,
		},
		Action: &gmail.FilterAction{
			AddLabelIds:    action.AddLabelIDs,
			RemoveLabelIds: action.RemoveLabelIDs,
			Forward:        action.Forward,
		},
	}

	var created *gmail.Filter
	err := c.call(ctx, instrumentation.OperationCreate, func(ctx context.Context) error {
		var err error
		created, err = c.svc.Users.Settings.Filters.Create(userID, filter).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}
	return toFilter(created), nil
}

// ListFilters lists all Gmail filters for the user.
func (c *Client) ListFilters(ctx context.Context) ([]Filter, error) {
	var resp *gmail.ListFiltersResponse
	err := c.call(ctx, instrumentation.OperationList, func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Users.Settings.Filters.List(userID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}

	filters := make([]Filter, 0, len(resp.Filter))
	for _, f := range resp.Filter {
		filters = append(filters, *toFilter(f))
	}
	return filters, nil
}

// GetFilter retrieves a specific filter by ID.
func (c *Client) GetFilter(ctx context.Context, id string) (*Filter, error) {
	var f *gmail.Filter
	err := c.call(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		f, err = c.svc.Users.Settings.Filters.Get(userID, id).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get filter %s: %w", id, err)
	}
	return toFilter(f), nil
}

// DeleteFilter deletes a filter by ID.
func (c *Client) DeleteFilter(ctx context.Context, id string) error {
	err := c.call(ctx, instrumentation.OperationDelete, func(ctx context.Context) error {
		return c.svc.Users.Settings.Filters.Delete(userID, id).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete filter %s: %w", id, err)
	}
	return nil
}

func toFilter(f *gmail.Filter) *Filter {
	out := &Filter{ID: f.Id}
	if f.Criteria != nil {
		out.Criteria = FilterCriteria{
			From:          f.Criteria.From,
			To:            f.Criteria.To,
			Subject:       f.Criteria.Subject,
			Query:         f.Criteria.Query,
			HasAttachment: f.Criteria.HasAttachment,
		}
	}
	if f.Action != nil {
		out.Action = FilterAction{
			AddLabelIDs:    f.Action.AddLabelIds,
			RemoveLabelIDs: f.Action.RemoveLabelIds,
			Forward:        f.Action.Forward,
		}
	}
	return out
}
