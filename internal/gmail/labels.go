package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// Default label visibility used by CreateLabel.
const (
	DefaultMessageListVisibility = "show"
	DefaultLabelListVisibility   = "labelShow"
)

// ListLabels lists all labels of the mailbox.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	var resp *gmail.ListLabelsResponse
	err := c.call(ctx, instrumentation.OperationList, func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Users.Labels.List(userID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	out := make([]Label, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		out = append(out, toLabel(l))
	}
	return out, nil
}

// CreateLabel creates a user label. Empty visibility fields take the defaults.
func (c *Client) CreateLabel(ctx context.Context, spec LabelSpec) (*Label, error) {
	if spec.MessageListVisibility == "" {
		spec.MessageListVisibility = DefaultMessageListVisibility
	}
	if spec.LabelListVisibility == "" {
		spec.LabelListVisibility = DefaultLabelListVisibility
	}

	var created *gmail.Label
	err := c.call(ctx, instrumentation.OperationCreate, func(ctx context.Context) error {
		var err error
		created, err = c.svc.Users.Labels.Create(userID, &gmail.Label{
			Name:                  spec.Name,
			MessageListVisibility: spec.MessageListVisibility,
			LabelListVisibility:   spec.LabelListVisibility,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", spec.Name, err)
	}

	l := toLabel(created)
	return &l, nil
}

// DeleteLabel removes a user label.
func (c *Client) DeleteLabel(ctx context.Context, id string) error {
	err := c.call(ctx, instrumentation.OperationDelete, func(ctx context.Context) error {
		return c.svc.Users.Labels.Delete(userID, id).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete label %s: %w", id, err)
	}
	return nil
}

func toLabel(l *gmail.Label) Label {
	return Label{
		ID:                    l.Id,
		Name:                  l.Name,
		Type:                  l.Type,
		MessageListVisibility: l.MessageListVisibility,
		LabelListVisibility:   l.LabelListVisibility,
	}
}
