package workflow_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/gmailmcp/internal/n8n"
	"github.com/teemow/gmailmcp/internal/tools/common"
	"github.com/teemow/gmailmcp/internal/tools/dispatch"
	"github.com/teemow/gmailmcp/internal/tools/registry"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

// OpTriggerWorkflow is the only workflow operation.
const OpTriggerWorkflow = "n8n_trigger_workflow"

// Trigger posts a payload to a webhook path. *n8n.Client implements it.
type Trigger interface {
	Trigger(ctx context.Context, path string, payload map[string]any) (int, error)
}

var _ Trigger = (*n8n.Client)(nil)

// Descriptors returns the workflow operation catalog.
func Descriptors() []registry.OperationDescriptor {
	return []registry.OperationDescriptor{{
		Name:    OpTriggerWorkflow,
		Summary: "Trigger an n8n workflow through its webhook",
		Parameters: []registry.Parameter{
			registry.String("path", registry.Required(), registry.Describe("Webhook path below the configured base URL")),
			registry.String("payload", registry.Describe("JSON object sent as the request body")),
			common.AccountParameter(),
		},
	}}
}

// Register binds the workflow handler to d when d's registry carries it.
func Register(d *dispatch.Dispatcher, client Trigger) {
	if !d.Registry().Has(OpTriggerWorkflow) {
		return
	}
	d.Handle(OpTriggerWorkflow, func(ctx context.Context, args validate.Arguments) (map[string]any, error) {
		return handleTrigger(ctx, client, args)
	})
}

func handleTrigger(ctx context.Context, client Trigger, args validate.Arguments) (map[string]any, error) {
	if _, err := common.Account(args); err != nil {
		return nil, err
	}
	path := strings.TrimSpace(args.String("path"))
	if path == "" {
		return nil, dispatch.NewError(dispatch.CodeValidation, errors.New("path cannot be empty"))
	}
	payload, err := parsePayload(args.String("payload"))
	if err != nil {
		return nil, dispatch.NewError(dispatch.CodeValidation, err)
	}

	status, err := client.Trigger(ctx, path, payload)
	if errors.Is(err, n8n.ErrNotConfigured) {
		return nil, dispatch.NewError(dispatch.CodeUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{"statusCode": status}, nil
}

// parsePayload decodes text as a JSON object. Empty text yields nil.
func parsePayload(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return payload, nil
}
