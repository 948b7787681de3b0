// Package workflow_tools exposes n8n_trigger_workflow, which posts a JSON
// payload to an n8n webhook below the configured base URL.
package workflow_tools
