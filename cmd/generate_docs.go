package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gmailmcp/internal/tools/gmail_tools"
	"github.com/teemow/gmailmcp/internal/tools/registry"
	"github.com/teemow/gmailmcp/internal/tools/workflow_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
The reference is rendered from the operation catalog the server registers,
so it always matches the tools a client sees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			descs := append(gmail_tools.Descriptors(), workflow_tools.Descriptors()...)
			markdown := generateToolsMarkdown(registry.MustNew(descs...).List())

			if outputFile == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func generateToolsMarkdown(descs []registry.OperationDescriptor) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document lists every tool available when running gmailmcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	byCategory := make(map[string][]registry.OperationDescriptor)
	for _, d := range descs {
		category := categoryOf(d.Name)
		byCategory[category] = append(byCategory[category], d)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Multi-Account Support\n\n")
	sb.WriteString("Every tool accepts an optional `account` argument selecting the Google account:\n\n")
	sb.WriteString("- **Default behavior:** If `account` is not specified, the `default` account is used\n")
	sb.WriteString("- **Multiple accounts:** Authorize each one with `gmailmcp auth url --account <name>`\n\n")

	for _, category := range categories {
		tools := byCategory[category]
		sort.Slice(tools, func(i, j int) bool {
			return tools[i].Name < tools[j].Name
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, d := range tools {
			sb.WriteString(generateToolMarkdown(d))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func categoryOf(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "gmail":
		return "Gmail Tools"
	case "n8n":
		return "Workflow Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(d registry.OperationDescriptor) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", d.Name)
	if d.Summary != "" {
		fmt.Fprintf(&sb, "%s\n\n", d.Summary)
	}
	switch {
	case d.Destructive:
		sb.WriteString("*Destructive: permanently removes data.*\n\n")
	case d.ReadOnly:
		sb.WriteString("*Read-only.*\n\n")
	}

	if len(d.Parameters) == 0 {
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")
	for _, p := range d.Parameters {
		fmt.Fprintf(&sb, "- `%s` (%s): ", p.Name, describeType(p.Type))
		if p.Type.Description != "" {
			sb.WriteString(p.Type.Description)
		} else {
			fmt.Fprintf(&sb, "%s parameter", p.Type.Kind)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// describeType renders kind, requiredness, bounds and default, e.g.
// "number, optional, 1-500, default: 10".
func describeType(t registry.ParameterType) string {
	kind := t.Kind.String()
	if t.Kind == registry.KindEnum {
		kind = strings.Join(t.Values, " | ")
	}
	parts := []string{kind}

	if t.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	if t.Min != nil || t.Max != nil {
		parts = append(parts, formatBounds(t.Min, t.Max))
	}
	if t.HasDefault() {
		parts = append(parts, fmt.Sprintf("default: %v", t.Default))
	}
	return strings.Join(parts, ", ")
}

func formatBounds(min, max *float64) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%g-%g", *min, *max)
	case min != nil:
		return fmt.Sprintf(">= %g", *min)
	default:
		return fmt.Sprintf("<= %g", *max)
	}
}
