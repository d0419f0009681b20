package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/remedy/internal/matching"
	"github.com/kalambet/remedy/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store *storage.Store
	Chat  TurnHandler
}

// NewMCPServer creates an MCP server exposing the chat pipeline and the
// symptom catalog to local assistants.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"remedy",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("remedy maps described symptoms to catalogued interventions. Not medical advice."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("analyze_symptoms",
			mcp.WithDescription("Extract symptoms, severity and duration from a message and match them to interventions."),
			mcp.WithString("message", mcp.Description("What the user said"), mcp.Required()),
			mcp.WithArray("history", mcp.Description("Earlier turns formatted as \"user: ...\" or \"assistant: ...\"")),
			mcp.WithString("severity",
				mcp.Description("List only interventions for this severity; defaults to the extracted one"),
				mcp.Enum(storage.SeverityMild, storage.SeverityModerate, storage.SeveritySevere),
			),
		),
		mcpAnalyzeSymptoms(deps),
	)

	s.AddTool(
		mcp.NewTool("list_symptoms",
			mcp.WithDescription("List catalogued symptoms, optionally filtered by a substring of the name."),
			mcp.WithString("filter", mcp.Description("Case-insensitive name filter")),
			mcp.WithString("severity",
				mcp.Description("Keep symptoms with at least one linked intervention for this severity"),
				mcp.Enum(storage.SeverityMild, storage.SeverityModerate, storage.SeveritySevere),
			),
		),
		mcpListSymptoms(deps),
	)

	s.AddTool(
		mcp.NewTool("get_intervention",
			mcp.WithDescription("Fetch one intervention by id."),
			mcp.WithNumber("id", mcp.Description("Intervention id"), mcp.Required()),
		),
		mcpGetIntervention(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"catalog://symptoms",
			"Symptom Catalog",
			mcp.WithResourceDescription("All symptom records as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCollection(deps.Store.Symptoms.GetAll),
	)

	s.AddResource(
		mcp.NewResource(
			"catalog://interventions",
			"Intervention Catalog",
			mcp.WithResourceDescription("All intervention records as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCollection(deps.Store.Interventions.GetAll),
	)

	return s
}

func mcpAnalyzeSymptoms(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}
		history := req.GetStringSlice("history", nil)
		severity := req.GetString("severity", "")
		if severity != "" && !storage.ValidSeverity(severity) {
			return mcpError(fmt.Sprintf("invalid severity %q", severity)), nil
		}

		turn, err := deps.Chat.HandleTurn(ctx, message, history)
		if err != nil {
			return mcpError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		if severity == "" && turn.Extracted.Severity != nil {
			severity = *turn.Extracted.Severity
		}
		turn.Matched = matching.FilterEntries(turn.Matched, severity)

		b, err := json.Marshal(turn)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListSymptoms(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := strings.ToLower(strings.TrimSpace(req.GetString("filter", "")))
		severity := req.GetString("severity", "")
		if severity != "" && !storage.ValidSeverity(severity) {
			return mcpError(fmt.Sprintf("invalid severity %q", severity)), nil
		}

		all, err := deps.Store.Symptoms.GetAll()
		if err != nil {
			return mcpError(fmt.Sprintf("listing symptoms: %v", err)), nil
		}
		var ivs []storage.Intervention
		if severity != "" {
			if ivs, err = deps.Store.Interventions.GetAll(); err != nil {
				return mcpError(fmt.Sprintf("listing interventions: %v", err)), nil
			}
		}

		out := make([]storage.Symptom, 0, len(all))
		for _, s := range all {
			if filter != "" && !strings.Contains(strings.ToLower(s.Name), filter) {
				continue
			}
			if severity != "" && len(matching.ForSeverity(matching.Linked(s, ivs), severity)) == 0 {
				continue
			}
			out = append(out, s)
		}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal symptoms: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetIntervention(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		iv, err := deps.Store.Interventions.GetByID(id)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError("Intervention not found"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("reading intervention: %v", err)), nil
		}

		b, err := json.Marshal(iv)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal intervention: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceCollection[T any](getAll func() ([]T, error)) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		items, err := getAll()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", req.Params.URI, err)
		}

		b, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", req.Params.URI, err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
