// Package mcp provides a Model Context Protocol server for sellerchat.
//
// It exposes the resolution pipeline as MCP tools so agent frontends can
// resolve seller questions and calculate date ranges without going through
// the HTTP API. Supports stdio transport.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sellerchat/sellerchat/internal/dates"
	"github.com/sellerchat/sellerchat/internal/pipeline"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Engine  *pipeline.Engine
	Version string // version string for MCP server info
}

// NewServer creates a configured MCP server with the sellerchat tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"SellerChat",
		ver,
		server.WithToolCapabilities(false),
	)

	registerResolveTool(s, cfg.Engine)
	registerCalculateTool(s)

	return s
}

func registerResolveTool(s *server.MCPServer, engine *pipeline.Engine) {
	tool := mcp.NewTool("resolve_query",
		mcp.WithDescription("Resolve a seller question into a routing category, concrete date ranges and an optional ASIN. Runs extraction, validation and classification."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The seller's question"),
		),
		mcp.WithString("interaction_type",
			mcp.Description("Frontend event type: goal_created, goal_created_failed, or dashboard_load. Empty for typed questions."),
		),
		mcp.WithString("asin",
			mcp.Description("Product ASIN the seller was looking at, if any"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError("message is required"), nil
		}

		preq := pipeline.Request{Message: message}
		if v, err := req.RequireString("interaction_type"); err == nil {
			preq.InteractionType = v
		}
		if v, err := req.RequireString("asin"); err == nil {
			preq.ASIN = v
		}

		res, err := engine.Resolve(ctx, preq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("resolve failed: %v", err)), nil
		}

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	})
}

func registerCalculateTool(s *server.MCPServer) {
	tool := mcp.NewTool("calculate_dates",
		mcp.WithDescription("Convert a date label (last_week, past_30_days, q3, explicit_date, ...) into a concrete start/end ISO date range."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("Date label from the vocabulary"),
		),
		mcp.WithString("explicit_date",
			mcp.Description("ISO date, required when label is explicit_date"),
		),
		mcp.WithNumber("custom_days",
			mcp.Description("Day count, required when label is past_days"),
		),
		mcp.WithString("anchor",
			mcp.Description("ISO date to anchor relative labels to (default: today)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawLabel, err := req.RequireString("label")
		if err != nil {
			return mcp.NewToolResultError("label is required"), nil
		}
		label, err := dates.ParseLabel(rawLabel)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		now := time.Now().UTC()
		if v, err := req.RequireString("anchor"); err == nil && v != "" {
			parsed, err := time.Parse(dates.ISO, v)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("anchor %q is not YYYY-MM-DD", v)), nil
			}
			now = parsed
		}

		explicit := ""
		if v, err := req.RequireString("explicit_date"); err == nil {
			explicit = v
		}
		customDays := 0
		if v, err := req.RequireFloat("custom_days"); err == nil {
			customDays = int(v)
		}

		rng, err := dates.NewCalculator(now).Calculate(label, explicit, customDays)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, err := json.Marshal(rng)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	})
}
