// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the component index tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ostrander/smithy/internal/models"
	"github.com/ostrander/smithy/internal/pattern"
	"github.com/ostrander/smithy/internal/registry"
)

// Server wraps the MCP server with index tools.
type Server struct {
	mcp      *server.MCPServer
	registry *registry.Store
	patterns *pattern.Engine
}

// New creates a new MCP server with all index tools registered.
func New(reg *registry.Store, eng *pattern.Engine) *Server {
	s := &Server{registry: reg, patterns: eng}

	s.mcp = server.NewMCPServer(
		"Smithy Index",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_patterns",
		mcp.WithDescription("Semantic search over indexed reference component patterns."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text search query")),
		mcp.WithNumber("n_results", mcp.Description("Maximum results to return (default 5)")),
	), s.searchPatterns)

	s.mcp.AddTool(mcp.NewTool("similar_patterns",
		mcp.WithDescription("Find reference components similar to a described component."),
		mcp.WithString("description", mcp.Required(), mcp.Description("What the component should do")),
		mcp.WithString("category", mcp.Description("Optional category filter")),
	), s.similarPatterns)

	s.mcp.AddTool(mcp.NewTool("get_pattern",
		mcp.WithDescription("Read the metadata of one indexed reference component."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Component class name")),
	), s.getPattern)

	s.mcp.AddTool(mcp.NewTool("get_component",
		mcp.WithDescription("Read a registered component record by its identifier."),
		mcp.WithString("component_id", mcp.Required(), mcp.Description("Registry identifier")),
	), s.getComponent)

	s.mcp.AddTool(mcp.NewTool("register_component",
		mcp.WithDescription("Register generated component metadata in the registry."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Component class name")),
		mcp.WithString("display_name", mcp.Required(), mcp.Description("Human-readable name")),
		mcp.WithString("description", mcp.Description("What the component does")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Component category")),
		mcp.WithString("platform", mcp.Description("Target platform (default flowise)")),
	), s.registerComponent)

	s.mcp.AddTool(mcp.NewTool("registry_stats",
		mcp.WithDescription("Aggregate statistics of the component registry."),
	), s.registryStats)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchPatterns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := req.GetInt("n_results", pattern.DefaultSearchResults)

	matches, err := s.patterns.Search(ctx, query, n, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(matchSummaries(matches)), nil
}

func (s *Server) similarPatterns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category := req.GetString("category", "")

	matches, err := s.patterns.FindSimilar(ctx, description, category, pattern.DefaultSimilarResults)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(matchSummaries(matches)), nil
}

func (s *Server) getPattern(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.patterns.GetByName(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	return toolJSON(doc), nil
}

func (s *Server) getComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("component_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.registry.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return toolJSON(rec), nil
}

func (s *Server) registerComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	displayName, err := req.RequireString("display_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := s.registry.Register(models.ComponentRecord{
		Name:        name,
		DisplayName: displayName,
		Description: req.GetString("description", ""),
		Category:    category,
		Platform:    req.GetString("platform", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(rec), nil
}

func (s *Server) registryStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolJSON(s.registry.Stats()), nil
}

type matchSummary struct {
	Name            string  `json:"name"`
	Label           string  `json:"label"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	SimilarityScore float64 `json:"similarity_score"`
}

func matchSummaries(matches []pattern.Match) []matchSummary {
	out := make([]matchSummary, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchSummary{
			Name:            m.Document.Name,
			Label:           m.Document.Label,
			Description:     m.Document.Description,
			Category:        m.Document.Category,
			SimilarityScore: m.Score,
		})
	}
	return out
}

func toolJSON(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}
