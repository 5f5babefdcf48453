// Package mcp exposes the index over the Model Context Protocol via
// stdio. The server owns the build lifecycle: it kicks off the initial
// build when a session starts and serves queries against whatever
// snapshot is current.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codemap/internal/config"
	"github.com/standardbeagle/codemap/internal/debug"
	"github.com/standardbeagle/codemap/internal/indexing"
)

const serverName = "codemap"

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Server wires the MCP tool surface to the index builder.
type Server struct {
	builder *indexing.Builder
	cfg     *config.Config
	server  *mcp.Server
}

func NewServer(builder *indexing.Builder, cfg *config.Config) *Server {
	s := &Server{
		builder: builder,
		cfg:     cfg,
		server:  mcp.NewServer(&mcp.Implementation{Name: serverName, Version: Version}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "search_symbols",
		Description: "Find code symbols by name. Tries exact match first, then case-insensitive, prefix, and substring matches. Filters by kind, path, and export status apply at every tier.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Symbol name or name fragment to search for",
				},
				"kind": {
					Type:        "string",
					Description: "Restrict to one symbol kind: function, class, method, type, interface, variable, module, enum (aliases like func, struct, const accepted)",
				},
				"path": {
					Type:        "string",
					Description: "Restrict to files under this repo-relative directory prefix",
				},
				"exported_only": {
					Type:        "boolean",
					Description: "Keep only exported/public symbols",
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum results (default 20)",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleSearch)

	s.server.AddTool(&mcp.Tool{
		Name:        "outline",
		Description: "Show the symbol outline of one file, or a per-file summary of a directory. Nested symbols are grouped under their parent.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Repo-relative file or directory path",
				},
				"depth": {
					Type:        "integer",
					Description: "Directory traversal depth for directory outlines (default 2)",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleOutline)

	s.server.AddTool(&mcp.Tool{
		Name:        "code_map",
		Description: "Bird's-eye view of the indexed tree: totals, per-language tally, and one line per directory with its exported names.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Repo-relative directory prefix to map (default: repository root)",
				},
				"depth": {
					Type:        "integer",
					Description: "Directory depth to aggregate at (default 3)",
				},
			},
		},
	}, s.handleMap)

	s.server.AddTool(&mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the index from the current repository state. Returns build statistics. Rejected if a build is already running.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleReindex)
}

// Start launches the initial build in the background and serves MCP over
// stdio until ctx is cancelled. Queries arriving before the first build
// completes get a "still building" error rather than blocking.
func (s *Server) Start(ctx context.Context) error {
	debug.SetMCPMode(true)
	debug.MCPf("starting %s %s over stdio", serverName, Version)

	go func() {
		if _, err := s.builder.Build(ctx); err != nil {
			debug.MCPf("initial build failed: %v", err)
		}
	}()

	return s.server.Run(ctx, &mcp.StdioTransport{})
}
