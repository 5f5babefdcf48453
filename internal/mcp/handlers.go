package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codemap/internal/debug"
	cmerrors "github.com/standardbeagle/codemap/internal/errors"
	"github.com/standardbeagle/codemap/internal/index"
	"github.com/standardbeagle/codemap/internal/search"
	"github.com/standardbeagle/codemap/internal/types"
)

type searchParams struct {
	Query        string `json:"query"`
	Kind         string `json:"kind,omitempty"`
	Path         string `json:"path,omitempty"`
	ExportedOnly bool   `json:"exported_only,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type outlineParams struct {
	Path  string `json:"path"`
	Depth int    `json:"depth,omitempty"`
}

type mapParams struct {
	Path  string `json:"path,omitempty"`
	Depth int    `json:"depth,omitempty"`
}

// currentIndex fetches the live snapshot, translating the pre-first-build
// state into an actionable message.
func (s *Server) currentIndex() (*index.CodeIndex, error) {
	idx, err := s.builder.Index()
	if err == nil {
		return idx, nil
	}
	if errors.Is(err, cmerrors.ErrIndexUnavailable) && s.builder.Building() {
		return nil, fmt.Errorf("index is still building, retry shortly")
	}
	return nil, err
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params searchParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("search_symbols", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Query == "" {
		return createErrorResponse("search_symbols", fmt.Errorf("query is required"))
	}

	var kind types.SymbolKind
	if params.Kind != "" {
		k, ok := types.ParseKind(params.Kind)
		if !ok {
			return createErrorResponse("search_symbols", fmt.Errorf("unknown symbol kind %q", params.Kind))
		}
		kind = k
	}

	idx, err := s.currentIndex()
	if err != nil {
		return createErrorResponse("search_symbols", err)
	}

	result := search.NewEngine(idx).Search(params.Query, search.Options{
		Kind:         kind,
		PathPrefix:   params.Path,
		ExportedOnly: params.ExportedOnly,
		Limit:        params.Limit,
	})
	debug.Searchf("query %q tier=%s hits=%d", params.Query, result.Tier, len(result.Symbols))

	resp := map[string]any{
		"query":   params.Query,
		"tier":    result.Tier.String(),
		"count":   len(result.Symbols),
		"symbols": result.Symbols,
	}
	if result.Suggestion != "" {
		resp["did_you_mean"] = result.Suggestion
	}
	return createJSONResponse(resp)
}

func (s *Server) handleOutline(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params outlineParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("outline", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Path == "" {
		return createErrorResponse("outline", fmt.Errorf("path is required"))
	}

	idx, err := s.currentIndex()
	if err != nil {
		return createErrorResponse("outline", err)
	}
	return createTextResponse(search.Outline(idx, params.Path, params.Depth)), nil
}

func (s *Server) handleMap(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params mapParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("code_map", fmt.Errorf("invalid parameters: %w", err))
	}

	idx, err := s.currentIndex()
	if err != nil {
		return createErrorResponse("code_map", err)
	}
	return createTextResponse(search.Map(idx, params.Path, params.Depth)), nil
}

func (s *Server) handleReindex(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.builder.Build(ctx)
	if err != nil {
		if errors.Is(err, cmerrors.ErrStillBuilding) {
			return createErrorResponse("reindex", fmt.Errorf("a build is already in progress"))
		}
		return createErrorResponse("reindex", err)
	}

	return createJSONResponse(map[string]any{
		"success":         true,
		"cache_hit":       info.CacheHit,
		"duration_ms":     info.Duration.Milliseconds(),
		"files_processed": info.FilesProcessed,
		"files_skipped":   info.FilesSkipped,
		"symbol_count":    info.Stats.SymbolCount,
		"file_count":      info.Stats.FileCount,
		"languages":       info.Stats.Languages,
	})
}
