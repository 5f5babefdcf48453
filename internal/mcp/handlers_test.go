package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codemap/internal/config"
	"github.com/standardbeagle/codemap/internal/indexing"
)

type staticSource struct {
	root  string
	files []string
}

func (s *staticSource) Root() string { return s.root }

func (s *staticSource) ListFiles(ctx context.Context) ([]string, error) { return s.files, nil }

func (s *staticSource) ContentHash(ctx context.Context) (string, error) { return "static", nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	write("store/store.go", "package store\n\ntype Store struct{}\n\nfunc New() *Store { return nil }\n\nfunc (s *Store) Get(key string) int { return 0 }\n")
	write("lib/util.py", "def build(x):\n    return x\n")

	cfg := config.Default()
	cfg.Root = root
	cfg.CacheEnabled = false

	builder := indexing.NewBuilder(&staticSource{
		root:  root,
		files: []string{"store/store.go", "lib/util.py"},
	}, cfg)
	_, err := builder.Build(context.Background())
	require.NoError(t, err)

	return NewServer(builder, cfg)
}

func callTool(t *testing.T, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	result, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: raw},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return result, text.Text
}

func TestHandleSearchFindsSymbol(t *testing.T) {
	s := newTestServer(t)

	result, text := callTool(t, s.handleSearch, map[string]any{"query": "New"})
	assert.False(t, result.IsError)

	var resp struct {
		Tier    string `json:"tier"`
		Count   int    `json:"count"`
		Symbols []struct {
			Name string `json:"name"`
			File string `json:"file"`
		} `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, "exact", resp.Tier)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "store/store.go", resp.Symbols[0].File)
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	s := newTestServer(t)

	result, text := callTool(t, s.handleSearch, map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "query is required")
}

func TestHandleSearchRejectsUnknownKind(t *testing.T) {
	s := newTestServer(t)

	result, text := callTool(t, s.handleSearch, map[string]any{"query": "New", "kind": "gizmo"})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "unknown symbol kind")
}

func TestHandleSearchSuggestion(t *testing.T) {
	s := newTestServer(t)

	_, text := callTool(t, s.handleSearch, map[string]any{"query": "Stor"})
	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.NotEqual(t, "none", resp["tier"], "prefix tier should catch a truncated name")
}

func TestHandleOutline(t *testing.T) {
	s := newTestServer(t)

	result, text := callTool(t, s.handleOutline, map[string]any{"path": "store/store.go"})
	assert.False(t, result.IsError)
	assert.Contains(t, text, "store/store.go — 3 symbols")
	assert.Contains(t, text, "method Get")
}

func TestHandleOutlineRequiresPath(t *testing.T) {
	s := newTestServer(t)

	result, _ := callTool(t, s.handleOutline, map[string]any{})
	assert.True(t, result.IsError)
}

func TestHandleMap(t *testing.T) {
	s := newTestServer(t)

	result, text := callTool(t, s.handleMap, map[string]any{})
	assert.False(t, result.IsError)
	assert.Contains(t, text, "2 files, 4 symbols indexed")
	assert.Contains(t, text, "store/")
}

func TestHandleReindex(t *testing.T) {
	s := newTestServer(t)

	result, text := callTool(t, s.handleReindex, map[string]any{})
	assert.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(4), resp["symbol_count"])
}

func TestQueriesBeforeFirstBuild(t *testing.T) {
	cfg := config.Default()
	cfg.Root = t.TempDir()
	cfg.CacheEnabled = false
	builder := indexing.NewBuilder(&staticSource{root: cfg.Root}, cfg)
	s := NewServer(builder, cfg)

	result, text := callTool(t, s.handleSearch, map[string]any{"query": "anything"})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "not built yet")
}
