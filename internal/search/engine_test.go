package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codemap/internal/index"
	"github.com/standardbeagle/codemap/internal/types"
)

func testIndex() *index.CodeIndex {
	symbols := []types.Symbol{
		{Name: "create", Kind: types.KindFunction, File: "api/create.go", Line: 5, Exported: false},
		{Name: "Create", Kind: types.KindFunction, File: "api/handler.go", Line: 12, Exported: true},
		{Name: "createDocument", Kind: types.KindFunction, File: "docs/doc.ts", Line: 3, Exported: true},
		{Name: "other_createX", Kind: types.KindFunction, File: "lib/util.py", Line: 8, Exported: true},
		{Name: "Session", Kind: types.KindClass, File: "web/session.js", Line: 1, Exported: true},
		{Name: "start", Kind: types.KindMethod, File: "web/session.js", Line: 4, Parent: "Session"},
	}
	return index.Build(symbols, map[string]int{"go": 2, "typescript": 1, "python": 1, "javascript": 1})
}

func TestSearchExactTier(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("create", Options{})
	assert.Equal(t, TierExact, res.Tier)
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, "api/create.go", res.Symbols[0].File)
}

func TestSearchCaseFoldedTier(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("CREATE", Options{})
	assert.Equal(t, TierExactFold, res.Tier)
	assert.Len(t, res.Symbols, 2, "both casings match once folded")
}

func TestSearchPrefixTier(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("createDoc", Options{})
	assert.Equal(t, TierPrefix, res.Tier)
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, "createDocument", res.Symbols[0].Name)
}

func TestSearchSubstringTier(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("_create", Options{})
	assert.Equal(t, TierSubstring, res.Tier)
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, "other_createX", res.Symbols[0].Name)
}

func TestSearchNoMatchOffersSuggestion(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("Sesion", Options{})
	assert.Equal(t, TierNone, res.Tier)
	assert.Empty(t, res.Symbols)
	assert.Equal(t, "Session", res.Suggestion)
}

func TestSearchNoMatchNoCloseName(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("zzzzqqqq", Options{})
	assert.Equal(t, TierNone, res.Tier)
	assert.Empty(t, res.Suggestion)
}

// A filter that empties a better tier must send the query to the next
// tier rather than returning an empty result.
func TestSearchFilterFallsThroughTiers(t *testing.T) {
	e := NewEngine(testIndex())

	// "create" matches exactly, but the exact hit is unexported; with
	// exported_only the cascade continues and the folded tier serves.
	res := e.Search("create", Options{ExportedOnly: true})
	assert.Equal(t, TierExactFold, res.Tier)
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, "Create", res.Symbols[0].Name)
}

func TestSearchKindFilter(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("session", Options{Kind: types.KindClass})
	assert.Equal(t, TierExactFold, res.Tier)
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, types.KindClass, res.Symbols[0].Kind)
}

func TestSearchPathFilter(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("Create", Options{PathPrefix: "api"})
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, "api/handler.go", res.Symbols[0].File)

	res = e.Search("Create", Options{PathPrefix: "docs"})
	assert.Equal(t, TierPrefix, res.Tier, "path filter empties the exact and folded tiers")
	require.Len(t, res.Symbols, 1)
	assert.Equal(t, "docs/doc.ts", res.Symbols[0].File)
}

func TestSearchPathFilterIsComponentWise(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("Create", Options{PathPrefix: "ap"})
	assert.Empty(t, res.Symbols, "prefix must match whole path components")
}

func TestSearchLimit(t *testing.T) {
	symbols := make([]types.Symbol, 0, 30)
	for i := 0; i < 30; i++ {
		symbols = append(symbols, types.Symbol{
			Name: "handler", Kind: types.KindFunction,
			File: "gen/file.go", Line: i + 1,
		})
	}
	e := NewEngine(index.Build(symbols, map[string]int{"go": 1}))

	res := e.Search("handler", Options{Limit: 5})
	assert.Len(t, res.Symbols, 5)

	res = e.Search("handler", Options{})
	assert.Len(t, res.Symbols, DefaultLimit)
}

func TestSearchResultsAreCopies(t *testing.T) {
	e := NewEngine(testIndex())

	res := e.Search("Session", Options{})
	require.Len(t, res.Symbols, 1)
	res.Symbols[0].Name = "mutated"

	again := e.Search("Session", Options{})
	require.Len(t, again.Symbols, 1)
	assert.Equal(t, "Session", again.Symbols[0].Name)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "exact", TierExact.String())
	assert.Equal(t, "exact-insensitive", TierExactFold.String())
	assert.Equal(t, "prefix", TierPrefix.String())
	assert.Equal(t, "substring", TierSubstring.String())
	assert.Equal(t, "none", TierNone.String())
}
