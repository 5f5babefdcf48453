package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codemap/internal/types"
)

func sampleSymbols() []types.Symbol {
	return []types.Symbol{
		{Name: "New", Kind: types.KindFunction, File: "store/store.go", Line: 10, Exported: true},
		{Name: "Get", Kind: types.KindMethod, File: "store/store.go", Line: 20, Parent: "Store", Exported: true},
		{Name: "get", Kind: types.KindFunction, File: "util/util.py", Line: 3},
		{Name: "Get", Kind: types.KindMethod, File: "cache/cache.rb", Line: 7, Parent: "Cache", Exported: true},
	}
}

func sampleLanguages() map[string]int {
	return map[string]int{"go": 1, "python": 1, "ruby": 1}
}

func TestBuildStats(t *testing.T) {
	idx := Build(sampleSymbols(), sampleLanguages())

	assert.Equal(t, 4, idx.SymbolCount())
	assert.Equal(t, 3, idx.FileCount())
	assert.Equal(t, sampleLanguages(), idx.Languages())

	stats := idx.Stats()
	assert.Equal(t, 4, stats.SymbolCount)
	assert.Equal(t, 3, stats.FileCount)
}

func TestBuildBucketCountsAddUp(t *testing.T) {
	idx := Build(sampleSymbols(), sampleLanguages())

	total := 0
	for _, name := range idx.Names() {
		total += len(idx.LookupExact(name))
	}
	assert.Equal(t, idx.SymbolCount(), total, "name buckets must partition the stream")

	total = 0
	for _, file := range idx.Files() {
		total += len(idx.FileSymbols(file))
	}
	assert.Equal(t, idx.SymbolCount(), total, "file buckets must partition the stream")
}

func TestLookupExactIsCaseSensitive(t *testing.T) {
	idx := Build(sampleSymbols(), sampleLanguages())

	assert.Len(t, idx.LookupExact("Get"), 2)
	assert.Len(t, idx.LookupExact("get"), 1)
	assert.Empty(t, idx.LookupExact("GET"))
}

func TestLookupFoldedMergesCases(t *testing.T) {
	idx := Build(sampleSymbols(), sampleLanguages())

	assert.Len(t, idx.LookupFolded("get"), 3)
	assert.Empty(t, idx.LookupFolded("Get"), "folded lookup expects a lower-cased key")
}

func TestFileSymbolsPreserveOrder(t *testing.T) {
	idx := Build(sampleSymbols(), sampleLanguages())

	syms := idx.FileSymbols("store/store.go")
	require.Len(t, syms, 2)
	assert.Equal(t, "New", syms[0].Name)
	assert.Equal(t, "Get", syms[1].Name)
}

func TestNamesAndFilesSorted(t *testing.T) {
	idx := Build(sampleSymbols(), sampleLanguages())

	assert.Equal(t, []string{"Get", "New", "get"}, idx.Names())
	assert.Equal(t, []string{"cache/cache.rb", "store/store.go", "util/util.py"}, idx.Files())
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(sampleSymbols(), sampleLanguages())
	b := Build(sampleSymbols(), sampleLanguages())

	assert.Equal(t, a.Names(), b.Names())
	assert.Equal(t, a.Files(), b.Files())
	assert.Equal(t, a.Stats(), b.Stats())
}

func TestBuildEmpty(t *testing.T) {
	idx := Build(nil, nil)

	assert.Zero(t, idx.SymbolCount())
	assert.Zero(t, idx.FileCount())
	assert.Empty(t, idx.Names())
}
