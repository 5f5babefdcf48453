// Package index builds the immutable lookup structures over a symbol
// stream. Construction is one-shot and pure: the same stream always
// yields identical derived structures, and every derived bucket holds
// pointers into the same backing slice rather than copies.
package index

import (
	"sort"
	"strings"

	"github.com/standardbeagle/codemap/internal/types"
)

// CodeIndex is the queryable snapshot produced by one build. It is never
// mutated after Build returns; rebuilds replace the whole index.
type CodeIndex struct {
	symbols []types.Symbol

	byName   map[string][]*types.Symbol
	byFolded map[string][]*types.Symbol
	byFile   map[string][]*types.Symbol

	// names is the lexicographically sorted list of distinct symbol
	// names, used by prefix/substring tier scans.
	names []string

	files     []string // sorted distinct file paths
	languages map[string]int
}

// Build constructs a CodeIndex from the concatenated per-file symbol
// streams, in file-processing order. languages is the per-language file
// tally computed by the orchestrator; Build copies it so the snapshot
// cannot drift.
func Build(symbols []types.Symbol, languages map[string]int) *CodeIndex {
	idx := &CodeIndex{
		symbols:   symbols,
		byName:    make(map[string][]*types.Symbol),
		byFolded:  make(map[string][]*types.Symbol),
		byFile:    make(map[string][]*types.Symbol),
		languages: make(map[string]int, len(languages)),
	}
	for lang, n := range languages {
		idx.languages[lang] = n
	}

	for i := range symbols {
		sym := &idx.symbols[i]
		idx.byName[sym.Name] = append(idx.byName[sym.Name], sym)
		folded := strings.ToLower(sym.Name)
		idx.byFolded[folded] = append(idx.byFolded[folded], sym)
		idx.byFile[sym.File] = append(idx.byFile[sym.File], sym)
	}

	idx.names = make([]string, 0, len(idx.byName))
	for name := range idx.byName {
		idx.names = append(idx.names, name)
	}
	sort.Strings(idx.names)

	idx.files = make([]string, 0, len(idx.byFile))
	for file := range idx.byFile {
		idx.files = append(idx.files, file)
	}
	sort.Strings(idx.files)

	return idx
}

// SymbolCount is the total number of indexed symbol records.
func (x *CodeIndex) SymbolCount() int { return len(x.symbols) }

// FileCount is the number of distinct files contributing at least one
// symbol.
func (x *CodeIndex) FileCount() int { return len(x.byFile) }

// Languages returns the language → file-count tally. Callers must not
// mutate the returned map.
func (x *CodeIndex) Languages() map[string]int { return x.languages }

// Stats bundles the snapshot's summary numbers.
func (x *CodeIndex) Stats() types.IndexStats {
	return types.IndexStats{
		SymbolCount: x.SymbolCount(),
		FileCount:   x.FileCount(),
		Languages:   x.languages,
	}
}

// Symbols exposes the backing stream in its original order, primarily for
// cache serialization.
func (x *CodeIndex) Symbols() []types.Symbol { return x.symbols }

// LookupExact returns the symbols sharing name, in insertion order.
func (x *CodeIndex) LookupExact(name string) []*types.Symbol {
	return x.byName[name]
}

// LookupFolded returns the symbols whose lower-cased name matches folded.
func (x *CodeIndex) LookupFolded(folded string) []*types.Symbol {
	return x.byFolded[folded]
}

// FileSymbols returns a file's symbols in source extraction order.
func (x *CodeIndex) FileSymbols(file string) []*types.Symbol {
	return x.byFile[file]
}

// Names returns the sorted distinct symbol names. Callers must treat the
// slice as read-only.
func (x *CodeIndex) Names() []string { return x.names }

// Files returns the sorted distinct file paths. Callers must treat the
// slice as read-only.
func (x *CodeIndex) Files() []string { return x.files }
