// Package search implements the tiered name search and the outline and
// map renderings over a built CodeIndex. Queries never mutate the index,
// so any number of them may run concurrently against one snapshot.
package search

import (
	"strings"

	"github.com/standardbeagle/codemap/internal/index"
	"github.com/standardbeagle/codemap/internal/types"
)

// DefaultLimit caps results when the caller does not choose one.
const DefaultLimit = 20

// overCollectFactor bounds how many candidates the prefix and substring
// scans gather before filtering: 3x the limit keeps scan cost flat on
// very large indexes while leaving the post-filter enough raw material.
const overCollectFactor = 3

// Tier identifies which cascade level produced a result set.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierExactFold
	TierPrefix
	TierSubstring
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierExactFold:
		return "exact-insensitive"
	case TierPrefix:
		return "prefix"
	case TierSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Options is the filter set applied at every tier. Filters are hard
// constraints; tier quality is only a preference, so a filter that
// empties a better tier legitimately sends the query to a worse one.
type Options struct {
	// Kind restricts results to one symbol kind when non-empty.
	Kind types.SymbolKind
	// PathPrefix scopes results to files under the given repo-relative
	// prefix.
	PathPrefix string
	// ExportedOnly keeps only symbols the extractor judged exported.
	ExportedOnly bool
	// Limit truncates results; zero means DefaultLimit.
	Limit int
}

// Result is one search response. Symbols are copies of index records, so
// callers can hold them past an index swap.
type Result struct {
	Tier    Tier
	Symbols []types.Symbol
	// Suggestion is a close existing name offered when every tier came
	// back empty.
	Suggestion string
}

// Engine serves queries against one immutable snapshot.
type Engine struct {
	idx *index.CodeIndex
}

func NewEngine(idx *index.CodeIndex) *Engine {
	return &Engine{idx: idx}
}

// Index exposes the underlying snapshot for the renderers.
func (e *Engine) Index() *index.CodeIndex { return e.idx }

// Search runs the four-tier cascade: exact, case-insensitive exact,
// case-insensitive prefix, case-insensitive substring. The cascade stops
// at the first tier with at least one post-filter result; a tier whose
// raw matches all fail the filters falls through to the next tier.
func (e *Engine) Search(query string, opts Options) Result {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	folded := strings.ToLower(query)

	if hits := e.apply(e.idx.LookupExact(query), opts, limit); len(hits) > 0 {
		return Result{Tier: TierExact, Symbols: hits}
	}
	if hits := e.apply(e.idx.LookupFolded(folded), opts, limit); len(hits) > 0 {
		return Result{Tier: TierExactFold, Symbols: hits}
	}
	if hits := e.apply(e.scan(folded, strings.HasPrefix, limit), opts, limit); len(hits) > 0 {
		return Result{Tier: TierPrefix, Symbols: hits}
	}
	if hits := e.apply(e.scan(folded, strings.Contains, limit), opts, limit); len(hits) > 0 {
		return Result{Tier: TierSubstring, Symbols: hits}
	}
	return Result{Tier: TierNone, Suggestion: e.suggest(query)}
}

// scan walks the sorted distinct-name list in order, gathering candidate
// symbols for every name that matches, until the list is exhausted or the
// over-collection bound is hit.
func (e *Engine) scan(folded string, match func(name, q string) bool, limit int) []*types.Symbol {
	bound := overCollectFactor * limit
	var out []*types.Symbol
	for _, name := range e.idx.Names() {
		if !match(strings.ToLower(name), folded) {
			continue
		}
		out = append(out, e.idx.LookupExact(name)...)
		if len(out) >= bound {
			break
		}
	}
	return out
}

// apply enforces the filter set and the result limit, copying the
// surviving records out of the index.
func (e *Engine) apply(candidates []*types.Symbol, opts Options, limit int) []types.Symbol {
	prefix := normalizePathPrefix(opts.PathPrefix)
	var out []types.Symbol
	for _, sym := range candidates {
		if opts.Kind != "" && sym.Kind != opts.Kind {
			continue
		}
		if opts.ExportedOnly && !sym.Exported {
			continue
		}
		if prefix != "" && !pathWithin(sym.File, prefix) {
			continue
		}
		out = append(out, *sym)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func normalizePathPrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "." {
		return ""
	}
	return p
}

// pathWithin reports whether file sits at or below the directory prefix.
func pathWithin(file, prefix string) bool {
	if file == prefix {
		return true
	}
	return strings.HasPrefix(file, prefix+"/")
}
