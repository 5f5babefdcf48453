// Package extract turns parsed syntax trees into flat streams of Symbol
// records. One extractor exists per language family; all of them are pure
// functions over (tree, source, path) and share the walker utility, the
// signature policy, and the parent-by-name policy. No extractor looks
// outside the file it was handed.
package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/standardbeagle/codemap/internal/types"
)

// Func is the extraction contract: ordered symbols from one parsed file.
// The returned order follows source order because the walker visits
// siblings left to right.
type Func func(root *sitter.Node, source []byte, path string) []types.Symbol

// registry is the tagged dispatch table keyed by language identifier.
// Variants under one contract, not an inheritance hierarchy.
var registry = map[string]Func{
	"javascript": JSFamily,
	"typescript": JSFamily,
	"python":     Python,
	"go":         Go,
	"rust":       Rust,
	"ruby":       Ruby,
}

// ForLanguage returns the extractor for a language identifier.
func ForLanguage(lang string) (Func, bool) {
	fn, ok := registry[lang]
	return fn, ok
}

// Languages lists the language identifiers with a registered extractor.
func Languages() []string {
	out := make([]string, 0, len(registry))
	for lang := range registry {
		out = append(out, lang)
	}
	return out
}

func lineOf(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func fieldText(n *sitter.Node, field string, source []byte) string {
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return c.Content(source)
}

// hasChildOfType reports whether n has a direct child with the given kind.
func hasChildOfType(n *sitter.Node, kind string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == kind {
			return true
		}
	}
	return false
}

// signature joins the verbatim parameter span and the verbatim
// return/result span, then applies the global length bound. Nothing is
// re-synthesized; the text is exactly what the source says.
func signature(params, ret string) string {
	sig := params
	if ret != "" {
		if sig != "" {
			sig += " "
		}
		sig += ret
	}
	return types.TruncateSignature(sig)
}
