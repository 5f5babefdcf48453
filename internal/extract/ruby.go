package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/standardbeagle/codemap/internal/types"
	"github.com/standardbeagle/codemap/internal/walker"
)

var rubyOwnerKinds = map[string]bool{
	"class":           true,
	"module":          true,
	"singleton_class": true,
}

var rubyNestingKinds = map[string]bool{
	"method":           true,
	"singleton_method": true,
	"block":            true,
	"do_block":         true,
	"lambda":           true,
}

// Ruby extracts classes, modules, instance and singleton methods, and
// top-level constants. Visibility is convention-driven: singleton methods
// are always exported, instance methods are exported unless they sit
// behind a `private`/`protected` marker, are nested inside another method
// or block, or use the underscore prefix.
func Ruby(root *sitter.Node, source []byte, path string) []types.Symbol {
	var symbols []types.Symbol

	handlers := walker.HandlerMap{
		"method": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			sym := types.Symbol{
				Name:      name,
				Kind:      types.KindMethod,
				File:      path,
				Line:      lineOf(n),
				Signature: rubySignature(n, source),
			}
			if owner := walker.NearestAncestor(n, rubyOwnerKinds); owner != nil {
				sym.Parent = fieldText(owner, "name", source)
			}
			sym.Exported = !walker.HasAncestor(n, rubyNestingKinds) &&
				!rubyPrivateSection(n, source) &&
				!strings.HasPrefix(name, "_")
			symbols = append(symbols, sym)
		},
		"singleton_method": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			sym := types.Symbol{
				Name:      name,
				Kind:      types.KindMethod,
				File:      path,
				Line:      lineOf(n),
				Signature: rubySignature(n, source),
				Exported:  true, // class-level methods are API by convention
			}
			if owner := walker.NearestAncestor(n, rubyOwnerKinds); owner != nil {
				sym.Parent = fieldText(owner, "name", source)
			}
			symbols = append(symbols, sym)
		},
		"class": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			sym := types.Symbol{
				Name:     name,
				Kind:     types.KindClass,
				File:     path,
				Line:     lineOf(n),
				Exported: true, // Ruby constants are public
			}
			if owner := walker.NearestAncestor(n, rubyOwnerKinds); owner != nil {
				sym.Parent = fieldText(owner, "name", source)
			}
			symbols = append(symbols, sym)
		},
		"module": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			sym := types.Symbol{
				Name:     name,
				Kind:     types.KindModule,
				File:     path,
				Line:     lineOf(n),
				Exported: true,
			}
			if owner := walker.NearestAncestor(n, rubyOwnerKinds); owner != nil {
				sym.Parent = fieldText(owner, "name", source)
			}
			symbols = append(symbols, sym)
		},
		"assignment": func(n *sitter.Node) {
			left := n.ChildByFieldName("left")
			if left == nil || left.Type() != "constant" {
				return
			}
			if walker.HasAncestor(n, rubyNestingKinds) {
				return
			}
			symbols = append(symbols, types.Symbol{
				Name:     left.Content(source),
				Kind:     types.KindVariable,
				File:     path,
				Line:     lineOf(n),
				Exported: true,
			})
		},
	}

	walker.Walk(root, handlers)
	return symbols
}

// rubyPrivateSection reports whether a bare `private` or `protected`
// marker precedes the method among its siblings. This mirrors Ruby's
// section-style visibility; `private :name` argument form is a known
// false negative.
func rubyPrivateSection(n *sitter.Node, source []byte) bool {
	for sib := n.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
		if sib.Type() == "identifier" {
			switch sib.Content(source) {
			case "private", "protected":
				return true
			case "public":
				return false
			}
		}
	}
	return false
}

func rubySignature(n *sitter.Node, source []byte) string {
	params := fieldText(n, "parameters", source)
	if params == "" {
		return ""
	}
	return types.TruncateSignature(params)
}
