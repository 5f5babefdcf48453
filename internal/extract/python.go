package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/standardbeagle/codemap/internal/types"
	"github.com/standardbeagle/codemap/internal/walker"
)

var pyClassKinds = map[string]bool{"class_definition": true}

// Python extracts functions, classes, methods, and module-level variables.
// Visibility follows the leading-underscore convention: an underscored
// name is private, and methods are never marked exported regardless of
// name. Decorator wrappers are transparent because the walker descends
// into decorated_definition nodes on its own.
func Python(root *sitter.Node, source []byte, path string) []types.Symbol {
	var symbols []types.Symbol

	handlers := walker.HandlerMap{
		"function_definition": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			sym := types.Symbol{
				Name:      name,
				Kind:      types.KindFunction,
				File:      path,
				Line:      lineOf(n),
				Signature: pySignature(n, source),
			}
			if owner := walker.NearestAncestor(n, pyClassKinds); owner != nil {
				sym.Kind = types.KindMethod
				sym.Parent = fieldText(owner, "name", source)
				// methods stay unexported under the heuristic
			} else {
				sym.Exported = !strings.HasPrefix(name, "_")
			}
			symbols = append(symbols, sym)
		},
		"class_definition": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			sym := types.Symbol{
				Name:     name,
				Kind:     types.KindClass,
				File:     path,
				Line:     lineOf(n),
				Exported: !strings.HasPrefix(name, "_"),
			}
			if owner := walker.NearestAncestor(n, pyClassKinds); owner != nil {
				sym.Parent = fieldText(owner, "name", source)
			}
			symbols = append(symbols, sym)
		},
		"assignment": func(n *sitter.Node) {
			// module-level variables only: assignment -> expression_statement -> module
			p := n.Parent()
			if p == nil || p.Type() != "expression_statement" {
				return
			}
			if gp := p.Parent(); gp == nil || gp.Type() != "module" {
				return
			}
			left := n.ChildByFieldName("left")
			if left == nil || left.Type() != "identifier" {
				return
			}
			name := left.Content(source)
			symbols = append(symbols, types.Symbol{
				Name:     name,
				Kind:     types.KindVariable,
				File:     path,
				Line:     lineOf(n),
				Exported: !strings.HasPrefix(name, "_"),
			})
		},
	}

	walker.Walk(root, handlers)
	return symbols
}

// pySignature renders "(params) -> ret" from the verbatim source spans.
func pySignature(n *sitter.Node, source []byte) string {
	params := fieldText(n, "parameters", source)
	if params == "" {
		return ""
	}
	ret := fieldText(n, "return_type", source)
	if ret != "" {
		ret = "-> " + ret
	}
	return signature(params, ret)
}
