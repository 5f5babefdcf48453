package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/standardbeagle/codemap/internal/types"
	"github.com/standardbeagle/codemap/internal/walker"
)

var rustOwnerKinds = map[string]bool{
	"impl_item":  true,
	"trait_item": true,
	"mod_item":   true,
}

// Rust extracts free functions, impl/trait methods, structs, enums,
// traits, type aliases, modules, and consts/statics. Visibility is the
// presence of a `pub` modifier token on the declaration itself; `pub(crate)`
// and friends count as public here, a documented coarsening.
func Rust(root *sitter.Node, source []byte, path string) []types.Symbol {
	var symbols []types.Symbol

	declare := func(n *sitter.Node, name string, kind types.SymbolKind, sig string) {
		if name == "" {
			return
		}
		sym := types.Symbol{
			Name:      name,
			Kind:      kind,
			File:      path,
			Line:      lineOf(n),
			Signature: sig,
			Exported:  rustPub(n),
		}
		if owner := walker.NearestAncestor(n, rustOwnerKinds); owner != nil && owner.Type() == "mod_item" {
			sym.Parent = fieldText(owner, "name", source)
		}
		symbols = append(symbols, sym)
	}

	function := func(n *sitter.Node) {
		name := fieldText(n, "name", source)
		if name == "" {
			return
		}
		sym := types.Symbol{
			Name:      name,
			Kind:      types.KindFunction,
			File:      path,
			Line:      lineOf(n),
			Signature: rustSignature(n, source),
			Exported:  rustPub(n),
		}
		if owner := walker.NearestAncestor(n, rustOwnerKinds); owner != nil {
			switch owner.Type() {
			case "impl_item":
				sym.Kind = types.KindMethod
				sym.Parent = rustImplName(owner, source)
				// trait-impl methods carry no pub token yet follow
				// the trait's visibility; heuristic false negatives
				// are accepted
			case "trait_item":
				sym.Kind = types.KindMethod
				sym.Parent = fieldText(owner, "name", source)
			case "mod_item":
				sym.Parent = fieldText(owner, "name", source)
			}
		}
		symbols = append(symbols, sym)
	}

	handlers := walker.HandlerMap{
		"function_item": function,
		// body-less trait method declarations parse as their own kind
		"function_signature_item": function,
		"struct_item": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindType, "")
		},
		"enum_item": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindEnum, "")
		},
		"trait_item": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindInterface, "")
		},
		"type_item": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindType, "")
		},
		"mod_item": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindModule, "")
		},
		"const_item": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindVariable, "")
		},
		"static_item": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindVariable, "")
		},
	}

	walker.Walk(root, handlers)
	return symbols
}

func rustPub(n *sitter.Node) bool {
	return hasChildOfType(n, "visibility_modifier")
}

// rustImplName renders the implemented type's name, trimming generic
// arguments so `impl<T> Store<T>` parents as "Store".
func rustImplName(impl *sitter.Node, source []byte) string {
	t := fieldText(impl, "type", source)
	if i := strings.IndexByte(t, '<'); i > 0 {
		t = t[:i]
	}
	return t
}

func rustSignature(n *sitter.Node, source []byte) string {
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
