package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/standardbeagle/codemap/internal/types"
	"github.com/standardbeagle/codemap/internal/walker"
)

// jsClassKinds are the constructs a method looks upward for when deriving
// its parent name.
var jsClassKinds = map[string]bool{
	"class_declaration":          true,
	"class":                      true,
	"abstract_class_declaration": true,
	"internal_module":            true,
}

// jsFunctionKinds mark nesting boundaries: declarations inside one of
// these are locals, not indexable top-level symbols.
var jsFunctionKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// jsValueFunctionKinds are the function-expression forms that turn a
// `const f = ...` binding into a function symbol.
var jsValueFunctionKinds = map[string]bool{
	"arrow_function":      true,
	"function_expression": true,
	"function":            true,
	"generator_function":  true,
}

// JSFamily extracts symbols from JavaScript, JSX, TypeScript, and TSX
// trees. The four grammars share declaration node kinds, so one
// implementation covers the family; TypeScript-only kinds simply never
// fire for plain JavaScript input.
func JSFamily(root *sitter.Node, source []byte, path string) []types.Symbol {
	var symbols []types.Symbol

	declare := func(n *sitter.Node, name string, kind types.SymbolKind) {
		if name == "" {
			return
		}
		symbols = append(symbols, types.Symbol{
			Name:      name,
			Kind:      kind,
			File:      path,
			Line:      lineOf(n),
			Signature: jsSignature(n, source),
			Exported:  jsExported(n),
		})
	}

	handlers := walker.HandlerMap{
		"function_declaration": func(n *sitter.Node) {
			if walker.HasAncestor(n, jsFunctionKinds) {
				return
			}
			declare(n, fieldText(n, "name", source), types.KindFunction)
		},
		"generator_function_declaration": func(n *sitter.Node) {
			if walker.HasAncestor(n, jsFunctionKinds) {
				return
			}
			declare(n, fieldText(n, "name", source), types.KindFunction)
		},
		"class_declaration": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindClass)
		},
		"abstract_class_declaration": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindClass)
		},
		"method_definition": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			sym := types.Symbol{
				Name:      name,
				Kind:      types.KindMethod,
				File:      path,
				Line:      lineOf(n),
				Signature: jsSignature(n, source),
			}
			if owner := walker.NearestAncestor(n, jsClassKinds); owner != nil {
				sym.Parent = fieldText(owner, "name", source)
			}
			symbols = append(symbols, sym)
		},
		"variable_declarator": func(n *sitter.Node) {
			// Only top-level bindings become symbols; locals inside
			// functions or class bodies stay out of the index.
			if walker.HasAncestor(n, jsFunctionKinds) || walker.HasAncestor(n, jsClassKinds) {
				return
			}
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil || nameNode.Type() != "identifier" {
				return // destructuring patterns carry no single name
			}
			name := nameNode.Content(source)
			value := n.ChildByFieldName("value")
			if value != nil && jsValueFunctionKinds[value.Type()] {
				symbols = append(symbols, types.Symbol{
					Name:      name,
					Kind:      types.KindFunction,
					File:      path,
					Line:      lineOf(n),
					Signature: jsSignature(value, source),
					Exported:  jsExported(n),
				})
				return
			}
			declare(n, name, types.KindVariable)
		},
		"interface_declaration": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindInterface)
		},
		"type_alias_declaration": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindType)
		},
		"enum_declaration": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindEnum)
		},
		"internal_module": func(n *sitter.Node) {
			declare(n, fieldText(n, "name", source), types.KindModule)
		},
	}

	walker.Walk(root, handlers)
	return symbols
}

// jsExported reports whether the declaration is a direct child of an
// export construct. Declarator lists get one level of unwrapping so
// `export const f = ...` counts. Re-exports and default-export
// expressions are known false negatives.
func jsExported(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	if p.Type() == "export_statement" {
		return true
	}
	if p.Type() == "lexical_declaration" || p.Type() == "variable_declaration" {
		if gp := p.Parent(); gp != nil && gp.Type() == "export_statement" {
			return true
		}
	}
	return false
}

// jsSignature renders the verbatim parameter span plus any TypeScript
// return-type annotation.
func jsSignature(n *sitter.Node, source []byte) string {
	params := fieldText(n, "parameters", source)
	if params == "" {
		// single-parameter arrow functions use a bare identifier
		if p := fieldText(n, "parameter", source); p != "" {
			params = "(" + p + ")"
		}
	}
	if params == "" {
		return ""
	}
	ret := fieldText(n, "return_type", source)
	return signature(params, strings.TrimSpace(ret))
}
