package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/standardbeagle/codemap/internal/types"
	"github.com/standardbeagle/codemap/internal/walker"
)

// Go extracts functions, methods, types, and package-level var/const
// declarations. Visibility is the language rule itself: an uppercase
// first letter exports the identifier.
func Go(root *sitter.Node, source []byte, path string) []types.Symbol {
	var symbols []types.Symbol

	handlers := walker.HandlerMap{
		"function_declaration": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			symbols = append(symbols, types.Symbol{
				Name:      name,
				Kind:      types.KindFunction,
				File:      path,
				Line:      lineOf(n),
				Signature: goSignature(n, source),
				Exported:  goExported(name),
			})
		},
		"method_declaration": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			symbols = append(symbols, types.Symbol{
				Name:      name,
				Kind:      types.KindMethod,
				File:      path,
				Line:      lineOf(n),
				Signature: goSignature(n, source),
				// Go methods have no enclosing construct to walk up to;
				// the receiver type is the parent name.
				Parent:   goReceiverType(n, source),
				Exported: goExported(name),
			})
		},
		"type_spec": func(n *sitter.Node) {
			name := fieldText(n, "name", source)
			if name == "" {
				return
			}
			kind := types.KindType
			if t := n.ChildByFieldName("type"); t != nil && t.Type() == "interface_type" {
				kind = types.KindInterface
			}
			symbols = append(symbols, types.Symbol{
				Name:     name,
				Kind:     kind,
				File:     path,
				Line:     lineOf(n),
				Exported: goExported(name),
			})
		},
		"var_spec": func(n *sitter.Node) {
			symbols = append(symbols, goValueSpec(n, source, path)...)
		},
		"const_spec": func(n *sitter.Node) {
			symbols = append(symbols, goValueSpec(n, source, path)...)
		},
	}

	walker.Walk(root, handlers)
	return symbols
}

var goTopLevelKinds = map[string]bool{"source_file": true}

// goValueSpec emits one variable symbol per declared name in a
// package-level var/const spec. Locals are skipped: the spec must hang
// off the source file through its declaration wrapper.
func goValueSpec(n *sitter.Node, source []byte, path string) []types.Symbol {
	decl := n.Parent()
	if decl == nil {
		return nil
	}
	if p := decl.Parent(); p == nil || !goTopLevelKinds[p.Type()] {
		return nil
	}
	var out []types.Symbol
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "identifier" {
			break // names precede the type and value
		}
		name := c.Content(source)
		out = append(out, types.Symbol{
			Name:     name,
			Kind:     types.KindVariable,
			File:     path,
			Line:     lineOf(n),
			Exported: goExported(name),
		})
	}
	return out
}

func goExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// goReceiverType pulls the bare type name out of a method receiver,
// dropping the pointer star and any type-parameter list.
func goReceiverType(n *sitter.Node, source []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var param *sitter.Node
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		if recv.NamedChild(i).Type() == "parameter_declaration" {
			param = recv.NamedChild(i)
			break
		}
	}
	if param == nil {
		return ""
	}
	t := fieldText(param, "type", source)
	t = strings.TrimPrefix(t, "*")
	if i := strings.IndexByte(t, '['); i > 0 {
		t = t[:i]
	}
	return t
}

// goSignature joins the verbatim parameter list and result spans.
func goSignature(n *sitter.Node, source []byte) string {
	params := fieldText(n, "parameters", source)
	if params == "" {
		return ""
	}
	return signature(params, fieldText(n, "result", source))
}
