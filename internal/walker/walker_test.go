package walker

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseGo(t *testing.T, src string) (*sitter.Node, []byte) {
	t.Helper()
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode(), []byte(src)
}

func TestWalkVisitsInSourceOrder(t *testing.T) {
	root, src := parseGo(t, `package p

func alpha() {}

func beta() {
	gamma := func() {}
	_ = gamma
}

func delta() {}
`)

	var names []string
	Walk(root, HandlerMap{
		"function_declaration": func(n *sitter.Node) {
			names = append(names, n.ChildByFieldName("name").Content(src))
		},
	})
	assert.Equal(t, []string{"alpha", "beta", "delta"}, names)
}

func TestWalkDescendsIntoHandledNodes(t *testing.T) {
	root, _ := parseGo(t, `package p

func outer() {
	inner := func() {}
	_ = inner
}
`)

	funcs, literals := 0, 0
	Walk(root, HandlerMap{
		"function_declaration": func(*sitter.Node) { funcs++ },
		"func_literal":         func(*sitter.Node) { literals++ },
	})
	assert.Equal(t, 1, funcs)
	assert.Equal(t, 1, literals, "descent must continue below handled nodes")
}

func TestWalkNilRoot(t *testing.T) {
	assert.NotPanics(t, func() {
		Walk(nil, HandlerMap{"anything": func(*sitter.Node) {}})
	})
}

func TestNearestAncestor(t *testing.T) {
	root, src := parseGo(t, `package p

type T struct{}

func (t T) m() {}
`)

	var method *sitter.Node
	Walk(root, HandlerMap{
		"method_declaration": func(n *sitter.Node) { method = n },
	})
	require.NotNil(t, method)

	decl := NearestAncestor(method.ChildByFieldName("name"), map[string]bool{"method_declaration": true})
	require.NotNil(t, decl)
	assert.Equal(t, "m", decl.ChildByFieldName("name").Content(src))

	assert.Nil(t, NearestAncestor(method, map[string]bool{"no_such_kind": true}))
	assert.True(t, HasAncestor(method.ChildByFieldName("name"), map[string]bool{"source_file": true}))
}
