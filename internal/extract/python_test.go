package extract

import (
	"testing"

	"github.com/smacker/go-tree-sitter/python"
	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/codemap/internal/types"
)

const pySample = `VERSION = "1.0"
_internal_flag = True

def make_client(host, port=443):
    retries = 3
    return Client(host, port, retries)

def _hidden():
    pass

class Client:
    def __init__(self, host, port, retries):
        self.host = host

    def request(self, path) -> str:
        return self.host + path

    def _retry(self):
        pass
`

func extractPySample(t *testing.T) []types.Symbol {
	root, src := parseWith(t, python.GetLanguage(), pySample)
	return Python(root, src, "client.py")
}

func TestPythonFunctions(t *testing.T) {
	symbols := extractPySample(t)

	fn := findSymbol(t, symbols, "make_client")
	assert.Equal(t, types.KindFunction, fn.Kind)
	assert.True(t, fn.Exported)
	assert.Equal(t, "(host, port=443)", fn.Signature)
	assert.Empty(t, fn.Parent)

	hidden := findSymbol(t, symbols, "_hidden")
	assert.False(t, hidden.Exported, "underscore prefix means private")
}

func TestPythonClassAndMethods(t *testing.T) {
	symbols := extractPySample(t)

	cls := findSymbol(t, symbols, "Client")
	assert.Equal(t, types.KindClass, cls.Kind)
	assert.True(t, cls.Exported)

	req := findSymbol(t, symbols, "request")
	assert.Equal(t, types.KindMethod, req.Kind)
	assert.Equal(t, "Client", req.Parent)
	assert.False(t, req.Exported, "methods stay unexported under the heuristic")
	assert.Equal(t, "(self, path) -> str", req.Signature)

	init := findSymbol(t, symbols, "__init__")
	assert.Equal(t, types.KindMethod, init.Kind)
	assert.Equal(t, "Client", init.Parent)
}

func TestPythonModuleVariables(t *testing.T) {
	symbols := extractPySample(t)

	v := findSymbol(t, symbols, "VERSION")
	assert.Equal(t, types.KindVariable, v.Kind)
	assert.True(t, v.Exported)

	flag := findSymbol(t, symbols, "_internal_flag")
	assert.False(t, flag.Exported)

	assert.False(t, hasSymbol(symbols, "retries"), "function-local assignments must not be indexed")
}

func TestPythonDecoratedFunction(t *testing.T) {
	root, src := parseWith(t, python.GetLanguage(), `@cached
def compute(x):
    return x * 2
`)
	symbols := Python(root, src, "calc.py")

	fn := findSymbol(t, symbols, "compute")
	assert.Equal(t, types.KindFunction, fn.Kind)
	assert.True(t, fn.Exported)
}

func TestPythonNestedClass(t *testing.T) {
	root, src := parseWith(t, python.GetLanguage(), `class Outer:
    class Inner:
        pass
`)
	symbols := Python(root, src, "nested.py")

	inner := findSymbol(t, symbols, "Inner")
	assert.Equal(t, "Outer", inner.Parent)
}
