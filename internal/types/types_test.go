package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want SymbolKind
		ok   bool
	}{
		{"function", KindFunction, true},
		{"func", KindFunction, true},
		{"fn", KindFunction, true},
		{"def", KindFunction, true},
		{"class", KindClass, true},
		{"method", KindMethod, true},
		{"struct", KindType, true},
		{"type", KindType, true},
		{"interface", KindInterface, true},
		{"trait", KindInterface, true},
		{"variable", KindVariable, true},
		{"var", KindVariable, true},
		{"const", KindVariable, true},
		{"module", KindModule, true},
		{"enum", KindEnum, true},
		{"FUNCTION", KindFunction, true},
		{"", "", false},
		{"gadget", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseKind(%q)", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "ParseKind(%q)", tt.in)
		}
	}
}

func TestTruncateSignatureShortUnchanged(t *testing.T) {
	sig := "(a, b) -> int"
	assert.Equal(t, sig, TruncateSignature(sig))
}

func TestTruncateSignatureLongBounded(t *testing.T) {
	long := "(" + strings.Repeat("x", 300) + ")"
	got := TruncateSignature(long)
	require.LessOrEqual(t, len([]rune(got)), MaxSignatureLen)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateSignatureExactBoundary(t *testing.T) {
	exact := strings.Repeat("y", MaxSignatureLen)
	assert.Equal(t, exact, TruncateSignature(exact))
}
