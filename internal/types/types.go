package types

import "strings"

// SymbolKind classifies a declaration. The set is closed: extractors map
// every language construct they understand onto one of these eight kinds.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindMethod    SymbolKind = "method"
	KindType      SymbolKind = "type"
	KindInterface SymbolKind = "interface"
	KindVariable  SymbolKind = "variable"
	KindModule    SymbolKind = "module"
	KindEnum      SymbolKind = "enum"
)

// kindAliases maps common shorthand to canonical kinds so tool callers can
// write "func" or "fn" in a filter.
var kindAliases = map[string]SymbolKind{
	"function":  KindFunction,
	"func":      KindFunction,
	"fn":        KindFunction,
	"def":       KindFunction,
	"class":     KindClass,
	"cls":       KindClass,
	"method":    KindMethod,
	"meth":      KindMethod,
	"type":      KindType,
	"struct":    KindType,
	"interface": KindInterface,
	"iface":     KindInterface,
	"trait":     KindInterface,
	"variable":  KindVariable,
	"var":       KindVariable,
	"const":     KindVariable,
	"module":    KindModule,
	"mod":       KindModule,
	"namespace": KindModule,
	"enum":      KindEnum,
}

// ParseKind resolves a user-supplied kind name or alias. The boolean is
// false for unknown names.
func ParseKind(s string) (SymbolKind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// IsValid reports whether k is one of the eight canonical kinds.
func (k SymbolKind) IsValid() bool {
	switch k {
	case KindFunction, KindClass, KindMethod, KindType, KindInterface,
		KindVariable, KindModule, KindEnum:
		return true
	}
	return false
}

// Symbol is one recorded declaration occurrence. Symbols are produced once
// per extraction pass and never mutated afterwards; the index only points
// at them.
type Symbol struct {
	Name string     `json:"name"`
	Kind SymbolKind `json:"kind"`
	// File is the path relative to the indexed root, slash-separated.
	File string `json:"file"`
	// Line is the 1-indexed source line of the declaration.
	Line int `json:"line"`
	// Signature is the rendered parameter/return text, truncated to
	// MaxSignatureLen characters.
	Signature string `json:"signature,omitempty"`
	// Parent is a weak by-name reference to the lexically enclosing
	// class/impl/module construct. It is never resolved against other
	// records; dangling names are fine.
	Parent   string `json:"parent,omitempty"`
	Exported bool   `json:"exported"`
}

// MaxSignatureLen bounds stored signature text. Longer signatures keep the
// first MaxSignatureLen-3 characters plus an ellipsis marker.
const MaxSignatureLen = 120

// TruncateSignature applies the signature length bound. Counting is by
// rune so multi-byte source text is not cut mid-character.
func TruncateSignature(sig string) string {
	runes := []rune(sig)
	if len(runes) <= MaxSignatureLen {
		return sig
	}
	return string(runes[:MaxSignatureLen-3]) + "..."
}

// IndexStats summarizes a completed build.
type IndexStats struct {
	SymbolCount int            `json:"symbol_count"`
	FileCount   int            `json:"file_count"`
	Languages   map[string]int `json:"languages"`
}
