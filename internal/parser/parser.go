// Package parser owns the tree-sitter grammar registry. It maps file
// paths to language identifiers, holds one reusable parser per grammar,
// and isolates grammar failures so one broken language never takes down
// a build.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammarSpec binds a grammar key to its language constructor. The key is
// distinct from the language identifier because TSX parses with its own
// grammar while still counting as TypeScript.
type grammarSpec struct {
	language string
	load     func() *sitter.Language
}

var grammars = map[string]grammarSpec{
	"javascript": {"javascript", javascript.GetLanguage},
	"typescript": {"typescript", typescript.GetLanguage},
	"tsx":        {"typescript", tsx.GetLanguage},
	"python":     {"python", python.GetLanguage},
	"go":         {"go", golang.GetLanguage},
	"rust":       {"rust", rust.GetLanguage},
	"ruby":       {"ruby", ruby.GetLanguage},
}

var extensionGrammar = map[string]string{
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".mts":  "typescript",
	".cts":  "typescript",
	".tsx":  "tsx",
	".py":   "python",
	".pyi":  "python",
	".go":   "go",
	".rs":   "rust",
	".rb":   "ruby",
	".rake": "ruby",
}

// LanguageForPath returns the language identifier for a file path, or ""
// when the extension is not indexed.
func LanguageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	key, ok := extensionGrammar[ext]
	if !ok {
		return ""
	}
	return grammars[key].language
}

// Registry holds one lazily initialized parser per grammar. Parsers are
// reused across files; access is serialized because tree-sitter parser
// instances are not safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	parsers map[string]*sitter.Parser
	failed  map[string]error
}

func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]*sitter.Parser, len(grammars)),
		failed:  make(map[string]error),
	}
}

// ErrGrammarUnavailable marks a language whose grammar failed to load.
// Callers count the affected files as processed with zero symbols.
type ErrGrammarUnavailable struct {
	Language string
	Err      error
}

func (e *ErrGrammarUnavailable) Error() string {
	return fmt.Sprintf("grammar for %s unavailable: %v", e.Language, e.Err)
}

func (e *ErrGrammarUnavailable) Unwrap() error { return e.Err }

// Parse parses content for the given file path and returns the tree.
// The caller owns the tree and must Close it.
func (r *Registry) Parse(ctx context.Context, path string, content []byte) (*sitter.Tree, error) {
	ext := strings.ToLower(filepath.Ext(path))
	key, ok := extensionGrammar[ext]
	if !ok {
		return nil, fmt.Errorf("no grammar registered for %q", ext)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.parserLocked(key)
	if err != nil {
		return nil, err
	}
	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree, nil
}

// parserLocked returns the cached parser for a grammar key, creating it on
// first use. A panic inside the grammar bindings is converted into a
// sticky ErrGrammarUnavailable so the failure is reported once per build
// instead of once per file.
func (r *Registry) parserLocked(key string) (p *sitter.Parser, err error) {
	spec := grammars[key]
	if loadErr, bad := r.failed[key]; bad {
		return nil, &ErrGrammarUnavailable{Language: spec.language, Err: loadErr}
	}
	if cached, ok := r.parsers[key]; ok {
		return cached, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			loadErr := fmt.Errorf("grammar init panic: %v", rec)
			r.failed[key] = loadErr
			p, err = nil, &ErrGrammarUnavailable{Language: spec.language, Err: loadErr}
		}
	}()

	lang := spec.load()
	if lang == nil {
		loadErr := fmt.Errorf("grammar returned nil language")
		r.failed[key] = loadErr
		return nil, &ErrGrammarUnavailable{Language: spec.language, Err: loadErr}
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	r.parsers[key] = parser
	return parser, nil
}

// Disable marks a language's grammars as failed. Used by tests to
// exercise the grammar-load failure path without an actually broken
// binding.
func (r *Registry) Disable(language string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, spec := range grammars {
		if spec.language == language {
			r.failed[key] = cause
			delete(r.parsers, key)
		}
	}
}
