// Package indexing orchestrates full index builds: listing files,
// parsing and extracting in batches, swapping the finished snapshot in
// atomically, and keeping the persistent cache in step.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/codemap/internal/cache"
	"github.com/standardbeagle/codemap/internal/config"
	"github.com/standardbeagle/codemap/internal/debug"
	cmerrors "github.com/standardbeagle/codemap/internal/errors"
	"github.com/standardbeagle/codemap/internal/extract"
	"github.com/standardbeagle/codemap/internal/index"
	"github.com/standardbeagle/codemap/internal/parser"
	"github.com/standardbeagle/codemap/internal/types"
)

// FileSource lists the files a build should index and identifies their
// collective content state. The git provider and the plain-directory
// scanner both satisfy it.
type FileSource interface {
	Root() string
	ListFiles(ctx context.Context) ([]string, error)
	ContentHash(ctx context.Context) (string, error)
}

// BuildInfo summarizes one completed build.
type BuildInfo struct {
	Duration       time.Duration
	CacheHit       bool
	FilesProcessed int
	FilesSkipped   int
	Stats          types.IndexStats
}

// Builder runs index builds one at a time and holds the current
// snapshot. Queries read the snapshot pointer without locking; a build
// in progress never blocks them.
type Builder struct {
	source   FileSource
	cfg      *config.Config
	registry *parser.Registry

	building atomic.Bool
	current  atomic.Pointer[index.CodeIndex]
	lastInfo atomic.Pointer[BuildInfo]
}

func NewBuilder(source FileSource, cfg *config.Config) *Builder {
	return &Builder{
		source:   source,
		cfg:      cfg,
		registry: parser.NewRegistry(),
	}
}

// Index returns the current snapshot, or ErrIndexUnavailable before the
// first build has completed.
func (b *Builder) Index() (*index.CodeIndex, error) {
	idx := b.current.Load()
	if idx == nil {
		return nil, cmerrors.ErrIndexUnavailable
	}
	return idx, nil
}

// Building reports whether a build is in flight.
func (b *Builder) Building() bool { return b.building.Load() }

// LastBuild returns info about the most recent completed build, or nil.
func (b *Builder) LastBuild() *BuildInfo { return b.lastInfo.Load() }

// Build runs one full build and swaps the result in. A second call
// while a build is in flight returns ErrStillBuilding; the in-flight
// build keeps running.
func (b *Builder) Build(ctx context.Context) (*BuildInfo, error) {
	if !b.building.CompareAndSwap(false, true) {
		return nil, cmerrors.ErrStillBuilding
	}
	defer b.building.Store(false)

	start := time.Now()

	hash, err := b.source.ContentHash(ctx)
	if err != nil {
		return nil, fmt.Errorf("content hash: %w", err)
	}

	cachePath := cache.PathFor(b.source.Root())
	if b.cfg.CacheEnabled {
		if rec, ok := cache.Load(cachePath, hash); ok {
			idx := index.Build(rec.Symbols, rec.Languages)
			b.current.Store(idx)
			info := &BuildInfo{
				Duration: time.Since(start),
				CacheHit: true,
				Stats:    idx.Stats(),
			}
			b.lastInfo.Store(info)
			debug.Indexf("cache hit: %d symbols in %s", idx.SymbolCount(), info.Duration)
			return info, nil
		}
	}

	files, err := b.source.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	symbols, languages, processed, skipped := b.extractAll(ctx, files)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	idx := index.Build(symbols, languages)
	b.current.Store(idx)

	if b.cfg.CacheEnabled {
		rec := &cache.Record{Hash: hash, Symbols: symbols, Languages: languages}
		if err := cache.Store(cachePath, rec); err != nil {
			debug.Indexf("cache store failed: %v", err)
		}
	}

	info := &BuildInfo{
		Duration:       time.Since(start),
		FilesProcessed: processed,
		FilesSkipped:   skipped,
		Stats:          idx.Stats(),
	}
	b.lastInfo.Store(info)
	debug.Indexf("built %d symbols from %d files in %s (%d skipped)",
		idx.SymbolCount(), processed, info.Duration, skipped)
	return info, nil
}

// extractAll runs the per-file pipeline over every indexable file,
// grouped by language so each grammar's parser stays warm, in fixed-size
// batches with a cancellation check and a scheduler yield between
// batches.
func (b *Builder) extractAll(ctx context.Context, files []string) ([]types.Symbol, map[string]int, int, int) {
	ordered := groupByLanguage(files)

	var symbols []types.Symbol
	languages := make(map[string]int)
	processed, skipped := 0, 0

	batch := b.cfg.BatchSize
	if batch <= 0 {
		batch = config.DefaultBatchSize
	}
	for i := 0; i < len(ordered); i += batch {
		if ctx.Err() != nil {
			return symbols, languages, processed, skipped
		}
		end := i + batch
		if end > len(ordered) {
			end = len(ordered)
		}
		for _, file := range ordered[i:end] {
			syms, ok := b.extractFile(ctx, file)
			if !ok {
				skipped++
				continue
			}
			processed++
			languages[parser.LanguageForPath(file)]++
			symbols = append(symbols, syms...)
		}
		runtime.Gosched()
	}
	return symbols, languages, processed, skipped
}

// extractFile returns the file's symbols and whether the file counts as
// processed. Unreadable and oversize files are skipped; files whose
// grammar is unavailable count as processed with zero symbols so the
// tally still reflects them.
func (b *Builder) extractFile(ctx context.Context, file string) ([]types.Symbol, bool) {
	lang := parser.LanguageForPath(file)
	if lang == "" {
		return nil, false
	}

	full := filepath.Join(b.source.Root(), file)
	info, err := os.Stat(full)
	if err != nil {
		debug.Indexf("%v", cmerrors.NewFileError("stat", file, err))
		return nil, false
	}
	if info.Size() > b.cfg.MaxFileSize {
		debug.Indexf("skipping oversize file %s (%d bytes)", file, info.Size())
		return nil, false
	}

	content, err := os.ReadFile(full)
	if err != nil {
		debug.Indexf("%v", cmerrors.NewFileError("read", file, err))
		return nil, false
	}

	tree, err := b.registry.Parse(ctx, file, content)
	if err != nil {
		var unavailable *parser.ErrGrammarUnavailable
		if errors.As(err, &unavailable) {
			debug.Indexf("%v, counting %s with zero symbols", unavailable, file)
			return nil, true
		}
		debug.Indexf("%v", cmerrors.NewFileError("parse", file, err))
		return nil, false
	}
	defer tree.Close()

	fn, ok := extract.ForLanguage(lang)
	if !ok {
		return nil, false
	}
	return fn(tree.RootNode(), content, file), true
}

// groupByLanguage reorders files so all files of one language are
// adjacent, preserving first-appearance order of languages and the
// original order within each language. Files with no grammar are
// dropped here.
func groupByLanguage(files []string) []string {
	buckets := make(map[string][]string)
	var order []string
	for _, f := range files {
		lang := parser.LanguageForPath(f)
		if lang == "" {
			continue
		}
		if _, seen := buckets[lang]; !seen {
			order = append(order, lang)
		}
		buckets[lang] = append(buckets[lang], f)
	}

	out := make([]string, 0, len(files))
	for _, lang := range order {
		out = append(out, buckets[lang]...)
	}
	return out
}
