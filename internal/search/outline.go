package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/codemap/internal/index"
	"github.com/standardbeagle/codemap/internal/types"
)

// maxFileExports is how many exported names a per-file line shows before
// collapsing the rest into a "+N more" suffix.
const maxFileExports = 8

// DefaultOutlineDepth bounds directory outlines when the caller does not
// choose a depth.
const DefaultOutlineDepth = 2

// Outline renders a structural outline for a file or directory path.
// Rendering is a pure read of the snapshot: two calls against the same
// index produce identical text.
func Outline(idx *index.CodeIndex, path string, depth int) string {
	path = normalizePathPrefix(path)
	if syms := idx.FileSymbols(path); len(syms) > 0 {
		return outlineFile(path, syms)
	}
	return outlineDir(idx, path, depth)
}

// outlineFile lists a file's symbols in source order: top-level
// declarations first with exported marker and signature, then nested
// symbols grouped under their parent wherever the parent name matches a
// top-level symbol in the same file.
func outlineFile(path string, syms []*types.Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %d symbols\n", path, len(syms))

	var topOrder []string
	topSeen := make(map[string]bool)
	nested := make(map[string][]*types.Symbol)
	var nestedOrder []string

	for _, sym := range syms {
		if sym.Parent == "" {
			b.WriteString(symbolLine("  ", sym))
			if !topSeen[sym.Name] {
				topSeen[sym.Name] = true
				topOrder = append(topOrder, sym.Name)
			}
			continue
		}
		if _, ok := nested[sym.Parent]; !ok {
			nestedOrder = append(nestedOrder, sym.Parent)
		}
		nested[sym.Parent] = append(nested[sym.Parent], sym)
	}

	for _, name := range topOrder {
		children := nested[name]
		if len(children) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n  %s:\n", name)
		for _, sym := range children {
			b.WriteString(symbolLine("    ", sym))
		}
		delete(nested, name)
	}

	// dangling parents: render the symbols without linkage
	for _, parent := range nestedOrder {
		for _, sym := range nested[parent] {
			b.WriteString(symbolLine("  ", sym))
			fmt.Fprintf(&b, "    (parent %s)\n", parent)
		}
	}

	return b.String()
}

func symbolLine(indent string, sym *types.Symbol) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(string(sym.Kind))
	b.WriteByte(' ')
	b.WriteString(sym.Name)
	if sym.Signature != "" {
		b.WriteByte(' ')
		b.WriteString(sym.Signature)
	}
	if sym.Exported {
		b.WriteString(" [exported]")
	}
	b.WriteByte('\n')
	return b.String()
}

// outlineDir renders one line per file at or within depth below the
// directory: the file's exported top-level names (first maxFileExports,
// then "+N more"), or a bare symbol count when nothing is exported.
func outlineDir(idx *index.CodeIndex, dir string, depth int) string {
	if depth <= 0 {
		depth = DefaultOutlineDepth
	}
	var lines []string
	for _, file := range idx.Files() {
		rel, ok := relativeTo(file, dir)
		if !ok || strings.Count(rel, "/") >= depth {
			continue
		}
		syms := idx.FileSymbols(file)
		exports := exportedTopLevel(syms)
		if len(exports) == 0 {
			lines = append(lines, fmt.Sprintf("%s: %d symbols", file, len(syms)))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", file, nameList(exports, maxFileExports)))
	}
	if len(lines) == 0 {
		return fmt.Sprintf("no indexed files under %s\n", displayPath(dir))
	}
	return strings.Join(lines, "\n") + "\n"
}

// exportedTopLevel collects exported unparented symbol names in source
// order, deduplicated.
func exportedTopLevel(syms []*types.Symbol) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sym := range syms {
		if sym.Parent != "" || !sym.Exported || seen[sym.Name] {
			continue
		}
		seen[sym.Name] = true
		out = append(out, sym.Name)
	}
	return out
}

// nameList joins names, keeping the first max and collapsing the rest
// into a "+N more" suffix.
func nameList(names []string, max int) string {
	if len(names) <= max {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:max], ", ") + fmt.Sprintf(" +%d more", len(names)-max)
}

// relativeTo returns file's path relative to dir and whether file sits
// under dir at all. An empty dir means the repository root.
func relativeTo(file, dir string) (string, bool) {
	if dir == "" {
		return file, true
	}
	if !strings.HasPrefix(file, dir+"/") {
		return "", false
	}
	return file[len(dir)+1:], true
}

func displayPath(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

// sortedLanguages orders the tally descending by count, ties broken by
// name, for stable header output.
func sortedLanguages(tally map[string]int) []string {
	type entry struct {
		lang  string
		count int
	}
	entries := make([]entry, 0, len(tally))
	for lang, n := range tally {
		entries = append(entries, entry{lang, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].lang < entries[j].lang
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("%s (%d)", e.lang, e.count)
	}
	return out
}
