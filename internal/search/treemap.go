package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/codemap/internal/index"
)

// maxDirExports is how many deduplicated exported names a directory line
// shows before the "+N more" suffix.
const maxDirExports = 6

// DefaultMapDepth bounds the map rendering when the caller does not
// choose a depth.
const DefaultMapDepth = 3

// Map renders a bird's-eye view of the indexed subtree under prefix:
// a header with totals and the per-language tally, one line per
// directory within the depth bound, and a trailing count of files
// sitting directly at the scanned root.
func Map(idx *index.CodeIndex, prefix string, depth int) string {
	prefix = normalizePathPrefix(prefix)
	if depth <= 0 {
		depth = DefaultMapDepth
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d files, %d symbols indexed\n", idx.FileCount(), idx.SymbolCount())
	if langs := sortedLanguages(idx.Languages()); len(langs) > 0 {
		fmt.Fprintf(&b, "languages: %s\n", strings.Join(langs, ", "))
	}

	type dirAgg struct {
		files   int
		exports []string
		seen    map[string]bool
	}
	dirs := make(map[string]*dirAgg)
	rootFiles := 0

	for _, file := range idx.Files() {
		rel, ok := relativeTo(file, prefix)
		if !ok {
			continue
		}
		if !strings.Contains(rel, "/") {
			rootFiles++
			continue
		}
		exports := exportedTopLevel(idx.FileSymbols(file))

		// credit every ancestor directory within the depth bound
		parts := strings.Split(rel, "/")
		for d := 1; d < len(parts) && d <= depth; d++ {
			dir := strings.Join(parts[:d], "/")
			agg := dirs[dir]
			if agg == nil {
				agg = &dirAgg{seen: make(map[string]bool)}
				dirs[dir] = agg
			}
			agg.files++
			for _, name := range exports {
				if !agg.seen[name] {
					agg.seen[name] = true
					agg.exports = append(agg.exports, name)
				}
			}
		}
	}

	paths := make([]string, 0, len(dirs))
	for dir := range dirs {
		paths = append(paths, dir)
	}
	sort.Strings(paths)

	b.WriteByte('\n')
	for _, dir := range paths {
		agg := dirs[dir]
		noun := "files"
		if agg.files == 1 {
			noun = "file"
		}
		if len(agg.exports) == 0 {
			fmt.Fprintf(&b, "%s/ — %d %s\n", joinPrefix(prefix, dir), agg.files, noun)
			continue
		}
		fmt.Fprintf(&b, "%s/ — %d %s: %s\n",
			joinPrefix(prefix, dir), agg.files, noun, nameList(agg.exports, maxDirExports))
	}
	fmt.Fprintf(&b, "%d files at %s\n", rootFiles, displayPath(prefix))
	return b.String()
}

func joinPrefix(prefix, dir string) string {
	if prefix == "" {
		return dir
	}
	return prefix + "/" + dir
}
