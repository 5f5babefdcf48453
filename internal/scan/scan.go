// Package scan lists source files for directories that are not git
// repositories. It honors .gitignore when one exists, applies the
// configured include/exclude globs, and prunes well-known build output
// directories declared in project manifests.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/pelletier/go-toml/v2"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/standardbeagle/codemap/internal/config"
	"github.com/standardbeagle/codemap/internal/debug"
)

// prunedDirs are never descended into regardless of ignore rules.
var prunedDirs = map[string]bool{
	".git":         true,
	".codemap":     true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"vendor":       true,
}

// Lister walks a plain directory tree the way git's own listing would,
// minus the index. It satisfies the same contract the git provider does
// so a build cannot tell the two apart.
type Lister struct {
	root    string
	include []string
	exclude []string
	ignore  *gitignore.GitIgnore
	pruned  map[string]bool
}

// New builds a Lister rooted at cfg.Root.
func New(cfg *config.Config) (*Lister, error) {
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid scan root: %w", err)
	}

	l := &Lister{
		root:    abs,
		include: cfg.Include,
		exclude: cfg.Exclude,
		pruned:  manifestArtifactDirs(abs),
	}
	if ign, err := gitignore.CompileIgnoreFile(filepath.Join(abs, ".gitignore")); err == nil {
		l.ignore = ign
	}
	return l, nil
}

// Root returns the scan root path.
func (l *Lister) Root() string { return l.root }

// ListFiles walks the tree and returns root-relative paths with forward
// slashes, sorted for a stable build order.
func (l *Lister) ListFiles(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.Indexf("scan skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(l.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if prunedDirs[d.Name()] || l.pruned[rel] {
				return filepath.SkipDir
			}
			if l.ignore != nil && l.ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if l.excluded(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ContentHash digests path, size, and mtime of every listed file. Less
// precise than git's status digest but cheap, and any edit that matters
// moves at least one of the three.
func (l *Lister) ContentHash(ctx context.Context) (string, error) {
	files, err := l.ListFiles(ctx)
	if err != nil {
		return "", err
	}
	h := xxhash.New()
	for _, f := range files {
		info, err := os.Stat(filepath.Join(l.root, f))
		if err != nil {
			continue
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", f, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func (l *Lister) excluded(rel string) bool {
	if l.ignore != nil && l.ignore.MatchesPath(rel) {
		return true
	}
	for _, pat := range l.exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	if len(l.include) == 0 {
		return false
	}
	for _, pat := range l.include {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return false
		}
	}
	return true
}

// manifestArtifactDirs sniffs project manifests at the root for build
// output locations that should never be indexed.
func manifestArtifactDirs(root string) map[string]bool {
	dirs := make(map[string]bool)

	// Cargo puts build output in "target" unless overridden.
	if _, err := os.Stat(filepath.Join(root, "Cargo.toml")); err == nil {
		dirs["target"] = true
		if out, ok := tomlStringAt(filepath.Join(root, ".cargo", "config.toml"), "build", "target-dir"); ok {
			dirs[filepath.ToSlash(out)] = true
		}
	}
	// Python builds land in dist/ and build/ next to pyproject.toml.
	if _, err := os.Stat(filepath.Join(root, "pyproject.toml")); err == nil {
		dirs["dist"] = true
		dirs["build"] = true
		dirs[".tox"] = true
	}
	return dirs
}

// tomlStringAt reads one string value from a TOML file, returning false
// on any miss.
func tomlStringAt(path string, section, key string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", false
	}
	sec, ok := doc[section].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := sec[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
