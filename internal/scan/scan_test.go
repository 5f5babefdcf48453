package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codemap/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func newLister(t *testing.T, root string, mutate func(*config.Config)) *Lister {
	t.Helper()
	cfg := config.Default()
	cfg.Root = root
	if mutate != nil {
		mutate(cfg)
	}
	l, err := New(cfg)
	require.NoError(t, err)
	return l
}

func TestListFilesSortedAndRelative(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "lib/util.py", "x = 1\n")
	writeFile(t, root, "a.rb", "A = 1\n")

	files, err := newLister(t, root, nil).ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.rb", "lib/util.py", "main.go"}, files)
}

func TestListFilesPrunesWellKnownDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "node_modules/pkg/index.js", "x\n")
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, "vendor/dep/dep.go", "package dep\n")

	files, err := newLister(t, root, nil).ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, files)
}

func TestListFilesHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "*.log\ntmp/\n")
	writeFile(t, root, "app.go", "package app\n")
	writeFile(t, root, "debug.log", "noise\n")
	writeFile(t, root, "tmp/scratch.go", "package scratch\n")

	files, err := newLister(t, root, nil).ListFiles(context.Background())
	require.NoError(t, err)
	assert.Contains(t, files, "app.go")
	assert.NotContains(t, files, "debug.log")
	assert.NotContains(t, files, "tmp/scratch.go")
}

func TestListFilesExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.go", "package app\n")
	writeFile(t, root, "gen/models.go", "package gen\n")

	files, err := newLister(t, root, func(cfg *config.Config) {
		cfg.Exclude = []string{"gen/**"}
	}).ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"app.go"}, files)
}

func TestListFilesIncludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.go", "package app\n")
	writeFile(t, root, "docs/readme.md", "# doc\n")

	files, err := newLister(t, root, func(cfg *config.Config) {
		cfg.Include = []string{"src/**"}
	}).ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.go"}, files)
}

func TestCargoTargetDirPruned(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Cargo.toml", "[package]\nname = \"demo\"\n")
	writeFile(t, root, "src/lib.rs", "pub fn f() {}\n")
	writeFile(t, root, "target/debug/build.rs", "fn main() {}\n")

	files, err := newLister(t, root, nil).ListFiles(context.Background())
	require.NoError(t, err)
	assert.Contains(t, files, "src/lib.rs")
	assert.NotContains(t, files, "target/debug/build.rs")
}

func TestContentHashChangesOnEdit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	l := newLister(t, root, nil)

	ctx := context.Background()
	first, err := l.ContentHash(ctx)
	require.NoError(t, err)

	writeFile(t, root, "extra.go", "package main\n")
	second, err := l.ContentHash(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
