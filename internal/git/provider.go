// Package git wraps the git commands the indexer depends on: repository
// root resolution, tracked-file listing, and the content hash that keys
// the cache. A missing repository is the one hard precondition failure
// of a build.
package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	cmerrors "github.com/standardbeagle/codemap/internal/errors"
)

// emptyTreeHash stands in for HEAD in a repository with no commits yet.
const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Repo wraps git operations rooted at one repository.
type Repo struct {
	root string
}

// Open resolves the repository containing dir. It returns
// errors.ErrNoRepository when dir is not inside a git work tree; callers
// treat that as the build-wide unavailable state, not an empty index.
func Open(dir string) (*Repo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid directory: %w", err)
	}
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = abs
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", cmerrors.ErrNoRepository, abs)
	}
	return &Repo{root: strings.TrimSpace(string(out))}, nil
}

// Root returns the repository root path.
func (r *Repo) Root() string { return r.root }

// ListFiles returns all tracked and untracked-but-not-ignored files,
// repo-relative with forward slashes, in git's stable listing order.
// Ignore rules are git's own; the indexer adds no second opinion.
func (r *Repo) ListFiles(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = r.root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}

	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if f := scanner.Text(); f != "" {
			files = append(files, f)
		}
	}
	return files, scanner.Err()
}

// ContentHash digests the committed-state identifier plus the
// uncommitted-change summary. Any change to HEAD, the index, or the
// work tree produces a different hash, which is exactly the cache's
// invalidation condition.
func (r *Repo) ContentHash(ctx context.Context) (string, error) {
	head, err := r.headCommit(ctx)
	if err != nil {
		return "", err
	}
	status, err := r.statusSummary(ctx)
	if err != nil {
		return "", err
	}
	return DigestHash(head, status), nil
}

// DigestHash combines the commit identifier and status summary into the
// cache key. Split out as a pure function so the round-trip law is
// testable without a repository.
func DigestHash(head, status string) string {
	h := xxhash.New()
	h.WriteString(head)
	h.WriteString("\x00")
	h.WriteString(status)
	return fmt.Sprintf("%016x", h.Sum64())
}

func (r *Repo) headCommit(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = r.root
	out, err := cmd.Output()
	if err != nil {
		// unborn branch: no commits yet
		return emptyTreeHash, nil
	}
	return strings.TrimSpace(string(out)), nil
}

// statusSummary captures every uncommitted difference, including
// untracked files, with mtimes deliberately excluded: only content-level
// changes should invalidate the cache.
func (r *Repo) statusSummary(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain", "--untracked-files=all")
	cmd.Dir = r.root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git status failed: %w", err)
	}

	// hash dirty file contents so edits that keep the status line
	// identical still change the digest
	var b strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		b.WriteString(line)
		b.WriteByte('\n')
		if len(line) > 3 {
			path := filepath.Join(r.root, strings.TrimSpace(line[3:]))
			b.WriteString(fileDigest(path))
			b.WriteByte('\n')
		}
	}
	return b.String(), scanner.Err()
}

func fileDigest(path string) string {
	data, err := readLimited(path)
	if err != nil {
		return "unreadable"
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
