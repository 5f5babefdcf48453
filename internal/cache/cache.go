// Package cache persists extracted symbols between runs so an unchanged
// repository never pays for re-parsing. The cache is strictly
// best-effort: every failure mode on load is a miss and every failure
// mode on store is ignored after logging.
package cache

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/standardbeagle/codemap/internal/debug"
	cmerrors "github.com/standardbeagle/codemap/internal/errors"
	"github.com/standardbeagle/codemap/internal/types"
)

// FormatVersion invalidates every existing cache blob when the record
// layout or extraction semantics change. Bump on any incompatible edit.
const FormatVersion = 1

// DefaultFileName is where the cache blob lives under the repository's
// .codemap directory.
const DefaultFileName = "index.cache"

// Record is the on-disk cache payload.
type Record struct {
	Version   int
	Hash      string
	Symbols   []types.Symbol
	Languages map[string]int
}

// PathFor returns the cache blob path for a repository root.
func PathFor(root string) string {
	return filepath.Join(root, ".codemap", DefaultFileName)
}

// Load reads the cache blob at path and returns it only when it decodes
// cleanly, carries the current format version, and matches wantHash.
// Anything else, including a missing file or a corrupt blob, is a miss.
func Load(path, wantHash string) (*Record, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var rec Record
	if err := gob.NewDecoder(f).Decode(&rec); err != nil {
		debug.Indexf("cache decode failed, treating as miss: %v", cmerrors.NewCacheError("load", path, err))
		return nil, false
	}
	if rec.Version != FormatVersion {
		debug.Indexf("cache version %d != %d, miss", rec.Version, FormatVersion)
		return nil, false
	}
	if rec.Hash != wantHash {
		debug.Indexf("cache hash mismatch, miss")
		return nil, false
	}
	return &rec, true
}

// Store writes rec to path atomically via a temp file in the same
// directory. Errors are returned for logging but callers never fail a
// build over them.
func Store(path string, rec *Record) error {
	rec.Version = FormatVersion

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cmerrors.NewCacheError("store", path, err)
	}
	tmp, err := os.CreateTemp(dir, "index-*.tmp")
	if err != nil {
		return cmerrors.NewCacheError("store", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(rec); err != nil {
		tmp.Close()
		return cmerrors.NewCacheError("store", path, err)
	}
	if err := tmp.Close(); err != nil {
		return cmerrors.NewCacheError("store", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return cmerrors.NewCacheError("store", path, err)
	}
	return nil
}
