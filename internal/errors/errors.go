// Package errors defines the indexer's error taxonomy. The categories
// mirror how failures propagate: only a missing repository aborts a
// build; everything else degrades to a partial index or a cache miss.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoRepository is the environment precondition failure: no
// version-control context is available, so no index can be produced.
// Callers must surface this as "unavailable", which is distinct from an
// empty index.
var ErrNoRepository = errors.New("no git repository found")

// ErrStillBuilding is returned when a rebuild is requested while another
// build is in flight. The in-flight build is never preempted.
var ErrStillBuilding = errors.New("index build already in progress")

// ErrIndexUnavailable is returned by queries before the first build has
// completed.
var ErrIndexUnavailable = errors.New("index not built yet")

// FileError records a per-file extraction failure. These are category-2
// failures: logged, skipped, never fatal and never retried.
type FileError struct {
	Path      string
	Operation string
	Err       error
	Timestamp time.Time
}

func NewFileError(op, path string, err error) *FileError {
	return &FileError{Path: path, Operation: op, Err: err, Timestamp: time.Now()}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// CacheError records a cache load or store failure. Category 4: always
// treated as a miss, never surfaced to the caller.
type CacheError struct {
	Path string
	Op   string
	Err  error
}

func NewCacheError(op, path string, err error) *CacheError {
	return &CacheError{Path: path, Op: op, Err: err}
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
