// Package debug provides opt-in diagnostic logging that stays off the
// stdio streams the MCP transport owns. Output goes to a file or a
// caller-supplied writer, never to stdout in MCP mode.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug can be flipped at build time:
// go build -ldflags "-X github.com/standardbeagle/codemap/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// mcpMode suppresses all stderr fallback output so the protocol streams
// stay clean.
var mcpMode = false

var (
	mu     sync.Mutex
	output io.Writer
	file   *os.File
)

// SetMCPMode marks the process as an MCP server; diagnostics then only
// ever reach an explicitly configured writer or log file.
func SetMCPMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	mcpMode = enabled
}

// SetOutput directs debug output to w. Pass nil to disable.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// InitLogFile switches debug output to a timestamped file under the
// system temp directory and returns its path.
func InitLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "codemap-debug-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("create debug log file: %w", err)
	}
	file = f
	output = f
	return path, nil
}

// Close closes the debug log file if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file, output = nil, nil
	return err
}

// Enabled reports whether debug logging is on, via build flag or the
// DEBUG environment variable.
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if output != nil {
		return output
	}
	if mcpMode {
		return nil
	}
	return os.Stderr
}

// Logf writes one tagged debug line when debug logging is enabled.
func Logf(component, format string, args ...any) {
	if !Enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]any{component}, args...)...)
}

// Indexf logs indexing progress.
func Indexf(format string, args ...any) { Logf("INDEX", format, args...) }

// Searchf logs query handling.
func Searchf(format string, args ...any) { Logf("SEARCH", format, args...) }

// MCPf logs tool-surface activity.
func MCPf(format string, args ...any) { Logf("MCP", format, args...) }
