// Package config loads indexer settings from an optional .codemap.kdl
// file at the repository root. Absent file means defaults; a malformed
// file is an error so silent misconfiguration cannot happen.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// FileName is the config file looked up at the repository root.
const FileName = ".codemap.kdl"

const (
	// DefaultMaxFileSize skips source files the extractors should not
	// chew on. Generated bundles and vendored blobs blow past this.
	DefaultMaxFileSize = 2 * 1024 * 1024

	// DefaultBatchSize is how many files a build processes between
	// scheduler yields and cancellation checks.
	DefaultBatchSize = 25

	// DefaultWatchDebounceMs coalesces filesystem event bursts into one
	// rebuild.
	DefaultWatchDebounceMs = 500
)

// Config holds every tunable the indexer reads.
type Config struct {
	Root            string
	Include         []string
	Exclude         []string
	MaxFileSize     int64
	BatchSize       int
	Watch           bool
	WatchDebounceMs int
	CacheEnabled    bool
	AllowNoGit      bool
}

// Default returns the configuration used when no .codemap.kdl exists.
func Default() *Config {
	return &Config{
		MaxFileSize:     DefaultMaxFileSize,
		BatchSize:       DefaultBatchSize,
		WatchDebounceMs: DefaultWatchDebounceMs,
		CacheEnabled:    true,
	}
}

// Load reads the config file under root, falling back to Default when
// the file does not exist.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		cfg.Root = root
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}

	cfg, err := Parse(string(content))
	if err != nil {
		return nil, err
	}
	if cfg.Root == "" {
		cfg.Root = root
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Clean(filepath.Join(root, cfg.Root))
	}
	return cfg, nil
}

// Parse decodes KDL config content into a Config on top of defaults.
func Parse(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				if nodeName(cn) == "root" {
					if s, ok := firstStringArg(cn); ok {
						cfg.Root = s
					}
				}
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.MaxFileSize = sz
						}
					}
				case "batch_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.BatchSize = v
					}
				case "cache":
					if b, ok := firstBoolArg(cn); ok {
						cfg.CacheEnabled = b
					}
				case "allow_no_git":
					if b, ok := firstBoolArg(cn); ok {
						cfg.AllowNoGit = b
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.WatchDebounceMs = v
					}
				}
			}
			// bare `watch` node with a bool argument also works
			if b, ok := firstBoolArg(n); ok {
				cfg.Watch = b
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values a build cannot run with.
func (c *Config) Validate() error {
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.WatchDebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.WatchDebounceMs)
	}
	return nil
}

// Helpers over the kdl-go document model.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	// block format: exclude { "vendor/**"; "dist/**" }
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// parseSize understands "512KB", "2MB", "1GB" and bare byte counts.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		mult, s = 1024*1024*1024, strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		mult, s = 1024*1024, strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		mult, s = 1024, strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n * mult, nil
}
