package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codemap/internal/cache"
	"github.com/standardbeagle/codemap/internal/config"
	"github.com/standardbeagle/codemap/internal/debug"
	cmerrors "github.com/standardbeagle/codemap/internal/errors"
	"github.com/standardbeagle/codemap/internal/git"
	"github.com/standardbeagle/codemap/internal/indexing"
	"github.com/standardbeagle/codemap/internal/mcp"
	"github.com/standardbeagle/codemap/internal/scan"
	"github.com/standardbeagle/codemap/internal/search"
	"github.com/standardbeagle/codemap/internal/types"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:                   "codemap",
		Usage:                  "Structural code-symbol index for AI assistants",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Repository root to index (default: current directory)",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "no-git",
				Usage: "Index a plain directory tree without a git repository",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the persistent cache for this run",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write diagnostic output to a log file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Build the index and print its statistics",
				Action: runIndex,
			},
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search indexed symbols by name",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "kind",
						Aliases: []string{"k"},
						Usage:   "Restrict to one symbol kind (function, class, method, ...)",
					},
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Restrict to files under this directory prefix",
					},
					&cli.BoolFlag{
						Name:    "exported",
						Aliases: []string{"e"},
						Usage:   "Only exported symbols",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum results",
						Value:   search.DefaultLimit,
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: runSearch,
			},
			{
				Name:      "outline",
				Aliases:   []string{"o"},
				Usage:     "Show the symbol outline of a file or directory",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "depth",
						Aliases: []string{"d"},
						Usage:   "Directory traversal depth",
						Value:   search.DefaultOutlineDepth,
					},
				},
				Action: runOutline,
			},
			{
				Name:      "map",
				Aliases:   []string{"m"},
				Usage:     "Render a bird's-eye map of the indexed tree",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "depth",
						Aliases: []string{"d"},
						Usage:   "Directory depth to aggregate at",
						Value:   search.DefaultMapDepth,
					},
				},
				Action: runMap,
			},
			{
				Name:   "status",
				Usage:  "Show repository, config, and cache state without building",
				Action: runStatus,
			},
			{
				Name:  "serve",
				Usage: "Run as an MCP server over stdio",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Rebuild automatically when source files change",
					},
				},
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "codemap: %v\n", err)
		os.Exit(1)
	}
}

// setup loads config, resolves the file source, and returns a builder
// ready to run.
func setup(c *cli.Context) (*indexing.Builder, *config.Config, error) {
	if c.Bool("debug") {
		if path, err := debug.InitLogFile(); err == nil {
			fmt.Fprintf(os.Stderr, "debug log: %s\n", path)
		}
	}

	root := c.String("root")
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}
	if c.Bool("no-git") {
		cfg.AllowNoGit = true
	}
	if c.Bool("no-cache") {
		cfg.CacheEnabled = false
	}

	source, err := openSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	return indexing.NewBuilder(source, cfg), cfg, nil
}

// openSource prefers the git provider; the plain-directory scanner is
// only ever used on explicit request.
func openSource(cfg *config.Config) (indexing.FileSource, error) {
	repo, err := git.Open(cfg.Root)
	if err == nil {
		return repo, nil
	}
	if errors.Is(err, cmerrors.ErrNoRepository) && cfg.AllowNoGit {
		return scan.New(cfg)
	}
	if errors.Is(err, cmerrors.ErrNoRepository) {
		return nil, fmt.Errorf("%w (use --no-git to index a plain directory)", err)
	}
	return nil, err
}

// buildOnce runs one synchronous build and returns the snapshot builder.
func buildOnce(c *cli.Context) (*indexing.Builder, error) {
	builder, _, err := setup(c)
	if err != nil {
		return nil, err
	}
	if _, err := builder.Build(c.Context); err != nil {
		return nil, err
	}
	return builder, nil
}

func runIndex(c *cli.Context) error {
	builder, err := buildOnce(c)
	if err != nil {
		return err
	}
	info := builder.LastBuild()

	idx, err := builder.Index()
	if err != nil {
		return err
	}
	stats := idx.Stats()
	fmt.Printf("%d symbols across %d files\n", stats.SymbolCount, stats.FileCount)
	for lang, n := range stats.Languages {
		fmt.Printf("  %s: %d files\n", lang, n)
	}
	if info.CacheHit {
		fmt.Printf("loaded from cache in %s\n", info.Duration)
	} else {
		fmt.Printf("built in %s (%d files processed, %d skipped)\n",
			info.Duration, info.FilesProcessed, info.FilesSkipped)
	}
	return nil
}

func runSearch(c *cli.Context) error {
	query := c.Args().First()
	if query == "" {
		return fmt.Errorf("usage: codemap search <query>")
	}

	var kind types.SymbolKind
	if k := c.String("kind"); k != "" {
		parsed, ok := types.ParseKind(k)
		if !ok {
			return fmt.Errorf("unknown symbol kind %q", k)
		}
		kind = parsed
	}

	builder, err := buildOnce(c)
	if err != nil {
		return err
	}
	idx, err := builder.Index()
	if err != nil {
		return err
	}

	result := search.NewEngine(idx).Search(query, search.Options{
		Kind:         kind,
		PathPrefix:   c.String("path"),
		ExportedOnly: c.Bool("exported"),
		Limit:        c.Int("limit"),
	})

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.Symbols) == 0 {
		fmt.Printf("no symbols matching %q\n", query)
		if result.Suggestion != "" {
			fmt.Printf("did you mean %q?\n", result.Suggestion)
		}
		return nil
	}
	fmt.Printf("%d results (%s match)\n", len(result.Symbols), result.Tier)
	for _, sym := range result.Symbols {
		line := fmt.Sprintf("%s:%d  %s %s", sym.File, sym.Line, sym.Kind, sym.Name)
		if sym.Parent != "" {
			line += " (in " + sym.Parent + ")"
		}
		if sym.Signature != "" {
			line += "  " + sym.Signature
		}
		fmt.Println(line)
	}
	return nil
}

func runOutline(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("usage: codemap outline <path>")
	}
	builder, err := buildOnce(c)
	if err != nil {
		return err
	}
	idx, err := builder.Index()
	if err != nil {
		return err
	}
	fmt.Print(search.Outline(idx, path, c.Int("depth")))
	return nil
}

func runMap(c *cli.Context) error {
	builder, err := buildOnce(c)
	if err != nil {
		return err
	}
	idx, err := builder.Index()
	if err != nil {
		return err
	}
	fmt.Print(search.Map(idx, c.Args().First(), c.Int("depth")))
	return nil
}

func runStatus(c *cli.Context) error {
	root := c.String("root")
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	repo, err := git.Open(cfg.Root)
	switch {
	case err == nil:
		fmt.Printf("repository: %s\n", repo.Root())
		hash, hashErr := repo.ContentHash(c.Context)
		if hashErr == nil {
			fmt.Printf("content hash: %s\n", hash)
		}
	case errors.Is(err, cmerrors.ErrNoRepository):
		fmt.Printf("repository: none (plain directory %s)\n", cfg.Root)
	default:
		return err
	}

	fmt.Printf("config: max file size %d bytes, batch size %d, cache %v, watch %v\n",
		cfg.MaxFileSize, cfg.BatchSize, cfg.CacheEnabled, cfg.Watch)

	cacheRoot := cfg.Root
	if repo != nil {
		cacheRoot = repo.Root()
	}
	cachePath := cache.PathFor(cacheRoot)
	if info, statErr := os.Stat(cachePath); statErr == nil {
		fmt.Printf("cache: %s (%d bytes, modified %s)\n",
			cachePath, info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("cache: none at %s\n", cachePath)
	}
	return nil
}

func runServe(c *cli.Context) error {
	builder, cfg, err := setup(c)
	if err != nil {
		return err
	}
	if c.Bool("watch") {
		cfg.Watch = true
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mcp.NewServer(builder, cfg).Start(ctx)
	})
	if cfg.Watch {
		g.Go(func() error {
			return indexing.NewWatcher(builder, cfg.WatchDebounceMs).Run(ctx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
