// Package main is the kujo CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kujo/internal/cli"
	"github.com/hyperjump/kujo/internal/collection"
	"github.com/hyperjump/kujo/internal/config"
	"github.com/hyperjump/kujo/internal/embedding"
	"github.com/hyperjump/kujo/internal/indexer"
	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/search"
	"github.com/hyperjump/kujo/internal/server"
	"github.com/hyperjump/kujo/internal/storage"
	"github.com/hyperjump/kujo/internal/watcher"
	"github.com/hyperjump/kujo/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kujo/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if present; a missing default file yields the
// built-in defaults. Returns the config and the path actually loaded ("" for
// built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// .env is optional; it usually carries OPENAI_API_KEY.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve", "server":
		runServe()
	case "search":
		runSearch()
	case "answer":
		runAnswer()
	case "ingest":
		runIngest()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("kujo version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Store      *collection.Store
	Embedder   embedding.Embedder
	Collection *collection.Collection
	Engine     *search.Engine
	Indexer    *indexer.Indexer
}

// Close snapshots and closes the store, then releases the embedder.
func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, extra ...indexer.IndexerOption) (*Components, error) {
	embedder, err := embedding.New(embedding.Options{
		Provider:   cfg.Embedding.Provider,
		ModelPath:  cfg.Embedding.ModelPath,
		Dimensions: cfg.Embedding.Dimensions,
		MaxTokens:  cfg.Embedding.MaxTokens,
		CacheSize:  cfg.Embedding.CacheSize,
		OpenAI: embedding.OpenAIConfig{
			APIKey:  cfg.Embedding.OpenAI.APIKeyOrEnv(),
			BaseURL: cfg.Embedding.OpenAI.BaseURL,
			Model:   cfg.Embedding.OpenAI.Model,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	store, err := collection.OpenStore(cfg.Storage.Path, embedder,
		collection.WithLogger(logger),
		collection.WithBackend(cfg.Storage.Backend),
		collection.WithCompress(cfg.Storage.Compress),
	)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	c, created, err := store.OpenOrCreate(ctx, cfg.Storage.Collection, cfg.Storage.Metric)
	if err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}
	logger.Info("collection ready",
		zap.String("collection", c.Name()),
		zap.Bool("created", created),
		zap.Int("count", c.Count()),
	)

	engine := search.NewEngine(embedder, search.WithLogger(logger))
	engine.Connect(c)

	idxOpts := []indexer.IndexerOption{
		indexer.WithLogger(logger),
		indexer.WithBatchSize(cfg.Ingest.BatchSize),
	}
	if cfg.Ingest.ChunkSize > 0 {
		idxOpts = append(idxOpts, indexer.WithChunking(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap))
	}
	idxOpts = append(idxOpts, extra...)
	idx := indexer.NewIndexer(c, store.Storage(), nil, idxOpts...)

	return &Components{
		Store:      store,
		Embedder:   embedder,
		Collection: c,
		Engine:     engine,
		Indexer:    idx,
	}, nil
}

// setup loads config, builds the logger and initializes components, exiting on failure.
func setup(configPath string, debug bool, extra ...indexer.IndexerOption) (*config.Config, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := newLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))

	components, err := initializeComponents(context.Background(), cfg, logger, extra...)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

// newLogger honors KUJO_LOG_LEVEL (debug, info, warn, error) over the debug switch.
func newLogger(debug bool) (*zap.Logger, error) {
	if level := os.Getenv("KUJO_LOG_LEVEL"); level != "" {
		return utils.NewLoggerWithLevel(level)
	}
	return utils.NewLogger(debug)
}

func newWatcher(cfg *config.Config, dirs []string, idx *indexer.Indexer, logger *zap.Logger) *watcher.Watcher {
	exts := cfg.Ingest.Extensions
	return watcher.New(dirs, exts, cfg.Ingest.RecursiveOrDefault(),
		func(ctx context.Context, path string) error {
			_, err := idx.IngestWatchedFile(ctx, path, exts)
			return err
		},
		watcher.WithLogger(logger),
	)
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	var opts []server.Option
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Ingest.Directories) > 0 {
		w := newWatcher(cfg, cfg.Ingest.Directories, components.Indexer, logger)
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
		go w.SyncExisting(watchCtx)
		opts = append(opts, server.WithWatcher(w))
	}

	srv := server.NewServer(
		components.Engine,
		components.Store,
		components.Collection,
		components.Indexer,
		cfg,
		logger,
		opts...,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	waitForSignal()
	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func searchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// searchDefaultKFromConfig loads config at path and returns its default k.
// Falls back to search.DefaultK when the config cannot be loaded.
func searchDefaultKFromConfig(path string) int {
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil || cfg.Retrieval.DefaultK < 1 {
		return search.DefaultK
	}
	return cfg.Retrieval.DefaultK
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func parseOutputFormat(s string) (cli.SearchOutputFormat, error) {
	switch s {
	case "text":
		return cli.OutputText, nil
	case "json":
		return cli.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

type queryFlags struct {
	fs         *flag.FlagSet
	configPath *string
	serverURL  *string
	k          *int
	output     *string
	stats      *bool
	debug      *bool
}

func newQueryFlags(name string, args []string) *queryFlags {
	configPath := searchConfigPathFromArgs(args, defaultConfigPath)
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &queryFlags{
		fs:         fs,
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		serverURL:  fs.String("server", "", "server URL (empty = open the store directly)"),
		k:          fs.Int("k", searchDefaultKFromConfig(configPath), "number of complaints to retrieve"),
		output:     fs.String("output", "text", "output format: text or json"),
		stats:      fs.Bool("stats", false, "include search statistics"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kujo %s [flags] <query>\n\n", fs.Name())
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kujo search unauthorized credit card charges
  kujo search --k 10 --stats "mortgage application delay"
  kujo search --export . "hidden checking account fees"
  kujo answer "why are overdraft fees charged?"
`)
}

func runSearch() {
	args := searchArgsReorder(os.Args[2:])
	qf := newQueryFlags("search", args)
	exportDir := qf.fs.String("export", "", "also write the results as a JSON export into this directory")
	qf.fs.Usage = func() { printSearchUsage(qf.fs) }
	_ = qf.fs.Parse(args)

	query := buildSearchQuery(qf.fs.Args())
	if query == "" {
		printSearchUsage(qf.fs)
		os.Exit(1)
	}
	format, err := parseOutputFormat(*qf.output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	req := &models.SearchRequest{Query: query, K: *qf.k, Stats: *qf.stats || *exportDir != ""}

	var result *models.SearchResult
	if *qf.serverURL != "" {
		result = new(models.SearchResult)
		if err := postJSON(*qf.serverURL+"/api/v1/search", req, result); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, logger, components := setup(*qf.configPath, *qf.debug)
		defer logger.Sync()
		defer components.Close()
		result, err = components.Engine.Retrieve(context.Background(), req.Query, req.K)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if req.Stats {
			stats := search.ComputeStatistics(result)
			result.Stats = &stats
		}
	}

	if *exportDir != "" {
		path, err := cli.WriteExportFile(*exportDir, search.NewExport(result, result.Stats), time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Exported %d results to %s\n", len(result.Hits), path)
		if !*qf.stats {
			result.Stats = nil
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runAnswer() {
	args := searchArgsReorder(os.Args[2:])
	qf := newQueryFlags("answer", args)
	qf.fs.Usage = func() { printSearchUsage(qf.fs) }
	_ = qf.fs.Parse(args)

	query := buildSearchQuery(qf.fs.Args())
	if query == "" {
		printSearchUsage(qf.fs)
		os.Exit(1)
	}
	format, err := parseOutputFormat(*qf.output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var summary *models.Summary
	if *qf.serverURL != "" {
		summary = new(models.Summary)
		req := &models.SearchRequest{Query: query, K: *qf.k}
		if err := postJSON(*qf.serverURL+"/api/v1/answer", req, summary); err != nil {
			fmt.Fprintf(os.Stderr, "Answer failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, logger, components := setup(*qf.configPath, *qf.debug)
		defer logger.Sync()
		defer components.Close()
		summary, err = components.Engine.Answer(context.Background(), query, *qf.k)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Answer failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteSummary(os.Stdout, summary, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func postJSON(url string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	limit := fs.Int("limit", 0, "ingest at most this many rows per file (0 = all)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kujo ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, logger, components := setup(*configPath, *debug, indexer.WithLimit(*limit))
	defer logger.Sync()
	defer components.Close()
	idx := components.Indexer

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		n, err := idx.IngestDirectory(ctx, path, cfg.Ingest.Extensions, cfg.Ingest.RecursiveOrDefault())
		if err != nil {
			fmt.Printf("Ingesting directory failed after %d file(s): %v\n", n, err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d file(s) from %s; collection %s holds %d records\n",
			n, path, components.Collection.Name(), components.Collection.Count())
		return
	}
	report, err := idx.IngestFile(ctx, path)
	if err != nil {
		var batchErr *models.BatchError
		if errors.As(err, &batchErr) && report != nil {
			fmt.Printf("Ingest stopped at batch %d of %d (%d records committed): %v\n",
				batchErr.Batch+1, batchErr.Total, report.Committed, err)
		} else {
			fmt.Printf("Ingest failed: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Ingested %d rows as %d records in %d batch(es) (%s); collection %s holds %d records\n",
		report.Rows, report.Records, report.Batches, report.Duration.Round(time.Millisecond),
		components.Collection.Name(), components.Collection.Count())
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	dirs := cfg.Ingest.Directories
	if fs.NArg() > 0 {
		dirs = nil
		for _, d := range fs.Args() {
			abs, err := filepath.Abs(d)
			if err != nil {
				logger.Fatal("Invalid directory", zap.String("dir", d), zap.Error(err))
			}
			dirs = append(dirs, abs)
		}
	}
	if len(dirs) == 0 {
		fmt.Println("Usage: kujo watch [flags] <directory>...  (or set ingest.directories in config)")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := newWatcher(cfg, dirs, components.Indexer, logger)
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	w.SyncExisting(ctx)
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", strings.Join(dirs, ", "))

	waitForSignal()
	cancel()
	w.Stop()
	stats := w.Stats()
	fmt.Printf("Ingested %d file(s), %d failed\n", stats.Ingested, stats.Failed)
}

// statusResponse is the subset of GET /api/v1/status printed by the CLI.
type statusResponse struct {
	Collection  *models.CollectionInfo   `json:"collection"`
	Connected   bool                     `json:"connected"`
	Collections []*models.CollectionInfo `json:"collections,omitempty"`
	IngestRuns  []*storage.IngestRun     `json:"ingest_runs,omitempty"`
	DiskUsage   *storage.Usage           `json:"disk_usage,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = open the store directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status statusResponse
	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/api/v1/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: request failed: %v\n", err)
			os.Exit(1)
		}
		err = decodeResponse(resp, &status)
		resp.Body.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		status, err = localStatus(context.Background(), components)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, &status)
}

func localStatus(ctx context.Context, c *Components) (statusResponse, error) {
	status := statusResponse{
		Collection: c.Collection.Info(),
		Connected:  c.Engine.Connected(),
	}
	collections, err := c.Store.List(ctx)
	if err != nil {
		return status, err
	}
	status.Collections = collections
	runs, err := c.Store.Storage().ListIngestRuns(ctx, c.Collection.Name(), 5)
	if err != nil {
		return status, err
	}
	status.IngestRuns = runs
	if usage, err := storage.DataDirUsage(c.Store.Dir()); err == nil {
		status.DiskUsage = &usage
	}
	return status, nil
}

func writeStatusText(w io.Writer, status *statusResponse) {
	if status.Collection != nil {
		fmt.Fprintf(w, "collection:         %s   # served collection\n", status.Collection.Name)
		fmt.Fprintf(w, "records:            %d\n", status.Collection.Count)
		fmt.Fprintf(w, "metric:             %s\n", status.Collection.Metric)
		fmt.Fprintf(w, "dimension:          %d\n", status.Collection.Dimension)
	}
	fmt.Fprintf(w, "connected:          %t\n", status.Connected)
	if status.DiskUsage != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # database %d, index %d\n",
			status.DiskUsage.Total, status.DiskUsage.Database, status.DiskUsage.Index)
	}
	if len(status.Collections) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# collections")
		for _, c := range status.Collections {
			fmt.Fprintf(w, "%-20s %8d records  %s\n", c.Name, c.Count, c.Metric)
		}
	}
	if len(status.IngestRuns) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# recent ingests")
		for _, r := range status.IngestRuns {
			line := fmt.Sprintf("%s  %s  %d/%d committed", r.StartedAt.Format(time.RFC3339), r.Source, r.Committed, r.Records)
			if r.Error != "" {
				line += "  error: " + r.Error
			}
			fmt.Fprintln(w, line)
		}
	}
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite an existing config file")
	_ = fs.Parse(os.Args[2:])

	path := "config.yaml"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if err := writeDefaultConfig(path, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", path)
}

// writeDefaultConfig saves the built-in defaults to path, refusing to
// overwrite an existing file unless force is set.
func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return config.Save(path, config.Default())
}

func printUsage() {
	fmt.Println(`kujo - consumer complaint retrieval engine

Usage:
  kujo serve [flags]                Start the HTTP server (and drop-folder watcher)
  kujo search [flags] <query>       Retrieve the complaints most similar to a query
  kujo answer [flags] <question>    Summarize the complaints retrieved for a question
  kujo ingest [flags] <path>        Ingest a .parquet/.csv/.xlsx/.jsonl file or directory
  kujo watch [flags] [dir...]       Watch drop folders and ingest new files
  kujo status [flags]               Show collection, storage and ingest status
  kujo init [--force] [path]        Write a default config file (default: ./config.yaml)
  kujo version                      Show version
  kujo help                         Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/kujo/config.yaml, or ./config.yaml when present)
  --debug            Enable debug logging (KUJO_LOG_LEVEL overrides)

Search/Answer Flags:
  --k int            Number of complaints to retrieve (default from config, or 5)
  --output string    Output format: text or json (default: text)
  --stats            Include search statistics
  --export string    (search) Also write complaint_search_<timestamp>.json into this directory
  --server string    Query a running server instead of opening the store

Ingest Flags:
  --limit int        Ingest at most this many rows per file

Status Flags:
  --server string    Server URL. Empty opens the store directly.
  --output string    Output format: text or json (default: text)

Examples:
  kujo init
  kujo ingest data/complaints_chunks.parquet
  kujo serve
  kujo search "unauthorized credit card charges"
  kujo search --k 10 --stats --output json "mortgage delay"
  kujo answer "what do people complain about with checking accounts?"
  kujo status --server http://localhost:8080`)
}
