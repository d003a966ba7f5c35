// Package main is the resumatch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/resumatch/internal/cli"
	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/internal/embedding"
	"github.com/hyperjump/resumatch/internal/extract"
	"github.com/hyperjump/resumatch/internal/ingest"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/nlp"
	"github.com/hyperjump/resumatch/internal/resume"
	"github.com/hyperjump/resumatch/internal/search"
	"github.com/hyperjump/resumatch/internal/server"
	"github.com/hyperjump/resumatch/internal/storage"
	"github.com/hyperjump/resumatch/internal/upload"
	"github.com/hyperjump/resumatch/internal/vector"
	"github.com/hyperjump/resumatch/internal/watcher"
	"github.com/hyperjump/resumatch/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/resumatch/config.yaml"
	defaultServerURL  = "http://localhost:8080"
	defaultTopK       = 10
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development) and uses it if present.
// Returns the config and the path that was actually loaded.
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
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "index":
		runIndex()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("resumatch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var inbox server.InboxService
	if len(cfg.Inbox.Directories) > 0 {
		in := watcher.NewInbox(cfg.Inbox, components.Ingest, watcher.WithLogger(logger))
		if err := in.Start(ctx); err != nil {
			logger.Fatal("Failed to start resume inbox", zap.Error(err))
		}
		defer in.Stop()
		inbox = in
	}

	srv := server.NewServer(components.Engine, components.Ingest, components.Store, cfg, inbox, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: resumatch search [flags] <job description>\n\n")
	fmt.Fprintf(fs.Output(), "The job description is all remaining arguments joined by spaces. Quoting is optional.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  resumatch search senior python engineer with django
  resumatch search --top-k 5 "data scientist, pandas, statistics"
  resumatch search --output json kubernetes terraform aws
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// configPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func configPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// searchTopKDefaultFromConfig returns engine.default_top_k from the config at path,
// or defaultTopK when the config cannot be loaded.
func searchTopKDefaultFromConfig(path string) int {
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil || cfg.Engine.DefaultTopK <= 0 {
		return defaultTopK
	}
	return cfg.Engine.DefaultTopK
}

// argsReorder moves any flags (and their values) that appear after the positional
// arguments to the front so that flag.Parse() sees them. Go's flag package stops
// at the first non-flag argument.
func argsReorder(args []string) []string {
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

func runSearch() {
	searchArgs := argsReorder(os.Args[2:])
	configPath := configPathFromArgs(searchArgs, defaultConfigPath)

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = open the data directory directly)")
	topK := fs.Int("top-k", searchTopKDefaultFromConfig(configPath), "number of candidates to return")
	outputFormat := fs.String("output", "text", "output format: text, compact (one candidate per line), or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	query := buildSearchQuery(fs.Args())
	if query == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	req := &models.SearchRequest{JobDescription: query, TopK: *topK}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		response, err = searchDirect(*configPathFlag, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchDirect(configPath string, req *models.SearchRequest) (*models.SearchResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	start := time.Now()
	matches, err := components.Engine.Search(ctx, req.JobDescription, req.TopK)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{Candidates: matches, QueryTime: time.Since(start).Milliseconds()}, nil
}

func searchViaHTTP(serverURL string, req *models.SearchRequest) (*models.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = open the data directory directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status *server.StatusResponse
	var err error
	if *serverURL != "" {
		status, err = statusViaHTTP(*serverURL)
	} else {
		status, err = statusDirect(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusDirect(configPath string) (*server.StatusResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	count, err := components.Store.CountCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("count candidates: %w", err)
	}
	status := &server.StatusResponse{
		Candidates:      count,
		VectorIndexSize: components.Engine.Size(),
		Config: &server.StatusConfig{
			VectorIndexType:     components.Engine.VectorIndexType(),
			EmbeddingProvider:   cfg.Embedding.Provider,
			EmbeddingDimensions: cfg.Embedding.Dimensions,
			ReloadPolicy:        cfg.Engine.ReloadPolicy,
			DatabasePath:        cfg.Storage.DatabasePath,
			VectorIndexPath:     cfg.Storage.VectorIndexPath,
			UploadDir:           cfg.Storage.UploadDir,
			InboxDirectories:    cfg.Inbox.Directories,
		},
	}
	diskBytes, err := storage.Footprint(cfg.Storage)
	if err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status, nil
}

func writeStatusText(w io.Writer, status *server.StatusResponse) {
	fmt.Fprintf(w, "candidates:         %d   # indexed candidates\n", status.Candidates)
	fmt.Fprintf(w, "vector_index_size:  %d   # vectors in the semantic index\n", status.VectorIndexSize)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + index + stored resumes\n", *status.DiskUsageBytes)
	}
	if status.Config == nil {
		return
	}
	c := status.Config
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# configuration")
	fmt.Fprintf(w, "vector_index_type:  %s\n", c.VectorIndexType)
	if c.EmbeddingProvider != "" {
		fmt.Fprintf(w, "embedding:          %s (%d dims)\n", c.EmbeddingProvider, c.EmbeddingDimensions)
	}
	if c.ReloadPolicy != "" {
		fmt.Fprintf(w, "reload_policy:      %s\n", c.ReloadPolicy)
	}
	if c.DatabasePath != "" {
		fmt.Fprintf(w, "database_path:      %s\n", c.DatabasePath)
	}
	if c.VectorIndexPath != "" {
		fmt.Fprintf(w, "vector_index_path:  %s\n", c.VectorIndexPath)
	}
	if c.UploadDir != "" {
		fmt.Fprintf(w, "upload_dir:         %s\n", c.UploadDir)
	}
	for _, d := range c.InboxDirectories {
		fmt.Fprintf(w, "inbox:              %s\n", d)
	}
}

func statusViaHTTP(serverURL string) (*server.StatusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s server.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runIndex() {
	indexArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL to upload through (empty = open the data directory directly)")
	name := fs.String("name", "", "candidate name")
	email := fs.String("email", "", "candidate email")
	phone := fs.String("phone", "", "candidate phone")
	_ = fs.Parse(indexArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: resumatch index [--name NAME --email EMAIL --phone PHONE] <resume-file>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	meta := ingest.Metadata{Name: *name, Email: *email, Phone: *phone}

	var id string
	var err error
	if *serverURL != "" {
		id, err = indexViaHTTP(*serverURL, path, meta)
	} else {
		id, err = indexDirect(*configPath, path, meta)
	}
	if err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Resume indexed successfully: %s\n", id)
}

// indexDirect ingests path with meta, or with contact details read from the
// resume when neither name nor email is given.
func indexDirect(configPath, path string, meta ingest.Metadata) (string, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return "", err
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return "", err
	}
	defer components.Close()

	if meta.Name == "" && meta.Email == "" {
		return components.Ingest.IngestDiscovered(ctx, path)
	}
	return components.Ingest.IngestFile(ctx, path, meta)
}

func indexViaHTTP(serverURL, path string, meta ingest.Metadata) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{"name": meta.Name, "email": meta.Email, "phone": meta.Phone} {
		if err := mw.WriteField(k, v); err != nil {
			return "", err
		}
	}
	fw, err := mw.CreateFormFile("resume", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := http.Post(serverURL+"/api/v1/resumes", mw.FormDataContentType(), &body)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		CandidateID string `json:"candidate_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.CandidateID, nil
}

// Components holds initialized services.
type Components struct {
	Store    storage.CandidateStore
	Embedder embedding.Embedder
	Engine   *search.Engine
	Parser   *resume.Parser
	Uploads  *upload.Store
	Ingest   *ingest.Service
}

// Close releases the engine (vector index and candidate store) and the embedder.
func (c *Components) Close() {
	if c.Engine != nil {
		_ = c.Engine.Close()
	} else if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Store = store

	embedder, err := embedding.NewFromConfig(cfg.Embedding, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder

	vectorIndex, err := vector.NewFromConfig(cfg.Vector, embedder.Dimensions(), logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	logger.Info("vector index initialized",
		zap.String("type", vectorIndex.Type()),
		zap.Bool("faiss_available", vector.IsFAISSAvailable()))

	engine, err := search.NewEngine(ctx, store, embedder, vectorIndex, cfg.Storage.VectorIndexPath, &cfg.Engine,
		search.WithLogger(logger))
	if err != nil {
		_ = vectorIndex.Close()
		c.Close()
		return nil, fmt.Errorf("failed to initialize search engine: %w", err)
	}
	c.Engine = engine

	uploads, err := upload.NewStore(cfg.Storage.UploadDir)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
	}
	c.Uploads = uploads

	skills := resume.NewSkillExtractor(nlp.NewProseTagger(), resume.WithSkillLogger(logger))
	c.Parser = resume.NewParser(extract.NewExtractor(), skills)
	c.Ingest = ingest.NewService(c.Parser, engine, uploads, ingest.WithLogger(logger))
	return c, nil
}

func printUsage() {
	fmt.Println(`resumatch - Resume parsing and semantic candidate search

Usage:
  resumatch server [flags]                  Start the HTTP server and resume inbox
  resumatch index [flags] <resume-file>     Parse and index a resume
  resumatch search [flags] <job description> Rank candidates against a job description
  resumatch status [flags]                  Show candidate/index/storage status
  resumatch version                         Show version
  resumatch help                            Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/resumatch/config.yaml)
  --debug            Enable debug logging

Index Flags:
  --config string    Config file path
  --server string    Upload through a running server instead of opening the data directory
  --name string      Candidate name
  --email string     Candidate email
  --phone string     Candidate phone
  Without --name and --email the contact details are read from the resume.

Search Flags:
  --config string    Config file path (direct mode; also the default for --top-k)
  --server string    Server URL (default: http://localhost:8080). Use --server "" to open the data directory directly.
  --top-k int        Number of candidates (default from engine.default_top_k, or 10)
  --output string    Output format: text, compact, or json (default: text)

Status Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct mode.
  --output string    Output format: text or json (default: text)

Examples:
  resumatch server
  resumatch index --name "Jane Doe" --email jane@example.com cv.pdf
  resumatch index cv.docx
  resumatch search "senior python engineer, django, postgres"
  resumatch search --top-k 3 --output json data scientist
  resumatch status --output json`)
}
