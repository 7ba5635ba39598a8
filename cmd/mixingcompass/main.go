// Package main is the mixingcompass CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/mixingcompass/internal/analysis"
	"github.com/hyperjump/mixingcompass/internal/catalog"
	"github.com/hyperjump/mixingcompass/internal/config"
	"github.com/hyperjump/mixingcompass/internal/importer"
	"github.com/hyperjump/mixingcompass/internal/server"
	"github.com/hyperjump/mixingcompass/internal/storage"
	"github.com/hyperjump/mixingcompass/internal/watcher"
	"github.com/hyperjump/mixingcompass/pkg/utils"
)

var version = "dev"

const defaultConfigPath = config.DefaultPath

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// When neither exists, built-in defaults are used and the returned path is empty.
// Returns the config and the path that was actually loaded (for saving, etc.).
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
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
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
	args := os.Args[2:]
	switch command {
	case "server":
		runServer(args)
	case "import":
		runImport(args)
	case "mix":
		runMix(args)
	case "red":
		runRED(args)
	case "scene":
		runScene(args)
	case "search":
		runSearch(args)
	case "status":
		runStatus(args)
	case "watch":
		runWatch(args)
	case "reindex":
		runReindex(args)
	case "version", "--version", "-v":
		fmt.Printf("mixingcompass version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (table imports, directory changes, etc.)")
	_ = fs.Parse(args)

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

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.Data.Directories) > 0 {
		summary, err := components.Importer.ImportPaths(ctx, cfg.Data.Directories, cfg.Data.RecursiveOrDefault())
		if err != nil {
			logger.Warn("initial import failed", zap.Error(err))
		} else {
			logger.Info("solvent tables imported",
				zap.Int("files", summary.Files),
				zap.Int("solvents", summary.Imported),
				zap.Int("skipped", summary.Skipped))
		}
	}

	var watch server.DirectoryManager
	if cfg.Data.Watch {
		watchOpts := []watcher.Option{
			watcher.WithExtensions(cfg.Data.Extensions),
			watcher.WithRecursive(cfg.Data.RecursiveOrDefault()),
		}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		w := watcher.New(cfg.Data.Directories, components.Importer, watchOpts...)
		if err := w.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
		components.Engine = components.newEngine(analysis.WithWatcher(w))
		watch = w
	}

	srv := server.NewServer(components.Engine, components.Importer, cfg, logger, watch, resolvedConfigPath)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Catalog  catalog.Catalog
	Importer *importer.Importer
	Engine   *analysis.Engine

	config *config.Config
	logger *zap.Logger
	debug  bool
}

func (c *Components) Close() {
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func (c *Components) newEngine(opts ...analysis.Option) *analysis.Engine {
	if c.debug && c.logger != nil {
		opts = append(opts, analysis.WithLogger(c.logger))
	}
	return analysis.New(c.Storage, c.Catalog, c.config, opts...)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	for _, p := range []string{cfg.Storage.DatabasePath, cfg.Storage.CatalogIndexPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	cat, err := catalog.NewBleveCatalog(cfg.Storage.CatalogIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	imOpts := []importer.Option{importer.WithExtensions(cfg.Data.Extensions)}
	if debug && logger != nil {
		imOpts = append(imOpts, importer.WithLogger(logger))
	}
	c := &Components{
		Storage:  store,
		Catalog:  cat,
		Importer: importer.New(store, cat, imOpts...),
		config:   cfg,
		logger:   logger,
		debug:    debug,
	}
	c.Engine = c.newEngine()

	// A deleted or fresh catalog next to an existing database is rebuilt.
	ctx := context.Background()
	indexed, err := cat.DocCount()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if total, err := store.CountSolvents(ctx); err == nil && indexed == 0 && total > 0 {
		if n, err := c.Importer.Reindex(ctx); err != nil {
			logger.Warn("catalog rebuild failed", zap.Error(err))
		} else {
			logger.Info("catalog rebuilt", zap.Int("solvents", n))
		}
	}
	return c, nil
}

func printUsage() {
	fmt.Println(`mixingcompass - Hansen solubility parameter workbench

Usage:
  mixingcompass server [flags]                 Start the HTTP server
  mixingcompass import [flags] <file-or-dir>   Import solvent tables (.csv, .xlsx)
  mixingcompass mix [flags] <component>...     HSP of a solvent blend
  mixingcompass red [flags] <solvent>...       Rank solvents by RED against a target
  mixingcompass scene [flags] [solvent]...     Build a 3D Hansen sphere scene
  mixingcompass search [flags] [query]         Search solvents by name, CAS or SMILES
  mixingcompass status [flags]                 Show database and catalog status
  mixingcompass watch <add|remove|list>        Manage watched data directories
  mixingcompass reindex [flags]                Rebuild the search catalog from the database
  mixingcompass version                        Show version
  mixingcompass help                           Show this help

Components are name[:volume] or δD,δP,δH[:volume]; volume defaults to 1.
Solvents are names, optionally with an observed solubility: name=soluble.

Common Flags:
  --config string    Config file path (default: /usr/local/etc/mixingcompass/config.yaml)
  --server string    Server URL (default: http://localhost:8200). Commands fall back to
                     direct storage when the server is not reachable; use --server ""
                     to skip the server.
  --output string    Output format: text, compact or json (default: text)

Target Flags (red, scene uses --hsp1/--mix1/--radius1 and --hsp2/--mix2/--radius2):
  --hsp string       Target center as δD,δP,δH
  --mix string       Target center as a blend, e.g. "water:1+ethanol:3"
  --radius float     Interaction radius R0 (default from config, 4.0)
  --name string      Target name
  --all              Include every solvent in the database

Scene Flags:
  --resolution int         Surface samples per parameter (default from config, 20)
  --color-by-solubility    Color points by their observed solubility
  --out string             Write the scene JSON to a file

Search Flags:
  --limit int        Number of results (default: 20)
  --offset int       Results to skip
  --fuzzy            Enable typo tolerance

Examples:
  mixingcompass server
  mixingcompass import ~/data/hsp_solvents.csv
  mixingcompass mix water:1 ethanol:3
  mixingcompass mix 18.0,1.4,2.0:2 acetone
  mixingcompass red --hsp 17,9,11 --radius 5 --all
  mixingcompass red --mix "toluene:1+acetone:1" --output compact hexane ethanol=soluble
  mixingcompass scene --hsp1 17,9,11 --mix2 "water:1+ethanol:1" --all --out scene.json
  mixingcompass search tolune
  mixingcompass search --output json 108-88-3
  mixingcompass status --output json
  mixingcompass watch add /path/to/tables`)
}
