package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hyperjump/mixingcompass/internal/cli"
	"github.com/hyperjump/mixingcompass/internal/models"
	"github.com/hyperjump/mixingcompass/internal/scene"
	"github.com/hyperjump/mixingcompass/pkg/utils"
)

// commonFlags are shared by the commands that can run against the server or
// directly against storage.
type commonFlags struct {
	config *string
	server *string
	output *string
	debug  *bool
}

func newCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		config: fs.String("config", defaultConfigPath, "config file path (for direct storage mode)"),
		server: fs.String("server", defaultServerURL, `server URL; use "" for direct storage`),
		output: fs.String("output", "text", "output format: text, compact or json"),
		debug:  fs.Bool("debug", false, "enable debug logging"),
	}
}

func (c *commonFlags) format() cli.OutputFormat {
	f, err := cli.ParseOutputFormat(*c.output)
	if err != nil {
		fail("Invalid flags", err)
	}
	return f
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// withComponents opens storage and the catalog directly and runs fn.
func withComponents(configPath string, debug bool, fn func(ctx context.Context, c *Components) error) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewCLILogger(debugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		return err
	}
	defer components.Close()
	return fn(context.Background(), components)
}

// serverOrDirect calls the API when a server URL is set and falls back to
// direct storage when the server cannot be reached.
func serverOrDirect[T any](
	cf *commonFlags,
	method, path string,
	body interface{},
	direct func(ctx context.Context, c *Components) (*T, error),
) (*T, error) {
	if *cf.server != "" {
		var out T
		err := callAPI(*cf.server, method, path, body, &out)
		if err == nil {
			return &out, nil
		}
		if !errors.Is(err, errUnreachable) {
			return nil, err
		}
		if *cf.debug {
			fmt.Fprintf(os.Stderr, "%v; using direct storage\n", err)
		}
	}
	var result *T
	err := withComponents(*cf.config, *cf.debug, func(ctx context.Context, c *Components) error {
		var err error
		result, err = direct(ctx, c)
		return err
	})
	return result, err
}

func runMix(args []string) {
	fs := flag.NewFlagSet("mix", flag.ExitOnError)
	cf := newCommonFlags(fs)
	name := fs.String("name", "", "mixture name")
	_ = fs.Parse(reorderArgs(args))
	format := cf.format()

	components, err := parseComponents(fs.Args())
	if err != nil {
		fail("Invalid component", err)
	}
	if len(components) == 0 {
		fmt.Println("Usage: mixingcompass mix [flags] <name[:volume] | δD,δP,δH[:volume]>...")
		os.Exit(1)
	}
	req := &models.MixtureRequest{Name: *name, Components: components}
	result, err := serverOrDirect(cf, http.MethodPost, "/api/v1/mixture", req,
		func(ctx context.Context, c *Components) (*models.MixtureResult, error) {
			return c.Engine.Mix(ctx, req)
		})
	if err != nil {
		fail("Mixture failed", err)
	}
	if err := cli.WriteMixture(os.Stdout, result, format); err != nil {
		fail("Output failed", err)
	}
}

func runRED(args []string) {
	fs := flag.NewFlagSet("red", flag.ExitOnError)
	cf := newCommonFlags(fs)
	target := newTargetFlags(fs, "")
	all := fs.Bool("all", false, "include every solvent in the database")
	_ = fs.Parse(reorderArgs(args))
	format := cf.format()

	in, err := target.input()
	if err != nil {
		fail("Invalid target", err)
	}
	if in == nil {
		fmt.Println("Usage: mixingcompass red (--hsp δD,δP,δH | --mix blend) [--radius R0] [--all] <solvent>...")
		os.Exit(1)
	}
	refs, err := parseSolventRefs(fs.Args())
	if err != nil {
		fail("Invalid solvent", err)
	}
	req := &models.REDRequest{Target: *in, Solvents: refs, All: *all}
	result, err := serverOrDirect(cf, http.MethodPost, "/api/v1/red", req,
		func(ctx context.Context, c *Components) (*models.REDResult, error) {
			return c.Engine.RED(ctx, req)
		})
	if err != nil {
		fail("RED failed", err)
	}
	if err := cli.WriteRED(os.Stdout, result, format); err != nil {
		fail("Output failed", err)
	}
}

func runScene(args []string) {
	fs := flag.NewFlagSet("scene", flag.ExitOnError)
	cf := newCommonFlags(fs)
	target1 := newTargetFlags(fs, "1")
	target2 := newTargetFlags(fs, "2")
	all := fs.Bool("all", false, "plot every solvent in the database")
	resolution := fs.Int("resolution", 0, "surface samples per parameter (default from config)")
	bySolubility := fs.Bool("color-by-solubility", false, "color points by observed solubility")
	out := fs.String("out", "", "write the scene JSON to this file")
	_ = fs.Parse(reorderArgs(args))
	format := cf.format()

	t1, err := target1.input()
	if err != nil {
		fail("Invalid target1", err)
	}
	if t1 == nil {
		fmt.Println("Usage: mixingcompass scene (--hsp1 δD,δP,δH | --mix1 blend) [--hsp2 ... | --mix2 ...] [flags] [solvent]...")
		os.Exit(1)
	}
	t2, err := target2.input()
	if err != nil {
		fail("Invalid target2", err)
	}
	refs, err := parseSolventRefs(fs.Args())
	if err != nil {
		fail("Invalid solvent", err)
	}
	req := &models.SceneRequest{
		Target1:           *t1,
		Target2:           t2,
		Solvents:          refs,
		AllSolvents:       *all,
		Resolution:        *resolution,
		ColorBySolubility: *bySolubility,
	}
	result, err := serverOrDirect(cf, http.MethodPost, "/api/v1/scene", req,
		func(ctx context.Context, c *Components) (*scene.Scene, error) {
			return c.Engine.Scene(ctx, req)
		})
	if err != nil {
		fail("Scene failed", err)
	}
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fail("Output failed", err)
		}
		if err := cli.WriteScene(f, result, cli.OutputJSON); err != nil {
			_ = f.Close()
			fail("Output failed", err)
		}
		if err := f.Close(); err != nil {
			fail("Output failed", err)
		}
	}
	if err := cli.WriteScene(os.Stdout, result, format); err != nil {
		fail("Output failed", err)
	}
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	cf := newCommonFlags(fs)
	limit := fs.Int("limit", models.DefaultQueryLimit, "number of results")
	offset := fs.Int("offset", 0, "results to skip")
	fuzzy := fs.Bool("fuzzy", false, "enable typo tolerance")
	_ = fs.Parse(reorderArgs(args))
	format := cf.format()

	query := &models.SolventQuery{Query: buildQuery(fs.Args()), Limit: *limit, Offset: *offset, Fuzzy: *fuzzy}
	params := url.Values{}
	params.Set("q", query.Query)
	params.Set("limit", strconv.Itoa(query.Limit))
	params.Set("offset", strconv.Itoa(query.Offset))
	params.Set("fuzzy", strconv.FormatBool(query.Fuzzy))
	result, err := serverOrDirect(cf, http.MethodGet, "/api/v1/solvents?"+params.Encode(), nil,
		func(ctx context.Context, c *Components) (*models.SolventSearchResponse, error) {
			return c.Engine.SearchSolvents(ctx, query)
		})
	if err != nil {
		fail("Search failed", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, result, format); err != nil {
		fail("Output failed", err)
	}
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cf := newCommonFlags(fs)
	_ = fs.Parse(args)
	format := cf.format()

	st, err := serverOrDirect(cf, http.MethodGet, "/api/v1/status", nil,
		func(ctx context.Context, c *Components) (*models.Status, error) {
			return c.Engine.Status(ctx)
		})
	if err != nil {
		fail("Status failed", err)
	}
	if err := cli.WriteStatus(os.Stdout, st, format); err != nil {
		fail("Output failed", err)
	}
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cf := newCommonFlags(fs)
	recursive := fs.Bool("recursive", true, "descend into subdirectories")
	_ = fs.Parse(reorderArgs(args))
	format := cf.format()

	if fs.NArg() < 1 {
		fmt.Println("Usage: mixingcompass import [flags] <file-or-dir>...")
		os.Exit(1)
	}
	paths := make([]string, fs.NArg())
	for i, p := range fs.Args() {
		abs, err := filepath.Abs(p)
		if err != nil {
			fail("Invalid path", err)
		}
		if _, err := os.Stat(abs); err != nil {
			fail("Failed to stat path", err)
		}
		paths[i] = abs
	}
	body := map[string]interface{}{"paths": paths, "recursive": *recursive}
	summary, err := serverOrDirect(cf, http.MethodPost, "/api/v1/import", body,
		func(ctx context.Context, c *Components) (*models.ImportSummary, error) {
			return c.Importer.ImportPaths(ctx, paths, *recursive)
		})
	if err != nil {
		fail("Import failed", err)
	}
	if err := cli.WriteImportSummary(os.Stdout, summary, format); err != nil {
		fail("Output failed", err)
	}
}

func runReindex(args []string) {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	err := withComponents(*configPath, *debug, func(ctx context.Context, c *Components) error {
		n, err := c.Importer.Reindex(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Reindexed %d solvents\n", n)
		return nil
	})
	if err != nil {
		fail("Reindex failed (stop the server first)", err)
	}
}

func runWatch(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: mixingcompass watch <add|remove|list> [path]")
		fmt.Println("  mixingcompass watch add <path>     Watch a data directory and import its tables")
		fmt.Println("  mixingcompass watch remove <path>  Stop watching a data directory")
		fmt.Println("  mixingcompass watch list           List watched data directories")
		os.Exit(1)
	}
	sub := args[0]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(args[1:])

	const endpoint = "/api/v1/data/directories"
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: mixingcompass watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body := map[string]interface{}{"path": path, "import": true}
		if err := callAPI(*serverURL, http.MethodPost, endpoint, body, nil); err != nil {
			fail("Add failed", err)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: mixingcompass watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		if err := callAPI(*serverURL, http.MethodDelete, endpoint+"?path="+url.QueryEscape(path), nil, nil); err != nil {
			fail("Remove failed", err)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := callAPI(*serverURL, http.MethodGet, endpoint, nil, &out); err != nil {
			fail("List failed", err)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}
