package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/cli"
	"github.com/hyperjump/kagi/internal/config"
	"github.com/hyperjump/kagi/internal/models"
	"github.com/hyperjump/kagi/internal/server"
	"github.com/hyperjump/kagi/internal/storage"
	"github.com/hyperjump/kagi/internal/watcher"
)

// commonFlags are shared by every command that reads the catalog.
type commonFlags struct {
	config *string
	server *string
	output *string
	debug  *bool
}

func newFlagSet(name string, stderr io.Writer, usage string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := &commonFlags{
		config: fs.String("config", defaultConfigPath, "config file path"),
		server: fs.String("server", "", "server URL (empty = use local storage)"),
		output: fs.String("output", "text", "output format: text or json"),
		debug:  fs.Bool("debug", false, "enable debug logging"),
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: kagi %s\n\n", usage)
		fs.PrintDefaults()
	}
	return fs, cf
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(argsReorder(args)); err != nil {
		// flag has already printed the problem and usage.
		return errUsage
	}
	return nil
}

// withComponents loads config, initializes local components and calls fn.
func (cf *commonFlags) withComponents(ctx context.Context, fn func(*Components, *config.Config) error) error {
	cfg, _, err := loadConfig(*cf.config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg, *cf.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	c, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c, cfg)
}

// searchFlags narrows keyword and semantic searches.
type searchFlags struct {
	app, platform, category, context, tag *string
	limit                                 *int
}

func addSearchFlags(fs *flag.FlagSet) *searchFlags {
	return &searchFlags{
		app:      fs.String("app", "", "only shortcuts of this application"),
		platform: fs.String("platform", "", "mac, windows or linux"),
		category: fs.String("category", "", "only shortcuts in this category"),
		context:  fs.String("context", "", "only shortcuts active in this context"),
		tag:      fs.String("tag", "", "only shortcuts with this tag"),
		limit:    fs.Int("limit", 0, "maximum results (0 = configured default)"),
	}
}

func (sf *searchFlags) filters(query string) models.SearchFilters {
	return models.SearchFilters{
		Query:    query,
		App:      *sf.app,
		Platform: models.Platform(*sf.platform),
		Category: *sf.category,
		Context:  *sf.context,
		Tag:      *sf.tag,
		Limit:    *sf.limit,
	}
}

func filterParams(f models.SearchFilters) url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("q", f.Query)
	set("app", f.App)
	set("platform", string(f.Platform))
	set("category", f.Category)
	set("context", f.Context)
	set("tag", f.Tag)
	if f.Limit > 0 {
		v.Set("limit", fmt.Sprint(f.Limit))
	}
	return v
}

func runSearch(args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("search", stderr, "search [flags] <query>")
	sf := addSearchFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*cf.output)
	if err != nil {
		return err
	}
	filters := sf.filters(buildSearchQuery(fs.Args()))
	platform, _ := models.ParsePlatform(*sf.platform)
	ctx := context.Background()

	if *cf.server != "" {
		var resp models.SearchResponse
		if err := newAPIClient(*cf.server).get(ctx, "/api/v1/shortcuts", filterParams(filters), &resp); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return cli.WriteSearchResults(stdout, &resp, platform, format)
	}
	return cf.withComponents(ctx, func(c *Components, _ *config.Config) error {
		resp, err := c.Engine.Search(ctx, filters)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return cli.WriteSearchResults(stdout, resp, platform, format)
	})
}

func runKeys(args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("keys", stderr, "keys [flags] <combo>")
	platformFlag := fs.String("platform", "", "mac, windows or linux (empty = any)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	combo := buildSearchQuery(fs.Args())
	if combo == "" {
		fs.Usage()
		return errUsage
	}
	format, err := cli.ParseOutputFormat(*cf.output)
	if err != nil {
		return err
	}
	platform, _ := models.ParsePlatform(*platformFlag)
	ctx := context.Background()

	if *cf.server != "" {
		params := url.Values{"combo": {combo}}
		if platform != "" {
			params.Set("platform", string(platform))
		}
		var resp models.SearchResponse
		if err := newAPIClient(*cf.server).get(ctx, "/api/v1/shortcuts/keys", params, &resp); err != nil {
			return fmt.Errorf("key search failed: %w", err)
		}
		return cli.WriteSearchResults(stdout, &resp, platform, format)
	}
	return cf.withComponents(ctx, func(c *Components, _ *config.Config) error {
		start := time.Now()
		recs, err := c.Engine.SearchByKeys(ctx, combo, platform)
		if err != nil {
			return fmt.Errorf("key search failed: %w", err)
		}
		resp := &models.SearchResponse{
			Results:   make([]*models.ScoredShortcut, len(recs)),
			Total:     len(recs),
			QueryTime: time.Since(start).Milliseconds(),
			Query:     combo,
			Mode:      "keys",
		}
		for i, r := range recs {
			resp.Results[i] = &models.ScoredShortcut{Shortcut: r}
		}
		return cli.WriteSearchResults(stdout, resp, platform, format)
	})
}

func runAsk(args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("ask", stderr, "ask [flags] <question>")
	sf := addSearchFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	query := buildSearchQuery(fs.Args())
	if query == "" {
		fs.Usage()
		return errUsage
	}
	format, err := cli.ParseOutputFormat(*cf.output)
	if err != nil {
		return err
	}
	filters := sf.filters(query)
	platform, _ := models.ParsePlatform(*sf.platform)
	ctx := context.Background()

	if *cf.server != "" {
		var resp models.SearchResponse
		if err := newAPIClient(*cf.server).post(ctx, "/api/v1/shortcuts/semantic", filters, &resp); err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		return cli.WriteSearchResults(stdout, &resp, platform, format)
	}
	return cf.withComponents(ctx, func(c *Components, _ *config.Config) error {
		resp, err := c.Semantic.Search(ctx, filters)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		return cli.WriteSearchResults(stdout, resp, platform, format)
	})
}

func runExplain(args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("explain", stderr, "explain [flags] <id>")
	platformFlag := fs.String("platform", "", "mac, windows or linux (empty = first available)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	id := fs.Arg(0)
	format, err := cli.ParseOutputFormat(*cf.output)
	if err != nil {
		return err
	}
	platform, _ := models.ParsePlatform(*platformFlag)
	ctx := context.Background()

	if *cf.server != "" {
		params := url.Values{}
		if platform != "" {
			params.Set("platform", string(platform))
		}
		var resp models.ExplainResponse
		if err := newAPIClient(*cf.server).get(ctx, "/api/v1/shortcuts/"+url.PathEscape(id)+"/explain", params, &resp); err != nil {
			return fmt.Errorf("explain failed: %w", err)
		}
		return cli.WriteExplanation(stdout, &resp, format)
	}
	return cf.withComponents(ctx, func(c *Components, _ *config.Config) error {
		rec, err := c.Storage.ByID(ctx, id)
		if err != nil {
			if storage.IsNotFound(err) {
				return fmt.Errorf("shortcut %q not found", id)
			}
			return err
		}
		text := c.Semantic.ExplainShortcut(ctx, rec, platform)
		return cli.WriteExplanation(stdout, &models.ExplainResponse{ID: rec.ID, Explanation: text}, format)
	})
}

func runImport(args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("import", stderr, "import [flags] <file-or-directory>...")
	remember := fs.Bool("remember", false, "add imported directories to the config's catalog directories")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	ctx := context.Background()
	cfg, loadedPath, err := loadConfig(*cf.config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return cf.withComponents(ctx, func(c *Components, _ *config.Config) error {
		files := 0
		var dirs []string
		for _, p := range fs.Args() {
			abs, err := filepath.Abs(p)
			if err != nil {
				return err
			}
			info, err := os.Stat(abs)
			if err != nil {
				return fmt.Errorf("stat %s: %w", p, err)
			}
			if info.IsDir() {
				n, err := c.Indexer.ImportDirectory(ctx, abs, cfg.Catalog.Extensions, cfg.Catalog.RecursiveOrDefault())
				if err != nil {
					return fmt.Errorf("import %s: %w", p, err)
				}
				files += n
				dirs = append(dirs, abs)
				continue
			}
			if err := c.Indexer.ImportFile(ctx, abs, cfg.Catalog.Extensions); err != nil {
				return fmt.Errorf("import %s: %w", p, err)
			}
			files++
		}
		total, err := c.Storage.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Imported %d catalog files; %d shortcuts stored\n", files, total)

		if *remember && len(dirs) > 0 {
			if loadedPath == "" {
				loadedPath = *cf.config
			}
			cfg.Catalog.Directories = appendUnique(cfg.Catalog.Directories, dirs...)
			if err := config.Save(loadedPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Catalog directories saved to %s\n", loadedPath)
		}
		return nil
	})
}

func appendUnique(list []string, items ...string) []string {
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		seen[v] = struct{}{}
	}
	for _, v := range items {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			list = append(list, v)
		}
	}
	return list
}

func runStatus(args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("status", stderr, "status [flags]")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*cf.output)
	if err != nil {
		return err
	}
	ctx := context.Background()

	var status server.StatusResponse
	if *cf.server != "" {
		if err := newAPIClient(*cf.server).get(ctx, "/api/v1/status", nil, &status); err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
	} else {
		err := cf.withComponents(ctx, func(c *Components, cfg *config.Config) error {
			resp, err := server.CollectStatus(ctx, server.StatusSource{
				Storage:  c.Storage,
				Catalog:  c.Catalog,
				Semantic: c.Semantic,
				Config:   cfg,
			})
			if err != nil {
				return err
			}
			status = *resp
			return nil
		})
		if err != nil {
			return err
		}
	}

	if format == cli.OutputJSON {
		return cli.WriteJSON(stdout, status)
	}
	fmt.Fprintf(stdout, "shortcuts:          %d\n", status.Shortcuts)
	fmt.Fprintf(stdout, "indexed_shortcuts:  %d\n", status.IndexedShortcuts)
	fmt.Fprintf(stdout, "provider:           %s\n", status.Provider)
	if status.ProviderBreaker != "" {
		fmt.Fprintf(stdout, "provider_breaker:   %s\n", status.ProviderBreaker)
	}
	if status.StorageDriver != "" {
		fmt.Fprintf(stdout, "storage_driver:     %s\n", status.StorageDriver)
	}
	if status.DatabasePath != "" {
		fmt.Fprintf(stdout, "database_path:      %s\n", status.DatabasePath)
	}
	if status.DatabaseBytes > 0 {
		fmt.Fprintf(stdout, "database_bytes:     %d\n", status.DatabaseBytes)
	}
	fmt.Fprintf(stdout, "catalog_files:      %d (%d bytes)\n", status.CatalogFiles, status.CatalogBytes)
	fmt.Fprintf(stdout, "watching:           %t\n", status.Watching)
	for _, d := range status.Directories {
		fmt.Fprintf(stdout, "catalog_directory:  %s\n", d)
	}
	return nil
}

func runServer(args []string, stderr io.Writer) error {
	fs, cf := newFlagSet("server", stderr, "server [flags]")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, resolvedConfigPath, err := loadConfig(*cf.config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg, *cf.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || *cf.debug))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	var watchSvc server.WatchService
	if cfg.Catalog.Watch && len(cfg.Catalog.Directories) > 0 {
		w := watcher.NewWatcher(
			cfg.Catalog.Directories,
			cfg.Catalog.Extensions,
			cfg.Catalog.RecursiveOrDefault(),
			c.Indexer,
			watcher.WithLogger(logger),
		)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		watchSvc = w
	}

	srv := server.NewServer(c.Engine, c.Semantic, c.Storage, c.Catalog, cfg, logger, watchSvc)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
