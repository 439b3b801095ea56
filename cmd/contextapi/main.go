package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/contextapi/internal/config"
	"github.com/TobiSchelling/contextapi/internal/database"
	"github.com/TobiSchelling/contextapi/internal/enrich"
	"github.com/TobiSchelling/contextapi/internal/graphdb"
	"github.com/TobiSchelling/contextapi/internal/logging"
	"github.com/TobiSchelling/contextapi/internal/news"
	"github.com/TobiSchelling/contextapi/internal/scheduler"
	"github.com/TobiSchelling/contextapi/internal/server"
	"github.com/TobiSchelling/contextapi/internal/storygraph"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "contextapi",
	Short:   "News context API",
	Long:    "contextapi serves clustered news stories with their places, people, related coverage and preview images.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		_, err = logging.Setup(logging.Options{
			Level:      cfg.Logging.Level,
			File:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Verbose:    verbose,
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(storiesCmd)
	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(graphCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("contextapi", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/contextapi/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to choose the database, graph backend and enrichment settings.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s %s\n\n", db.Driver(), db.Path())
		fmt.Println("Stories:")
		fmt.Printf("  Total: %d\n", stats.Stories)
		fmt.Printf("  Top-level: %d\n", stats.TopLevel)
		fmt.Printf("  Edges: %d\n", stats.StoryEdges)
		if stats.LatestStoryAt != "" {
			fmt.Printf("  Latest: %s\n", stats.LatestStoryAt)
		}
		fmt.Println("\nArticles:")
		fmt.Printf("  Total: %d\n", stats.Articles)
		fmt.Printf("  Entity mentions: %d\n", stats.Mentions)
		fmt.Println("\nKnowledge base:")
		fmt.Printf("  Locations: %d\n", stats.Locations)
		fmt.Printf("  Persons: %d\n", stats.Persons)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Opening applies migrations.
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		v, err := db.SchemaVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Schema at version %d (latest %d)\n", v, database.LatestSchemaVersion())
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a small demo dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		res, err := db.Seed(cmd.Context(), time.Now())
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		fmt.Printf("Seeded %d stories, %d articles, %d edges\n", res.Stories, res.Articles, res.Edges)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		graph, closeGraph, err := openGraph(ctx, db)
		if err != nil {
			return err
		}
		defer closeGraph()

		var images news.ImageFetcher
		if cfg.Enrichment.Enabled {
			images = newFetcher()
		}
		svc := newService(db, graph, images)

		if cfg.Enrichment.Enabled && cfg.Enrichment.WarmSchedule != "" {
			warmer, err := scheduler.New(cfg.Enrichment.WarmSchedule, svc, nil, cfg.Server.RequestTimeout.Duration)
			if err != nil {
				return err
			}
			warmer.Start()
			defer warmer.Stop()
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		srv, err := server.New(svc, db, server.Options{
			RequestTimeout: cfg.Server.RequestTimeout.Duration,
			AccessLog:      true,
		})
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
		fmt.Printf("Starting server at http://%s\n", addr)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(ctx, addr, srv.Handler())
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// --- read commands ---

var (
	listPeriod string
	listRegion string
	listTopic  string
	listLimit  int
)

var storiesCmd = &cobra.Command{
	Use:   "stories",
	Short: "Print the story feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		page, err := svc.Feed(cmd.Context(), news.FeedParams{
			Period: listPeriod,
			Region: listRegion,
			Topic:  listTopic,
			Limit:  &listLimit,
		})
		if err != nil {
			return err
		}
		if len(page.Items) == 0 {
			fmt.Println("No stories in this window.")
			return nil
		}
		for _, c := range page.Items {
			fmt.Printf("%s  %s\n", c.StoryID, c.Title)
			fmt.Printf("    %d articles, %d sources", c.ArticleCount, c.SourcesCount)
			if len(c.Topics) > 0 {
				fmt.Printf(", %s", strings.Join(c.Topics, ", "))
			}
			fmt.Println()
		}
		if page.HasMore {
			fmt.Println("...")
		}
		return nil
	},
}

var storyCmd = &cobra.Command{
	Use:   "story [id]",
	Short: "Print one story with related stories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		s, err := svc.GetStory(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(s.Title)
		fmt.Println(s.StoryPeriod.Format("Jan 02, 2006 15:04 MST"))
		fmt.Printf("\n%s\n", s.Summary)
		for _, kp := range s.KeyPoints {
			fmt.Printf("  - %s\n", kp)
		}
		if len(s.Articles) > 0 {
			fmt.Println("\nArticles:")
			for _, a := range s.Articles {
				fmt.Printf("  [%s] %s\n        %s\n", a.Source, a.Headline, a.URL)
			}
		}
		if len(s.RelatedStories) > 0 {
			fmt.Println("\nRelated:")
			for _, r := range s.RelatedStories {
				fmt.Printf("  %s  %s\n", r.StoryID, r.Title)
			}
		}
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:       "top [location|person|organization]",
	Short:     "Rank the most mentioned entities",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"location", "person", "organization"},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		ranked, err := svc.TopEntities(cmd.Context(), news.AnalyticsParams{
			WindowParams: news.WindowParams{Period: listPeriod},
			EntityType:   args[0],
			Limit:        &listLimit,
		})
		if err != nil {
			return err
		}
		for i, e := range ranked {
			fmt.Printf("%3d. %-40s %d\n", i+1, e.Name, e.Count)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{storiesCmd, topCmd} {
		c.Flags().StringVar(&listPeriod, "period", "today", "Window: today, week or month")
		c.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of rows")
	}
	storiesCmd.Flags().StringVar(&listRegion, "region", "", "Region filter, e.g. europe")
	storiesCmd.Flags().StringVar(&listTopic, "topic", "", "Topic filter, e.g. politics")
}

// --- graph command ---

var syncBatchSize int

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage the graph backend",
}

var graphSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror story edges into the graph backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Graph.Backend != "neo4j" {
			return fmt.Errorf("graph.backend is %q; sync needs the neo4j backend", cfg.Graph.Backend)
		}

		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := openGraphStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		edges, err := db.AllEdges(cmd.Context())
		if err != nil {
			return err
		}
		store.BuildIndices(cmd.Context())
		n, err := store.SyncEdges(cmd.Context(), edges, syncBatchSize)
		if err != nil {
			return err
		}
		fmt.Printf("Synced %d edges to %s\n", n, cfg.Graph.URI)
		return nil
	},
}

func init() {
	graphSyncCmd.Flags().IntVar(&syncBatchSize, "batch-size", 500, "Edges per write")
	graphCmd.AddCommand(graphSyncCmd)
}

// --- wiring ---

func openDB(ctx context.Context) (*database.DB, error) {
	if cfg.Database.Driver == "postgres" {
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("database.url is required for the postgres driver")
		}
		return database.OpenPostgres(ctx, cfg.Database.URL)
	}
	return database.Open(cfg.GetDatabasePath())
}

func openGraphStore(ctx context.Context) (*graphdb.Store, error) {
	driver, err := graphdb.NewBoltDriver(ctx, cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password)
	if err != nil {
		return nil, err
	}
	return graphdb.NewStore(driver, cfg.Graph.MaxDepth), nil
}

// openGraph picks the traversal backend. The returned func releases it.
func openGraph(ctx context.Context, db *database.DB) (news.Traverser, func(), error) {
	if cfg.Graph.Backend == "neo4j" {
		store, err := openGraphStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close(context.Background()) }, nil
	}
	return storygraph.New(db, cfg.Graph.MaxDepth), func() {}, nil
}

func newFetcher() *enrich.Fetcher {
	return enrich.NewFetcher(enrich.NewCache(cfg.Enrichment.CacheTTL.Duration), enrich.Options{
		Timeout:        cfg.Enrichment.Timeout.Duration,
		MaxRedirects:   cfg.Enrichment.MaxRedirects,
		MaxConcurrency: cfg.Enrichment.MaxConcurrency,
		UserAgent:      cfg.Enrichment.UserAgent,
	})
}

func newService(db *database.DB, graph news.Traverser, images news.ImageFetcher) *news.Service {
	return news.NewService(db, graph, images, news.Options{
		StrictDates:      cfg.API.StrictDates,
		DefaultFeedLimit: cfg.API.DefaultFeedLimit,
	})
}

// openService builds a service without preview images for the CLI read
// commands.
func openService(ctx context.Context) (*news.Service, func(), error) {
	db, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	graph, closeGraph, err := openGraph(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return newService(db, graph, nil), func() {
		closeGraph()
		db.Close()
	}, nil
}
