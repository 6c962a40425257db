package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/lexreport/internal/article"
	"github.com/TobiSchelling/lexreport/internal/config"
	"github.com/TobiSchelling/lexreport/internal/database"
	"github.com/TobiSchelling/lexreport/internal/pipeline"
	"github.com/TobiSchelling/lexreport/internal/report"
	"github.com/TobiSchelling/lexreport/internal/source"
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
	Use:     "lexreport",
	Short:   "Per-author legal article reports",
	Long:    "lexreport fetches legal articles and writes a dated report of article counts and average word counts per author and category.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configureLogging(config.LevelInfo)

		// Skip config loading for init, version and categories
		switch cmd.Name() {
		case "init", "version", "categories":
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
		level, _ := cfg.Logging.LogLevel()
		configureLogging(level)
		return nil
	},
}

// configureLogging sets up the std logger for a level. --verbose always
// wins and behaves like debug.
func configureLogging(level string) {
	if verbose {
		level = config.LevelDebug
	}

	flags := log.LstdFlags
	if level == config.LevelDebug {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)

	if level == config.LevelError {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(exportCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lexreport", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in the XDG config directory",
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
		fmt.Println("Edit it to point at your article service.")
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the report categories in column order",
	Run: func(cmd *cobra.Command, args []string) {
		for i, c := range article.All() {
			fmt.Printf("  %d. %s (%s)\n", i+1, c, c.Plural())
		}
	},
}

// --- report command ---

var (
	sourceKind  string
	baseURL     string
	filePath    string
	feedURL     string
	outDir      string
	formats     []string
	category    string
	author      string
	skipUnknown bool
	dryRun      bool
	toStdout    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch articles and write the per-author report",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyReportFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		src, closeSrc, err := openSource(cfg)
		if err != nil {
			return err
		}
		defer closeSrc()

		ctx := context.Background()
		now := time.Now()

		if toStdout {
			articles, err := src.Articles(ctx)
			if err != nil {
				return fmt.Errorf("collecting articles: %w", err)
			}
			table, err := report.Build(articles)
			if err != nil {
				return fmt.Errorf("building report: %w", err)
			}
			table.GeneratedAt = now
			return report.CSVWriter{}.Write(os.Stdout, table)
		}

		fmts, err := parseFormats(cfg.Output.Formats)
		if err != nil {
			return err
		}
		pipe, err := pipeline.New(src, pipeline.Options{
			OutputDir: cfg.Output.Dir,
			Prefix:    cfg.Output.Prefix,
			Formats:   fmts,
		})
		if err != nil {
			return err
		}

		var result *pipeline.Result
		if dryRun {
			result, err = pipe.DryRun(ctx, now)
		} else {
			result, err = pipe.Run(ctx, now)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/3: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}
		if err != nil {
			return err
		}

		if len(result.Files) > 0 {
			fmt.Println()
			for _, f := range result.Files {
				fmt.Printf("  %s\n", f)
			}
		}
		return nil
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&sourceKind, "source", "", "Article source: http, sqlite, feed or file")
	f.StringVar(&baseURL, "base-url", "", "Article service base URL")
	f.StringVar(&filePath, "file", "", "JSON file of articles (source=file)")
	f.StringVar(&feedURL, "feed-url", "", "RSS/Atom feed URL (source=feed)")
	f.StringVarP(&outDir, "out-dir", "o", "", "Directory for report files")
	f.StringSliceVarP(&formats, "format", "f", nil, "Output formats: csv, markdown, html, xlsx")
	f.StringVar(&category, "category", "", "Only report articles of this category")
	f.StringVar(&author, "author", "", "Only report authors whose name contains this text")
	f.BoolVar(&skipUnknown, "skip-unknown", false, "Drop feed items without a report category")
	f.BoolVar(&dryRun, "dry-run", false, "Build the report without writing files")
	f.BoolVar(&toStdout, "stdout", false, "Write CSV to stdout instead of a file")
}

// applyReportFlags overlays explicitly set flags on the loaded config.
func applyReportFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Kind = sourceKind
	}
	if flags.Changed("base-url") {
		cfg.Source.BaseURL = baseURL
	}
	if flags.Changed("file") {
		cfg.Source.File = filePath
		if !flags.Changed("source") {
			cfg.Source.Kind = config.SourceFile
		}
	}
	if flags.Changed("feed-url") {
		cfg.Source.FeedURL = feedURL
		if !flags.Changed("source") {
			cfg.Source.Kind = config.SourceFeed
		}
	}
	if flags.Changed("out-dir") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("format") {
		cfg.Output.Formats = formats
	}
	if flags.Changed("category") {
		cfg.Source.Category = category
	}
	if flags.Changed("author") {
		cfg.Source.Author = author
	}
	if flags.Changed("skip-unknown") {
		cfg.Source.SkipUnknown = skipUnknown
	}
}

func parseFormats(names []string) ([]report.Format, error) {
	var out []report.Format
	seen := make(map[report.Format]bool)
	for _, n := range names {
		f, err := report.ParseFormat(n)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// openSource builds the configured source. The returned func releases any
// resources the source holds.
func openSource(c *config.Config) (source.Source, func(), error) {
	noop := func() {}
	switch strings.ToLower(c.Source.Kind) {
	case config.SourceHTTP:
		src := source.NewHTTPSource(c.Source.BaseURL, c.Source.Timeout, c.Source.Category).WithAuthor(c.Source.Author)
		return src, noop, nil
	case config.SourceFile:
		return source.NewFileSource(c.Source.File), noop, nil
	case config.SourceFeed:
		return source.NewFeedSource(c.Source.FeedURL, c.Source.Timeout, c.Source.SkipUnknown), noop, nil
	case config.SourceSQLite:
		db, err := database.Open(c.GetDBPath())
		if err != nil {
			return nil, noop, err
		}
		return source.NewSQLiteSource(db, c.Source.Category).WithAuthor(c.Source.Author), func() { db.Close() }, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", config.ErrUnknownSource, c.Source.Kind)
}

// --- load command ---

var replace bool

var loadCmd = &cobra.Command{
	Use:   "load [file.json]",
	Short: "Load articles into the local store for offline reports",
	Long:  "Load articles from a JSON export, or from the configured source when no file is given, into the local SQLite store read by --source sqlite.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			articles []article.Article
			from     string
			err      error
		)
		if len(args) == 1 {
			articles, err = source.NewFileSource(args[0]).Articles(context.Background())
			if err != nil {
				return fmt.Errorf("collecting articles: %w", err)
			}
			from = args[0]
		} else {
			if strings.ToLower(cfg.Source.Kind) == config.SourceSQLite {
				return fmt.Errorf("load needs a file argument or a non-sqlite source")
			}
			articles, from, err = collect(cfg)
			if err != nil {
				return err
			}
		}

		db, err := database.Open(cfg.GetDBPath())
		if err != nil {
			return err
		}
		defer db.Close()

		if replace {
			if err := db.DeleteAll(); err != nil {
				return fmt.Errorf("clearing store: %w", err)
			}
		}

		n, err := source.Store(db, articles)
		if err != nil {
			return err
		}
		total, err := db.CountArticles()
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d articles from %s into %s (%d stored)\n", n, from, db.Path(), total)
		return nil
	},
}

func init() {
	loadCmd.Flags().BoolVar(&replace, "replace", false, "Remove stored articles before loading")
}

// --- export command ---

var exportID int64

var exportCmd = &cobra.Command{
	Use:   "export [file.json]",
	Short: "Write the configured source's articles as JSON",
	Long:  "Export articles from the configured source in the article service JSON shape. Without a file argument the JSON goes to stdout. The output can be read back with load or --source file. With --id a single article is exported from the local store.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyReportFlags(cmd)

		var (
			articles []article.Article
			from     string
			err      error
		)
		if cmd.Flags().Changed("id") {
			articles, from, err = storedArticle(cfg.GetDBPath(), exportID)
		} else {
			articles, from, err = collect(cfg)
		}
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return writeJSON(os.Stdout, articles)
		}
		if err := writeJSONFile(args[0], articles); err != nil {
			return err
		}
		log.Printf("Exported %d articles from %s to %s", len(articles), from, args[0])
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&sourceKind, "source", "", "Article source: http, sqlite, feed or file")
	f.StringVar(&baseURL, "base-url", "", "Article service base URL")
	f.StringVar(&filePath, "file", "", "JSON file of articles (source=file)")
	f.StringVar(&feedURL, "feed-url", "", "RSS/Atom feed URL (source=feed)")
	f.StringVar(&category, "category", "", "Only export articles of this category")
	f.StringVar(&author, "author", "", "Only export authors whose name contains this text")
	f.BoolVar(&skipUnknown, "skip-unknown", false, "Drop feed items without a report category")
	f.Int64Var(&exportID, "id", 0, "Export the stored article with this ID")
}

func collect(c *config.Config) ([]article.Article, string, error) {
	if err := c.Validate(); err != nil {
		return nil, "", err
	}
	src, closeSrc, err := openSource(c)
	if err != nil {
		return nil, "", err
	}
	defer closeSrc()

	articles, err := src.Articles(context.Background())
	if err != nil {
		return nil, "", fmt.Errorf("collecting articles: %w", err)
	}
	return articles, src.Name(), nil
}

func storedArticle(dbPath string, id int64) ([]article.Article, string, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, "", err
	}
	defer db.Close()

	a, err := source.NewSQLiteSource(db, "").ArticleByID(id)
	if err != nil {
		return nil, "", err
	}
	return []article.Article{a}, db.Path(), nil
}

func writeJSON(w io.Writer, articles []article.Article) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(source.FromArticles(articles)); err != nil {
		return fmt.Errorf("encoding articles: %w", err)
	}
	return nil
}

// writeJSONFile writes the export to path. A failed close is reported since
// it can lose buffered data.
func writeJSONFile(path string, articles []article.Article) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()
	return writeJSON(f, articles)
}
