package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/reviewlens/reviewlens/internal/catalog"
	"github.com/reviewlens/reviewlens/internal/config"
	"github.com/reviewlens/reviewlens/internal/discussion"
	"github.com/reviewlens/reviewlens/internal/extraction"
	"github.com/reviewlens/reviewlens/internal/pipeline"
	"github.com/reviewlens/reviewlens/internal/source"
	"github.com/reviewlens/reviewlens/internal/storage"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "reviewlens",
	Short:   "Consensus review verdicts and similar-product lookups",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(serveCmd)
}

// app bundles the wired pipeline for one command invocation.
type app struct {
	store    *storage.Store
	searcher *pipeline.Searcher
	finder   *catalog.Finder
}

func buildApp(cfg config.Config) (*app, error) {
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	sources := make([]pipeline.Source, 0, len(cfg.Pipeline.Sources))
	for _, name := range cfg.Pipeline.Sources {
		sources = append(sources, source.NewFileSource(cfg.Storage.DumpDir, name))
	}

	analyzer := extraction.NewOpenAIAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.ExtractionModel)
	searcher := pipeline.NewSearcher(store, sources,
		pipeline.NewExtractor(analyzer, cfg.Pipeline.Concurrency),
		pipeline.SearchOptions{
			Filter: discussion.FilterOptions{
				ScoreThreshold: cfg.Pipeline.ScoreThreshold,
				MinLength:      cfg.Pipeline.MinLength,
				RecentDays:     cfg.Pipeline.RecentDays,
			},
			MaxCommentDepth: cfg.Pipeline.MaxCommentDepth,
			BatchSize:       cfg.Pipeline.BatchSize,
		})

	lookup := catalog.NewOpenAILookup(cfg.OpenAI.APIKey, cfg.OpenAI.LookupModel)
	finder := catalog.NewFinder(catalog.NewResolver(store, lookup), store)

	return &app{store: store, searcher: searcher, finder: finder}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
	}
}

func setupLogging(cfg config.Config) {
	level := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})))
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Aggregate community reviews for a product into one verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		result := a.searcher.Search(cmd.Context(), args[0])

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if len(result.Reviews) == 0 {
			printWarning("no reviews found for %q", args[0])
		}
		for _, r := range result.Reviews {
			fmt.Printf("%s\n", colorize(colorBold, r.Summary))
			if len(r.Pros) > 0 {
				printStatus("Pros", "%s", strings.Join(r.Pros, ", "))
			}
			if len(r.Cons) > 0 {
				printStatus("Cons", "%s", strings.Join(r.Cons, ", "))
			}
			if r.URL != "" {
				printStatus("Source", "%s", r.URL)
			}
			fmt.Println()
		}
		if result.OverallDecision != "" {
			printSuccess("Verdict: %s", result.OverallDecision)
		}
		return nil
	},
}

var similarCmd = &cobra.Command{
	Use:   "similar <product>",
	Short: "List same-brand, competitor, and same-category products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		buckets := a.finder.Similar(cmd.Context(), args[0])

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(buckets)
		}

		printStatus("Same brand", "%s", joinOrNone(buckets.SameBrand))
		printStatus("Competitors", "%s", joinOrNone(buckets.Competitors))
		printStatus("Same category", "%s", joinOrNone(buckets.SimilarCategory))
		return nil
	},
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func init() {
	searchCmd.Flags().Bool("json", false, "print the raw result as JSON")
	similarCmd.Flags().Bool("json", false, "print the raw buckets as JSON")
}
