package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arshiya-salehi/webengine/engine"
	"github.com/arshiya-salehi/webengine/internal/config"
	"github.com/arshiya-salehi/webengine/internal/logging"
	"github.com/arshiya-salehi/webengine/internal/reader"
	"github.com/arshiya-salehi/webengine/internal/textutil"
	"github.com/arshiya-salehi/webengine/storage"
)

func newSearchCmd() *cobra.Command {
	var topK int
	var indexDir string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run a strict boolean-AND, TF-IDF ranked query against a built index.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewSearchConfig(indexDir)
			if topK > 0 {
				cfg.TopK = topK
			}
			cfg.Interactive = interactive

			if !cfg.Interactive && len(args) == 0 {
				return fmt.Errorf("search: a query string is required unless --interactive is set")
			}

			r, err := reader.OpenResident(
				filepath.Join(cfg.IndexDir, "inverted_index"),
				filepath.Join(cfg.IndexDir, "doc_mapping.json"),
				cfg.PostingCacheMaxEntries,
			)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			qe, err := engine.NewQueryEngine([]*storage.Segment{r.Segment()}, r.TotalDocs())
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			logger := logging.Default()

			if cfg.Interactive {
				return runInteractive(qe, r, cfg, logger)
			}
			return runQuery(qe, r, args[0], cfg, logger)
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 0, "number of results to return (default 10)")
	cmd.Flags().StringVar(&indexDir, "index", config.DefaultOutDir, "directory holding the built index")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "read queries from stdin until quit/exit/q/EOF")

	return cmd
}

func runQuery(qe engine.QueryEngine, r *reader.Reader, query string, cfg config.SearchConfig, logger zerolog.Logger) error {
	start := time.Now()
	terms := dedupePreservingOrder(textutil.TokenizeAndStem(query))

	results, err := qe.MultiTermQuery(terms, func(a, b engine.ScoredDocument) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.DocID < b.DocID
	})
	if err != nil {
		return fmt.Errorf("search: query failed: %w", err)
	}

	elapsed := time.Since(start)
	if elapsed > cfg.QueryTimeoutAdvisory {
		logger.Warn().Dur("elapsed", elapsed).Dur("budget", cfg.QueryTimeoutAdvisory).Str("query", query).
			Msg("query exceeded soft latency budget")
	} else {
		logger.Debug().Dur("elapsed", elapsed).Str("query", query).Msg("query completed")
	}

	if len(results) > cfg.TopK {
		results = results[:cfg.TopK]
	}

	fmt.Printf("%d results in %s\n", len(results), elapsed)
	for i, result := range results {
		url, _ := r.URL(result.DocID)
		fmt.Printf("%2d. %.4f  %s\n", i+1, result.Score, url)
	}
	return nil
}

func runInteractive(qe engine.QueryEngine, r *reader.Reader, cfg config.SearchConfig, logger zerolog.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("interactive search; type 'quit', 'exit', or 'q' to stop")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return nil
		case "":
			continue
		}
		if err := runQuery(qe, r, line, cfg, logger); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func dedupePreservingOrder(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}
