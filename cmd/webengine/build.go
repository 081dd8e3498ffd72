package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/arshiya-salehi/webengine/internal/builder"
	"github.com/arshiya-salehi/webengine/internal/config"
	"github.com/arshiya-salehi/webengine/internal/corpus"
	"github.com/arshiya-salehi/webengine/internal/docproc"
	"github.com/arshiya-salehi/webengine/internal/logging"
	"github.com/arshiya-salehi/webengine/internal/merger"
	"github.com/arshiya-salehi/webengine/internal/stats"
	"github.com/arshiya-salehi/webengine/storage"
)

// docProcessorWorkers bounds the Document Processor worker pool that runs
// ahead of the single-writer Builder (SPEC_FULL.md §5): parsing and
// tokenizing a record is pure and safe to parallelize, but AddDocument
// itself is not, so every worker funnels its output through one consumer
// goroutine that calls the Builder serially. Results complete out of
// submission order, so each record carries its scan-order index and the
// consumer resequences before calling AddDocument — spec.md §5 requires
// doc-id assignment to be a total order consistent with ingestion order.
const docProcessorWorkers = 8

// indexedRecord tags a corpus record with its position in scan order.
type indexedRecord struct {
	idx int
	rec corpus.Record
}

// indexedResult tags a processed (or skipped) record with the same index,
// so the consumer can restore scan order before handing it to the Builder.
type indexedResult struct {
	idx       int
	processed docproc.Processed
	ok        bool
}

func newBuildCmd() *cobra.Command {
	var spillThreshold int
	var outDir string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "build <corpus_dir>",
		Short: "Build an inverted index from a directory of per-document JSON records.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			v.SetDefault("spill_threshold_docs", config.DefaultSpillThresholdDocs)
			v.SetDefault("out_dir", config.DefaultOutDir)
			if spillThreshold > 0 {
				v.Set("spill_threshold_docs", spillThreshold)
			}
			if outDir != "" {
				v.Set("out_dir", outDir)
			}

			cfg := config.NewBuildConfig(args[0])
			cfg.SpillThresholdDocs = v.GetInt("spill_threshold_docs")
			cfg.OutDir = v.GetString("out_dir")
			cfg.MetricsAddr = metricsAddr

			return runBuild(cfg)
		},
	}

	cmd.Flags().IntVar(&spillThreshold, "spill-threshold", 0, "documents buffered before a spill (default 250)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory for the index (default \"index\")")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "optional address to expose build metrics on (Prometheus)")

	return cmd
}

func runBuild(cfg config.BuildConfig) error {
	logger := logging.Default()

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("build: failed to create output directory: %w", err)
	}

	var gauges *stats.Gauges
	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		gauges = stats.NewGauges(registry)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("exposing build metrics")
	}

	b := builder.New(cfg, logger)
	var skipped int64

	records := make(chan indexedRecord, 2*docProcessorWorkers)
	results := make(chan indexedResult, 2*docProcessorWorkers)

	var workers errgroup.Group
	for i := 0; i < docProcessorWorkers; i++ {
		workers.Go(func() error {
			for ir := range records {
				p, ok, procErr := docproc.Process(ir.rec)
				if procErr != nil {
					logger.Warn().Err(procErr).Str("url", ir.rec.URL).Msg("skipping record: processing error")
					atomic.AddInt64(&skipped, 1)
					results <- indexedResult{idx: ir.idx}
					continue
				}
				if !ok {
					atomic.AddInt64(&skipped, 1)
					results <- indexedResult{idx: ir.idx}
					continue
				}
				results <- indexedResult{idx: ir.idx, processed: p, ok: true}
			}
			return nil
		})
	}

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		pending := make(map[int]indexedResult)
		next := 0
		for res := range results {
			pending[res.idx] = res
			for {
				r, ready := pending[next]
				if !ready {
					break
				}
				delete(pending, next)
				next++
				if r.ok {
					if addErr := b.AddDocument(r.processed.CanonicalURL, r.processed.BodyTokens, r.processed.ImportantTokens); addErr != nil {
						logger.Fatal().Err(addErr).Msg("fatal I/O error while adding document")
					}
				}
			}
		}
	}()

	nextIdx := 0
	scanErr := corpus.Scan(cfg.CorpusDir, func(rec corpus.Record, recErr error) {
		if recErr != nil {
			logger.Warn().Err(recErr).Msg("skipping malformed corpus record")
			atomic.AddInt64(&skipped, 1)
			return
		}
		records <- indexedRecord{idx: nextIdx, rec: rec}
		nextIdx++
	})
	close(records)
	_ = workers.Wait()
	close(results)
	<-consumerDone

	if scanErr != nil {
		return fmt.Errorf("build: corpus scan failed: %w", scanErr)
	}

	segmentPaths, mappingSnapshotPaths, err := b.Finalize()
	if err != nil {
		return fmt.Errorf("build: finalize failed: %w", err)
	}

	finalIndexPath := filepath.Join(cfg.OutDir, "inverted_index")
	finalMappingPath := filepath.Join(cfg.OutDir, "doc_mapping.json")

	if err := merger.Merge(segmentPaths, mappingSnapshotPaths, finalIndexPath, finalMappingPath, logger); err != nil {
		return fmt.Errorf("build: merge failed: %w", err)
	}

	numUniqueTokens, err := countUniqueTerms(finalIndexPath)
	if err != nil {
		return fmt.Errorf("build: failed counting unique terms: %w", err)
	}

	record, err := stats.Collect(b.TotalDocs(), numUniqueTokens, len(segmentPaths), finalIndexPath, finalMappingPath)
	if err != nil {
		return fmt.Errorf("build: failed collecting statistics: %w", err)
	}
	if err := record.Save(filepath.Join(cfg.OutDir, "stats.json")); err != nil {
		return fmt.Errorf("build: failed saving statistics: %w", err)
	}
	if gauges != nil {
		gauges.Set(record)
	}

	skippedTotal := atomic.LoadInt64(&skipped)
	logger.Info().
		Int("documents", record.NumDocuments).
		Int("unique_terms", record.NumUniqueTokens).
		Int("segments_spilled", record.PartialSegmentCount).
		Int64("skipped_records", skippedTotal).
		Msg("build complete")

	fmt.Printf("indexed %d documents (%d unique terms, %d segments spilled, %d records skipped)\n",
		record.NumDocuments, record.NumUniqueTokens, record.PartialSegmentCount, skippedTotal)
	return nil
}

func countUniqueTerms(indexPath string) (int, error) {
	file, err := os.Open(indexPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	segment := storage.NewSegment()
	if err := segment.ReadSegment(file); err != nil {
		return 0, err
	}
	return len(segment.Terms), nil
}
