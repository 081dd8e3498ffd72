// Package builder is the Builder (component D): an in-memory partial-index
// accumulator with a spill policy, grounded on
// other_examples/b97d6d75_Ayanrocks-mneme__internal-index-builder.go.go's
// IndexBuilderBatched (batch-by-count, manifest-per-chunk) for the spill
// shape, and original_source/M1/DEVELOPER_OPTION/disk_indexer.py's
// DiskBasedIndexer for the exact upsert semantics: AddDocument overwrites a
// (term, doc-id) posting already present in the current spill window rather
// than summing into it (spec.md §9.2); summing across spill windows is the
// Merger's job.
package builder

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/arshiya-salehi/webengine/fetcher"
	"github.com/arshiya-salehi/webengine/internal/config"
	"github.com/arshiya-salehi/webengine/internal/docmapping"
	"github.com/arshiya-salehi/webengine/storage"
)

// posting is the accumulator's per-(term, doc-id) value before it is flushed to a segment file.
type posting struct {
	tf          uint32
	isImportant bool
}

// Builder accumulates postings in memory and spills them to numbered segment files once
// spill_threshold_docs documents have been added since the last spill.
type Builder struct {
	cfg    config.BuildConfig
	logger zerolog.Logger

	nextDocID  uint32
	urlToDocID map[string]uint32
	mapping    *docmapping.Mapping

	accumulator    map[string]map[uint32]*posting // term -> doc-id -> posting
	docsSinceSpill int
	totalDocs      int
	segmentOrdinal int

	segmentPaths         []string
	mappingSnapshotPaths []string
}

// New creates a Builder for the given configuration.
func New(cfg config.BuildConfig, logger zerolog.Logger) *Builder {
	return &Builder{
		cfg:         cfg,
		logger:      logger,
		urlToDocID:  make(map[string]uint32),
		mapping:     docmapping.New(),
		accumulator: make(map[string]map[uint32]*posting),
	}
}

// AddDocument assigns or retrieves the doc-id for url, computes per-token counts for each
// stream, and upserts (term, doc-id) postings into the accumulator. A posting already present
// for this (term, doc-id) within the current spill window is overwritten, not summed — the
// asymmetry spec.md §9.2 documents and requires. Spills automatically once the in-memory
// document counter reaches spill_threshold_docs.
func (b *Builder) AddDocument(url string, bodyTokens, importantTokens []string) error {
	if url == "" {
		return fmt.Errorf("builder: empty canonical url")
	}

	docID, exists := b.urlToDocID[url]
	if !exists {
		docID = b.nextDocID
		b.nextDocID++
		b.urlToDocID[url] = docID
		b.mapping.Add(url, docID)
	}

	bodyCounts := countTokens(bodyTokens)
	importantCounts := countTokens(importantTokens)

	terms := make(map[string]struct{}, len(bodyCounts)+len(importantCounts))
	for term := range bodyCounts {
		terms[term] = struct{}{}
	}
	for term := range importantCounts {
		terms[term] = struct{}{}
	}

	for term := range terms {
		tf := bodyCounts[term] + importantCounts[term]
		isImportant := importantCounts[term] > 0

		docPostings, ok := b.accumulator[term]
		if !ok {
			docPostings = make(map[uint32]*posting)
			b.accumulator[term] = docPostings
		}
		docPostings[docID] = &posting{tf: uint32(tf), isImportant: isImportant}
	}

	b.docsSinceSpill++
	b.totalDocs++

	if b.docsSinceSpill >= b.cfg.SpillThresholdDocs {
		return b.Spill()
	}
	return nil
}

func countTokens(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

// Spill serializes the current accumulator to a new numbered segment file, snapshots the
// doc-mapping seen so far, then clears the accumulator and resets the spill counter. I/O errors
// here are fatal to the build (spec.md §7).
func (b *Builder) Spill() error {
	if len(b.accumulator) == 0 {
		return nil
	}

	segment := storage.NewSegment()
	for term, docPostings := range b.accumulator {
		termPostings := make([]fetcher.TermPosting, 0, len(docPostings))
		for docID, p := range docPostings {
			termPostings = append(termPostings, fetcher.TermPosting{
				Term:          term,
				DocID:         docID,
				TermFrequency: float32(p.tf),
				IsImportant:   p.isImportant,
			})
		}
		sort.Slice(termPostings, func(i, j int) bool {
			return termPostings[i].DocID < termPostings[j].DocID
		})
		if err := segment.BulkIndex(termPostings); err != nil {
			return fmt.Errorf("builder: spill: failed indexing term %q: %w", term, err)
		}
	}

	segmentPath := filepath.Join(b.cfg.OutDir, segmentFilename(b.segmentOrdinal))
	if err := writeSegmentFile(segmentPath, segment); err != nil {
		return fmt.Errorf("builder: spill: %w", err)
	}

	mappingPath := filepath.Join(b.cfg.OutDir, mappingSnapshotFilename(b.segmentOrdinal))
	if err := b.mapping.Save(mappingPath); err != nil {
		return fmt.Errorf("builder: spill: failed writing doc-mapping snapshot: %w", err)
	}

	b.segmentPaths = append(b.segmentPaths, segmentPath)
	b.mappingSnapshotPaths = append(b.mappingSnapshotPaths, mappingPath)

	b.logger.Info().
		Int("segment", b.segmentOrdinal).
		Int("docs", b.docsSinceSpill).
		Str("path", segmentPath).
		Msg("spilled partial segment")

	b.segmentOrdinal++
	b.accumulator = make(map[string]map[uint32]*posting)
	b.docsSinceSpill = 0
	return nil
}

// Finalize flushes any remaining buffered documents as a final spill, warns if the realized
// segment count falls short of the spill-count guarantee (spec.md §4.D:
// ceil(total_docs/threshold) >= 4), and returns the paths of every segment and mapping snapshot
// written — the caller hands these to the Merger.
func (b *Builder) Finalize() (segmentPaths []string, mappingSnapshotPaths []string, err error) {
	if len(b.accumulator) > 0 {
		if err := b.Spill(); err != nil {
			return nil, nil, err
		}
	}

	const minSpillSegments = 4
	if b.cfg.SpillThresholdDocs > 0 && b.totalDocs > 0 {
		want := int(math.Ceil(float64(b.totalDocs) / float64(b.cfg.SpillThresholdDocs)))
		if want < minSpillSegments {
			want = minSpillSegments
		}
		if len(b.segmentPaths) < want {
			b.logger.Warn().
				Int("segments_written", len(b.segmentPaths)).
				Int("segments_expected", want).
				Msg("spill count below target; spill_threshold_docs may be set too high")
		}
	}

	return b.segmentPaths, b.mappingSnapshotPaths, nil
}

// TotalDocs returns the number of documents added across the Builder's lifetime.
func (b *Builder) TotalDocs() int { return b.totalDocs }

func segmentFilename(ordinal int) string {
	return fmt.Sprintf("segment-%05d.seg", ordinal)
}

func mappingSnapshotFilename(ordinal int) string {
	return fmt.Sprintf("mapping-%05d.json", ordinal)
}

func writeSegmentFile(path string, segment *storage.Segment) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create segment file %s: %w", path, err)
	}
	defer file.Close()
	return segment.WriteSegment(file)
}
