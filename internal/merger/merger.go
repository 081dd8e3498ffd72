// Package merger is the Merger (component E): it coalesces the partial
// segments the Builder spilled into one final index file and one final
// doc-mapping file. Grounded on
// original_source/M1/DEVELOPER_OPTION/disk_indexer.py's
// _merge_partial_indexes/finalize (load-each-partial-and-coalesce, delete
// the partial directory only after success) and on the teacher's
// storage.Segment.Deserialize/WriteSegment for the binary I/O idiom
// (encoding/binary, LittleEndian, write-temp-then-rename via os.Rename).
package merger

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/arshiya-salehi/webengine/fetcher"
	"github.com/arshiya-salehi/webengine/internal/docmapping"
	"github.com/arshiya-salehi/webengine/storage"
)

// posting is the merge accumulator's per-(term, doc-id) value.
type posting struct {
	tf          uint32
	isImportant bool
}

// Merge coalesces the given segment files and doc-mapping snapshots into one final index file
// and one final doc-mapping file (spec.md §4.E). The coalescing rule for a (term, doc-id)
// appearing in more than one segment is tf := sum of tfs, is_important := logical-OR. Segment
// and snapshot files are deleted only after both final artifacts are durably written; on any
// failure they are left in place so a retry is possible.
func Merge(segmentPaths, mappingSnapshotPaths []string, finalIndexPath, finalMappingPath string, logger zerolog.Logger) error {
	merged, err := loadAndCoalesce(segmentPaths)
	if err != nil {
		return fmt.Errorf("merger: %w", err)
	}

	mapping, err := loadAndUnionMappings(mappingSnapshotPaths)
	if err != nil {
		return fmt.Errorf("merger: %w", err)
	}

	finalSegment := storage.NewSegment()
	for term, docPostings := range merged {
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
		if err := finalSegment.BulkIndex(termPostings); err != nil {
			return fmt.Errorf("merger: failed indexing merged term %q: %w", term, err)
		}
	}

	if err := writeTempThenRename(finalIndexPath, finalSegment.WriteSegment); err != nil {
		return fmt.Errorf("merger: failed writing final index: %w", err)
	}
	tmpMappingPath := finalMappingPath + ".tmp"
	if err := mapping.Save(tmpMappingPath); err != nil {
		os.Remove(tmpMappingPath)
		return fmt.Errorf("merger: failed writing final doc-mapping: %w", err)
	}
	if err := os.Rename(tmpMappingPath, finalMappingPath); err != nil {
		return fmt.Errorf("merger: failed writing final doc-mapping: %w", err)
	}

	for _, path := range segmentPaths {
		if err := os.Remove(path); err != nil {
			logger.Warn().Str("path", path).Err(err).Msg("failed to remove partial segment after successful merge")
		}
	}
	for _, path := range mappingSnapshotPaths {
		if err := os.Remove(path); err != nil {
			logger.Warn().Str("path", path).Err(err).Msg("failed to remove mapping snapshot after successful merge")
		}
	}

	logger.Info().
		Int("segments_merged", len(segmentPaths)).
		Int("terms", len(merged)).
		Str("final_index", finalIndexPath).
		Msg("merge complete")
	return nil
}

func loadAndCoalesce(segmentPaths []string) (map[string]map[uint32]*posting, error) {
	merged := make(map[string]map[uint32]*posting)

	for _, path := range segmentPaths {
		segment, err := readSegmentFile(path)
		if err != nil {
			return nil, err
		}

		for term, metadata := range segment.Terms {
			docPostings, ok := merged[term]
			if !ok {
				docPostings = make(map[uint32]*posting)
				merged[term] = docPostings
			}
			if err := coalesceTerm(docPostings, metadata, term); err != nil {
				return nil, fmt.Errorf("failed coalescing term %q from %s: %w", term, path, err)
			}
		}
	}

	return merged, nil
}

func coalesceTerm(docPostings map[uint32]*posting, metadata *storage.TermMetadata, term string) error {
	iterator := storage.NewTermIterator(metadata.Blocks, term)
	for {
		hasNext, err := iterator.Next()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}

		docID, err := iterator.DocID()
		if err != nil {
			return err
		}
		tf, err := iterator.TermFrequency()
		if err != nil {
			return err
		}
		important, err := iterator.Important()
		if err != nil {
			return err
		}

		existing, ok := docPostings[docID]
		if !ok {
			docPostings[docID] = &posting{tf: uint32(tf), isImportant: important}
			continue
		}
		existing.tf += uint32(tf)
		existing.isImportant = existing.isImportant || important
	}
}

func loadAndUnionMappings(mappingSnapshotPaths []string) (*docmapping.Mapping, error) {
	mapping := docmapping.New()
	for _, path := range mappingSnapshotPaths {
		snapshot, err := docmapping.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed loading doc-mapping snapshot %s: %w", path, err)
		}
		if err := mapping.Merge(snapshot); err != nil {
			return nil, err
		}
	}
	return mapping, nil
}

func readSegmentFile(path string) (*storage.Segment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening segment %s: %w", path, err)
	}
	defer file.Close()

	segment := storage.NewSegment()
	if err := segment.ReadSegment(file); err != nil {
		return nil, fmt.Errorf("failed reading segment %s: %w", path, err)
	}
	return segment, nil
}

// writeTempThenRename writes via writeFn to a temporary file alongside finalPath, then renames
// it into place — the write-temp-then-rename pattern spec.md §5 recommends for atomic final
// artifact replacement.
func writeTempThenRename(finalPath string, writeFn func(io.Writer) error) error {
	tmpPath := finalPath + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if err := writeFn(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, finalPath)
}
