// Package stats is the Statistics Sink (component H): it collects
// {num_documents, num_unique_tokens, index_size_bytes, partial_segment_count}
// on each build and persists it as a small JSON record (goccy/go-json, via
// the fetcher package's encode/decode helpers) for downstream reporting.
// Generalized from the teacher's cmd/stats ASCII-table Statistics struct
// (TotalSegments/TotalDocuments/TotalRepeatedDocuments/TotalTerms) into a
// reusable sink type rather than a one-off main().
package stats

import (
	"fmt"
	"os"

	"github.com/arshiya-salehi/webengine/fetcher"
)

// Record is the persisted statistics artifact (spec.md §4.H / §6).
type Record struct {
	NumDocuments        int   `json:"num_documents"`
	NumUniqueTokens     int   `json:"num_unique_tokens"`
	IndexSizeBytes      int64 `json:"index_size_bytes"`
	PartialSegmentCount int   `json:"partial_segment_count"`
}

// Collect derives a Record from the final index and doc-mapping file sizes plus the document
// and segment counts reported by the build pipeline.
func Collect(numDocuments, numUniqueTokens, partialSegmentCount int, indexPath, mappingPath string) (Record, error) {
	indexInfo, err := os.Stat(indexPath)
	if err != nil {
		return Record{}, fmt.Errorf("stats: failed stat-ing index file: %w", err)
	}
	mappingInfo, err := os.Stat(mappingPath)
	if err != nil {
		return Record{}, fmt.Errorf("stats: failed stat-ing doc-mapping file: %w", err)
	}

	return Record{
		NumDocuments:        numDocuments,
		NumUniqueTokens:     numUniqueTokens,
		IndexSizeBytes:      indexInfo.Size() + mappingInfo.Size(),
		PartialSegmentCount: partialSegmentCount,
	}, nil
}

// Load reads a persisted Record from a local path or URL.
func Load(path string) (Record, error) {
	data, err := fetcher.FetchBytes(path)
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := fetcher.DecodeJSON(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Save persists the Record as a JSON file.
func (r Record) Save(path string) error {
	data, err := fetcher.EncodeJSON(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stats: failed writing %s: %w", path, err)
	}
	return nil
}
