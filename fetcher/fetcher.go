// Package fetcher defines the interchange types passed from document
// processing into the Builder's accumulator, and small helpers for reading
// JSON-encoded artifacts (doc mappings, statistics) from local paths or
// URLs. It is adapted from the teacher's segment-fetching package: the
// original JsonDocument/Root pair described postings for prebuilt JSON test
// fixtures fetched over HTTP; TermPosting below is the same shape plus the
// IsImportant flag this system's posting model requires, and it is now the
// type the Builder and Merger assemble from their accumulators and hand to
// storage.BulkIndex.
package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// TermPosting is one (term, doc-id) posting as assembled by the Builder or
// Merger, ready for storage.Segment.BulkIndex.
type TermPosting struct {
	Term          string  `json:"term"`
	DocID         uint32  `json:"doc_id"`
	TermFrequency float32 `json:"term_frequency"`
	IsImportant   bool    `json:"is_important"`
}

// FetchBytes reads raw bytes from either an http(s) URL or a local file
// path, matching the teacher's FetchJson dual-source behavior.
func FetchBytes(path string) ([]byte, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		response, err := http.Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("non-ok HTTP response fetching %s: %s", path, response.Status)
		}

		data, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body for %s: %w", path, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file %s: %w", path, err)
	}
	return data, nil
}

// DecodeJSON is a thin goccy/go-json wrapper kept here so every on-disk JSON
// artifact (doc mapping, statistics record) goes through one decode path.
func DecodeJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse json: %w", err)
	}
	return nil
}

// EncodeJSON mirrors DecodeJSON for the write side.
func EncodeJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return data, nil
}
