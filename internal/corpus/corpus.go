// Package corpus scans a corpus directory tree of per-document records and
// decodes them into Record values for the Document Processor. The corpus is
// supplied as a directory tree (crawling is out of scope per SPEC_FULL §1).
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Record is the minimal input shape the Document Processor consumes: one
// per corpus file, per spec.md §6.
type Record struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Scan walks dir for *.json files and decodes each into a Record, calling fn
// for every record found (valid or not — fn is responsible for skipping
// records with empty URL/content per spec.md §4.C step 1). Decode failures
// on an individual file are reported via fn with a non-nil err so the caller
// can log-and-skip without aborting the whole scan; only directory-walk
// errors are returned directly.
func Scan(dir string, fn func(rec Record, err error)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking corpus dir: %w", err)
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			fn(Record{}, fmt.Errorf("reading %s: %w", path, readErr))
			return nil
		}

		var rec Record
		if decodeErr := json.Unmarshal(data, &rec); decodeErr != nil {
			fn(Record{}, fmt.Errorf("decoding %s: %w", path, decodeErr))
			return nil
		}
		fn(rec, nil)
		return nil
	})
}
