// Package docmapping is the doc-mapping artifact shared by the Builder,
// Merger, and Posting Reader (spec.md §3): the bijection between canonical
// URL and doc-id. The Builder snapshots one per spill; the Merger unions
// them into the single final artifact the Reader loads at query-serving
// startup.
package docmapping

import (
	"fmt"
	"os"

	"github.com/arshiya-salehi/webengine/fetcher"
)

// Mapping is the bijection between canonical URL and doc-id.
type Mapping struct {
	URLToDocID map[string]uint32 `json:"url_to_doc_id"`
	DocIDToURL map[uint32]string `json:"doc_id_to_url"`
}

// New returns an empty Mapping.
func New() *Mapping {
	return &Mapping{
		URLToDocID: make(map[string]uint32),
		DocIDToURL: make(map[uint32]string),
	}
}

// Add records the url/doc-id pair.
func (m *Mapping) Add(url string, docID uint32) {
	m.URLToDocID[url] = docID
	m.DocIDToURL[docID] = url
}

// Merge unions other into m. A URL that maps to two different doc-ids across the two mappings
// violates the Builder's uniqueness invariant (spec.md §3) and is reported as an error rather
// than silently resolved.
func (m *Mapping) Merge(other *Mapping) error {
	for url, docID := range other.URLToDocID {
		if existing, ok := m.URLToDocID[url]; ok && existing != docID {
			return fmt.Errorf("doc mapping conflict: url %q maps to both doc-id %d and %d", url, existing, docID)
		}
		m.Add(url, docID)
	}
	return nil
}

// Load reads a Mapping from a local path or URL (fetcher.FetchBytes dual-source behavior).
func Load(path string) (*Mapping, error) {
	data, err := fetcher.FetchBytes(path)
	if err != nil {
		return nil, err
	}
	m := New()
	if err := fetcher.DecodeJSON(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save persists the Mapping as a JSON file.
func (m *Mapping) Save(path string) error {
	data, err := fetcher.EncodeJSON(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("docmapping: failed writing %s: %w", path, err)
	}
	return nil
}
