// Package reader is the Posting Reader (component F): given a stemmed term,
// return its postings from the on-disk final index without requiring the
// caller to reload the whole file per query. Two tiers share one contract
// (spec.md §4.F): OpenResident loads the final segment fully into memory
// (the teacher's existing storage.ReadSegment path); OpenOnDemand mmaps the
// file via github.com/edsrzf/mmap-go instead of os.ReadFile, grounded on
// blueprints/liteio's mmap-go dependency (cross-validated by
// blueprints/search's indirect blevesearch/mmap-go). The teacher's segment
// format carries no per-term offset table, so "on-demand" here means
// page-cache-backed, zero-copy access to the raw bytes rather than true
// per-term disk seeks; a future offset table would let OpenOnDemand decode
// lazily instead of eagerly. An LRU cache (github.com/hashicorp/golang-lru,
// grounded on the same blueprints/liteio dependency) fronts the decoded
// per-term posting map for both tiers, bounded by posting_cache_max_entries.
package reader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru"

	"github.com/arshiya-salehi/webengine/internal/docmapping"
	"github.com/arshiya-salehi/webengine/storage"
)

// Posting mirrors storage's per-(term, doc) record for the reader's public contract.
type Posting struct {
	TermFrequency uint32
	IsImportant   bool
}

// Reader is the Posting Reader: postings(term) and document_frequency(term) over a final index
// segment, with an LRU cache fronting the per-term posting-map decode.
type Reader struct {
	segment *storage.Segment
	mapping *docmapping.Mapping
	cache   *lru.Cache

	dfCache map[string]int
}

// OpenResident loads the final index file fully into memory at startup (spec.md §4.F tier 1).
// A missing index file is a fatal initialization error.
func OpenResident(indexPath, mappingPath string, cacheMaxEntries int) (*Reader, error) {
	file, err := os.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("reader: missing index file: %w", err)
	}
	defer file.Close()

	segment := storage.NewSegment()
	if err := segment.ReadSegment(file); err != nil {
		return nil, fmt.Errorf("reader: failed decoding index file: %w", err)
	}

	mapping, err := docmapping.Load(mappingPath)
	if err != nil {
		return nil, fmt.Errorf("reader: missing doc-mapping file: %w", err)
	}

	return newReader(segment, mapping, cacheMaxEntries)
}

// OpenOnDemand mmaps the final index file (tier 2), avoiding the double-buffering a plain
// os.ReadFile-then-decode would incur on large indexes.
func OpenOnDemand(indexPath, mappingPath string, cacheMaxEntries int) (*Reader, error) {
	file, err := os.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("reader: missing index file: %w", err)
	}
	defer file.Close()

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("reader: failed to mmap index file: %w", err)
	}
	defer mapped.Unmap()

	segment := storage.NewSegment()
	if err := segment.ReadSegment(bytes.NewReader([]byte(mapped))); err != nil {
		return nil, fmt.Errorf("reader: failed decoding mmapped index file: %w", err)
	}

	mapping, err := docmapping.Load(mappingPath)
	if err != nil {
		return nil, fmt.Errorf("reader: missing doc-mapping file: %w", err)
	}

	return newReader(segment, mapping, cacheMaxEntries)
}

func newReader(segment *storage.Segment, mapping *docmapping.Mapping, cacheMaxEntries int) (*Reader, error) {
	cache, err := lru.New(cacheMaxEntries)
	if err != nil {
		return nil, fmt.Errorf("reader: failed creating posting cache: %w", err)
	}
	return &Reader{
		segment: segment,
		mapping: mapping,
		cache:   cache,
		dfCache: make(map[string]int),
	}, nil
}

// Postings returns term's posting map, keyed by doc-id. A term absent from the index returns an
// empty, non-nil map rather than an error (spec.md §4.F).
func (r *Reader) Postings(term string) (map[uint32]Posting, error) {
	if cached, ok := r.cache.Get(term); ok {
		return cached.(map[uint32]Posting), nil
	}

	iterator, err := r.segment.TermIterator(term)
	if err != nil {
		return nil, fmt.Errorf("reader: failed creating iterator for term %q: %w", term, err)
	}

	postings := make(map[uint32]Posting)
	for {
		hasNext, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("reader: failed iterating term %q: %w", term, err)
		}
		if !hasNext {
			break
		}
		docID, err := iterator.DocID()
		if err != nil {
			return nil, err
		}
		tf, err := iterator.TermFrequency()
		if err != nil {
			return nil, err
		}
		important, err := iterator.Important()
		if err != nil {
			return nil, err
		}
		postings[docID] = Posting{TermFrequency: uint32(tf), IsImportant: important}
	}

	r.cache.Add(term, postings)
	r.dfCache[term] = len(postings)
	return postings, nil
}

// DocumentFrequency returns len(Postings(term)), memoized independently of the LRU posting
// cache so df lookups stay O(1) even after a term's decoded postings have been evicted.
func (r *Reader) DocumentFrequency(term string) (int, error) {
	if df, ok := r.dfCache[term]; ok {
		return df, nil
	}
	postings, err := r.Postings(term)
	if err != nil {
		return 0, err
	}
	return len(postings), nil
}

// URL resolves a doc-id to its canonical URL.
func (r *Reader) URL(docID uint32) (string, bool) {
	url, ok := r.mapping.DocIDToURL[docID]
	return url, ok
}

// TotalDocs returns the total number of documents in the underlying segment.
func (r *Reader) TotalDocs() uint32 {
	return r.segment.TotalDocs()
}

// Segment exposes the underlying storage.Segment for callers, such as engine.NewQueryEngine,
// that operate directly on segment-level term metadata.
func (r *Reader) Segment() *storage.Segment {
	return r.segment
}
