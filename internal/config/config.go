// Package config defines the explicit process configuration records passed
// into the build and search entry points, replacing the module-level global
// state of the original script-style implementation.
package config

import "time"

// BuildConfig configures a single index-build run.
type BuildConfig struct {
	CorpusDir          string
	OutDir             string
	SpillThresholdDocs  int
	MetricsAddr         string
}

// DefaultSpillThresholdDocs is used when a caller does not set one explicitly.
// It is sized so that a moderate corpus realizes the spill-count guarantee
// (ceil(total_docs/threshold) >= 4) without the caller doing arithmetic.
const DefaultSpillThresholdDocs = 250

// DefaultOutDir is the index directory used when --out is not given.
const DefaultOutDir = "index"

// NewBuildConfig fills in defaults for any zero-valued fields.
func NewBuildConfig(corpusDir string) BuildConfig {
	return BuildConfig{
		CorpusDir:          corpusDir,
		OutDir:             DefaultOutDir,
		SpillThresholdDocs:  DefaultSpillThresholdDocs,
	}
}

// SearchConfig configures a query-serving process (single query or REPL).
type SearchConfig struct {
	IndexDir             string
	TopK                 int
	PostingCacheMaxEntries int
	Interactive          bool
	QueryTimeoutAdvisory time.Duration
}

// DefaultTopK matches original_source's search_engine.py default.
const DefaultTopK = 10

// DefaultPostingCacheMaxEntries bounds the LRU posting cache in front of the
// on-demand posting reader tier.
const DefaultPostingCacheMaxEntries = 4096

// DefaultQueryTimeoutAdvisory is the soft latency budget from spec §5: an
// advisory only, logged when exceeded, never enforced via cancellation.
const DefaultQueryTimeoutAdvisory = 300 * time.Millisecond

// NewSearchConfig fills in defaults for any zero-valued fields.
func NewSearchConfig(indexDir string) SearchConfig {
	return SearchConfig{
		IndexDir:               indexDir,
		TopK:                   DefaultTopK,
		PostingCacheMaxEntries: DefaultPostingCacheMaxEntries,
		QueryTimeoutAdvisory:   DefaultQueryTimeoutAdvisory,
	}
}
