// Package docproc implements the per-record pipeline (Component C): read a
// corpus record, extract its HTML, tokenize and stem both text streams, and
// emit the token pairs the Builder accumulates.
package docproc

import (
	"strings"

	"github.com/arshiya-salehi/webengine/internal/corpus"
	"github.com/arshiya-salehi/webengine/internal/htmlextract"
	"github.com/arshiya-salehi/webengine/internal/textutil"
)

// Processed is the Document Processor's output: a canonical URL plus the
// independently tokenized-and-stemmed body and important streams.
type Processed struct {
	CanonicalURL     string
	BodyTokens       []string
	ImportantTokens  []string
}

// Process runs the §4.C contract on a single corpus record. It returns
// ok=false (with no error) when the record is skipped per step 1 (missing
// URL or content) — skipping is not a failure condition.
func Process(rec corpus.Record) (Processed, bool, error) {
	if rec.URL == "" || rec.Content == "" {
		return Processed{}, false, nil
	}

	canonicalURL := Canonicalize(rec.URL)

	extracted, err := htmlextract.Extract([]byte(rec.Content))
	if err != nil {
		return Processed{}, false, err
	}

	return Processed{
		CanonicalURL:    canonicalURL,
		BodyTokens:      textutil.TokenizeAndStem(extracted.BodyText),
		ImportantTokens: textutil.TokenizeAndStem(extracted.ImportantText),
	}, true, nil
}

// Canonicalize truncates a URL at its first '#', per spec.md §3.
func Canonicalize(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '#'); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}
