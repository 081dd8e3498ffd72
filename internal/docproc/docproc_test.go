package docproc

import (
	"testing"

	"github.com/arshiya-salehi/webengine/internal/corpus"
)

func TestCanonicalizeStripsFragment(t *testing.T) {
	if got := Canonicalize("http://a/x#section2"); got != "http://a/x" {
		t.Errorf("Canonicalize = %q, want http://a/x", got)
	}
	if got := Canonicalize("http://a/x"); got != "http://a/x" {
		t.Errorf("Canonicalize = %q, want http://a/x", got)
	}
}

func TestProcessSkipsEmptyRecord(t *testing.T) {
	_, ok, err := Process(corpus.Record{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if ok {
		t.Fatal("expected record with empty url/content to be skipped")
	}
}

// TestProcessMatchesScenario2 pins spec.md §8 Scenario 2 exactly: combined
// tf("alpha") across both streams must be 2, with body contributing the
// single occurrence from the paragraph and important the single occurrence
// from the heading — not 3, which double-counting the heading in both
// streams would produce.
func TestProcessMatchesScenario2(t *testing.T) {
	rec := corpus.Record{URL: "http://a/x", Content: "<h1>alpha</h1><p>alpha beta</p>"}
	got, ok, err := Process(rec)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !ok {
		t.Fatal("expected record to be processed")
	}
	if got.CanonicalURL != "http://a/x" {
		t.Errorf("CanonicalURL = %q", got.CanonicalURL)
	}

	countBody := countToken(got.BodyTokens, "alpha")
	if countBody != 1 {
		t.Errorf("expected body count 1 for 'alpha' (paragraph only), got %d: %v", countBody, got.BodyTokens)
	}
	countImportant := countToken(got.ImportantTokens, "alpha")
	if countImportant != 1 {
		t.Errorf("expected important count 1 for 'alpha' (heading), got %d: %v", countImportant, got.ImportantTokens)
	}
	if countBody+countImportant != 2 {
		t.Errorf("expected combined tf(alpha) = 2 per spec.md Scenario 2, got %d", countBody+countImportant)
	}
}

func countToken(tokens []string, want string) int {
	n := 0
	for _, tok := range tokens {
		if tok == want {
			n++
		}
	}
	return n
}
