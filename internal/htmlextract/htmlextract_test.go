package htmlextract

import (
	"strings"
	"testing"
)

func TestExtractImportantTextExcludedFromBody(t *testing.T) {
	got, err := Extract([]byte(`<h1>alpha</h1><p>alpha beta</p>`))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got.ImportantText, "alpha") {
		t.Errorf("important text missing heading: %q", got.ImportantText)
	}
	if strings.Count(got.BodyText, "alpha") != 1 {
		t.Errorf("expected body text to carry 'alpha' once (paragraph only, heading goes to important), got %q", got.BodyText)
	}
	if !strings.Contains(got.BodyText, "beta") {
		t.Errorf("expected body text to contain 'beta', got %q", got.BodyText)
	}
}

func TestExtractDropsScriptAndStyle(t *testing.T) {
	got, err := Extract([]byte(`<style>.x{color:red}</style><script>alert(1)</script><p>hello</p>`))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if strings.Contains(got.BodyText, "color") || strings.Contains(got.BodyText, "alert") {
		t.Errorf("script/style text leaked into body: %q", got.BodyText)
	}
}

func TestExtractTitleIsImportant(t *testing.T) {
	got, err := Extract([]byte(`<html><head><title>My Page</title></head><body><p>content</p></body></html>`))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got.ImportantText, "My Page") {
		t.Errorf("expected title in important text, got %q", got.ImportantText)
	}
}
