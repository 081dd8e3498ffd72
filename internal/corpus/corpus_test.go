package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSON(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestScanDecodesRecords(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "a.json", `{"url":"http://a/x","content":"<p>hello</p>"}`)
	writeJSON(t, dir, "b.json", `{"url":"http://a/y","content":"<p>world</p>"}`)

	var got []Record
	var errs []error
	err := Scan(dir, func(rec Record, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		got = append(got, rec)
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected per-record errors: %v", errs)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestScanReportsMalformedRecord(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "bad.json", `{not valid json`)

	var errCount int
	err := Scan(dir, func(rec Record, err error) {
		if err != nil {
			errCount++
		}
	})
	if err != nil {
		t.Fatalf("Scan should not abort on a malformed record: %v", err)
	}
	if errCount != 1 {
		t.Fatalf("expected 1 decode error, got %d", errCount)
	}
}

func TestScanSkipsNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "a.json", `{"url":"http://a/x","content":"hi"}`)
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	var got []Record
	err := Scan(dir, func(rec Record, err error) {
		if err == nil {
			got = append(got, rec)
		}
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
}
