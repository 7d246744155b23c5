package bibcache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-mdcite/internal/bibliography"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "bib.db"), nil)
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	data := []byte("@article{smith2020, author={Smith, John}, year={2020}}")
	entries := []*bibliography.Entry{
		{ID: "smith2020", Type: "article-journal", Author: "Smith, John", Year: "2020", DOI: "10.1000/xyz"},
	}

	if _, ok := s.Lookup(bibliography.FormatBibTeX, data); ok {
		t.Fatal("Lookup() on empty cache reported a hit")
	}
	if err := s.Store(bibliography.FormatBibTeX, data, entries); err != nil {
		t.Fatalf("Store() unexpected error: %v", err)
	}

	got, ok := s.Lookup(bibliography.FormatBibTeX, data)
	if !ok {
		t.Fatal("Lookup() after Store() reported a miss")
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
	}

	// Same bytes under another format are a different record.
	if _, ok := s.Lookup(bibliography.FormatCSLYAML, data); ok {
		t.Error("Lookup() with a different format reported a hit")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_EmptyEntries(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	data := []byte("% nothing here")
	if err := s.Store(bibliography.FormatBibTeX, data, nil); err != nil {
		t.Fatalf("Store() unexpected error: %v", err)
	}
	got, ok := s.Lookup(bibliography.FormatBibTeX, data)
	if !ok {
		t.Fatal("Lookup() reported a miss")
	}
	if len(got) != 0 {
		t.Errorf("Lookup() = %v, want no entries", got)
	}
}

func TestStore_Persists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bib.db")
	data := []byte(`[{"id":"a","title":"A"}]`)

	s, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(bibliography.FormatCSLJSON, data, []*bibliography.Entry{{ID: "a", Title: "A"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()
	got, ok := s.Lookup(bibliography.FormatCSLJSON, data)
	if !ok || len(got) != 1 || got[0].Title != "A" {
		t.Errorf("Lookup() after reopen = %v, %v", got, ok)
	}
}

func TestStore_Closed(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if err := s.Store(bibliography.FormatBibTeX, []byte("x"), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Store() after Close() error = %v, want ErrClosed", err)
	}
	if _, ok := s.Lookup(bibliography.FormatBibTeX, []byte("x")); ok {
		t.Error("Lookup() after Close() reported a hit")
	}
}

func TestOpen_MissingPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("", nil); !errors.Is(err, ErrMissingPath) {
		t.Errorf("Open(\"\") error = %v, want ErrMissingPath", err)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	a := Key(bibliography.FormatBibTeX, []byte("x"))
	if len(a) != 64 {
		t.Errorf("Key() length = %d, want 64 hex chars", len(a))
	}
	if a != Key(bibliography.FormatBibTeX, []byte("x")) {
		t.Error("Key() is not deterministic")
	}
	if a == Key(bibliography.FormatBibTeX, []byte("y")) {
		t.Error("Key() collides for different content")
	}
	if a == Key(bibliography.FormatCSLJSON, []byte("x")) {
		t.Error("Key() collides for different formats")
	}
}

func TestKey_SchemaVersion(t *testing.T) {
	t.Parallel()

	data := []byte("@book{a, title={T}}")
	current := Key(bibliography.FormatBibTeX, data)
	if current != keyWith(schemaVersion, bibliography.FormatBibTeX, data) {
		t.Error("Key() does not use the current schema version")
	}
	if current == keyWith("bib-1", bibliography.FormatBibTeX, data) {
		t.Error("Key() unchanged across schema versions")
	}
}

func TestLoaderUsesStore(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.json")
	writeFile(t, path, `[{"id":"doe2021","title":"Cached","issued":{"date-parts":[[2021]]}}]`)

	l := bibliography.Loader{Cache: s}
	first, err := l.Load([]string{path}, dir)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() after first load = %d, want 1", s.Len())
	}
	second, err := l.Load([]string{path}, dir)
	if err != nil {
		t.Fatalf("second Load() unexpected error: %v", err)
	}
	if diff := cmp.Diff(first.Entries(), second.Entries()); diff != "" {
		t.Errorf("cached load mismatch (-want +got):\n%s", diff)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
