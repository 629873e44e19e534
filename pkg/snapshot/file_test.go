package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/recall-ai/recall/pkg/models"
)

func testEntries(t *testing.T) map[string]models.Entry {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return map[string]models.Entry{
		"aaaa": {
			Key:          "aaaa",
			Question:     "What is the capital of France?",
			Answer:       "Paris",
			CreatedAt:    now,
			AccessCount:  3,
			LastAccessed: now.Add(time.Hour),
		},
		"bbbb": {
			Key:          "bbbb",
			Question:     "Largest ocean?",
			Answer:       "The Pacific",
			Context:      "geography",
			CreatedAt:    now.Add(time.Minute),
			AccessCount:  1,
			LastAccessed: now.Add(time.Minute),
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s := NewFileStore(path)

	want := testEntries(t)
	if err := s.Save(want); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d entries, want %d", len(got), len(want))
	}
	for k, w := range want {
		g, ok := got[k]
		if !ok {
			t.Fatalf("missing key %s after reload", k)
		}
		if g.Question != w.Question || g.Answer != w.Answer || g.Context != w.Context {
			t.Errorf("entry %s fields changed across round trip: %+v", k, g)
		}
		if !g.CreatedAt.Equal(w.CreatedAt) || !g.LastAccessed.Equal(w.LastAccessed) {
			t.Errorf("entry %s timestamps changed across round trip", k)
		}
		if g.AccessCount != w.AccessCount {
			t.Errorf("entry %s access count = %d, want %d", k, g.AccessCount, w.AccessCount)
		}
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent", "cache.json"))
	got, err := s.Load()
	if err != nil {
		t.Fatalf("missing snapshot should load empty, got error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("loaded %d entries from a missing file", len(got))
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Load()
	if err == nil {
		t.Fatal("expected an error for corrupt JSON")
	}
	if errors.Is(err, ErrVersionMismatch) {
		t.Error("corrupt JSON should not read as a version mismatch")
	}
}

func TestFileStoreVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	doc := map[string]any{versionKey: FormatVersion + 1}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Load()
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("err = %v, want ErrVersionMismatch", err)
	}
}

func TestFileStoreUnversionedDocument(t *testing.T) {
	// Snapshots written before versioning carry no tag; they must reset
	// rather than half-load.
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"aaaa":{"key":"aaaa"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Load()
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("err = %v, want ErrVersionMismatch", err)
	}
}

func TestFileStoreReservedKeyNotAnEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s := NewFileStore(path)
	if err := s.Save(testEntries(t)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got[versionKey]; ok {
		t.Error("reserved version key leaked into the entry map")
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "cache.json"))
	if err := s.Save(testEntries(t)); err != nil {
		t.Fatal(err)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".tmp") {
			t.Errorf("temp file %s left behind after save", f.Name())
		}
	}
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "cache.json")
	s := NewFileStore(path)
	if err := s.Save(testEntries(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	want := testEntries(t)
	if err := s.Save(want); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's map must not reach the store.
	want["cccc"] = models.Entry{Key: "cccc"}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(got))
	}
}

func TestMemoryStoreFailureInjection(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Save(testEntries(t)); err != nil {
		t.Fatal(err)
	}

	s.FailSaves(errors.New("disk full"))
	if err := s.Save(map[string]models.Entry{}); err == nil {
		t.Fatal("expected injected save error")
	}
	s.FailLoads(errors.New("permission denied"))
	if _, err := s.Load(); err == nil {
		t.Fatal("expected injected load error")
	}

	// Clearing the injections restores the store; the failed save must
	// not have replaced the held snapshot.
	s.FailSaves(nil)
	s.FailLoads(nil)
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(got))
	}
}
