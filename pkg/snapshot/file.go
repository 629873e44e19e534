package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/recall-ai/recall/pkg/models"
)

// versionKey is reserved in the snapshot document and can never collide
// with an entry key, which is always hex.
const versionKey = "__version"

// FileStore persists snapshots as a single JSON document: a flat map of
// key to entry plus the reserved version field.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path. Directory creation is
// deferred to Load and Save so construction never fails.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot document. A missing file yields an empty map.
func (s *FileStore) Load() (map[string]models.Entry, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]models.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// Save atomically replaces the snapshot document, writing to a uniquely
// named temp file first so a crash mid-write never corrupts the snapshot.
func (s *FileStore) Save(entries map[string]models.Entry) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := encodeSnapshot(entries)
	if err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Name identifies the driver in stats output.
func (s *FileStore) Name() string { return "file" }

// Close is a no-op; the store holds no open handles between calls.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) ensureDir() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare snapshot dir: %w", err)
	}
	return nil
}

func encodeSnapshot(entries map[string]models.Entry) ([]byte, error) {
	doc := make(map[string]any, len(entries)+1)
	doc[versionKey] = FormatVersion
	for key, e := range entries {
		doc[key] = e
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (map[string]models.Entry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	version := 0
	if v, ok := raw[versionKey]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return nil, fmt.Errorf("parse snapshot version: %w", err)
		}
		delete(raw, versionKey)
	}
	if version != FormatVersion {
		return nil, ErrVersionMismatch
	}

	entries := make(map[string]models.Entry, len(raw))
	for key, msg := range raw {
		var e models.Entry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, fmt.Errorf("parse entry %s: %w", key, err)
		}
		entries[key] = e
	}
	return entries, nil
}
