// Package snapshot persists the cache's entry map across restarts.
package snapshot

import (
	"errors"

	"github.com/recall-ai/recall/pkg/models"
)

// FormatVersion identifies the snapshot layout understood by this build.
// A mismatched version on load resets the cache rather than migrating.
const FormatVersion = 1

// ErrVersionMismatch is returned by Load when the persisted snapshot was
// written by a different format version. Callers discard the snapshot and
// start fresh; there is no partial migration.
var ErrVersionMismatch = errors.New("snapshot format version mismatch")

// Store loads and saves cache snapshots. Implementations are single-process
// and need not be safe for concurrent use; the cache serializes access.
type Store interface {
	// Load returns all persisted entries. A missing snapshot is not an
	// error: it yields an empty map.
	Load() (map[string]models.Entry, error)

	// Save replaces the persisted snapshot with entries.
	Save(entries map[string]models.Entry) error

	// Name identifies the driver in stats output.
	Name() string

	Close() error
}
