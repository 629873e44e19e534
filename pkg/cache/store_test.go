package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/recall-ai/recall/pkg/models"
)

func storeKeys(s *entryStore) []string {
	var keys []string
	s.each(func(e *models.Entry) bool {
		keys = append(keys, e.Key)
		return true
	})
	return keys
}

func TestEntryStoreInsertionOrder(t *testing.T) {
	s := newEntryStore()
	for _, k := range []string{"c", "a", "b"} {
		s.put(&models.Entry{Key: k})
	}
	require.Equal(t, []string{"c", "a", "b"}, storeKeys(s))
	require.Equal(t, 3, s.size())
}

func TestEntryStoreReplaceKeepsPosition(t *testing.T) {
	s := newEntryStore()
	s.put(&models.Entry{Key: "a", Answer: "one"})
	s.put(&models.Entry{Key: "b"})
	s.put(&models.Entry{Key: "a", Answer: "two"})

	require.Equal(t, 2, s.size())
	require.Equal(t, []string{"a", "b"}, storeKeys(s))
	e, ok := s.get("a")
	require.True(t, ok)
	require.Equal(t, "two", e.Answer)
}

func TestEntryStoreDelete(t *testing.T) {
	s := newEntryStore()
	s.put(&models.Entry{Key: "a"})
	s.put(&models.Entry{Key: "b"})

	require.True(t, s.delete("a"))
	require.False(t, s.delete("a"))
	require.Equal(t, 1, s.size())
	_, ok := s.get("a")
	require.False(t, ok)
	require.Equal(t, []string{"b"}, storeKeys(s))
}

func TestEntryStoreClear(t *testing.T) {
	s := newEntryStore()
	s.put(&models.Entry{Key: "a"})
	s.clear()
	require.Equal(t, 0, s.size())
	require.Empty(t, storeKeys(s))

	s.put(&models.Entry{Key: "b"})
	require.Equal(t, 1, s.size())
}

func TestEntryStoreSnapshotCopies(t *testing.T) {
	s := newEntryStore()
	s.put(&models.Entry{Key: "a", Answer: "one", CreatedAt: time.Now()})

	snap := s.snapshot()
	snap["a"] = models.Entry{Key: "a", Answer: "mutated"}

	e, ok := s.get("a")
	require.True(t, ok)
	require.Equal(t, "one", e.Answer)
}
