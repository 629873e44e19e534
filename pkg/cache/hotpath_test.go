package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHotPathEvictsLeastRecentlyUsed(t *testing.T) {
	h := newHotPath(3)
	for i := 0; i < 3; i++ {
		h.put(hotKey{query: fmt.Sprintf("q%d", i)}, fmt.Sprintf("k%d", i))
	}

	// Touch q0 so q1 becomes the oldest slot.
	_, ok := h.get(hotKey{query: "q0"})
	require.True(t, ok)

	h.put(hotKey{query: "q3"}, "k3")
	require.Equal(t, 3, h.len())

	_, ok = h.get(hotKey{query: "q1"})
	require.False(t, ok)
	for _, q := range []string{"q0", "q2", "q3"} {
		_, ok := h.get(hotKey{query: q})
		require.True(t, ok, q)
	}
}

func TestHotPathScopeIsPartOfTheKey(t *testing.T) {
	h := newHotPath(10)
	h.put(hotKey{query: "q", scope: "a"}, "ka")
	h.put(hotKey{query: "q", scope: "b"}, "kb")

	require.Equal(t, 2, h.len())
	got, ok := h.get(hotKey{query: "q", scope: "a"})
	require.True(t, ok)
	require.Equal(t, "ka", got)
	_, ok = h.get(hotKey{query: "q"})
	require.False(t, ok)
}

func TestHotPathPutUpdatesExistingSlot(t *testing.T) {
	h := newHotPath(2)
	h.put(hotKey{query: "q"}, "old")
	h.put(hotKey{query: "q"}, "new")

	require.Equal(t, 1, h.len())
	got, ok := h.get(hotKey{query: "q"})
	require.True(t, ok)
	require.Equal(t, "new", got)
}

func TestHotPathDropAndClear(t *testing.T) {
	h := newHotPath(2)
	h.put(hotKey{query: "a"}, "ka")
	h.put(hotKey{query: "b"}, "kb")

	h.drop(hotKey{query: "a"})
	require.Equal(t, 1, h.len())
	h.drop(hotKey{query: "a"})
	require.Equal(t, 1, h.len())

	h.clear()
	require.Equal(t, 0, h.len())
	_, ok := h.get(hotKey{query: "b"})
	require.False(t, ok)
}
