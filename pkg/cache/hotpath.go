package cache

import "container/list"

// hotKey identifies a hot-path slot by the caller's literal inputs,
// before any normalization.
type hotKey struct {
	query string
	scope string
}

type hotSlot struct {
	key      hotKey
	storeKey string
}

// hotPath is a small LRU mapping recently resolved literal queries to
// the store key that answered them.
type hotPath struct {
	max   int
	byKey map[hotKey]*list.Element
	order *list.List // of *hotSlot, most recent first
}

func newHotPath(max int) *hotPath {
	return &hotPath{
		max:   max,
		byKey: make(map[hotKey]*list.Element),
		order: list.New(),
	}
}

// get returns the store key recorded for k and marks it recently used.
func (h *hotPath) get(k hotKey) (string, bool) {
	el, ok := h.byKey[k]
	if !ok {
		return "", false
	}
	h.order.MoveToFront(el)
	return el.Value.(*hotSlot).storeKey, true
}

// put records a resolved query, evicting the least recently used slot
// when full.
func (h *hotPath) put(k hotKey, storeKey string) {
	if el, ok := h.byKey[k]; ok {
		el.Value.(*hotSlot).storeKey = storeKey
		h.order.MoveToFront(el)
		return
	}
	h.byKey[k] = h.order.PushFront(&hotSlot{key: k, storeKey: storeKey})
	for h.order.Len() > h.max {
		oldest := h.order.Back()
		h.order.Remove(oldest)
		delete(h.byKey, oldest.Value.(*hotSlot).key)
	}
}

func (h *hotPath) drop(k hotKey) {
	if el, ok := h.byKey[k]; ok {
		h.order.Remove(el)
		delete(h.byKey, k)
	}
}

func (h *hotPath) len() int { return len(h.byKey) }

func (h *hotPath) clear() {
	h.byKey = make(map[hotKey]*list.Element)
	h.order.Init()
}
