package cache

import (
	"container/list"

	"github.com/recall-ai/recall/pkg/models"
)

// entryStore maps normalized-question keys to entries while preserving
// insertion order, so scans over the store are deterministic.
type entryStore struct {
	byKey map[string]*list.Element
	order *list.List // of *models.Entry
}

func newEntryStore() *entryStore {
	return &entryStore{
		byKey: make(map[string]*list.Element),
		order: list.New(),
	}
}

func (s *entryStore) get(key string) (*models.Entry, bool) {
	el, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*models.Entry), true
}

// put adds a new entry, or replaces an existing one without moving it
// in insertion order.
func (s *entryStore) put(e *models.Entry) {
	if el, ok := s.byKey[e.Key]; ok {
		el.Value = e
		return
	}
	s.byKey[e.Key] = s.order.PushBack(e)
}

func (s *entryStore) delete(key string) bool {
	el, ok := s.byKey[key]
	if !ok {
		return false
	}
	s.order.Remove(el)
	delete(s.byKey, key)
	return true
}

func (s *entryStore) clear() {
	s.byKey = make(map[string]*list.Element)
	s.order.Init()
}

// size recounts live entries rather than trusting a running counter.
func (s *entryStore) size() int { return len(s.byKey) }

// each walks entries in insertion order until fn returns false.
func (s *entryStore) each(fn func(*models.Entry) bool) {
	for el := s.order.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(*models.Entry)) {
			return
		}
	}
}

// entries returns all entries in insertion order. The slice is safe to
// reorder; the entries are not copies.
func (s *entryStore) entries() []*models.Entry {
	out := make([]*models.Entry, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*models.Entry))
	}
	return out
}

// snapshot copies every entry into a map suitable for persistence.
func (s *entryStore) snapshot() map[string]models.Entry {
	out := make(map[string]models.Entry, len(s.byKey))
	for el := s.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*models.Entry)
		out[e.Key] = *e
	}
	return out
}
