package orders

import (
	"sync"

	"github.com/forgeline-erp/forgeline-erp/internal/shared"
)

// DraftStore holds in-progress drafts in memory. The core assumes one
// interactive writer per draft; the store's mutex only serializes access
// across HTTP requests, the draft logic itself stays lock-free.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewDraftStore constructs an empty store.
func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]*Draft)}
}

// Put registers a new draft.
func (s *DraftStore) Put(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = d
}

// Apply runs fn against the identified draft while holding the store lock.
func (s *DraftStore) Apply(draftID string, fn func(*Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[draftID]
	if !ok {
		return shared.ErrNotFound
	}
	return fn(d)
}

// Snapshot returns a copy of the draft for read-only use.
func (s *DraftStore) Snapshot(draftID string) (Draft, error) {
	var out Draft
	err := s.Apply(draftID, func(d *Draft) error {
		out = *d
		out.Items = make([]LineItem, len(d.Items))
		for i, item := range d.Items {
			out.Items[i] = item
			out.Items[i].Batches = append([]ShipmentBatch(nil), item.Batches...)
		}
		return nil
	})
	return out, err
}

// Generation returns the draft's current generation token.
func (s *DraftStore) Generation(draftID string) (uint64, error) {
	var gen uint64
	err := s.Apply(draftID, func(d *Draft) error {
		gen = d.Generation
		return nil
	})
	return gen, err
}

// Remove deletes a draft, typically after it persisted.
func (s *DraftStore) Remove(draftID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftID)
}
