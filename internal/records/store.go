package records

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Record is the shape shared by every kind the store can hold. R is the
// pointer type itself (for example *domain.Order).
type Record[R any] interface {
	RecordID() string
	OwnerKey() string
	Created() *time.Time
	SetCreated(t *time.Time)
	StampCreated(now time.Time)
	StampUpdated(now time.Time)
	Clone() R
}

// Option customises a Store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for create/update stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type entry[R any] struct {
	rec R
	seq uint64
}

// Store is the in-memory authoritative map for one record kind. It is the
// only component that mutates the map; every record crossing its boundary is
// cloned.
type Store[R Record[R]] struct {
	mu      sync.RWMutex
	entries map[string]entry[R]
	seq     uint64
	now     func() time.Time
}

// New creates an empty store.
func New[R Record[R]](opts ...Option) *Store[R] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[R]{
		entries: make(map[string]entry[R]),
		now:     o.now,
	}
}

// Create inserts rec unless its ID is already present. A missing create time
// is stamped on rec before it is stored.
func (s *Store[R]) Create(rec R) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.RecordID()
	if _, exists := s.entries[id]; exists {
		return false
	}
	rec.StampCreated(s.now())
	s.seq++
	s.entries[id] = entry[R]{rec: rec.Clone(), seq: s.seq}
	return true
}

// Get returns a copy of the record stored under id.
func (s *Store[R]) Get(id string) (R, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		var zero R
		return zero, false
	}
	return e.rec.Clone(), true
}

// Update replaces the stored record wholesale and stamps its update time.
func (s *Store[R]) Update(rec R) bool {
	_, applied := s.UpdateIf(rec, nil)
	return applied
}

// UpdateIf replaces the stored record when allow accepts the current copy.
// allow runs under the write lock, so the decision and the write are atomic.
// The stored create time always survives the replacement.
func (s *Store[R]) UpdateIf(rec R, allow func(current R) bool) (found, applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.RecordID()
	current, ok := s.entries[id]
	if !ok {
		return false, false
	}
	if allow != nil && !allow(current.rec) {
		return true, false
	}
	rec.SetCreated(copyTime(current.rec.Created()))
	rec.StampUpdated(s.now())
	s.entries[id] = entry[R]{rec: rec.Clone(), seq: current.seq}
	return true, true
}

// Delete removes the record stored under id.
func (s *Store[R]) Delete(id string) bool {
	_, applied := s.DeleteIf(id, nil)
	return applied
}

// DeleteIf removes the record when allow accepts the current copy.
func (s *Store[R]) DeleteIf(id string, allow func(current R) bool) (found, applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[id]
	if !ok {
		return false, false
	}
	if allow != nil && !allow(current.rec) {
		return true, false
	}
	delete(s.entries, id)
	return true, true
}

// ListAll returns every record, newest create time first, undated records last.
func (s *Store[R]) ListAll() []R {
	return s.ListBy(nil, ByCreatedDesc[R])
}

// ListByOwner returns the records whose owner key equals owner exactly.
// A blank owner yields an empty list.
func (s *Store[R]) ListByOwner(owner string) []R {
	if strings.TrimSpace(owner) == "" {
		return []R{}
	}
	return s.ListBy(func(r R) bool { return r.OwnerKey() == owner }, ByCreatedDesc[R])
}

// ListBy returns copies of the records accepted by match (all when nil),
// stably sorted by cmp. Records that compare equal keep insertion order.
func (s *Store[R]) ListBy(match func(R) bool, cmp func(a, b R) int) []R {
	s.mu.RLock()
	selected := make([]entry[R], 0, len(s.entries))
	for _, e := range s.entries {
		if match == nil || match(e.rec) {
			selected = append(selected, entry[R]{rec: e.rec.Clone(), seq: e.seq})
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(selected, func(a, b entry[R]) int {
		if cmp != nil {
			if c := cmp(a.rec, b.rec); c != 0 {
				return c
			}
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	out := make([]R, len(selected))
	for i, e := range selected {
		out[i] = e.rec
	}
	return out
}

// Snapshot returns copies of every record in insertion order.
func (s *Store[R]) Snapshot() []R {
	return s.ListBy(nil, nil)
}

// Replace clears the store and loads recs in order. A repeated ID keeps the
// last copy.
func (s *Store[R]) Replace(recs []R) {
	entries := make(map[string]entry[R], len(recs))
	var seq uint64
	for _, rec := range recs {
		id := rec.RecordID()
		if prev, ok := entries[id]; ok {
			entries[id] = entry[R]{rec: rec.Clone(), seq: prev.seq}
			continue
		}
		seq++
		entries[id] = entry[R]{rec: rec.Clone(), seq: seq}
	}

	s.mu.Lock()
	s.entries = entries
	s.seq = seq
	s.mu.Unlock()
}

// Len reports the number of stored records.
func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ByCreatedDesc orders by create time, newest first; nil times sort last.
func ByCreatedDesc[R Record[R]](a, b R) int {
	return compareTimesDesc(a.Created(), b.Created())
}

func compareTimesDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(*a)
}

// TimeDesc builds a comparator over any time accessor, newest first, nil last.
func TimeDesc[R any](at func(R) *time.Time) func(a, b R) int {
	return func(a, b R) int {
		return compareTimesDesc(at(a), at(b))
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
