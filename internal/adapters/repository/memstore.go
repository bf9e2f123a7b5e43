package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
)

// MemoryStore is a mutex-guarded in-process Store.
type MemoryStore struct {
	settings

	mu      sync.RWMutex
	events  map[string]model.Event
	results map[string][]model.Result // by event ID, insertion order
	owner   map[string]string         // result ID -> event ID
	closed  bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		settings: defaultSettings(),
		events:   make(map[string]model.Event),
		results:  make(map[string][]model.Result),
		owner:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	return s
}

func (s *MemoryStore) ListEvents(_ context.Context) (out []model.Event, err error) {
	defer func(start time.Time) { observe("list_events", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out = make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b model.Event) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *MemoryStore) ActiveEvent(_ context.Context) (e model.Event, err error) {
	defer func(start time.Time) { observe("active_event", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Event{}, ErrClosed
	}

	if e, ok := s.activeLocked(); ok {
		return e, nil
	}
	return model.Event{}, fmt.Errorf("active event: %w", ErrNotFound)
}

func (s *MemoryStore) activeLocked() (model.Event, bool) {
	for _, e := range s.events {
		if e.Active {
			return e, true
		}
	}
	return model.Event{}, false
}

func (s *MemoryStore) GetEvent(_ context.Context, id string) (e model.Event, err error) {
	defer func(start time.Time) { observe("get_event", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Event{}, ErrClosed
	}

	e, ok := s.events[id]
	if !ok {
		return model.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (s *MemoryStore) InsertEvent(_ context.Context, e model.Event) (_ model.Event, err error) {
	defer func(start time.Time) { observe("insert_event", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Event{}, ErrClosed
	}

	if e.Active {
		if cur, ok := s.activeLocked(); ok {
			return model.Event{}, fmt.Errorf("event %s is already active: %w", cur.ID, ErrConflict)
		}
	}
	e.ID = s.newID()
	e.CreatedAt = s.now().UTC()
	s.events[e.ID] = e
	return e, nil
}

func (s *MemoryStore) DeactivateAll(_ context.Context) (ids []string, err error) {
	defer func(start time.Time) { observe("deactivate_all", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	for id, e := range s.events {
		if e.Active {
			e.Active = false
			s.events[id] = e
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) DeactivateEvent(_ context.Context, id string) (err error) {
	defer func(start time.Time) { observe("deactivate_event", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	e, ok := s.events[id]
	if !ok {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	e.Active = false
	s.events[id] = e
	return nil
}

func (s *MemoryStore) InsertResult(_ context.Context, r model.Result) (_ model.Result, err error) {
	defer func(start time.Time) { observe("insert_result", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Result{}, ErrClosed
	}

	if _, ok := s.events[r.EventID]; !ok {
		return model.Result{}, fmt.Errorf("event %s: %w", r.EventID, ErrNotFound)
	}
	r.ID = s.newID()
	r.CreatedAt = s.now().UTC()
	s.results[r.EventID] = append(s.results[r.EventID], r)
	s.owner[r.ID] = r.EventID
	return r, nil
}

func (s *MemoryStore) DeleteResult(_ context.Context, id string) (_ model.Result, _ bool, err error) {
	defer func(start time.Time) { observe("delete_result", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Result{}, false, ErrClosed
	}

	eventID, ok := s.owner[id]
	if !ok {
		return model.Result{}, false, nil
	}
	delete(s.owner, id)
	rows := s.results[eventID]
	i := slices.IndexFunc(rows, func(r model.Result) bool { return r.ID == id })
	if i < 0 {
		return model.Result{}, false, nil
	}
	removed := rows[i]
	s.results[eventID] = slices.Delete(rows, i, i+1)
	return removed, true, nil
}

func (s *MemoryStore) ListResults(_ context.Context, eventID string) (_ []model.Result, err error) {
	defer func(start time.Time) { observe("list_results", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return slices.Clone(s.results[eventID]), nil
}

// Close marks the store closed; later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
