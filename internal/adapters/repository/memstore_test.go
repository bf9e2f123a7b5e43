package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
)

func newTestMemoryStore() *MemoryStore {
	var (
		mu  sync.Mutex
		seq int
	)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return NewMemoryStore(
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return base.Add(time.Duration(seq) * time.Second)
		}),
	)
}

func TestMemoryStore_Events(t *testing.T) {
	ctx := context.Background()
	store := newTestMemoryStore()

	if _, err := store.ActiveEvent(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty store, got %v", err)
	}

	first, err := store.InsertEvent(ctx, model.Event{Name: "Girls 14 Years 3km", Active: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be assigned, got %+v", first)
	}

	// A second active insert collides with the single-active rule.
	if _, err := store.InsertEvent(ctx, model.Event{Name: "Boys Open 5km", Active: true}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	ids, err := store.DeactivateAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != first.ID {
		t.Errorf("expected [%s] deactivated, got %v", first.ID, ids)
	}

	second, err := store.InsertEvent(ctx, model.Event{Name: "Boys Open 5km", Active: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, err := store.ActiveEvent(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("expected active %s, got %s", second.ID, active.ID)
	}

	events, err := store.ListEvents(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[0].ID != second.ID || events[1].ID != first.ID {
		t.Errorf("expected newest first, got %+v", events)
	}
	if events[1].Active {
		t.Error("expected superseded event to be inactive")
	}

	if err := store.DeactivateEvent(ctx, second.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.DeactivateEvent(ctx, second.ID); err != nil {
		t.Errorf("expected repeated deactivate to succeed, got %v", err)
	}
	if err := store.DeactivateEvent(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetEvent(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Results(t *testing.T) {
	ctx := context.Background()
	store := newTestMemoryStore()

	ev, err := store.InsertEvent(ctx, model.Event{Name: "Girls 14 Years 3km", Active: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := store.InsertEvent(ctx, model.Event{Name: "Boys Open 5km"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.InsertResult(ctx, model.Result{EventID: "missing", RunnerName: "X", House: "Hay", Time: "05:00.00"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown event, got %v", err)
	}

	var ids []string
	for i, tm := range []string{"05:03.07", "04:59.99", "05:03.07"} {
		r, err := store.InsertResult(ctx, model.Result{EventID: ev.ID, RunnerName: fmt.Sprintf("Runner %d", i), House: "Hay", Time: tm})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, r.ID)
	}
	kept, err := store.InsertResult(ctx, model.Result{EventID: other.ID, RunnerName: "Other", House: "Jones", Time: "06:00.00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := store.ListResults(ctx, ev.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.ID != ids[i] {
			t.Errorf("expected insertion order %v, got %s at %d", ids, r.ID, i)
		}
	}

	removed, ok, err := store.DeleteResult(ctx, ids[1])
	if err != nil || !ok {
		t.Fatalf("expected delete to succeed, got ok=%v err=%v", ok, err)
	}
	if removed.EventID != ev.ID {
		t.Errorf("expected removed row to carry event %s, got %s", ev.ID, removed.EventID)
	}
	if _, ok, err := store.DeleteResult(ctx, ids[1]); ok || err != nil {
		t.Errorf("expected second delete to be a no-op, got ok=%v err=%v", ok, err)
	}

	results, _ = store.ListResults(ctx, ev.ID)
	if len(results) != 2 || results[0].ID != ids[0] || results[1].ID != ids[2] {
		t.Errorf("unexpected results after delete: %+v", results)
	}
	others, _ := store.ListResults(ctx, other.ID)
	if len(others) != 1 || others[0].ID != kept.ID {
		t.Errorf("expected other event untouched, got %+v", others)
	}

	// Mutating a returned slice must not leak into the store.
	results[0].RunnerName = "changed"
	again, _ := store.ListResults(ctx, ev.ID)
	if again[0].RunnerName == "changed" {
		t.Error("expected ListResults to return a copy")
	}
}

func TestMemoryStore_ConcurrentActiveInsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.InsertEvent(ctx, model.Event{Name: fmt.Sprintf("event %d", i), Active: true})
			if err == nil {
				mu.Lock()
				inserted++
				mu.Unlock()
			} else if !errors.Is(err, ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if inserted != 1 {
		t.Errorf("expected exactly one active insert to win, got %d", inserted)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.ListEvents(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := store.InsertEvent(ctx, model.Event{Name: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
