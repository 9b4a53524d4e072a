package mirror

import (
	"context"
	"errors"
	"testing"
)

func TestRefreshPopulatesSnapshot(t *testing.T) {
	c := NewCollection(func(_ context.Context, ownerID string) ([]string, error) {
		return []string{"a", "b"}, nil
	})

	if c.Loaded() {
		t.Fatal("collection loaded before first refresh")
	}
	if err := c.Refresh(context.Background(), "u1"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !c.Loaded() {
		t.Fatal("collection not loaded after refresh")
	}
	got := c.Snapshot()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Snapshot() = %v, want [a b]", got)
	}
}

func TestRefreshFailureKeepsStaleSnapshot(t *testing.T) {
	fail := false
	loadErr := errors.New("store down")
	c := NewCollection(func(_ context.Context, _ string) ([]string, error) {
		if fail {
			return nil, loadErr
		}
		return []string{"a"}, nil
	})

	if err := c.Refresh(context.Background(), "u1"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	fail = true
	if err := c.Refresh(context.Background(), "u1"); !errors.Is(err, loadErr) {
		t.Fatalf("Refresh() error = %v, want %v", err, loadErr)
	}
	if got := c.Snapshot(); len(got) != 1 || got[0] != "a" {
		t.Errorf("Snapshot() after failed refresh = %v, want stale [a]", got)
	}
	if !c.Loaded() {
		t.Error("Loaded() = false after failed refresh, want stale snapshot kept")
	}
	if !errors.Is(c.Err(), loadErr) {
		t.Errorf("Err() = %v, want %v", c.Err(), loadErr)
	}
}

func TestPrependIsOptimistic(t *testing.T) {
	c := NewCollection(func(_ context.Context, _ string) ([]string, error) {
		return []string{"old"}, nil
	})
	if err := c.Refresh(context.Background(), "u1"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	c.Prepend("new")
	got := c.Snapshot()
	if len(got) != 2 || got[0] != "new" {
		t.Errorf("Snapshot() = %v, want [new old]", got)
	}
}

func TestResetDiscardsInFlightRefresh(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewCollection(func(_ context.Context, _ string) ([]string, error) {
		close(started)
		<-release
		return []string{"stale-owner"}, nil
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Refresh(context.Background(), "u1")
	}()

	<-started
	c.Reset()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if c.Loaded() {
		t.Error("Loaded() = true, want refresh discarded after Reset")
	}
	if got := c.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() = %v, want empty after Reset", got)
	}
}

func TestRegistryResetAll(t *testing.T) {
	a := NewCollection(func(_ context.Context, _ string) ([]int, error) { return []int{1}, nil })
	b := NewCollection(func(_ context.Context, _ string) ([]int, error) { return []int{2}, nil })
	for _, c := range []*Collection[int]{a, b} {
		if err := c.Refresh(context.Background(), "u1"); err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
	}

	r := NewRegistry()
	r.Add(a)
	r.Add(b)
	r.ResetAll()

	if a.Loaded() || b.Loaded() {
		t.Error("collections still loaded after ResetAll")
	}
}
