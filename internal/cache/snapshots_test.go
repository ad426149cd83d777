package cache

import (
	"sync"
	"testing"
	"time"

	"gantt-planner-api/internal/models"
)

func tasks(names ...string) []models.Task {
	out := make([]models.Task, 0, len(names))
	for i, n := range names {
		out = append(out, models.Task{ID: uint(i + 1), Name: n, Dependencies: models.IDList{7}})
	}
	return out
}

func TestSnapshots_SetGet_NoTTL(t *testing.T) {
	c := NewSnapshots(0)
	c.Set(1, tasks("a", "b"))
	got, ok := c.Get(1)
	if !ok || len(got) != 2 || got[1].Name != "b" {
		t.Fatalf("expected hit with two tasks, got ok=%v tasks=%v", ok, got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
	if _, ok := c.Get(2); ok {
		t.Fatalf("expected miss for unknown project")
	}
}

func TestSnapshots_ReturnsCopies(t *testing.T) {
	c := NewSnapshots(0)
	in := tasks("a")
	c.Set(1, in)
	in[0].Dependencies[0] = 99

	got, _ := c.Get(1)
	got[0].Name = "changed"
	again, _ := c.Get(1)
	if again[0].Name != "a" || again[0].Dependencies[0] != 7 {
		t.Fatalf("cache entry was mutated through a returned or stored slice: %+v", again[0])
	}
}

func TestSnapshots_TTL_Expiry(t *testing.T) {
	c := NewSnapshots(time.Second)

	// Freeze time via now indirection
	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	c.Set(1, tasks("a"))
	if _, ok := c.Get(1); !ok {
		t.Fatalf("expected hit before expiry")
	}

	base = base.Add(2 * time.Second)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected miss after expiry")
	}
	c.PurgeExpired()
	if c.Len() != 0 {
		t.Fatalf("expected Len=0 after purge, got %d", c.Len())
	}
}

func TestSnapshots_Invalidate(t *testing.T) {
	c := NewSnapshots(time.Minute)
	c.Set(1, tasks("a"))
	c.Set(2, tasks("b"))
	c.Invalidate(1)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected project 1 to be invalidated")
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestSnapshots_SetIfCurrent_SkipsFillsOlderThanAnInvalidate(t *testing.T) {
	c := NewSnapshots(time.Minute)
	v := c.Version(1)
	c.Invalidate(1)
	if c.SetIfCurrent(1, v, tasks("old")) {
		t.Fatalf("expected fill read before the invalidate to be dropped")
	}
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected no entry after a dropped fill")
	}

	v = c.Version(1)
	if !c.SetIfCurrent(1, v, tasks("new")) {
		t.Fatalf("expected fill with the current version to be stored")
	}
	got, ok := c.Get(1)
	if !ok || got[0].Name != "new" {
		t.Fatalf("expected the new rows, got ok=%v tasks=%v", ok, got)
	}
	if c.Version(2) != 0 {
		t.Fatalf("expected other projects to keep version 0, got %d", c.Version(2))
	}
}

func TestSnapshots_Concurrent(t *testing.T) {
	c := NewSnapshots(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				c.Set(id, tasks("a"))
				_, _ = c.Get(id)
				if r%10 == 0 {
					c.Invalidate(id)
				}
			}
		}(uint(i))
	}
	wg.Wait()
}
