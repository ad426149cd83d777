package cache

import (
	"sync"
	"time"

	"gantt-planner-api/internal/models"
)

// entry stores a project's tasks and the absolute expiration timestamp.
type entry struct {
	tasks     []models.Task
	expiresAt time.Time // zero means no expiration
}

// Snapshots caches the task list of each project for read endpoints. Writers must call
// Invalidate after every committed change; the TTL only bounds staleness from writes
// made by other processes (CLI imports) against the same database file.
type Snapshots struct {
	mu       sync.RWMutex
	ttl      time.Duration
	items    map[uint]entry
	versions map[uint]uint64
}

// NewSnapshots returns an empty cache. ttl <= 0 disables expiry.
func NewSnapshots(ttl time.Duration) *Snapshots {
	return &Snapshots{ttl: ttl, items: make(map[uint]entry), versions: make(map[uint]uint64)}
}

// now is a small indirection to allow test stubbing if needed.
var now = time.Now

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a copy of the cached tasks of a project.
func (c *Snapshots) Get(projectID uint) ([]models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[projectID]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && now().After(e.expiresAt) {
		// expired; treat as miss (lazy cleanup deferred to PurgeExpired)
		return nil, false
	}
	return cloneTasks(e.tasks), true
}

// Set stores a copy of tasks for a project.
func (c *Snapshots) Set(projectID uint, tasks []models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(projectID, tasks)
}

// Version returns the invalidation counter of a project. Read it before loading rows
// and hand it to SetIfCurrent.
func (c *Snapshots) Version(projectID uint) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[projectID]
}

// SetIfCurrent stores tasks only if the project was not invalidated since version was
// read, so rows loaded before a write never replace what the write committed.
func (c *Snapshots) SetIfCurrent(projectID uint, version uint64, tasks []models.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[projectID] != version {
		return false
	}
	c.store(projectID, tasks)
	return true
}

func (c *Snapshots) store(projectID uint, tasks []models.Task) {
	var exp time.Time
	if c.ttl > 0 {
		exp = now().Add(c.ttl)
	}
	c.items[projectID] = entry{tasks: cloneTasks(tasks), expiresAt: exp}
}

// Invalidate drops a project's entry and bumps its version.
func (c *Snapshots) Invalidate(projectID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, projectID)
	c.versions[projectID]++
}

// Len counts only non-expired entries.
func (c *Snapshots) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, e := range c.items {
		if e.expiresAt.IsZero() || now().Before(e.expiresAt) {
			count++
		}
	}
	return count
}

// PurgeExpired scans and removes expired entries.
func (c *Snapshots) PurgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := now()
	for k, e := range c.items {
		if !e.expiresAt.IsZero() && ts.After(e.expiresAt) {
			delete(c.items, k)
		}
	}
}
