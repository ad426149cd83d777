package schedule

import (
	"gantt-planner-api/internal/models"
)

// Snapshot is an in-memory view of one project's tasks, keyed by ID and kept in
// creation order. Relationships are plain ID references.
type Snapshot struct {
	order []uint
	tasks map[uint]*models.Task
}

// NewSnapshot copies tasks into a new snapshot. Later duplicates of an ID replace earlier ones.
func NewSnapshot(tasks []models.Task) *Snapshot {
	s := &Snapshot{tasks: make(map[uint]*models.Task, len(tasks))}
	for _, t := range tasks {
		s.Put(t)
	}
	return s
}

// Len returns the number of tasks.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// Get returns the task with the given ID. The pointer stays owned by the snapshot.
func (s *Snapshot) Get(id uint) (*models.Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

// Has reports whether id is a task of this snapshot.
func (s *Snapshot) Has(id uint) bool {
	_, ok := s.tasks[id]
	return ok
}

// Put inserts or replaces a task, keeping the original position on replace.
func (s *Snapshot) Put(t models.Task) {
	c := t.Clone()
	if _, ok := s.tasks[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.tasks[t.ID] = &c
}

// Remove deletes a task; it does not touch references held by other tasks.
func (s *Snapshot) Remove(id uint) {
	if _, ok := s.tasks[id]; !ok {
		return
	}
	delete(s.tasks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

// IDs returns task IDs in creation order.
func (s *Snapshot) IDs() []uint {
	return append([]uint(nil), s.order...)
}

// Tasks returns copies of all tasks in creation order.
func (s *Snapshot) Tasks() []models.Task {
	out := make([]models.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Clone())
	}
	return out
}

// Clone returns an independent deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		order: append([]uint(nil), s.order...),
		tasks: make(map[uint]*models.Task, len(s.tasks)),
	}
	for id, t := range s.tasks {
		cp := t.Clone()
		c.tasks[id] = &cp
	}
	return c
}

// replaceWith swaps in the state of another snapshot after a successful edit.
func (s *Snapshot) replaceWith(o *Snapshot) {
	s.order = o.order
	s.tasks = o.tasks
}
