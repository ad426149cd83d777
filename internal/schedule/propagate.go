package schedule

import (
	"fmt"

	"gantt-planner-api/internal/models"
)

// Propagate re-derives every task downstream of the task id after its dates were
// committed to s. s is updated in place; the returned tasks are the ones that changed,
// in the order they were recomputed.
func Propagate(s *Snapshot, id uint) ([]models.Task, []Warning) {
	changed, warnings := propagate(s, []uint{id}, nil)
	return collect(s, changed), warnings
}

// propagate walks the part of the graph reachable from changed and recompute in
// topological order, so every task is recomputed at most once even when several paths
// lead to it. Tasks in changed are taken as final. Tasks in recompute are resolved
// again unconditionally; any other task only when one of its sources changed.
//
// When stored data already holds a cycle no task on it ever becomes ready. The walk
// then enters the cycle at the first waiting task with a settled source and carries on
// from there. A task met again after it was already settled closes the cycle; the walk
// does not re-enter it and reports the cut.
func propagate(s *Snapshot, changed, recompute []uint) ([]uint, []Warning) {
	g := BuildGraph(s)
	roots := append(append([]uint(nil), changed...), recompute...)
	reach := g.downstream(roots)

	pinned := make(map[uint]bool, len(changed))
	dirty := make(map[uint]bool, len(reach))
	for _, id := range changed {
		pinned[id] = true
		dirty[id] = true
	}
	forced := make(map[uint]bool, len(recompute))
	for _, id := range recompute {
		forced[id] = true
	}

	indeg := make(map[uint]int, len(reach))
	for id := range reach {
		for _, src := range g.Sources(id) {
			if reach[src] {
				indeg[id]++
			}
		}
	}

	var queue []uint
	queued := make(map[uint]bool, len(reach))
	enqueue := func(id uint) {
		if !queued[id] {
			queued[id] = true
			queue = append(queue, id)
		}
	}
	// edited tasks are authoritative for this run, so they start the walk even when
	// something upstream of them is also being recomputed
	for _, id := range changed {
		enqueue(id)
	}
	for _, id := range g.order {
		if reach[id] && indeg[id] == 0 {
			enqueue(id)
		}
	}

	var out []uint
	var warnings []Warning
	settled := make(map[uint]bool, len(reach))
	for {
		if len(queue) == 0 {
			next, ok := breakIn(g, reach, settled)
			if !ok {
				break
			}
			enqueue(next)
		}
		id := queue[0]
		queue = queue[1:]
		settled[id] = true

		if !pinned[id] && (forced[id] || anyDirty(g.Sources(id), dirty)) {
			t, _ := s.Get(id)
			res, err := ResolveDates(t, s)
			warnings = append(warnings, res.Warnings...)
			if err != nil {
				warnings = append(warnings, Warning{Kind: WarnResolveFailed, TaskID: id,
					Message: fmt.Sprintf("could not be rescheduled: %v", err)})
			} else if res.Apply(t) {
				dirty[id] = true
				out = append(out, id)
			}
		}

		for _, f := range g.Followers(id) {
			if !reach[f] {
				continue
			}
			if settled[f] {
				warnings = append(warnings, Warning{Kind: WarnCycle, TaskID: f, RefID: id,
					Message: fmt.Sprintf("cycle detected: task %d was already rescheduled in this run; not revisited", f)})
				continue
			}
			indeg[f]--
			if indeg[f] <= 0 {
				enqueue(f)
			}
		}
	}
	return out, warnings
}

// breakIn picks the task the walk resumes from once every remaining task waits on a
// cycle: the first unsettled one with a settled source, else the first unsettled one.
func breakIn(g *Graph, reach, settled map[uint]bool) (uint, bool) {
	var fallback uint
	found := false
	for _, id := range g.order {
		if !reach[id] || settled[id] {
			continue
		}
		for _, src := range g.Sources(id) {
			if settled[src] {
				return id, true
			}
		}
		if !found {
			fallback, found = id, true
		}
	}
	return fallback, found
}

func anyDirty(ids []uint, dirty map[uint]bool) bool {
	for _, id := range ids {
		if dirty[id] {
			return true
		}
	}
	return false
}

// collect copies the tasks with the given IDs out of s, skipping duplicates and removed tasks.
func collect(s *Snapshot, ids []uint) []models.Task {
	seen := make(map[uint]bool, len(ids))
	out := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if t, ok := s.Get(id); ok {
			out = append(out, t.Clone())
		}
	}
	return out
}
