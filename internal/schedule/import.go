package schedule

import (
	"fmt"

	"gantt-planner-api/internal/models"
)

// RowIDs maps 1-based import row numbers to the IDs the rows were stored under.
type RowIDs func(row int) (uint, bool)

// RemapRowDependencies turns row-number dependencies into task IDs. Rows that do not
// exist are dropped and reported against task.
func RemapRowDependencies(taskID uint, rows []int, ids RowIDs) (models.IDList, []Warning) {
	var out models.IDList
	var warnings []Warning
	for _, row := range rows {
		id, ok := ids(row)
		if !ok {
			warnings = append(warnings, Warning{Kind: WarnMissingDependency, TaskID: taskID,
				Message: fmt.Sprintf("dependency row %d does not exist; ignored", row)})
			continue
		}
		out = append(out, id)
	}
	return out.Normalize(), warnings
}

// ResolveImported schedules freshly imported tasks that are already in s with their
// dependencies remapped to IDs. References to unknown tasks are dropped, dependency edges
// that would close a cycle are cut, then the tasks are resolved in dependency order.
// Import never fails as a whole; every problem becomes a warning.
func ResolveImported(s *Snapshot, ids []uint) *Result {
	work := s.Clone()
	var warnings []Warning
	for _, id := range ids {
		t, ok := work.Get(id)
		if !ok {
			continue
		}
		candidates := t.Dependencies
		t.Dependencies = nil
		for _, dep := range candidates {
			if dep == id || !work.Has(dep) {
				warnings = append(warnings, Warning{Kind: WarnDroppedEdge, TaskID: id, RefID: dep,
					Message: fmt.Sprintf("dependency on %d is invalid; dropped", dep)})
				continue
			}
			t.Dependencies = append(t.Dependencies, dep)
			if path := BuildGraph(work).CycleThrough(id); path != nil {
				t.Dependencies = t.Dependencies[:len(t.Dependencies)-1]
				warnings = append(warnings, Warning{Kind: WarnDroppedEdge, TaskID: id, RefID: dep,
					Message: "dependency dropped, it would close a cycle: " + FormatPath(path)})
			}
		}
	}

	rescheduled, more := propagate(work, nil, ids)
	s.replaceWith(work)
	return &Result{
		Changed:  collect(s, append(append([]uint(nil), ids...), rescheduled...)),
		Warnings: append(warnings, more...),
	}
}
