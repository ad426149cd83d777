package schedule

import (
	"fmt"
	"strings"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/models"
)

// validateFields checks the rules that need nothing but the task itself.
func validateFields(t *models.Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return validationError(t.ID, "name", ErrEmptyName)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return validationError(t.ID, "progress", ErrInvalidProgress)
	}
	if t.Duration < 0 {
		return validationError(t.ID, "duration", ErrInvalidDuration)
	}
	if t.OffsetDays < 0 {
		return validationError(t.ID, "offsetDays", ErrInvalidOffset)
	}
	for _, field := range []struct{ name, value string }{{"startDate", t.StartDate}, {"endDate", t.EndDate}} {
		if field.value == "" {
			continue
		}
		if _, err := calendar.Parse(field.value); err != nil {
			return validationError(t.ID, field.name, fmt.Errorf("%w: %q", ErrInvalidDate, field.value))
		}
	}
	if t.ID != 0 && t.Dependencies.Contains(t.ID) {
		return validationError(t.ID, "dependencies", ErrSelfDependency)
	}
	if t.SyncedTaskID == nil {
		if t.SyncType != models.SyncNone {
			return validationError(t.ID, "syncType", fmt.Errorf("%w: %q without a synced task", ErrInvalidSyncType, t.SyncType))
		}
		return nil
	}
	if t.ID != 0 && *t.SyncedTaskID == t.ID {
		return validationError(t.ID, "syncedTaskId", ErrSelfSync)
	}
	if !t.SyncType.Valid() {
		return validationError(t.ID, "syncType", fmt.Errorf("%w: %q", ErrInvalidSyncType, t.SyncType))
	}
	return nil
}

// checkReferences rejects dependency or sync references to tasks outside s that t gained
// over before. References t already had are left to resolution, which skips and reports
// the ones that no longer exist. before is nil for a task being created.
func checkReferences(s *Snapshot, before, t *models.Task) error {
	for _, dep := range t.Dependencies {
		if before != nil && before.Dependencies.Contains(dep) {
			continue
		}
		if !s.Has(dep) {
			return integrityError(t.ID, "dependencies", fmt.Errorf("%w: %d", ErrUnknownTask, dep))
		}
	}
	if t.SyncedTaskID == nil {
		return nil
	}
	if before != nil && before.SyncedTaskID != nil && *before.SyncedTaskID == *t.SyncedTaskID {
		return nil
	}
	if !s.Has(*t.SyncedTaskID) {
		return integrityError(t.ID, "syncedTaskId", fmt.Errorf("%w: %d", ErrUnknownTask, *t.SyncedTaskID))
	}
	return nil
}

// checkCycle rejects a configuration of id that would put it on a cycle.
func checkCycle(s *Snapshot, id uint) error {
	if path := BuildGraph(s).CycleThrough(id); path != nil {
		return &Error{Kind: KindCycle, TaskID: id, Path: path, Err: ErrCycle}
	}
	return nil
}

// Validate audits a whole project: every cycle in the combined dependency and sync
// graph and every reference to a task that no longer exists.
func Validate(s *Snapshot) []Warning {
	var out []Warning
	for _, id := range s.IDs() {
		t, _ := s.Get(id)
		for _, dep := range t.Dependencies {
			if !s.Has(dep) {
				out = append(out, Warning{Kind: WarnMissingDependency, TaskID: id, RefID: dep,
					Message: fmt.Sprintf("dependency %d does not exist", dep)})
			}
		}
		if t.SyncedTaskID != nil && !s.Has(*t.SyncedTaskID) {
			out = append(out, Warning{Kind: WarnMissingSync, TaskID: id, RefID: *t.SyncedTaskID,
				Message: fmt.Sprintf("synced task %d does not exist", *t.SyncedTaskID)})
		}
	}
	for _, cycle := range BuildGraph(s).Cycles() {
		out = append(out, Warning{Kind: WarnCycle, TaskID: cycle[0],
			Message: "circular dependency: " + FormatPath(cycle)})
	}
	return out
}
