package schedule

import (
	"strings"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/models"
)

// Result is what every edit returns: the edited task and every other task the edit
// touched, for the caller to persist and push to clients.
type Result struct {
	Task     models.Task   `json:"task"`
	Changed  []models.Task `json:"changed"`
	Deleted  []uint        `json:"deleted,omitempty"`
	Warnings []Warning     `json:"warnings"`
}

// Details are the fields of a task that play no part in scheduling.
type Details struct {
	Name        *string
	Progress    *int
	Comments    *string
	Attachments []models.Attachment
	TagIDs      models.IDList
}

// edit runs mutate on a private copy of s, validates and resolves the task, propagates
// to its followers, and only then commits the copy back into s. Any error leaves s as it was.
func edit(s *Snapshot, id uint, structural bool, mutate func(t *models.Task) error) (*Result, error) {
	work := s.Clone()
	t, ok := work.Get(id)
	if !ok {
		return nil, integrityError(id, "id", ErrTaskNotFound)
	}
	before := t.Clone()
	if err := mutate(t); err != nil {
		return nil, err
	}
	if err := validateFields(t); err != nil {
		return nil, err
	}
	if structural {
		if err := checkReferences(work, &before, t); err != nil {
			return nil, err
		}
		if err := checkCycle(work, id); err != nil {
			return nil, err
		}
	}

	res, err := ResolveDates(t, work)
	if err != nil {
		return nil, err
	}
	res.Apply(t)

	changed, warnings := propagate(work, []uint{id}, nil)
	s.replaceWith(work)
	final, _ := s.Get(id)
	return &Result{
		Task:     final.Clone(),
		Changed:  collect(s, changed),
		Warnings: append(res.Warnings, warnings...),
	}, nil
}

// ApplyManualDateEdit sets a task's dates from a form or a timeline drag. For a manual
// task the dates are taken as given. For a task driven by dependencies or a sync
// reference only the span is kept: the edit becomes a duration change and the mode
// re-derives the dates it owns.
func ApplyManualDateEdit(s *Snapshot, id uint, start, end calendar.Date) (*Result, error) {
	return edit(s, id, false, func(t *models.Task) error {
		if start.IsZero() || end.IsZero() {
			return validationError(id, "startDate", ErrInvalidDate)
		}
		if end.Before(start) {
			return validationError(id, "endDate", ErrEndBeforeStart)
		}
		mode := effectiveMode(t, s)
		skip := t.SkipWeekends
		if mode == ModeSync {
			ref, _ := s.Get(*t.SyncedTaskID)
			skip = ref.SkipWeekends
		}
		t.Duration = calendar.DurationBetween(start, end, skip)
		if mode == ModeManual {
			t.StartDate, t.EndDate = start.String(), end.String()
		}
		return nil
	})
}

// ApplyDurationEdit changes how long a task lasts. Manual tasks keep their start and
// move their end; derived tasks keep whichever date their mode fixes.
func ApplyDurationEdit(s *Snapshot, id uint, duration int) (*Result, error) {
	if duration < 1 {
		return nil, validationError(id, "duration", ErrInvalidDuration)
	}
	return edit(s, id, false, func(t *models.Task) error {
		t.Duration = duration
		if effectiveMode(t, s) != ModeManual {
			return nil
		}
		start, err := parseField(t, "startDate", t.StartDate)
		if err != nil {
			return err
		}
		t.EndDate = calendar.EndFromDuration(start, duration, t.SkipWeekends).String()
		return nil
	})
}

// ApplyDependencyConfig replaces a task's predecessors and offset. An empty list turns
// the task back into a manual one that keeps its current dates.
func ApplyDependencyConfig(s *Snapshot, id uint, dependencies []uint, offsetDays int) (*Result, error) {
	return edit(s, id, true, func(t *models.Task) error {
		t.Dependencies = models.IDList(dependencies).Normalize()
		t.OffsetDays = offsetDays
		return nil
	})
}

// ApplySyncConfig points a task at a reference task, or clears the sync when ref is nil.
// A cleared task keeps its current dates and policies.
func ApplySyncConfig(s *Snapshot, id uint, ref *uint, syncType models.SyncType) (*Result, error) {
	return edit(s, id, true, func(t *models.Task) error {
		if ref == nil {
			t.SyncedTaskID, t.SyncType = nil, models.SyncNone
			return nil
		}
		refID := *ref
		t.SyncedTaskID, t.SyncType = &refID, syncType
		return nil
	})
}

// ApplyPolicyEdit changes the weekend policies of a task. A synced task takes its
// policies from its reference, so for it the change has no lasting effect.
func ApplyPolicyEdit(s *Snapshot, id uint, skipWeekends, autoAdjustWeekends bool) (*Result, error) {
	return edit(s, id, false, func(t *models.Task) error {
		t.SkipWeekends, t.AutoAdjustWeekends = skipWeekends, autoAdjustWeekends
		return nil
	})
}

// ApplyDetailsEdit updates the fields that do not influence dates.
func ApplyDetailsEdit(s *Snapshot, id uint, d Details) (*Result, error) {
	return edit(s, id, false, func(t *models.Task) error {
		if d.Name != nil {
			t.Name = strings.TrimSpace(*d.Name)
		}
		if d.Progress != nil {
			t.Progress = *d.Progress
		}
		if d.Comments != nil {
			t.Comments = *d.Comments
		}
		if d.Attachments != nil {
			t.Attachments = d.Attachments
		}
		if d.TagIDs != nil {
			t.TagIDs = d.TagIDs.Normalize()
		}
		return nil
	})
}

// ResolveNewTask validates and schedules a task that has not been stored yet. Its
// references must exist in s. A new task has no followers, so nothing propagates.
func ResolveNewTask(s *Snapshot, t models.Task) (models.Task, []Warning, error) {
	t = t.Clone()
	t.Name = strings.TrimSpace(t.Name)
	t.Dependencies = t.Dependencies.Normalize()
	if err := validateFields(&t); err != nil {
		return models.Task{}, nil, err
	}
	if err := checkReferences(s, nil, &t); err != nil {
		return models.Task{}, nil, err
	}
	res, err := ResolveDates(&t, s)
	if err != nil {
		return models.Task{}, nil, err
	}
	res.Apply(&t)
	return t, res.Warnings, nil
}

// ApplyTaskDeletion removes a task and every reference to it: dependents drop it from
// their dependencies, sync followers stop mirroring it. Those tasks are rescheduled and
// the change propagates from there.
func ApplyTaskDeletion(s *Snapshot, id uint) (*Result, error) {
	work := s.Clone()
	deleted, ok := work.Get(id)
	if !ok {
		return nil, integrityError(id, "id", ErrTaskNotFound)
	}
	removed := deleted.Clone()

	var touched []uint
	for _, otherID := range work.IDs() {
		if otherID == id {
			continue
		}
		t, _ := work.Get(otherID)
		hit := false
		if t.Dependencies.Contains(id) {
			t.Dependencies = t.Dependencies.Without(id)
			hit = true
		}
		if t.SyncedTaskID != nil && *t.SyncedTaskID == id {
			t.SyncedTaskID, t.SyncType = nil, models.SyncNone
			hit = true
		}
		if hit {
			touched = append(touched, otherID)
		}
	}
	work.Remove(id)

	rescheduled, warnings := propagate(work, nil, touched)
	s.replaceWith(work)
	return &Result{
		Task:     removed,
		Changed:  collect(s, append(touched, rescheduled...)),
		Deleted:  []uint{id},
		Warnings: warnings,
	}, nil
}
