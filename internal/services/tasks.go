package services

import (
	"context"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/schedule"
	"gantt-planner-api/internal/store"
)

// TaskService exposes the scheduling engine's edit operations on stored projects.
type TaskService struct {
	env *Env
}

func NewTaskService(env *Env) *TaskService {
	return &TaskService{env: env}
}

// TaskUpdate is a partial update of the non-structural fields of a task.
type TaskUpdate struct {
	schedule.Details
	SkipWeekends       *bool
	AutoAdjustWeekends *bool
}

// ListTasks returns the tasks of a project owned by userID.
func (s *TaskService) ListTasks(ctx context.Context, userID, projectID uint) ([]models.Task, error) {
	if _, err := s.env.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.env.projectTasks(ctx, projectID)
}

// GetTask returns one task if userID owns its project.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID uint) (*models.Task, error) {
	t, err := s.env.Store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.env.authorize(ctx, userID, t.ProjectID); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTask validates, schedules and stores a new task in a project.
func (s *TaskService) CreateTask(ctx context.Context, userID, projectID uint, t models.Task) (*schedule.Result, error) {
	if _, err := s.env.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	t.ID = 0
	t.ProjectID = projectID
	return s.env.mutate(ctx, projectID, realtime.TasksChanged, func(tx *store.Store, snap *schedule.Snapshot) (*schedule.Result, error) {
		if err := checkTags(ctx, tx, projectID, t.TagIDs); err != nil {
			return nil, err
		}
		resolved, warnings, err := schedule.ResolveNewTask(snap, t)
		if err != nil {
			return nil, err
		}
		if err := tx.CreateTask(ctx, &resolved); err != nil {
			return nil, err
		}
		return &schedule.Result{Task: resolved, Warnings: warnings}, nil
	})
}

// UpdateTask applies detail and weekend-policy changes as one edit.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint, u TaskUpdate) (*schedule.Result, error) {
	return s.edit(ctx, userID, taskID, func(tx *store.Store, snap *schedule.Snapshot) (*schedule.Result, error) {
		if t, ok := snap.Get(taskID); ok {
			if err := checkTags(ctx, tx, t.ProjectID, u.TagIDs); err != nil {
				return nil, err
			}
		}
		res, err := schedule.ApplyDetailsEdit(snap, taskID, u.Details)
		if err != nil {
			return nil, err
		}
		if u.SkipWeekends == nil && u.AutoAdjustWeekends == nil {
			return res, nil
		}
		skip, auto := res.Task.SkipWeekends, res.Task.AutoAdjustWeekends
		if u.SkipWeekends != nil {
			skip = *u.SkipWeekends
		}
		if u.AutoAdjustWeekends != nil {
			auto = *u.AutoAdjustWeekends
		}
		policy, err := schedule.ApplyPolicyEdit(snap, taskID, skip, auto)
		if err != nil {
			return nil, err
		}
		return merge(res, policy), nil
	})
}

// MoveTask sets a task's dates, as a form edit or a drag on the timeline does.
func (s *TaskService) MoveTask(ctx context.Context, userID, taskID uint, start, end calendar.Date) (*schedule.Result, error) {
	return s.edit(ctx, userID, taskID, func(_ *store.Store, snap *schedule.Snapshot) (*schedule.Result, error) {
		return schedule.ApplyManualDateEdit(snap, taskID, start, end)
	})
}

// SetDuration changes how many days a task lasts.
func (s *TaskService) SetDuration(ctx context.Context, userID, taskID uint, duration int) (*schedule.Result, error) {
	return s.edit(ctx, userID, taskID, func(_ *store.Store, snap *schedule.Snapshot) (*schedule.Result, error) {
		return schedule.ApplyDurationEdit(snap, taskID, duration)
	})
}

// SetDependencies replaces a task's predecessors and offset.
func (s *TaskService) SetDependencies(ctx context.Context, userID, taskID uint, deps []uint, offsetDays int) (*schedule.Result, error) {
	return s.edit(ctx, userID, taskID, func(_ *store.Store, snap *schedule.Snapshot) (*schedule.Result, error) {
		return schedule.ApplyDependencyConfig(snap, taskID, deps, offsetDays)
	})
}

// SetSync points a task at a reference task, or clears its sync when ref is nil.
func (s *TaskService) SetSync(ctx context.Context, userID, taskID uint, ref *uint, syncType models.SyncType) (*schedule.Result, error) {
	return s.edit(ctx, userID, taskID, func(_ *store.Store, snap *schedule.Snapshot) (*schedule.Result, error) {
		return schedule.ApplySyncConfig(snap, taskID, ref, syncType)
	})
}

// DeleteTask removes a task and reschedules whatever depended on it.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) (*schedule.Result, error) {
	t, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return s.env.mutate(ctx, t.ProjectID, realtime.TasksDeleted, func(_ *store.Store, snap *schedule.Snapshot) (*schedule.Result, error) {
		return schedule.ApplyTaskDeletion(snap, taskID)
	})
}

func (s *TaskService) edit(ctx context.Context, userID, taskID uint, op editFunc) (*schedule.Result, error) {
	t, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return s.env.mutate(ctx, t.ProjectID, realtime.TasksChanged, op)
}

// merge folds a second edit of the same task into the first one's result.
func merge(first, second *schedule.Result) *schedule.Result {
	changed := make(map[uint]int)
	out := &schedule.Result{Task: second.Task}
	for _, list := range [][]models.Task{first.Changed, second.Changed} {
		for _, t := range list {
			if i, ok := changed[t.ID]; ok {
				out.Changed[i] = t
				continue
			}
			changed[t.ID] = len(out.Changed)
			out.Changed = append(out.Changed, t)
		}
	}
	out.Warnings = append(append(out.Warnings, first.Warnings...), second.Warnings...)
	return out
}
