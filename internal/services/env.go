package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gantt-planner-api/internal/cache"
	"gantt-planner-api/internal/logging"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/schedule"
	"gantt-planner-api/internal/store"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned for missing rows and for rows owned by another user alike.
var ErrNotFound = store.ErrNotFound

// Publisher pushes change events to connected clients.
type Publisher interface {
	Publish(e realtime.Event) (realtime.Event, error)
}

// Env bundles what the planner services share: the store, the read cache, the event
// publisher and one lock per project that serialises every write to it.
type Env struct {
	Store  *store.Store
	Cache  *cache.Snapshots
	Events Publisher

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewEnv wires the shared collaborators. cache and events may be nil.
func NewEnv(st *store.Store, c *cache.Snapshots, events Publisher) *Env {
	return &Env{Store: st, Cache: c, Events: events, locks: make(map[uint]*sync.Mutex)}
}

// lock enters the critical section of a project and returns the function that leaves it.
func (e *Env) lock(projectID uint) func() {
	e.mu.Lock()
	l, ok := e.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[projectID] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// authorize loads a project and checks that userID owns it.
func (e *Env) authorize(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	p, err := e.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}
	return p, nil
}

// projectTasks serves a project's tasks from the cache, loading them on a miss.
func (e *Env) projectTasks(ctx context.Context, projectID uint) ([]models.Task, error) {
	if e.Cache != nil {
		if tasks, ok := e.Cache.Get(projectID); ok {
			return tasks, nil
		}
	}
	var version uint64
	if e.Cache != nil {
		version = e.Cache.Version(projectID)
	}
	tasks, err := e.Store.LoadProjectTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if e.Cache != nil {
		e.Cache.SetIfCurrent(projectID, version, tasks)
	}
	return tasks, nil
}

// editFunc runs one engine operation against a freshly loaded snapshot. tx is the
// transaction the snapshot was read in, for operations that need to insert rows.
type editFunc func(tx *store.Store, snap *schedule.Snapshot) (*schedule.Result, error)

// mutate is the write path of every scheduling change: inside the project's critical
// section it loads the project's tasks, runs op, and writes every task op touched in one
// transaction. Nothing is written when op fails.
func (e *Env) mutate(ctx context.Context, projectID uint, eventType realtime.EventType, op editFunc) (*schedule.Result, error) {
	unlock := e.lock(projectID)
	defer unlock()

	var res *schedule.Result
	err := e.Store.WithTx(ctx, func(tx *store.Store) error {
		tasks, err := tx.LoadProjectTasks(ctx, projectID)
		if err != nil {
			return err
		}
		res, err = op(tx, schedule.NewSnapshot(tasks))
		if err != nil {
			return err
		}
		for _, id := range res.Deleted {
			if err := tx.DeleteTask(ctx, id); err != nil {
				return err
			}
		}
		if res.Task.ID != 0 && !contains(res.Deleted, res.Task.ID) {
			if err := tx.SaveTask(ctx, &res.Task); err != nil {
				return err
			}
		}
		return tx.SaveTasks(ctx, res.Changed)
	})
	if err != nil {
		return nil, err
	}
	if res.Changed == nil {
		res.Changed = []models.Task{}
	}
	if res.Warnings == nil {
		res.Warnings = []schedule.Warning{}
	}

	if e.Cache != nil {
		e.Cache.Invalidate(projectID)
	}
	logWarnings(projectID, res.Warnings)
	e.publish(projectID, eventType, affectedIDs(res))
	return res, nil
}

func (e *Env) publish(projectID uint, eventType realtime.EventType, taskIDs []uint) {
	if e.Events == nil {
		return
	}
	if _, err := e.Events.Publish(realtime.Event{Type: eventType, ProjectID: projectID, TaskIDs: taskIDs}); err != nil {
		logging.Logger.WithError(err).WithField("project_id", projectID).Warn("publish change event")
	}
}

func logWarnings(projectID uint, warnings []schedule.Warning) {
	for _, w := range warnings {
		logging.Logger.WithFields(logrus.Fields{
			"project_id":   projectID,
			"task_id":      w.TaskID,
			"ref_id":       w.RefID,
			"warning_kind": w.Kind,
		}).Warn(w.Message)
	}
}

func affectedIDs(res *schedule.Result) []uint {
	ids := make([]uint, 0, len(res.Changed)+len(res.Deleted)+1)
	if res.Task.ID != 0 {
		ids = append(ids, res.Task.ID)
	}
	ids = append(ids, res.Deleted...)
	for _, t := range res.Changed {
		ids = append(ids, t.ID)
	}
	return models.IDList(ids).Normalize()
}

func contains(ids []uint, id uint) bool {
	return models.IDList(ids).Contains(id)
}

// IsNotFound reports whether err means the requested row is missing or not visible.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
