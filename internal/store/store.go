package store

import (
	"context"
	"errors"
	"fmt"

	"gantt-planner-api/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// TaskStore is the persistence the scheduling services need: a project's tasks are
// loaded as a whole, then every task an edit touched is written back.
type TaskStore interface {
	LoadProjectTasks(ctx context.Context, projectID uint) ([]models.Task, error)
	SaveTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id uint) error
}

// Store implements TaskStore and the project, tag and user queries over gorm.
type Store struct {
	db *gorm.DB
}

var _ TaskStore = (*Store)(nil)

// New wraps an open database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx runs fn inside one transaction; fn's store writes through it. An error from fn
// rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// LoadProjectTasks returns every task of a project in creation order.
func (s *Store) LoadProjectTasks(ctx context.Context, projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id asc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load tasks of project %d: %w", projectID, err)
	}
	return tasks, nil
}

// GetTask fetches one task by ID.
func (s *Store) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("task %d", id))
	}
	return &t, nil
}

// CreateTask inserts t and fills in its ID.
func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	return s.db.WithContext(ctx).Create(t).Error
}

// SaveTask writes every column of t.
func (s *Store) SaveTask(ctx context.Context, t *models.Task) error {
	return s.db.WithContext(ctx).Save(t).Error
}

// SaveTasks writes a batch of tasks, stopping at the first failure.
func (s *Store) SaveTasks(ctx context.Context, tasks []models.Task) error {
	for i := range tasks {
		if err := s.SaveTask(ctx, &tasks[i]); err != nil {
			return fmt.Errorf("save task %d: %w", tasks[i].ID, err)
		}
	}
	return nil
}

// DeleteTask removes a task row. References held by other tasks are the caller's concern.
func (s *Store) DeleteTask(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListOpenTasks returns every task across all projects that is not finished yet.
func (s *Store) ListOpenTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).Where("progress < ?", 100).Order("project_id asc, id asc").Find(&tasks).Error
	return tasks, err
}
