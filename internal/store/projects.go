package store

import (
	"context"
	"fmt"
	"strings"

	"gantt-planner-api/internal/models"

	"gorm.io/gorm"
)

// CreateProject inserts p.
func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	return s.db.WithContext(ctx).Create(p).Error
}

// GetProject fetches a project by ID.
func (s *Store) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("project %d", id))
	}
	return &p, nil
}

// ListProjects returns the projects of one user, newest first.
func (s *Store) ListProjects(ctx context.Context, userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&projects).Error
	return projects, err
}

// SaveProject writes every column of p.
func (s *Store) SaveProject(ctx context.Context, p *models.Project) error {
	return s.db.WithContext(ctx).Save(p).Error
}

// DeleteProject removes a project with its tasks and tags in one transaction.
func (s *Store) DeleteProject(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("project %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// ProjectsByID loads the given projects keyed by ID. Unknown IDs are absent from the map.
func (s *Store) ProjectsByID(ctx context.Context, ids []uint) (map[uint]models.Project, error) {
	out := make(map[uint]models.Project, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var projects []models.Project
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&projects).Error; err != nil {
		return nil, err
	}
	for _, p := range projects {
		out[p.ID] = p
	}
	return out, nil
}

// ListTags returns the tags of a project by name.
func (s *Store) ListTags(ctx context.Context, projectID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("name asc").Find(&tags).Error
	return tags, err
}

// GetTag fetches a tag by ID.
func (s *Store) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("tag %d", id))
	}
	return &tag, nil
}

// SaveTag inserts or updates a tag.
func (s *Store) SaveTag(ctx context.Context, tag *models.Tag) error {
	return s.db.WithContext(ctx).Save(tag).Error
}

// DeleteTag removes a tag row.
func (s *Store) DeleteTag(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Tag{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	return nil
}

// FindOrCreateTag returns the project's tag with the given name, creating it when missing.
// Names are compared lower-cased.
func (s *Store) FindOrCreateTag(ctx context.Context, projectID uint, name, color string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var tag models.Tag
	err := s.db.WithContext(ctx).
		Where(models.Tag{ProjectID: projectID, Name: name}).
		Attrs(models.Tag{Color: color}).
		FirstOrCreate(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// CreateUser inserts u; the username must be unused.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// GetUserByUsername looks a user up by login name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err, "user "+username)
	}
	return &u, nil
}

// GetUser fetches a user by ID.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("user %d", id))
	}
	return &u, nil
}

// UsersByID loads the given users keyed by ID.
func (s *Store) UsersByID(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
