package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/store"
)

var (
	// ErrInvalidTag is returned for a tag without a name.
	ErrInvalidTag = errors.New("tag name cannot be empty")
	// ErrUnknownTag is returned when a task refers to a tag outside its project.
	ErrUnknownTag = errors.New("unknown tag")
)

// TagService manages project tags.
type TagService struct {
	env *Env
}

func NewTagService(env *Env) *TagService {
	return &TagService{env: env}
}

// List returns the tags of a project.
func (s *TagService) List(ctx context.Context, userID, projectID uint) ([]models.Tag, error) {
	if _, err := s.env.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.env.Store.ListTags(ctx, projectID)
}

// Create adds a tag to a project, or returns the existing tag of that name.
func (s *TagService) Create(ctx context.Context, userID, projectID uint, name, color string) (*models.Tag, error) {
	if _, err := s.env.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidTag
	}
	tag, err := s.env.Store.FindOrCreateTag(ctx, projectID, name, color)
	if err != nil {
		return nil, err
	}
	s.env.publish(projectID, realtime.TagsChanged, nil)
	return tag, nil
}

// Update renames or recolours a tag.
func (s *TagService) Update(ctx context.Context, userID, tagID uint, name, color *string) (*models.Tag, error) {
	tag, err := s.owned(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, ErrInvalidTag
		}
		tag.Name = strings.ToLower(strings.TrimSpace(*name))
	}
	if color != nil {
		tag.Color = *color
	}
	if err := s.env.Store.SaveTag(ctx, tag); err != nil {
		return nil, err
	}
	s.env.publish(tag.ProjectID, realtime.TagsChanged, nil)
	return tag, nil
}

// Delete removes a tag and strips it from every task that carried it.
func (s *TagService) Delete(ctx context.Context, userID, tagID uint) error {
	tag, err := s.owned(ctx, userID, tagID)
	if err != nil {
		return err
	}
	unlock := s.env.lock(tag.ProjectID)
	defer unlock()

	var touched []uint
	err = s.env.Store.WithTx(ctx, func(tx *store.Store) error {
		tasks, err := tx.LoadProjectTasks(ctx, tag.ProjectID)
		if err != nil {
			return err
		}
		for i := range tasks {
			if !tasks[i].TagIDs.Contains(tagID) {
				continue
			}
			tasks[i].TagIDs = tasks[i].TagIDs.Without(tagID)
			if err := tx.SaveTask(ctx, &tasks[i]); err != nil {
				return err
			}
			touched = append(touched, tasks[i].ID)
		}
		return tx.DeleteTag(ctx, tagID)
	})
	if err != nil {
		return err
	}
	if s.env.Cache != nil {
		s.env.Cache.Invalidate(tag.ProjectID)
	}
	s.env.publish(tag.ProjectID, realtime.TagsChanged, touched)
	return nil
}

func (s *TagService) owned(ctx context.Context, userID, tagID uint) (*models.Tag, error) {
	tag, err := s.env.Store.GetTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if _, err := s.env.authorize(ctx, userID, tag.ProjectID); err != nil {
		return nil, err
	}
	return tag, nil
}

// checkTags rejects tag IDs that are not tags of the project.
func checkTags(ctx context.Context, st *store.Store, projectID uint, ids models.IDList) error {
	if len(ids) == 0 {
		return nil
	}
	tags, err := st.ListTags(ctx, projectID)
	if err != nil {
		return err
	}
	known := make(map[uint]bool, len(tags))
	for _, tag := range tags {
		known[tag.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: %d is not a tag of project %d", ErrUnknownTag, id, projectID)
		}
	}
	return nil
}
