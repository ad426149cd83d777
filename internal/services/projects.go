package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/schedule"
)

// ErrInvalidProject is returned for a project without a name or with unreadable dates.
var ErrInvalidProject = errors.New("invalid project")

// ProjectService manages projects and the project-wide views of their schedule.
type ProjectService struct {
	env *Env
}

func NewProjectService(env *Env) *ProjectService {
	return &ProjectService{env: env}
}

// ProjectInput carries the editable project fields; nil leaves a field unchanged.
type ProjectInput struct {
	Name      *string
	StartDate *string
	EndDate   *string
}

func (in ProjectInput) apply(p *models.Project) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = *in.EndDate
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProject)
	}
	var start, end calendar.Date
	var err error
	if p.StartDate != "" {
		if start, err = calendar.Parse(p.StartDate); err != nil {
			return fmt.Errorf("%w: startDate %q", ErrInvalidProject, p.StartDate)
		}
	}
	if p.EndDate != "" {
		if end, err = calendar.Parse(p.EndDate); err != nil {
			return fmt.Errorf("%w: endDate %q", ErrInvalidProject, p.EndDate)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidProject)
	}
	return nil
}

// Create stores a new project for userID.
func (s *ProjectService) Create(ctx context.Context, userID uint, in ProjectInput) (*models.Project, error) {
	p := &models.Project{UserID: userID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.env.Store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Authorize returns the project if userID owns it, ErrNotFound otherwise.
func (s *ProjectService) Authorize(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	return s.env.authorize(ctx, userID, projectID)
}

// List returns the projects of userID.
func (s *ProjectService) List(ctx context.Context, userID uint) ([]models.Project, error) {
	return s.env.Store.ListProjects(ctx, userID)
}

// Get returns a project with its tasks and tags.
func (s *ProjectService) Get(ctx context.Context, userID, projectID uint) (*models.ProjectWithTasks, error) {
	p, err := s.env.authorize(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.env.projectTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tags, err := s.env.Store.ListTags(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &models.ProjectWithTasks{Project: *p, Tasks: tasks, Tags: tags}, nil
}

// Update changes a project's name or planned dates.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uint, in ProjectInput) (*models.Project, error) {
	p, err := s.env.authorize(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.env.Store.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	s.env.publish(projectID, realtime.ProjectChanged, nil)
	return p, nil
}

// Delete removes a project with all its tasks and tags.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uint) error {
	if _, err := s.env.authorize(ctx, userID, projectID); err != nil {
		return err
	}
	unlock := s.env.lock(projectID)
	defer unlock()
	if err := s.env.Store.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	if s.env.Cache != nil {
		s.env.Cache.Invalidate(projectID)
	}
	s.env.publish(projectID, realtime.ProjectChanged, nil)
	return nil
}

// Validate audits a project's stored graph for cycles and dangling references.
func (s *ProjectService) Validate(ctx context.Context, userID, projectID uint) ([]schedule.Warning, error) {
	if _, err := s.env.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.env.projectTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	warnings := schedule.Validate(schedule.NewSnapshot(tasks))
	if warnings == nil {
		warnings = []schedule.Warning{}
	}
	return warnings, nil
}

// Tick is one column header of the timeline.
type Tick struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	ISOWeek int    `json:"isoWeek"`
	Weekend bool   `json:"weekend"`
}

// Timeline is the span a project's tasks cover and the header ticks for one scale.
type Timeline struct {
	Start string         `json:"start"`
	End   string         `json:"end"`
	Scale calendar.Scale `json:"scale"`
	Ticks []Tick         `json:"ticks"`
}

// Timeline computes the visible range of a project: from the earliest task start to the
// latest task end, falling back to the project's own dates, then to today.
func (s *ProjectService) Timeline(ctx context.Context, userID, projectID uint, scale calendar.Scale) (*Timeline, error) {
	p, err := s.env.authorize(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.env.projectTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var start, end calendar.Date
	for _, t := range tasks {
		ts, err1 := calendar.Parse(t.StartDate)
		te, err2 := calendar.Parse(t.EndDate)
		if err1 != nil || err2 != nil {
			continue
		}
		if start.IsZero() || ts.Before(start) {
			start = ts
		}
		if end.IsZero() || te.After(end) {
			end = te
		}
	}
	if start.IsZero() {
		start, _ = calendar.Parse(p.StartDate)
		end, _ = calendar.Parse(p.EndDate)
	}
	if start.IsZero() {
		start = calendar.Today()
	}
	if end.IsZero() || end.Before(start) {
		end = start
	}

	tl := &Timeline{Start: start.String(), End: end.String(), Scale: scale}
	for _, d := range calendar.Range(start, end, scale) {
		_, week := d.ISOWeek()
		tl.Ticks = append(tl.Ticks, Tick{Date: d.String(), Label: d.Format(), ISOWeek: week, Weekend: calendar.IsWeekend(d)})
	}
	return tl, nil
}
