package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/excel"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/schedule"
	"gantt-planner-api/internal/store"
)

// ErrInvalidWorkbook is returned when an upload is not a readable xlsx file.
var ErrInvalidWorkbook = errors.New("invalid workbook")

// ImportReport summarises one spreadsheet import.
type ImportReport struct {
	Imported    int                `json:"imported"`
	Tasks       []models.Task      `json:"tasks"`
	Warnings    []schedule.Warning `json:"warnings"`
	RowWarnings []excel.RowWarning `json:"rowWarnings"`
}

// ImportService moves tasks between projects and spreadsheets.
type ImportService struct {
	env *Env
}

func NewImportService(env *Env) *ImportService {
	return &ImportService{env: env}
}

// Import adds every usable row of an xlsx workbook to a project as a new task. Rows are
// inserted first so row-number dependencies can be remapped to task IDs, then the new
// tasks are scheduled together. Problems with single rows or edges become warnings.
func (s *ImportService) Import(ctx context.Context, userID, projectID uint, r io.Reader) (*ImportReport, error) {
	if _, err := s.env.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	rows, rowWarnings, err := excel.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	report := &ImportReport{
		Tasks:       []models.Task{},
		Warnings:    []schedule.Warning{},
		RowWarnings: rowWarnings,
	}
	if report.RowWarnings == nil {
		report.RowWarnings = []excel.RowWarning{}
	}
	if len(rows) == 0 {
		return report, nil
	}

	res, err := s.env.mutate(ctx, projectID, realtime.TasksImported, func(tx *store.Store, snap *schedule.Snapshot) (*schedule.Result, error) {
		created := make([]models.Task, len(rows))
		rowIDs := make(map[int]uint, len(rows))
		for i, row := range rows {
			t, err := insertRow(ctx, tx, projectID, row)
			if err != nil {
				return nil, fmt.Errorf("import row %d: %w", row.Index, err)
			}
			created[i] = t
			rowIDs[row.Index] = t.ID
		}

		var warnings []schedule.Warning
		ids := make([]uint, len(created))
		for i, t := range created {
			deps, remapWarnings := schedule.RemapRowDependencies(t.ID, rows[i].Dependencies, func(row int) (uint, bool) {
				id, ok := rowIDs[row]
				return id, ok
			})
			warnings = append(warnings, remapWarnings...)
			t.Dependencies = deps
			snap.Put(t)
			ids[i] = t.ID
		}
		res := schedule.ResolveImported(snap, ids)
		res.Warnings = append(warnings, res.Warnings...)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	report.Imported = len(rows)
	report.Tasks = res.Changed
	report.Warnings = res.Warnings
	return report, nil
}

func insertRow(ctx context.Context, tx *store.Store, projectID uint, row excel.Row) (models.Task, error) {
	var tagIDs models.IDList
	for _, name := range row.Tags {
		tag, err := tx.FindOrCreateTag(ctx, projectID, name, "")
		if err != nil {
			return models.Task{}, err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	t := models.Task{
		ProjectID:          projectID,
		Name:               row.Name,
		StartDate:          row.Start.String(),
		EndDate:            row.End.String(),
		Duration:           calendar.DurationBetween(row.Start, row.End, row.SkipWeekends),
		Progress:           row.Progress,
		Comments:           row.Comments,
		SkipWeekends:       row.SkipWeekends,
		AutoAdjustWeekends: row.AutoAdjustWeekends,
		TagIDs:             tagIDs.Normalize(),
	}
	if err := tx.CreateTask(ctx, &t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Export writes a project's tasks as an xlsx workbook.
func (s *ImportService) Export(ctx context.Context, userID, projectID uint, w io.Writer) error {
	if _, err := s.env.authorize(ctx, userID, projectID); err != nil {
		return err
	}
	tasks, err := s.env.projectTasks(ctx, projectID)
	if err != nil {
		return err
	}
	tags, err := s.env.Store.ListTags(ctx, projectID)
	if err != nil {
		return err
	}
	return excel.Export(w, tasks, tags)
}
