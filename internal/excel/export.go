package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gantt-planner-api/internal/models"

	"github.com/xuri/excelize/v2"
)

// Header is the column set of exports and templates. Parse reads it back.
var Header = []string{
	"Name", "Start Date", "End Date", "Duration", "Progress", "Dependencies",
	"Tags", "Comments", "Attachments", "Skip Weekends", "Auto Adjust Weekends",
}

var columnWidths = map[string]float64{"A": 32, "B": 14, "C": 14, "F": 16, "G": 24, "H": 40, "I": 30}

// newWorkbook creates a workbook whose only sheet carries the styled header row.
func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		f.Close()
		return nil, err
	}
	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Export writes tasks as a workbook. Dependencies are written as row numbers of this
// sheet and tags by name, so the file can be imported again into another project.
func Export(w io.Writer, tasks []models.Task, tags []models.Tag) error {
	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	rowOf := make(map[uint]int, len(tasks))
	for i, t := range tasks {
		rowOf[t.ID] = i + 1
	}
	tagName := make(map[uint]string, len(tags))
	for _, tag := range tags {
		tagName[tag.ID] = tag.Name
	}

	for i, t := range tasks {
		var deps, names, files []string
		for _, id := range t.Dependencies {
			if row, ok := rowOf[id]; ok {
				deps = append(deps, strconv.Itoa(row))
			}
		}
		for _, id := range t.TagIDs {
			if name, ok := tagName[id]; ok {
				names = append(names, name)
			}
		}
		for _, a := range t.Attachments {
			files = append(files, a.Name)
		}
		values := []interface{}{
			t.Name, t.StartDate, t.EndDate, t.Duration, t.Progress,
			strings.Join(deps, ", "), strings.Join(names, ", "), t.Comments,
			strings.Join(files, ", "), yesNo(t.SkipWeekends), yesNo(t.AutoAdjustWeekends),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}

// Template writes an empty import workbook with a few sample rows.
func Template(w io.Writer) error {
	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	samples := [][]interface{}{
		{"Kickoff", "2025-01-06", "2025-01-07", 2, 0, "", "planning", "Agree on scope", "", "Yes", "Yes"},
		{"Design", "2025-01-08", "2025-01-14", 5, 0, "1", "design", "", "", "Yes", "Yes"},
		{"Build", "2025-01-15", "2025-01-28", 10, 0, "2", "dev, backend", "", "", "Yes", "Yes"},
	}
	for i := range samples {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &samples[i]); err != nil {
			return err
		}
	}
	return f.Write(w)
}
