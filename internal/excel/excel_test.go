package excel

import (
	"bytes"
	"testing"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx in memory from rows of cell values.
func workbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParse_ReadsRows(t *testing.T) {
	buf := workbook(t, "Tasks", [][]interface{}{
		{"Name", "Start Date", "End Date", "Progress", "Dependencies", "Tags", "Comments"},
		{"Design", "2025-01-06", "2025-01-10", "50%", "", "Design, UX,design", "first pass"},
		{"Build", "13/01/2025", "17/01/2025", 0.25, "1", "dev", ""},
		{"Ship", 45663, 45664, 100, "1; 2", "", ""},
	})

	rows, warnings, err := Parse(buf)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "Design", rows[0].Name)
	assert.Equal(t, calendar.MustParse("2025-01-06"), rows[0].Start)
	assert.Equal(t, calendar.MustParse("2025-01-10"), rows[0].End)
	assert.Equal(t, 50, rows[0].Progress)
	assert.Equal(t, []string{"design", "ux"}, rows[0].Tags)
	assert.Equal(t, "first pass", rows[0].Comments)
	assert.True(t, rows[0].SkipWeekends)
	assert.True(t, rows[0].AutoAdjustWeekends)

	assert.Equal(t, calendar.MustParse("2025-01-13"), rows[1].Start)
	assert.Equal(t, calendar.MustParse("2025-01-17"), rows[1].End)
	assert.Equal(t, 25, rows[1].Progress)
	assert.Equal(t, []int{1}, rows[1].Dependencies)

	assert.Equal(t, calendar.MustParse("2025-01-06"), rows[2].Start)
	assert.Equal(t, calendar.MustParse("2025-01-07"), rows[2].End)
	assert.Equal(t, 100, rows[2].Progress)
	assert.Equal(t, []int{1, 2}, rows[2].Dependencies)
}

func TestParse_SkipsBadRowsKeepingNumbering(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]interface{}{
		{"Task", "Start", "End"},
		{"", "2025-01-06", "2025-01-07"},
		{"No dates", "", ""},
		{"Backwards", "2025-01-10", "2025-01-06"},
		{},
		{"Good", "2025-01-06", "2025-01-07"},
	})

	rows, warnings, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Good", rows[0].Name)
	assert.Equal(t, 5, rows[0].Index)

	require.Len(t, warnings, 3)
	assert.Equal(t, 1, warnings[0].Row)
	assert.Contains(t, warnings[0].Message, "missing task name")
	assert.Equal(t, 2, warnings[1].Row)
	assert.Contains(t, warnings[1].Message, "start date")
	assert.Equal(t, 3, warnings[2].Row)
	assert.Contains(t, warnings[2].Message, "before start date")
}

func TestParse_PositionalHeaderAndCellWarnings(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]interface{}{
		{"A", "B", "C", "D", "E"},
		{"Only", "2025-01-06", "2025-01-08", "lots", "x, 2"},
	})

	rows, warnings, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Only", rows[0].Name)
	assert.Equal(t, 0, rows[0].Progress)
	assert.Equal(t, []int{2}, rows[0].Dependencies)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message, "progress")
	assert.Contains(t, warnings[1].Message, `"x"`)
}

func TestParse_RejectsNonWorkbook(t *testing.T) {
	_, _, err := Parse(bytes.NewBufferString("name,start,end\n"))
	require.Error(t, err)
}

func TestParseProgress(t *testing.T) {
	cases := map[string]int{
		"50":   50,
		"50%":  50,
		"0.5":  50,
		"1":    1,
		"0":    0,
		"150":  100,
		"-3":   0,
		"33.4": 33,
	}
	for in, want := range cases {
		got, err := ParseProgress(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseProgress("half")
	require.Error(t, err)
}

func TestParseDependencies(t *testing.T) {
	rows, bad := ParseDependencies("1, 3;4  0 a")
	assert.Equal(t, []int{1, 3, 4}, rows)
	assert.Equal(t, []string{"0", "a"}, bad)

	rows, bad = ParseDependencies("")
	assert.Empty(t, rows)
	assert.Empty(t, bad)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("45663")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", d.String())

	d, err = ParseDate("6 Jan 2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", d.String())

	_, err = ParseDate("soon")
	require.ErrorIs(t, err, calendar.ErrInvalidDate)
	_, err = ParseDate("")
	require.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestExport_RoundTripsThroughParse(t *testing.T) {
	ref := uint(10)
	tasks := []models.Task{
		{ID: 10, Name: "Design", StartDate: "2025-03-03", EndDate: "2025-03-05", Duration: 3, Progress: 40,
			TagIDs: models.IDList{7}, Comments: "wireframes", SkipWeekends: true, AutoAdjustWeekends: true,
			Attachments: []models.Attachment{{Name: "brief.pdf"}}},
		{ID: 12, Name: "Build", StartDate: "2025-03-06", EndDate: "2025-03-07", Duration: 2,
			Dependencies: models.IDList{10, 99}, TagIDs: models.IDList{7, 8}, SyncedTaskID: nil},
		{ID: 15, Name: "Review", StartDate: "2025-03-03", EndDate: "2025-03-05", Duration: 3,
			SyncedTaskID: &ref, SyncType: models.SyncStartStart, SkipWeekends: true},
	}
	tags := []models.Tag{{ID: 7, Name: "design"}, {ID: 8, Name: "dev"}}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, tasks, tags))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	header, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, Header, header[0])
	assert.Equal(t, "brief.pdf", header[1][8])
	require.NoError(t, f.Close())

	rows, warnings, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, rows, 3)

	assert.Equal(t, "Design", rows[0].Name)
	assert.Equal(t, 40, rows[0].Progress)
	assert.Equal(t, []string{"design"}, rows[0].Tags)
	assert.Equal(t, "wireframes", rows[0].Comments)

	assert.Equal(t, []int{1}, rows[1].Dependencies)
	assert.Equal(t, []string{"design", "dev"}, rows[1].Tags)
	assert.False(t, rows[1].SkipWeekends)
	assert.False(t, rows[1].AutoAdjustWeekends)

	assert.True(t, rows[2].SkipWeekends)
	assert.False(t, rows[2].AutoAdjustWeekends)
}

func TestTemplate_IsImportable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Template(&buf))

	rows, warnings, err := Parse(&buf)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, rows, 3)
	assert.Equal(t, "Kickoff", rows[0].Name)
	assert.Equal(t, []int{2}, rows[2].Dependencies)
	assert.Equal(t, []string{"dev", "backend"}, rows[2].Tags)
}
