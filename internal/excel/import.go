package excel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gantt-planner-api/internal/calendar"

	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet exports and templates write; imports fall back to the first sheet.
const SheetName = "Tasks"

// Row is one task read from an import sheet.
type Row struct {
	// Index is the 1-based data row number; Dependencies refer to other rows by it.
	Index              int
	Name               string
	Start              calendar.Date
	End                calendar.Date
	Progress           int
	Dependencies       []int
	Tags               []string
	Comments           string
	SkipWeekends       bool
	AutoAdjustWeekends bool
}

// RowWarning reports a row, or a cell of it, that could not be used.
type RowWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type column int

const (
	colName column = iota
	colStart
	colEnd
	colProgress
	colDependencies
	colTags
	colComments
	colSkipWeekends
	colAutoAdjust
	colCount
)

var headerAliases = map[string]column{
	"name":                 colName,
	"task":                 colName,
	"task name":            colName,
	"start":                colStart,
	"start date":           colStart,
	"end":                  colEnd,
	"end date":             colEnd,
	"progress":             colProgress,
	"progress (%)":         colProgress,
	"dependencies":         colDependencies,
	"depends on":           colDependencies,
	"tags":                 colTags,
	"comments":             colComments,
	"skip weekends":        colSkipWeekends,
	"auto adjust weekends": colAutoAdjust,
	"auto adjust":          colAutoAdjust,
}

// layout maps each known column to its index in the sheet, -1 when absent.
type layout [colCount]int

// readLayout matches the header row by name. A header that names none of the known
// columns is taken as the positional order name, start, end, progress, dependencies,
// tags, comments.
func readLayout(header []string) layout {
	var l layout
	for i := range l {
		l[i] = -1
	}
	found := false
	for i, h := range header {
		if c, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok && l[c] < 0 {
			l[c] = i
			found = true
		}
	}
	if !found {
		for c := colName; c <= colComments; c++ {
			l[c] = int(c)
		}
	}
	return l
}

func (l layout) cell(row []string, c column) string {
	i := l[c]
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Parse reads task rows from an xlsx workbook. The first row is the header. Rows
// without a name or with unusable dates are skipped and reported; they still count
// for row numbering so dependency numbers keep matching what the user sees.
func Parse(r io.Reader) ([]Row, []RowWarning, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	// raw values keep date cells as serial numbers instead of locale-formatted text
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	l := readLayout(records[0])
	var rows []Row
	var warnings []RowWarning
	for i, record := range records[1:] {
		index := i + 1
		if blank(record) {
			continue
		}
		row, rowWarnings, ok := parseRow(l, record, index)
		warnings = append(warnings, rowWarnings...)
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, warnings, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(l layout, record []string, index int) (Row, []RowWarning, bool) {
	var warnings []RowWarning
	warn := func(format string, args ...any) {
		warnings = append(warnings, RowWarning{Row: index, Message: fmt.Sprintf(format, args...)})
	}

	row := Row{Index: index, SkipWeekends: true, AutoAdjustWeekends: true}
	row.Name = l.cell(record, colName)
	if row.Name == "" {
		warn("missing task name; row skipped")
		return row, warnings, false
	}
	var err error
	if row.Start, err = ParseDate(l.cell(record, colStart)); err != nil {
		warn("start date: %v; row skipped", err)
		return row, warnings, false
	}
	if row.End, err = ParseDate(l.cell(record, colEnd)); err != nil {
		warn("end date: %v; row skipped", err)
		return row, warnings, false
	}
	if row.End.Before(row.Start) {
		warn("end date %s is before start date %s; row skipped", row.End, row.Start)
		return row, warnings, false
	}

	if v := l.cell(record, colProgress); v != "" {
		if row.Progress, err = ParseProgress(v); err != nil {
			warn("progress %q is not a number; using 0", v)
		}
	}
	deps, bad := ParseDependencies(l.cell(record, colDependencies))
	for _, token := range bad {
		warn("dependency %q is not a row number; ignored", token)
	}
	row.Dependencies = deps
	row.Tags = ParseTags(l.cell(record, colTags))
	row.Comments = l.cell(record, colComments)
	if v := l.cell(record, colSkipWeekends); v != "" {
		row.SkipWeekends = parseBool(v, true)
	}
	if v := l.cell(record, colAutoAdjust); v != "" {
		row.AutoAdjustWeekends = parseBool(v, true)
	}
	return row, warnings, true
}

// ParseDate reads a date cell: YYYY-MM-DD, DD/MM/YYYY, the other formats
// calendar.ParseFlexible knows, or an Excel serial day number.
func ParseDate(v string) (calendar.Date, error) {
	if v == "" {
		return calendar.Date{}, calendar.ErrInvalidDate
	}
	if d, err := calendar.ParseFlexible(v); err == nil {
		return d, nil
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial < 1 {
		return calendar.Date{}, fmt.Errorf("%w: %q", calendar.ErrInvalidDate, v)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("%w: %q", calendar.ErrInvalidDate, v)
	}
	return calendar.FromTime(t), nil
}

// ParseProgress reads "50", "50%" or a percent-formatted cell's raw fraction such as
// "0.5", clamped to [0, 100].
func ParseProgress(v string) (int, error) {
	v = strings.TrimSpace(v)
	percent := strings.HasSuffix(v, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
	if err != nil {
		return 0, err
	}
	if !percent && f > 0 && f < 1 {
		f *= 100
	}
	return int(math.Round(math.Max(0, math.Min(100, f)))), nil
}

// ParseDependencies splits "1, 3;4" into row numbers. Tokens that are not positive
// integers are returned separately.
func ParseDependencies(v string) (rows []int, bad []string) {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	})
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			bad = append(bad, field)
			continue
		}
		rows = append(rows, n)
	}
	return rows, bad
}

// ParseTags splits a comma-separated tag list, lower-cased and without duplicates.
func ParseTags(v string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(v, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y", "true", "1", "x":
		return true
	case "no", "n", "false", "0":
		return false
	}
	return fallback
}
