package schedule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyName       = errors.New("task name cannot be empty")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEndBeforeStart  = errors.New("end date is before start date")
	ErrInvalidDuration = errors.New("duration must be at least 1")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrInvalidOffset   = errors.New("offset days cannot be negative")
	ErrSelfDependency  = errors.New("task cannot depend on itself")
	ErrSelfSync        = errors.New("task cannot be synced to itself")
	ErrInvalidSyncType = errors.New("invalid sync type")
	ErrUnknownTask     = errors.New("referenced task does not exist in the project")
	ErrTaskNotFound    = errors.New("task not found")
	ErrCycle           = errors.New("dependency cycle")
)

// Kind classifies an edit failure so callers can map it to a response.
type Kind string

const (
	KindValidation Kind = "validation"
	KindIntegrity  Kind = "integrity"
	KindCycle      Kind = "cycle"
)

// Error is the structured failure every edit entry point returns.
type Error struct {
	Kind   Kind
	TaskID uint
	Field  string
	// Path is the offending cycle for KindCycle, starting and ending on TaskID.
	Path []uint
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if len(e.Path) > 0 {
		b.WriteString(": ")
		b.WriteString(FormatPath(e.Path))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(taskID uint, field string, err error) *Error {
	return &Error{Kind: KindValidation, TaskID: taskID, Field: field, Err: err}
}

func integrityError(taskID uint, field string, err error) *Error {
	return &Error{Kind: KindIntegrity, TaskID: taskID, Field: field, Err: err}
}

// KindOf returns the Kind of a schedule error, or "" for anything else.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// FormatPath renders a cycle as "3 -> 5 -> 3".
func FormatPath(path []uint) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " -> ")
}

// WarningKind classifies a non-fatal finding.
type WarningKind string

const (
	WarnMissingDependency WarningKind = "missing-dependency"
	WarnMissingSync       WarningKind = "missing-sync-reference"
	WarnCycle             WarningKind = "cycle"
	WarnResolveFailed     WarningKind = "resolve-failed"
	WarnDroppedEdge       WarningKind = "dropped-edge"
)

// Warning reports a problem that was worked around instead of aborting the edit.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	TaskID  uint        `json:"taskId"`
	RefID   uint        `json:"refId,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: task %d: %s", w.Kind, w.TaskID, w.Message)
}
