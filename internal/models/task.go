package models

import (
	"time"
)

// SyncType says which dates a synced task copies from its reference task.
type SyncType string

const (
	SyncNone             SyncType = ""
	SyncStartStart       SyncType = "start-start"
	SyncEndEnd           SyncType = "end-end"
	SyncStartEndTogether SyncType = "start-end-together"
	// SyncStartEnd starts the task on the day the reference ends.
	SyncStartEnd SyncType = "start-end"
	// SyncEndStart ends the task on the day the reference starts.
	SyncEndStart SyncType = "end-start"
)

// Valid reports whether s names a known sync relation.
func (s SyncType) Valid() bool {
	switch s {
	case SyncStartStart, SyncEndEnd, SyncStartEndTogether, SyncStartEnd, SyncEndStart:
		return true
	}
	return false
}

// IDList is a set of task or tag IDs stored as a JSON array column.
type IDList []uint

// Contains reports whether id is in the list.
func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every occurrence of id removed.
func (l IDList) Without(id uint) IDList {
	out := make(IDList, 0, len(l))
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Normalize drops duplicates, keeping first occurrences in order.
func (l IDList) Normalize() IDList {
	seen := make(map[uint]struct{}, len(l))
	out := make(IDList, 0, len(l))
	for _, v := range l {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Attachment is an opaque file reference carried by a task.
type Attachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// Task represents a scheduled task on a project's timeline
type Task struct {
	ID                 uint         `json:"id" gorm:"primaryKey"`
	ProjectID          uint         `json:"projectId" gorm:"column:project_id;not null;index"`
	Name               string       `json:"name" gorm:"not null"`
	StartDate          string       `json:"startDate" gorm:"column:start_date;not null"`
	EndDate            string       `json:"endDate" gorm:"column:end_date;not null"`
	Duration           int          `json:"duration" gorm:"not null"`
	Progress           int          `json:"progress" gorm:"not null"`
	Dependencies       IDList       `json:"dependencies" gorm:"serializer:json;type:text"`
	OffsetDays         int          `json:"offsetDays" gorm:"column:offset_days"`
	SkipWeekends       bool         `json:"skipWeekends" gorm:"column:skip_weekends"`
	AutoAdjustWeekends bool         `json:"autoAdjustWeekends" gorm:"column:auto_adjust_weekends"`
	SyncedTaskID       *uint        `json:"syncedTaskId" gorm:"column:synced_task_id"`
	SyncType           SyncType     `json:"syncType" gorm:"column:sync_type"`
	Comments           string       `json:"comments"`
	Attachments        []Attachment `json:"attachments" gorm:"serializer:json;type:text"`
	TagIDs             IDList       `json:"tagIds" gorm:"column:tag_ids;serializer:json;type:text"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// IsSynced reports whether the task mirrors another task's dates.
func (t *Task) IsSynced() bool {
	return t.SyncedTaskID != nil
}

// Clone returns a deep copy, so edits on the copy never alias the original's slices.
func (t Task) Clone() Task {
	out := t
	if t.Dependencies != nil {
		out.Dependencies = append(IDList(nil), t.Dependencies...)
	}
	if t.TagIDs != nil {
		out.TagIDs = append(IDList(nil), t.TagIDs...)
	}
	if t.Attachments != nil {
		out.Attachments = append([]Attachment(nil), t.Attachments...)
	}
	if t.SyncedTaskID != nil {
		id := *t.SyncedTaskID
		out.SyncedTaskID = &id
	}
	return out
}
