package models

import (
	"time"
)

// Project owns a set of tasks and tags. Tasks may only reference tasks of the same project.
type Project struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"column:user_id;not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	StartDate string    `json:"startDate" gorm:"column:start_date"`
	EndDate   string    `json:"endDate" gorm:"column:end_date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// ProjectWithTasks is the project payload the timeline view loads in one request.
type ProjectWithTasks struct {
	Project
	Tasks []Task `json:"tasks"`
	Tags  []Tag  `json:"tags"`
}

// Tag is a project-scoped label; it plays no part in scheduling.
type Tag struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProjectID uint   `json:"projectId" gorm:"column:project_id;not null;index"`
	Name      string `json:"name" gorm:"not null"`
	Color     string `json:"color"`
}

// TableName specifies the table name for Tag Model
func (Tag) TableName() string {
	return "tags"
}
