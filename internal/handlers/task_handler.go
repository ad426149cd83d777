package handlers

import (
	"net/http"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/middleware"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/schedule"
	"gantt-planner-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateTaskRequest represents the request payload for creating a task.
// Dates may be omitted when dependencies or a sync reference determine them.
type CreateTaskRequest struct {
	Name               string              `json:"name" binding:"required"`
	StartDate          string              `json:"startDate"`
	EndDate            string              `json:"endDate"`
	Duration           int                 `json:"duration"`
	Progress           int                 `json:"progress"`
	Dependencies       []uint              `json:"dependencies"`
	OffsetDays         int                 `json:"offsetDays"`
	SkipWeekends       *bool               `json:"skipWeekends"`
	AutoAdjustWeekends *bool               `json:"autoAdjustWeekends"`
	SyncedTaskID       *uint               `json:"syncedTaskId"`
	SyncType           models.SyncType     `json:"syncType"`
	Comments           string              `json:"comments"`
	Attachments        []models.Attachment `json:"attachments"`
	TagIDs             []uint              `json:"tagIds"`
}

// UpdateTaskRequest represents the request payload for updating a task's details
type UpdateTaskRequest struct {
	Name               *string             `json:"name"`
	Progress           *int                `json:"progress"`
	Comments           *string             `json:"comments"`
	Attachments        []models.Attachment `json:"attachments"`
	TagIDs             []uint              `json:"tagIds"`
	SkipWeekends       *bool               `json:"skipWeekends"`
	AutoAdjustWeekends *bool               `json:"autoAdjustWeekends"`
}

// UpdateDatesRequest is sent when a task is edited in the date form or dragged on the timeline
type UpdateDatesRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

type UpdateDurationRequest struct {
	Duration int `json:"duration" binding:"required"`
}

type DependenciesRequest struct {
	Dependencies []uint `json:"dependencies"`
	OffsetDays   int    `json:"offsetDays"`
}

// SyncRequest points a task at a reference task; a null syncedTaskId clears the sync
type SyncRequest struct {
	SyncedTaskID *uint           `json:"syncedTaskId"`
	SyncType     models.SyncType `json:"syncType"`
}

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// GetTasks handles GET /api/projects/:id/tasks
func (h *TaskHandler) GetTasks(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	tasks, err := h.tasks.ListTasks(c.Request.Context(), middleware.CurrentUserID(c), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// CreateTask handles POST /api/projects/:id/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request payload",
		})
		return
	}
	start, ok := normalizeDate(c, "startDate", req.StartDate)
	if !ok {
		return
	}
	end, ok := normalizeDate(c, "endDate", req.EndDate)
	if !ok {
		return
	}

	task := models.Task{
		Name:               req.Name,
		StartDate:          start,
		EndDate:            end,
		Duration:           req.Duration,
		Progress:           req.Progress,
		Dependencies:       req.Dependencies,
		OffsetDays:         req.OffsetDays,
		SkipWeekends:       boolOr(req.SkipWeekends, true),
		AutoAdjustWeekends: boolOr(req.AutoAdjustWeekends, true),
		SyncedTaskID:       req.SyncedTaskID,
		SyncType:           req.SyncType,
		Comments:           req.Comments,
		Attachments:        req.Attachments,
		TagIDs:             models.IDList(req.TagIDs).Normalize(),
	}
	res, err := h.tasks.CreateTask(c.Request.Context(), middleware.CurrentUserID(c), projectID, task)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetTaskByID handles GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}
	task, err := h.tasks.GetTask(c.Request.Context(), middleware.CurrentUserID(c), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request payload",
		})
		return
	}

	update := services.TaskUpdate{
		Details: schedule.Details{
			Name:        req.Name,
			Progress:    req.Progress,
			Comments:    req.Comments,
			Attachments: req.Attachments,
		},
		SkipWeekends:       req.SkipWeekends,
		AutoAdjustWeekends: req.AutoAdjustWeekends,
	}
	if req.TagIDs != nil {
		update.TagIDs = models.IDList(req.TagIDs)
	}
	res, err := h.tasks.UpdateTask(c.Request.Context(), middleware.CurrentUserID(c), taskID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateTaskDates handles PATCH /api/tasks/:id/dates
func (h *TaskHandler) UpdateTaskDates(c *gin.Context) {
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "startDate and endDate are required",
		})
		return
	}
	start, err := calendar.ParseFlexible(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate", "field": "startDate"})
		return
	}
	end, err := calendar.ParseFlexible(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate", "field": "endDate"})
		return
	}

	res, err := h.tasks.MoveTask(c.Request.Context(), middleware.CurrentUserID(c), taskID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateTaskDuration handles PATCH /api/tasks/:id/duration
func (h *TaskHandler) UpdateTaskDuration(c *gin.Context) {
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "duration is required",
		})
		return
	}
	res, err := h.tasks.SetDuration(c.Request.Context(), middleware.CurrentUserID(c), taskID, req.Duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetDependencies handles PUT /api/tasks/:id/dependencies
func (h *TaskHandler) SetDependencies(c *gin.Context) {
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req DependenciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request payload",
		})
		return
	}
	res, err := h.tasks.SetDependencies(c.Request.Context(), middleware.CurrentUserID(c), taskID, req.Dependencies, req.OffsetDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetSync handles PUT /api/tasks/:id/sync
func (h *TaskHandler) SetSync(c *gin.Context) {
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request payload",
		})
		return
	}
	res, err := h.tasks.SetSync(c.Request.Context(), middleware.CurrentUserID(c), taskID, req.SyncedTaskID, req.SyncType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.tasks.DeleteTask(c.Request.Context(), middleware.CurrentUserID(c), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Task deleted successfully",
		"id":       taskID,
		"changed":  res.Changed,
		"warnings": res.Warnings,
	})
}
