package handlers

import (
	"net/http"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/middleware"
	"gantt-planner-api/internal/services"

	"github.com/gin-gonic/gin"
)

// ProjectRequest is used for both create and update; on update omitted fields are kept.
type ProjectRequest struct {
	Name      *string `json:"name"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (req ProjectRequest) input(c *gin.Context) (services.ProjectInput, bool) {
	in := services.ProjectInput{Name: req.Name}
	for _, f := range []struct {
		name string
		src  *string
		dst  **string
	}{{"startDate", req.StartDate, &in.StartDate}, {"endDate", req.EndDate, &in.EndDate}} {
		if f.src == nil {
			continue
		}
		v, ok := normalizeDate(c, f.name, *f.src)
		if !ok {
			return in, false
		}
		*f.dst = &v
	}
	return in, true
}

// GetProjects handles GET /api/projects
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Project name is required.",
		})
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), middleware.CurrentUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GetProject handles GET /api/projects/:id and returns the project with its tasks and tags
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), middleware.CurrentUserID(c), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProject handles PUT /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request payload",
		})
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), middleware.CurrentUserID(c), projectID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), middleware.CurrentUserID(c), projectID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
		"id":      projectID,
	})
}

// ValidateProject handles GET /api/projects/:id/validate
func (h *ProjectHandler) ValidateProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	warnings, err := h.projects.Validate(c.Request.Context(), middleware.CurrentUserID(c), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":    len(warnings) == 0,
		"warnings": warnings,
	})
}

// GetTimeline handles GET /api/projects/:id/timeline?scale=day|week|month
func (h *ProjectHandler) GetTimeline(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	scale, err := calendar.ParseScale(c.Query("scale"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tl, err := h.projects.Timeline(c.Request.Context(), middleware.CurrentUserID(c), projectID, scale)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tl)
}
