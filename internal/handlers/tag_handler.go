package handlers

import (
	"net/http"

	"gantt-planner-api/internal/middleware"
	"gantt-planner-api/internal/services"

	"github.com/gin-gonic/gin"
)

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type TagHandler struct {
	tags *services.TagService
}

func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// GetTags handles GET /api/projects/:id/tags
func (h *TagHandler) GetTags(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	tags, err := h.tags.List(c.Request.Context(), middleware.CurrentUserID(c), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// CreateTag handles POST /api/projects/:id/tags
func (h *TagHandler) CreateTag(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Tag name is required.",
		})
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), middleware.CurrentUserID(c), projectID, req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// UpdateTag handles PUT /api/tags/:id
func (h *TagHandler) UpdateTag(c *gin.Context) {
	tagID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request payload",
		})
		return
	}
	tag, err := h.tags.Update(c.Request.Context(), middleware.CurrentUserID(c), tagID, req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag handles DELETE /api/tags/:id
func (h *TagHandler) DeleteTag(c *gin.Context) {
	tagID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.tags.Delete(c.Request.Context(), middleware.CurrentUserID(c), tagID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Tag deleted successfully",
		"id":      tagID,
	})
}
