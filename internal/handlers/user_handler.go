package handlers

import (
	"net/http"

	"gantt-planner-api/internal/middleware"
	"gantt-planner-api/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the authenticated user
// GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
