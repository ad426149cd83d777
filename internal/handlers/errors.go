package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gantt-planner-api/internal/auth"
	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/schedule"
	"gantt-planner-api/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps a service or engine error to a status code and an {"error": ...} body.
func respondError(c *gin.Context, err error) {
	var se *schedule.Error
	switch {
	case errors.As(err, &se):
		body := gin.H{"error": se.Error(), "kind": se.Kind, "taskId": se.TaskID}
		if se.Field != "" {
			body["field"] = se.Field
		}
		status := http.StatusBadRequest
		switch se.Kind {
		case schedule.KindIntegrity:
			status = http.StatusUnprocessableEntity
		case schedule.KindCycle:
			status = http.StatusConflict
			body["path"] = se.Path
		}
		c.JSON(status, body)
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidUserData),
		errors.Is(err, services.ErrInvalidProject),
		errors.Is(err, services.ErrInvalidTag),
		errors.Is(err, services.ErrUnknownTag),
		errors.Is(err, services.ErrInvalidWorkbook):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// idParam reads a numeric path parameter, answering 400 when it is not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// normalizeDate accepts the date formats the client may send and returns YYYY-MM-DD.
// Empty stays empty.
func normalizeDate(c *gin.Context, field, value string) (string, bool) {
	if value == "" {
		return "", true
	}
	d, err := calendar.ParseFlexible(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + field, "field": field})
		return "", false
	}
	return d.String(), true
}
