package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"gantt-planner-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(t, "alice")

	w := s.do(t, http.MethodPost, "/api/projects", token, map[string]string{
		"name": "Launch", "startDate": "01/03/2025", "endDate": "2025-06-30",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[models.Project](t, w)
	require.Equal(t, "2025-03-01", p.StartDate)
	path := fmt.Sprintf("/api/projects/%d", p.ID)

	w = s.do(t, http.MethodGet, "/api/projects", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	created(t, s.do(t, http.MethodPost, path+"/tasks", token, map[string]any{"name": "A", "startDate": "2025-03-03", "endDate": "2025-03-05"}))

	w = s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	full := decode[models.ProjectWithTasks](t, w)
	require.Equal(t, "Launch", full.Name)
	require.Len(t, full.Tasks, 1)

	w = s.do(t, http.MethodPut, path, token, map[string]string{"name": "Relaunch"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Relaunch", decode[models.Project](t, w).Name)

	w = s.do(t, http.MethodPut, path, token, map[string]string{"endDate": "2025-01-01"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, path+"/validate", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decode[struct {
		Valid bool `json:"valid"`
	}](t, w).Valid)

	w = s.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, token, nil).Code)
}

func TestCreateProject_Rejections(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(t, "alice")

	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/projects", token, map[string]string{}).Code)
	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/projects", token, map[string]string{"name": " "}).Code)
	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/projects", token,
		map[string]string{"name": "X", "startDate": "tomorrow"}).Code)
}

func TestGetTimeline(t *testing.T) {
	s := newTestServer(t)
	token, uid := s.login(t, "alice")
	p := s.project(t, uid)
	path := fmt.Sprintf("/api/projects/%d", p.ID)
	created(t, s.do(t, http.MethodPost, path+"/tasks", token, map[string]any{"name": "A", "startDate": "2025-03-03", "endDate": "2025-03-14"}))

	w := s.do(t, http.MethodGet, path+"/timeline?scale=week", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tl := decode[struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Scale string `json:"scale"`
		Ticks []struct {
			Date    string `json:"date"`
			ISOWeek int    `json:"isoWeek"`
		} `json:"ticks"`
	}](t, w)
	require.Equal(t, "2025-03-03", tl.Start)
	require.Equal(t, "2025-03-14", tl.End)
	require.Equal(t, "Week", tl.Scale)
	require.Len(t, tl.Ticks, 2)
	require.Equal(t, 11, tl.Ticks[1].ISOWeek)

	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path+"/timeline?scale=year", token, nil).Code)
}
