package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gantt-planner-api/internal/auth"
	"gantt-planner-api/internal/cache"
	"gantt-planner-api/internal/logging"
	"gantt-planner-api/internal/middleware"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/services"
	"gantt-planner-api/internal/store"
	"gantt-planner-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router   *gin.Engine
	hub      *realtime.Hub
	users    *services.UserService
	projects *services.ProjectService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logging.Silence()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	st := store.New(db)
	tokens := auth.NewTokenManager("test-secret", "gantt-planner", "gantt-planner-web", time.Hour)
	hub := realtime.NewHub()
	env := services.NewEnv(st, cache.NewSnapshots(time.Minute), hub)
	users := services.NewUserService(st, tokens)
	projects := services.NewProjectService(env)

	authH := NewAuthHandler(users)
	projectH := NewProjectHandler(projects)
	taskH := NewTaskHandler(services.NewTaskService(env))
	tagH := NewTagHandler(services.NewTagService(env))
	excelH := NewExcelHandler(services.NewImportService(env))

	r := gin.New()
	r.POST("/api/register", authH.Register)
	r.POST("/api/login", authH.Login)
	p := r.Group("/api", middleware.JWTAuthMiddleware(tokens))
	p.GET("/me", NewUserHandler(users).Me)
	p.GET("/projects", projectH.GetProjects)
	p.POST("/projects", projectH.CreateProject)
	p.GET("/projects/:id", projectH.GetProject)
	p.PUT("/projects/:id", projectH.UpdateProject)
	p.DELETE("/projects/:id", projectH.DeleteProject)
	p.GET("/projects/:id/validate", projectH.ValidateProject)
	p.GET("/projects/:id/timeline", projectH.GetTimeline)
	p.GET("/projects/:id/tasks", taskH.GetTasks)
	p.POST("/projects/:id/tasks", taskH.CreateTask)
	p.GET("/tasks/:id", taskH.GetTaskByID)
	p.PUT("/tasks/:id", taskH.UpdateTask)
	p.DELETE("/tasks/:id", taskH.DeleteTask)
	p.PATCH("/tasks/:id/dates", taskH.UpdateTaskDates)
	p.PATCH("/tasks/:id/duration", taskH.UpdateTaskDuration)
	p.PUT("/tasks/:id/dependencies", taskH.SetDependencies)
	p.PUT("/tasks/:id/sync", taskH.SetSync)
	p.GET("/projects/:id/tags", tagH.GetTags)
	p.POST("/projects/:id/tags", tagH.CreateTag)
	p.PUT("/tags/:id", tagH.UpdateTag)
	p.DELETE("/tags/:id", tagH.DeleteTag)
	p.POST("/projects/:id/import", excelH.ImportTasks)
	p.GET("/projects/:id/export", excelH.ExportTasks)
	p.GET("/import/template", excelH.DownloadTemplate)
	p.GET("/projects/:id/ws", NewWSHandler(projects, hub).Watch)

	return &testServer{router: r, hub: hub, users: users, projects: projects}
}

// login registers username and returns a bearer token and the user's ID.
func (s *testServer) login(t *testing.T, username string) (string, uint) {
	t.Helper()
	ctx := context.Background()
	u, err := s.users.Register(ctx, username, "", "password1")
	require.NoError(t, err)
	token, _, err := s.users.Login(ctx, username, "password1")
	require.NoError(t, err)
	return token, u.ID
}

func (s *testServer) project(t *testing.T, userID uint) *models.Project {
	t.Helper()
	name := "Launch"
	p, err := s.projects.Create(context.Background(), userID, services.ProjectInput{Name: &name})
	require.NoError(t, err)
	return p
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// editResponse mirrors the {task, changed, warnings} body of every edit.
type editResponse struct {
	Task     models.Task   `json:"task"`
	Changed  []models.Task `json:"changed"`
	Deleted  []uint        `json:"deleted"`
	Warnings []struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"warnings"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func created(t *testing.T, w *httptest.ResponseRecorder) models.Task {
	t.Helper()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[editResponse](t, w).Task
}
