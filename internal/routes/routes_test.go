package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gantt-planner-api/internal/auth"
	"gantt-planner-api/internal/cache"
	"gantt-planner-api/internal/logging"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/services"
	"gantt-planner-api/internal/store"
	"gantt-planner-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logging.Silence()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	st := store.New(db)
	tokens := auth.NewTokenManager("secret", "gantt-planner", "gantt-planner-web", time.Hour)
	hub := realtime.NewHub()
	env := services.NewEnv(st, cache.NewSnapshots(time.Minute), hub)
	return SetupRoutes(NewHandlers(env, services.NewUserService(st, tokens), hub), tokens, "http://localhost:3000")
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newRouter(t)
	for _, path := range []string{"/api/me", "/api/projects", "/api/projects/1/tasks", "/api/import/template"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouteTable(t *testing.T) {
	r := newRouter(t)
	have := make(map[string]bool)
	for _, route := range r.Routes() {
		have[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/register",
		"POST /api/login",
		"GET /api/projects/:id/timeline",
		"GET /api/projects/:id/ws",
		"PATCH /api/tasks/:id/dates",
		"PATCH /api/tasks/:id/duration",
		"PUT /api/tasks/:id/dependencies",
		"PUT /api/tasks/:id/sync",
		"DELETE /api/tags/:id",
		"POST /api/projects/:id/import",
		"GET /api/projects/:id/export",
	} {
		require.True(t, have[want], want)
	}
}
