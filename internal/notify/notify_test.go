package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/logging"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/store"
	"gantt-planner-api/internal/testutil"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.Silence()
	m.Run()
}

func TestFindDue(t *testing.T) {
	today := calendar.MustParse("2025-03-10")
	tasks := []models.Task{
		{ID: 1, EndDate: "2025-03-10"},
		{ID: 2, EndDate: "2025-03-11"},
		{ID: 3, EndDate: "2025-03-12"},
		{ID: 4, EndDate: "2025-03-13"},
		{ID: 5, EndDate: "2025-03-13", Progress: 100},
		{ID: 6, EndDate: "2025-03-09"},
		{ID: 7, EndDate: "soon"},
	}

	due := FindDue(tasks, today, []int{1, 3})
	require.Len(t, due, 3)
	assert.Equal(t, uint(1), due[0].Task.ID)
	assert.Equal(t, 0, due[0].DaysLeft)
	assert.Equal(t, uint(2), due[1].Task.ID)
	assert.Equal(t, uint(4), due[2].Task.ID)
	assert.Equal(t, 3, due[2].DaysLeft)
}

func TestNextRun(t *testing.T) {
	loc := time.UTC
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, loc), NextRun(time.Date(2025, 3, 10, 8, 30, 0, 0, loc), 9))
	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, loc), NextRun(time.Date(2025, 3, 10, 9, 0, 0, 0, loc), 9))
	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, loc), NextRun(time.Date(2025, 3, 10, 17, 0, 0, 0, loc), 9))
}

func TestWebhookSender_PostsJSON(t *testing.T) {
	var got Notice
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, time.Second)
	require.NoError(t, s.Send(context.Background(), Notice{TaskID: 7, TaskName: "Ship", DaysLeft: 1}))
	assert.Equal(t, uint(7), got.TaskID)
	assert.Equal(t, "Ship", got.TaskName)
}

func TestWebhookSender_OpensAfterRepeatedFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, time.Second)
	for i := 0; i < 4; i++ {
		err := s.Send(context.Background(), Notice{TaskID: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())

	err := s.Send(context.Background(), Notice{TaskID: 1})
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
}

type recordingSender struct {
	mu      sync.Mutex
	notices []Notice
	fail    uint
}

func (r *recordingSender) Send(_ context.Context, n Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.TaskID == r.fail {
		return errors.New("mailbox full")
	}
	r.notices = append(r.notices, n)
	return nil
}

func TestChecker_Run(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	st := store.New(db)
	ctx := context.Background()

	u := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, st.CreateUser(ctx, u))
	p := &models.Project{UserID: u.ID, Name: "Launch"}
	require.NoError(t, st.CreateProject(ctx, p))
	for _, task := range []models.Task{
		{ProjectID: p.ID, Name: "Today", StartDate: "2025-03-03", EndDate: "2025-03-10", Duration: 6},
		{ProjectID: p.ID, Name: "Tomorrow", StartDate: "2025-03-03", EndDate: "2025-03-11", Duration: 7},
		{ProjectID: p.ID, Name: "Done", StartDate: "2025-03-03", EndDate: "2025-03-11", Duration: 7, Progress: 100},
		{ProjectID: p.ID, Name: "Later", StartDate: "2025-03-03", EndDate: "2025-03-20", Duration: 14},
	} {
		task := task
		require.NoError(t, st.CreateTask(ctx, &task))
	}

	sender := &recordingSender{}
	c := NewChecker(st, sender, []int{1, 3})
	c.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	sent, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, sender.notices, 2)
	assert.Equal(t, "Today", sender.notices[0].TaskName)
	assert.Equal(t, 0, sender.notices[0].DaysLeft)
	assert.Equal(t, "Launch", sender.notices[1].ProjectName)
	assert.Equal(t, "alice@example.com", sender.notices[1].Email)

	sender.notices = nil
	sender.fail = 1
	sent, err = c.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, sent)
}
