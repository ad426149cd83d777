package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gantt-planner-api/internal/calendar"
	"gantt-planner-api/internal/logging"
	"gantt-planner-api/internal/models"
	"gantt-planner-api/internal/store"

	"github.com/sirupsen/logrus"
)

// Notice is one deadline reminder for the owner of a task.
type Notice struct {
	TaskID      uint   `json:"taskId"`
	TaskName    string `json:"taskName"`
	ProjectID   uint   `json:"projectId"`
	ProjectName string `json:"projectName"`
	UserID      uint   `json:"userId"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	EndDate     string `json:"endDate"`
	Progress    int    `json:"progress"`
	DaysLeft    int    `json:"daysLeft"`
}

// Due is an unfinished task whose end date is close enough to remind about.
type Due struct {
	Task     models.Task
	DaysLeft int
}

// FindDue picks the tasks that end today or exactly one of days from today. Finished
// tasks and tasks with unreadable end dates are skipped.
func FindDue(tasks []models.Task, today calendar.Date, days []int) []Due {
	var out []Due
	for _, t := range tasks {
		if t.Progress >= 100 {
			continue
		}
		end, err := calendar.Parse(t.EndDate)
		if err != nil {
			continue
		}
		left := calendar.DaysBetween(today, end)
		if left == 0 || containsInt(days, left) {
			out = append(out, Due{Task: t, DaysLeft: left})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Checker finds due tasks across all projects and hands a notice for each to a Sender.
type Checker struct {
	store  *store.Store
	sender Sender
	days   []int
	now    func() time.Time
}

func NewChecker(st *store.Store, sender Sender, days []int) *Checker {
	return &Checker{store: st, sender: sender, days: days, now: time.Now}
}

// Run performs one check and returns how many notices were delivered. A failed delivery
// does not stop the others; all failures are returned together.
func (c *Checker) Run(ctx context.Context) (int, error) {
	tasks, err := c.store.ListOpenTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load open tasks: %w", err)
	}
	due := FindDue(tasks, calendar.FromTime(c.now()), c.days)
	if len(due) == 0 {
		return 0, nil
	}

	projectIDs := make([]uint, 0, len(due))
	for _, d := range due {
		projectIDs = append(projectIDs, d.Task.ProjectID)
	}
	projects, err := c.store.ProjectsByID(ctx, projectIDs)
	if err != nil {
		return 0, fmt.Errorf("load projects: %w", err)
	}
	userIDs := make([]uint, 0, len(projects))
	for _, p := range projects {
		userIDs = append(userIDs, p.UserID)
	}
	users, err := c.store.UsersByID(ctx, userIDs)
	if err != nil {
		return 0, fmt.Errorf("load users: %w", err)
	}

	sent := 0
	var errs []error
	for _, d := range due {
		p, ok := projects[d.Task.ProjectID]
		if !ok {
			continue
		}
		u := users[p.UserID]
		n := Notice{
			TaskID:      d.Task.ID,
			TaskName:    d.Task.Name,
			ProjectID:   p.ID,
			ProjectName: p.Name,
			UserID:      p.UserID,
			Username:    u.Username,
			Email:       u.Email,
			EndDate:     d.Task.EndDate,
			Progress:    d.Task.Progress,
			DaysLeft:    d.DaysLeft,
		}
		if err := c.sender.Send(ctx, n); err != nil {
			logging.Logger.WithError(err).WithFields(logrus.Fields{
				"task_id":    n.TaskID,
				"project_id": n.ProjectID,
			}).Warn("deadline notice not delivered")
			errs = append(errs, err)
			continue
		}
		sent++
	}
	logging.Logger.WithFields(logrus.Fields{"due": len(due), "sent": sent}).Info("deadline check finished")
	return sent, errors.Join(errs...)
}
