package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gantt-planner-api/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Sender delivers a notice to its recipient.
type Sender interface {
	Send(ctx context.Context, n Notice) error
}

// LogSender writes notices to the application log. It is used when no webhook is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n Notice) error {
	logging.Logger.WithFields(logrus.Fields{
		"task_id":    n.TaskID,
		"project_id": n.ProjectID,
		"user":       n.Username,
		"days_left":  n.DaysLeft,
	}).Infof("Task %q in %q is due on %s", n.TaskName, n.ProjectName, n.EndDate)
	return nil
}

// WebhookSender POSTs each notice as JSON. Calls go through a circuit breaker so a
// webhook that keeps failing is not hammered for every due task.
type WebhookSender struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewWebhookSender(url string, timeout time.Duration) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "notify-webhook",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Infof("circuit breaker %s changed from %s to %s", name, from.String(), to.String())
			},
		}),
	}
}

func (s *WebhookSender) Send(ctx context.Context, n Notice) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = s.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook responded %s", resp.Status)
		}
		return nil, nil
	})
	return err
}

// State reports the breaker state, for logs and tests.
func (s *WebhookSender) State() gobreaker.State {
	return s.breaker.State()
}
