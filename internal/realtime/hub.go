package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// EventType names what happened to a project's tasks.
type EventType string

const (
	TasksChanged   EventType = "tasks_changed"
	TasksDeleted   EventType = "tasks_deleted"
	TasksImported  EventType = "tasks_imported"
	ProjectChanged EventType = "project_changed"
	TagsChanged    EventType = "tags_changed"
)

// Event is pushed to every client watching a project so it can refetch what changed.
type Event struct {
	EventID   string    `json:"eventId"`
	Type      EventType `json:"type"`
	ProjectID uint      `json:"projectId"`
	TaskIDs   []uint    `json:"taskIds,omitempty"`
	At        time.Time `json:"at"`
}

// Hub maintains active project watchers and broadcasts events to them.
type Hub struct {
	mu       sync.RWMutex
	projects map[uint]map[Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{projects: make(map[uint]map[Client]struct{})}
}

// Register adds a client under a project ID.
func (h *Hub) Register(projectID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.projects[projectID]; !ok {
		h.projects[projectID] = make(map[Client]struct{})
	}
	h.projects[projectID][client] = struct{}{}
}

// Unregister removes a client; if the project has no more watchers, cleans up map.
func (h *Hub) Unregister(projectID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.projects[projectID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.projects, projectID)
		}
	}
}

// Watchers returns the number of clients registered for a project.
func (h *Hub) Watchers(projectID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.projects[projectID])
}

// Broadcast sends a raw message to all clients of a project and returns how many
// accepted it. Failed clients are cleaned up by their handler.
func (h *Hub) Broadcast(projectID uint, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.projects[projectID] {
		if c.Send(message) {
			sent++
		}
	}
	return sent
}

// Publish stamps e with an ID and time and broadcasts it as JSON.
func (h *Hub) Publish(e Event) (Event, error) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	msg, err := json.Marshal(e)
	if err != nil {
		return e, err
	}
	h.Broadcast(e.ProjectID, msg)
	return e, nil
}
