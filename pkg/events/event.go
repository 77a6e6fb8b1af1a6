package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "scan.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const TypeScanCompleted = "scan.completed"

// ScanCompleted is emitted once per finished scan or search, whatever the
// outcome. It never carries the image or the credential.
type ScanCompleted struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	Verdict    string    `json:"verdict"`
	Provider   string    `json:"provider"`
	ToolCalls  int       `json:"tool_calls"`
	DurationMs int64     `json:"duration_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewScanCompleted(sessionID, mode, status, verdict, provider string, toolCalls int, took time.Duration) ScanCompleted {
	return ScanCompleted{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Mode:       mode,
		Status:     status,
		Verdict:    verdict,
		Provider:   provider,
		ToolCalls:  toolCalls,
		DurationMs: took.Milliseconds(),
		OccurredAt: time.Now().UTC(),
	}
}

func (e ScanCompleted) EventType() string {
	return TypeScanCompleted
}

func (e ScanCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id":          e.ID,
		"session_id":  e.SessionID,
		"mode":        e.Mode,
		"status":      e.Status,
		"verdict":     e.Verdict,
		"provider":    e.Provider,
		"tool_calls":  e.ToolCalls,
		"duration_ms": e.DurationMs,
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
	}
}

func (e ScanCompleted) Timestamp() time.Time {
	return e.OccurredAt
}
