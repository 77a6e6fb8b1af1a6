package contract

import (
	"context"

	"vegan-agent-be/pkg/history"
)

// HistoryRepository keeps the bounded scan history of one session.
// Implementations enforce the size cap on Push.
type HistoryRepository interface {
	Push(ctx context.Context, sessionID string, entry history.Entry) error
	List(ctx context.Context, sessionID string) ([]history.Entry, error)
	Clear(ctx context.Context, sessionID string) error
}

// SessionKeyRepository holds the API key a visitor entered by hand.
// It is never persisted outside process memory.
type SessionKeyRepository interface {
	SetAPIKey(ctx context.Context, sessionID, apiKey string) error
	APIKey(ctx context.Context, sessionID string) (string, error)
	ClearAPIKey(ctx context.Context, sessionID string) error
}
