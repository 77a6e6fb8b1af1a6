package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "scans.scan.completed", Subject("scan.completed"))
}

func TestOccurredAt(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 5, time.UTC)
	got := occurredAt(map[string]interface{}{"occurred_at": at.Format(time.RFC3339Nano)})
	assert.True(t, at.Equal(got))

	before := time.Now().UTC()
	got = occurredAt(map[string]interface{}{"occurred_at": "yesterday"})
	assert.False(t, got.Before(before))
}
