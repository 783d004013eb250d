package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.DOCUMENT_INDEXED", Subject("DOCUMENT_INDEXED"))
}

func TestOccurredAt(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, ts, occurredAt(map[string]interface{}{"occurred_at": ts.Format(time.RFC3339Nano)}))
	assert.WithinDuration(t, time.Now(), occurredAt(map[string]interface{}{}), time.Minute)
}
