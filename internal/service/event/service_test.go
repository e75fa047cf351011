package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
)

func TestRecordWritesPendingEvent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	at := time.Date(2024, 12, 9, 8, 0, 0, 0, time.UTC)
	svc := NewService(repo, clock.Fixed(at))

	evt, err := svc.Record(ctx, model.EventPatientRegistered, map[string]int64{"patient_id": 6})
	require.NoError(t, err)
	assert.Equal(t, model.OutboxStatusPending, evt.Status)
	assert.Equal(t, at, evt.CreatedAt)

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	var payload map[string]int64
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	assert.Equal(t, int64(6), payload["patient_id"])
}

func TestRecordRejectsUnmarshalablePayload(t *testing.T) {
	svc := NewService(memory.NewOutboxRepository(), nil)
	_, err := svc.Record(context.Background(), "bad", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal")
}
