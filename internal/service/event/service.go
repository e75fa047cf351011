package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

// Emitter records domain events. Emit never fails the calling operation;
// write errors are logged.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{})
}

type Service struct {
	outboxRepo repository.OutboxRepository
	now        clock.Func
}

func NewService(outboxRepo repository.OutboxRepository, now clock.Func) *Service {
	if now == nil {
		now = clock.System
	}
	return &Service{
		outboxRepo: outboxRepo,
		now:        now,
	}
}

// Record writes the event to the outbox.
func (s *Service) Record(ctx context.Context, eventType string, payload interface{}) (*model.OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	evt := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   data,
		Status:    model.OutboxStatusPending,
		CreatedAt: s.now(),
	}
	if err := s.outboxRepo.Create(ctx, evt); err != nil {
		return nil, fmt.Errorf("failed to create outbox event: %w", err)
	}
	return evt, nil
}

func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) {
	if _, err := s.Record(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Emit(context.Context, string, interface{}) {}
