package messaging

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogBroker writes published messages to the log and fans them out to
// in-process subscribers. It stands in for Redis in single-node setups.
type LogBroker struct {
	logger *zerolog.Logger

	mu     sync.RWMutex
	subs   map[string][]chan []byte
	closed bool
}

func NewLogBroker(logger *zerolog.Logger) *LogBroker {
	return &LogBroker{
		logger: logger,
		subs:   make(map[string][]chan []byte),
	}
}

func (b *LogBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.logger.Info().
		Str("channel", channel).
		RawJSON("payload", payload).
		Msg("Event published")

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
			b.logger.Warn().Str("channel", channel).Msg("Subscriber buffer full, dropping message")
		}
	}
	return nil
}

func (b *LogBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 100)

	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[channel]
		for i, c := range subs {
			if c == ch {
				b.subs[channel] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}()

	return ch, nil
}

func (b *LogBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subs := range b.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subs, channel)
	}
	return nil
}
