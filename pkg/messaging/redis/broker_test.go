package redis

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewRedisBroker(context.Background(), Config{URL: "not-a-url"}, &logger)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
