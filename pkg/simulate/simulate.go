// Package simulate provides the fixed pauses that stand in for network
// latency in demo deployments.
package simulate

import (
	"context"
	"time"
)

// Delays configures the pause applied to each front-desk operation.
type Delays struct {
	Login        time.Duration `mapstructure:"login"`
	Registration time.Duration `mapstructure:"registration"`
	Payment      time.Duration `mapstructure:"payment"`
	Save         time.Duration `mapstructure:"save"`
}

// Wait blocks for d or until ctx is done. A zero or negative d returns
// immediately.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
