// Package testutil builds seeded fixtures shared by service, handler and
// router tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
	"github.com/jwalitptl/hms-api/internal/seed"
	"github.com/jwalitptl/hms-api/pkg/security"
)

// Now is the instant tests treat as the present: midday on the day the
// demo data was recorded.
var Now = time.Date(2024, 12, 9, 12, 0, 0, 0, time.UTC)

const Today = "2024-12-09"

func Clock() clock.Func {
	return clock.Fixed(Now)
}

// Hasher uses the minimum bcrypt cost to keep tests fast.
func Hasher() security.PasswordHasher {
	return security.NewBcryptHasher(bcrypt.MinCost)
}

// SeededStore returns a memory store loaded with the built-in dataset.
func SeededStore(t testing.TB) repository.Store {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, seed.Apply(context.Background(), store, seed.Default(), Hasher()))
	return store
}
