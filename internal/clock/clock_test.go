package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinnedKeepsTimeOfDay(t *testing.T) {
	wall := Fixed(time.Date(2026, 3, 1, 14, 30, 5, 0, time.UTC))
	now := Pinned(time.Date(2024, 12, 9, 0, 0, 0, 0, time.UTC), wall)()

	assert.Equal(t, time.Date(2024, 12, 9, 14, 30, 5, 0, time.UTC), now)
}

func TestFromConfig(t *testing.T) {
	f, err := FromConfig("2024-12-09")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-09", f().Format("2006-01-02"))

	f, err = FromConfig("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), f(), time.Minute)

	_, err = FromConfig("09/12/2024")
	assert.Error(t, err)
}
