package ulid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAt_SortsWithinOneMillisecond(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := At(now)
	for i := 0; i < 100; i++ {
		next := At(now)
		require.True(t, Valid(next))
		require.Less(t, prev, next)
		prev = next
	}
}

func TestValid(t *testing.T) {
	require.False(t, Valid(""))
	require.False(t, Valid("not-a-ulid"))
	require.True(t, Valid(At(time.Now())))
}
