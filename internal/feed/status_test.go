package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/threadfeed/threadfeed/internal/conversation"
)

func TestDeriveWorking(t *testing.T) {
	t.Parallel()

	start := time.Unix(1700000000, 0)
	now := start.Add(65 * time.Second)
	cache := NewReasoningCache()

	w := DeriveWorking([]conversation.Item{
		reasoning("r0", "Old turn", "body"),
		userMsg("m1", "next"),
		reasoning("r1", "**Scanning** files", ""),
		tool("t1", "running"),
	}, cache, true, false, start, now)
	require.True(t, w.Active)
	require.Equal(t, "Scanning files", w.Label)
	require.Equal(t, 65*time.Second, w.Elapsed)

	w = DeriveWorking([]conversation.Item{
		reasoning("r0", "Old turn", "body"),
		userMsg("m1", "next"),
	}, cache, false, true, time.Time{}, now)
	require.True(t, w.Active)
	require.Equal(t, "Working", w.Label)
	require.Zero(t, w.Elapsed)

	w = DeriveWorking(nil, cache, false, false, start, now)
	require.False(t, w.Active)
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0s", FormatElapsed(0))
	require.Equal(t, "45s", FormatElapsed(45*time.Second))
	require.Equal(t, "1m 05s", FormatElapsed(65*time.Second))
	require.Equal(t, "1h 02m", FormatElapsed(62*time.Minute))
	require.Equal(t, "Worked for 2m 00s", WorkedFor(2*time.Minute))
}
