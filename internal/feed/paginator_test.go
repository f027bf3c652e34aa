package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPaginator_OncePerCooldown(t *testing.T) {
	t.Parallel()

	p := NewPaginator(16, 900*time.Millisecond)
	t0 := time.Unix(1700000000, 0)

	tok, ok := p.Check(0, t0)
	require.True(t, ok)
	p.Done(tok)

	_, ok = p.Check(0, t0.Add(100*time.Millisecond))
	require.False(t, ok, "inside cooldown")

	_, ok = p.Check(0, t0.Add(500*time.Millisecond))
	require.False(t, ok, "inside cooldown")

	_, ok = p.Check(0, t0.Add(time.Second))
	require.True(t, ok)
}

func TestPaginator_InFlightGuard(t *testing.T) {
	t.Parallel()

	p := NewPaginator(16, 900*time.Millisecond)
	t0 := time.Unix(1700000000, 0)

	tok, ok := p.Check(10, t0)
	require.True(t, ok)
	require.True(t, p.InFlight())

	_, ok = p.Check(0, t0.Add(5*time.Second))
	require.False(t, ok, "previous call unresolved")

	p.Done(tok)
	require.False(t, p.InFlight())

	_, ok = p.Check(0, t0.Add(6*time.Second))
	require.True(t, ok)
}

func TestPaginator_BelowTrigger(t *testing.T) {
	t.Parallel()

	p := NewPaginator(16, 900*time.Millisecond)
	_, ok := p.Check(17, time.Now())
	require.False(t, ok)
}

func TestPaginator_ResetIgnoresStaleToken(t *testing.T) {
	t.Parallel()

	p := NewPaginator(16, 900*time.Millisecond)
	t0 := time.Unix(1700000000, 0)

	stale, ok := p.Check(0, t0)
	require.True(t, ok)

	p.Reset()
	require.False(t, p.InFlight())

	fresh, ok := p.Check(0, t0.Add(10*time.Millisecond))
	require.True(t, ok, "reset clears the cooldown")

	p.Done(stale)
	require.True(t, p.InFlight(), "stale token must not clear the new call")

	p.Done(fresh)
	require.False(t, p.InFlight())
}
