package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAutoScroll_Hysteresis(t *testing.T) {
	t.Parallel()

	a := NewAutoScroll(120, 360)
	require.True(t, a.Enabled())

	steps := []struct {
		distance int
		want     bool
	}{
		{0, true},
		{50, true},
		{200, true}, // inside the release band
		{500, false},
		{200, false}, // outside the capture band
		{80, true},
	}
	for _, s := range steps {
		require.Equal(t, s.want, a.Observe(s.distance), "distance %d", s.distance)
	}
}

func TestAutoScroll_ShouldSnap(t *testing.T) {
	t.Parallel()

	a := NewAutoScroll(120, 360)
	a.Observe(1000)
	require.False(t, a.Enabled())
	require.False(t, a.ShouldSnap(400))
	require.True(t, a.ShouldSnap(100))

	a.Reset()
	require.True(t, a.ShouldSnap(5000))
}

func TestViewport(t *testing.T) {
	t.Parallel()

	v := Viewport{ScrollTop: 50, Height: 100, ContentHeight: 400}
	require.Equal(t, 300, v.MaxScrollTop())
	require.Equal(t, 250, v.DistanceFromBottom())

	require.Equal(t, 300, Viewport{ScrollTop: 900, Height: 100, ContentHeight: 400}.Clamp().ScrollTop)
	require.Equal(t, 0, Viewport{ScrollTop: -3, Height: 100, ContentHeight: 400}.Clamp().ScrollTop)
	require.Equal(t, 0, Viewport{Height: 100, ContentHeight: 40}.MaxScrollTop())
}
