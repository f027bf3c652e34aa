package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func keysN(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
	}
	return keys
}

func TestVirtualizer_DisabledBelowThreshold(t *testing.T) {
	t.Parallel()

	v := NewVirtualizer(120, 7, 18)
	v.SetKeys(keysN(10))
	require.False(t, v.Enabled())
	require.Equal(t, Window{Start: 0, End: 10}, v.Window(30, 20))
}

func TestVirtualizer_WindowWithOverscan(t *testing.T) {
	t.Parallel()

	v := NewVirtualizer(120, 7, 18)
	v.SetKeys(keysN(200))
	require.True(t, v.Enabled())
	require.Equal(t, 1400, v.TotalHeight())

	w := v.Window(700, 40)
	require.Equal(t, Window{Start: 82, End: 124}, w)
	require.True(t, w.Contains(100))
	require.False(t, w.Contains(124))

	require.Equal(t, Window{Start: 0, End: 21}, v.Window(0, 20))
	require.Equal(t, 200, v.Window(1390, 40).End)
}

func TestVirtualizer_MeasurementsShiftOffsets(t *testing.T) {
	t.Parallel()

	v := NewVirtualizer(120, 7, 18)
	v.SetKeys(keysN(130))
	v.Measure("k0", 20)

	require.Equal(t, 20, v.Offset(1))
	require.Equal(t, 20+129*7, v.TotalHeight())
	require.Equal(t, 0, v.IndexAt(19))
	require.Equal(t, 1, v.IndexAt(20))

	// Prepending keeps measurements keyed, not indexed.
	v.SetKeys(append([]string{"older"}, keysN(130)...))
	require.Equal(t, 1, v.IndexOf("k0"))
	require.Equal(t, 20, v.Height(1))
	require.True(t, v.Measured("k0"))

	v.SetKeys(keysN(130)[1:])
	require.False(t, v.Measured("k0"))

	v.Measure("k1", 3)
	v.Invalidate()
	require.False(t, v.Measured("k1"))
}
