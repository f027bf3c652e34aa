package feed

// Window is a half-open range [Start, End) of row indices to render.
type Window struct {
	Start int
	End   int
}

// Len returns the number of rows in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// Contains reports whether row i is inside the window.
func (w Window) Contains(i int) bool {
	return i >= w.Start && i < w.End
}

// Virtualizer tracks row heights for a keyed list and selects the rows that
// need rendering. Below the threshold it is disabled and every row is in
// the window.
type Virtualizer struct {
	threshold int
	estimate  int
	overscan  int

	keys     []string
	measured map[string]int

	offsets []int // offsets[i] = start of row i; len(keys)+1 entries
	dirty   bool
}

// NewVirtualizer returns a virtualizer with the given tuning.
func NewVirtualizer(threshold, estimate, overscan int) *Virtualizer {
	return &Virtualizer{
		threshold: threshold,
		estimate:  estimate,
		overscan:  overscan,
		measured:  make(map[string]int),
		dirty:     true,
	}
}

// SetKeys replaces the row list. Measurements are kept for keys that are
// still present so rows keep their height across merges and prepends.
func (v *Virtualizer) SetKeys(keys []string) {
	v.keys = keys
	present := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		present[k] = struct{}{}
	}
	for k := range v.measured {
		if _, ok := present[k]; !ok {
			delete(v.measured, k)
		}
	}
	v.dirty = true
}

// Keys returns the current row keys.
func (v *Virtualizer) Keys() []string {
	return v.keys
}

// Len returns the row count.
func (v *Virtualizer) Len() int {
	return len(v.keys)
}

// Enabled reports whether windowing is active.
func (v *Virtualizer) Enabled() bool {
	return len(v.keys) >= v.threshold
}

// Measure records the real height of a rendered row.
func (v *Virtualizer) Measure(key string, height int) {
	if old, ok := v.measured[key]; ok && old == height {
		return
	}
	v.measured[key] = height
	v.dirty = true
}

// Measured reports whether key has a recorded height.
func (v *Virtualizer) Measured(key string) bool {
	_, ok := v.measured[key]
	return ok
}

// Invalidate drops every measurement, e.g. after a width change.
func (v *Virtualizer) Invalidate() {
	v.measured = make(map[string]int)
	v.dirty = true
}

// Height returns the measured or estimated height of row i.
func (v *Virtualizer) Height(i int) int {
	if h, ok := v.measured[v.keys[i]]; ok {
		return h
	}
	return v.estimate
}

func (v *Virtualizer) layout() {
	if !v.dirty {
		return
	}
	v.offsets = make([]int, len(v.keys)+1)
	for i := range v.keys {
		v.offsets[i+1] = v.offsets[i] + v.Height(i)
	}
	v.dirty = false
}

// Offset returns the start of row i. Offset(Len()) is the total height.
func (v *Virtualizer) Offset(i int) int {
	v.layout()
	if i < 0 {
		return 0
	}
	if i > len(v.keys) {
		i = len(v.keys)
	}
	return v.offsets[i]
}

// TotalHeight returns the summed height of all rows.
func (v *Virtualizer) TotalHeight() int {
	return v.Offset(len(v.keys))
}

// IndexAt returns the row containing offset y, clamped to the list.
func (v *Virtualizer) IndexAt(y int) int {
	v.layout()
	n := len(v.keys)
	if n == 0 {
		return 0
	}
	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if v.offsets[mid] <= y {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// IndexOf returns the row index of key, or -1.
func (v *Virtualizer) IndexOf(key string) int {
	for i, k := range v.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Window returns the rows to render for a viewport at scrollTop with the
// given height, padded by the overscan on both sides.
func (v *Virtualizer) Window(scrollTop, height int) Window {
	n := len(v.keys)
	if !v.Enabled() {
		return Window{Start: 0, End: n}
	}
	first := v.IndexAt(scrollTop)
	last := v.IndexAt(scrollTop + height - 1)

	start := first - v.overscan
	if start < 0 {
		start = 0
	}
	end := last + 1 + v.overscan
	if end > n {
		end = n
	}
	return Window{Start: start, End: end}
}
