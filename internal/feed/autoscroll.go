package feed

// AutoScroll decides whether the feed follows new content. It uses two
// thresholds so small scroll jitter near the bottom does not flip the state:
// following stops only past ReleaseDistance and resumes only within
// CaptureDistance.
type AutoScroll struct {
	enabled bool
	capture int
	release int
}

// NewAutoScroll returns an enabled controller.
func NewAutoScroll(capture, release int) *AutoScroll {
	return &AutoScroll{enabled: true, capture: capture, release: release}
}

// Enabled reports whether the feed is following new content.
func (a *AutoScroll) Enabled() bool {
	return a.enabled
}

// Observe updates the state from a scroll event at the given distance from
// the bottom and returns the new state.
func (a *AutoScroll) Observe(distance int) bool {
	if a.enabled {
		if distance > a.release {
			a.enabled = false
		}
	} else if distance <= a.capture {
		a.enabled = true
	}
	return a.enabled
}

// ShouldSnap reports whether a list-affecting update should move the
// viewport to the bottom.
func (a *AutoScroll) ShouldSnap(distance int) bool {
	return a.enabled || distance <= a.capture
}

// Reset re-enables following. Called on every thread switch.
func (a *AutoScroll) Reset() {
	a.enabled = true
}

// Viewport is the scroll geometry of the feed.
type Viewport struct {
	ScrollTop     int
	Height        int
	ContentHeight int
}

// MaxScrollTop returns the largest valid scroll offset.
func (v Viewport) MaxScrollTop() int {
	if m := v.ContentHeight - v.Height; m > 0 {
		return m
	}
	return 0
}

// DistanceFromBottom returns how far the viewport's bottom edge is from the
// end of the content.
func (v Viewport) DistanceFromBottom() int {
	d := v.ContentHeight - (v.ScrollTop + v.Height)
	if d < 0 {
		return 0
	}
	return d
}

// Clamp returns v with ScrollTop inside [0, MaxScrollTop].
func (v Viewport) Clamp() Viewport {
	if v.ScrollTop > v.MaxScrollTop() {
		v.ScrollTop = v.MaxScrollTop()
	}
	if v.ScrollTop < 0 {
		v.ScrollTop = 0
	}
	return v
}
