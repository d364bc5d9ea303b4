package logview

// ScrollBehavior selects how a surface moves to a new position.
type ScrollBehavior int

const (
	ScrollAuto ScrollBehavior = iota
	ScrollSmooth
)

// ScrollOptions is a scroll command for a Surface.
type ScrollOptions struct {
	Left     int
	Top      int
	Behavior ScrollBehavior
}

// Surface is a scrollable display region.
type Surface interface {
	ScrollHeight() int
	ScrollTo(ScrollOptions)
}

// AutoScroll keeps a surface pinned to its bottom after each render unless
// the user has taken over scrolling. The zero value is active.
type AutoScroll struct {
	suppressed bool
}

// Suppress stops auto-scrolling until Resume.
func (a *AutoScroll) Suppress() { a.suppressed = true }

// Resume re-enables auto-scrolling.
func (a *AutoScroll) Resume() { a.suppressed = false }

// Toggle flips suppression and reports whether auto-scroll is now active.
func (a *AutoScroll) Toggle() bool {
	a.suppressed = !a.suppressed
	return !a.suppressed
}

// Suppressed reports whether auto-scroll is suspended.
func (a *AutoScroll) Suppressed() bool { return a.suppressed }

// AfterRender issues one scroll-to-bottom command to s. A nil surface means
// nothing is mounted yet and is skipped. It reports whether a command was
// issued.
func (a *AutoScroll) AfterRender(s Surface) bool {
	if a.suppressed || s == nil {
		return false
	}
	s.ScrollTo(ScrollOptions{Left: 0, Top: s.ScrollHeight(), Behavior: ScrollSmooth})
	return true
}
