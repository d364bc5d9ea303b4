package logview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSurface struct {
	height   int
	commands []ScrollOptions
}

func (s *recordingSurface) ScrollHeight() int { return s.height }

func (s *recordingSurface) ScrollTo(o ScrollOptions) { s.commands = append(s.commands, o) }

func TestAutoScroll_OneCommandPerRender(t *testing.T) {
	var a AutoScroll
	s := &recordingSurface{height: 480}

	for i := 0; i < 3; i++ {
		assert.True(t, a.AfterRender(s))
	}

	assert.Len(t, s.commands, 3)
	for _, c := range s.commands {
		assert.Equal(t, ScrollOptions{Left: 0, Top: 480, Behavior: ScrollSmooth}, c)
	}
}

func TestAutoScroll_SuppressedIssuesNothing(t *testing.T) {
	var a AutoScroll
	s := &recordingSurface{height: 100}

	a.Suppress()
	for i := 0; i < 50; i++ {
		assert.False(t, a.AfterRender(s))
	}
	assert.Empty(t, s.commands)

	a.Resume()
	assert.True(t, a.AfterRender(s))
	assert.Len(t, s.commands, 1)
}

func TestAutoScroll_MissingSurfaceIsNoop(t *testing.T) {
	var a AutoScroll
	assert.NotPanics(t, func() {
		assert.False(t, a.AfterRender(nil))
	})
}

func TestAutoScroll_Toggle(t *testing.T) {
	var a AutoScroll
	assert.False(t, a.Suppressed())
	assert.False(t, a.Toggle())
	assert.True(t, a.Suppressed())
	assert.True(t, a.Toggle())
	assert.False(t, a.Suppressed())
}
