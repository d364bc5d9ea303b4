package logview

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource fans every pushed line out to all live streams.
type fakeSource struct {
	calls  atomic.Int32
	active atomic.Int32
	lines  chan string
	fail   chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{lines: make(chan string), fail: make(chan error)}
}

func (f *fakeSource) Stream(ctx context.Context, deliver func(string)) error {
	f.calls.Add(1)
	f.active.Add(1)
	defer f.active.Add(-1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case l := <-f.lines:
			deliver(l)
		case err := <-f.fail:
			return err
		}
	}
}

func (f *fakeSource) push(t *testing.T, line string) {
	t.Helper()
	select {
	case f.lines <- line:
	case <-time.After(2 * time.Second):
		t.Fatal("no live stream accepted the line")
	}
}

// pump hands the next event to the viewer.
func pump(t *testing.T, v *Viewer) (Event, bool) {
	t.Helper()
	select {
	case ev := <-v.Events():
		return ev, v.Handle(ev)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for viewer event")
		return Event{}, false
	}
}

func TestViewer_EnableTwiceOpensOneStream(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, zerolog.Nop())
	defer v.Close()

	v.Enable()
	v.Enable()
	require.Eventually(t, func() bool { return src.active.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	src.push(t, "\x1b[0;32mI (1) boot: ok\x1b[0m")
	_, applied := pump(t, v)
	require.True(t, applied)

	assert.Equal(t, 1, v.Len())
	assert.EqualValues(t, 1, src.calls.Load())

	select {
	case ev := <-v.Events():
		t.Fatalf("unexpected second event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestViewer_AppendsInReceiptOrder(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, zerolog.Nop())
	defer v.Close()
	v.Enable()

	sent := []string{"\x1b[0;31mE one\x1b[0m", "two", "\x1b[0;33mW three\x1b[0m"}
	for _, l := range sent {
		src.push(t, l)
		pump(t, v)
	}

	entries := v.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, sent, texts(entries))
	assert.Equal(t, []Class{ClassRed, ClassWhite, ClassYellow},
		[]Class{entries[0].Class, entries[1].Class, entries[2].Class})
}

func TestViewer_DisableKeepsEntriesAndDropsLateEvents(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, zerolog.Nop())
	defer v.Close()

	v.Enable()
	src.push(t, "first")
	pump(t, v)

	// A line already queued before Disable must not land afterwards.
	src.push(t, "in flight")
	require.Eventually(t, func() bool { return len(v.Events()) == 1 }, 2*time.Second, 5*time.Millisecond)

	v.Disable()
	assert.Equal(t, Disabled, v.State())
	assert.False(t, v.Streaming())

	_, applied := pump(t, v)
	assert.False(t, applied)
	assert.Equal(t, []string{"first"}, texts(v.Entries()))
	require.Eventually(t, func() bool { return src.active.Load() == 0 }, 2*time.Second, 5*time.Millisecond)

	v.Disable()

	v.Enable()
	src.push(t, "second")
	pump(t, v)
	assert.Equal(t, []string{"first", "second"}, texts(v.Entries()))
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestViewer_StreamErrorEndsSubscription(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, zerolog.Nop())
	defer v.Close()
	v.Enable()

	boom := errors.New("socket closed")
	select {
	case src.fail <- boom:
	case <-time.After(2 * time.Second):
		t.Fatal("stream never started")
	}

	ev, applied := pump(t, v)
	require.True(t, applied)
	assert.True(t, ev.Done)
	assert.ErrorIs(t, v.Err(), boom)
	assert.True(t, v.Enabled(), "panel stays open to show the error")
	assert.False(t, v.Streaming())

	v.Enable()
	assert.True(t, v.Streaming())
	assert.NoError(t, v.Err())
	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestViewer_ToggleAndClose(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, zerolog.Nop())

	assert.Equal(t, Enabled, v.Toggle())
	src.push(t, "kept until close")
	pump(t, v)
	assert.Equal(t, Disabled, v.Toggle())
	assert.Equal(t, 1, v.Len())

	before := v.Version()
	v.Close()
	assert.Zero(t, v.Len())
	assert.NotEqual(t, before, v.Version())

	v.Enable()
	assert.Equal(t, Disabled, v.State(), "closed viewer stays off")
	require.Eventually(t, func() bool { return src.active.Load() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestViewer_IngestWithoutStream(t *testing.T) {
	v := NewViewer(newFakeSource(), zerolog.Nop())
	for _, l := range lines(1, 300) {
		v.Ingest(l)
	}
	assert.Equal(t, lines(45, 300), texts(v.Entries()))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "enabled", Enabled.String())
	assert.Equal(t, "disabled", Disabled.String())
}
