package logview

import (
	"context"

	"github.com/rs/zerolog"
)

// Source delivers console lines until ctx is cancelled or the stream fails.
// A nil return after cancellation is a clean shutdown.
type Source interface {
	Stream(ctx context.Context, deliver func(line string)) error
}

// State is the viewer's streaming state.
type State int

const (
	Disabled State = iota
	Enabled
)

func (s State) String() string {
	if s == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Event is produced by a stream subscription. Done marks the end of the
// subscription, with Err set when it failed.
type Event struct {
	Session uint64
	Line    string
	Err     error
	Done    bool
}

const eventBacklog = 256

// Viewer owns the log buffer and the stream subscription that feeds it.
//
// Viewer is not safe for concurrent use. Its methods are meant to be called
// from one goroutine (the UI update loop), which also drains Events and passes
// each one to Handle. Only the subscription goroutine touches the events
// channel concurrently.
type Viewer struct {
	source Source
	log    zerolog.Logger
	buf    *Buffer
	events chan Event

	state   State
	session uint64
	cancel  context.CancelFunc
	live    bool
	err     error
	version uint64
	closed  bool
}

// NewViewer returns a disabled viewer reading from source.
func NewViewer(source Source, log zerolog.Logger) *Viewer {
	return &Viewer{
		source: source,
		log:    log.With().Str("component", "logview").Logger(),
		buf:    NewBuffer(Capacity),
		events: make(chan Event, eventBacklog),
	}
}

// Enable starts streaming. It is a no-op while a subscription is live, so
// repeated calls never open a second stream. Enabling after the previous
// subscription ended opens a new one and appends to the same buffer.
func (v *Viewer) Enable() {
	if v.closed {
		return
	}
	v.state = Enabled
	if v.live {
		return
	}

	v.session++
	v.err = nil
	v.live = true
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.log.Debug().Uint64("session", v.session).Msg("log stream subscribe")
	go v.run(ctx, v.session)
}

// Disable cancels the subscription. Events it already queued are ignored by
// Handle, so nothing from it reaches the buffer once Disable returns.
// Buffered entries are kept.
func (v *Viewer) Disable() {
	if v.state == Disabled {
		return
	}
	v.state = Disabled
	v.stopStream()
}

// Toggle flips between Enabled and Disabled and returns the new state.
func (v *Viewer) Toggle() State {
	if v.state == Enabled {
		v.Disable()
	} else {
		v.Enable()
	}
	return v.state
}

// Close disables the viewer for good and drops the buffer.
func (v *Viewer) Close() {
	v.Disable()
	v.buf.Clear()
	v.closed = true
	v.version++
}

func (v *Viewer) stopStream() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.live = false
	v.session++
	v.log.Debug().Msg("log stream unsubscribe")
}

func (v *Viewer) run(ctx context.Context, session uint64) {
	emit := func(ev Event) {
		select {
		case v.events <- ev:
		case <-ctx.Done():
		}
	}
	err := v.source.Stream(ctx, func(line string) {
		emit(Event{Session: session, Line: line})
	})
	if ctx.Err() != nil {
		return
	}
	emit(Event{Session: session, Err: err, Done: true})
}

// Events is the channel the owning loop drains. It is never closed.
func (v *Viewer) Events() <-chan Event {
	return v.events
}

// Handle applies ev and reports whether it changed the viewer. Events from a
// cancelled or superseded subscription are dropped.
func (v *Viewer) Handle(ev Event) bool {
	if v.state != Enabled || ev.Session != v.session {
		return false
	}
	if ev.Done {
		if ev.Err != nil {
			v.log.Warn().Err(ev.Err).Msg("log stream ended")
		}
		v.err = ev.Err
		v.cancel()
		v.cancel = nil
		v.live = false
		v.version++
		return true
	}
	v.Ingest(ev.Line)
	return true
}

// Ingest classifies line and appends it to the buffer.
func (v *Viewer) Ingest(line string) {
	v.buf.Append(NewEntry(line))
	v.version++
}

// State returns the current streaming state.
func (v *Viewer) State() State { return v.state }

// Enabled reports whether the viewer is enabled.
func (v *Viewer) Enabled() bool { return v.state == Enabled }

// Streaming reports whether a subscription is live.
func (v *Viewer) Streaming() bool { return v.live }

// Err returns the error that ended the last subscription, if any.
func (v *Viewer) Err() error { return v.err }

// Entries returns the buffered entries, oldest first.
func (v *Viewer) Entries() []Entry { return v.buf.Entries() }

// Len returns the number of buffered entries.
func (v *Viewer) Len() int { return v.buf.Len() }

// Version changes whenever the buffer or subscription status changes.
func (v *Viewer) Version() uint64 { return v.version }
