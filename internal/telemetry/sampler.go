package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/axemon/internal/axeos"
)

// DefaultInterval is the poll cadence used when none is configured.
const DefaultInterval = 5 * time.Second

// Update is one delivery to an observer: a fresh snapshot, or the error that
// ended the sampling run.
type Update struct {
	Snapshot Snapshot
	Err      error
}

// Sampler polls an InfoFetcher and shares the latest normalized snapshot with
// any number of observers. Polling runs only while at least one observer is
// subscribed; the provider is called once per tick however many observers
// there are.
type Sampler struct {
	provider axeos.InfoFetcher
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	latest *Snapshot
	run    *run
}

// run is one sampling session, from the first subscribe to teardown or error.
type run struct {
	cancel   context.CancelFunc
	gen      uint64
	inflight context.CancelFunc
}

// NewSampler returns an idle sampler. Interval values <= 0 use DefaultInterval.
func NewSampler(provider axeos.InfoFetcher, interval time.Duration, log zerolog.Logger) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		provider: provider,
		interval: interval,
		log:      log.With().Str("component", "telemetry").Logger(),
		now:      time.Now,
		subs:     make(map[uint64]*Subscription),
	}
}

// Interval returns the poll cadence.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// Latest returns the cached snapshot, if any.
func (s *Sampler) Latest() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return *s.latest, true
}

// Subscribe registers an observer. When a snapshot is cached it is already
// waiting on the returned channel; otherwise the first result arrives once
// the first fetch completes. The first subscriber starts polling.
func (s *Sampler) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub := &Subscription{
		id:      s.nextID,
		ch:      make(chan Update, 1),
		sampler: s,
	}
	s.subs[sub.id] = sub
	if s.latest != nil {
		sub.ch <- Update{Snapshot: *s.latest}
	}
	if s.run == nil {
		s.start()
	}
	return sub
}

// start must be called with s.mu held.
func (s *Sampler) start() {
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{cancel: cancel}
	s.run = r
	s.log.Debug().Dur("interval", s.interval).Msg("sampler started")
	go s.loop(ctx, r)
}

// stop must be called with s.mu held. It cancels the run and any in-flight
// fetch, and drops the cache so a later run starts clean.
func (s *Sampler) stop() {
	if s.run == nil {
		return
	}
	if s.run.inflight != nil {
		s.run.inflight()
	}
	s.run.cancel()
	s.run = nil
	s.latest = nil
}

func (s *Sampler) loop(ctx context.Context, r *run) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if !s.beginFetch(r) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// beginFetch supersedes any outstanding fetch and starts a new one. It
// reports false once r is no longer the active run.
func (s *Sampler) beginFetch(r *run) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != r {
		return false
	}
	if r.inflight != nil {
		r.inflight()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.inflight = cancel
	r.gen++
	go s.fetch(ctx, r, r.gen)
	return true
}

func (s *Sampler) fetch(ctx context.Context, r *run, gen uint64) {
	if ctx.Err() != nil {
		return
	}
	info, err := s.provider.GetInfo(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != r || r.gen != gen {
		// superseded by a newer tick or torn down
		return
	}
	r.inflight = nil
	if err != nil {
		s.fail(err)
		return
	}

	snap := Normalize(info)
	snap.SampledAt = s.now()
	s.latest = &snap
	for _, sub := range s.subs {
		sub.offer(Update{Snapshot: snap})
	}
}

// fail must be called with s.mu held. The error is terminal for the run:
// every observer gets it and is then closed.
func (s *Sampler) fail(err error) {
	s.log.Warn().Err(err).Int("observers", len(s.subs)).Msg("telemetry fetch failed")
	for id, sub := range s.subs {
		sub.offer(Update{Err: err})
		close(sub.ch)
		delete(s.subs, id)
	}
	s.stop()
}

func (s *Sampler) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub.id]; !ok {
		return
	}
	delete(s.subs, sub.id)
	close(sub.ch)
	if len(s.subs) == 0 {
		s.stop()
		s.log.Debug().Msg("sampler stopped")
	}
}

// Subscription is one observer's view of a Sampler.
type Subscription struct {
	id      uint64
	ch      chan Update
	sampler *Sampler
}

// C delivers updates in poll order. Only the newest undelivered update is
// kept for a slow reader. The channel is closed after an error update or
// Close.
func (s *Subscription) C() <-chan Update {
	return s.ch
}

// Close unsubscribes. The last Close stops polling. Safe to call twice.
func (s *Subscription) Close() {
	s.sampler.unsubscribe(s)
}

// offer must be called with the sampler's mutex held, which makes it the only
// sender on ch.
func (s *Subscription) offer(u Update) {
	select {
	case s.ch <- u:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- u
}
