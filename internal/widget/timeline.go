package widget

import (
	"context"
	"sync"
	"time"

	"github.com/nhle/taskdock/internal/reminder"
)

// DefaultRefreshInterval is the periodic refresh cadence.
const DefaultRefreshInterval = time.Hour

// refreshTimeout is the maximum time allowed for a single snapshot.
const refreshTimeout = 10 * time.Second

// Timeline keeps a widget's snapshot current. It refreshes on start, every
// interval, at each local midnight and whenever Trigger is called.
type Timeline struct {
	provider *Provider
	clock    reminder.Clock
	interval time.Duration

	latest    Snapshot
	updateCh  chan Snapshot
	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        sync.Mutex
	started   bool
	running   bool
}

// NewTimeline creates a Timeline over p. A nil clock uses the wall clock.
func NewTimeline(p *Provider, interval time.Duration, clock reminder.Clock) *Timeline {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if clock == nil {
		clock = reminder.RealClock{}
	}
	return &Timeline{
		provider:  p,
		clock:     clock,
		interval:  interval,
		updateCh:  make(chan Snapshot, 4),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// NextRefresh returns when the snapshot taken at now goes stale: after the
// interval, or at the next midnight if that comes first.
func (tl *Timeline) NextRefresh(now time.Time) time.Time {
	next := now.Add(tl.interval)
	midnight := StartOfDay(now).AddDate(0, 0, 1)
	if midnight.Before(next) {
		return midnight
	}
	return next
}

// Start launches the refresh goroutine. A Timeline runs at most once.
func (tl *Timeline) Start() {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.started {
		return
	}
	tl.started = true
	tl.running = true
	go tl.loop()
}

// Stop halts the refresh goroutine and waits for it to exit.
func (tl *Timeline) Stop() {
	tl.mu.Lock()
	if !tl.running {
		tl.mu.Unlock()
		return
	}
	tl.running = false
	close(tl.stopCh)
	tl.mu.Unlock()

	<-tl.doneCh
}

// Trigger requests an immediate refresh, for example after the app saved a
// change.
func (tl *Timeline) Trigger() {
	select {
	case tl.triggerCh <- struct{}{}:
	default:
	}
}

// Updates returns the channel new snapshots are sent on. Snapshots are
// dropped when the reader falls behind; Latest always has the newest.
func (tl *Timeline) Updates() <-chan Snapshot {
	return tl.updateCh
}

// Latest returns the most recent snapshot.
func (tl *Timeline) Latest() Snapshot {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.latest
}

func (tl *Timeline) loop() {
	defer close(tl.doneCh)

	for {
		now := tl.refresh()
		timer := time.NewTimer(tl.NextRefresh(now).Sub(now))

		select {
		case <-tl.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		case <-tl.triggerCh:
			timer.Stop()
		}
	}
}

func (tl *Timeline) refresh() time.Time {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	now := tl.clock.Now()
	snap := tl.provider.Snapshot(ctx, now)

	tl.mu.Lock()
	tl.latest = snap
	tl.mu.Unlock()

	select {
	case tl.updateCh <- snap:
	default:
		// Drop if channel is full to avoid blocking the loop
	}
	return now
}
