package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhle/taskdock/internal/bus"
	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/reminder"
)

// Deliverer presents a notification to the user.
type Deliverer interface {
	Deliver(ctx context.Context, n model.Notification) error
}

// DeliverFunc adapts a function to the Deliverer interface.
type DeliverFunc func(ctx context.Context, n model.Notification) error

func (f DeliverFunc) Deliver(ctx context.Context, n model.Notification) error { return f(ctx, n) }

// LogDeliverer writes notifications to the global logger.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(_ context.Context, n model.Notification) error {
	log.Info().
		Str("task_id", n.TaskID).
		Time("fire_at", n.FireAt).
		Str("body", n.Body).
		Msg(n.Title)
	return nil
}

// DispatchState represents the current state of the dispatch loop.
type DispatchState int

const (
	DispatchIdle DispatchState = iota
	DispatchRunning
	DispatchError
)

// DispatchStatus describes the last dispatch pass.
type DispatchStatus struct {
	State     DispatchState
	LastRun   time.Time
	Delivered int
	Error     error
}

// DispatchResult is sent on Results after every pass.
type DispatchResult struct {
	Delivered []model.Notification
	Error     error
}

// dispatchTimeout is the maximum time allowed for a single pass.
const dispatchTimeout = 30 * time.Second

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 15 * time.Second

// Dispatcher periodically delivers due notifications and marks them
// delivered.
type Dispatcher struct {
	registry  Registry
	deliverer Deliverer
	clock     reminder.Clock
	interval  time.Duration
	changes   <-chan bus.Event

	status    DispatchStatus
	resultCh  chan DispatchResult
	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        sync.Mutex
	passMu    sync.Mutex
	running   bool
	started   bool
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Interval time.Duration
	Clock    reminder.Clock
	// Changes, when set, runs an extra pass for every event received.
	Changes <-chan bus.Event
}

// NewDispatcher creates a Dispatcher. A nil deliverer logs notifications.
func NewDispatcher(r Registry, d Deliverer, opts DispatcherOptions) *Dispatcher {
	if d == nil {
		d = LogDeliverer{}
	}
	if opts.Clock == nil {
		opts.Clock = reminder.RealClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	return &Dispatcher{
		registry:  r,
		deliverer: d,
		clock:     opts.Clock,
		interval:  opts.Interval,
		changes:   opts.Changes,
		resultCh:  make(chan DispatchResult, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the dispatch loop. A Dispatcher runs at most once; later
// calls are no-ops.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true
	d.running = true
	go d.loop()
}

// Stop halts the dispatch loop and waits for the current pass to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopCh)
	d.mu.Unlock()

	<-d.doneCh
}

// Trigger requests an immediate pass.
func (d *Dispatcher) Trigger() {
	select {
	case d.triggerCh <- struct{}{}:
	default:
		// A pass is already queued.
	}
}

// Results returns the channel pass results are sent on. Results are dropped
// when nobody reads them.
func (d *Dispatcher) Results() <-chan DispatchResult {
	return d.resultCh
}

// Status returns the outcome of the most recent pass.
func (d *Dispatcher) Status() DispatchStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Dispatcher) loop() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.runPass()

	changes := d.changes
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.runPass()
		case <-d.triggerCh:
			d.runPass()
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			d.runPass()
		}
	}
}

func (d *Dispatcher) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	delivered, err := d.DeliverDue(ctx)
	d.sendResult(DispatchResult{Delivered: delivered, Error: err})
}

// DeliverDue delivers every notification whose fire time has passed and
// returns the ones delivered. A failed delivery stays pending for the next
// pass.
func (d *Dispatcher) DeliverDue(ctx context.Context) ([]model.Notification, error) {
	d.passMu.Lock()
	defer d.passMu.Unlock()

	d.setStatus(DispatchRunning, 0, nil)

	due, err := d.registry.DueNotifications(ctx, d.clock.Now())
	if err != nil {
		d.setStatus(DispatchError, 0, err)
		return nil, err
	}

	var delivered []model.Notification
	for _, n := range due {
		if err := d.deliverer.Deliver(ctx, n); err != nil {
			log.Warn().Err(err).Str("id", n.ID).Msg("delivering notification")
			continue
		}
		if err := d.registry.MarkNotificationDelivered(ctx, n.ID, n.FireAt); err != nil {
			d.setStatus(DispatchError, len(delivered), err)
			return delivered, err
		}
		n.Delivered = true
		delivered = append(delivered, n)
	}

	d.setStatus(DispatchIdle, len(delivered), nil)
	return delivered, nil
}

func (d *Dispatcher) setStatus(state DispatchState, delivered int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status.State = state
	d.status.Error = err
	if state != DispatchRunning {
		d.status.Delivered = delivered
		d.status.LastRun = d.clock.Now()
	}
}

// sendResult sends a result without blocking.
func (d *Dispatcher) sendResult(r DispatchResult) {
	select {
	case d.resultCh <- r:
	default:
		// Drop if channel is full to avoid blocking the loop
	}
}
