package bus

import "sync"

// Subscription is one observer's view of a topic. Events are buffered in an
// unbounded queue and handed out on C by a dedicated goroutine, so a slow
// reader delays only itself.
type Subscription struct {
	bus   *Bus
	topic Topic

	mu    sync.Mutex
	cond  *sync.Cond
	queue []Event
	done  bool

	out  chan Event
	stop chan struct{}
	once sync.Once
}

func newSubscription(b *Bus, topic Topic) *Subscription {
	s := &Subscription{
		bus:   b,
		topic: topic,
		out:   make(chan Event),
		stop:  make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.pump()
	return s
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() Topic { return s.topic }

// C returns the delivery channel. It is closed when the subscription or
// its bus is closed.
func (s *Subscription) C() <-chan Event { return s.out }

// Close detaches the subscription. Undelivered events are discarded.
func (s *Subscription) Close() {
	s.bus.remove(s)
	s.shutdown()
}

func (s *Subscription) enqueue(ev Event) {
	s.mu.Lock()
	if !s.done {
		s.queue = append(s.queue, ev)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *Subscription) shutdown() {
	s.once.Do(func() {
		s.mu.Lock()
		s.done = true
		s.queue = nil
		s.cond.Broadcast()
		s.mu.Unlock()
		close(s.stop)
	})
}

func (s *Subscription) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.done {
			s.cond.Wait()
		}
		if s.done {
			s.mu.Unlock()
			return
		}
		ev := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.stop:
			return
		}
	}
}
