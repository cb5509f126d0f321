// Package bus is the in-process change bus that fans out store mutation
// events to observers. It never crosses process boundaries: other processes
// re-query the store instead.
package bus

import (
	"sync"
)

// Topic identifies a class of change. The string values are the stable
// wire names observers match on.
type Topic string

const (
	TasksChanged      Topic = "tasksChanged"
	CategoriesChanged Topic = "categoriesChanged"
	// DataChanged is published alongside every specific topic.
	DataChanged Topic = "dataChanged"
)

// Topics lists every valid topic.
var Topics = []Topic{TasksChanged, CategoriesChanged, DataChanged}

// Valid reports whether t is one of the closed set of topics.
func (t Topic) Valid() bool {
	switch t {
	case TasksChanged, CategoriesChanged, DataChanged:
		return true
	}
	return false
}

// ChangeKind describes what happened to the affected record.
type ChangeKind string

const (
	KindCreated ChangeKind = "created"
	KindUpdated ChangeKind = "updated"
	KindDeleted ChangeKind = "deleted"
)

// Payload carries optional details about a change. Empty fields mean
// "not specified"; a Batch payload has no ID.
type Payload struct {
	ID          string     `json:"id,omitempty"`
	Kind        ChangeKind `json:"kind,omitempty"`
	IsCompleted *bool      `json:"isCompleted,omitempty"`
	CategoryID  string     `json:"categoryId,omitempty"`
	Batch       bool       `json:"batch,omitempty"`
}

// Event is a single delivered publication.
type Event struct {
	Topic   Topic
	Payload Payload
	// Seq increases by one for every publication on the bus.
	Seq uint64
}

// Bus is a topic-keyed fan-out owned by a store instance.
type Bus struct {
	mu     sync.Mutex
	subs   map[Topic]map[*Subscription]struct{}
	seq    uint64
	closed bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[Topic]map[*Subscription]struct{})}
}

// Publish delivers the payload to every current subscriber of topic.
// It never blocks on slow subscribers and never drops events.
func (b *Bus) Publish(topic Topic, p Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.seq++
	ev := Event{Topic: topic, Payload: p, Seq: b.seq}
	for s := range b.subs[topic] {
		s.enqueue(ev)
	}
}

// Subscribe returns a subscription that receives every publication on topic
// made after this call, in publish order.
func (b *Bus) Subscribe(topic Topic) *Subscription {
	s := newSubscription(b, topic)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		s.shutdown()
		return s
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*Subscription]struct{})
	}
	b.subs[topic][s] = struct{}{}
	return s
}

// Close ends every subscription. Later publications are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []*Subscription
	for _, set := range b.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	b.subs = nil
	b.mu.Unlock()

	for _, s := range all {
		s.shutdown()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[s.topic]; ok {
		delete(set, s)
	}
}
