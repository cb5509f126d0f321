package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, s *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-s.C():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe(TasksChanged)

	// Publish far more than any channel buffer would hold before reading.
	for i := 0; i < 500; i++ {
		b.Publish(TasksChanged, Payload{ID: string(rune('a' + i%26))})
	}

	var last uint64
	for i := 0; i < 500; i++ {
		ev := receive(t, sub)
		assert.Equal(t, TasksChanged, ev.Topic)
		assert.Greater(t, ev.Seq, last)
		assert.Equal(t, string(rune('a'+i%26)), ev.Payload.ID)
		last = ev.Seq
	}
}

func TestSubscriberOnlySeesLaterPublications(t *testing.T) {
	b := New()
	defer b.Close()

	b.Publish(CategoriesChanged, Payload{ID: "before"})
	sub := b.Subscribe(CategoriesChanged)
	b.Publish(CategoriesChanged, Payload{ID: "after"})

	ev := receive(t, sub)
	assert.Equal(t, "after", ev.Payload.ID)
}

func TestTopicsAreIsolated(t *testing.T) {
	b := New()
	defer b.Close()

	tasks := b.Subscribe(TasksChanged)
	data := b.Subscribe(DataChanged)

	b.Publish(DataChanged, Payload{Batch: true})
	b.Publish(TasksChanged, Payload{ID: "t1", Kind: KindCreated})

	assert.Equal(t, "t1", receive(t, tasks).Payload.ID)
	assert.True(t, receive(t, data).Payload.Batch)
}

func TestEverySubscriberReceivesEveryEvent(t *testing.T) {
	b := New()
	defer b.Close()

	subs := []*Subscription{b.Subscribe(DataChanged), b.Subscribe(DataChanged), b.Subscribe(DataChanged)}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		b.Publish(DataChanged, Payload{})
	}
	for _, s := range subs {
		wg.Add(1)
		go func(s *Subscription) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				receive(t, s)
			}
		}(s)
	}
	wg.Wait()
}

func TestCloseSubscription(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe(TasksChanged)
	sub.Close()
	b.Publish(TasksChanged, Payload{ID: "ignored"})

	select {
	case _, ok := <-sub.C():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestCloseBusEndsSubscriptions(t *testing.T) {
	b := New()
	sub := b.Subscribe(DataChanged)
	b.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)

	late := b.Subscribe(DataChanged)
	_, ok = <-late.C()
	assert.False(t, ok)

	// Publishing after close is a no-op.
	b.Publish(DataChanged, Payload{})
}

func TestTopicValid(t *testing.T) {
	for _, topic := range Topics {
		assert.True(t, topic.Valid())
	}
	assert.False(t, Topic("notesChanged").Valid())
}
