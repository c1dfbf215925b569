package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routa-core/routa/internal/store"
)

func TestBusPublishDeliversToMatchingSubscriber(t *testing.T) {
	b := New()
	id := b.Subscribe("crafter-1", "crafter", []string{"task.*"}, false)
	ch, ok := b.Channel(id)
	require.True(t, ok)

	b.Publish(store.Event{Type: "task.completed", SourceAgentID: "routa-1"})
	b.Publish(store.Event{Type: "agent.created", SourceAgentID: "routa-1"})

	select {
	case ev := <-ch:
		assert.Equal(t, "task.completed", ev.Type)
	default:
		t.Fatal("expected a delivered event")
	}

	select {
	case ev := <-ch:
		t.Fatalf("unexpected second event delivered: %+v", ev)
	default:
	}
}

func TestBusExcludeSelfSkipsOwnEvents(t *testing.T) {
	b := New()
	id := b.Subscribe("routa-1", "routa", []string{"*"}, true)
	ch, _ := b.Channel(id)

	b.Publish(store.Event{Type: "task.created", SourceAgentID: "routa-1"})

	select {
	case <-ch:
		t.Fatal("expected self-originated event to be excluded")
	default:
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	id := b.Subscribe("a1", "a", []string{"*"}, false)
	ch, _ := b.Channel(id)
	b.Unsubscribe(id)

	_, ok := b.Channel(id)
	assert.False(t, ok)

	_, open := <-ch
	assert.False(t, open)
}

func TestBusOverflowDropsOldest(t *testing.T) {
	b := NewWithBufferSize(2)
	id := b.Subscribe("a1", "a", []string{"*"}, false)

	b.Publish(store.Event{Type: "e1"})
	b.Publish(store.Event{Type: "e2"})
	b.Publish(store.Event{Type: "e3"})

	assert.Equal(t, int64(1), b.OverflowCount(id))

	ch, _ := b.Channel(id)
	first := <-ch
	assert.Equal(t, "e2", first.Type)
	second := <-ch
	assert.Equal(t, "e3", second.Type)
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		glob, eventType string
		want            bool
	}{
		{"*", "task.completed", true},
		{"task.*", "task.completed", true},
		{"task.*", "agent.created", false},
		{"task.completed", "task.completed", true},
		{"task.completed", "task.failed", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matchGlob(c.glob, c.eventType), "glob=%q type=%q", c.glob, c.eventType)
	}
}
