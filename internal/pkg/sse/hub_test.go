package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyRecipient(t *testing.T) {
	h := NewHub()
	a, cleanupA := h.Subscribe("emp-a")
	defer cleanupA()
	b, cleanupB := h.Subscribe("emp-b")
	defer cleanupB()

	n := h.Publish("emp-a", Event{Name: "notification", Data: "hello"})
	assert.Equal(t, 1, n)

	select {
	case ev := <-a:
		assert.Equal(t, "notification", ev.Name)
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected event for emp-a")
	}

	select {
	case <-b:
		t.Fatal("emp-b must not receive emp-a's event")
	default:
	}
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("emp-a")
	require.Equal(t, 1, h.SubscriberCount("emp-a"))

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.TotalSubscribers())
	assert.Equal(t, 0, h.Publish("emp-a", Event{Name: "x"}))
}

func TestHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	h := NewHub()
	_, cleanup := h.Subscribe("emp-a")
	defer cleanup()

	for i := 0; i < subscriberBuffer; i++ {
		require.Equal(t, 1, h.Publish("emp-a", Event{Name: "n"}))
	}
	assert.Equal(t, 0, h.Publish("emp-a", Event{Name: "overflow"}))
}
