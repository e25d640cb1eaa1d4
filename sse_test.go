package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func receive(t *testing.T, s *subscriber) Event {
	t.Helper()
	select {
	case msg := <-s.ch:
		var evt Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		return evt
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestBroadcasterRegisterUnregister(t *testing.T) {
	b := NewBroadcaster(discardLogger())

	s1 := b.Register("game1")
	s2 := b.Register("game1")
	s3 := b.Register("game2")

	assert.Equal(t, 2, b.SubscriberCount("game1"))
	assert.Equal(t, 1, b.SubscriberCount("game2"))

	b.Unregister(s1)
	assert.Equal(t, 1, b.SubscriberCount("game1"))

	b.Unregister(s2)
	b.Unregister(s3)
	assert.Zero(t, b.SubscriberCount("game1"))
	assert.Zero(t, b.SubscriberCount("game2"))
}

func TestBroadcasterDoubleUnregister(t *testing.T) {
	b := NewBroadcaster(discardLogger())
	s := b.Register("game1")
	b.Unregister(s)
	b.Unregister(s) // should not panic
}

func TestBroadcast(t *testing.T) {
	b := NewBroadcaster(discardLogger())

	s1 := b.Register("game1")
	s2 := b.Register("game1")
	s3 := b.Register("game2")
	defer func() {
		b.Unregister(s1)
		b.Unregister(s2)
		b.Unregister(s3)
	}()

	b.Broadcast("game1", cellUpdateEvent("Alice", 0, 4, "A"))

	for _, s := range []*subscriber{s1, s2} {
		evt := receive(t, s)
		assert.Equal(t, eventCellUpdate, evt.Type)
		assert.Equal(t, "Alice", evt.Pseudo)
		require.NotNil(t, evt.Row)
		assert.Equal(t, 0, *evt.Row, "row 0 must survive encoding")
		assert.Equal(t, 4, *evt.Col)
		assert.Equal(t, "A", *evt.Value)
	}

	// s3 is on game2, should not receive.
	select {
	case <-s3.ch:
		t.Fatal("s3 should not receive game1 event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastErase(t *testing.T) {
	b := NewBroadcaster(discardLogger())
	s := b.Register("game1")
	defer b.Unregister(s)

	b.Broadcast("game1", cellUpdateEvent("Bob", 1, 1, ""))

	msg := <-s.ch
	assert.Contains(t, string(msg), `"value":""`, "erasing must send an explicit empty value")
}

func TestBroadcastSkipsFullChannel(t *testing.T) {
	b := NewBroadcaster(discardLogger())
	s := b.Register("game1")
	defer b.Unregister(s)

	for range sseChannelBuffer {
		b.Broadcast("game1", Event{Type: eventPlayerJoined, Pseudo: "fill"})
	}

	// This should not block.
	b.Broadcast("game1", Event{Type: eventPlayerLeft, Pseudo: "overflow"})
	assert.Len(t, s.ch, sseChannelBuffer)
}

func TestBroadcasterConcurrent(t *testing.T) {
	b := NewBroadcaster(discardLogger())
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gameID := "game1"
			if i%2 == 0 {
				gameID = "game2"
			}
			s := b.Register(gameID)
			b.Broadcast(gameID, Event{Type: eventChecked})
			b.SubscriberCount(gameID)
			b.Unregister(s)
		}(i)
	}
	wg.Wait()

	assert.Zero(t, b.SubscriberCount("game1"))
	assert.Zero(t, b.SubscriberCount("game2"))
}
