package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// Event types pushed to solvers.
const (
	eventGameState    = "game_state"
	eventPlayerJoined = "player_joined"
	eventPlayerLeft   = "player_left"
	eventCellUpdate   = "cell_update"
	eventChecked      = "checked"
)

// Event is one message of the game stream. Only the fields relevant to
// Type are set.
type Event struct {
	Type    string             `json:"type"`
	Pseudo  string             `json:"pseudo,omitempty"`
	Color   string             `json:"color,omitempty"`
	Row     *int               `json:"row,omitempty"`
	Col     *int               `json:"col,omitempty"`
	Value   *string            `json:"value,omitempty"`
	State   [][]string         `json:"state,omitempty"`
	Players map[string]*Player `json:"players,omitempty"`
	Result  *CheckResult       `json:"result,omitempty"`
}

func cellUpdateEvent(pseudo string, row, col int, value string) Event {
	return Event{Type: eventCellUpdate, Pseudo: pseudo, Row: &row, Col: &col, Value: &value}
}

// subscriber is a single SSE connection.
type subscriber struct {
	ch     chan []byte
	gameID string
}

// Broadcaster fans game events out to the SSE connections of each session.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	logger *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
	}
}

// Register adds a subscriber for a game session.
func (b *Broadcaster) Register(gameID string) *subscriber {
	s := &subscriber{
		ch:     make(chan []byte, sseChannelBuffer),
		gameID: gameID,
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unregister removes a subscriber and closes its channel.
func (b *Broadcaster) Unregister(s *subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
	b.mu.Unlock()
}

// Broadcast sends evt to every subscriber of a game session. Subscribers
// whose buffer is full miss the event.
func (b *Broadcaster) Broadcast(gameID string, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		b.logger.Error("marshal event", "type", evt.Type, "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		if s.gameID != gameID {
			continue
		}
		select {
		case s.ch <- data:
		default:
			b.logger.Debug("dropped event for slow subscriber", "game", gameID, "type", evt.Type)
		}
	}
}

// SubscriberCount returns the number of open connections for a game.
func (b *Broadcaster) SubscriberCount(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for s := range b.subs {
		if s.gameID == gameID {
			n++
		}
	}
	return n
}

// ServeSSE streams the events of a game session until the client goes away.
// initial is sent first, before any broadcast event.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, gameID string, initial Event, onDisconnect func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, "Streaming non supporté", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s := b.Register(gameID)
	defer func() {
		b.Unregister(s)
		if onDisconnect != nil {
			onDisconnect()
		}
	}()

	if data, err := json.Marshal(initial); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-s.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
