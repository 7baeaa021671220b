package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 32
	sseHeartbeat     = 30 * time.Second
)

// client is a single SSE connection watching one game.
type client struct {
	ch     chan []byte
	gameID string
}

// Broadcaster fans game events out to SSE clients, grouped by game.
type Broadcaster struct {
	mu    sync.RWMutex
	games map[string]map[*client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		games: make(map[string]map[*client]struct{}),
	}
}

// Register adds a client for a game and returns it.
func (b *Broadcaster) Register(gameID string) *client {
	c := &client{
		ch:     make(chan []byte, sseChannelBuffer),
		gameID: gameID,
	}
	b.mu.Lock()
	set, ok := b.games[gameID]
	if !ok {
		set = make(map[*client]struct{})
		b.games[gameID] = set
	}
	set[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a client and closes its channel. Unregistering twice is
// a no-op.
func (b *Broadcaster) Unregister(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.games[c.gameID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.ch)
	if len(set) == 0 {
		delete(b.games, c.gameID)
	}
}

// CloseGame disconnects every client of a game.
func (b *Broadcaster) CloseGame(gameID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.games[gameID] {
		close(c.ch)
	}
	delete(b.games, gameID)
}

// Broadcast encodes v as JSON and queues it for every client of a game.
// Clients whose buffer is full miss the message.
func (b *Broadcaster) Broadcast(gameID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.games[gameID] {
		select {
		case c.ch <- data:
		default:
		}
	}
	return nil
}

// ClientCount returns the number of connected clients for a game.
func (b *Broadcaster) ClientCount(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.games[gameID])
}

// ServeSSE streams a game's events until the client goes away or the game is
// closed.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, gameID string, onConnect func(c *client), onDisconnect func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming non supporté", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := b.Register(gameID)
	defer func() {
		b.Unregister(c)
		if onDisconnect != nil {
			onDisconnect()
		}
	}()

	if onConnect != nil {
		onConnect(c)
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
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
