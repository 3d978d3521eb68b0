package sse

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/matchqueue/internal/api/response"
	"github.com/mcoot/matchqueue/internal/model"
)

// EventMatchFound is sent to both players when the engine pairs them
const EventMatchFound = "match-found"

// delivery is a message addressed to every stream one account holds open
type delivery struct {
	username model.Username
	message  []byte
}

// Hub fans matchmaking events out to the SSE streams of the accounts
// they concern. An account may hold several streams, one per open client.
type Hub struct {
	clients map[model.Username]map[*Client]struct{}
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub. Run must be started before clients register.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[model.Username]map[*Client]struct{}),
		logger:     logger.With(slog.String("component", "sse")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns once Close is called.
func (h *Hub) Run() {
	h.logger.Info("sse hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			streams, ok := h.clients[client.username]
			if !ok {
				streams = make(map[*Client]struct{})
				h.clients[client.username] = streams
			}
			streams[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("sse client registered",
				slog.String("username", string(client.username)),
				slog.Int("streams", len(streams)))

		case client := <-h.unregister:
			h.mu.Lock()
			if streams, ok := h.clients[client.username]; ok {
				if _, ok := streams[client]; ok {
					delete(streams, client)
					close(client.send)
					if len(streams) == 0 {
						delete(h.clients, client.username)
					}
					h.logger.Info("sse client unregistered",
						slog.String("username", string(client.username)),
						slog.Duration("connection_duration", time.Since(client.connectedAt)))
				}
			}
			h.mu.Unlock()

		case d := <-h.deliver:
			h.mu.RLock()
			for client := range h.clients[d.username] {
				select {
				case client.send <- d.message:
				default:
					h.logger.Warn("sse message dropped - client buffer full",
						slog.String("username", string(client.username)))
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			count := 0
			for username, streams := range h.clients {
				for client := range streams {
					close(client.send)
					count++
				}
				delete(h.clients, username)
			}
			h.mu.Unlock()
			h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", count))
			return
		}
	}
}

// Register adds a client to the hub. It returns false once the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish sends an event to every stream username holds open. It never blocks.
func (h *Hub) Publish(username model.Username, eventName, data string) {
	select {
	case h.deliver <- delivery{username: username, message: formatSSEMessage(eventName, data)}:
	default:
		h.logger.Warn("sse event dropped - hub buffer full",
			slog.String("username", string(username)),
			slog.String("event", eventName))
	}
}

// MatchFound notifies both players of a new match
func (h *Hub) MatchFound(match model.Match) {
	data, err := json.Marshal(response.MatchFromModel(&match))
	if err != nil {
		h.logger.Error("sse failed to encode match",
			slog.String("match_id", string(match.ID)),
			slog.Any("error", err))
		return
	}
	for _, player := range match.Players {
		h.Publish(player.Username, EventMatchFound, string(data))
	}
}

// Close shuts down the hub and ends every open stream
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of open streams
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, streams := range h.clients {
		count += len(streams)
	}
	return count
}

// formatSSEMessage formats an SSE message with event name and data.
// Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	data = strings.ReplaceAll(data, "\r", "")
	for line := range strings.SplitSeq(data, "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}
