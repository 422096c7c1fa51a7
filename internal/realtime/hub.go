package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"garment-rental-backend/internal/logger"

	"github.com/google/uuid"
)

const MessageTypeUpdate = "update"

type Message struct {
	Type string `json:"type"`
	// Origin identifies the hub that produced the message. It is stripped
	// before the message reaches browsers.
	Origin string `json:"origin,omitempty"`
}

type Client struct {
	ID       uuid.UUID
	Outbound chan Message
}

// Publisher forwards messages to other processes sharing the same listeners.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Hub owns the set of connected listeners and fans change signals out to them.
// Delivery never blocks: a listener whose buffer is full misses the message.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	log       *slog.Logger
	id        string
	publisher Publisher

	BufferSize     int
	Heartbeat      time.Duration
	PublishTimeout time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:        make(map[*Client]struct{}),
		log:            logger.WithService("RealtimeHub"),
		id:             uuid.NewString(),
		BufferSize:     8,
		Heartbeat:      15 * time.Second,
		PublishTimeout: 2 * time.Second,
	}
}

// SetPublisher attaches a cross-process bus. Must be called before serving.
func (h *Hub) SetPublisher(p Publisher) {
	h.publisher = p
}

func (h *Hub) NewClient() *Client {
	return &Client{ID: uuid.New(), Outbound: make(chan Message, h.BufferSize)}
}

func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("listener added", "clientID", c.ID)
}

func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	h.log.Debug("listener removed", "clientID", c.ID)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers msg to every local listener.
func (h *Hub) Broadcast(msg Message) {
	msg.Origin = ""
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Outbound <- msg:
		default:
			h.log.Warn("dropping change signal; listener buffer full", "clientID", c.ID)
		}
	}
}

// Notify emits one "state changed" signal. Failures are logged and swallowed.
func (h *Hub) Notify(ctx context.Context) {
	msg := Message{Type: MessageTypeUpdate}
	h.Broadcast(msg)

	if h.publisher == nil {
		return
	}
	msg.Origin = h.id
	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.PublishTimeout)
		defer cancel()
		if err := h.publisher.Publish(pctx, msg); err != nil {
			h.log.Warn("failed to publish change signal", "error", err)
		}
	}()
}

// HandleRemote is the bus forwarder callback. Messages this hub published
// itself were already broadcast locally and are ignored.
func (h *Hub) HandleRemote(msg Message) {
	if msg.Origin == h.id {
		return
	}
	h.Broadcast(msg)
}

// ServeHTTP streams change signals to one listener as server-sent events
// until the request context ends.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := h.NewClient()
	h.Add(client)
	defer h.Remove(client)

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.Outbound:
			data, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("failed to marshal change signal", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
