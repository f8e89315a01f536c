package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

type outFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Hub tracks connected clients and their rooms. Delivery is best effort:
// a client whose outbox is full misses the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	fanout *RedisFanout
	log    *zap.Logger
}

// NewHub builds a hub. With a non-nil fanout every event goes through redis
// so that clients of all instances receive it, once Run has subscribed.
func NewHub(log *zap.Logger, fanout *RedisFanout) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		fanout:  fanout,
		log:     log,
	}
}

// Run consumes the redis fan-out until ctx is done. Without redis it only
// waits for ctx.
func (h *Hub) Run(ctx context.Context) error {
	if h.fanout == nil {
		<-ctx.Done()
		return nil
	}
	return h.fanout.Run(ctx, h.deliver)
}

// Broadcast sends event to every connection.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.emit("", event, payload)
}

// BroadcastToRoom sends event to the members of room.
func (h *Hub) BroadcastToRoom(room, event string, payload interface{}) {
	h.emit(room, event, payload)
}

func (h *Hub) emit(room, event string, payload interface{}) {
	frame, err := json.Marshal(outFrame{Event: event, Data: payload})
	if err != nil {
		h.log.Error("encoding realtime frame", zap.String("event", event), zap.Error(err))
		return
	}
	eventsSent.WithLabelValues(event, roomLabel(room)).Inc()

	// until this instance is subscribed, a published frame would reach
	// nobody here
	if h.fanout != nil && h.fanout.Subscribed() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := h.fanout.Publish(ctx, room, frame)
		cancel()
		if err == nil {
			return
		}
		h.log.Warn("redis publish failed, delivering locally", zap.String("event", event), zap.Error(err))
	}
	h.deliver(room, frame)
}

func roomLabel(room string) string {
	if room == "" {
		return "all"
	}
	return room
}

// deliver hands frame to local connections; an empty room means everyone.
func (h *Hub) deliver(room string, frame []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	if room == "" {
		for c := range h.clients {
			targets = append(targets, c)
		}
	} else {
		for c := range h.rooms[room] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.trySend(frame) {
			framesDropped.Inc()
			h.log.Warn("dropped frame for realtime client", zap.String("client_id", c.id), zap.String("room", roomLabel(room)))
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	connectionsGauge.Inc()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	for name, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, name)
		}
	}
	h.mu.Unlock()

	if ok {
		connectionsGauge.Dec()
	}
	c.close()
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// RoomSize reports how many local connections are in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ConnectionCount reports the number of local connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}
