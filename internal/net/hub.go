package net

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pekkahe/the-lone-cabin-samples/internal/sim"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub pushes per-tick agent state snapshots to websocket subscribers.
// Observation only: subscribers never feed commands back into the
// simulation.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*subscriber)}
}

type stateMessage struct {
	Type       string              `json:"type"`
	Tick       uint64              `json:"tick"`
	Agents     []sim.AgentSnapshot `json:"agents"`
	ServerTime int64               `json:"serverTime"`
}

// Broadcast sends the snapshot to every subscriber, dropping the ones
// whose connection fails.
func (h *Hub) Broadcast(tick uint64, agents []sim.AgentSnapshot) {
	msg := stateMessage{
		Type:       "state",
		Tick:       tick,
		Agents:     agents,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.remove(id)
		}
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// ServeWS upgrades the request and registers the connection for state
// broadcasts until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	id := "sub-" + strconv.FormatUint(h.nextID.Add(1), 10)

	h.mu.Lock()
	h.subscribers[id] = &subscriber{conn: conn}
	h.mu.Unlock()

	go func() {
		defer h.remove(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
