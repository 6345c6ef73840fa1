package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types pushed to a user's connected sessions.
const (
	EventRecordsChanged = "records_changed"
	EventFeedChanged    = "feed_changed"
)

type Event struct {
	Type     string      `json:"type"`
	Category string      `json:"category,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Time     int64       `json:"time"`
}

// Hub fans events out to the websocket sessions of each user. Record events
// stay within the owning user; feed events go to everyone connected.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if sessions, ok := h.clients[client.userID]; ok {
				if _, ok := sessions[client]; ok {
					delete(sessions, client)
					close(client.send)
					if len(sessions) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyUser sends an event to every session of one user. Sends are
// non-blocking; a slow session just misses the event.
func (h *Hub) NotifyUser(userID uuid.UUID, eventType, category string) {
	event := Event{
		Type:     eventType,
		Category: category,
		Time:     time.Now().Unix(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- event:
		default:
		}
	}
}

// NotifyAll broadcasts an event to every connected session.
func (h *Hub) NotifyAll(eventType string) {
	event := Event{
		Type: eventType,
		Time: time.Now().Unix(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sessions := range h.clients {
		for client := range sessions {
			select {
			case client.send <- event:
			default:
			}
		}
	}
}
