package socket

import (
	"encoding/json"
	"sync"

	"docuvault/pkg/logger"
)

const (
	UpsertType = "UPSERT" // A document was written or replaced
	DeleteType = "DELETE" // A document was removed
)

// ChangeEvent is pushed to every subscriber of a store after a successful
// write. Payload carries the document content on upserts.
type ChangeEvent struct {
	Type    string          `json:"type"`
	Store   string          `json:"store"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans change events out to websocket subscribers grouped by store.
// The feed is advisory: writes are acknowledged before events are
// delivered, and a lagging subscriber is dropped rather than ever
// back-pressuring the hub.
type Hub struct {
	Rooms      map[string]map[*Client]bool // store name -> subscribers
	Broadcast  chan ChangeEvent
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan ChangeEvent, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish hands a change event to the hub. Safe to call from any request
// goroutine; the buffered channel absorbs bursts and events are dropped
// if the hub falls that far behind.
func (h *Hub) Publish(evt ChangeEvent) {
	select {
	case h.Broadcast <- evt:
	default:
		logger.Sugar.Warnf("Change feed saturated, dropping %s event for store %s", evt.Type, evt.Store)
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.Store] == nil {
				h.Rooms[client.Store] = make(map[*Client]bool)
			}
			h.Rooms[client.Store][client] = true
			h.mu.Unlock()
			logger.Sugar.Infof("Subscriber joined store feed: %s", client.Store)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Rooms[client.Store][client]; ok {
				delete(h.Rooms[client.Store], client)
				close(client.Send)
				if len(h.Rooms[client.Store]) == 0 {
					delete(h.Rooms, client.Store)
					logger.Sugar.Infof("Closed empty store feed: %s", client.Store)
				}
			}
			h.mu.Unlock()

		case evt := <-h.Broadcast:
			payload, err := json.Marshal(evt)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling change event: %v", err)
				continue
			}

			// Copy the recipient list so the lock is not held during I/O.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[evt.Store]))
			for client := range h.Rooms[evt.Store] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// Full send buffer means the subscriber is lagging.
					logger.Sugar.Warnf("Subscriber on store %s is lagging. Unregistering.", client.Store)
					go func(c *Client) { h.Unregister <- c }(client)
				}
			}
		}
	}
}
