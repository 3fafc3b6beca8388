package service

import (
	"encoding/json"
	"log"
	"sync"

	"farmdirect-backend/internal/model"

	"github.com/gofiber/contrib/websocket"
)

type WSClient struct {
	Conn   *websocket.Conn
	UserID string
	Name   string
	Send   chan []byte

	mu       sync.Mutex
	channels map[string]bool
}

// Subscribe marks the client as a watcher of a channel (one per auction).
func (c *WSClient) Subscribe(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channels == nil {
		c.channels = make(map[string]bool)
	}
	c.channels[channel] = true
}

func (c *WSClient) Unsubscribe(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, channel)
}

func (c *WSClient) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels[channel]
}

type WSHub struct {
	clients    map[*WSClient]bool
	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan []byte
	mu         sync.RWMutex
	done       chan struct{}
}

func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("WS: %s connected (total: %d)", client.Name, len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("WS: %s disconnected (total: %d)", client.Name, len(h.clients))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			return
		}
	}
}

func (h *WSHub) Shutdown() {
	close(h.done)
}

func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}

// Publish delivers an event to clients subscribed to the channel. Clients
// with a full send buffer are skipped, not disconnected; they catch up from
// the auction detail endpoint.
func (h *WSHub) Publish(channel string, event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.subscribed(channel) {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// BroadcastAll pushes an event to every connected client regardless of
// subscriptions (lobby-level announcements).
func (h *WSHub) BroadcastAll(event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.broadcast <- data
}

func (h *WSHub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
