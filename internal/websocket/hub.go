package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/model"
)

const pingInterval = 30 * time.Second

// Client represents a WebSocket subscriber to one song
type Client struct {
	SongID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by song ID
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	stopOnce   sync.Once

	mu  sync.RWMutex
	log logging.Logger
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	SongID  string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		log:        logging.New("websocket"),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.SongID] == nil {
				h.clients[client.SongID] = make(map[*Client]bool)
			}
			h.clients[client.SongID][client] = true
			h.mu.Unlock()
			h.log.Debugf("client registered for song %s", client.SongID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.log.Debugf("client unregistered from song %s", client.SongID)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.SongID] {
				select {
				case client.Send <- msg.Message:
				default:
					// slow subscriber
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops a client and closes its send channel. Caller holds mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.SongID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.SongID)
	}
}

// Stop ends the main loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers returns the number of clients watching a song
func (h *Hub) Subscribers(songID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[songID])
}

// BroadcastAudioReady tells a song's subscribers its audio URL. It never
// blocks; when the queue is full the message is dropped since clients also
// poll.
func (h *Hub) BroadcastAudioReady(songID, audioURL string) {
	data, err := json.Marshal(model.WSAudioReadyMessage{
		Type:     model.WSMessageTypeComplete,
		SongID:   songID,
		AudioURL: audioURL,
	})
	if err != nil {
		h.log.Errorf("failed to marshal audio ready message: %v", err)
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{SongID: songID, Message: data}:
	default:
		h.log.Warnf("broadcast queue full, dropping audio ready for song %s", songID)
	}
}

// HandleConnection serves a subscriber until it disconnects
func (h *Hub) HandleConnection(c *websocket.Conn, songID string) {
	client := &Client{
		SongID: songID,
		Conn:   c,
		Send:   make(chan []byte, 16),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					_ = c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warnf("websocket error: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong, _ := json.Marshal(model.WSMessage{Type: model.WSMessageTypePong})
			h.sendTo(client, pong)
		}
	}
}

// sendTo queues a message for one client unless it was already removed
func (h *Hub) sendTo(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client.SongID][client] {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}
