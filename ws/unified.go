package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fairplayServer/config"
	"fairplayServer/engine"
	"fairplayServer/game"

	"github.com/gorilla/websocket"
)

// ClientConnection represents a connected client with their subscriptions
type ClientConnection struct {
	ID            string
	Conn          *websocket.Conn
	Subscriptions map[string]bool // rounds, user:<address>
	mu            sync.RWMutex
	Send          chan []byte
	hub           *Hub
}

// ClientMessage is what clients send: subscribe / unsubscribe / ping.
type ClientMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
}

type broadcast struct {
	channels []string
	data     []byte
}

// Hub fans committed rounds out to subscribed websocket clients and keeps a
// short buffer of recent rounds for late subscribers.
type Hub struct {
	clients      map[*ClientConnection]bool
	clientsMutex sync.RWMutex

	register   chan *ClientConnection
	unregister chan *ClientConnection
	broadcasts chan broadcast
	done       chan struct{}

	recent      []*game.Result
	recentMutex sync.RWMutex
	maxRecent   int

	clientIDCounter int64
}

func NewHub(maxRecent int) *Hub {
	return &Hub{
		clients:    make(map[*ClientConnection]bool),
		register:   make(chan *ClientConnection),
		unregister: make(chan *ClientConnection),
		broadcasts: make(chan broadcast, 100),
		done:       make(chan struct{}),
		maxRecent:  maxRecent,
	}
}

// Run is the central message dispatcher. It returns when ctx is done,
// closing every client. A hub runs once.
func (h *Hub) Run(ctx context.Context) {
	log.Println("🚀 Round feed hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.clientsMutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.clientsMutex.Unlock()
			log.Println("🛑 Round feed hub stopped")
			return

		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.clientsMutex.Unlock()
			log.Printf("✅ Client registered: %s (Total: %d)", client.ID, total)

		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.clientsMutex.Unlock()
			log.Printf("👋 Client unregistered: %s (Total: %d)", client.ID, total)

		case b := <-h.broadcasts:
			h.broadcastToSubscribers(b)
		}
	}
}

// PublishResult queues a committed round for the rounds channel and the
// player's own channel. It never blocks the caller.
func (h *Hub) PublishResult(r *game.Result) {
	h.recentMutex.Lock()
	h.recent = append(h.recent, r)
	if h.maxRecent > 0 && len(h.recent) > h.maxRecent {
		h.recent = h.recent[len(h.recent)-h.maxRecent:]
	}
	h.recentMutex.Unlock()

	data, err := json.Marshal(map[string]interface{}{
		"type":   "round_result",
		"result": r,
	})
	if err != nil {
		log.Printf("❌ Failed to marshal round %s: %v", r.RoundID, err)
		return
	}

	select {
	case h.broadcasts <- broadcast{
		channels: []string{config.ChannelRounds, config.ChannelUserPrefix + r.UserAddress},
		data:     data,
	}:
	default:
		log.Printf("⚠️  Round feed backlog full, dropping round %s", r.RoundID)
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) recentRounds() []*game.Result {
	h.recentMutex.RLock()
	defer h.recentMutex.RUnlock()

	rounds := make([]*game.Result, len(h.recent))
	copy(rounds, h.recent)
	return rounds
}

// broadcastToSubscribers sends a message once to every client subscribed to
// any of its channels
func (h *Hub) broadcastToSubscribers(b broadcast) {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()

	for client := range h.clients {
		if !client.subscribedToAny(b.channels) {
			continue
		}
		select {
		case client.Send <- b.data:
		default:
			// Client's send channel is full, skip
			log.Printf("⚠️  Client %s send buffer full, skipping message", client.ID)
		}
	}
}

func (c *ClientConnection) subscribedToAny(channels []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range channels {
		if c.Subscriptions[ch] {
			return true
		}
	}
	return false
}

// writePump sends messages from the Send channel to the WebSocket and keeps
// the connection alive with pings
func (c *ClientConnection) writePump() {
	ticker := time.NewTicker(config.WSPingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WSWriteDeadline))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("❌ Write error for client %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WSWriteDeadline))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads subscription requests until the connection drops
func (c *ClientConnection) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))
	})

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ Read error for client %s: %v", c.ID, err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.sendJSON(map[string]interface{}{"type": "error", "error": "invalid message"})
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes incoming client messages
func (c *ClientConnection) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case "subscribe":
		channel, err := normalizeChannel(msg.Channel)
		if err != nil {
			c.sendJSON(map[string]interface{}{"type": "error", "error": err.Error()})
			return
		}
		c.mu.Lock()
		c.Subscriptions[channel] = true
		c.mu.Unlock()
		log.Printf("📡 Client %s subscribed to: %s", c.ID, channel)

		c.sendJSON(map[string]interface{}{"type": "subscribed", "channel": channel})
		c.sendInitialData(channel)

	case "unsubscribe":
		channel, err := normalizeChannel(msg.Channel)
		if err != nil {
			return
		}
		c.mu.Lock()
		delete(c.Subscriptions, channel)
		c.mu.Unlock()
		log.Printf("📴 Client %s unsubscribed from: %s", c.ID, channel)
		c.sendJSON(map[string]interface{}{"type": "unsubscribed", "channel": channel})

	case "ping":
		c.sendJSON(map[string]interface{}{"type": "pong"})

	default:
		c.sendJSON(map[string]interface{}{"type": "error", "error": "unknown message type: " + msg.Type})
	}
}

// sendInitialData replays recent rounds to a new subscriber, filtered to
// the channel.
func (c *ClientConnection) sendInitialData(channel string) {
	rounds := c.hub.recentRounds()
	if user, ok := strings.CutPrefix(channel, config.ChannelUserPrefix); ok {
		mine := make([]*game.Result, 0, len(rounds))
		for _, r := range rounds {
			if r.UserAddress == user {
				mine = append(mine, r)
			}
		}
		rounds = mine
	}

	c.sendJSON(map[string]interface{}{
		"type":    "recent_rounds",
		"channel": channel,
		"rounds":  rounds,
	})
	log.Printf("📨 Client %s subscribed to %s - sent %d recent rounds", c.ID, channel, len(rounds))
}

// sendJSON queues a message for this client without blocking.
func (c *ClientConnection) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	c.hub.clientsMutex.RLock()
	defer c.hub.clientsMutex.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("⚠️  Client %s send buffer full, skipping message", c.ID)
	}
}

// normalizeChannel accepts "rounds" or "user:<address>", the latter keyed by
// checksummed address.
func normalizeChannel(channel string) (string, error) {
	if channel == config.ChannelRounds {
		return channel, nil
	}
	if address, ok := strings.CutPrefix(channel, config.ChannelUserPrefix); ok {
		user, err := engine.NormalizeAddress(address)
		if err != nil {
			return "", err
		}
		return config.ChannelUserPrefix + user, nil
	}
	return "", fmt.Errorf("unknown channel %q", channel)
}

// generateClientID creates a unique client ID
func (h *Hub) generateClientID() string {
	id := atomic.AddInt64(&h.clientIDCounter, 1)
	return fmt.Sprintf("%d-%d", time.Now().Unix(), id)
}
