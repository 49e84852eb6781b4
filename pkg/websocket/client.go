package websocket

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/viagens-moz/intercity/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 256
)

// Messages a client may send
const (
	ClientSubscribe   = "subscribe"
	ClientUnsubscribe = "unsubscribe"
	ClientPing        = "ping"
)

// Client is one dashboard, driver app or passenger page connected to the hub
type Client struct {
	ID       string
	UserID   string
	UserType string
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte

	mu      sync.RWMutex
	follows map[string]struct{} // trip and parcel IDs
	logger  *logger.Logger
}

// ClientMessage is a command received from the client. EntityIDs lets a
// dashboard follow several trips or parcels at once.
type ClientMessage struct {
	Type      string   `json:"type"`
	EntityID  string   `json:"entity_id,omitempty"`
	EntityIDs []string `json:"entity_ids,omitempty"`
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, userID, userType string, logger *logger.Logger) *Client {
	return &Client{
		ID:       newClientID(),
		UserID:   userID,
		UserType: userType,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		follows:  make(map[string]struct{}),
		logger:   logger,
	}
}

// ReadPump reads commands until the connection fails, then unregisters
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket closed unexpectedly",
					logger.Err(err),
					logger.String("client_id", c.ID),
				)
			}
			return
		}
		c.handle(raw)
	}
}

// WritePump drains Send to the connection and keeps it alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeBatch(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeBatch writes first plus whatever is already queued as one
// newline separated frame
func (c *Client) writeBatch(first []byte) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	w.Write(first)
	for i, n := 0, len(c.Send); i < n; i++ {
		w.Write([]byte{'\n'})
		w.Write(<-c.Send)
	}
	return w.Close()
}

func (c *Client) handle(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Warn("Malformed client message",
			logger.Err(err),
			logger.String("client_id", c.ID),
		)
		return
	}

	ids := msg.EntityIDs
	if msg.EntityID != "" {
		ids = append(ids, msg.EntityID)
	}

	switch msg.Type {
	case ClientSubscribe:
		c.Subscribe(ids...)
	case ClientUnsubscribe:
		c.Unsubscribe(ids...)
	case ClientPing:
		c.SendMessage(Message{Type: "pong"})
	default:
		c.logger.Warn("Unknown message type",
			logger.String("type", msg.Type),
			logger.String("client_id", c.ID),
		)
	}
}

// Subscribe follows trips or parcels. Empty IDs are ignored.
func (c *Client) Subscribe(entityIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range entityIDs {
		if id != "" {
			c.follows[id] = struct{}{}
		}
	}
}

// Unsubscribe stops following trips or parcels
func (c *Client) Unsubscribe(entityIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range entityIDs {
		delete(c.follows, id)
	}
}

// IsSubscribedTo reports whether the client follows entityID
func (c *Client) IsSubscribedTo(entityID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.follows[entityID]
	return ok
}

// Subscriptions returns the followed IDs in sorted order
func (c *Client) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.follows))
	for id := range c.follows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SendMessage queues msg without blocking; it is dropped when the buffer
// is full
func (c *Client) SendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to marshal message",
			logger.Err(err),
			logger.String("client_id", c.ID),
		)
		return
	}

	select {
	case c.Send <- data:
	default:
		c.logger.Warn("Client send buffer full",
			logger.String("client_id", c.ID),
		)
	}
}

func newClientID() string {
	return time.Now().UTC().Format("20060102150405") + "-" + uuid.NewString()[:8]
}
