package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/satonic/payperview-api/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Events queued for the hub before Publish starts dropping them
	eventBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins (for development)
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type subscription struct {
	client  *Client
	assetID uint64
	active  bool
}

// Hub maintains the set of active clients and pushes committed events to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Clients by asset ID that they're watching
	assetClients map[uint64]map[*Client]bool

	// Events published by the service
	events chan models.Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Subscribe and unsubscribe requests from clients
	subscriptions chan subscription

	log zerolog.Logger
}

// NewHub creates a new hub
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		events:        make(chan models.Event, eventBuffer),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscriptions: make(chan subscription),
		clients:       make(map[*Client]bool),
		assetClients:  make(map[uint64]map[*Client]bool),
		log:           log,
	}
}

// Publish queues an event for delivery without blocking the caller
func (h *Hub) Publish(event models.Event) {
	select {
	case h.events <- event:
	default:
		h.log.Warn().Str("type", string(event.Type)).Uint64("asset_id", event.AssetID).Msg("event dropped, hub is behind")
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			h.remove(client)
		case sub := <-h.subscriptions:
			if sub.active {
				h.subscribe(sub.client, sub.assetID)
			} else {
				h.unsubscribe(sub.client, sub.assetID)
			}
		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for assetID := range h.assetClients {
		h.unsubscribe(client, assetID)
	}
	close(client.send)
}

func (h *Hub) subscribe(client *Client, assetID uint64) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	if _, ok := h.assetClients[assetID]; !ok {
		h.assetClients[assetID] = make(map[*Client]bool)
	}
	h.assetClients[assetID][client] = true
}

func (h *Hub) unsubscribe(client *Client, assetID uint64) {
	if _, ok := h.assetClients[assetID]; ok {
		delete(h.assetClients[assetID], client)
		if len(h.assetClients[assetID]) == 0 {
			delete(h.assetClients, assetID)
		}
	}
}

// dispatch sends mints to every client and other events to the asset's subscribers
func (h *Hub) dispatch(event models.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("error marshalling event")
		return
	}

	targets := h.assetClients[event.AssetID]
	if event.Type == models.EventMinted {
		targets = h.clients
	}
	for client := range targets {
		select {
		case client.send <- message:
		default:
			h.remove(client)
		}
	}
}

// readPump pumps subscription requests from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Msg("websocket closed unexpectedly")
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			c.hub.log.Debug().Err(err).Msg("error parsing message")
			continue
		}

		switch wsMessage.Type {
		case "subscribe", "unsubscribe":
			var assetID uint64
			if err := json.Unmarshal(wsMessage.Payload, &assetID); err != nil {
				c.hub.log.Debug().Err(err).Str("type", wsMessage.Type).Msg("error parsing subscription payload")
				continue
			}
			c.hub.subscriptions <- subscription{
				client:  c,
				assetID: assetID,
				active:  wsMessage.Type == "subscribe",
			}
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles WebSocket requests from clients
func ServeWs(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			hub:  hub,
			conn: conn,
			send: make(chan []byte, 256),
		}
		client.hub.register <- client

		welcomeMsg := WebSocketMessage{
			Type:    "welcome",
			Payload: json.RawMessage(`{"message":"Connected to PayPerView event stream"}`),
		}
		welcomeBytes, _ := json.Marshal(welcomeMsg)
		client.send <- welcomeBytes

		// Allow collection of memory referenced by the caller by doing all work in
		// new goroutines
		go client.writePump()
		go client.readPump()
	}
}
