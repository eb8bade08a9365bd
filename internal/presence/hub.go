package presence

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is a presence channel frame. Type is "sync", "join" or "leave".
// Sync carries the full membership snapshot; join and leave carry one
// member identity.
type Message struct {
	Type    string   `json:"type"`
	UserID  string   `json:"user_id,omitempty"`
	Members []string `json:"members,omitempty"`
}

// Client is one websocket connection to the presence channel, keyed by the
// member identity it joined with. The same identity may hold several
// connections (multiple tabs); membership drops only when the last one
// goes.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub runs the presence channel: it accepts identity-keyed websocket
// connections, maintains the membership view in the Tracker, and
// broadcasts join/leave/sync frames to connected peers.
type Hub struct {
	tracker *Tracker

	clients     map[*Client]bool
	connsByUser map[string]int

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	stopped    bool
	mu         sync.RWMutex

	// joinLimiter bounds channel join churn across all peers.
	joinLimiter *rate.Limiter

	logger *slog.Logger
}

// Default join churn bounds, used when HubConfig leaves them unset.
const (
	defaultJoinRate  = 20
	defaultJoinBurst = 40
)

// HubConfig configures a Hub.
type HubConfig struct {
	Tracker *Tracker
	Logger  *slog.Logger

	// JoinRate and JoinBurst bound channel join churn across all peers.
	// Zero values fall back to the defaults.
	JoinRate  float64
	JoinBurst int
}

// NewHub creates a presence hub feeding the given tracker.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.JoinRate <= 0 {
		cfg.JoinRate = defaultJoinRate
	}
	if cfg.JoinBurst <= 0 {
		cfg.JoinBurst = defaultJoinBurst
	}
	return &Hub{
		tracker:     cfg.Tracker,
		clients:     make(map[*Client]bool),
		connsByUser: make(map[string]int),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		joinLimiter: rate.NewLimiter(rate.Limit(cfg.JoinRate), cfg.JoinBurst),
		logger:      cfg.Logger,
	}
}

// Run starts the hub's main loop. The tracker enters Connecting and then
// Synced with the (initially empty) membership snapshot.
func (h *Hub) Run() {
	h.tracker.BeginConnect(&hubConn{hub: h})
	h.tracker.Sync(h.memberIDs())

	for {
		select {
		case <-h.done:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.connsByUser = make(map[string]int)
			h.mu.Unlock()
			h.logger.Info("presence hub stopped")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.connsByUser[client.userID]++
	first := h.connsByUser[client.userID] == 1
	h.mu.Unlock()

	// The new peer always gets the full snapshot so its view starts from
	// a replace, not a merge.
	h.sendTo(client, Message{Type: "sync", Members: h.memberIDs()})

	if first {
		h.tracker.HandleJoin(client.userID)
		h.broadcast(Message{Type: "join", UserID: client.userID}, client)
		h.logger.Debug("presence member joined", "user_id", client.userID)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.connsByUser[client.userID]--
	last := h.connsByUser[client.userID] == 0
	if last {
		delete(h.connsByUser, client.userID)
	}
	h.mu.Unlock()

	if last {
		h.tracker.HandleLeave(client.userID)
		h.broadcast(Message{Type: "leave", UserID: client.userID}, nil)
		h.logger.Debug("presence member left", "user_id", client.userID)
	}
}

// memberIDs returns the identities currently holding at least one
// connection.
func (h *Hub) memberIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.connsByUser))
	for id := range h.connsByUser {
		ids = append(ids, id)
	}
	return ids
}

// broadcast sends a frame to every connected client except skip. A client
// whose send buffer is full is dropped rather than blocking the hub.
func (h *Hub) broadcast(msg Message, skip *Client) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to marshal presence frame", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client != skip {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("presence client send buffer full; dropping",
				"user_id", client.userID)
			go func(c *Client) {
				select {
				case h.unregister <- c:
				case <-h.done:
				}
			}(client)
		}
	}
}

func (h *Hub) sendTo(client *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to marshal presence frame", "error", err)
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop shuts the hub down. Safe to call multiple times.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// ServeWS upgrades an HTTP request into a presence channel connection. The
// member identity comes from the user_id query parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		http.Error(w, "presence channel is not running", http.StatusServiceUnavailable)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if !h.joinLimiter.Allow() {
		http.Error(w, "too many join attempts", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("presence upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 256),
	}

	select {
	case h.register <- client:
		go client.writePump()
		go client.readPump()
	case <-h.done:
		if err := conn.Close(); err != nil {
			h.logger.Warn("presence close failed", "error", err)
		}
	}
}

// readPump drains the connection until it drops, then unregisters the
// client. Incoming frames are not processed; the channel is server-push.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("presence read error", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

// writePump pushes frames from the hub to the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// hubConn adapts the hub to the tracker's Conn interface for teardown.
// AnnounceLeave pushes an empty sync so peers learn the channel is going
// away before their sockets drop.
type hubConn struct {
	hub *Hub
}

func (hc *hubConn) AnnounceLeave(context.Context) error {
	hc.hub.broadcast(Message{Type: "sync", Members: []string{}}, nil)
	return nil
}

func (hc *hubConn) Close() error {
	hc.hub.Stop()
	return nil
}
