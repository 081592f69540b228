package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"zakazBack/internal/models"
)

/********** timing **********/
const (
	readLimit          = 1 << 20           // 1 MB
	readDeadline       = 120 * time.Second // read deadline, extended by pongs
	writeDeadline      = 5 * time.Second
	pingInterval       = 15 * time.Second
	firstHelloDeadline = 30 * time.Second // time allowed for the first {userId} frame
	queryTimeout       = 3 * time.Second
)

/****************************/

// requestLister is the slice of the request store the hub re-runs standing
// queries against.
type requestLister interface {
	ListByOwner(ctx context.Context, userID int64) ([]models.Request, error)
	ListByStatus(ctx context.Context, status string, providerID int64) ([]models.Request, error)
}

// subscription is a standing query a connection holds: either the owner's
// own requests, or a status feed optionally narrowed to one provider.
type subscription struct {
	Scope      string // "owner" or "status"
	UserID     int64
	Status     string
	ProviderID int64
}

type wsClient struct {
	conn   *websocket.Conn
	userID int64
	subs   map[subscription]struct{}
}

type subChange struct {
	client *wsClient
	sub    subscription
	add    bool
}

type WebSocketManager struct {
	clients    map[*websocket.Conn]*wsClient
	register   chan *wsClient
	unregister chan *wsClient
	subscribe  chan subChange
	invalidate chan struct{}
	requests   requestLister
	errorLog   *log.Logger
}

func NewWebSocketManager(requests requestLister, errorLog *log.Logger) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]*wsClient),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		subscribe:  make(chan subChange),
		invalidate: make(chan struct{}, 1),
		requests:   requests,
		errorLog:   errorLog,
	}
}

// RequestsChanged implements services.Publisher. The buffered channel
// coalesces bursts: one pending invalidation covers any number of writes.
func (ws *WebSocketManager) RequestsChanged() {
	select {
	case ws.invalidate <- struct{}{}:
	default:
	}
}

// resultFrame is what subscribers receive: the full result set of their
// query, resent on every change.
type resultFrame struct {
	Type       string           `json:"type"`
	Scope      string           `json:"scope"`
	UserID     int64            `json:"userId,omitempty"`
	Status     string           `json:"status,omitempty"`
	ProviderID int64            `json:"providerId,omitempty"`
	Requests   []models.Request `json:"requests"`
}

// Run owns the client map. All operations on clients happen here only.
func (ws *WebSocketManager) Run() {
	for {
		select {
		case c := <-ws.register:
			ws.clients[c.conn] = c
			log.Printf("WS register user=%d", c.userID)

		case c := <-ws.unregister:
			if _, ok := ws.clients[c.conn]; ok {
				_ = c.conn.Close()
				delete(ws.clients, c.conn)
				log.Printf("WS unregister user=%d", c.userID)
			}

		case ch := <-ws.subscribe:
			c, ok := ws.clients[ch.client.conn]
			if !ok {
				continue
			}
			if ch.add {
				c.subs[ch.sub] = struct{}{}
				// initial snapshot so the client renders without waiting
				// for the first change
				ws.push(c, ch.sub)
			} else {
				delete(c.subs, ch.sub)
			}

		case <-ws.invalidate:
			for _, c := range ws.clients {
				for sub := range c.subs {
					ws.push(c, sub)
				}
			}
		}
	}
}

// push re-runs the subscription's query and writes the fresh result set.
func (ws *WebSocketManager) push(c *wsClient, sub subscription) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var (
		requests []models.Request
		err      error
	)
	switch sub.Scope {
	case "owner":
		requests, err = ws.requests.ListByOwner(ctx, sub.UserID)
	case "status":
		requests, err = ws.requests.ListByStatus(ctx, sub.Status, sub.ProviderID)
	default:
		return
	}
	if err != nil {
		ws.errorLog.Printf("ws query scope=%s: %v", sub.Scope, err)
		return
	}
	if requests == nil {
		requests = []models.Request{}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	frame := resultFrame{
		Type:       "requests",
		Scope:      sub.Scope,
		UserID:     sub.UserID,
		Status:     sub.Status,
		ProviderID: sub.ProviderID,
		Requests:   requests,
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		ws.errorLog.Printf("ws write user=%d: %v", c.userID, err)
		_ = c.conn.Close()
		delete(ws.clients, c.conn)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// The first frame from the client must be { "userId": <int> }.
func (app *application) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(firstHelloDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	var hello struct {
		UserID int64 `json:"userId"`
	}
	if err := conn.ReadJSON(&hello); err != nil || hello.UserID == 0 {
		log.Println("invalid hello payload:", err)
		_ = writeClose(conn, websocket.ClosePolicyViolation, "hello required")
		_ = conn.Close()
		return
	}
	conn.SetReadDeadline(time.Now().Add(readDeadline))

	client := &wsClient{
		conn:   conn,
		userID: hello.UserID,
		subs:   make(map[subscription]struct{}),
	}
	app.wsManager.register <- client

	go pingLoop(app.wsManager, client)
	go readSubscriptions(app.wsManager, client)
}

func pingLoop(ws *WebSocketManager, c *wsClient) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			_ = writeClose(c.conn, websocket.CloseGoingAway, "ping error")
			ws.unregister <- c
			return
		}
	}
}

// readSubscriptions processes subscribe/unsubscribe frames:
//
//	{ "action": "subscribe",   "scope": "owner" }
//	{ "action": "subscribe",   "scope": "status", "status": "pending", "providerId": 7 }
//	{ "action": "unsubscribe", ... }
//
// Owner subscriptions are always bound to the hello userId.
func readSubscriptions(ws *WebSocketManager, c *wsClient) {
	defer func() {
		ws.unregister <- c
	}()

	for {
		var frame struct {
			Action     string `json:"action"`
			Scope      string `json:"scope"`
			Status     string `json:"status"`
			ProviderID int64  `json:"providerId"`
		}
		if err := c.conn.ReadJSON(&frame); err != nil {
			_ = writeClose(c.conn, websocket.CloseNormalClosure, "read error")
			return
		}

		sub := subscription{Scope: frame.Scope}
		switch frame.Scope {
		case "owner":
			sub.UserID = c.userID
		case "status":
			if !models.ValidStatus(frame.Status) {
				log.Printf("reject: unknown status %q from user=%d", frame.Status, c.userID)
				continue
			}
			sub.Status = frame.Status
			sub.ProviderID = frame.ProviderID
		default:
			log.Printf("reject: unknown scope %q from user=%d", frame.Scope, c.userID)
			continue
		}

		switch frame.Action {
		case "subscribe":
			ws.subscribe <- subChange{client: c, sub: sub, add: true}
		case "unsubscribe":
			ws.subscribe <- subChange{client: c, sub: sub, add: false}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
