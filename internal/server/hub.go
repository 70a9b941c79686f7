// Package server hosts Haus games over websockets and exposes a gRPC
// operations endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/moderncaliberwebdev/haus/internal/config"
	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// Hub accepts websocket clients and routes their messages to the table
// actor of the game they sit at.
type Hub struct {
	cfg      config.WebSocketConfig
	engine   *game.Engine
	logger   *zap.Logger
	autoDeal bool
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	register   chan *Client
	unregister chan *Client
	clients    map[*Client]bool

	mu     sync.RWMutex
	tables map[string]*table
}

// NewHub creates a hub serving games hosted by engine.
func NewHub(cfg config.WebSocketConfig, engine *game.Engine, autoDeal bool, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:      cfg,
		engine:   engine,
		logger:   logger,
		autoDeal: autoDeal,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:        ctx,
		cancel:     cancel,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		tables:     make(map[string]*table),
	}
}

// Run tracks connected clients until ctx is cancelled, then closes every
// connection and stops every table.
func (h *Hub) Run(ctx context.Context) {
	defer h.cancel()
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.close()
			}
			h.logger.Info("hub stopped", zap.Int("clients", len(h.clients)))
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Debug("client registered", zap.String("client_id", c.id))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				h.logger.Debug("client unregistered", zap.String("client_id", c.id))
			}
		}
	}
}

// Handler serves the websocket endpoint and a liveness probe.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(h.cfg.Path, h.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// NewHTTPServer builds the websocket listener for cfg.
func NewHTTPServer(cfg config.WebSocketConfig, hub *Hub) *http.Server {
	return &http.Server{
		Addr:    cfg.Address,
		Handler: hub.Handler(),
	}
}

// ServeWS upgrades the request and starts the client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	c := &Client{
		id:     id,
		conn:   conn,
		hub:    h,
		logger: h.logger.With(zap.String("client_id", id)),
		send:   make(chan []byte, h.cfg.SendBuffer),
		seat:   rules.NoSeat,
	}

	select {
	case h.register <- c:
	case <-h.ctx.Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// disconnect frees the client's seat and forgets the client.
func (h *Hub) disconnect(c *Client) {
	if t, _ := c.seating(); t != nil {
		t.call(tableRequest{kind: reqLeave, client: c})
	}
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
		c.close()
	}
}

func (h *Hub) handleMessage(c *Client, msg ClientMessage) {
	switch msg.Type {
	case MsgCreateGame:
		h.createGame(c, msg)

	case MsgJoinGame:
		if msg.Seat == nil {
			c.deliver(errorMessage(msg.GameID, rules.NoSeat, fmt.Errorf("%w: join needs a seat", ErrMalformedMessage)))
			return
		}
		t, ok := h.table(msg.GameID)
		if !ok {
			c.deliver(errorMessage(msg.GameID, rules.NoSeat, fmt.Errorf("%w: %s", game.ErrGameNotFound, msg.GameID)))
			return
		}
		if err := h.join(c, t, *msg.Seat); err != nil {
			c.deliver(errorMessage(msg.GameID, *msg.Seat, err))
		}

	case MsgCommand:
		t, seat := c.seating()
		if t == nil {
			c.deliver(errorMessage(msg.GameID, rules.NoSeat, ErrNotSeated))
			return
		}
		var payload CommandPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.deliver(errorMessage(t.id, seat, fmt.Errorf("%w: %v", ErrMalformedMessage, err)))
			return
		}
		if err := t.call(tableRequest{kind: reqCommand, client: c, payload: payload}); err != nil {
			c.deliver(errorMessage(t.id, seat, err))
		}

	default:
		c.deliver(errorMessage(msg.GameID, rules.NoSeat, fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, msg.Type)))
	}
}

func (h *Hub) createGame(c *Client, msg ClientMessage) {
	seat := rules.Seat(0)
	if msg.Seat != nil {
		seat = *msg.Seat
	}
	if !seat.Valid() {
		c.deliver(errorMessage("", seat, fmt.Errorf("%w: %d", game.ErrUnknownSeat, seat)))
		return
	}
	if current, _ := c.seating(); current != nil {
		c.deliver(errorMessage(current.id, seat, ErrAlreadySeated))
		return
	}

	id, err := h.engine.StartGame(msg.GameID, 0)
	if err != nil {
		c.deliver(errorMessage(msg.GameID, seat, err))
		return
	}
	t := h.openTable(id)
	c.deliver(ServerMessage{Type: MsgGameCreated, GameID: id, Seat: seat})
	if err := h.join(c, t, seat); err != nil {
		c.deliver(errorMessage(id, seat, err))
	}
}

func (h *Hub) join(c *Client, t *table, seat rules.Seat) error {
	return t.call(tableRequest{kind: reqJoin, client: c, seat: seat})
}

func (h *Hub) openTable(id string) *table {
	t := newTable(id, h.engine, h.autoDeal, h.logger, h.closeTable)
	h.mu.Lock()
	h.tables[id] = t
	h.mu.Unlock()
	go t.run(h.ctx)
	return t
}

// closeTable runs on the table goroutine after it stops.
func (h *Hub) closeTable(t *table) {
	h.mu.Lock()
	delete(h.tables, t.id)
	h.mu.Unlock()

	for _, c := range t.seats {
		if c != nil {
			c.stand()
		}
	}
	if err := h.engine.EndGame(t.id); err != nil {
		h.logger.Warn("failed to end game", zap.String("game_id", t.id), zap.Error(err))
	}
}

func (h *Hub) table(id string) (*table, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.tables[id]
	return t, ok
}

// Tables lists the ids of open tables in sorted order.
func (h *Hub) Tables() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.tables))
	for id := range h.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
