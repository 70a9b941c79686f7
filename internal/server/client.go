package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// Client is one websocket connection. A client sits at no more than one
// game at a time.
type Client struct {
	id     string
	conn   *websocket.Conn
	hub    *Hub
	logger *zap.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
	table  *table
	seat   rules.Seat
}

func (c *Client) seating() (*table, rules.Seat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table, c.seat
}

func (c *Client) sit(t *table, seat rules.Seat) {
	c.mu.Lock()
	c.table = t
	c.seat = seat
	c.mu.Unlock()
}

func (c *Client) stand() {
	c.mu.Lock()
	c.table = nil
	c.seat = rules.NoSeat
	c.mu.Unlock()
}

// deliver queues msg without blocking. A client whose buffer is full is
// dropped.
func (c *Client) deliver(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("client send buffer full, closing", zap.String("client_id", c.id))
		c.closed = true
		close(c.send)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		c.conn.Close()
	}()

	cfg := c.hub.cfg
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.deliver(errorMessage("", rules.NoSeat, ErrMalformedMessage))
			continue
		}
		c.hub.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
