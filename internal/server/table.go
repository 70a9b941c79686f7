package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

type requestKind int

const (
	reqJoin requestKind = iota
	reqLeave
	reqCommand
)

type tableRequest struct {
	kind    requestKind
	client  *Client
	seat    rules.Seat
	payload CommandPayload
	reply   chan error
}

// table is the actor owning one game. Every request for the game runs on
// its goroutine, so commands are applied and broadcast in order.
type table struct {
	id       string
	engine   *game.Engine
	logger   *zap.Logger
	autoDeal bool
	seats    [rules.NumSeats]*Client
	requests chan tableRequest
	done     chan struct{}
	onClose  func(*table)
}

func newTable(id string, engine *game.Engine, autoDeal bool, logger *zap.Logger, onClose func(*table)) *table {
	return &table{
		id:       id,
		engine:   engine,
		logger:   logger.With(zap.String("game_id", id)),
		autoDeal: autoDeal,
		requests: make(chan tableRequest),
		done:     make(chan struct{}),
		onClose:  onClose,
	}
}

// run processes requests until ctx ends or the last seated client leaves.
func (t *table) run(ctx context.Context) {
	defer func() {
		close(t.done)
		if t.onClose != nil {
			t.onClose(t)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-t.requests:
			var err error
			switch req.kind {
			case reqJoin:
				err = t.join(req.client, req.seat)
			case reqLeave:
				t.leave(req.client)
			case reqCommand:
				t.command(req.client, req.payload)
			}
			if req.reply != nil {
				req.reply <- err
			}
			if t.occupied() == 0 {
				t.logger.Info("table empty, closing")
				return
			}
		}
	}
}

// submit hands req to the actor. It fails once the actor has stopped.
// Callers wanting to wait for the result set req.reply.
func (t *table) submit(req tableRequest) error {
	select {
	case t.requests <- req:
		return nil
	case <-t.done:
		return fmt.Errorf("%w: %s", ErrTableClosed, t.id)
	}
}

// call submits req and waits until the actor has processed it.
func (t *table) call(req tableRequest) error {
	req.reply = make(chan error, 1)
	if err := t.submit(req); err != nil {
		return err
	}
	return <-req.reply
}

func (t *table) occupied() int {
	n := 0
	for _, c := range t.seats {
		if c != nil {
			n++
		}
	}
	return n
}

func (t *table) seatOf(c *Client) rules.Seat {
	for seat, sitting := range t.seats {
		if sitting == c {
			return rules.Seat(seat)
		}
	}
	return rules.NoSeat
}

func (t *table) join(c *Client, seat rules.Seat) error {
	if !seat.Valid() {
		return fmt.Errorf("%w: %d", game.ErrUnknownSeat, seat)
	}
	if current, _ := c.seating(); current != nil {
		return ErrAlreadySeated
	}
	if t.seats[seat] != nil {
		return fmt.Errorf("%w: %s", ErrSeatTaken, seat)
	}

	t.seats[seat] = c
	c.sit(t, seat)
	t.logger.Info("player seated",
		zap.String("client_id", c.id),
		zap.Stringer("seat", seat),
		zap.Int("occupied", t.occupied()),
	)

	c.deliver(ServerMessage{Type: MsgJoined, GameID: t.id, Seat: seat, Data: seat.Team()})
	if !t.maybeDeal() {
		t.sendState(c, seat)
	}
	return nil
}

func (t *table) leave(c *Client) {
	seat := t.seatOf(c)
	if seat == rules.NoSeat {
		return
	}
	t.seats[seat] = nil
	c.stand()
	t.logger.Info("player left", zap.String("client_id", c.id), zap.Stringer("seat", seat))
}

func (t *table) command(c *Client, payload CommandPayload) {
	seat := t.seatOf(c)
	if seat == rules.NoSeat {
		c.deliver(errorMessage(t.id, seat, ErrNotSeated))
		return
	}
	cmd, err := payload.ToCommand(seat)
	if err != nil {
		c.deliver(errorMessage(t.id, seat, err))
		return
	}

	events, err := t.engine.ProcessCommand(t.id, cmd)
	if err != nil {
		c.deliver(errorMessage(t.id, seat, err))
		return
	}
	t.broadcast(events)
	t.maybeDeal()
}

// maybeDeal deals when the table is full and the game waits in Dealing.
// It reports whether a deal was broadcast.
func (t *table) maybeDeal() bool {
	if !t.autoDeal || t.occupied() < rules.NumSeats {
		return false
	}
	snap, err := t.engine.Snapshot(t.id)
	if err != nil || snap.Phase != rules.PhaseDealing {
		return false
	}
	events, err := t.engine.ProcessCommand(t.id, game.DealCards{})
	if err != nil {
		t.logger.Error("auto deal failed", zap.Error(err))
		return false
	}
	t.broadcast(events)
	return true
}

// broadcast sends every seated client the events it may see and then its
// own view of the committed state.
func (t *table) broadcast(events []rules.Event) {
	snap, err := t.engine.Snapshot(t.id)
	if err != nil {
		t.logger.Error("failed to snapshot game", zap.Error(err))
		return
	}
	for i, c := range t.seats {
		if c == nil {
			continue
		}
		seat := rules.Seat(i)
		visible := make([]rules.Event, 0, len(events))
		for _, evt := range events {
			if evt.VisibleTo(seat) {
				visible = append(visible, evt)
			}
		}
		if len(visible) > 0 {
			c.deliver(ServerMessage{Type: MsgEvents, GameID: t.id, Seat: seat, Data: visible})
		}
		c.deliver(ServerMessage{Type: MsgState, GameID: t.id, Seat: seat, Data: snap.ForSeat(seat)})
	}
}

func (t *table) sendState(c *Client, seat rules.Seat) {
	snap, err := t.engine.Snapshot(t.id)
	if err != nil {
		c.deliver(errorMessage(t.id, seat, err))
		return
	}
	c.deliver(ServerMessage{Type: MsgState, GameID: t.id, Seat: seat, Data: snap.ForSeat(seat)})
}
