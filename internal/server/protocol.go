package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// Inbound message types.
const (
	MsgCreateGame = "create_game"
	MsgJoinGame   = "join_game"
	MsgCommand    = "command"
)

// Outbound message types.
const (
	MsgGameCreated = "game_created"
	MsgJoined      = "joined"
	MsgState       = "state"
	MsgEvents      = "events"
	MsgError       = "error"
)

// Command kinds carried by a command message.
const (
	KindDeal     = "deal_cards"
	KindBid      = "place_bid"
	KindTrump    = "select_trump"
	KindExchange = "submit_exchange"
	KindPlay     = "play_card"
	KindAdvance  = "advance_round"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrNotSeated        = errors.New("not seated at a game")
	ErrAlreadySeated    = errors.New("already seated at a game")
	ErrSeatTaken        = errors.New("seat is taken")
	ErrTableClosed      = errors.New("table closed")
)

// ClientMessage is a message received from a client.
type ClientMessage struct {
	Type   string          `json:"type"`
	GameID string          `json:"game_id,omitempty"`
	Seat   *rules.Seat     `json:"seat,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is a message sent to a client.
type ServerMessage struct {
	Type   string     `json:"type"`
	GameID string     `json:"game_id,omitempty"`
	Seat   rules.Seat `json:"seat"`
	Data   any        `json:"data,omitempty"`
}

// ErrorData describes a rejected message.
type ErrorData struct {
	Message   string `json:"message"`
	Rejection bool   `json:"rejection"`
}

// CommandPayload is the data of a command message. Which fields are read
// depends on Kind. The acting seat is always the sender's seat.
type CommandPayload struct {
	Kind  string       `json:"kind"`
	Bid   *rules.Bid   `json:"bid,omitempty"`
	Suit  *cards.Suit  `json:"suit,omitempty"`
	Cards []cards.Card `json:"cards,omitempty"`
	Card  *cards.Card  `json:"card,omitempty"`
}

// ToCommand builds the game command seat is asking for.
func (p CommandPayload) ToCommand(seat rules.Seat) (game.Command, error) {
	switch p.Kind {
	case KindDeal:
		return game.DealCards{}, nil
	case KindAdvance:
		return game.AdvanceRound{}, nil
	case KindBid:
		if p.Bid == nil {
			return nil, fmt.Errorf("%w: %s needs a bid", ErrMalformedMessage, p.Kind)
		}
		return game.PlaceBid{Seat: seat, Bid: *p.Bid}, nil
	case KindTrump:
		if p.Suit == nil {
			return nil, fmt.Errorf("%w: %s needs a suit", ErrMalformedMessage, p.Kind)
		}
		return game.SelectTrump{Seat: seat, Suit: *p.Suit}, nil
	case KindExchange:
		if len(p.Cards) == 0 {
			return nil, fmt.Errorf("%w: %s needs cards", ErrMalformedMessage, p.Kind)
		}
		return game.SubmitExchange{Seat: seat, Cards: p.Cards}, nil
	case KindPlay:
		if p.Card == nil {
			return nil, fmt.Errorf("%w: %s needs a card", ErrMalformedMessage, p.Kind)
		}
		return game.PlayCard{Seat: seat, Card: *p.Card}, nil
	}
	return nil, fmt.Errorf("%w: unknown command kind %q", ErrMalformedMessage, p.Kind)
}

func errorMessage(gameID string, seat rules.Seat, err error) ServerMessage {
	return ServerMessage{
		Type:   MsgError,
		GameID: gameID,
		Seat:   seat,
		Data:   ErrorData{Message: err.Error(), Rejection: game.IsRejection(err)},
	}
}
