package game

import (
	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// Command is a request to change a game. Seated commands name the acting
// seat; table commands (DealCards, AdvanceRound) come from the host.
type Command interface {
	CommandName() string
}

// DealCards deals the shuffled deck of the current round.
type DealCards struct{}

// PlaceBid records seat's bid.
type PlaceBid struct {
	Seat rules.Seat
	Bid  rules.Bid
}

// SelectTrump names the trump suit.
type SelectTrump struct {
	Seat rules.Seat
	Suit cards.Suit
}

// SubmitExchange passes two cards to the partner.
type SubmitExchange struct {
	Seat  rules.Seat
	Cards []cards.Card
}

// PlayCard plays one card to the current trick.
type PlayCard struct {
	Seat rules.Seat
	Card cards.Card
}

// AdvanceRound starts the next round after scoring.
type AdvanceRound struct{}

func (DealCards) CommandName() string      { return "deal_cards" }
func (PlaceBid) CommandName() string       { return "place_bid" }
func (SelectTrump) CommandName() string    { return "select_trump" }
func (SubmitExchange) CommandName() string { return "submit_exchange" }
func (PlayCard) CommandName() string       { return "play_card" }
func (AdvanceRound) CommandName() string   { return "advance_round" }
