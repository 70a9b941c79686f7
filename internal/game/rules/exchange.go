package rules

import (
	"fmt"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
)

// ExchangeSize is the number of cards each participant passes.
const ExchangeSize = 2

// Hands holds every seat's hand, indexed by seat.
type Hands [NumSeats][]cards.Card

// Clone returns a deep copy.
func (h Hands) Clone() Hands {
	var out Hands
	for i := range h {
		out[i] = cards.Clone(h[i])
	}
	return out
}

// Exchange buffers the two-card submissions of the contract winner and
// their partner. Cards stay in the submitters' hands until Apply.
type Exchange struct {
	Winner       Seat         `json:"winner"`
	Partner      Seat         `json:"partner"`
	WinnerCards  []cards.Card `json:"winner_cards,omitempty"`
	PartnerCards []cards.Card `json:"partner_cards,omitempty"`
}

// NewExchange prepares an exchange for the contract won by winner.
func NewExchange(winner Seat) *Exchange {
	return &Exchange{Winner: winner, Partner: winner.Partner()}
}

// Clone returns a deep copy.
func (e *Exchange) Clone() *Exchange {
	if e == nil {
		return nil
	}
	return &Exchange{
		Winner:       e.Winner,
		Partner:      e.Partner,
		WinnerCards:  cards.Clone(e.WinnerCards),
		PartnerCards: cards.Clone(e.PartnerCards),
	}
}

// Participant reports whether seat takes part in the exchange.
func (e *Exchange) Participant(seat Seat) bool {
	return seat == e.Winner || seat == e.Partner
}

// Submitted reports whether seat has already passed its cards.
func (e *Exchange) Submitted(seat Seat) bool {
	switch seat {
	case e.Winner:
		return e.WinnerCards != nil
	case e.Partner:
		return e.PartnerCards != nil
	default:
		return false
	}
}

// Pending returns the participants that still have to submit.
func (e *Exchange) Pending() []Seat {
	pending := make([]Seat, 0, 2)
	for _, s := range []Seat{e.Winner, e.Partner} {
		if !e.Submitted(s) {
			pending = append(pending, s)
		}
	}
	return pending
}

// Submit buffers seat's cards after validating them against its hand.
func (e *Exchange) Submit(seat Seat, picks []cards.Card, hand []cards.Card) error {
	if !seat.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSeat, int(seat))
	}
	if !e.Participant(seat) {
		return fmt.Errorf("%w: %s is not part of the exchange", ErrNotYourTurn, seat)
	}
	if e.Submitted(seat) {
		return fmt.Errorf("%w: %s already passed cards", ErrDuplicateSubmission, seat)
	}
	if len(picks) != ExchangeSize {
		return fmt.Errorf("%w: got %d", ErrInvalidExchangeSize, len(picks))
	}
	if picks[0] == picks[1] {
		return fmt.Errorf("%w: %s submitted twice", ErrIllegalCard, picks[0])
	}
	for _, c := range picks {
		if !cards.Contains(hand, c) {
			return fmt.Errorf("%w: %s not in hand of %s", ErrIllegalCard, c, seat)
		}
	}

	if seat == e.Winner {
		e.WinnerCards = cards.Clone(picks)
	} else {
		e.PartnerCards = cards.Clone(picks)
	}
	return nil
}

// Ready reports whether both participants have submitted.
func (e *Exchange) Ready() bool {
	return e.WinnerCards != nil && e.PartnerCards != nil
}

// Apply swaps the buffered cards and returns the new hands and the seat that
// sits out the rest of the round. Swapped hands are re-sorted.
func (e *Exchange) Apply(hands Hands) (Hands, Seat, error) {
	if !e.Ready() {
		return hands, NoSeat, fmt.Errorf("%w: exchange still waiting on %v", ErrInvalidPhase, e.Pending())
	}
	out := hands.Clone()
	winnerHand := append(cards.Remove(out[e.Winner], e.WinnerCards...), e.PartnerCards...)
	partnerHand := append(cards.Remove(out[e.Partner], e.PartnerCards...), e.WinnerCards...)
	cards.SortHand(winnerHand)
	cards.SortHand(partnerHand)
	out[e.Winner] = winnerHand
	out[e.Partner] = partnerHand
	return out, e.Partner, nil
}
