package rules

import (
	"fmt"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
)

// TricksPerRound is the number of tricks in every round.
const TricksPerRound = cards.HandSize

// TrickState is the lifecycle of a single trick.
type TrickState int

const (
	TrickEmpty TrickState = iota
	TrickInProgress
	TrickComplete
)

var trickStateNames = map[TrickState]string{
	TrickEmpty:      "EMPTY",
	TrickInProgress: "IN_PROGRESS",
	TrickComplete:   "COMPLETE",
}

func (s TrickState) String() string {
	if name, ok := trickStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TRICK_STATE_%d", int(s))
}

// Trick is one round of plays. Winner is NoSeat until the trick completes.
type Trick struct {
	Leader     Seat   `json:"leader"`
	SittingOut Seat   `json:"sitting_out"`
	Plays      []Play `json:"plays"`
	Winner     Seat   `json:"winner"`
	WinnerTeam Team   `json:"winner_team"`
}

// NewTrick starts an empty trick led by leader.
func NewTrick(leader, sittingOut Seat) *Trick {
	return &Trick{
		Leader:     leader,
		SittingOut: sittingOut,
		Plays:      make([]Play, 0, NumSeats),
		Winner:     NoSeat,
	}
}

// Clone returns a deep copy.
func (t *Trick) Clone() *Trick {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Plays != nil {
		clone.Plays = append(make([]Play, 0, NumSeats), t.Plays...)
	}
	return &clone
}

// State reports where the trick is in its lifecycle.
func (t *Trick) State() TrickState {
	switch {
	case len(t.Plays) == 0:
		return TrickEmpty
	case len(t.Plays) >= ActiveSeatCount(t.SittingOut):
		return TrickComplete
	default:
		return TrickInProgress
	}
}

// Led returns the printed suit of the first card, or nil before the lead.
func (t *Trick) Led() *cards.Suit {
	if len(t.Plays) == 0 {
		return nil
	}
	led := t.Plays[0].Card.Suit
	return &led
}

// NextSeat returns the seat due to play, or NoSeat when complete.
func (t *Trick) NextSeat() Seat {
	switch t.State() {
	case TrickEmpty:
		return t.Leader
	case TrickComplete:
		return NoSeat
	default:
		return NextActiveSeat(t.Plays[len(t.Plays)-1].Seat, t.SittingOut)
	}
}

// Play validates and records a card from seat. It returns the seat's hand
// without the played card; the caller owns the returned slice.
func (t *Trick) Play(seat Seat, card cards.Card, hand []cards.Card, trump *cards.Suit) ([]cards.Card, error) {
	if !seat.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeat, int(seat))
	}
	if t.State() == TrickComplete {
		return nil, fmt.Errorf("%w: trick is complete", ErrInvalidPhase)
	}
	if next := t.NextSeat(); seat != next {
		return nil, fmt.Errorf("%w: %s to play, got %s", ErrNotYourTurn, next, seat)
	}
	if res := CheckPlay(card, hand, t.Led(), trump); !res.Legal {
		return nil, fmt.Errorf("%w: %s", ErrIllegalCard, res)
	}

	t.Plays = append(t.Plays, Play{Seat: seat, Card: card})
	if t.State() == TrickComplete {
		idx, err := WinningPlay(t.Plays, trump)
		if err != nil {
			return nil, err
		}
		t.Winner = t.Plays[idx].Seat
		t.WinnerTeam = t.Winner.Team()
	}
	return cards.Remove(hand, card), nil
}

// CountTricks tallies completed tricks per team.
func CountTricks(tricks []*Trick) [2]int {
	var won [2]int
	for _, t := range tricks {
		if t == nil || t.Winner == NoSeat {
			continue
		}
		won[t.WinnerTeam]++
	}
	return won
}
