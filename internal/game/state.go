package game

import (
	"encoding/gob"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

func init() {
	gob.Register(&DealingPhase{})
	gob.Register(&BiddingPhase{})
	gob.Register(&TrumpSelectionPhase{})
	gob.Register(&ExchangePhase{})
	gob.Register(&TrickPhase{})
	gob.Register(&ScoringPhase{})
	gob.Register(&GameOverPhase{})
}

// PhaseState is the phase-specific part of a game. Exactly one variant is
// active at a time; commands type-switch on it to find out whether they
// apply.
type PhaseState interface {
	Phase() rules.Phase
	clonePhase() PhaseState
}

// DealingPhase waits for DealCards. The shuffled deck lives on the Round.
type DealingPhase struct {
	Round int
}

// BiddingPhase collects one bid per seat.
type BiddingPhase struct {
	Bidding *rules.BiddingRound
}

// TrumpSelectionPhase waits for the contract holder to name trump.
type TrumpSelectionPhase struct {
	Chooser rules.Seat
}

// ExchangePhase buffers the special-contract card swap.
type ExchangePhase struct {
	Exchange *rules.Exchange
}

// TrickPhase holds the trick in progress. Number is 1-based.
type TrickPhase struct {
	Number int
	Trick  *rules.Trick
}

// ScoringPhase shows the result of the finished round until AdvanceRound.
type ScoringPhase struct {
	Result rules.RoundResult
}

// GameOverPhase is terminal.
type GameOverPhase struct {
	Winner rules.Team
	Result rules.RoundResult
}

func (*DealingPhase) Phase() rules.Phase        { return rules.PhaseDealing }
func (*BiddingPhase) Phase() rules.Phase        { return rules.PhaseBidding }
func (*TrumpSelectionPhase) Phase() rules.Phase { return rules.PhaseTrumpSelection }
func (*ExchangePhase) Phase() rules.Phase       { return rules.PhaseExchange }
func (*TrickPhase) Phase() rules.Phase          { return rules.PhaseTrickPlaying }
func (*ScoringPhase) Phase() rules.Phase        { return rules.PhaseScoring }
func (*GameOverPhase) Phase() rules.Phase       { return rules.PhaseGameOver }

func (p *DealingPhase) clonePhase() PhaseState {
	c := *p
	return &c
}

func (p *BiddingPhase) clonePhase() PhaseState {
	return &BiddingPhase{Bidding: p.Bidding.Clone()}
}

func (p *TrumpSelectionPhase) clonePhase() PhaseState {
	c := *p
	return &c
}

func (p *ExchangePhase) clonePhase() PhaseState {
	return &ExchangePhase{Exchange: p.Exchange.Clone()}
}

func (p *TrickPhase) clonePhase() PhaseState {
	return &TrickPhase{Number: p.Number, Trick: p.Trick.Clone()}
}

func (p *ScoringPhase) clonePhase() PhaseState {
	c := *p
	return &c
}

func (p *GameOverPhase) clonePhase() PhaseState {
	c := *p
	return &c
}

// Round is everything that lives for one deal.
type Round struct {
	Number     int
	Dealer     rules.Seat
	Deck       []cards.Card
	Hands      rules.Hands
	Bids       []rules.BidEntry
	Contract   *rules.Contract
	Trump      *cards.Suit
	SittingOut rules.Seat
	Tricks     []*rules.Trick
}

func newRound(number int, dealer rules.Seat, deck []cards.Card) *Round {
	return &Round{
		Number:     number,
		Dealer:     dealer,
		Deck:       deck,
		SittingOut: rules.NoSeat,
		Tricks:     make([]*rules.Trick, 0, rules.TricksPerRound),
	}
}

// Clone returns a deep copy.
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	c := &Round{
		Number:     r.Number,
		Dealer:     r.Dealer,
		Deck:       cards.Clone(r.Deck),
		Hands:      r.Hands.Clone(),
		Bids:       cloneSlice(r.Bids),
		SittingOut: r.SittingOut,
	}
	if r.Tricks != nil {
		c.Tricks = make([]*rules.Trick, len(r.Tricks), rules.TricksPerRound)
		for i, t := range r.Tricks {
			c.Tricks[i] = t.Clone()
		}
	}
	if r.Contract != nil {
		contract := *r.Contract
		c.Contract = &contract
	}
	if r.Trump != nil {
		trump := *r.Trump
		c.Trump = &trump
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// GameState is the authoritative state of one game. Orchestrator.Apply
// never mutates the value it is given.
type GameState struct {
	ID          string
	Threshold   int
	Dealer      rules.Seat
	Scores      [2]int
	RoundNumber int
	Round       *Round
	Phase       PhaseState
	History     []rules.RoundResult
}

// Clone returns a deep copy.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Round = s.Round.Clone()
	if s.Phase != nil {
		c.Phase = s.Phase.clonePhase()
	}
	c.History = cloneSlice(s.History)
	return &c
}

// CurrentPhase returns the phase kind, or Dealing for an empty state.
func (s *GameState) CurrentPhase() rules.Phase {
	if s == nil || s.Phase == nil {
		return rules.PhaseDealing
	}
	return s.Phase.Phase()
}

// Over reports whether the game has reached GameOver.
func (s *GameState) Over() bool {
	_, ok := s.Phase.(*GameOverPhase)
	return ok
}

// Winner returns the winning team once the game is over.
func (s *GameState) Winner() (rules.Team, bool) {
	if over, ok := s.Phase.(*GameOverPhase); ok {
		return over.Winner, true
	}
	return rules.Team1, false
}

// TurnSeat returns the single seat expected to act next, or NoSeat when
// nobody or more than one seat may act.
func (s *GameState) TurnSeat() rules.Seat {
	switch p := s.Phase.(type) {
	case *BiddingPhase:
		return p.Bidding.NextBidder()
	case *TrumpSelectionPhase:
		return p.Chooser
	case *ExchangePhase:
		if pending := p.Exchange.Pending(); len(pending) == 1 {
			return pending[0]
		}
		return rules.NoSeat
	case *TrickPhase:
		return p.Trick.NextSeat()
	default:
		return rules.NoSeat
	}
}

// TricksWon tallies completed tricks of the current round per team.
func (s *GameState) TricksWon() [2]int {
	if s.Round == nil {
		return [2]int{}
	}
	return rules.CountTricks(s.Round.Tricks)
}
