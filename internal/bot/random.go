// Package bot provides computer players that act through the same commands
// as human clients.
package bot

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// ErrNoAction is returned when nobody can act in the current state.
var ErrNoAction = errors.New("no action available")

// DefaultSpecialOdds: the all-or-nothing bids are considered on one bidding
// decision in 40.
const DefaultSpecialOdds = 40

// RandomBot picks uniformly among the legal actions of a seat. Bids are
// drawn from Pass and the numeric bids, except on one decision in
// specialOdds when every legal bid is a candidate.
type RandomBot struct {
	rng         *rand.Rand
	specialOdds int
}

// Option customizes a RandomBot.
type Option func(*RandomBot)

// WithSpecialOdds sets how rarely the special bids are considered. One
// means always.
func WithSpecialOdds(odds int) Option {
	return func(b *RandomBot) {
		if odds > 0 {
			b.specialOdds = odds
		}
	}
}

// NewRandomBot creates a bot drawing from rng.
func NewRandomBot(rng *rand.Rand, opts ...Option) *RandomBot {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	b := &RandomBot{rng: rng, specialOdds: DefaultSpecialOdds}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RandomBot) chooseBid(legal []rules.Bid) rules.Bid {
	if b.rng.Intn(b.specialOdds) == 0 {
		return legal[b.rng.Intn(len(legal))]
	}
	modest := make([]rules.Bid, 0, len(legal))
	for _, bid := range legal {
		if bid <= rules.BidSeven {
			modest = append(modest, bid)
		}
	}
	return modest[b.rng.Intn(len(modest))]
}

// Actor returns the seat expected to act. During the exchange it returns
// the first seat still to submit. Table commands return NoSeat.
func Actor(state *game.GameState) rules.Seat {
	if p, ok := state.Phase.(*game.ExchangePhase); ok {
		if pending := p.Exchange.Pending(); len(pending) > 0 {
			return pending[0]
		}
		return rules.NoSeat
	}
	return state.TurnSeat()
}

// Choose returns a legal command for seat, or ErrNoAction when seat has
// nothing to do.
func (b *RandomBot) Choose(state *game.GameState, seat rules.Seat) (game.Command, error) {
	switch p := state.Phase.(type) {
	case *game.BiddingPhase:
		if p.Bidding.NextBidder() != seat {
			return nil, ErrNoAction
		}
		legal := p.Bidding.LegalBidsFor(seat)
		if len(legal) == 0 {
			return nil, ErrNoAction
		}
		return game.PlaceBid{Seat: seat, Bid: b.chooseBid(legal)}, nil

	case *game.TrumpSelectionPhase:
		if p.Chooser != seat {
			return nil, ErrNoAction
		}
		return game.SelectTrump{Seat: seat, Suit: cards.Suits[b.rng.Intn(len(cards.Suits))]}, nil

	case *game.ExchangePhase:
		if !p.Exchange.Participant(seat) || p.Exchange.Submitted(seat) {
			return nil, ErrNoAction
		}
		hand := state.Round.Hands[seat]
		if len(hand) < rules.ExchangeSize {
			return nil, fmt.Errorf("%w: hand of %d cards", ErrNoAction, len(hand))
		}
		picks := b.rng.Perm(len(hand))[:rules.ExchangeSize]
		chosen := make([]cards.Card, 0, rules.ExchangeSize)
		for _, i := range picks {
			chosen = append(chosen, hand[i])
		}
		return game.SubmitExchange{Seat: seat, Cards: chosen}, nil

	case *game.TrickPhase:
		if p.Trick.NextSeat() != seat {
			return nil, ErrNoAction
		}
		legal := rules.LegalCards(state.Round.Hands[seat], p.Trick.Led(), state.Round.Trump)
		if len(legal) == 0 {
			return nil, ErrNoAction
		}
		return game.PlayCard{Seat: seat, Card: legal[b.rng.Intn(len(legal))]}, nil
	}
	return nil, ErrNoAction
}

// Next returns the next command for the whole table: DealCards and
// AdvanceRound when those are due, otherwise the acting seat's choice.
func (b *RandomBot) Next(state *game.GameState) (game.Command, error) {
	switch state.Phase.(type) {
	case *game.DealingPhase:
		return game.DealCards{}, nil
	case *game.ScoringPhase:
		return game.AdvanceRound{}, nil
	case *game.GameOverPhase:
		return nil, ErrNoAction
	}
	seat := Actor(state)
	if seat == rules.NoSeat {
		return nil, ErrNoAction
	}
	return b.Choose(state, seat)
}

// PlayGame drives state to GameOver with the bot acting for every seat and
// returns the final state together with all events. maxCommands bounds the
// loop; zero means no bound.
func PlayGame(orch *game.Orchestrator, state *game.GameState, b *RandomBot, maxCommands int) (*game.GameState, []rules.Event, error) {
	var all []rules.Event
	for n := 0; !state.Over(); n++ {
		if maxCommands > 0 && n >= maxCommands {
			return state, all, fmt.Errorf("game %s not finished after %d commands", state.ID, n)
		}
		cmd, err := b.Next(state)
		if err != nil {
			return state, all, fmt.Errorf("round %d %s: %w", state.RoundNumber, state.CurrentPhase(), err)
		}
		next, events, err := orch.Apply(state, cmd)
		if err != nil {
			return state, all, fmt.Errorf("%s rejected: %w", cmd.CommandName(), err)
		}
		state = next
		all = append(all, events...)
	}
	return state, all, nil
}
