package game

import (
	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// Snapshot is a read-only view of a game suitable for clients. Hands holds
// every seat's cards until ForSeat redacts it.
type Snapshot struct {
	GameID      string                       `json:"game_id"`
	Phase       rules.Phase                  `json:"phase"`
	RoundNumber int                          `json:"round"`
	Dealer      rules.Seat                   `json:"dealer"`
	Viewer      rules.Seat                   `json:"viewer"`
	Hands       [rules.NumSeats][]cards.Card `json:"hands"`
	HandSizes   [rules.NumSeats]int          `json:"hand_sizes"`
	Bids        []rules.BidEntry             `json:"bids"`
	LegalBids   []rules.Bid                  `json:"legal_bids,omitempty"`
	Contract    *rules.Contract              `json:"contract,omitempty"`
	Trump       *rules.TrumpInfo             `json:"trump,omitempty"`
	TurnSeat    rules.Seat                   `json:"turn"`
	SittingOut  rules.Seat                   `json:"sitting_out"`
	Trick       *rules.Trick                 `json:"trick,omitempty"`
	TrickNumber int                          `json:"trick_number,omitempty"`
	TricksWon   [2]int                       `json:"tricks_won"`
	Scores      [2]int                       `json:"scores"`
	Threshold   int                          `json:"threshold"`
	LastResult  *rules.RoundResult           `json:"last_result,omitempty"`
	Winner      *rules.Team                  `json:"winner,omitempty"`
	Exchange    []rules.Seat                 `json:"exchange_pending,omitempty"`
}

// TakeSnapshot builds the full, unredacted view of state.
func TakeSnapshot(state *GameState) Snapshot {
	snap := Snapshot{
		GameID:      state.ID,
		Phase:       state.CurrentPhase(),
		RoundNumber: state.RoundNumber,
		Dealer:      state.Dealer,
		Viewer:      rules.NoSeat,
		TurnSeat:    state.TurnSeat(),
		SittingOut:  rules.NoSeat,
		TricksWon:   state.TricksWon(),
		Scores:      state.Scores,
		Threshold:   state.Threshold,
		Bids:        []rules.BidEntry{},
	}
	if n := len(state.History); n > 0 {
		last := state.History[n-1]
		snap.LastResult = &last
	}
	if winner, ok := state.Winner(); ok {
		snap.Winner = &winner
	}

	if round := state.Round; round != nil {
		snap.SittingOut = round.SittingOut
		for seat := range round.Hands {
			snap.Hands[seat] = cards.Clone(round.Hands[seat])
			snap.HandSizes[seat] = len(round.Hands[seat])
		}
		if round.Bids != nil {
			snap.Bids = cloneSlice(round.Bids)
		}
		if round.Contract != nil {
			contract := *round.Contract
			snap.Contract = &contract
		}
		if round.Trump != nil {
			info := rules.DescribeTrump(*round.Trump)
			snap.Trump = &info
		}
	}

	switch p := state.Phase.(type) {
	case *BiddingPhase:
		snap.Bids = cloneSlice(p.Bidding.Bids)
		if snap.Bids == nil {
			snap.Bids = []rules.BidEntry{}
		}
		if next := p.Bidding.NextBidder(); next != rules.NoSeat {
			snap.LegalBids = p.Bidding.LegalBidsFor(next)
		}
	case *ExchangePhase:
		snap.Exchange = p.Exchange.Pending()
	case *TrickPhase:
		snap.Trick = p.Trick.Clone()
		snap.TrickNumber = p.Number
	}
	return snap
}

// ForSeat returns a copy with every hand except seat's removed. Hand sizes
// stay visible. Legal bids are only kept when seat is the one bidding.
func (s Snapshot) ForSeat(seat rules.Seat) Snapshot {
	out := s
	out.Viewer = seat
	for i := range out.Hands {
		if rules.Seat(i) == seat {
			out.Hands[i] = cards.Clone(s.Hands[i])
			continue
		}
		out.Hands[i] = nil
	}
	if seat != s.TurnSeat {
		out.LegalBids = nil
	}
	return out
}

// Hand returns the cards the viewer holds.
func (s Snapshot) Hand() []cards.Card {
	if !s.Viewer.Valid() {
		return nil
	}
	return s.Hands[s.Viewer]
}
