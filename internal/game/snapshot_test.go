package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

func TestSnapshotDuringBidding(t *testing.T) {
	o := newTestOrchestrator(41)
	state := dealtGame(t, o)
	state, _ = mustApply(t, o, state, PlaceBid{Seat: 1, Bid: rules.BidFive})

	snap := TakeSnapshot(state)
	assert.Equal(t, "g1", snap.GameID)
	assert.Equal(t, rules.PhaseBidding, snap.Phase)
	assert.Equal(t, rules.Seat(2), snap.TurnSeat)
	assert.Equal(t, rules.NoSeat, snap.Viewer)
	assert.Equal(t, [rules.NumSeats]int{8, 8, 8, 8}, snap.HandSizes)
	assert.Equal(t, []rules.BidEntry{{Seat: 1, Bid: rules.BidFive}}, snap.Bids)
	assert.NotContains(t, snap.LegalBids, rules.BidFour)
	assert.Contains(t, snap.LegalBids, rules.BidSix)
	assert.Nil(t, snap.Contract)
	assert.Nil(t, snap.Trump)
	assert.Nil(t, snap.Trick)
	for seat := range snap.Hands {
		assert.Len(t, snap.Hands[seat], cards.HandSize)
	}
}

func TestSnapshotForSeatRedactsOtherHands(t *testing.T) {
	o := newTestOrchestrator(42)
	state := dealtGame(t, o)
	snap := TakeSnapshot(state)

	view := snap.ForSeat(2)
	assert.Equal(t, rules.Seat(2), view.Viewer)
	assert.Equal(t, state.Round.Hands[2], view.Hand())
	for seat := range view.Hands {
		if rules.Seat(seat) == 2 {
			continue
		}
		assert.Nil(t, view.Hands[seat], "seat %d hand is hidden", seat)
	}
	assert.Equal(t, snap.HandSizes, view.HandSizes)
	assert.Nil(t, view.LegalBids, "only the bidding seat sees legal bids")

	bidder := snap.ForSeat(1)
	assert.NotEmpty(t, bidder.LegalBids)

	// The full snapshot is untouched.
	assert.Len(t, snap.Hands[0], cards.HandSize)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	for seat := range state.Round.Hands {
		if rules.Seat(seat) == 2 {
			continue
		}
		for _, c := range state.Round.Hands[seat] {
			if cards.Contains(state.Round.Hands[2], c) {
				continue
			}
			encoded, err := json.Marshal(c)
			require.NoError(t, err)
			assert.NotContains(t, string(data), string(encoded))
		}
	}
}

func TestSnapshotDuringTricks(t *testing.T) {
	state := midTrickState(t)
	snap := TakeSnapshot(state)

	assert.Equal(t, rules.PhaseTrickPlaying, snap.Phase)
	require.NotNil(t, snap.Contract)
	assert.Equal(t, rules.ContractHaus, snap.Contract.Kind)
	require.NotNil(t, snap.Trump)
	assert.Equal(t, cards.Hearts, snap.Trump.Suit)
	assert.Equal(t, card(cards.Hearts, cards.Jack, 0), snap.Trump.RightBar)
	assert.Equal(t, cards.Diamonds, snap.Trump.LeftBar.Suit)
	assert.Equal(t, rules.Seat(3), snap.SittingOut)
	require.NotNil(t, snap.Trick)
	assert.Len(t, snap.Trick.Plays, 2)
	assert.Equal(t, 1, snap.TrickNumber)
	assert.Equal(t, state.TurnSeat(), snap.TurnSeat)
	assert.Len(t, snap.Bids, 4)

	// Seats 1 and 2 have played one card; seat 3 sits out with a full hand.
	assert.Equal(t, [rules.NumSeats]int{8, 7, 7, 8}, snap.HandSizes)

	snap.Trick.Plays[0].Seat = 0
	assert.Equal(t, rules.Seat(1), state.Phase.(*TrickPhase).Trick.Plays[0].Seat)
}

func TestSnapshotAfterGameOver(t *testing.T) {
	o := newTestOrchestrator(43)
	state := finalTrickState(rules.Contract{Kind: rules.ContractNumber, Tricks: 4, Seat: 0}, rules.NoSeat, [2]int{60, 0}, 0)
	state, _, err := o.Apply(state, PlayCard{Seat: 3, Card: card(cards.Hearts, cards.Queen, 0)})
	require.NoError(t, err)

	snap := TakeSnapshot(state)
	assert.Equal(t, rules.PhaseGameOver, snap.Phase)
	require.NotNil(t, snap.Winner)
	assert.Equal(t, rules.Team1, *snap.Winner)
	require.NotNil(t, snap.LastResult)
	assert.Equal(t, [2]int{8, 0}, snap.LastResult.Points)
	assert.Equal(t, rules.NoSeat, snap.TurnSeat)
}

func TestCheckCardConservation(t *testing.T) {
	o := newTestOrchestrator(44)
	state := dealtGame(t, o)
	require.NoError(t, CheckCardConservation(state))

	dup := state.Clone()
	dup.Round.Hands[0][0] = dup.Round.Hands[1][0]
	err := CheckCardConservation(dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seen 2 times")
	assert.Contains(t, err.Error(), "missing")

	lost := state.Clone()
	lost.Round.Hands[3] = lost.Round.Hands[3][:7]
	assert.Error(t, CheckCardConservation(lost))

	assert.Error(t, CheckCardConservation(nil))
}
