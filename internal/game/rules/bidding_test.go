package rules

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalBids(t *testing.T) {
	tests := []struct {
		name     string
		highest  Bid
		dealer   bool
		haus     bool
		expected []Bid
	}{
		{
			name:     "opening bid",
			highest:  BidPass,
			expected: []Bid{BidPass, BidFour, BidFive, BidSix, BidSeven, BidAceHaus, BidHaus},
		},
		{
			name:     "over five",
			highest:  BidFive,
			expected: []Bid{BidPass, BidSix, BidSeven, BidAceHaus, BidHaus},
		},
		{
			name:     "over haus for non dealer",
			highest:  BidHaus,
			haus:     true,
			expected: []Bid{BidPass},
		},
		{
			name:     "over haus for dealer",
			highest:  BidHaus,
			dealer:   true,
			haus:     true,
			expected: []Bid{BidPass, BidDoubleHaus},
		},
		{
			name:     "dealer without haus",
			highest:  BidSeven,
			dealer:   true,
			expected: []Bid{BidPass, BidAceHaus, BidHaus},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LegalBids(tt.highest, tt.dealer, tt.haus))
		})
	}
}

func TestLegalBidsNeverOffersDoubleHausWrongly(t *testing.T) {
	for highest := BidPass; highest <= BidDoubleHaus; highest++ {
		for _, dealer := range []bool{false, true} {
			for _, haus := range []bool{false, true} {
				bids := LegalBids(highest, dealer, haus)
				assert.Contains(t, bids, BidPass)
				if !(dealer && haus) {
					assert.NotContains(t, bids, BidDoubleHaus)
				}
				for _, b := range bids {
					if b != BidPass {
						assert.Greater(t, b, highest)
					}
				}
			}
		}
	}
}

func TestBiddingRoundTurnOrder(t *testing.T) {
	br := NewBiddingRound(2)
	assert.Equal(t, Seat(3), br.NextBidder())

	err := br.Place(0, BidFour)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotYourTurn))

	require.NoError(t, br.Place(3, BidFour))
	assert.Equal(t, Seat(0), br.NextBidder())

	err = br.Place(0, BidFour)
	assert.ErrorIs(t, err, ErrIllegalBid)
	assert.Len(t, br.Bids, 1)

	err = br.Place(7, BidPass)
	assert.ErrorIs(t, err, ErrUnknownSeat)

	require.NoError(t, br.Place(0, BidSix))
	require.NoError(t, br.Place(1, BidPass))
	assert.False(t, br.Complete())
	require.NoError(t, br.Place(2, BidSeven))
	assert.True(t, br.Complete())
	assert.Equal(t, NoSeat, br.NextBidder())

	assert.ErrorIs(t, br.Place(3, BidPass), ErrInvalidPhase)

	contract, err := br.Resolve()
	require.NoError(t, err)
	assert.Equal(t, Contract{Kind: ContractNumber, Tricks: 7, Seat: 2}, contract)
	assert.Equal(t, Team1, contract.Team())
	assert.True(t, contract.NeedsTrump())
	assert.False(t, contract.NeedsExchange())
}

func TestBiddingRoundStuckDealer(t *testing.T) {
	br := NewBiddingRound(1)
	for _, s := range []Seat{2, 3, 0, 1} {
		require.NoError(t, br.Place(s, BidPass))
	}
	assert.Len(t, br.Bids, 4)

	contract, err := br.Resolve()
	require.NoError(t, err)
	assert.Equal(t, ContractNumber, contract.Kind)
	assert.Equal(t, 4, contract.Tricks)
	assert.Equal(t, Seat(1), contract.Seat)
	assert.True(t, contract.Forced)
	assert.True(t, contract.NeedsTrump())
	assert.False(t, contract.NeedsExchange())
	assert.Len(t, br.Bids, 4, "forced contract is not recorded as a bid")
}

func TestBiddingRoundDoubleHausOnlyForDealer(t *testing.T) {
	br := NewBiddingRound(3)
	require.NoError(t, br.Place(0, BidHaus))
	assert.NotContains(t, br.LegalBidsFor(1), BidDoubleHaus)
	require.NoError(t, br.Place(1, BidPass))
	require.NoError(t, br.Place(2, BidPass))
	assert.Contains(t, br.LegalBidsFor(3), BidDoubleHaus)
	require.NoError(t, br.Place(3, BidDoubleHaus))

	contract, err := br.Resolve()
	require.NoError(t, err)
	assert.Equal(t, ContractDoubleHaus, contract.Kind)
	assert.Equal(t, Seat(3), contract.Seat)
	assert.Equal(t, Team2, contract.Team())
	assert.True(t, contract.NeedsTrump())
	assert.True(t, contract.NeedsExchange())
}

func TestResolveIncompleteRound(t *testing.T) {
	br := NewBiddingRound(0)
	require.NoError(t, br.Place(1, BidAceHaus))
	_, err := br.Resolve()
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestAceHausRouting(t *testing.T) {
	contract, err := ContractFromBid(1, BidAceHaus)
	require.NoError(t, err)
	assert.False(t, contract.NeedsTrump())
	assert.True(t, contract.NeedsExchange())
	assert.Equal(t, BidAceHaus, contract.Bid())

	_, err = ContractFromBid(1, BidPass)
	assert.ErrorIs(t, err, ErrIllegalBid)
}

func TestBidText(t *testing.T) {
	assert.Equal(t, "Pass", BidPass.String())
	assert.Equal(t, "6", BidSix.String())
	assert.Equal(t, "Aces", BidAceHaus.String())
	assert.Equal(t, "D-Haus", BidDoubleHaus.String())

	for b := BidPass; b <= BidDoubleHaus; b++ {
		data, err := json.Marshal(b)
		require.NoError(t, err)
		var back Bid
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, b, back)
	}

	parsed, err := ParseBid("Aces")
	require.NoError(t, err)
	assert.Equal(t, BidAceHaus, parsed)

	_, err = ParseBid("8")
	assert.ErrorIs(t, err, ErrIllegalBid)

	n, err := NumberBid(5)
	require.NoError(t, err)
	assert.Equal(t, BidFive, n)
	assert.Equal(t, 5, n.Tricks())
	assert.Equal(t, 0, BidHaus.Tricks())
}
