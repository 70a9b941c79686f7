package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
)

func c(s cards.Suit, r cards.Rank, cp int) cards.Card {
	return cards.Card{Suit: s, Rank: r, Copy: cp}
}

func suit(s cards.Suit) *cards.Suit {
	return &s
}

func TestLegalCards(t *testing.T) {
	hand := []cards.Card{
		c(cards.Hearts, cards.Ace, 0),
		c(cards.Hearts, cards.Jack, 0),
		c(cards.Clubs, cards.Jack, 0),
		c(cards.Diamonds, cards.King, 0),
	}

	t.Run("leading allows anything", func(t *testing.T) {
		assert.ElementsMatch(t, hand, LegalCards(hand, nil, suit(cards.Spades)))
	})

	t.Run("must follow exact suit without trump", func(t *testing.T) {
		got := LegalCards(hand, suit(cards.Hearts), nil)
		assert.ElementsMatch(t, []cards.Card{hand[0], hand[1]}, got)
	})

	t.Run("void without trump allows anything", func(t *testing.T) {
		assert.ElementsMatch(t, hand, LegalCards(hand, suit(cards.Spades), nil))
	})

	t.Run("trump lead is followed by left bar", func(t *testing.T) {
		got := LegalCards(hand, suit(cards.Spades), suit(cards.Spades))
		assert.Equal(t, []cards.Card{hand[2]}, got)
	})

	t.Run("trump lead with trump suit and left bar", func(t *testing.T) {
		got := LegalCards(hand, suit(cards.Diamonds), suit(cards.Diamonds))
		assert.ElementsMatch(t, []cards.Card{hand[1], hand[3]}, got)
	})

	t.Run("non trump lead requires printed suit", func(t *testing.T) {
		got := LegalCards(hand, suit(cards.Hearts), suit(cards.Diamonds))
		assert.ElementsMatch(t, []cards.Card{hand[0], hand[1]}, got)
	})

	t.Run("void in led suit may trump", func(t *testing.T) {
		got := LegalCards(hand, suit(cards.Spades), suit(cards.Hearts))
		assert.ElementsMatch(t, hand, got)
	})
}

func TestCheckPlay(t *testing.T) {
	hand := []cards.Card{c(cards.Spades, cards.Ace, 0), c(cards.Hearts, cards.Queen, 1)}

	res := CheckPlay(c(cards.Spades, cards.Ace, 1), hand, nil, nil)
	assert.False(t, res.Legal, "other copy is not owned")
	assert.Equal(t, "card not in hand", res.Reason)

	res = CheckPlay(hand[1], hand, suit(cards.Spades), suit(cards.Clubs))
	assert.False(t, res.Legal)
	assert.Equal(t, "must follow the led suit", res.Reason)
	assert.Equal(t, "spades", res.Details["led"])
	assert.Equal(t, "must follow the led suit (card="+hand[1].String()+", led=spades)", res.String())

	assert.True(t, CheckPlay(hand[0], hand, suit(cards.Spades), suit(cards.Clubs)).Legal)
	assert.True(t, CheckPlay(hand[1], hand, nil, suit(cards.Clubs)).Legal)
}
