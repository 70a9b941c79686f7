package cards

import (
	"math/rand"
	"sort"
)

const (
	// Copies is the number of copies of each face in the double deck.
	Copies = 2
	// DeckSize is the total number of cards in the double deck.
	DeckSize = 32
	// HandSize is the number of cards dealt to each seat.
	HandSize = 8
)

// NewDeck returns the 32-card double deck in canonical order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for cp := 0; cp < Copies; cp++ {
		for _, s := range Suits {
			for _, r := range Ranks {
				deck = append(deck, Card{Suit: s, Rank: r, Copy: cp})
			}
		}
	}
	return deck
}

// Shuffle permutes the deck in place using rng.
func Shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

var displaySuitOrder = map[Suit]int{
	Spades:   0,
	Clubs:    1,
	Hearts:   2,
	Diamonds: 3,
}

// SortHand orders a hand for display: spades, clubs, hearts, diamonds and
// within a suit A, K, Q, J. Copy 0 sorts before copy 1.
func SortHand(hand []Card) {
	sort.SliceStable(hand, func(i, j int) bool {
		a, b := hand[i], hand[j]
		if a.Suit != b.Suit {
			return displaySuitOrder[a.Suit] < displaySuitOrder[b.Suit]
		}
		if a.Rank != b.Rank {
			return a.Rank > b.Rank
		}
		return a.Copy < b.Copy
	})
}

// IndexOf returns the position of the exact card (including copy) in cards.
func IndexOf(cards []Card, target Card) (int, bool) {
	for i, c := range cards {
		if c == target {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether the exact card is present.
func Contains(cards []Card, target Card) bool {
	_, ok := IndexOf(cards, target)
	return ok
}

// Remove returns a copy of hand without the given cards. Cards that are not
// present are ignored.
func Remove(hand []Card, remove ...Card) []Card {
	out := append([]Card(nil), hand...)
	for _, rc := range remove {
		if idx, ok := IndexOf(out, rc); ok {
			out = append(out[:idx], out[idx+1:]...)
		}
	}
	return out
}

// Clone returns an independent copy of cards, preserving nil.
func Clone(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	return append(make([]Card, 0, len(cards)), cards...)
}
