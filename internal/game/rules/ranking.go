package rules

import (
	"fmt"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
)

// Power bands. Only their ordering matters.
const (
	RightBarPower = 1000
	LeftBarPower  = 900
	TrumpBand     = 100
)

// RightBar is the Jack of the trump suit.
func RightBar(trump cards.Suit) cards.Card {
	return cards.Card{Suit: trump, Rank: cards.Jack}
}

// LeftBar is the Jack of the trump suit's same-color partner.
func LeftBar(trump cards.Suit) cards.Card {
	return cards.Card{Suit: cards.ColorPartner(trump), Rank: cards.Jack}
}

// IsRightBar reports whether card is either copy of the right bar.
func IsRightBar(card cards.Card, trump *cards.Suit) bool {
	return trump != nil && card.SameFace(RightBar(*trump))
}

// IsLeftBar reports whether card is either copy of the left bar.
func IsLeftBar(card cards.Card, trump *cards.Suit) bool {
	return trump != nil && card.SameFace(LeftBar(*trump))
}

// IsTrump reports whether card counts as trump, including the left bar.
func IsTrump(card cards.Card, trump *cards.Suit) bool {
	if trump == nil {
		return false
	}
	return card.Suit == *trump || IsLeftBar(card, trump)
}

// Power computes the strength of card within a trick. Higher wins; zero
// can never win. trump is nil for AceHaus.
func Power(card cards.Card, trump *cards.Suit, led cards.Suit) int {
	if trump != nil {
		switch {
		case IsRightBar(card, trump):
			return RightBarPower
		case IsLeftBar(card, trump):
			return LeftBarPower
		case card.Suit == *trump:
			return TrumpBand + card.Rank.Value()
		}
	}
	if card.Suit == led {
		return card.Rank.Value()
	}
	return 0
}

// Play is one card played by one seat.
type Play struct {
	Seat Seat       `json:"seat"`
	Card cards.Card `json:"card"`
}

// WinningPlay returns the index of the strongest play. Equal power goes to
// the earliest play. The led suit is the printed suit of the first card.
func WinningPlay(plays []Play, trump *cards.Suit) (int, error) {
	if len(plays) == 0 {
		return -1, fmt.Errorf("cannot determine winner of empty trick")
	}
	led := plays[0].Card.Suit
	best := 0
	bestPower := Power(plays[0].Card, trump, led)
	for i := 1; i < len(plays); i++ {
		if p := Power(plays[i].Card, trump, led); p > bestPower {
			best, bestPower = i, p
		}
	}
	return best, nil
}

// TrumpInfo describes a selected trump for display.
type TrumpInfo struct {
	Suit     cards.Suit `json:"suit"`
	RightBar cards.Card `json:"right_bar"`
	LeftBar  cards.Card `json:"left_bar"`
	Color    string     `json:"color"`
}

// DescribeTrump returns the bars and color description for a trump suit.
func DescribeTrump(trump cards.Suit) TrumpInfo {
	color := "Black (Clubs/Spades)"
	if trump.IsRed() {
		color = "Red (Hearts/Diamonds)"
	}
	return TrumpInfo{
		Suit:     trump,
		RightBar: RightBar(trump),
		LeftBar:  LeftBar(trump),
		Color:    color,
	}
}
