package rules

import (
	"sort"
	"strings"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
)

// LegalityResult represents the result of a legality check.
type LegalityResult struct {
	Legal   bool
	Reason  string
	Details map[string]string
}

// String renders the reason followed by the details in key order, e.g.
// "must follow the led suit (card=hearts-Q-1, led=spades)".
func (r LegalityResult) String() string {
	if r.Legal {
		return "legal"
	}
	if len(r.Details) == 0 {
		return r.Reason
	}
	keys := make([]string, 0, len(r.Details))
	for k := range r.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+r.Details[k])
	}
	return r.Reason + " (" + strings.Join(parts, ", ") + ")"
}

func legal() LegalityResult {
	return LegalityResult{Legal: true}
}

func illegal(reason string, details map[string]string) LegalityResult {
	return LegalityResult{Legal: false, Reason: reason, Details: details}
}

// follows reports whether card answers a lead of led. On a trump lead the
// left bar follows; otherwise only the printed suit does.
func follows(card cards.Card, led cards.Suit, trump *cards.Suit) bool {
	if trump != nil && led == *trump {
		return card.Suit == *trump || IsLeftBar(card, trump)
	}
	return card.Suit == led
}

// LegalCards returns the subset of hand that may be played. led is nil when
// the seat is leading; trump is nil for AceHaus.
func LegalCards(hand []cards.Card, led *cards.Suit, trump *cards.Suit) []cards.Card {
	if led == nil {
		return cards.Clone(hand)
	}
	matching := make([]cards.Card, 0, len(hand))
	for _, c := range hand {
		if follows(c, *led, trump) {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return cards.Clone(hand)
	}
	return matching
}

// CheckPlay validates a single card against the hand and the current lead.
func CheckPlay(card cards.Card, hand []cards.Card, led *cards.Suit, trump *cards.Suit) LegalityResult {
	if !cards.Contains(hand, card) {
		return illegal("card not in hand", map[string]string{"card": card.String()})
	}
	if led == nil {
		return legal()
	}
	if cards.Contains(LegalCards(hand, led, trump), card) {
		return legal()
	}
	return illegal("must follow the led suit", map[string]string{
		"card": card.String(),
		"led":  led.String(),
	})
}
