package cards

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit is one of the four French suits. The zero value is not a suit.
type Suit int

const (
	Hearts Suit = iota + 1
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in canonical order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

var suitNames = map[Suit]string{
	Hearts:   "hearts",
	Diamonds: "diamonds",
	Clubs:    "clubs",
	Spades:   "spades",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SUIT_%d", int(s))
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	_, ok := suitNames[s]
	return ok
}

// DisplayName returns the capitalized suit name.
func (s Suit) DisplayName() string {
	name := s.String()
	if !s.Valid() {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// IsRed reports whether the suit is hearts or diamonds.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// ColorPartner returns the other suit of the same color.
func ColorPartner(s Suit) Suit {
	switch s {
	case Hearts:
		return Diamonds
	case Diamonds:
		return Hearts
	case Clubs:
		return Spades
	default:
		return Clubs
	}
}

// ParseSuit accepts the lower-case suit name.
func ParseSuit(value string) (Suit, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for s, name := range suitNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", value)
}

func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rank is a card rank. Only the four court-and-ace ranks exist in the deck.
type Rank int

const (
	Jack Rank = iota + 1
	Queen
	King
	Ace
)

// Ranks lists every rank from lowest to highest.
var Ranks = []Rank{Jack, Queen, King, Ace}

var rankNames = map[Rank]string{
	Jack:  "J",
	Queen: "Q",
	King:  "K",
	Ace:   "A",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RANK_%d", int(r))
}

// Valid reports whether r is one of the deck ranks.
func (r Rank) Valid() bool {
	_, ok := rankNames[r]
	return ok
}

// Value is the rank's strength within its suit: J=1, Q=2, K=3, A=4.
func (r Rank) Value() int {
	if !r.Valid() {
		return 0
	}
	return int(r)
}

// ParseRank accepts J, Q, K or A.
func ParseRank(value string) (Rank, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	for r, name := range rankNames {
		if name == v {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", value)
}

func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Card is one physical card. Two cards with the same suit and rank but a
// different Copy are distinct objects of equal strength.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
	Copy int  `json:"copy"`
}

// String renders the card as suit-rank-copy, e.g. "hearts-J-0".
func (c Card) String() string {
	return fmt.Sprintf("%s-%s-%d", c.Suit, c.Rank, c.Copy)
}

// SameFace reports whether two cards share suit and rank, ignoring the copy.
func (c Card) SameFace(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

// Valid reports whether the card exists in the double deck.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid() && (c.Copy == 0 || c.Copy == 1)
}

// ParseCard parses the suit-rank-copy form produced by Card.String.
func ParseCard(value string) (Card, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return Card{}, fmt.Errorf("malformed card %q", value)
	}
	suit, err := ParseSuit(parts[0])
	if err != nil {
		return Card{}, err
	}
	rank, err := ParseRank(parts[1])
	if err != nil {
		return Card{}, err
	}
	cp, err := strconv.Atoi(parts[2])
	if err != nil || (cp != 0 && cp != 1) {
		return Card{}, fmt.Errorf("malformed card copy in %q", value)
	}
	return Card{Suit: suit, Rank: rank, Copy: cp}, nil
}
