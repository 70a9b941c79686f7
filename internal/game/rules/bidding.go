package rules

import (
	"fmt"
	"strings"
)

// Bid is one bidding action. The numeric value of the constant defines the
// total order: Pass < 4 < 5 < 6 < 7 < AceHaus < Haus < DoubleHaus.
type Bid int

const (
	BidPass Bid = iota
	BidFour
	BidFive
	BidSix
	BidSeven
	BidAceHaus
	BidHaus
	BidDoubleHaus
)

// baseBids are the bids open to every seat, lowest first.
var baseBids = []Bid{BidPass, BidFour, BidFive, BidSix, BidSeven, BidAceHaus, BidHaus}

var bidWireNames = map[Bid]string{
	BidPass:       "pass",
	BidFour:       "4",
	BidFive:       "5",
	BidSix:        "6",
	BidSeven:      "7",
	BidAceHaus:    "ace-haus",
	BidHaus:       "haus",
	BidDoubleHaus: "double-haus",
}

var bidDisplayNames = map[Bid]string{
	BidPass:       "Pass",
	BidFour:       "4",
	BidFive:       "5",
	BidSix:        "6",
	BidSeven:      "7",
	BidAceHaus:    "Aces",
	BidHaus:       "Haus",
	BidDoubleHaus: "D-Haus",
}

// String returns the table display text ("Pass", "4", "Aces", "D-Haus", ...).
func (b Bid) String() string {
	if name, ok := bidDisplayNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BID_%d", int(b))
}

// Valid reports whether b is a known bid.
func (b Bid) Valid() bool {
	_, ok := bidWireNames[b]
	return ok
}

// Tricks returns the trick target of a numeric bid, or 0.
func (b Bid) Tricks() int {
	if b >= BidFour && b <= BidSeven {
		return int(b-BidFour) + 4
	}
	return 0
}

// NumberBid returns the numeric bid for n tricks (4..7).
func NumberBid(n int) (Bid, error) {
	if n < 4 || n > 7 {
		return BidPass, fmt.Errorf("%w: no numeric bid for %d tricks", ErrIllegalBid, n)
	}
	return BidFour + Bid(n-4), nil
}

// ParseBid accepts the wire names plus the display aliases.
func ParseBid(value string) (Bid, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "aces", "acehaus", "ace_haus":
		return BidAceHaus, nil
	case "d-haus", "doublehaus", "double_haus":
		return BidDoubleHaus, nil
	}
	for b, name := range bidWireNames {
		if name == v {
			return b, nil
		}
	}
	return BidPass, fmt.Errorf("%w: unknown bid %q", ErrIllegalBid, value)
}

func (b Bid) MarshalText() ([]byte, error) {
	name, ok := bidWireNames[b]
	if !ok {
		return nil, fmt.Errorf("invalid bid %d", int(b))
	}
	return []byte(name), nil
}

func (b *Bid) UnmarshalText(text []byte) error {
	parsed, err := ParseBid(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// LegalBids lists the bids available to a seat. Pass is always legal; every
// other base bid must be strictly higher than currentHighest. DoubleHaus is
// only offered to the dealer after Haus has been bid.
func LegalBids(currentHighest Bid, isDealer, hausAlreadyBid bool) []Bid {
	candidates := append([]Bid(nil), baseBids...)
	if isDealer && hausAlreadyBid {
		candidates = append(candidates, BidDoubleHaus)
	}
	legal := make([]Bid, 0, len(candidates))
	for _, b := range candidates {
		if b == BidPass || b > currentHighest {
			legal = append(legal, b)
		}
	}
	return legal
}

// BidEntry records one seat's bid.
type BidEntry struct {
	Seat Seat `json:"seat"`
	Bid  Bid  `json:"bid"`
}

// BiddingRound is the ordered list of bids of one round, starting left of
// the dealer.
type BiddingRound struct {
	Dealer Seat       `json:"dealer"`
	Bids   []BidEntry `json:"bids"`
}

// NewBiddingRound starts an empty bidding round.
func NewBiddingRound(dealer Seat) *BiddingRound {
	return &BiddingRound{Dealer: dealer, Bids: make([]BidEntry, 0, NumSeats)}
}

// Clone returns a deep copy.
func (br *BiddingRound) Clone() *BiddingRound {
	if br == nil {
		return nil
	}
	clone := &BiddingRound{Dealer: br.Dealer}
	if br.Bids != nil {
		clone.Bids = append(make([]BidEntry, 0, NumSeats), br.Bids...)
	}
	return clone
}

// Complete reports whether all four seats have bid.
func (br *BiddingRound) Complete() bool {
	return len(br.Bids) >= NumSeats
}

// NextBidder returns the seat whose turn it is, or NoSeat once complete.
func (br *BiddingRound) NextBidder() Seat {
	if br.Complete() {
		return NoSeat
	}
	return Seat((int(br.Dealer) + 1 + len(br.Bids)) % NumSeats)
}

// Highest returns the highest non-pass bid so far.
func (br *BiddingRound) Highest() (BidEntry, bool) {
	var best BidEntry
	found := false
	for _, e := range br.Bids {
		if e.Bid == BidPass {
			continue
		}
		if !found || e.Bid > best.Bid {
			best, found = e, true
		}
	}
	return best, found
}

// HausBid reports whether Haus or DoubleHaus has been bid this round.
func (br *BiddingRound) HausBid() bool {
	for _, e := range br.Bids {
		if e.Bid == BidHaus || e.Bid == BidDoubleHaus {
			return true
		}
	}
	return false
}

// LegalBidsFor returns the legal bids for seat, or nil when it is not the
// seat's turn.
func (br *BiddingRound) LegalBidsFor(seat Seat) []Bid {
	if seat != br.NextBidder() {
		return nil
	}
	highest := BidPass
	if h, ok := br.Highest(); ok {
		highest = h.Bid
	}
	return LegalBids(highest, seat == br.Dealer, br.HausBid())
}

// Place records a bid after checking turn order and legality.
func (br *BiddingRound) Place(seat Seat, bid Bid) error {
	if !seat.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSeat, int(seat))
	}
	if br.Complete() {
		return fmt.Errorf("%w: bidding is complete", ErrInvalidPhase)
	}
	if next := br.NextBidder(); seat != next {
		return fmt.Errorf("%w: %s to bid, got %s", ErrNotYourTurn, next, seat)
	}
	for _, legal := range br.LegalBidsFor(seat) {
		if legal == bid {
			br.Bids = append(br.Bids, BidEntry{Seat: seat, Bid: bid})
			return nil
		}
	}
	return fmt.Errorf("%w: %s may not bid %s", ErrIllegalBid, seat, bid)
}

// Resolve turns a complete bidding round into a contract. When every seat
// passed the dealer is stuck with a forced bid of 4.
func (br *BiddingRound) Resolve() (Contract, error) {
	if !br.Complete() {
		return Contract{}, fmt.Errorf("%w: bidding still open", ErrInvalidPhase)
	}
	winner, ok := br.Highest()
	if !ok {
		return Contract{Kind: ContractNumber, Tricks: 4, Seat: br.Dealer, Forced: true}, nil
	}
	return ContractFromBid(winner.Seat, winner.Bid)
}

// ContractKind distinguishes numeric and special contracts.
type ContractKind int

const (
	ContractNumber ContractKind = iota
	ContractAceHaus
	ContractHaus
	ContractDoubleHaus
)

var contractKindNames = map[ContractKind]string{
	ContractNumber:     "NUMBER",
	ContractAceHaus:    "ACE_HAUS",
	ContractHaus:       "HAUS",
	ContractDoubleHaus: "DOUBLE_HAUS",
}

func (k ContractKind) String() string {
	if name, ok := contractKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CONTRACT_%d", int(k))
}

func (k ContractKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ContractKind) UnmarshalText(text []byte) error {
	for kind, name := range contractKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown contract kind %q", string(text))
}

// Contract is the resolved outcome of bidding.
type Contract struct {
	Kind   ContractKind `json:"kind"`
	Tricks int          `json:"tricks,omitempty"`
	Seat   Seat         `json:"seat"`
	Forced bool         `json:"forced,omitempty"`
}

// ContractFromBid builds the contract won by seat with bid.
func ContractFromBid(seat Seat, bid Bid) (Contract, error) {
	switch bid {
	case BidFour, BidFive, BidSix, BidSeven:
		return Contract{Kind: ContractNumber, Tricks: bid.Tricks(), Seat: seat}, nil
	case BidAceHaus:
		return Contract{Kind: ContractAceHaus, Seat: seat}, nil
	case BidHaus:
		return Contract{Kind: ContractHaus, Seat: seat}, nil
	case BidDoubleHaus:
		return Contract{Kind: ContractDoubleHaus, Seat: seat}, nil
	default:
		return Contract{}, fmt.Errorf("%w: %s cannot win a contract", ErrIllegalBid, bid)
	}
}

// Team returns the bidding team.
func (c Contract) Team() Team {
	return c.Seat.Team()
}

// Bid returns the bid that produced the contract.
func (c Contract) Bid() Bid {
	switch c.Kind {
	case ContractAceHaus:
		return BidAceHaus
	case ContractHaus:
		return BidHaus
	case ContractDoubleHaus:
		return BidDoubleHaus
	default:
		b, err := NumberBid(c.Tricks)
		if err != nil {
			return BidPass
		}
		return b
	}
}

// NeedsTrump reports whether a trump suit is chosen. AceHaus plays without.
func (c Contract) NeedsTrump() bool {
	return c.Kind != ContractAceHaus
}

// NeedsExchange reports whether the special-contract card exchange happens.
func (c Contract) NeedsExchange() bool {
	return c.Kind != ContractNumber
}

// AllOrNothing reports whether the contract requires every trick.
func (c Contract) AllOrNothing() bool {
	return c.Kind != ContractNumber
}

func (c Contract) String() string {
	s := fmt.Sprintf("%s by %s", c.Bid(), c.Seat)
	if c.Forced {
		s += " (stuck dealer)"
	}
	return s
}
