package rules

import (
	"fmt"
)

// Phase represents the broad phases of a Haus round.
type Phase int

const (
	PhaseDealing Phase = iota
	PhaseBidding
	PhaseTrumpSelection
	PhaseExchange
	PhaseTrickPlaying
	PhaseScoring
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseDealing:        "DEALING",
	PhaseBidding:        "BIDDING",
	PhaseTrumpSelection: "TRUMP_SELECTION",
	PhaseExchange:       "EXCHANGE",
	PhaseTrickPlaying:   "TRICK_PLAYING",
	PhaseScoring:        "SCORING",
	PhaseGameOver:       "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

// NumSeats is the fixed table size.
const NumSeats = 4

// Seat is a table position, 0..3. Seats 0/2 form Team1, 1/3 form Team2.
type Seat int

// NoSeat marks an absent seat, e.g. nobody sitting out.
const NoSeat Seat = -1

// Valid reports whether the seat is one of the four table positions.
func (s Seat) Valid() bool {
	return s >= 0 && s < NumSeats
}

// Next returns the seat to the left (clockwise).
func (s Seat) Next() Seat {
	return (s + 1) % NumSeats
}

// Partner returns the seat across the table.
func (s Seat) Partner() Seat {
	return (s + 2) % NumSeats
}

// Team returns the team the seat plays for.
func (s Seat) Team() Team {
	return Team(s % 2)
}

func (s Seat) String() string {
	if s == NoSeat {
		return "none"
	}
	return fmt.Sprintf("seat%d", int(s))
}

// Team is one of the two partnerships.
type Team int

const (
	Team1 Team = iota
	Team2
)

var teamNames = map[Team]string{
	Team1: "TEAM1",
	Team2: "TEAM2",
}

func (t Team) String() string {
	if name, ok := teamNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TEAM_%d", int(t))
}

func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Team) UnmarshalText(text []byte) error {
	for team, name := range teamNames {
		if name == string(text) {
			*t = team
			return nil
		}
	}
	return fmt.Errorf("unknown team %q", string(text))
}

// Other returns the opposing team.
func (t Team) Other() Team {
	if t == Team1 {
		return Team2
	}
	return Team1
}

// Seats returns the two seats of the team.
func (t Team) Seats() [2]Seat {
	return [2]Seat{Seat(t), Seat(t) + 2}
}

// NextActiveSeat returns the next seat clockwise from s, skipping sittingOut.
// Pass NoSeat when all four seats are active.
func NextActiveSeat(s Seat, sittingOut Seat) Seat {
	next := s.Next()
	if next == sittingOut {
		next = next.Next()
	}
	return next
}

// ActiveSeatCount returns how many seats take part in trick play.
func ActiveSeatCount(sittingOut Seat) int {
	if sittingOut.Valid() {
		return NumSeats - 1
	}
	return NumSeats
}

// DealOrder returns the seat receiving each card when dealing one card at a
// time clockwise, starting left of the dealer.
func DealOrder(dealer Seat, cardsPerSeat int) []Seat {
	order := make([]Seat, 0, cardsPerSeat*NumSeats)
	seat := dealer.Next()
	for i := 0; i < cardsPerSeat*NumSeats; i++ {
		order = append(order, seat)
		seat = seat.Next()
	}
	return order
}
