package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// CheckCardConservation verifies that the undealt deck, the hands, the
// trick in progress and the completed tricks together hold every card of
// the deck exactly once.
func CheckCardConservation(state *GameState) error {
	if state == nil || state.Round == nil {
		return fmt.Errorf("no round in progress")
	}
	round := state.Round
	seen := make(map[cards.Card]int, cards.DeckSize)
	total := 0
	add := func(c cards.Card) {
		seen[c]++
		total++
	}

	for _, c := range round.Deck {
		add(c)
	}
	for _, hand := range round.Hands {
		for _, c := range hand {
			add(c)
		}
	}
	for _, t := range round.Tricks {
		for _, p := range t.Plays {
			add(p.Card)
		}
	}
	if p, ok := state.Phase.(*TrickPhase); ok && p.Trick != nil && p.Trick.Winner == rules.NoSeat {
		for _, play := range p.Trick.Plays {
			add(play.Card)
		}
	}

	var problems []string
	for _, c := range cards.NewDeck() {
		switch n := seen[c]; n {
		case 1:
		case 0:
			problems = append(problems, fmt.Sprintf("%s missing", c))
		default:
			problems = append(problems, fmt.Sprintf("%s seen %d times", c, n))
		}
		delete(seen, c)
	}
	for c := range seen {
		problems = append(problems, fmt.Sprintf("%s is not a deck card", c))
	}
	if total != cards.DeckSize && len(problems) == 0 {
		problems = append(problems, fmt.Sprintf("counted %d cards", total))
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("card conservation violated: %s", strings.Join(problems, ", "))
	}
	return nil
}
