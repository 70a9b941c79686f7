package game

import (
	"fmt"
	"math/rand"

	"github.com/moderncaliberwebdev/haus/internal/game/cards"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// Orchestrator drives the round state machine. It holds no game state of
// its own; each call to Apply works on a private copy of the input.
// The rng is used to shuffle every new deck and is not safe for concurrent
// use, so each game gets its own Orchestrator.
type Orchestrator struct {
	rng       *rand.Rand
	threshold int
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithWinThreshold sets the score that ends the game.
func WithWinThreshold(threshold int) OrchestratorOption {
	return func(o *Orchestrator) {
		if threshold > 0 {
			o.threshold = threshold
		}
	}
}

// NewOrchestrator creates an orchestrator shuffling with rng.
func NewOrchestrator(rng *rand.Rand, opts ...OrchestratorOption) *Orchestrator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	o := &Orchestrator{rng: rng, threshold: rules.DefaultWinThreshold}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewGame creates a game in the Dealing phase of round 1 with a freshly
// shuffled deck.
func (o *Orchestrator) NewGame(id string, dealer rules.Seat) (*GameState, []rules.Event, error) {
	if !dealer.Valid() {
		return nil, nil, fmt.Errorf("%w: dealer %d", ErrUnknownSeat, int(dealer))
	}
	state := &GameState{
		ID:          id,
		Threshold:   o.threshold,
		Dealer:      dealer,
		RoundNumber: 1,
	}
	state.Round = newRound(1, dealer, o.shuffledDeck())
	events := []rules.Event{o.setPhase(state, &DealingPhase{Round: 1})}
	return state, events, nil
}

// Apply validates cmd against state and returns the resulting state and
// events. On error the returned state is the unchanged input.
func (o *Orchestrator) Apply(state *GameState, cmd Command) (*GameState, []rules.Event, error) {
	if state == nil || state.Phase == nil || state.Round == nil {
		return state, nil, fmt.Errorf("%w: game not started", ErrInvalidPhase)
	}
	next := state.Clone()

	var (
		events []rules.Event
		err    error
	)
	switch c := cmd.(type) {
	case DealCards:
		events, err = o.dealCards(next)
	case PlaceBid:
		events, err = o.placeBid(next, c)
	case SelectTrump:
		events, err = o.selectTrump(next, c)
	case SubmitExchange:
		events, err = o.submitExchange(next, c)
	case PlayCard:
		events, err = o.playCard(next, c)
	case AdvanceRound:
		events, err = o.advanceRound(next)
	default:
		err = fmt.Errorf("%w: unknown command %T", ErrInvalidPhase, cmd)
	}
	if err != nil {
		return state, nil, err
	}
	return next, events, nil
}

func (o *Orchestrator) shuffledDeck() []cards.Card {
	deck := cards.NewDeck()
	cards.Shuffle(deck, o.rng)
	return deck
}

func (o *Orchestrator) setPhase(state *GameState, phase PhaseState) rules.Event {
	state.Phase = phase
	evt := rules.NewEvent(rules.EventPhaseChanged, rules.NoSeat)
	evt.Phase = phase.Phase()
	return evt
}

func wrongPhase(state *GameState, cmd Command) error {
	return fmt.Errorf("%w: %s during %s", ErrInvalidPhase, cmd.CommandName(), state.CurrentPhase())
}

func checkSeat(seat rules.Seat) error {
	if !seat.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSeat, int(seat))
	}
	return nil
}

func (o *Orchestrator) dealCards(state *GameState) ([]rules.Event, error) {
	if _, ok := state.Phase.(*DealingPhase); !ok {
		return nil, wrongPhase(state, DealCards{})
	}
	round := state.Round
	if len(round.Deck) != cards.DeckSize {
		return nil, fmt.Errorf("%w: deck has %d cards", ErrInvalidPhase, len(round.Deck))
	}

	var hands rules.Hands
	for i, seat := range rules.DealOrder(round.Dealer, cards.HandSize) {
		hands[seat] = append(hands[seat], round.Deck[i])
	}
	round.Deck = nil

	events := make([]rules.Event, 0, rules.NumSeats+1)
	for seat := rules.Seat(0); seat < rules.NumSeats; seat++ {
		cards.SortHand(hands[seat])
		evt := rules.NewEvent(rules.EventHandDealt, seat)
		evt.Recipients = []rules.Seat{seat}
		evt.Cards = cards.Clone(hands[seat])
		events = append(events, evt)
	}
	round.Hands = hands

	events = append(events, o.setPhase(state, &BiddingPhase{Bidding: rules.NewBiddingRound(round.Dealer)}))
	return events, nil
}

func (o *Orchestrator) placeBid(state *GameState, cmd PlaceBid) ([]rules.Event, error) {
	if err := checkSeat(cmd.Seat); err != nil {
		return nil, err
	}
	phase, ok := state.Phase.(*BiddingPhase)
	if !ok {
		return nil, wrongPhase(state, cmd)
	}
	if err := phase.Bidding.Place(cmd.Seat, cmd.Bid); err != nil {
		return nil, err
	}

	placed := rules.NewEvent(rules.EventBidPlaced, cmd.Seat)
	placed.Bid = cmd.Bid
	events := []rules.Event{placed}
	if !phase.Bidding.Complete() {
		return events, nil
	}

	contract, err := phase.Bidding.Resolve()
	if err != nil {
		return nil, err
	}
	round := state.Round
	round.Bids = phase.Bidding.Bids
	round.Contract = &contract

	established := rules.NewEvent(rules.EventContractEstablished, contract.Seat)
	established.Contract = &contract
	established.Team = contract.Team()
	established.Bid = contract.Bid()
	events = append(events, established)

	if contract.NeedsTrump() {
		events = append(events, o.setPhase(state, &TrumpSelectionPhase{Chooser: contract.Seat}))
	} else {
		events = append(events, o.setPhase(state, &ExchangePhase{Exchange: rules.NewExchange(contract.Seat)}))
	}
	return events, nil
}

func (o *Orchestrator) selectTrump(state *GameState, cmd SelectTrump) ([]rules.Event, error) {
	if err := checkSeat(cmd.Seat); err != nil {
		return nil, err
	}
	phase, ok := state.Phase.(*TrumpSelectionPhase)
	if !ok {
		return nil, wrongPhase(state, cmd)
	}
	if cmd.Seat != phase.Chooser {
		return nil, fmt.Errorf("%w: %s names trump, got %s", ErrNotYourTurn, phase.Chooser, cmd.Seat)
	}
	if !cmd.Suit.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSuit, int(cmd.Suit))
	}

	round := state.Round
	trump := cmd.Suit
	round.Trump = &trump

	selected := rules.NewEvent(rules.EventTrumpSelected, cmd.Seat)
	selected.Trump = &trump
	selected.Description = rules.DescribeTrump(trump).Color
	events := []rules.Event{selected}

	if round.Contract.NeedsExchange() {
		events = append(events, o.setPhase(state, &ExchangePhase{Exchange: rules.NewExchange(round.Contract.Seat)}))
		return events, nil
	}
	return append(events, o.startTricks(state)), nil
}

func (o *Orchestrator) submitExchange(state *GameState, cmd SubmitExchange) ([]rules.Event, error) {
	if err := checkSeat(cmd.Seat); err != nil {
		return nil, err
	}
	phase, ok := state.Phase.(*ExchangePhase)
	if !ok {
		return nil, wrongPhase(state, cmd)
	}
	round := state.Round
	if err := phase.Exchange.Submit(cmd.Seat, cmd.Cards, round.Hands[cmd.Seat]); err != nil {
		return nil, err
	}

	events := []rules.Event{rules.NewEvent(rules.EventExchangeSubmitted, cmd.Seat)}
	if !phase.Exchange.Ready() {
		return events, nil
	}

	hands, sittingOut, err := phase.Exchange.Apply(round.Hands)
	if err != nil {
		return nil, err
	}
	round.Hands = hands
	round.SittingOut = sittingOut

	completed := rules.NewEvent(rules.EventExchangeCompleted, sittingOut)
	completed.Description = fmt.Sprintf("%s sits out", sittingOut)
	events = append(events, completed)
	for _, seat := range []rules.Seat{phase.Exchange.Winner, phase.Exchange.Partner} {
		evt := rules.NewEvent(rules.EventHandDealt, seat)
		evt.Recipients = []rules.Seat{seat}
		evt.Cards = cards.Clone(hands[seat])
		events = append(events, evt)
	}
	return append(events, o.startTricks(state)), nil
}

// startTricks opens trick 1, led by the contract holder.
func (o *Orchestrator) startTricks(state *GameState) rules.Event {
	round := state.Round
	return o.setPhase(state, &TrickPhase{
		Number: 1,
		Trick:  rules.NewTrick(round.Contract.Seat, round.SittingOut),
	})
}

func (o *Orchestrator) playCard(state *GameState, cmd PlayCard) ([]rules.Event, error) {
	if err := checkSeat(cmd.Seat); err != nil {
		return nil, err
	}
	phase, ok := state.Phase.(*TrickPhase)
	if !ok {
		return nil, wrongPhase(state, cmd)
	}
	round := state.Round
	hand, err := phase.Trick.Play(cmd.Seat, cmd.Card, round.Hands[cmd.Seat], round.Trump)
	if err != nil {
		return nil, err
	}
	round.Hands[cmd.Seat] = hand

	card := cmd.Card
	played := rules.NewEvent(rules.EventCardPlayed, cmd.Seat)
	played.Card = &card
	events := []rules.Event{played}
	if phase.Trick.State() != rules.TrickComplete {
		return events, nil
	}

	trick := phase.Trick
	round.Tricks = append(round.Tricks, trick)
	completed := rules.NewEvent(rules.EventTrickCompleted, trick.Winner)
	completed.Team = trick.WinnerTeam
	events = append(events, completed)

	if len(round.Tricks) < rules.TricksPerRound {
		events = append(events, o.setPhase(state, &TrickPhase{
			Number: phase.Number + 1,
			Trick:  rules.NewTrick(trick.Winner, round.SittingOut),
		}))
		return events, nil
	}

	events = append(events, rules.NewEvent(rules.EventRoundReadyToScore, rules.NoSeat))
	return append(events, o.scoreRound(state)...), nil
}

// scoreRound applies the round result to the cumulative scores and moves
// to Scoring, or straight to GameOver once a team reaches the threshold.
func (o *Orchestrator) scoreRound(state *GameState) []rules.Event {
	round := state.Round
	result := rules.ScoreRound(*round.Contract, rules.CountTricks(round.Tricks))
	result.Round = round.Number
	state.Scores[rules.Team1] += result.Points[rules.Team1]
	state.Scores[rules.Team2] += result.Points[rules.Team2]
	state.History = append(state.History, result)

	scored := rules.NewEvent(rules.EventRoundScored, round.Contract.Seat)
	scored.Result = &result
	scored.Team = result.Winner
	events := []rules.Event{scored}

	threshold := state.Threshold
	if threshold <= 0 {
		threshold = rules.DefaultWinThreshold
	}
	if winner, over := rules.GameWinner(state.Scores, threshold); over {
		events = append(events, o.setPhase(state, &GameOverPhase{Winner: winner, Result: result}))
		gameOver := rules.NewEvent(rules.EventGameOver, rules.NoSeat)
		gameOver.Team = winner
		gameOver.Result = &result
		return append(events, gameOver)
	}
	return append(events, o.setPhase(state, &ScoringPhase{Result: result}))
}

func (o *Orchestrator) advanceRound(state *GameState) ([]rules.Event, error) {
	if _, ok := state.Phase.(*ScoringPhase); !ok {
		if state.Over() {
			return nil, fmt.Errorf("%w: game is over", ErrInvalidPhase)
		}
		return nil, wrongPhase(state, AdvanceRound{})
	}
	state.Dealer = state.Dealer.Next()
	state.RoundNumber++
	state.Round = newRound(state.RoundNumber, state.Dealer, o.shuffledDeck())
	return []rules.Event{o.setPhase(state, &DealingPhase{Round: state.RoundNumber})}, nil
}
