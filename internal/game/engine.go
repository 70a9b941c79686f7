package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

// engineGame is one hosted game. Commands for the same game are serialized
// by mu; different games proceed independently.
type engineGame struct {
	mu    sync.Mutex
	orch  *Orchestrator
	state *GameState
}

// Engine hosts many independent games, publishes their events and
// optionally records replays.
type Engine struct {
	logger    *zap.Logger
	mu        sync.RWMutex
	games     map[string]*engineGame
	bus       *rules.EventBus
	recorder  *ReplayRecorder
	threshold int
	seed      int64
	started   int64
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithThreshold sets the winning score for games started afterwards.
func WithThreshold(threshold int) EngineOption {
	return func(e *Engine) {
		if threshold > 0 {
			e.threshold = threshold
		}
	}
}

// WithSeed makes shuffles reproducible. The n-th game started gets seed+n.
func WithSeed(seed int64) EngineOption {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithReplayRecorder records every committed state of every game.
func WithReplayRecorder(recorder *ReplayRecorder) EngineOption {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// NewEngine creates an empty engine.
func NewEngine(logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:    logger,
		games:     make(map[string]*engineGame),
		bus:       rules.NewEventBus(),
		threshold: rules.DefaultWinThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers listener for the events of every game. Listeners run
// synchronously after the command that produced the events has committed.
func (e *Engine) Subscribe(listener rules.Listener) int {
	return e.bus.Subscribe(listener)
}

// SubscribeTyped registers callback for one event type.
func (e *Engine) SubscribeTyped(eventType rules.EventType, callback func(rules.Event)) int {
	return e.bus.SubscribeTyped(eventType, callback)
}

// Unsubscribe removes a listener added by Subscribe or SubscribeTyped.
func (e *Engine) Unsubscribe(handle int) {
	e.bus.Unsubscribe(handle)
}

func (e *Engine) newRand() *rand.Rand {
	e.mu.Lock()
	n := e.started
	e.started++
	e.mu.Unlock()

	if e.seed != 0 {
		return rand.New(rand.NewSource(e.seed + n))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano() + n))
}

// StartGame creates a game in its Dealing phase. An empty id gets a random
// UUID. It returns the id in use.
func (e *Engine) StartGame(gameID string, dealer rules.Seat) (string, error) {
	if gameID == "" {
		gameID = uuid.NewString()
	}
	orch := NewOrchestrator(e.newRand(), WithWinThreshold(e.threshold))
	state, events, err := orch.NewGame(gameID, dealer)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	if _, exists := e.games[gameID]; exists {
		e.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	e.games[gameID] = &engineGame{orch: orch, state: state}
	e.mu.Unlock()

	if e.recorder != nil {
		e.recorder.StartRecording(gameID)
		e.recorder.RecordState(gameID, "", state)
	}

	e.logger.Info("started game",
		zap.String("game_id", gameID),
		zap.Stringer("dealer", dealer),
		zap.Int("threshold", state.Threshold),
	)
	e.publish(gameID, events)
	return gameID, nil
}

func (e *Engine) lookup(gameID string) (*engineGame, error) {
	e.mu.RLock()
	g, exists := e.games[gameID]
	e.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// ProcessCommand applies cmd to a game. A rejected command leaves the game
// untouched and returns the rejection.
func (e *Engine) ProcessCommand(gameID string, cmd Command) ([]rules.Event, error) {
	g, err := e.lookup(gameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	next, events, err := g.orch.Apply(g.state, cmd)
	if err != nil {
		phase := g.state.CurrentPhase()
		g.mu.Unlock()
		e.logger.Debug("command rejected",
			zap.String("game_id", gameID),
			zap.String("command", cmd.CommandName()),
			zap.Stringer("phase", phase),
			zap.Error(err),
		)
		return nil, err
	}
	g.state = next
	if e.recorder != nil {
		e.recorder.RecordState(gameID, cmd.CommandName(), next)
	}
	g.mu.Unlock()

	e.logger.Debug("command applied",
		zap.String("game_id", gameID),
		zap.String("command", cmd.CommandName()),
		zap.Stringer("phase", next.CurrentPhase()),
		zap.Int("events", len(events)),
	)
	if winner, over := next.Winner(); over {
		e.logger.Info("game over",
			zap.String("game_id", gameID),
			zap.Stringer("winner", winner),
			zap.Int("team1_score", next.Scores[rules.Team1]),
			zap.Int("team2_score", next.Scores[rules.Team2]),
			zap.Int("rounds", next.RoundNumber),
		)
	}

	return e.publish(gameID, events), nil
}

// publish stamps events with ids and the game id and delivers them.
func (e *Engine) publish(gameID string, events []rules.Event) []rules.Event {
	now := time.Now()
	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].GameID = gameID
		events[i].Timestamp = now
	}
	e.bus.PublishBatch(events)
	return events
}

// State returns a copy of a game's state.
func (e *Engine) State(gameID string) (*GameState, error) {
	g, err := e.lookup(gameID)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone(), nil
}

// Snapshot returns the unredacted snapshot of a game.
func (e *Engine) Snapshot(gameID string) (Snapshot, error) {
	g, err := e.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return TakeSnapshot(g.state), nil
}

// EndGame removes a game. If replays are recorded the replay is saved.
func (e *Engine) EndGame(gameID string) error {
	e.mu.Lock()
	_, exists := e.games[gameID]
	delete(e.games, gameID)
	e.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	if e.recorder != nil && e.recorder.IsRecording(gameID) {
		e.recorder.StopRecording(gameID)
		if err := e.recorder.SaveReplay(gameID); err != nil {
			e.logger.Warn("failed to save replay",
				zap.String("game_id", gameID),
				zap.Error(err),
			)
		}
	}

	e.logger.Info("ended game", zap.String("game_id", gameID))
	return nil
}

// GameIDs lists hosted games in sorted order.
func (e *Engine) GameIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.games))
	for id := range e.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
