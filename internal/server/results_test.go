package server

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moderncaliberwebdev/haus/internal/bot"
	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
	"github.com/moderncaliberwebdev/haus/internal/repository"
)

type memoryResults struct {
	mu     sync.Mutex
	rounds map[string][]rules.RoundResult
	games  map[string]repository.GameRecord
}

func newMemoryResults() *memoryResults {
	return &memoryResults{
		rounds: make(map[string][]rules.RoundResult),
		games:  make(map[string]repository.GameRecord),
	}
}

func (m *memoryResults) SaveRound(_ context.Context, gameID string, res rules.RoundResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[gameID] = append(m.rounds[gameID], res)
	return nil
}

func (m *memoryResults) SaveGame(_ context.Context, rec repository.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[rec.GameID] = rec
	return nil
}

func (m *memoryResults) game(id string) (repository.GameRecord, []rules.RoundResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	return rec, append([]rules.RoundResult(nil), m.rounds[id]...), ok
}

func TestResultsSinkPersistsRoundsAndGame(t *testing.T) {
	engine := game.NewEngine(zap.NewNop(), game.WithSeed(41), game.WithThreshold(16))
	store := newMemoryResults()
	sink := NewResultsSink(engine, store, zap.NewNop())
	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sink.Run(ctx)

	_, err := engine.StartGame("persisted", 1)
	require.NoError(t, err)
	b := bot.NewRandomBot(rand.New(rand.NewSource(41)))
	for n := 0; ; n++ {
		require.Less(t, n, 50000)
		state, err := engine.State("persisted")
		require.NoError(t, err)
		if state.Over() {
			break
		}
		cmd, err := b.Next(state)
		require.NoError(t, err)
		_, err = engine.ProcessCommand("persisted", cmd)
		require.NoError(t, err)
	}
	final, err := engine.State("persisted")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, rounds, ok := store.game("persisted")
		return ok && len(rounds) == len(final.History)
	}, 5*time.Second, 10*time.Millisecond)

	rec, rounds, _ := store.game("persisted")
	winner, _ := final.Winner()
	assert.Equal(t, winner, rec.Winner)
	assert.Equal(t, final.Scores, rec.Scores)
	assert.Equal(t, final.RoundNumber, rec.Rounds)
	assert.False(t, rec.FinishedAt.IsZero())
	assert.Equal(t, final.History, rounds)
}

func TestResultsSinkIgnoresEmptyRounds(t *testing.T) {
	engine := game.NewEngine(zap.NewNop(), game.WithSeed(42))
	sink := NewResultsSink(engine, newMemoryResults(), nil)
	require.Len(t, sink.handles, 2)

	sink.onRoundScored(rules.Event{GameID: "x"})
	assert.Empty(t, sink.jobs)

	sink.Close()
	assert.Empty(t, sink.handles)
}
