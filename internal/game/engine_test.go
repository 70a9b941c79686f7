package game_test

import (
	"math/rand"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/moderncaliberwebdev/haus/internal/bot"
	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

func TestEngineStartGame(t *testing.T) {
	engine := game.NewEngine(zaptest.NewLogger(t), game.WithSeed(1))

	id, err := engine.StartGame("", 0)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "empty id gets a uuid")

	named, err := engine.StartGame("table-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "table-1", named)

	_, err = engine.StartGame("table-1", 1)
	assert.ErrorIs(t, err, game.ErrGameExists)

	_, err = engine.StartGame("bad-dealer", 4)
	assert.ErrorIs(t, err, game.ErrUnknownSeat)

	assert.ElementsMatch(t, []string{id, "table-1"}, engine.GameIDs())

	snap, err := engine.Snapshot("table-1")
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseDealing, snap.Phase)
	assert.Equal(t, rules.Seat(1), snap.Dealer)
}

func TestEngineSeedMatchesOrchestrator(t *testing.T) {
	engine := game.NewEngine(nil, game.WithSeed(17))
	_, err := engine.StartGame("seeded", 0)
	require.NoError(t, err)
	state, err := engine.State("seeded")
	require.NoError(t, err)

	orch := game.NewOrchestrator(rand.New(rand.NewSource(17)))
	want, _, err := orch.NewGame("seeded", 0)
	require.NoError(t, err)
	assert.Equal(t, want.Round.Deck, state.Round.Deck)
}

func TestEngineProcessCommand(t *testing.T) {
	engine := game.NewEngine(zaptest.NewLogger(t), game.WithSeed(2))

	var mu sync.Mutex
	var received []rules.Event
	engine.Subscribe(func(evt rules.Event) {
		mu.Lock()
		received = append(received, evt)
		mu.Unlock()
	})
	var contracts int
	handle := engine.SubscribeTyped(rules.EventContractEstablished, func(rules.Event) {
		contracts++
	})

	_, err := engine.StartGame("g", 0)
	require.NoError(t, err)

	events, err := engine.ProcessCommand("g", game.DealCards{})
	require.NoError(t, err)
	require.Len(t, events, rules.NumSeats+1)
	for _, evt := range events {
		assert.Equal(t, "g", evt.GameID)
		assert.NotEmpty(t, evt.ID)
		assert.False(t, evt.Timestamp.IsZero())
	}

	// Rejections publish nothing and leave the game as it was.
	before, err := engine.State("g")
	require.NoError(t, err)
	mu.Lock()
	count := len(received)
	mu.Unlock()

	_, err = engine.ProcessCommand("g", game.PlaceBid{Seat: 3, Bid: rules.BidFour})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	after, err := engine.State("g")
	require.NoError(t, err)
	assert.Equal(t, game.Checksum(before), game.Checksum(after))
	mu.Lock()
	assert.Len(t, received, count)
	mu.Unlock()

	for seat := rules.Seat(1); seat <= rules.NumSeats; seat++ {
		_, err = engine.ProcessCommand("g", game.PlaceBid{Seat: seat % rules.NumSeats, Bid: rules.BidPass})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, contracts)

	engine.Unsubscribe(handle)
	_, err = engine.ProcessCommand("missing", game.DealCards{})
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	_, err = engine.Snapshot("missing")
	assert.ErrorIs(t, err, game.ErrGameNotFound)
	_, err = engine.State("missing")
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestEngineStateIsACopy(t *testing.T) {
	engine := game.NewEngine(nil, game.WithSeed(3))
	_, err := engine.StartGame("copy", 0)
	require.NoError(t, err)

	state, err := engine.State("copy")
	require.NoError(t, err)
	state.Scores[rules.Team1] = 100

	again, err := engine.State("copy")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Scores[rules.Team1])
}

func TestEngineEndGameSavesReplay(t *testing.T) {
	dir := t.TempDir()
	logger := zaptest.NewLogger(t)
	recorder := game.NewReplayRecorder(logger, dir)
	engine := game.NewEngine(logger, game.WithSeed(4), game.WithThreshold(20), game.WithReplayRecorder(recorder))

	_, err := engine.StartGame("replayed", 0)
	require.NoError(t, err)

	b := bot.NewRandomBot(rand.New(rand.NewSource(4)))
	commands := 0
	for {
		state, err := engine.State("replayed")
		require.NoError(t, err)
		if state.Over() {
			break
		}
		require.Less(t, commands, maxCommands)
		cmd, err := b.Next(state)
		require.NoError(t, err)
		_, err = engine.ProcessCommand("replayed", cmd)
		require.NoError(t, err)
		commands++
	}

	final, err := engine.State("replayed")
	require.NoError(t, err)

	require.NoError(t, engine.EndGame("replayed"))
	assert.Empty(t, engine.GameIDs())
	assert.ErrorIs(t, engine.EndGame("replayed"), game.ErrGameNotFound)

	replay, err := game.LoadReplayFromFile(dir, "replayed")
	require.NoError(t, err)
	assert.Equal(t, commands+1, replay.Size())
	require.NoError(t, replay.Verify())

	last := replay.FrameAt(replay.Size() - 1)
	assert.Equal(t, game.Checksum(final), last.Checksum)
	assert.True(t, last.State.Over())
	assert.FileExists(t, filepath.Join(dir, "replayed.replay"))
}

func TestEngineRunsGamesConcurrently(t *testing.T) {
	engine := game.NewEngine(zaptest.NewLogger(t), game.WithSeed(5), game.WithThreshold(16))

	var finished sync.Map
	engine.SubscribeTyped(rules.EventGameOver, func(evt rules.Event) {
		finished.Store(evt.GameID, evt.Team)
	})

	const games = 6
	var wg sync.WaitGroup
	errs := make(chan error, games)
	for i := 0; i < games; i++ {
		id, err := engine.StartGame("", rules.Seat(i%rules.NumSeats))
		require.NoError(t, err)

		wg.Add(1)
		go func(id string, seed int64) {
			defer wg.Done()
			b := bot.NewRandomBot(rand.New(rand.NewSource(seed)))
			for n := 0; n < maxCommands; n++ {
				state, err := engine.State(id)
				if err != nil {
					errs <- err
					return
				}
				if state.Over() {
					return
				}
				cmd, err := b.Next(state)
				if err != nil {
					errs <- err
					return
				}
				if _, err := engine.ProcessCommand(id, cmd); err != nil {
					errs <- err
					return
				}
			}
		}(id, int64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("game failed: %v", err)
	}

	for _, id := range engine.GameIDs() {
		state, err := engine.State(id)
		require.NoError(t, err)
		assert.True(t, state.Over(), "game %s finished", id)
		winner, ok := finished.Load(id)
		require.True(t, ok)
		got, _ := state.Winner()
		assert.Equal(t, got, winner)
	}
}
