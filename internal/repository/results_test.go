package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestSaveRound(t *testing.T) {
	db := &fakeExecer{}
	store := NewResultStore(db, zaptest.NewLogger(t))

	res := rules.RoundResult{
		Round:    3,
		Contract: rules.Contract{Kind: rules.ContractNumber, Tricks: 5, Seat: 1},
		Tricks:   [2]int{2, 6},
		Points:   [2]int{2, 6},
		Made:     true,
		Winner:   rules.Team2,
	}
	require.NoError(t, store.SaveRound(context.Background(), "g1", res))

	require.Len(t, db.calls, 1)
	call := db.calls[0]
	assert.True(t, strings.Contains(call.sql, "INSERT INTO round_results"))
	assert.Equal(t, []any{
		"g1", 3, rules.ContractNumber.String(), 5, 1, false, true,
		2, 6, 2, 6, int(rules.Team2),
	}, call.args)
}

func TestSaveRoundErrors(t *testing.T) {
	store := NewResultStore(&fakeExecer{}, nil)
	assert.Error(t, store.SaveRound(context.Background(), "", rules.RoundResult{}))

	boom := errors.New("connection reset")
	store = NewResultStore(&fakeExecer{err: boom}, nil)
	err := store.SaveRound(context.Background(), "g1", rules.RoundResult{Round: 1})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "round 1 of g1")
}

func TestSaveGame(t *testing.T) {
	db := &fakeExecer{}
	store := NewResultStore(db, zaptest.NewLogger(t))

	finished := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.SaveGame(context.Background(), GameRecord{
		GameID:     "g2",
		Winner:     rules.Team1,
		Scores:     [2]int{66, 40},
		Rounds:     9,
		FinishedAt: finished,
	}))

	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].sql, "ON CONFLICT (game_id) DO UPDATE")
	assert.Equal(t, []any{"g2", int(rules.Team1), 66, 40, 9, finished}, db.calls[0].args)
}

func TestSaveGameDefaultsFinishTime(t *testing.T) {
	db := &fakeExecer{}
	store := NewResultStore(db, nil)

	before := time.Now()
	require.NoError(t, store.SaveGame(context.Background(), GameRecord{GameID: "g3"}))
	stamped, ok := db.calls[0].args[5].(time.Time)
	require.True(t, ok)
	assert.False(t, stamped.Before(before))

	assert.Error(t, store.SaveGame(context.Background(), GameRecord{}))
}
