package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
	"github.com/moderncaliberwebdev/haus/internal/repository"
)

// ResultWriter persists finished rounds and games.
type ResultWriter interface {
	SaveRound(ctx context.Context, gameID string, res rules.RoundResult) error
	SaveGame(ctx context.Context, rec repository.GameRecord) error
}

type resultJob struct {
	gameID string
	round  *rules.RoundResult
	game   *repository.GameRecord
}

// ResultsSink queues scored rounds and finished games from the engine and
// writes them on its own goroutine.
type ResultsSink struct {
	engine  *game.Engine
	store   ResultWriter
	logger  *zap.Logger
	timeout time.Duration
	jobs    chan resultJob
	handles []int
}

// NewResultsSink subscribes to engine. Call Run to start writing.
func NewResultsSink(engine *game.Engine, store ResultWriter, logger *zap.Logger) *ResultsSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ResultsSink{
		engine:  engine,
		store:   store,
		logger:  logger,
		timeout: 5 * time.Second,
		jobs:    make(chan resultJob, 256),
	}
	s.handles = append(s.handles,
		engine.SubscribeTyped(rules.EventRoundScored, s.onRoundScored),
		engine.SubscribeTyped(rules.EventGameOver, s.onGameOver),
	)
	return s
}

func (s *ResultsSink) onRoundScored(evt rules.Event) {
	if evt.Result == nil {
		return
	}
	res := *evt.Result
	s.enqueue(resultJob{gameID: evt.GameID, round: &res})
}

func (s *ResultsSink) onGameOver(evt rules.Event) {
	rec := repository.GameRecord{
		GameID:     evt.GameID,
		Winner:     evt.Team,
		FinishedAt: evt.Timestamp,
	}
	if state, err := s.engine.State(evt.GameID); err == nil {
		rec.Scores = state.Scores
		rec.Rounds = state.RoundNumber
	} else {
		s.logger.Warn("game gone before its result was read", zap.String("game_id", evt.GameID), zap.Error(err))
	}
	s.enqueue(resultJob{gameID: evt.GameID, game: &rec})
}

func (s *ResultsSink) enqueue(job resultJob) {
	select {
	case s.jobs <- job:
	default:
		s.logger.Warn("results queue full, dropping result", zap.String("game_id", job.gameID))
	}
}

// Run writes queued results until ctx ends.
func (s *ResultsSink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.write(ctx, job)
		}
	}
}

func (s *ResultsSink) write(ctx context.Context, job resultJob) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var err error
	switch {
	case job.round != nil:
		err = s.store.SaveRound(ctx, job.gameID, *job.round)
	case job.game != nil:
		err = s.store.SaveGame(ctx, *job.game)
	}
	if err != nil {
		s.logger.Error("failed to persist result", zap.String("game_id", job.gameID), zap.Error(err))
	}
}

// Close stops listening for new results.
func (s *ResultsSink) Close() {
	for _, h := range s.handles {
		s.engine.Unsubscribe(h)
	}
	s.handles = nil
}
