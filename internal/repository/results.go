package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

const insertRoundSQL = `
INSERT INTO round_results (
	game_id, round, contract, bid_tricks, bidder_seat, forced, made,
	team1_tricks, team2_tricks, team1_points, team2_points, round_winner
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (game_id, round) DO NOTHING`

const upsertGameSQL = `
INSERT INTO game_results (game_id, winner, team1_score, team2_score, rounds, finished_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (game_id) DO UPDATE SET
	winner = EXCLUDED.winner,
	team1_score = EXCLUDED.team1_score,
	team2_score = EXCLUDED.team2_score,
	rounds = EXCLUDED.rounds,
	finished_at = EXCLUDED.finished_at`

// GameRecord is the final outcome of a game.
type GameRecord struct {
	GameID     string
	Winner     rules.Team
	Scores     [2]int
	Rounds     int
	FinishedAt time.Time
}

// ResultStore writes round and game results.
type ResultStore struct {
	db     Execer
	logger *zap.Logger
}

// NewResultStore creates a store writing through db.
func NewResultStore(db Execer, logger *zap.Logger) *ResultStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultStore{db: db, logger: logger}
}

// SaveRound records one scored round. Saving the same round twice is a
// no-op.
func (s *ResultStore) SaveRound(ctx context.Context, gameID string, res rules.RoundResult) error {
	if gameID == "" {
		return fmt.Errorf("save round: empty game id")
	}
	tag, err := s.db.Exec(ctx, insertRoundSQL,
		gameID,
		res.Round,
		res.Contract.Kind.String(),
		res.Contract.Tricks,
		int(res.Contract.Seat),
		res.Contract.Forced,
		res.Made,
		res.Tricks[rules.Team1],
		res.Tricks[rules.Team2],
		res.Points[rules.Team1],
		res.Points[rules.Team2],
		int(res.Winner),
	)
	if err != nil {
		return fmt.Errorf("save round %d of %s: %w", res.Round, gameID, err)
	}
	s.logger.Debug("saved round result",
		zap.String("game_id", gameID),
		zap.Int("round", res.Round),
		zap.Int64("rows", tag.RowsAffected()),
	)
	return nil
}

// SaveGame records or replaces the final outcome of a game.
func (s *ResultStore) SaveGame(ctx context.Context, rec GameRecord) error {
	if rec.GameID == "" {
		return fmt.Errorf("save game: empty game id")
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	if _, err := s.db.Exec(ctx, upsertGameSQL,
		rec.GameID,
		int(rec.Winner),
		rec.Scores[rules.Team1],
		rec.Scores[rules.Team2],
		rec.Rounds,
		rec.FinishedAt,
	); err != nil {
		return fmt.Errorf("save game %s: %w", rec.GameID, err)
	}
	s.logger.Info("saved game result",
		zap.String("game_id", rec.GameID),
		zap.Stringer("winner", rec.Winner),
		zap.Int("team1_score", rec.Scores[rules.Team1]),
		zap.Int("team2_score", rec.Scores[rules.Team2]),
	)
	return nil
}
