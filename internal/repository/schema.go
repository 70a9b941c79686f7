package repository

var schema = []string{
	`CREATE TABLE IF NOT EXISTS round_results (
		game_id      TEXT        NOT NULL,
		round        INTEGER     NOT NULL,
		contract     TEXT        NOT NULL,
		bid_tricks   INTEGER     NOT NULL,
		bidder_seat  SMALLINT    NOT NULL,
		forced       BOOLEAN     NOT NULL,
		made         BOOLEAN     NOT NULL,
		team1_tricks SMALLINT    NOT NULL,
		team2_tricks SMALLINT    NOT NULL,
		team1_points INTEGER     NOT NULL,
		team2_points INTEGER     NOT NULL,
		round_winner SMALLINT    NOT NULL,
		recorded_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (game_id, round)
	)`,
	`CREATE TABLE IF NOT EXISTS game_results (
		game_id     TEXT        PRIMARY KEY,
		winner      SMALLINT    NOT NULL,
		team1_score INTEGER     NOT NULL,
		team2_score INTEGER     NOT NULL,
		rounds      INTEGER     NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	)`,
}
