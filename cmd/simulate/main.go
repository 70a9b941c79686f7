// Command simulate plays bot-only games in parallel and reports outcomes.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/moderncaliberwebdev/haus/internal/bot"
	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/game/rules"
)

var (
	games       = flag.Int("games", 100, "number of games to play")
	parallel    = flag.Int("parallel", 8, "games played at once")
	threshold   = flag.Int("threshold", rules.DefaultWinThreshold, "winning score")
	seed        = flag.Int64("seed", 1, "base seed; game n uses seed+n")
	maxCommands = flag.Int("max-commands", 100000, "abort a game after this many commands")
	replayDir   = flag.String("replays", "", "save a replay of every game to this directory")
	verbose     = flag.Bool("v", false, "log every game")
)

type summary struct {
	mu       sync.Mutex
	wins     [2]int
	rounds   int
	contract map[rules.ContractKind]int
	made     map[rules.ContractKind]int
}

func (s *summary) add(state *game.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if winner, over := state.Winner(); over {
		s.wins[winner]++
	}
	s.rounds += len(state.History)
	for _, res := range state.History {
		s.contract[res.Contract.Kind]++
		if res.Made {
			s.made[res.Contract.Kind]++
		}
	}
}

func main() {
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	var recorder *game.ReplayRecorder
	if *replayDir != "" {
		recorder = game.NewReplayRecorder(logger, *replayDir)
	}

	sum := &summary{
		contract: make(map[rules.ContractKind]int),
		made:     make(map[rules.ContractKind]int),
	}
	start := time.Now()

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*parallel)
	for i := 0; i < *games; i++ {
		n := int64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			state, err := play(n, recorder, logger)
			if err != nil {
				return fmt.Errorf("game %d: %w", n, err)
			}
			sum.add(state)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}

	elapsed := time.Since(start)
	fmt.Printf("games: %d in %s (%d rounds)\n", *games, elapsed.Round(time.Millisecond), sum.rounds)
	fmt.Printf("wins: %s %d, %s %d\n", rules.Team1, sum.wins[rules.Team1], rules.Team2, sum.wins[rules.Team2])
	for _, kind := range []rules.ContractKind{rules.ContractNumber, rules.ContractAceHaus, rules.ContractHaus, rules.ContractDoubleHaus} {
		if sum.contract[kind] == 0 {
			continue
		}
		fmt.Printf("%-12s %6d played, %6d made\n", kind, sum.contract[kind], sum.made[kind])
	}
}

func play(n int64, recorder *game.ReplayRecorder, logger *zap.Logger) (*game.GameState, error) {
	orch := game.NewOrchestrator(rand.New(rand.NewSource(*seed+n)), game.WithWinThreshold(*threshold))
	b := bot.NewRandomBot(rand.New(rand.NewSource(*seed + n + 1)))

	id := fmt.Sprintf("sim-%d", n)
	state, _, err := orch.NewGame(id, rules.Seat(n%rules.NumSeats))
	if err != nil {
		return nil, err
	}
	if recorder != nil {
		recorder.StartRecording(id)
		recorder.RecordState(id, "", state)
	}

	for steps := 0; !state.Over(); steps++ {
		if steps >= *maxCommands {
			return state, fmt.Errorf("not finished after %d commands", steps)
		}
		cmd, err := b.Next(state)
		if err != nil {
			return state, err
		}
		next, _, err := orch.Apply(state, cmd)
		if err != nil {
			return state, fmt.Errorf("%s rejected: %w", cmd.CommandName(), err)
		}
		if err := game.CheckCardConservation(next); err != nil {
			return next, err
		}
		state = next
		if recorder != nil {
			recorder.RecordState(id, cmd.CommandName(), state)
		}
	}

	if recorder != nil {
		recorder.StopRecording(id)
		if err := recorder.SaveReplay(id); err != nil {
			return state, err
		}
		recorder.ClearReplay(id)
	}

	winner, _ := state.Winner()
	logger.Info("game finished",
		zap.String("game_id", id),
		zap.Stringer("winner", winner),
		zap.Int("rounds", state.RoundNumber),
	)
	return state, nil
}
