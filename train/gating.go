package train

import (
	"math/rand"

	"golang.org/x/sync/errgroup"

	"duel/actionspace"
	"duel/engine"
	"duel/search"
)

// PlayMatch runs one deterministic greedy game (dirichletEps=0, argmax of
// search policy every ply) between candidate and best. It returns +1 if
// the candidate wins, -1 if best wins. candidateIsPlayer1 decides who
// moves first, as gating alternates first-player across the match set.
func PlayMatch(candidate, best Trainable, space *actionspace.Space, cfg Config, candidateIsPlayer1 bool, rng *rand.Rand) int {
	mcFor := map[int]*search.MCTS{}
	candidatePlayer, bestPlayer := 1, 2
	if !candidateIsPlayer1 {
		candidatePlayer, bestPlayer = 2, 1
	}
	mcFor[candidatePlayer] = &search.MCTS{
		Space: space, Evaluator: candidate, Simulations: cfg.Simulations,
		Cpuct: cfg.Cpuct, DirichletAlpha: cfg.DirichletAlpha, DirichletEps: 0,
	}
	mcFor[bestPlayer] = &search.MCTS{
		Space: space, Evaluator: best, Simulations: cfg.Simulations,
		Cpuct: cfg.Cpuct, DirichletAlpha: cfg.DirichletAlpha, DirichletEps: 0,
	}

	state := engine.InitialState()
	for moveNum := 0; !engine.IsTerminal(state) && moveNum < cfg.MaxGameMoves; moveNum++ {
		toPlay := state.CurrentPlayer
		policy := mcFor[toPlay].Run(state, toPlay, false, rng)
		actionID := argmax(policy)
		state = engine.NextState(state, space.Action(actionID))
	}

	if outcomeWinner(state) == candidatePlayer {
		return 1
	}
	return -1
}

// GatingResult summarizes one evaluation round.
type GatingResult struct {
	Wins     int
	Losses   int
	WinRate  float64
	Promoted bool
}

// EvaluateCandidate plays cfg.EvaluationGames matches concurrently,
// alternating which side the candidate opens on, and reports
// wins(candidate)/games against gatingThreshold. Each match gets its own
// rng stream, seeded from rng in match-index order before any match starts,
// so the result does not depend on goroutine completion order.
func EvaluateCandidate(candidate, best Trainable, space *actionspace.Space, cfg Config, rng *rand.Rand) GatingResult {
	outcomes := make([]int, cfg.EvaluationGames)
	var g errgroup.Group
	for i := 0; i < cfg.EvaluationGames; i++ {
		i := i
		matchRng := rand.New(rand.NewSource(rng.Int63()))
		g.Go(func() error {
			candidateIsPlayer1 := i%2 == 0
			outcomes[i] = PlayMatch(candidate, best, space, cfg, candidateIsPlayer1, matchRng)
			return nil
		})
	}
	_ = g.Wait()

	var result GatingResult
	for _, o := range outcomes {
		if o == 1 {
			result.Wins++
		} else {
			result.Losses++
		}
	}
	if cfg.EvaluationGames > 0 {
		result.WinRate = float64(result.Wins) / float64(cfg.EvaluationGames)
	}
	result.Promoted = result.WinRate >= cfg.GatingThreshold
	return result
}
