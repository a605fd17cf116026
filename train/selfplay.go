package train

import (
	"context"
	"math"
	"math/rand"

	channerics "github.com/niceyeti/channerics/channels"

	"duel/actionspace"
	"duel/encoder"
	"duel/engine"
	"duel/search"
)

type episodeStep struct {
	features []float64
	policy   []float64
	player   int
}

// Episode is one completed self-play game: its labeled training samples and
// the winner used to derive them, for history-record bookkeeping.
type Episode struct {
	Samples []Sample
	Winner  int
}

// selfPlayEpisode drives one game to completion (or the move cap) with mc
// guiding every decision, recording one step per ply. Samples are labeled
// with the final outcome once the episode is known, exactly the way the
// reference trainer backfills z from the terminal reward.
func selfPlayEpisode(mc *search.MCTS, space *actionspace.Space, cfg Config, rng *rand.Rand) Episode {
	state := engine.InitialState()
	var steps []episodeStep

	for moveNum := 0; !engine.IsTerminal(state) && moveNum < cfg.MaxGameMoves; moveNum++ {
		toPlay := state.CurrentPlayer
		policy := mc.Run(state, toPlay, true, rng)
		features := encoder.Encode(state, toPlay)
		steps = append(steps, episodeStep{features: features, policy: policy, player: toPlay})

		actionID := chooseAction(policy, moveNum, cfg, rng)
		state = engine.NextState(state, space.Action(actionID))
	}

	winner := outcomeWinner(state)

	samples := make([]Sample, len(steps))
	for i, st := range steps {
		v := -1.0
		if st.player == winner {
			v = 1.0
		}
		samples[i] = Sample{Features: st.features, Policy: st.policy, Value: v}
	}
	return Episode{Samples: samples, Winner: winner}
}

// outcomeWinner resolves the game's winner for training-label purposes: the
// engine's own winner if terminal, else the lp tiebreak (higher lp wins,
// ties favor player 1) for games that hit the move cap.
func outcomeWinner(state *engine.GameState) int {
	if engine.IsTerminal(state) {
		return state.Winner
	}
	if state.Players[1].LP >= state.Players[2].LP {
		return 1
	}
	return 2
}

// chooseAction implements the effective-temperature action rule: τ=temp for
// the opening tempOpeningMoves plies, else 0.1. At or below the 1e-6 floor,
// argmax is taken deterministically; otherwise policy+1e-12 is raised to
// 1/τ, renormalized, and sampled.
func chooseAction(policy []float64, moveNum int, cfg Config, rng *rand.Rand) int {
	tau := 0.1
	if moveNum < cfg.TempOpeningMoves {
		tau = cfg.Temperature
	}
	if tau <= 1e-6 {
		return argmax(policy)
	}

	scaled := make([]float64, len(policy))
	sum := 0.0
	for i, p := range policy {
		v := math.Pow(p+1e-12, 1/tau)
		scaled[i] = v
		sum += v
	}
	if sum <= 0 {
		return argmax(policy)
	}

	r := rng.Float64() * sum
	cum := 0.0
	for i, v := range scaled {
		cum += v
		if r <= cum {
			return i
		}
	}
	return argmax(policy)
}

func argmax(policy []float64) int {
	best := 0
	for i, v := range policy {
		if v > policy[best] {
			best = i
		}
	}
	return best
}

// selfPlayWorker generates an unbounded stream of episodes on its own rng
// stream, stopping when done fires. It is the agent_worker half of the
// fan-in pool: one goroutine, one channel, no shared mutable state.
func selfPlayWorker(done <-chan struct{}, mc *search.MCTS, space *actionspace.Space, cfg Config, seed int64) <-chan Episode {
	episodes := make(chan Episode)
	go func() {
		defer close(episodes)
		rng := rand.New(rand.NewSource(seed))
		for {
			select {
			case <-done:
				return
			default:
			}
			episode := selfPlayEpisode(mc, space, cfg, rng)
			select {
			case episodes <- episode:
			case <-done:
				return
			}
		}
	}()
	return episodes
}

// RunSelfPlay fans nworkers selfPlayWorker streams into one via
// channerics.Merge, collects exactly wanted episodes into replay, and
// returns the winners of every collected episode once that quota is met.
// Each worker gets a distinct seed derived from cfg.Seed, so each worker's
// own episode stream is reproducible. Episodes are collected in arrival
// order from the merged channel, so with nworkers > 1 which workers'
// episodes fill the quota, and in what order, depends on goroutine
// scheduling and is not fixed by the seed.
func RunSelfPlay(ctx context.Context, mc *search.MCTS, space *actionspace.Space, cfg Config, nworkers, wanted int, replay *ReplayBuffer) []int {
	innerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := make([]<-chan Episode, nworkers)
	for i := 0; i < nworkers; i++ {
		workers[i] = selfPlayWorker(innerCtx.Done(), mc, space, cfg, cfg.Seed+int64(i)+1)
	}
	episodes := channerics.Merge(innerCtx.Done(), workers...)

	winners := make([]int, 0, wanted)
	for episode := range episodes {
		replay.Add(episode.Samples)
		winners = append(winners, episode.Winner)
		if len(winners) >= wanted {
			cancel()
			break
		}
	}
	return winners
}
