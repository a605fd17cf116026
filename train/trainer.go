package train

import (
	"context"
	"fmt"
	"math/rand"

	"duel/actionspace"
	"duel/search"
)

// Trainer owns one run's mutable state: the shared action space, the
// replay buffer, and the candidate/best approximators it alternates
// between self-play, training, and gating.
type Trainer struct {
	Space    *actionspace.Space
	Replay   *ReplayBuffer
	Best     Checkpointer
	Cfg      Config
	Workers  int
	Progress func(iteration int, record HistoryRecord)
}

// NewTrainer wires a Trainer around cfg, sizing its replay buffer to
// cfg.ReplaySize.
func NewTrainer(cfg Config, best Checkpointer, workers int) *Trainer {
	return &Trainer{
		Space:   actionspace.New(),
		Replay:  NewReplayBuffer(cfg.ReplaySize),
		Best:    best,
		Cfg:     cfg,
		Workers: workers,
	}
}

// Run executes cfg.Iterations rounds: self-play with the current best,
// cfg.Epochs training epochs fitting a candidate cloned from best, gating
// evaluation, and conditional promotion, emitting checkpoints and a
// metadata sidecar as it goes. It stops early if ctx is canceled. createdAt
// is stamped into the metadata sidecar verbatim; it is the caller's
// responsibility (main.go) to supply it, since train itself takes no other
// dependency on wall-clock time. With more than one worker, the episodes
// that self-play collects depend on goroutine scheduling (see RunSelfPlay),
// so a run is not fully determined by the seed.
func (t *Trainer) Run(ctx context.Context, newCandidate func(Checkpointer) Checkpointer, expectations Expectations, createdAt string) (*Metadata, error) {
	meta := &Metadata{
		CreatedAt:       createdAt,
		Seed:            t.Cfg.Seed,
		Hyperparameters: t.Cfg,
		Expectations:    expectations,
	}
	rng := rand.New(rand.NewSource(t.Cfg.Seed))

	for iter := 1; iter <= t.Cfg.Iterations; iter++ {
		select {
		case <-ctx.Done():
			return meta, ctx.Err()
		default:
		}

		bestMC := &search.MCTS{
			Space: t.Space, Evaluator: t.Best, Simulations: t.Cfg.Simulations,
			Cpuct: t.Cfg.Cpuct, DirichletAlpha: t.Cfg.DirichletAlpha, DirichletEps: t.Cfg.DirichletEps,
		}
		winners := RunSelfPlay(ctx, bestMC, t.Space, t.Cfg, t.Workers, t.Cfg.EpisodesPerIter, t.Replay)

		candidate := newCandidate(t.Best)
		var epoch EpochMetrics
		for e := 0; e < t.Cfg.Epochs; e++ {
			epoch = TrainEpoch(candidate, t.Replay, t.Cfg.BatchSize, rng)
		}

		gating := EvaluateCandidate(candidate, t.Best, t.Space, t.Cfg, rng)
		if gating.Promoted {
			t.Best = candidate
		}

		record := HistoryRecord{
			Iteration:       iter,
			SelfPlayWinners: winners,
			ReplaySize:      t.Replay.Len(),
			PolicyLoss:      epoch.PolicyLoss,
			ValueLoss:       epoch.ValueLoss,
			GatingWinRate:   gating.WinRate,
			Promoted:        gating.Promoted,
		}
		meta.History = append(meta.History, record)
		if t.Progress != nil {
			t.Progress(iter, record)
		}

		if iter%t.Cfg.CheckpointFrequency == 0 {
			if err := EmitCheckpoints(t.Cfg.OutputDir, candidate, t.Best, gating.Promoted); err != nil {
				return meta, fmt.Errorf("checkpoint emission: %w", err)
			}
			if err := WriteMetadata(t.Cfg.OutputDir, meta); err != nil {
				return meta, fmt.Errorf("metadata emission: %w", err)
			}
		}
	}
	return meta, nil
}
