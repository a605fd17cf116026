/*
Psychometric Duel trains an AlphaZero-style agent to play a two-player
psychometric-themed card duel against itself: a deterministic rule engine
drives legality and transitions, MCTS guided by a pluggable policy/value
approximator searches for moves, and a self-play loop accumulates
trajectories, trains a candidate approximator, and gates its promotion
against the current best via head-to-head evaluation. The approximator
itself is swappable behind a narrow Evaluator contract; the default wired
here is a plain linear model, not a claim about what architecture a real
deployment should use.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"runtime"
	"time"

	"duel/actionspace"
	"duel/approximator"
	"duel/encoder"
	"duel/server/progress"
	"duel/train"
)

var (
	iterations          *int
	episodesPerIter     *int
	simulations         *int
	learningRate        *float64
	replaySize          *int
	batchSize           *int
	epochs              *int
	checkpointFrequency *int
	evaluationGames     *int
	gatingThreshold     *float64
	cpuct               *float64
	tempOpeningMoves    *int
	temperature         *float64
	dirichletAlpha      *float64
	dirichletEps        *float64
	maxGameMoves        *int
	seed                *int64
	hiddenDim           *int
	outputDir           *string
	device              *string
	verbose             *bool
	nworkers            *int
	host                *string
	port                *string
	addr                string
)

// TODO: per 12-factor rules, these should be taken from env or config-map; KISS for now. Also init is bad.
func init() {
	def := train.DefaultConfig()
	iterations = flag.Int("iterations", def.Iterations, "number of train/self-play/gate rounds")
	episodesPerIter = flag.Int("episodes-per-iter", def.EpisodesPerIter, "self-play episodes per iteration")
	simulations = flag.Int("simulations", def.Simulations, "MCTS simulations per move")
	learningRate = flag.Float64("learning-rate", def.LearningRate, "approximator learning rate")
	replaySize = flag.Int("replay-size", def.ReplaySize, "replay buffer capacity")
	batchSize = flag.Int("batch-size", def.BatchSize, "training batch size")
	epochs = flag.Int("epochs", def.Epochs, "training epochs per iteration")
	checkpointFrequency = flag.Int("checkpoint-frequency", def.CheckpointFrequency, "iterations between checkpoint emissions")
	evaluationGames = flag.Int("evaluation-games", def.EvaluationGames, "gating match count per iteration")
	gatingThreshold = flag.Float64("gating-threshold", def.GatingThreshold, "candidate win rate required to promote")
	cpuct = flag.Float64("cpuct", def.Cpuct, "PUCT exploration constant")
	tempOpeningMoves = flag.Int("temp-opening-moves", def.TempOpeningMoves, "plies using the configured temperature")
	temperature = flag.Float64("temperature", def.Temperature, "opening-move sampling temperature")
	dirichletAlpha = flag.Float64("dirichlet-alpha", def.DirichletAlpha, "root Dirichlet noise alpha")
	dirichletEps = flag.Float64("dirichlet-eps", def.DirichletEps, "root Dirichlet noise weight")
	maxGameMoves = flag.Int("max-game-moves", def.MaxGameMoves, "move cap before the lp tiebreak applies")
	seed = flag.Int64("seed", def.Seed, "master random seed")
	hiddenDim = flag.Int("hidden-dim", def.HiddenDim, "approximator hidden width (architecture-specific)")
	outputDir = flag.String("output-dir", def.OutputDir, "checkpoint and metadata output directory")
	device = flag.String("device", def.Device, "approximator execution device")
	verbose = flag.Bool("verbose", def.Verbose, "verbose progress logging")
	nworkers = flag.Int("nworkers", runtime.NumCPU(), "number of self-play worker goroutines")
	host = flag.String("host", "", "dashboard host ip")
	port = flag.String("port", "8080", "dashboard host port")
	flag.Parse()
	addr = *host + ":" + *port
}

func buildConfig() train.Config {
	return train.Config{
		Iterations:          *iterations,
		EpisodesPerIter:     *episodesPerIter,
		Simulations:         *simulations,
		LearningRate:        *learningRate,
		ReplaySize:          *replaySize,
		BatchSize:           *batchSize,
		Epochs:              *epochs,
		CheckpointFrequency: *checkpointFrequency,
		EvaluationGames:     *evaluationGames,
		GatingThreshold:     *gatingThreshold,
		Cpuct:               *cpuct,
		TempOpeningMoves:    *tempOpeningMoves,
		Temperature:         *temperature,
		DirichletAlpha:      *dirichletAlpha,
		DirichletEps:        *dirichletEps,
		MaxGameMoves:        *maxGameMoves,
		Seed:                *seed,
		HiddenDim:           *hiddenDim,
		OutputDir:           *outputDir,
		Device:              *device,
		Verbose:             *verbose,
	}
}

func runApp() (err error) {
	cfg := buildConfig()
	if hp, loadErr := train.LoadHyperParams("./hyperparams.yaml"); loadErr == nil {
		cfg.ApplyOverrides(hp)
	}

	appCtx, appCancel := context.WithCancel(context.TODO())
	defer appCancel()

	actionCount := actionspace.New().Size()
	best := approximator.NewLinear(actionCount, encoder.Width, cfg.LearningRate)
	trainer := train.NewTrainer(cfg, best, *nworkers)

	broadcaster := progress.NewBroadcaster()
	trainer.Progress = func(iter int, record train.HistoryRecord) {
		status := "training"
		if record.Promoted {
			status = "promoted"
		}
		broadcaster.Publish(progress.Update{
			Iteration:       iter,
			TotalIterations: cfg.Iterations,
			ReplaySize:      record.ReplaySize,
			PolicyLoss:      record.PolicyLoss,
			ValueLoss:       record.ValueLoss,
			GatingWinRate:   record.GatingWinRate,
			Promoted:        record.Promoted,
			Status:          status,
		})
		if *verbose {
			fmt.Printf("iteration %d: replay=%d policy_loss=%.4f value_loss=%.4f gating_win_rate=%.3f promoted=%v\n",
				iter, record.ReplaySize, record.PolicyLoss, record.ValueLoss, record.GatingWinRate, record.Promoted)
		}
	}

	newCandidate := func(current train.Checkpointer) train.Checkpointer {
		return current.(*approximator.Linear).Clone()
	}
	expectations := train.Expectations{
		PrimaryTarget:   "candidate gating win rate >= gating-threshold against the current best",
		BenchmarkTarget: "policy and value loss trend downward across iterations",
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	go func() {
		if _, trainErr := trainer.Run(appCtx, newCandidate, expectations, createdAt); trainErr != nil {
			fmt.Println("training stopped:", trainErr)
		}
	}()

	srv := progress.NewServer(addr, broadcaster)
	return srv.Serve()
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
	}
}
