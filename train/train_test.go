package train

import (
	"math/rand"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"duel/actionspace"
	"duel/encoder"
	"duel/engine"
)

// stubNet wraps RuleBasedEvaluator into a Checkpointer for tests: Fit
// reports a fixed diagnostic loss pair and SaveCheckpoint is a no-op write,
// since the approximator's internals are out of scope.
type stubNet struct {
	encoder.RuleBasedEvaluator
}

func (s stubNet) Fit(batch []Sample) (float64, float64) {
	return 1.0, 1.0
}

func (s stubNet) SaveCheckpoint(path string) error {
	return os.WriteFile(path, []byte("stub"), 0o644)
}

func TestReplayBufferEvictsOldest(t *testing.T) {
	Convey("Given a replay buffer capped at 4 samples", t, func() {
		rb := NewReplayBuffer(4)
		rb.Add([]Sample{{Value: 1}, {Value: 2}})
		rb.Add([]Sample{{Value: 3}, {Value: 4}})

		Convey("it holds exactly its capacity", func() {
			So(rb.Len(), ShouldEqual, 4)
		})

		Convey("adding beyond capacity evicts the oldest entries", func() {
			rb.Add([]Sample{{Value: 5}, {Value: 6}})
			So(rb.Len(), ShouldEqual, 4)
			rng := rand.New(rand.NewSource(1))
			batch := rb.Sample(4, rng)
			values := map[float64]bool{}
			for _, s := range batch {
				values[s.Value] = true
			}
			So(values[1], ShouldBeFalse)
			So(values[2], ShouldBeFalse)
			So(values[5], ShouldBeTrue)
			So(values[6], ShouldBeTrue)
		})
	})
}

func TestChooseActionConcentratesPastTempWindow(t *testing.T) {
	Convey("Given a policy and a move past the temperature window", t, func() {
		policy := []float64{0.1, 0.6, 0.3}
		cfg := DefaultConfig()
		cfg.TempOpeningMoves = 2
		cfg.Temperature = 1.0
		rng := rand.New(rand.NewSource(3))

		Convey("at tau=0.1 (post-window) repeated draws still concentrate on the max", func() {
			counts := map[int]int{}
			for i := 0; i < 50; i++ {
				counts[chooseAction(policy, 5, cfg, rng)]++
			}
			So(counts[1], ShouldBeGreaterThan, counts[0])
			So(counts[1], ShouldBeGreaterThan, counts[2])
		})
	})
}

func TestOutcomeWinnerLPTiebreak(t *testing.T) {
	Convey("Given a non-terminal state with unequal lp", t, func() {
		s := engine.InitialState()
		s.Players[1].LP = 500
		s.Players[2].LP = 1000

		Convey("the higher-lp player is declared the winner", func() {
			So(outcomeWinner(s), ShouldEqual, 2)
		})
	})

	Convey("Given a non-terminal state with tied lp", t, func() {
		s := engine.InitialState()

		Convey("ties favor player 1", func() {
			So(outcomeWinner(s), ShouldEqual, 1)
		})
	})
}

func TestEvaluateCandidateRespectsGatingThreshold(t *testing.T) {
	Convey("Given two identical stub evaluators", t, func() {
		space := actionspace.New()
		cfg := DefaultConfig()
		cfg.Simulations = 4
		cfg.MaxGameMoves = 20
		cfg.EvaluationGames = 4
		cfg.GatingThreshold = 0.9

		candidate := stubNet{encoder.RuleBasedEvaluator{ActionCount: space.Size()}}
		best := stubNet{encoder.RuleBasedEvaluator{ActionCount: space.Size()}}
		rng := rand.New(rand.NewSource(9))

		Convey("an evenly matched pair does not clear a high gating threshold", func() {
			result := EvaluateCandidate(candidate, best, space, cfg, rng)
			So(result.Wins+result.Losses, ShouldEqual, cfg.EvaluationGames)
			So(result.Promoted, ShouldBeFalse)
		})
	})
}
