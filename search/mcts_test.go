package search

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"duel/actionspace"
	"duel/encoder"
	"duel/engine"
)

func TestRunPolicySumsToOne(t *testing.T) {
	Convey("Given a fresh MCTS over the initial state with a uniform evaluator", t, func() {
		space := actionspace.New()
		mc := &MCTS{
			Space:          space,
			Evaluator:      encoder.UniformEvaluator{ActionCount: space.Size()},
			Simulations:    16,
			Cpuct:          1.25,
			DirichletAlpha: 0.3,
			DirichletEps:   0.25,
		}
		rng := rand.New(rand.NewSource(7))
		state := engine.InitialState()

		Convey("the returned policy sums to 1 and only touches legal ids", func() {
			policy := mc.Run(state, state.CurrentPlayer, true, rng)
			legal := make(map[int]bool)
			for _, id := range space.LegalIDs(state) {
				legal[id] = true
			}
			sum := 0.0
			for id, p := range policy {
				sum += p
				if p > 0 {
					So(legal[id], ShouldBeTrue)
				}
			}
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})
	})
}

func TestRunReproducibleWithoutNoise(t *testing.T) {
	Convey("Given dirichletEps=0 and a deterministic evaluator", t, func() {
		space := actionspace.New()
		newMCTS := func() *MCTS {
			return &MCTS{
				Space:          space,
				Evaluator:      encoder.RuleBasedEvaluator{ActionCount: space.Size()},
				Simulations:    24,
				Cpuct:          1.25,
				DirichletAlpha: 0.3,
				DirichletEps:   0,
			}
		}
		state := engine.InitialState()

		Convey("two runs under the same seed agree exactly", func() {
			p1 := newMCTS().Run(state, state.CurrentPlayer, true, rand.New(rand.NewSource(42)))
			p2 := newMCTS().Run(state, state.CurrentPlayer, true, rand.New(rand.NewSource(42)))
			So(p1, ShouldResemble, p2)
		})
	})
}

func TestVisitsConcentrateOnImmediateWin(t *testing.T) {
	Convey("Given a hand-crafted state one attack away from a win", t, func() {
		space := actionspace.New()
		s := engine.InitialState()
		p1 := s.Players[1]
		p1.Hand = []engine.Card{}
		s.Players[2].Monsters = [3]*engine.Monster{}
		s.Players[2].LP = 1
		// Give P1 a ready attacker directly.
		mats := []*engine.Monster{{
			PredID: "cog_ability", OutID: "job_perf", Atk: 10000, MaxAttacks: 1, RObs: 1,
		}}
		s.Players[1].Monsters[0] = mats[0]

		mc := &MCTS{
			Space:          space,
			Evaluator:      encoder.UniformEvaluator{ActionCount: space.Size()},
			Simulations:    64,
			Cpuct:          1.25,
			DirichletAlpha: 0.3,
			DirichletEps:   0,
		}
		rng := rand.New(rand.NewSource(1))

		Convey("visit counts favor the lethal attack over other legal moves", func() {
			policy := mc.Run(s, s.CurrentPlayer, false, rng)
			attackID, ok := space.ToID(engine.Action{Type: engine.ActionAttack, AttackerSlot: 0, TargetType: engine.TargetLP})
			So(ok, ShouldBeTrue)
			endTurnID, _ := space.ToID(engine.Action{Type: engine.ActionEndTurn})
			So(policy[attackID], ShouldBeGreaterThan, policy[endTurnID])
		})
	})
}
