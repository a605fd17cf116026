// Package encoder turns a (state, perspective) pair into the fixed-length
// numeric feature vector the search and training loop feed to an
// Evaluator.
package encoder

import "duel/engine"

// globalScalars is the count of per-state scalars preceding the per-side
// construct/monster features (§4.4 item 1).
const globalScalars = 9

// perStackFeatures and perMonsterFeatures are the widths of one
// construct-slot and one monster-slot feature group.
const (
	perStackFeatures   = 2
	perMonsterFeatures = 8
)

// Width is the fixed feature-vector length the encoder always produces.
const Width = globalScalars + 2*(3*perStackFeatures+3*perMonsterFeatures)

// Evaluator is the external policy/value approximator MCTS queries. It must
// be side-effect-free and safe to call concurrently from search goroutines.
type Evaluator interface {
	Evaluate(features []float64) (priorLogits []float64, value float64)
}

// Encode builds the Width-length feature vector for state from player's
// perspective.
func Encode(state *engine.GameState, player int) []float64 {
	me := state.Players[player]
	opp := state.Players[engine.Opponent(player)]

	feats := make([]float64, 0, Width)
	feats = append(feats,
		float64(me.LP)/8000.0,
		float64(opp.LP)/8000.0,
		float64(len(me.Hand))/12.0,
		float64(len(opp.Hand))/12.0,
		float64(len(me.Deck))/80.0,
		float64(len(opp.Deck))/80.0,
		float64(me.ExperienceTokens)/10.0,
		float64(opp.ExperienceTokens)/10.0,
		boolf(state.CurrentPlayer == player),
	)

	feats = encodeSide(feats, me)
	feats = encodeSide(feats, opp)
	return feats
}

func encodeSide(feats []float64, p *engine.PlayerZone) []float64 {
	for _, stack := range p.Constructs {
		if stack == nil {
			feats = append(feats, 0.0, 0.0)
		} else {
			feats = append(feats, 1.0, float64(len(stack.Cards))/3.0)
		}
	}
	for _, m := range p.Monsters {
		if m == nil {
			feats = append(feats, 0, 0, 0, 0, 0, 0, 0, 0)
		} else {
			feats = append(feats,
				1.0,
				float64(m.Atk)/10000.0,
				float64(m.BaseN)/500.0,
				m.Power,
				boolf(m.SummoningSick),
				boolf(m.HasJobRelevance),
				boolf(m.ItemLeakageApplied),
				boolf(m.CorrectionApplied),
			)
		}
	}
	return feats
}

func boolf(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
