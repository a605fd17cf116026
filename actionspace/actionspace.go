// Package actionspace builds the static bijection between action
// descriptors and dense integer ids that package search and package train
// operate over.
package actionspace

import (
	"duel/engine"
	"duel/rules"
)

// Space is a fixed, built-once mapping between engine.Action values and
// dense integer ids. The registration order below is normative: id
// assignment must be stable across processes for checkpoints and persisted
// policy records to remain meaningful.
type Space struct {
	actions  []engine.Action
	actionID map[string]int
}

// New builds the full action space once. Callers should build a single
// Space and share it; construction walks every slot/hand-index permutation.
func New() *Space {
	s := &Space{actionID: make(map[string]int)}

	s.register(engine.Action{Type: engine.ActionEndTurn})
	s.register(engine.Action{Type: engine.ActionMeta})
	s.register(engine.Action{Type: engine.ActionExperienceDraw})

	for h := 0; h < rules.MaxHandSize; h++ {
		s.register(engine.Action{Type: engine.ActionDiscardCard, HandIndex: h})
		for slot := 0; slot < 3; slot++ {
			s.register(engine.Action{Type: engine.ActionPlaceCard, HandIndex: h, Slot: slot})
		}
		for _, owner := range []engine.TargetOwner{engine.OwnerMe, engine.OwnerOpp} {
			for targetSlot := 0; targetSlot < 3; targetSlot++ {
				ts := targetSlot
				s.register(engine.Action{
					Type: engine.ActionPlaySpell, HandIndex: h,
					TargetOwner: owner, TargetType: engine.TargetMonster, TargetSlot: &ts,
				})
				ts2 := targetSlot
				s.register(engine.Action{
					Type: engine.ActionPlaySpell, HandIndex: h,
					TargetOwner: owner, TargetType: engine.TargetConstruct, TargetSlot: &ts2,
				})
			}
		}
	}

	for predSlot := 0; predSlot < 3; predSlot++ {
		for outSlot := 0; outSlot < 3; outSlot++ {
			s.register(engine.Action{Type: engine.ActionSummon, PredSlot: predSlot, OutSlot: outSlot})
			for rep := 0; rep < 3; rep++ {
				r := rep
				s.register(engine.Action{
					Type: engine.ActionSummon, PredSlot: predSlot, OutSlot: outSlot, ReplaceMonsterSlot: &r,
				})
			}
		}
	}

	for attackerSlot := 0; attackerSlot < 3; attackerSlot++ {
		s.register(engine.Action{Type: engine.ActionAttack, AttackerSlot: attackerSlot, TargetType: engine.TargetLP})
		for targetSlot := 0; targetSlot < 3; targetSlot++ {
			ts := targetSlot
			s.register(engine.Action{
				Type: engine.ActionAttack, AttackerSlot: attackerSlot, TargetType: engine.TargetMonster, TargetSlot: &ts,
			})
		}
	}

	return s
}

func (s *Space) register(a engine.Action) {
	k := a.Key()
	if _, ok := s.actionID[k]; !ok {
		s.actionID[k] = len(s.actions)
		s.actions = append(s.actions, a)
	}
}

// Size returns the total number of distinct actions, |A|.
func (s *Space) Size() int {
	return len(s.actions)
}

// Action returns the action registered at id. Callers must only pass ids
// returned by ToID or obtained from iterating the space — an out-of-range
// id is a programmer error.
func (s *Space) Action(id int) engine.Action {
	return s.actions[id]
}

// ToID returns a's dense id, and whether a was found in the space. Unknown
// actions are never an error at this layer — §4.3 requires callers to skip
// them rather than fail.
func (s *Space) ToID(a engine.Action) (int, bool) {
	id, ok := s.actionID[a.Key()]
	return id, ok
}

// LegalIDs maps LegalActions(state) through the space, silently skipping
// any action absent from the static space (should not occur in practice,
// since the space is built to cover every shape legal_actions produces).
func (s *Space) LegalIDs(state *engine.GameState) []int {
	legal := engine.LegalActions(state)
	ids := make([]int, 0, len(legal))
	for _, a := range legal {
		if id, ok := s.ToID(a); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
