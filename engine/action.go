package engine

import "encoding/json"

// ActionType discriminates the Action tagged variant.
type ActionType string

const (
	ActionEndTurn        ActionType = "end_turn"
	ActionMeta           ActionType = "meta"
	ActionExperienceDraw ActionType = "experience_draw"
	ActionDiscardCard    ActionType = "discard_card"
	ActionPlaceCard      ActionType = "place_card"
	ActionPlaySpell      ActionType = "play_spell"
	ActionSummon         ActionType = "summon"
	ActionAttack         ActionType = "attack"
)

// TargetOwner names whose zone a play_spell targets.
type TargetOwner string

const (
	OwnerMe  TargetOwner = "me"
	OwnerOpp TargetOwner = "opp"
)

// TargetType names the kind of slot an action targets.
type TargetType string

const (
	TargetMonster   TargetType = "monster"
	TargetConstruct TargetType = "construct"
	TargetLP        TargetType = "lp"
)

// Action is a tagged variant over every move the engine accepts. Only the
// fields relevant to Type are meaningful; TargetSlot and
// ReplaceMonsterSlot are pointers so "absent" (JSON null) is distinguishable
// from slot 0.
type Action struct {
	Type               ActionType
	HandIndex          int
	Slot               int
	TargetOwner        TargetOwner
	TargetType         TargetType
	TargetSlot         *int
	PredSlot           int
	OutSlot            int
	ReplaceMonsterSlot *int
	AttackerSlot       int
}

func intp(v int) *int { return &v }

// Key returns the canonical, sort-keyed, compact JSON serialization of a,
// used as the bijection key in package actionspace and for persisted
// policy records.
func (a Action) Key() string {
	b, err := json.Marshal(a.canonical())
	if err != nil {
		panic(err)
	}
	return string(b)
}

func (a Action) canonical() map[string]interface{} {
	switch a.Type {
	case ActionEndTurn, ActionMeta, ActionExperienceDraw:
		return map[string]interface{}{"type": string(a.Type)}
	case ActionDiscardCard:
		return map[string]interface{}{"type": string(a.Type), "hand_index": a.HandIndex}
	case ActionPlaceCard:
		return map[string]interface{}{"type": string(a.Type), "hand_index": a.HandIndex, "slot": a.Slot}
	case ActionPlaySpell:
		return map[string]interface{}{
			"type": string(a.Type), "hand_index": a.HandIndex,
			"target_owner": string(a.TargetOwner), "target_type": string(a.TargetType),
			"target_slot": derefOrNil(a.TargetSlot),
		}
	case ActionSummon:
		m := map[string]interface{}{"type": string(a.Type), "pred_slot": a.PredSlot, "out_slot": a.OutSlot}
		if a.ReplaceMonsterSlot != nil {
			m["replace_monster_slot"] = *a.ReplaceMonsterSlot
		}
		return m
	case ActionAttack:
		return map[string]interface{}{
			"type": string(a.Type), "attacker_slot": a.AttackerSlot,
			"target_type": string(a.TargetType), "target_slot": derefOrNil(a.TargetSlot),
		}
	default:
		panic("engine: unknown action type " + string(a.Type))
	}
}

func derefOrNil(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
