package engine

import "duel/rules"

// NextState applies action to a deep clone of s and returns the result. A
// finished game is returned unchanged (cloned but untouched). Actions that
// fail their apply-time guard are silent no-ops — the clone is still
// returned, per §7's "game rule guard" error kind.
func NextState(s *GameState, action Action) *GameState {
	clone := s.Clone()
	if clone.Status == StatusFinished {
		return clone
	}

	pid := clone.CurrentPlayer
	oppid := Opponent(pid)
	me := clone.Players[pid]
	opp := clone.Players[oppid]

	switch action.Type {
	case ActionPlaceCard:
		applyPlaceCard(me, action)
	case ActionDiscardCard:
		applyDiscardCard(me, action)
	case ActionExperienceDraw:
		applyExperienceDraw(me)
	case ActionSummon:
		applySummon(me, action)
	case ActionPlaySpell:
		applyPlaySpell(me, opp, action)
	case ActionAttack:
		applyAttack(me, opp, action)
	case ActionMeta:
		applyMeta(me)
	case ActionEndTurn:
		applyEndTurn(clone, me, opp, oppid)
	}

	markGameOver(clone)
	return clone
}

func applyPlaceCard(me *PlayerZone, action Action) {
	if action.HandIndex < 0 || action.HandIndex >= len(me.Hand) {
		return
	}
	card := me.Hand[action.HandIndex]
	if card.Kind != ItemCard {
		return
	}
	placed := removeHandIndex(me, action.HandIndex)
	slot := action.Slot
	if me.Constructs[slot] == nil {
		me.Constructs[slot] = makeConstructStackFromCard(placed)
	} else {
		me.Constructs[slot].Cards = append(me.Constructs[slot].Cards, placed)
	}
}

func applyDiscardCard(me *PlayerZone, action Action) {
	if action.HandIndex < 0 || action.HandIndex >= len(me.Hand) {
		return
	}
	removeHandIndex(me, action.HandIndex)
	if me.PendingDiscard > 0 {
		me.PendingDiscard--
	}
}

func applyExperienceDraw(me *PlayerZone) {
	me.ExperienceTokens -= rules.ExperienceMissThreshold
	drawCards(me, rules.ExperienceDrawCount, true)
	enforceHandLimit(me)
}

func applySummon(me *PlayerZone, action Action) {
	pred := me.Constructs[action.PredSlot]
	out := me.Constructs[action.OutSlot]
	if pred == nil || out == nil {
		return
	}
	if pred.Type != rules.Predictor || out.Type != rules.Outcome || action.PredSlot == action.OutSlot {
		return
	}
	monster := BuildMonster(pred, out)
	me.Constructs[action.PredSlot] = nil
	me.Constructs[action.OutSlot] = nil
	mslot := firstEmptySlot(me.Monsters)
	if mslot == -1 {
		mslot = 0
		if action.ReplaceMonsterSlot != nil {
			mslot = *action.ReplaceMonsterSlot
		}
	}
	me.Monsters[mslot] = monster
	me.Summoned = true
}

func applyPlaySpell(me, opp *PlayerZone, action Action) {
	if action.HandIndex < 0 || action.HandIndex >= len(me.Hand) {
		return
	}
	card := removeHandIndex(me, action.HandIndex)
	owner := me
	ownerIsMe := true
	if action.TargetOwner == OwnerOpp {
		owner = opp
		ownerIsMe = false
	}
	ts := -1
	if action.TargetSlot != nil {
		ts = *action.TargetSlot
	}
	if ts < 0 || ts > 2 {
		return
	}
	cid := card.SpellID

	if action.TargetType == TargetMonster {
		target := owner.Monsters[ts]
		if target == nil {
			return
		}
		switch cid {
		case "sample_size":
			target.N = int(Clamp(float64(target.N+150), 50, 420))
			RefreshMonsterStats(target)
		case "job_relevance":
			if ownerIsMe {
				target.HasJobRelevance = true
			}
		case "imputation":
			if ownerIsMe {
				target.HasImputation = true
			}
		case "p_hacking":
			if ownerIsMe {
				target.HasPHacking = true
			}
		case "practice_effect":
			target.HasPracticeEffect = true
		case "missing_data":
			if target.HasImputation {
				target.HasImputation = false
			} else {
				owner.Monsters[ts] = nil
			}
		case "range_restrict":
			if !ownerIsMe {
				target.RangeRestrictionStacks = max(0, target.RangeRestrictionStacks) + 1
				RefreshMonsterStats(target)
			}
		case "item_leakage":
			if !ownerIsMe {
				target.ItemLeakageApplied = true
				RefreshMonsterStats(target)
			}
		case "correction":
			if ownerIsMe {
				target.CorrectionApplied = true
				target.RangeRestrictionStacks = 0
				RefreshMonsterStats(target)
			}
		case "bootstrapping":
			if ownerIsMe {
				target.BaseN += 50
				target.N += 50
				RefreshMonsterStats(target)
			}
		case "criterion_contam":
			if !ownerIsMe {
				target.N = max(1, target.N/2)
				target.BaseN = max(1, target.BaseN/2)
				RefreshMonsterStats(target)
			}
		}
		return
	}

	// TargetType == TargetConstruct
	target := owner.Constructs[ts]
	if target == nil {
		return
	}
	switch cid {
	case "missing_data":
		if len(target.Cards) > 0 {
			target.Cards = target.Cards[:len(target.Cards)-1]
			if len(target.Cards) == 0 {
				owner.Constructs[ts] = nil
			}
		}
	case "item_analysis":
		if ownerIsMe && len(target.Cards) < 3 {
			target.Cards = append(target.Cards, target.Cards[len(target.Cards)-1])
		}
	case "construct_drift":
		if !ownerIsMe {
			if len(target.Cards) > 1 {
				target.Cards = target.Cards[:len(target.Cards)-1]
			} else {
				owner.Constructs[ts] = nil
			}
		}
	}
}

func applyAttack(me, opp *PlayerZone, action Action) {
	attacker := me.Monsters[action.AttackerSlot]
	if attacker == nil {
		return
	}
	attacker.AttacksMade++
	if action.TargetType == TargetLP {
		opp.LP = max(0, opp.LP-attacker.Atk)
	} else {
		ts := *action.TargetSlot
		defender := opp.Monsters[ts]
		if defender != nil {
			switch {
			case attacker.Atk > defender.Atk:
				opp.LP = max(0, opp.LP-(attacker.Atk-defender.Atk))
				opp.Monsters[ts] = nil
			case attacker.Atk < defender.Atk:
				me.LP = max(0, me.LP-(defender.Atk-attacker.Atk))
				me.Monsters[action.AttackerSlot] = nil
			default:
				me.Monsters[action.AttackerSlot] = nil
				opp.Monsters[ts] = nil
			}
		}
	}
	if survivor := me.Monsters[action.AttackerSlot]; survivor != nil && survivor.HasPHacking {
		me.Monsters[action.AttackerSlot] = nil
	}
}

func applyMeta(me *PlayerZone) {
	if !LocalCanMeta(me) {
		return
	}
	mats := make([]*Monster, 0, 3)
	for _, m := range me.Monsters {
		if m != nil {
			mats = append(mats, m)
		}
	}
	me.Monsters = [3]*Monster{nil, nil, nil}
	me.Monsters[0] = BuildMetaMonster(mats)
}

func applyEndTurn(s *GameState, me, opp *PlayerZone, oppid int) {
	for _, m := range me.Monsters {
		if m != nil {
			m.CorrectionApplied = false
			m.ItemLeakageApplied = false
			RefreshMonsterStats(m)
		}
	}
	s.CurrentPlayer = oppid
	np := opp
	np.Summoned = false
	drawCards(np, 1, true)
	enforceHandLimit(np)
	for _, m := range np.Monsters {
		if m != nil {
			m.SummoningSick = false
			m.AttacksMade = 0
			m.MaxAttacks = 1
			RefreshMonsterStats(m)
		}
	}
}

func markGameOver(s *GameState) {
	p1, p2 := s.Players[1], s.Players[2]
	if p1.LP <= 0 || p2.LP <= 0 {
		s.Status = StatusFinished
		if p1.LP > 0 {
			s.Winner = 1
		} else {
			s.Winner = 2
		}
	}
}

// removeHandIndex deletes and returns hand[i], preserving the rest of the
// hand's order.
func removeHandIndex(p *PlayerZone, i int) Card {
	card := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return card
}

// IsTerminal reports whether s has reached a finished state.
func IsTerminal(s *GameState) bool {
	return s.Status == StatusFinished
}

// TerminalValue returns +1/-1/0 for a win/loss/undecided outcome from
// player's perspective. Only meaningful once IsTerminal(s) is true.
func TerminalValue(s *GameState, player int) int {
	if !IsTerminal(s) {
		return 0
	}
	if s.Winner == player {
		return 1
	}
	if s.Winner == 0 {
		return 0
	}
	return -1
}
