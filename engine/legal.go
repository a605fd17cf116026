package engine

import "duel/rules"

// LegalActions enumerates the actions available to the current player in
// s, in the fixed order §4.2 specifies. A finished game has no legal
// actions.
func LegalActions(s *GameState) []Action {
	if s.Status == StatusFinished {
		return nil
	}
	pid := s.CurrentPlayer
	oppid := Opponent(pid)
	p := s.Players[pid]
	opp := s.Players[oppid]

	var moves []Action

	if p.PendingDiscard > 0 {
		for i := range p.Hand {
			moves = append(moves, Action{Type: ActionDiscardCard, HandIndex: i})
		}
		return moves
	}

	for h, card := range p.Hand {
		if card.Kind == ItemCard {
			for slot := 0; slot < 3; slot++ {
				stack := p.Constructs[slot]
				if stack != nil && stack.ConstructID != card.ConstructID {
					continue
				}
				if stack != nil && len(stack.Cards) >= 3 {
					continue
				}
				moves = append(moves, Action{Type: ActionPlaceCard, HandIndex: h, Slot: slot})
			}
			continue
		}

		cid := card.SpellID
		if rules.TargetingMonsterSpells[cid] {
			for _, owner := range []TargetOwner{OwnerMe, OwnerOpp} {
				arr := ownerMonsters(p, opp, owner)
				for ts, m := range arr {
					if m != nil {
						moves = append(moves, Action{
							Type: ActionPlaySpell, HandIndex: h,
							TargetOwner: owner, TargetType: TargetMonster, TargetSlot: intp(ts),
						})
					}
				}
			}
		}
		if rules.TargetingConstructSpells[cid] {
			for _, owner := range []TargetOwner{OwnerMe, OwnerOpp} {
				arr := ownerConstructs(p, opp, owner)
				for ts, c := range arr {
					if c != nil {
						moves = append(moves, Action{
							Type: ActionPlaySpell, HandIndex: h,
							TargetOwner: owner, TargetType: TargetConstruct, TargetSlot: intp(ts),
						})
					}
				}
			}
		}
	}

	if p.ExperienceTokens >= rules.ExperienceMissThreshold && len(p.Deck) > 0 {
		moves = append(moves, Action{Type: ActionExperienceDraw})
	}

	if !p.Summoned {
		openSlot := firstEmptySlot(p.Monsters)
		for predSlot := 0; predSlot < 3; predSlot++ {
			for outSlot := 0; outSlot < 3; outSlot++ {
				if openSlot != -1 {
					moves = append(moves, Action{Type: ActionSummon, PredSlot: predSlot, OutSlot: outSlot})
				} else {
					for r := 0; r < 3; r++ {
						if p.Monsters[r] != nil {
							moves = append(moves, Action{
								Type: ActionSummon, PredSlot: predSlot, OutSlot: outSlot, ReplaceMonsterSlot: intp(r),
							})
						}
					}
				}
			}
		}
	}

	if LocalCanMeta(p) {
		moves = append(moves, Action{Type: ActionMeta})
	}

	opponentHasMonsters := false
	for _, m := range opp.Monsters {
		if m != nil {
			opponentHasMonsters = true
			break
		}
	}
	for a, m := range p.Monsters {
		if !CanMonsterAttack(m) {
			continue
		}
		if !opponentHasMonsters {
			moves = append(moves, Action{Type: ActionAttack, AttackerSlot: a, TargetType: TargetLP})
		}
		for t, d := range opp.Monsters {
			if d != nil {
				moves = append(moves, Action{Type: ActionAttack, AttackerSlot: a, TargetType: TargetMonster, TargetSlot: intp(t)})
			}
		}
	}

	moves = append(moves, Action{Type: ActionEndTurn})
	return moves
}

func ownerMonsters(me, opp *PlayerZone, owner TargetOwner) [3]*Monster {
	if owner == OwnerMe {
		return me.Monsters
	}
	return opp.Monsters
}

func ownerConstructs(me, opp *PlayerZone, owner TargetOwner) [3]*ConstructStack {
	if owner == OwnerMe {
		return me.Constructs
	}
	return opp.Constructs
}
