package engine

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func intPtr(v int) *int { return &v }

func TestSummonTrace(t *testing.T) {
	Convey("Given P1 with cog_ability, job_perf item cards and a job_relevance spell", t, func() {
		s := InitialState()
		p1 := s.Players[1]
		p1.Hand = []Card{
			makeItemCard("cog_ability"),
			makeItemCard("job_perf"),
			makeSpellCard("job_relevance"),
		}
		s.Players[2].Hand = nil

		Convey("placing both items and summoning builds the expected monster", func() {
			s = NextState(s, Action{Type: ActionPlaceCard, HandIndex: 0, Slot: 0})
			s = NextState(s, Action{Type: ActionPlaceCard, HandIndex: 0, Slot: 1})
			s = NextState(s, Action{Type: ActionSummon, PredSlot: 0, OutSlot: 1})

			m := s.Players[1].Monsters[0]
			So(m, ShouldNotBeNil)
			So(m.PredID, ShouldEqual, "cog_ability")
			So(m.OutID, ShouldEqual, "job_perf")
			So(m.SummoningSick, ShouldBeTrue)

			alpha := SpearmanBrown(1, 0.65)
			expectedAtk := Round(0.51 * math.Sqrt(alpha*alpha) * 10000)
			So(m.Atk, ShouldEqual, expectedAtk)
		})
	})
}

func TestSicknessClears(t *testing.T) {
	Convey("Given a freshly summoned monster", t, func() {
		s := InitialState()
		p1 := s.Players[1]
		p1.Hand = []Card{makeItemCard("cog_ability"), makeItemCard("job_perf")}
		s.Players[2].Hand = nil
		s = NextState(s, Action{Type: ActionPlaceCard, HandIndex: 0, Slot: 0})
		s = NextState(s, Action{Type: ActionPlaceCard, HandIndex: 0, Slot: 1})
		s = NextState(s, Action{Type: ActionSummon, PredSlot: 0, OutSlot: 1})

		Convey("two end_turns restore P1's turn with sickness cleared", func() {
			s = NextState(s, Action{Type: ActionEndTurn})
			s = NextState(s, Action{Type: ActionEndTurn})
			m := s.Players[1].Monsters[0]
			So(m.SummoningSick, ShouldBeFalse)
			So(s.CurrentPlayer, ShouldEqual, 1)
		})
	})
}

func TestLethalDirectAttack(t *testing.T) {
	Convey("Given P1 with an attacker and P2 at 100 lp with no monsters", t, func() {
		s := InitialState()
		p1 := s.Players[1]
		p1.Hand = []Card{makeItemCard("cog_ability"), makeItemCard("job_perf")}
		s.Players[2].Hand = nil
		s = NextState(s, Action{Type: ActionPlaceCard, HandIndex: 0, Slot: 0})
		s = NextState(s, Action{Type: ActionPlaceCard, HandIndex: 0, Slot: 1})
		s = NextState(s, Action{Type: ActionSummon, PredSlot: 0, OutSlot: 1})
		s = NextState(s, Action{Type: ActionEndTurn})
		s = NextState(s, Action{Type: ActionEndTurn})

		s.Players[2].Monsters = [3]*Monster{nil, nil, nil}
		s.Players[2].LP = 100

		Convey("a direct attack ends the game with P1 victorious", func() {
			s = NextState(s, Action{Type: ActionAttack, AttackerSlot: 0, TargetType: TargetLP})
			So(IsTerminal(s), ShouldBeTrue)
			So(TerminalValue(s, 1), ShouldEqual, 1)
			So(TerminalValue(s, 2), ShouldEqual, -1)
		})
	})
}

func TestItemLeakageZeroesAndClears(t *testing.T) {
	Convey("Given a summoned monster targeted by item_leakage from its opponent", t, func() {
		s := InitialState()
		p1 := s.Players[1]
		p1.Hand = []Card{makeItemCard("cog_ability"), makeItemCard("job_perf")}
		s.Players[2].Hand = []Card{makeSpellCard("item_leakage")}
		s = NextState(s, Action{Type: ActionPlaceCard, HandIndex: 0, Slot: 0})
		s = NextState(s, Action{Type: ActionPlaceCard, HandIndex: 0, Slot: 1})
		s = NextState(s, Action{Type: ActionSummon, PredSlot: 0, OutSlot: 1})
		preLeakAtk := s.Players[1].Monsters[0].Atk
		s = NextState(s, Action{Type: ActionEndTurn})

		Convey("casting it zeroes rObs and atk", func() {
			s2 := NextState(s, Action{
				Type: ActionPlaySpell, HandIndex: 0,
				TargetOwner: OwnerOpp, TargetType: TargetMonster, TargetSlot: intPtr(0),
			})
			m := s2.Players[1].Monsters[0]
			So(m.RObs, ShouldEqual, 0)
			So(m.Atk, ShouldEqual, 0)

			Convey("and end_turn clears the flag, restoring the prior atk", func() {
				s3 := NextState(s2, Action{Type: ActionEndTurn})
				s4 := NextState(s3, Action{Type: ActionEndTurn})
				restored := s4.Players[1].Monsters[0]
				So(restored.ItemLeakageApplied, ShouldBeFalse)
				So(restored.Atk, ShouldEqual, preLeakAtk)
			})
		})
	})
}

func TestRangeRestrictionHalving(t *testing.T) {
	Convey("Given a monster with atk=10000", t, func() {
		m := &Monster{
			RTrue: 1.0, PredAlpha: 1.0, OutAlpha: 1.0, ValidityMultiplier: 1.0,
			BaseN: 50, N: 50, MaxAttacks: 1,
		}
		RefreshMonsterStats(m)
		So(m.Atk, ShouldEqual, 10000)

		Convey("three range_restrict stacks halve it three times with banker's rounding", func() {
			m.RangeRestrictionStacks = 1
			RefreshMonsterStats(m)
			So(m.Atk, ShouldEqual, 5000)

			m.RangeRestrictionStacks = 2
			RefreshMonsterStats(m)
			So(m.Atk, ShouldEqual, 2500)

			m.RangeRestrictionStacks = 3
			RefreshMonsterStats(m)
			So(m.Atk, ShouldEqual, 1250)
		})
	})
}

func TestMetaConstruction(t *testing.T) {
	Convey("Given three P1 monsters sharing predId cog_ability", t, func() {
		mk := func(rObs float64, baseN int) *Monster {
			return &Monster{PredID: "cog_ability", OutID: "job_perf", RObs: rObs, BaseN: baseN, N: baseN, MaxAttacks: 1}
		}
		p := &PlayerZone{
			Monsters: [3]*Monster{mk(0.3, 50), mk(0.4, 100), mk(0.5, 150)},
		}

		Convey("meta is available and builds the expected monster", func() {
			So(LocalCanMeta(p), ShouldBeTrue)
			meta := BuildMetaMonster([]*Monster{p.Monsters[0], p.Monsters[1], p.Monsters[2]})
			So(meta.RTrue, ShouldEqual, 0.54)
			So(meta.Atk, ShouldEqual, 5400)
			So(meta.N, ShouldEqual, 300)
			So(meta.Power, ShouldEqual, 0.99)
		})
	})
}

func TestRefreshIdempotence(t *testing.T) {
	Convey("Given a built monster", t, func() {
		pred := makeConstructStackFromCard(makeItemCard("cog_ability"))
		out := makeConstructStackFromCard(makeItemCard("job_perf"))
		m := BuildMonster(pred, out)

		Convey("refreshing twice with no field changes yields identical fields", func() {
			before := *m
			RefreshMonsterStats(m)
			So(*m, ShouldResemble, before)
		})
	})
}

func TestSpearmanBrownMonotonic(t *testing.T) {
	Convey("Given a fixed reliability r in (0,1)", t, func() {
		r := 0.4
		Convey("SB(k, r) strictly increases with k", func() {
			prev := SpearmanBrown(1, r)
			for k := 2; k <= 5; k++ {
				next := SpearmanBrown(k, r)
				So(next, ShouldBeGreaterThan, prev)
				prev = next
			}
		})
	})
}

func TestEndTurnAlwaysLegalAndTogglesPlayer(t *testing.T) {
	Convey("Given any active state", t, func() {
		s := InitialState()

		Convey("end_turn is legal and switches currentPlayer", func() {
			found := false
			for _, a := range LegalActions(s) {
				if a.Type == ActionEndTurn {
					found = true
				}
			}
			So(found, ShouldBeTrue)

			next := NextState(s, Action{Type: ActionEndTurn})
			So(next.CurrentPlayer, ShouldNotEqual, s.CurrentPlayer)
		})
	})
}

func TestTerminalFinality(t *testing.T) {
	Convey("Given a finished state", t, func() {
		s := InitialState()
		s.Status = StatusFinished
		s.Winner = 1

		Convey("next_state is a no-op regardless of the action", func() {
			next := NextState(s, Action{Type: ActionEndTurn})
			So(next.Status, ShouldEqual, StatusFinished)
			So(next.Winner, ShouldEqual, 1)
			So(next.CurrentPlayer, ShouldEqual, s.CurrentPlayer)
		})
	})
}

func TestHandCapAfterActions(t *testing.T) {
	Convey("Given a player below the experience threshold", t, func() {
		s := InitialState()

		Convey("hand never exceeds MaxHandSize after a non-experience_draw action", func() {
			next := NextState(s, Action{Type: ActionEndTurn})
			So(len(next.Players[1].Hand), ShouldBeLessThanOrEqualTo, 12)
			So(len(next.Players[2].Hand), ShouldBeLessThanOrEqualTo, 12)
		})
	})
}
