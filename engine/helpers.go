package engine

import (
	"math"
	"strings"

	"duel/rules"
)

// Clamp bounds v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round matches Python's round(): ties round to the nearest even integer,
// not away from zero, so atk values computed from an exact .5 agree with
// the Python reference engine.
func Round(x float64) int {
	floor := math.Floor(x)
	diff := x - floor
	switch {
	case diff < 0.5:
		return int(floor)
	case diff > 0.5:
		return int(floor) + 1
	default:
		if int64(floor)%2 == 0 {
			return int(floor)
		}
		return int(floor) + 1
	}
}

// SpearmanBrown is the reliability-correction formula SB(k, r) = k*r / (1 + (k-1)*r).
func SpearmanBrown(k int, r float64) float64 {
	kf := float64(k)
	return (kf * r) / (1 + (kf-1)*r)
}

// AlphaFromStack returns the stack's Spearman-Brown-corrected reliability,
// or 0 for an empty/nil stack.
func AlphaFromStack(stack *ConstructStack) float64 {
	if stack == nil || len(stack.Cards) == 0 {
		return 0
	}
	return SpearmanBrown(len(stack.Cards), stack.Cards[0].AvgR)
}

// AdverseImpactStarsFromBwd maps a raw adverse-impact ratio to a 1..5 star rating.
func AdverseImpactStarsFromBwd(rawBwd float64) int {
	d := math.Abs(rawBwd)
	switch {
	case d <= 0.10:
		return 5
	case d <= 0.25:
		return 4
	case d <= 0.45:
		return 3
	case d <= 0.65:
		return 2
	default:
		return 1
	}
}

// PairAdverseImpact bundles the derived adverse-impact fields for a
// predictor/outcome construct pair.
type PairAdverseImpact struct {
	Bwd                  float64
	Stars                int
	RequiresJobRelevance bool
	StarsText            string
}

// GetPairAdverseImpact looks up and derives the adverse-impact rating for a pair.
func GetPairAdverseImpact(predID, outID string) PairAdverseImpact {
	bwd := rules.AdverseImpactBwdOf(predID, outID)
	stars := AdverseImpactStarsFromBwd(bwd)
	return PairAdverseImpact{
		Bwd:                  bwd,
		Stars:                stars,
		RequiresJobRelevance: stars <= 3,
		StarsText:            strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars),
	}
}

// CalcObservedValidity is the pre-monster observed-validity estimate for a
// potential summon of predStack x outStack.
func CalcObservedValidity(predStack, outStack *ConstructStack) float64 {
	rho := rules.TrueValidityOf(predStack.ConstructID, outStack.ConstructID)
	aP := math.Max(0.05, AlphaFromStack(predStack))
	aO := math.Max(0.05, AlphaFromStack(outStack))
	return rho * math.Sqrt(aP*aO)
}

// ApproxPowerFromROBSandN is the monotonic power approximation used in the
// monster refresh rule.
func ApproxPowerFromROBSandN(rObs float64, n int) float64 {
	r := Clamp(math.Abs(rObs), 0, 0.999999)
	nf := math.Max(4, float64(n))
	return Clamp(0.05+0.94*r*((nf-3)/nf), 0.05, 0.99)
}

// RefreshMonsterStats recomputes a monster's derived numeric fields in
// place, following the refresh rule's fixed step order.
func RefreshMonsterStats(m *Monster) {
	if m.IsMeta {
		m.Power = Clamp(m.Power, 0.7, 0.99)
		return
	}
	validityMultiplier := math.Max(0, m.ValidityMultiplier)
	effectiveMultiplier := validityMultiplier
	if m.ItemLeakageApplied {
		effectiveMultiplier = 0
	}
	m.RObs = m.RTrue * math.Sqrt(math.Max(0.05, m.PredAlpha)*math.Max(0.05, m.OutAlpha)) * effectiveMultiplier
	m.BaseAtk = Round(math.Abs(m.RObs) * 10000)
	correctionBase := Round(math.Abs(m.RTrue) * effectiveMultiplier * 10000)
	effectiveAtkBase := m.BaseAtk
	if m.CorrectionApplied {
		effectiveAtkBase = correctionBase
	}
	nextAtk := effectiveAtkBase
	for i := 0; i < max(0, m.RangeRestrictionStacks); i++ {
		nextAtk = Round(float64(nextAtk) / 2)
	}
	m.Atk = nextAtk
	m.Power = ApproxPowerFromROBSandN(math.Abs(float64(m.Atk))/10000.0, m.N)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// BuildMonster derives a freshly summoned monster from a predictor stack
// and an outcome stack, applying the refresh rule once.
func BuildMonster(predStack, outStack *ConstructStack) *Monster {
	rho := rules.TrueValidityOf(predStack.ConstructID, outStack.ConstructID)
	ai := GetPairAdverseImpact(predStack.ConstructID, outStack.ConstructID)
	m := &Monster{
		Name:                 predStack.ConstructID + "×" + outStack.ConstructID,
		PredID:               predStack.ConstructID,
		OutID:                outStack.ConstructID,
		PredAlpha:            AlphaFromStack(predStack),
		OutAlpha:             AlphaFromStack(outStack),
		RTrue:                rho,
		AdverseImpact:        ai.Bwd,
		AdverseStars:         ai.Stars,
		AdverseStarsText:     ai.StarsText,
		RequiresJobRelevance: ai.RequiresJobRelevance,
		BaseN:                50,
		N:                    50,
		Power:                0.1,
		MaxAttacks:           1,
		SummoningSick:        true,
		ValidityMultiplier:   1,
	}
	RefreshMonsterStats(m)
	return m
}

// BuildMetaMonster combines three aligned monsters into one meta monster.
func BuildMetaMonster(monsters []*Monster) *Monster {
	sumAbsRObs := 0.0
	combinedN := 0
	for _, m := range monsters {
		sumAbsRObs += math.Abs(m.RObs)
		combinedN += m.BaseN
	}
	meanR := sumAbsRObs / float64(len(monsters))
	metaRTrue := Clamp(meanR*1.35, 0.35, 0.95)
	baseAtk := Round(math.Abs(metaRTrue) * 10000)
	m := &Monster{
		Name:                 "Meta-Analytic Titan",
		PredID:               "META",
		OutID:                "META",
		PredAlpha:            0.99,
		OutAlpha:             0.99,
		RTrue:                metaRTrue,
		AdverseImpact:        0,
		AdverseStars:         5,
		AdverseStarsText:     "★★★★★",
		RequiresJobRelevance: false,
		RObs:                 metaRTrue,
		BaseAtk:              baseAtk,
		Atk:                  baseAtk,
		BaseN:                combinedN,
		N:                    combinedN,
		MaxAttacks:           1,
		SummoningSick:        false,
		ValidityMultiplier:   1,
		IsMeta:               true,
	}
	m.Power = Clamp(0.9+float64(m.N)/1000.0, 0.9, 0.99)
	return m
}

// LocalCanMeta reports whether p's three monster slots are eligible to fuse
// into a meta monster: all occupied, none already meta, and sharing either
// predId or outId.
func LocalCanMeta(p *PlayerZone) bool {
	m := p.Monsters
	if m[0] == nil || m[1] == nil || m[2] == nil {
		return false
	}
	samePred := true
	sameOut := true
	for _, x := range m {
		if x.PredID != m[0].PredID || x.PredID == "META" {
			samePred = false
		}
		if x.OutID != m[0].OutID || x.OutID == "META" {
			sameOut = false
		}
	}
	return samePred || sameOut
}

// CanMonsterAttack reports whether m is eligible to declare an attack this turn.
func CanMonsterAttack(m *Monster) bool {
	if m == nil || m.SummoningSick || m.AttacksMade >= m.MaxAttacks {
		return false
	}
	if m.RequiresJobRelevance && !m.HasJobRelevance {
		return false
	}
	return true
}

func firstEmptySlot(arr [3]*Monster) int {
	for i, x := range arr {
		if x == nil {
			return i
		}
	}
	return -1
}
