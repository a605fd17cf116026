// Package rules holds the static tables that drive Psychometric Duel: the
// construct catalogue, the validity and adverse-impact matrices, the
// starting-deck composition, and the spell targeting classes. Nothing here
// depends on game state; it is read-only reference data assembled once at
// package init, the way the teacher keeps its track layouts as package vars.
package rules

// ConstructType classifies a construct as a predictor or an outcome.
type ConstructType string

const (
	Predictor ConstructType = "predictor"
	Outcome   ConstructType = "outcome"
)

// Construct describes one measurable attribute a player can collect items for.
type Construct struct {
	Name  string
	Type  ConstructType
	Short string
	AvgR  float64
}

// Constructs is the full eight-entry catalogue, keyed by construct id.
var Constructs = map[string]Construct{
	"cog_ability": {Name: "Cognitive Ability", Type: Predictor, Short: "COG", AvgR: 0.65},
	"conscient":   {Name: "Conscientiousness", Type: Predictor, Short: "CON", AvgR: 0.45},
	"struct_int":  {Name: "Struct. Interview", Type: Predictor, Short: "INT", AvgR: 0.55},
	"work_sample": {Name: "Work Sample", Type: Predictor, Short: "WST", AvgR: 0.50},
	"job_perf":    {Name: "Job Performance", Type: Outcome, Short: "PERF", AvgR: 0.52},
	"turnover":    {Name: "Turnover", Type: Outcome, Short: "TURN", AvgR: 0.40},
	"job_sat":     {Name: "Job Satisfaction", Type: Outcome, Short: "SAT", AvgR: 0.48},
	"ocb":         {Name: "OCB", Type: Outcome, Short: "OCB", AvgR: 0.44},
}

// DefaultTrueValidity is the TRUE_VALIDITY fallback for an (pred, out) pair
// missing from the matrix below.
const DefaultTrueValidity = 0.10

// TrueValidity[predId][outId] is the full 4x4 matrix of true validities.
var TrueValidity = map[string]map[string]float64{
	"cog_ability": {"job_perf": 0.51, "turnover": 0.20, "job_sat": 0.15, "ocb": 0.12},
	"conscient":   {"job_perf": 0.31, "turnover": 0.26, "job_sat": 0.25, "ocb": 0.30},
	"struct_int":  {"job_perf": 0.51, "turnover": 0.22, "job_sat": 0.18, "ocb": 0.15},
	"work_sample": {"job_perf": 0.54, "turnover": 0.15, "job_sat": 0.12, "ocb": 0.10},
}

// DefaultAdverseImpactBwd is the ADVERSE_IMPACT_BWD fallback for a missing pair.
const DefaultAdverseImpactBwd = 0.30

// AdverseImpactBwd[predId][outId] is the full 4x4 adverse-impact matrix.
var AdverseImpactBwd = map[string]map[string]float64{
	"cog_ability": {"job_perf": 0.95, "turnover": 0.60, "job_sat": 0.58, "ocb": 0.55},
	"conscient":   {"job_perf": 0.20, "turnover": 0.05, "job_sat": 0.05, "ocb": 0.05},
	"struct_int":  {"job_perf": 0.35, "turnover": 0.22, "job_sat": 0.22, "ocb": 0.22},
	"work_sample": {"job_perf": 0.55, "turnover": 0.40, "job_sat": 0.40, "ocb": 0.40},
}

// Counts gives the deck composition: how many copies of each card id
// (construct item or spell) start in a player's deck.
var Counts = map[string]int{
	"cog_ability": 4, "conscient": 4, "struct_int": 4, "work_sample": 4,
	"job_perf": 4, "turnover": 4, "job_sat": 4, "ocb": 4,
	"sample_size": 3, "job_relevance": 4, "imputation": 1, "missing_data": 1,
	"range_restrict": 2, "item_leakage": 2, "correction": 2, "p_hacking": 1,
	"practice_effect": 2, "bootstrapping": 2, "item_analysis": 2,
	"construct_drift": 1, "criterion_contam": 1,
}

// TargetingMonsterSpells are spell ids whose legal targets are monster slots.
var TargetingMonsterSpells = map[string]bool{
	"sample_size": true, "job_relevance": true, "imputation": true, "p_hacking": true,
	"practice_effect": true, "range_restrict": true, "item_leakage": true,
	"correction": true, "bootstrapping": true, "criterion_contam": true,
}

// TargetingConstructSpells are spell ids whose legal targets are construct
// stack slots. missing_data also appears here even though its resolved
// effect can fall through to a monster target at apply time.
var TargetingConstructSpells = map[string]bool{
	"missing_data": true, "construct_drift": true, "item_analysis": true,
}

// CountsOrder fixes the deck-assembly order of Counts's keys. Counts is a
// map and Go does not preserve map iteration order, but deck composition
// must be built in a stable order for reproducible runs.
var CountsOrder = []string{
	"cog_ability", "conscient", "struct_int", "work_sample",
	"job_perf", "turnover", "job_sat", "ocb",
	"sample_size", "job_relevance", "imputation", "missing_data",
	"range_restrict", "item_leakage", "correction", "p_hacking",
	"practice_effect", "bootstrapping", "item_analysis",
	"construct_drift", "criterion_contam",
}

// Deck-shape and turn constants, normative per the external interface.
const (
	MaxHandSize             = 12
	StartingHandSize        = 12
	ExperienceMissThreshold = 4
	ExperienceDrawCount     = 3
	StartingLP              = 8000
)

// TrueValidityOf returns TRUE_VALIDITY[predId][outId], defaulting per §4.1.
func TrueValidityOf(predID, outID string) float64 {
	if row, ok := TrueValidity[predID]; ok {
		if v, ok := row[outID]; ok {
			return v
		}
	}
	return DefaultTrueValidity
}

// AdverseImpactBwdOf returns ADVERSE_IMPACT_BWD[predId][outId], defaulting per §4.1.
func AdverseImpactBwdOf(predID, outID string) float64 {
	if row, ok := AdverseImpactBwd[predID]; ok {
		if v, ok := row[outID]; ok {
			return v
		}
	}
	return DefaultAdverseImpactBwd
}
