package encoder

// UniformEvaluator returns flat priors and a zero value for any input,
// satisfying the Evaluator contract without any learned parameters. It
// makes the engine and search testable without a real approximator (§9).
type UniformEvaluator struct {
	ActionCount int
}

// Evaluate implements Evaluator.
func (u UniformEvaluator) Evaluate(features []float64) ([]float64, float64) {
	logits := make([]float64, u.ActionCount)
	return logits, 0.0
}

// RuleBasedEvaluator derives a value estimate directly from the encoded lp
// difference (features[0]-features[1], both already lp/8000) instead of a
// learned head, and otherwise returns flat priors. Useful as a cheap,
// deterministic oracle for search unit tests.
type RuleBasedEvaluator struct {
	ActionCount int
}

// Evaluate implements Evaluator.
func (r RuleBasedEvaluator) Evaluate(features []float64) ([]float64, float64) {
	logits := make([]float64, r.ActionCount)
	value := 0.0
	if len(features) >= 2 {
		value = features[0] - features[1]
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
	}
	return logits, value
}
