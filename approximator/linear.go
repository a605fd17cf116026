// Package approximator provides a minimal default Evaluator: the core
// training loop only needs something satisfying the narrow Evaluator
// contract, never a specific architecture, so this linear policy/value
// model exists purely as a runnable plug for that seam. Swapping in a real
// tensor-backed network means implementing train.Trainable and
// train.Checkpointer and changing the two places in main.go that construct
// and clone *approximator.Linear; the train, search and engine packages do
// not change.
package approximator

import (
	"bufio"
	"encoding/gob"
	"math"
	"os"

	"duel/train"
)

// Linear is a two-head linear model: one weight row per action for the
// policy head, one weight vector for the value head, trained by plain
// stochastic gradient descent over mean cross-entropy / MSE loss.
type Linear struct {
	ActionCount   int
	FeatureCount  int
	PolicyWeights [][]float64
	PolicyBias    []float64
	ValueWeights  []float64
	ValueBias     float64
	LearningRate  float64
}

// NewLinear returns a zero-initialized model sized for actionCount actions
// over featureCount input features.
func NewLinear(actionCount, featureCount int, lr float64) *Linear {
	weights := make([][]float64, actionCount)
	for i := range weights {
		weights[i] = make([]float64, featureCount)
	}
	return &Linear{
		ActionCount:   actionCount,
		FeatureCount:  featureCount,
		PolicyWeights: weights,
		PolicyBias:    make([]float64, actionCount),
		ValueWeights:  make([]float64, featureCount),
		LearningRate:  lr,
	}
}

// Clone returns a deep, independently trainable copy.
func (l *Linear) Clone() *Linear {
	cp := NewLinear(l.ActionCount, l.FeatureCount, l.LearningRate)
	for i := range l.PolicyWeights {
		copy(cp.PolicyWeights[i], l.PolicyWeights[i])
	}
	copy(cp.PolicyBias, l.PolicyBias)
	copy(cp.ValueWeights, l.ValueWeights)
	cp.ValueBias = l.ValueBias
	return cp
}

// Evaluate implements encoder.Evaluator.
func (l *Linear) Evaluate(features []float64) ([]float64, float64) {
	logits := l.policyLogits(features)
	value := l.valuePrediction(features)
	if value > 1 {
		value = 1
	} else if value < -1 {
		value = -1
	}
	return logits, value
}

func (l *Linear) policyLogits(features []float64) []float64 {
	logits := make([]float64, l.ActionCount)
	for a := 0; a < l.ActionCount; a++ {
		sum := l.PolicyBias[a]
		row := l.PolicyWeights[a]
		for i, f := range features {
			if i >= len(row) {
				break
			}
			sum += row[i] * f
		}
		logits[a] = sum
	}
	return logits
}

func (l *Linear) valuePrediction(features []float64) float64 {
	sum := l.ValueBias
	for i, f := range features {
		if i >= len(l.ValueWeights) {
			break
		}
		sum += l.ValueWeights[i] * f
	}
	return sum
}

// Fit implements train.Trainable: one SGD step per sample in batch,
// averaging the same policy cross-entropy and value MSE the epoch loop
// reports as diagnostics.
func (l *Linear) Fit(batch []train.Sample) (policyLoss, valueLoss float64) {
	if len(batch) == 0 {
		return 0, 0
	}
	n := float64(len(batch))

	for _, sample := range batch {
		logits := l.policyLogits(sample.Features)
		probs := softmax(logits)
		policyLoss += train.PolicyCrossEntropy(sample.Policy, logits)

		for a := 0; a < l.ActionCount; a++ {
			grad := probs[a] - sample.Policy[a]
			l.PolicyBias[a] -= l.LearningRate * grad / n
			row := l.PolicyWeights[a]
			for i, f := range sample.Features {
				if i >= len(row) {
					break
				}
				row[i] -= l.LearningRate * grad * f / n
			}
		}

		predicted := l.valuePrediction(sample.Features)
		valueLoss += train.ValueMSE(predicted, sample.Value)
		valueGrad := 2 * (predicted - sample.Value)
		l.ValueBias -= l.LearningRate * valueGrad / n
		for i, f := range sample.Features {
			if i >= len(l.ValueWeights) {
				break
			}
			l.ValueWeights[i] -= l.LearningRate * valueGrad * f / n
		}
	}

	return policyLoss / n, valueLoss / n
}

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, v := range logits {
		if v > maxLogit {
			maxLogit = v
		}
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		e := math.Exp(v - maxLogit)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// SaveCheckpoint implements train.Checkpointer, gob-encoding the model's
// parameters. The encoding is an implementation detail of this particular
// default model, not a contract the rest of the module depends on.
func (l *Linear) SaveCheckpoint(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()
	return gob.NewEncoder(w).Encode(l)
}

// LoadLinear restores a model previously written by SaveCheckpoint.
func LoadLinear(path string) (*Linear, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l := &Linear{}
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(l); err != nil {
		return nil, err
	}
	return l, nil
}
