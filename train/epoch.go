package train

import (
	"math"
	"math/rand"

	"duel/encoder"
)

// Trainable is an Evaluator capable of fitting itself to one batch of
// supervised targets. How Fit updates its internal parameters — network
// architecture, optimizer, autodiff — is entirely its own concern; this
// package only orchestrates which batches it sees and records the losses
// it reports back.
type Trainable interface {
	encoder.Evaluator
	Fit(batch []Sample) (policyLoss, valueLoss float64)
}

// EpochMetrics are the mean losses over one pass through the replay
// buffer's sampled batches.
type EpochMetrics struct {
	PolicyLoss float64
	ValueLoss  float64
}

// TrainEpoch shuffles replay into batchSize chunks and fits net to each in
// turn, averaging the reported losses exactly as the reference train_epoch
// accumulates pol_loss_total/n_batches and val_loss_total/n_batches.
func TrainEpoch(net Trainable, replay *ReplayBuffer, batchSize int, rng *rand.Rand) EpochMetrics {
	batches := replay.Batches(batchSize, rng)
	if len(batches) == 0 {
		return EpochMetrics{}
	}

	var policyTotal, valueTotal float64
	for _, batch := range batches {
		pLoss, vLoss := net.Fit(batch)
		policyTotal += pLoss
		valueTotal += vLoss
	}
	n := float64(len(batches))
	return EpochMetrics{PolicyLoss: policyTotal / n, ValueLoss: valueTotal / n}
}

// PolicyCrossEntropy computes -sum(target*log(pred)) for one sample's
// softmaxed prediction, the diagnostic the reference trainer reports as
// pol_loss before any parameter update — useful for a Trainable
// implementation's own Fit bookkeeping.
func PolicyCrossEntropy(target, predLogits []float64) float64 {
	maxLogit := math.Inf(-1)
	for _, l := range predLogits {
		if l > maxLogit {
			maxLogit = l
		}
	}
	sum := 0.0
	for _, l := range predLogits {
		sum += math.Exp(l - maxLogit)
	}
	logZ := maxLogit + math.Log(sum)

	loss := 0.0
	for i, t := range target {
		if t == 0 {
			continue
		}
		logProb := predLogits[i] - logZ
		loss -= t * logProb
	}
	return loss
}

// ValueMSE computes the squared error between the predicted and target
// value, the per-sample contribution to the reference trainer's val_loss.
func ValueMSE(predicted, target float64) float64 {
	d := predicted - target
	return d * d
}
