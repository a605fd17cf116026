package approximator

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"duel/train"
)

func TestLinearEvaluateShape(t *testing.T) {
	Convey("Given a freshly constructed linear model", t, func() {
		l := NewLinear(5, 3, 0.1)

		Convey("Evaluate returns one logit per action and a clamped value", func() {
			logits, value := l.Evaluate([]float64{0.1, 0.2, 0.3})
			So(len(logits), ShouldEqual, 5)
			So(value, ShouldBeBetweenOrEqual, -1.0, 1.0)
		})
	})
}

func TestLinearFitReducesLoss(t *testing.T) {
	Convey("Given a batch of samples with a fixed one-hot policy target", t, func() {
		l := NewLinear(3, 2, 0.5)
		batch := []train.Sample{
			{Features: []float64{1, 0}, Policy: []float64{1, 0, 0}, Value: 1},
			{Features: []float64{0, 1}, Policy: []float64{0, 1, 0}, Value: -1},
		}

		Convey("repeated fitting drives both losses down", func() {
			firstPolicy, firstValue := l.Fit(batch)
			var lastPolicy, lastValue float64
			for i := 0; i < 50; i++ {
				lastPolicy, lastValue = l.Fit(batch)
			}
			So(lastPolicy, ShouldBeLessThan, firstPolicy)
			So(lastValue, ShouldBeLessThan, firstValue)
		})
	})
}

func TestLinearCloneIndependence(t *testing.T) {
	Convey("Given a model and its clone", t, func() {
		l := NewLinear(2, 2, 0.5)
		clone := l.Clone()
		batch := []train.Sample{{Features: []float64{1, 1}, Policy: []float64{1, 0}, Value: 1}}

		Convey("fitting the clone never mutates the original", func() {
			clone.Fit(batch)
			So(clone.ValueBias, ShouldNotEqual, l.ValueBias)
			So(l.ValueBias, ShouldEqual, 0.0)
		})
	})
}

func TestLinearCheckpointRoundTrip(t *testing.T) {
	Convey("Given a trained model saved to a temp checkpoint", t, func() {
		l := NewLinear(2, 2, 0.5)
		l.Fit([]train.Sample{{Features: []float64{1, 1}, Policy: []float64{1, 0}, Value: 1}})
		path := filepath.Join(t.TempDir(), "model.ckpt")
		err := l.SaveCheckpoint(path)
		So(err, ShouldBeNil)

		Convey("loading it back reproduces the same parameters", func() {
			restored, err := LoadLinear(path)
			So(err, ShouldBeNil)
			So(restored.ValueBias, ShouldEqual, l.ValueBias)
			So(restored.ValueWeights, ShouldResemble, l.ValueWeights)
			_ = os.Remove(path)
		})
	})
}
