package encoder

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"duel/engine"
)

func TestEncodeWidthIsConstant(t *testing.T) {
	Convey("Given the initial state and its successors", t, func() {
		s := engine.InitialState()

		Convey("Encode always returns a Width-length vector", func() {
			So(len(Encode(s, 1)), ShouldEqual, Width)
			So(len(Encode(s, 2)), ShouldEqual, Width)

			next := engine.NextState(s, engine.Action{Type: engine.ActionEndTurn})
			So(len(Encode(next, 1)), ShouldEqual, Width)
		})
	})
}

func TestEncodePerspectiveScalar(t *testing.T) {
	Convey("Given the initial state with player 1 to move", t, func() {
		s := engine.InitialState()

		Convey("the ninth feature is 1 from player 1's perspective and 0 from player 2's", func() {
			So(Encode(s, 1)[8], ShouldEqual, 1.0)
			So(Encode(s, 2)[8], ShouldEqual, 0.0)
		})
	})
}

func TestUniformEvaluator(t *testing.T) {
	Convey("Given a uniform evaluator over 10 actions", t, func() {
		eval := UniformEvaluator{ActionCount: 10}

		Convey("it returns a zero value and flat logits of the right length", func() {
			logits, value := eval.Evaluate(make([]float64, Width))
			So(len(logits), ShouldEqual, 10)
			So(value, ShouldEqual, 0.0)
		})
	})
}
