package rules

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConstructCatalogue(t *testing.T) {
	Convey("Given the construct catalogue", t, func() {
		Convey("it has exactly eight constructs", func() {
			So(len(Constructs), ShouldEqual, 8)
		})

		Convey("four are predictors and four are outcomes", func() {
			predictors, outcomes := 0, 0
			for _, c := range Constructs {
				if c.Type == Predictor {
					predictors++
				} else {
					outcomes++
				}
			}
			So(predictors, ShouldEqual, 4)
			So(outcomes, ShouldEqual, 4)
		})
	})
}

func TestTrueValidityDefaulting(t *testing.T) {
	Convey("Given a pair present in the matrix", t, func() {
		Convey("the looked-up value is returned", func() {
			So(TrueValidityOf("cog_ability", "job_perf"), ShouldEqual, 0.51)
		})
	})

	Convey("Given a pair absent from the matrix", t, func() {
		Convey("the default of 0.10 is returned", func() {
			So(TrueValidityOf("cog_ability", "nonexistent"), ShouldEqual, DefaultTrueValidity)
			So(TrueValidityOf("nonexistent", "job_perf"), ShouldEqual, DefaultTrueValidity)
		})
	})
}

func TestAdverseImpactDefaulting(t *testing.T) {
	Convey("Given a pair absent from the adverse-impact matrix", t, func() {
		Convey("the default of 0.30 is returned", func() {
			So(AdverseImpactBwdOf("missing", "missing"), ShouldEqual, DefaultAdverseImpactBwd)
		})
	})
}

func TestTargetingClassesAreDisjoint(t *testing.T) {
	Convey("Given the two targeting classes", t, func() {
		Convey("no spell id appears in both sets", func() {
			for id := range TargetingMonsterSpells {
				So(TargetingConstructSpells[id], ShouldBeFalse)
			}
		})
	})
}

func TestDeckComposition(t *testing.T) {
	Convey("Given the COUNTS table", t, func() {
		Convey("every construct id contributes exactly four cards", func() {
			for id := range Constructs {
				So(Counts[id], ShouldEqual, 4)
			}
		})
	})
}
