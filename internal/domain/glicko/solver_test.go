package glicko_test

import (
	"errors"
	"testing"

	"github.com/athlora/podium/internal/domain/glicko"
	"github.com/athlora/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSolverDivergence(t *testing.T) {
	Convey("Given an engine with a starved iteration budget", t, func() {
		engine := glicko.New(glicko.WithMaxIterations(1))
		state := model.AthleteState{AthleteID: 9, Rating: 1500, Deviation: 200, Volatility: 0.06}
		opponents := []glicko.Opponent{
			{Rating: 1400, Deviation: 30, Score: 1},
			{Rating: 1550, Deviation: 100, Score: 0},
			{Rating: 1700, Deviation: 300, Score: 0},
		}

		Convey("When updating", func() {
			next, err := engine.Update(state, opponents)

			Convey("Then a divergence error with the athlete id should be reported", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, glicko.ErrDivergence), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "athlete 9")
			})

			Convey("Then the returned state should be the unmodified input", func() {
				So(next, ShouldResemble, state)
			})
		})
	})
}

func TestSolverConvergesQuickly(t *testing.T) {
	Convey("Given a generous iteration budget", t, func() {
		engine := glicko.New(glicko.WithMaxIterations(100), glicko.WithConvergenceTolerance(1e-6))

		Convey("When running the canonical example", func() {
			state := model.AthleteState{AthleteID: 2, Rating: 1500, Deviation: 200, Volatility: 0.06}
			next, err := engine.Update(state, []glicko.Opponent{
				{Rating: 1400, Deviation: 30, Score: 1},
				{Rating: 1550, Deviation: 100, Score: 0},
				{Rating: 1700, Deviation: 300, Score: 0},
			})

			Convey("Then it should converge", func() {
				So(err, ShouldBeNil)
				So(next.Volatility, ShouldAlmostEqual, 0.05999, 0.0001)
			})
		})
	})
}

func TestSolverTauSensitivity(t *testing.T) {
	Convey("Given two engines with different system constants", t, func() {
		loose := glicko.New(glicko.WithTau(1.2))
		tight := glicko.New(glicko.WithTau(0.3))
		state := model.AthleteState{AthleteID: 4, Rating: 1500, Deviation: 80, Volatility: 0.06}
		// A big surprise: a stable athlete loses to three far weaker ones.
		upset := []glicko.Opponent{
			{Rating: 1000, Deviation: 50, Score: 0},
			{Rating: 1010, Deviation: 50, Score: 0},
			{Rating: 1020, Deviation: 50, Score: 0},
		}

		Convey("When both absorb the same upset", func() {
			looseNext, err1 := loose.Update(state, upset)
			tightNext, err2 := tight.Update(state, upset)

			Convey("Then the larger tau should allow the larger volatility swing", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(looseNext.Volatility, ShouldBeGreaterThanOrEqualTo, tightNext.Volatility)
			})
		})
	})
}
