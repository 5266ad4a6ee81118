package glicko_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/athlora/podium/internal/domain/glicko"
	"github.com/athlora/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUpdateReferenceVector(t *testing.T) {
	Convey("Given the canonical Glicko-2 worked example", t, func() {
		engine := glicko.New(glicko.WithTau(0.5))
		state := model.AthleteState{
			AthleteID:  1,
			Rating:     1500,
			Deviation:  200,
			Volatility: 0.06,
		}
		opponents := []glicko.Opponent{
			{Rating: 1400, Deviation: 30, Score: 1},
			{Rating: 1550, Deviation: 100, Score: 0},
			{Rating: 1700, Deviation: 300, Score: 0},
		}

		Convey("When updating", func() {
			next, err := engine.Update(state, opponents)

			Convey("Then the result should match Glickman's published numbers", func() {
				So(err, ShouldBeNil)
				So(next.Rating, ShouldAlmostEqual, 1464.06, 0.01)
				So(next.Deviation, ShouldAlmostEqual, 151.52, 0.01)
				So(next.Volatility, ShouldAlmostEqual, 0.05999, 0.0001)
			})

			Convey("Then the input state should be untouched", func() {
				So(state.Rating, ShouldEqual, 1500)
				So(state.Deviation, ShouldEqual, 200)
			})
		})
	})
}

func TestUpdateZeroOpponents(t *testing.T) {
	Convey("Given an athlete who sat out the rating period", t, func() {
		engine := glicko.New()
		state := model.AthleteState{
			AthleteID:  7,
			Rating:     1650,
			Deviation:  200,
			Volatility: 0.06,
		}

		Convey("When updating with no opponents", func() {
			next, err := engine.Update(state, nil)

			Convey("Then only the deviation should grow", func() {
				So(err, ShouldBeNil)
				So(next.Rating, ShouldEqual, state.Rating)
				So(next.Volatility, ShouldEqual, state.Volatility)
				So(next.Deviation, ShouldBeGreaterThan, state.Deviation)
			})
		})

		Convey("When the deviation is already at the upper clamp", func() {
			state.Deviation = 500
			next, err := engine.Update(state, nil)

			Convey("Then it should stay at the clamp", func() {
				So(err, ShouldBeNil)
				So(next.Deviation, ShouldEqual, 500)
			})
		})
	})
}

func TestUpdateDeterminism(t *testing.T) {
	Convey("Given a fixed state and opponent batch", t, func() {
		engine := glicko.New()
		state := model.AthleteState{AthleteID: 3, Rating: 1432.7, Deviation: 145.2, Volatility: 0.058}
		opponents := []glicko.Opponent{
			{Rating: 1380, Deviation: 90, Score: 0.5},
			{Rating: 1601, Deviation: 210, Score: 1},
		}

		Convey("When updating twice", func() {
			first, err1 := engine.Update(state, opponents)
			second, err2 := engine.Update(state, opponents)

			Convey("Then both results should be byte-identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestUpdateClampsForGeneratedInputs(t *testing.T) {
	Convey("Given many generated states and opponent batches", t, func() {
		engine := glicko.New()
		rng := rand.New(rand.NewSource(7))

		Convey("Then no update should escape the configured clamps", func() {
			for trial := 0; trial < 500; trial++ {
				state := model.AthleteState{
					AthleteID:  int64(trial),
					Rating:     100 + rng.Float64()*4900,
					Deviation:  10 + rng.Float64()*490,
					Volatility: 0.0001 + rng.Float64()*0.1499,
				}
				opponents := make([]glicko.Opponent, 1+rng.Intn(8))
				for i := range opponents {
					opponents[i] = glicko.Opponent{
						Rating:    100 + rng.Float64()*4900,
						Deviation: 10 + rng.Float64()*490,
						Score:     []float64{0, 0.5, 1}[rng.Intn(3)],
					}
				}

				next, err := engine.Update(state, opponents)
				if err != nil {
					So(errors.Is(err, glicko.ErrDivergence), ShouldBeTrue)
					continue
				}
				So(next.Deviation, ShouldBeBetweenOrEqual, 10, 500)
				So(next.Rating, ShouldBeBetweenOrEqual, 100, 5000)
				So(next.Volatility, ShouldBeBetweenOrEqual, 0.0001, 0.15)
			}
		})
	})
}

func TestUpdateRatingChangeCap(t *testing.T) {
	Convey("Given a heavily favored athlete upset by a long field", t, func() {
		engine := glicko.New()
		state := model.AthleteState{AthleteID: 5, Rating: 2400, Deviation: 350, Volatility: 0.06}
		opponents := make([]glicko.Opponent, 20)
		for i := range opponents {
			opponents[i] = glicko.Opponent{Rating: 1200, Deviation: 60, Score: 0}
		}

		Convey("When updating", func() {
			next, err := engine.Update(state, opponents)

			Convey("Then the drop should be capped at the max rating change", func() {
				So(err, ShouldBeNil)
				So(state.Rating-next.Rating, ShouldBeLessThanOrEqualTo, 100)
			})
		})
	})
}
