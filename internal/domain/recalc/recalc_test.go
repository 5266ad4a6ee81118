package recalc_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/athlora/podium/internal/adapters/store"
	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/recalc"
	"github.com/athlora/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// twoRaces is the A/B/C scenario: A beats B beats C, then B takes revenge.
func twoRaces() []model.Event {
	return []model.Event{
		{
			EventID: 1, Title: "Season Opener", Date: date(2020, 1, 1),
			Importance: model.ImportanceLocal,
			Finishers: []model.Finisher{
				{AthleteID: 1, Position: 1},
				{AthleteID: 2, Position: 2},
				{AthleteID: 3, Position: 3},
			},
		},
		{
			EventID: 2, Title: "Winter Cup", Date: date(2020, 2, 1),
			Importance: model.ImportanceRegional,
			Finishers: []model.Finisher{
				{AthleteID: 2, Position: 1},
				{AthleteID: 1, Position: 2},
				{AthleteID: 3, Position: 3},
			},
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	Convey("Given athletes A, B, C racing twice", t, func() {
		r := recalc.New()
		ctx := context.Background()

		Convey("When running the fold", func() {
			result, err := r.Run(ctx, twoRaces(), nil)
			So(err, ShouldBeNil)

			Convey("Then A and B should have met twice", func() {
				rec, ok := result.HeadToHead["1-2"]
				So(ok, ShouldBeTrue)
				So(rec.Encounters, ShouldEqual, 2)
				So(rec.Athlete1Wins, ShouldEqual, 1)
				So(rec.Athlete2Wins, ShouldEqual, 1)
			})

			Convey("Then the winner of the first event should lead after it", func() {
				var afterE1 = make(map[int64]float64)
				for _, entry := range result.History {
					if entry.EventID == 1 {
						afterE1[entry.AthleteID] = entry.NewRating
					}
				}
				So(afterE1[1], ShouldBeGreaterThan, afterE1[2])
				So(afterE1[1], ShouldBeGreaterThan, afterE1[3])
			})

			Convey("Then B's rating should rise after winning the second event", func() {
				var postE1, postE2 float64
				for _, entry := range result.History {
					if entry.AthleteID == 2 && entry.EventID == 1 {
						postE1 = entry.NewRating
					}
					if entry.AthleteID == 2 && entry.EventID == 2 {
						postE2 = entry.NewRating
					}
				}
				So(postE2, ShouldBeGreaterThan, postE1)
			})

			Convey("Then the history should hold one row per athlete per event", func() {
				So(result.History, ShouldHaveLength, 6)
			})

			Convey("Then races completed should count events, not matches", func() {
				state, ok := result.Store.Get(1)
				So(ok, ShouldBeTrue)
				So(state.RacesCompleted, ShouldEqual, 2)
			})
		})
	})
}

func TestRunDeterminism(t *testing.T) {
	Convey("Given the same event list and initial store", t, func() {
		r := recalc.New()
		ctx := context.Background()

		Convey("When running the fold twice", func() {
			first, err1 := r.Run(ctx, twoRaces(), nil)
			second, err2 := r.Run(ctx, twoRaces(), nil)
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)

			Convey("Then every output should be identical", func() {
				So(second.History, ShouldResemble, first.History)
				So(second.HeadToHead, ShouldResemble, first.HeadToHead)
				So(second.Store.All(), ShouldResemble, first.Store.All())
			})
		})
	})
}

func TestRunSnapshotDiscipline(t *testing.T) {
	Convey("Given an event list with permuted finisher orderings", t, func() {
		r := recalc.New()
		ctx := context.Background()
		reference, err := r.Run(ctx, twoRaces(), nil)
		So(err, ShouldBeNil)

		Convey("When finisher lists are shuffled without touching positions", func() {
			rng := rand.New(rand.NewSource(99))

			Convey("Then results should not depend on iteration order", func() {
				for trial := 0; trial < 20; trial++ {
					events := twoRaces()
					for i := range events {
						rng.Shuffle(len(events[i].Finishers), func(a, b int) {
							events[i].Finishers[a], events[i].Finishers[b] = events[i].Finishers[b], events[i].Finishers[a]
						})
					}
					result, err := r.Run(ctx, events, nil)
					So(err, ShouldBeNil)
					So(result.History, ShouldResemble, reference.History)
					So(result.Store.All(), ShouldResemble, reference.Store.All())
				}
			})
		})
	})
}

func TestRunOutOfOrderInput(t *testing.T) {
	Convey("Given events supplied in reverse chronological order", t, func() {
		r := recalc.New()
		ctx := context.Background()
		sorted, err := r.Run(ctx, twoRaces(), nil)
		So(err, ShouldBeNil)

		events := twoRaces()
		events[0], events[1] = events[1], events[0]

		Convey("When running", func() {
			result, err := r.Run(ctx, events, nil)

			Convey("Then the scheduler should sort internally and proceed", func() {
				So(err, ShouldBeNil)
				So(result.History, ShouldResemble, sorted.History)
			})
		})
	})
}

func TestRunInvalidEvents(t *testing.T) {
	Convey("Given an event with a duplicate athlete", t, func() {
		ctx := context.Background()
		events := twoRaces()
		events[1].Finishers = append(events[1].Finishers, model.Finisher{AthleteID: 1, Position: 4})

		Convey("When running with the default abort policy", func() {
			_, err := recalc.New().Run(ctx, events, nil)

			Convey("Then the whole run should fail with the event attached", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, recalc.ErrInvalidEvent), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "event 2")
			})
		})

		Convey("When running with the skip policy", func() {
			r := recalc.New(recalc.WithInvalidEventPolicy(recalc.PolicySkip))
			result, err := r.Run(ctx, events, nil)

			Convey("Then only the valid event should be folded", func() {
				So(err, ShouldBeNil)
				So(result.History, ShouldHaveLength, 3)
			})
		})
	})

	Convey("Given an event with no date", t, func() {
		events := []model.Event{{EventID: 9, Finishers: []model.Finisher{
			{AthleteID: 1, Position: 1},
			{AthleteID: 2, Position: 2},
		}}}
		_, err := recalc.New().Run(context.Background(), events, nil)
		So(errors.Is(err, recalc.ErrInvalidEvent), ShouldBeTrue)
	})

	Convey("Given an event with a position below 1", t, func() {
		events := []model.Event{{EventID: 8, Date: date(2020, 3, 1), Finishers: []model.Finisher{
			{AthleteID: 1, Position: 0},
			{AthleteID: 2, Position: 2},
		}}}
		_, err := recalc.New().Run(context.Background(), events, nil)
		So(errors.Is(err, recalc.ErrInvalidEvent), ShouldBeTrue)
	})
}

func TestRunSmallEvents(t *testing.T) {
	Convey("Given an event with a single finisher", t, func() {
		events := []model.Event{
			{EventID: 1, Date: date(2020, 1, 1), Finishers: []model.Finisher{{AthleteID: 1, Position: 1}}},
		}

		Convey("When running", func() {
			result, err := recalc.New().Run(context.Background(), events, nil)

			Convey("Then no outcomes and no history should be produced", func() {
				So(err, ShouldBeNil)
				So(result.History, ShouldBeEmpty)
				So(result.HeadToHead, ShouldBeEmpty)
				So(result.Store.Count(), ShouldEqual, 0)
			})
		})
	})
}

func TestRunResumesFromPrior(t *testing.T) {
	Convey("Given a prior store snapshot", t, func() {
		prior := store.New(store.WithStates([]model.AthleteState{
			{AthleteID: 1, Rating: 1800, Deviation: 60, Volatility: 0.05, RacesCompleted: 30},
			{AthleteID: 2, Rating: 1500, Deviation: 350, Volatility: 0.06},
		}))
		events := []model.Event{{
			EventID: 5, Date: date(2021, 4, 10),
			Finishers: []model.Finisher{
				{AthleteID: 2, Position: 1},
				{AthleteID: 1, Position: 2},
			},
		}}

		Convey("When running from the snapshot", func() {
			result, err := recalc.New().Run(context.Background(), events, prior)
			So(err, ShouldBeNil)

			Convey("Then history should start from the imported ratings", func() {
				for _, entry := range result.History {
					if entry.AthleteID == 1 {
						So(entry.OldRating, ShouldEqual, 1800)
					}
				}
			})

			Convey("Then the prior store itself should be untouched", func() {
				state, _ := prior.Get(1)
				So(state.Rating, ShouldEqual, 1800)
				So(state.RacesCompleted, ShouldEqual, 30)
			})

			Convey("Then races completed should accumulate", func() {
				state, _ := result.Store.Get(1)
				So(state.RacesCompleted, ShouldEqual, 31)
			})
		})
	})
}

func TestRunMonthlyPeriods(t *testing.T) {
	Convey("Given two events in one month and one the month after", t, func() {
		events := []model.Event{
			{EventID: 1, Date: date(2020, 5, 2), Finishers: []model.Finisher{
				{AthleteID: 1, Position: 1}, {AthleteID: 2, Position: 2},
			}},
			{EventID: 2, Date: date(2020, 5, 20), Finishers: []model.Finisher{
				{AthleteID: 1, Position: 1}, {AthleteID: 2, Position: 2},
			}},
			{EventID: 3, Date: date(2020, 6, 14), Finishers: []model.Finisher{
				{AthleteID: 1, Position: 1}, {AthleteID: 3, Position: 2},
			}},
		}
		r := recalc.New(recalc.WithPeriodMode(recalc.PeriodMonthly))

		Convey("When running with monthly periods", func() {
			result, err := r.Run(context.Background(), events, nil)
			So(err, ShouldBeNil)

			Convey("Then May should produce one combined entry per athlete", func() {
				var mayEntries []model.HistoryEntry
				for _, entry := range result.History {
					if entry.EventDate.Month() == time.May {
						mayEntries = append(mayEntries, entry)
					}
				}
				So(mayEntries, ShouldHaveLength, 2)
				So(mayEntries[0].OpponentsFaced, ShouldEqual, 2)
				// Combined monthly periods carry no single event id.
				So(mayEntries[0].EventID, ShouldEqual, 0)
				So(mayEntries[0].EventDate.Equal(date(2020, 5, 20)), ShouldBeTrue)
			})

			Convey("Then athletes inactive in June should see deviation growth", func() {
				var mayDeviation float64
				for _, entry := range result.History {
					if entry.AthleteID == 2 {
						mayDeviation = entry.NewDeviation
					}
				}
				state, ok := result.Store.Get(2)
				So(ok, ShouldBeTrue)
				So(state.Deviation, ShouldBeGreaterThan, mayDeviation)
			})

			Convey("Then head-to-head should still count per event", func() {
				rec := result.HeadToHead["1-2"]
				So(rec.Encounters, ShouldEqual, 2)
			})
		})
	})
}
