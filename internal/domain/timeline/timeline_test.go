package timeline_test

import (
	"testing"
	"time"

	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(athlete int64, y, m, d int, oldR, newR float64) model.HistoryEntry {
	return model.HistoryEntry{
		AthleteID: athlete,
		EventDate: time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC),
		OldRating: oldR,
		NewRating: newR,
	}
}

func TestBuild(t *testing.T) {
	Convey("Given an unsorted history for one athlete", t, func() {
		history := []model.HistoryEntry{
			entry(1, 2020, 3, 15, 1512, 1530),
			entry(1, 2020, 1, 10, 1500, 1512),
			entry(1, 2020, 3, 15, 1530, 1525), // second update same day
		}

		Convey("When building timelines", func() {
			timelines := timeline.Build(history)

			Convey("Then the progression should start from the initial rating", func() {
				tl, ok := timelines[1]
				So(ok, ShouldBeTrue)
				So(tl.InitialRating, ShouldEqual, 1500)
				So(tl.FinalRating, ShouldEqual, 1525)
				So(tl.Points[0].Rating, ShouldEqual, 1500)
			})

			Convey("Then a date should keep only its last rating", func() {
				tl := timelines[1]
				// initial point + Jan 10 + one point for Mar 15
				So(tl.Points, ShouldHaveLength, 3)
				So(tl.Points[1].Rating, ShouldEqual, 1512)
				So(tl.Points[2].Rating, ShouldEqual, 1525)
			})
		})
	})

	Convey("Given an empty history", t, func() {
		So(timeline.Build(nil), ShouldBeEmpty)
	})
}

func TestMonthlyTop(t *testing.T) {
	Convey("Given timelines for three athletes across two months", t, func() {
		history := []model.HistoryEntry{
			entry(1, 2020, 1, 5, 1500, 1550),
			entry(2, 2020, 1, 5, 1500, 1460),
			entry(1, 2020, 2, 9, 1550, 1575),
			entry(2, 2020, 2, 9, 1460, 1480),
			entry(3, 2020, 2, 9, 1500, 1440),
		}
		timelines := timeline.Build(history)

		Convey("When computing the monthly top table", func() {
			months := timeline.MonthlyTop(timelines, 2)

			Convey("Then both months should be present, in order", func() {
				So(months, ShouldHaveLength, 2)
				So(months[0].Month, ShouldEqual, "2020-01")
				So(months[1].Month, ShouldEqual, "2020-02")
			})

			Convey("Then January should rank only the two active athletes", func() {
				So(months[0].Top, ShouldHaveLength, 2)
				So(months[0].Top[0].AthleteID, ShouldEqual, 1)
				So(months[0].Top[0].Rank, ShouldEqual, 1)
				So(months[0].Top[0].Rating, ShouldEqual, 1550)
			})

			Convey("Then February should respect the limit", func() {
				So(months[1].Top, ShouldHaveLength, 2)
				So(months[1].Top[0].Rating, ShouldEqual, 1575)
				So(months[1].Top[1].AthleteID, ShouldEqual, 2)
			})

			Convey("Then the summary statistics should cover active athletes", func() {
				So(months[0].MeanRating, ShouldAlmostEqual, (1550+1460)/2.0, 0.001)
				So(months[0].StdDev, ShouldBeGreaterThan, 0)
			})
		})
	})
}
