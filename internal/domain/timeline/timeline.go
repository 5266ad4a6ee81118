// Package timeline builds rating progression views from the history log.
package timeline

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/types"
)

// Point is one step of an athlete's rating progression.
type Point struct {
	Date   time.Time `json:"date"`
	Rating float64   `json:"rating"`
}

// AthleteTimeline is one athlete's full rating progression: an initial
// point followed by the last rating of each date they were updated on.
type AthleteTimeline struct {
	AthleteID     int64   `json:"athlete_id"`
	InitialRating float64 `json:"initial_rating"`
	FinalRating   float64 `json:"final_rating"`
	Points        []Point `json:"points"`
}

// MonthSummary ranks athletes by their end-of-month rating and carries
// summary statistics over every athlete active up to that month.
type MonthSummary struct {
	Month      string              `json:"month"` // "YYYY-MM"
	Top        []types.RankedEntry `json:"top"`
	MeanRating float64             `json:"mean_rating"`
	StdDev     float64             `json:"std_dev"`
}

// Build folds the history log into per-athlete timelines. History entries
// need not be pre-sorted.
func Build(history []model.HistoryEntry) map[int64]AthleteTimeline {
	byAthlete := make(map[int64][]model.HistoryEntry)
	for _, entry := range history {
		byAthlete[entry.AthleteID] = append(byAthlete[entry.AthleteID], entry)
	}

	timelines := make(map[int64]AthleteTimeline, len(byAthlete))
	for id, entries := range byAthlete {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].EventDate.Before(entries[j].EventDate)
		})

		tl := AthleteTimeline{
			AthleteID:     id,
			InitialRating: entries[0].OldRating,
			FinalRating:   entries[len(entries)-1].NewRating,
		}
		tl.Points = append(tl.Points, Point{Date: entries[0].EventDate, Rating: entries[0].OldRating})

		// Keep only the last rating of each date.
		for i, entry := range entries {
			if i+1 < len(entries) && sameDay(entry.EventDate, entries[i+1].EventDate) {
				continue
			}
			tl.Points = append(tl.Points, Point{Date: entry.EventDate, Rating: entry.NewRating})
		}

		timelines[id] = tl
	}
	return timelines
}

// MonthlyTop computes, for every month spanned by the timelines, the top
// limit athletes by their rating as of the end of that month.
func MonthlyTop(timelines map[int64]AthleteTimeline, limit int) []MonthSummary {
	months := make(map[string]struct{})
	for _, tl := range timelines {
		for _, p := range tl.Points {
			months[p.Date.Format("2006-01")] = struct{}{}
		}
	}

	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	summaries := make([]MonthSummary, 0, len(keys))
	for _, key := range keys {
		endOfMonth := monthEnd(key)

		var entries []types.RankedEntry
		var ratings []float64
		for id, tl := range timelines {
			rating, ok := ratingAsOf(tl, endOfMonth)
			if !ok {
				continue
			}
			entries = append(entries, types.RankedEntry{AthleteID: id, Rating: rating})
			ratings = append(ratings, rating)
		}

		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Rating != entries[j].Rating {
				return entries[i].Rating > entries[j].Rating
			}
			return entries[i].AthleteID < entries[j].AthleteID
		})
		for i := range entries {
			entries[i].Rank = i + 1
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		summary := MonthSummary{Month: key, Top: entries}
		if len(ratings) > 0 {
			summary.MeanRating = stat.Mean(ratings, nil)
		}
		if len(ratings) > 1 {
			summary.StdDev = stat.StdDev(ratings, nil)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// ratingAsOf returns the athlete's last rating on or before cutoff.
func ratingAsOf(tl AthleteTimeline, cutoff time.Time) (float64, bool) {
	found := false
	rating := 0.0
	for _, p := range tl.Points {
		if p.Date.After(cutoff) {
			break
		}
		rating = p.Rating
		found = true
	}
	return rating, found
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func monthEnd(key string) time.Time {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}
	}
	return t.AddDate(0, 1, 0).Add(-time.Nanosecond)
}
