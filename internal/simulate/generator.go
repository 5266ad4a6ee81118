// Package simulate generates deterministic synthetic seasons for tests and
// benchmarks. Given the same seed it always produces the same events.
package simulate

import (
	"math/rand"
	"sort"
	"time"

	"github.com/athlora/podium/internal/domain/model"
)

// Field size bounds for generated events.
const (
	minFieldSize = 2
	maxFieldSize = 24
	tieChance    = 0.05
	dayStep      = 3
)

// Config shapes a generated season.
type Config struct {
	Seed       int64
	NumEvents  int
	NumAthlete int
	Start      time.Time
}

// Season generates a chronological season of events. Each event draws a
// random subset of the athlete pool and assigns 1-based positions with
// occasional ties.
func Season(cfg Config) []model.Event {
	if cfg.NumEvents <= 0 || cfg.NumAthlete < minFieldSize {
		return nil
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	events := make([]model.Event, 0, cfg.NumEvents)

	for i := 0; i < cfg.NumEvents; i++ {
		fieldSize := minFieldSize + rng.Intn(maxFieldSize-minFieldSize+1)
		if fieldSize > cfg.NumAthlete {
			fieldSize = cfg.NumAthlete
		}

		field := rng.Perm(cfg.NumAthlete)[:fieldSize]
		sort.Ints(field)

		finishers := make([]model.Finisher, 0, fieldSize)
		position := 0
		for rank, athlete := range field {
			// Occasionally repeat the previous position to model a tie.
			if rank == 0 || rng.Float64() >= tieChance {
				position = rank + 1
			}
			finishers = append(finishers, model.Finisher{
				AthleteID: int64(athlete + 1),
				Position:  position,
			})
		}
		// Shuffle so consumers cannot rely on input ordering.
		rng.Shuffle(len(finishers), func(a, b int) {
			finishers[a], finishers[b] = finishers[b], finishers[a]
		})

		events = append(events, model.Event{
			EventID:    int64(i + 1),
			Title:      "Simulated Race",
			Date:       start.AddDate(0, 0, i*dayStep),
			Importance: model.ImportanceLocal,
			Finishers:  finishers,
		})
	}
	return events
}
