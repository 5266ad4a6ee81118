// Package service orchestrates a full rating run: ingest the collector
// document, replay the season through the rating engine, and export the
// analysis report.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/athlora/podium/internal/adapters/export"
	"github.com/athlora/podium/internal/adapters/ingest"
	"github.com/athlora/podium/internal/adapters/store"
	"github.com/athlora/podium/internal/config"
	"github.com/athlora/podium/internal/domain/glicko"
	"github.com/athlora/podium/internal/domain/headtohead"
	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/recalc"
	"github.com/athlora/podium/internal/domain/timeline"
	"github.com/athlora/podium/internal/domain/types"
	"github.com/athlora/podium/pkg/logger"
)

// Service wires the ingest, recalculation, and export stages together.
type Service struct {
	mu sync.RWMutex

	cfg          *config.Config
	recalculator *recalc.Recalculator
	logger       logger.Logger

	// result holds the outcome of the most recent successful run.
	result *recalc.Result
	report *export.Report
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithRecalculator overrides the recalculator built from the configuration.
func WithRecalculator(r *recalc.Recalculator) Option {
	return func(s *Service) {
		if r != nil {
			s.recalculator = r
		}
	}
}

// New constructs a Service. When no recalculator is supplied, one is
// assembled from the configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.recalculator == nil {
		s.recalculator = recalc.New(
			recalc.WithEngine(engineFromConfig(s.cfg)),
			recalc.WithPeriodMode(recalc.PeriodMode(s.cfg.PeriodMode)),
			recalc.WithDivergencePolicy(recalc.Policy(s.cfg.DivergencePolicy)),
			recalc.WithInvalidEventPolicy(recalc.Policy(s.cfg.InvalidEventPolicy)),
			recalc.WithInactivityInflation(s.cfg.InactivityInflation),
			recalc.WithLogger(s.logger),
		)
	}

	return s
}

func engineFromConfig(cfg *config.Config) *glicko.Engine {
	return glicko.New(
		glicko.WithTau(cfg.Tau),
		glicko.WithConvergenceTolerance(cfg.ConvergenceTolerance),
		glicko.WithMaxIterations(cfg.MaxSolverIterations),
		glicko.WithRatingBounds(cfg.RatingMin, cfg.RatingMax),
		glicko.WithMaxRatingChange(cfg.MaxRatingChange),
		glicko.WithDeviationBounds(cfg.DeviationMin, cfg.DeviationMax),
		glicko.WithVolatilityBounds(cfg.VolatilityMin, cfg.VolatilityMax),
	)
}

// Run loads the configured events file, replays it through the engine,
// and writes the report to the configured output file.
func (s *Service) Run(ctx context.Context) error {
	events, err := ingest.Load(s.cfg.EventsFile)
	if err != nil {
		return fmt.Errorf("loading %s: %w", s.cfg.EventsFile, err)
	}

	report, err := s.RunEvents(ctx, events, nil)
	if err != nil {
		return err
	}

	if err := export.WriteFile(s.cfg.OutputFile, *report); err != nil {
		return fmt.Errorf("writing %s: %w", s.cfg.OutputFile, err)
	}

	s.logger.Info(ctx, "report written",
		logger.String("path", s.cfg.OutputFile),
		logger.String("runID", report.RunID),
		logger.Int("athletes", report.Metadata.AthleteCount),
	)
	return nil
}

// RunEvents replays the given events on top of an optional prior store
// and retains the result for ranking queries. The prior store is never
// mutated.
func (s *Service) RunEvents(ctx context.Context, events []model.Event, prior *store.RatingStore) (*export.Report, error) {
	result, err := s.recalculator.Run(ctx, events, prior)
	if err != nil {
		return nil, fmt.Errorf("recalculating ratings: %w", err)
	}

	report := export.BuildReport(result, s.cfg.TopN)

	s.mu.Lock()
	s.result = result
	s.report = &report
	s.mu.Unlock()

	return &report, nil
}

// TopN returns the top n athletes by rating from the latest run.
func (s *Service) TopN(_ context.Context, n int) ([]types.RankedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return nil, ErrNoRun
	}
	return s.result.Store.TopN(n)
}

// Rank returns the rank and rating for a given athlete from the latest run.
func (s *Service) Rank(_ context.Context, athleteID int64) (types.RankedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return types.RankedEntry{}, ErrNoRun
	}
	return s.result.Store.Rank(athleteID)
}

// Timeline returns the rating trajectory for a given athlete, or false
// when the athlete never competed in the latest run.
func (s *Service) Timeline(athleteID int64) (timeline.AthleteTimeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report == nil {
		return timeline.AthleteTimeline{}, false
	}
	tl, ok := s.report.Timelines[athleteID]
	return tl, ok
}

// HeadToHead returns the meeting record between two athletes, or false
// when the pair never met.
func (s *Service) HeadToHead(a, b int64) (model.HeadToHeadRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return model.HeadToHeadRecord{}, false
	}
	rec, ok := s.result.HeadToHead[headtohead.PairID(a, b)]
	return rec, ok
}

// Report returns the latest run report.
func (s *Service) Report() (*export.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report == nil {
		return nil, ErrNoRun
	}
	return s.report, nil
}
