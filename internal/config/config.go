// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file and env.
// - External errors must be wrapped via this package's sentinel errors.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// EventsFile is the collector document to ingest.
	EventsFile string `koanf:"events_file"`

	// OutputFile receives the run report.
	OutputFile string `koanf:"output_file"`

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// Tau is the Glicko-2 system constant constraining volatility changes.
	Tau float64 `koanf:"tau"`

	// ConvergenceTolerance is the volatility solver's stopping criterion.
	ConvergenceTolerance float64 `koanf:"convergence_tolerance"`

	// MaxSolverIterations caps the volatility solver.
	MaxSolverIterations int `koanf:"max_solver_iterations"`

	// PeriodMode groups events into rating periods: "event" or "monthly".
	PeriodMode string `koanf:"period_mode"`

	// DivergencePolicy decides solver divergence handling: "abort" or "skip".
	DivergencePolicy string `koanf:"divergence_policy"`

	// InvalidEventPolicy decides malformed event handling: "abort" or "skip".
	InvalidEventPolicy string `koanf:"invalid_event_policy"`

	// InactivityInflation applies the deviation growth step to athletes who
	// sit out a monthly rating period.
	InactivityInflation bool `koanf:"inactivity_inflation"`

	// Engine clamps.
	RatingMin       float64 `koanf:"rating_min"`
	RatingMax       float64 `koanf:"rating_max"`
	MaxRatingChange float64 `koanf:"max_rating_change"`
	DeviationMin    float64 `koanf:"deviation_min"`
	DeviationMax    float64 `koanf:"deviation_max"`
	VolatilityMin   float64 `koanf:"volatility_min"`
	VolatilityMax   float64 `koanf:"volatility_max"`

	// TopN sizes the monthly top-rating tables in the report.
	TopN int `koanf:"top_n"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		EventsFile:           "results_data.json",
		OutputFile:           "analyzed_data.json",
		Tau:                  0.5,
		ConvergenceTolerance: 1e-6,
		MaxSolverIterations:  100,
		PeriodMode:           "event",
		DivergencePolicy:     "abort",
		InvalidEventPolicy:   "abort",
		InactivityInflation:  true,
		RatingMin:            100,
		RatingMax:            5000,
		MaxRatingChange:      100,
		DeviationMin:         10,
		DeviationMax:         500,
		VolatilityMin:        0.0001,
		VolatilityMax:        0.15,
		TopN:                 10,
	}
}
