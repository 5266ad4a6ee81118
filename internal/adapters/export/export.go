// Package export serializes a completed recalculation run for downstream
// consumers (database uploaders, chart data, ad-hoc analysis).
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/recalc"
	"github.com/athlora/podium/internal/domain/timeline"
)

// Metadata summarizes a run for quick inspection of the artifact.
type Metadata struct {
	AthleteCount    int `json:"athlete_count"`
	HistoryCount    int `json:"history_count"`
	HeadToHeadCount int `json:"head_to_head_count"`
}

// Report is the full output document of one run.
type Report struct {
	RunID       string                             `json:"run_id"`
	GeneratedAt time.Time                          `json:"generated_at"`
	Athletes    []model.AthleteState               `json:"athletes"`
	History     []model.HistoryEntry               `json:"history"`
	HeadToHead  map[string]model.HeadToHeadRecord  `json:"head_to_head"`
	Timelines   map[int64]timeline.AthleteTimeline `json:"timelines"`
	MonthlyTop  []timeline.MonthSummary            `json:"monthly_top"`
	Metadata    Metadata                           `json:"metadata"`
}

// BuildReport assembles the export document from a run result. Each report
// gets a fresh run id.
func BuildReport(result *recalc.Result, topN int) Report {
	timelines := timeline.Build(result.History)

	return Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Athletes:    result.Store.All(),
		History:     result.History,
		HeadToHead:  result.HeadToHead,
		Timelines:   timelines,
		MonthlyTop:  timeline.MonthlyTop(timelines, topN),
		Metadata: Metadata{
			AthleteCount:    result.Store.Count(),
			HistoryCount:    len(result.History),
			HeadToHeadCount: len(result.HeadToHead),
		},
	}
}

// WriteFile writes the report as indented JSON.
func WriteFile(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
