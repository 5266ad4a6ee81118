// Package ingest decodes collector-produced event documents into validated,
// date-sorted events for the rating core. It owns the upstream contract:
// whatever reaches the scheduler is fully materialized and valid.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/recalc"
)

// Document mirrors the JSON layout written by the results collector:
// events keyed by id, plus flat result rows referencing them.
type Document struct {
	Events  map[string]EventInfo `json:"events"`
	Results []ResultRow          `json:"results"`
}

// EventInfo is the per-event metadata carried by the document.
type EventInfo struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// ResultRow is one athlete's result in one event.
type ResultRow struct {
	EventID   int64  `json:"event_id"`
	AthleteID int64  `json:"athlete_id"`
	Position  int    `json:"position"`
	Status    string `json:"status"`
}

// Statuses that mark a non-finisher; their rows never reach the core.
var nonFinisherStatuses = map[string]struct{}{
	"DNF": {},
	"DNS": {},
	"DSQ": {},
	"LAP": {},
}

// Parse decodes a raw events document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	return doc, nil
}

// Load reads and converts an events document from disk.
func Load(path string) ([]model.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return doc.BuildEvents()
}

// BuildEvents converts the document into validated, date-sorted events.
// Non-finisher rows are dropped; rows referencing unknown events fail the
// whole document.
func (d Document) BuildEvents() ([]model.Event, error) {
	byID := make(map[int64]*model.Event, len(d.Events))
	for key, info := range d.Events {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: event key %q is not an id", ErrBadDocument, key)
		}
		date, err := parseDate(info.Date)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", id, err)
		}
		byID[id] = &model.Event{
			EventID:    id,
			Title:      info.Title,
			Date:       date,
			Importance: model.ImportanceFromTitle(info.Title),
		}
	}

	for _, row := range d.Results {
		if _, nonFinisher := nonFinisherStatuses[strings.ToUpper(row.Status)]; nonFinisher {
			continue
		}
		event, ok := byID[row.EventID]
		if !ok {
			return nil, fmt.Errorf("%w: result row references unknown event %d", ErrBadDocument, row.EventID)
		}
		event.Finishers = append(event.Finishers, model.Finisher{
			AthleteID: row.AthleteID,
			Position:  row.Position,
		})
	}

	events := make([]model.Event, 0, len(byID))
	for _, event := range byID {
		if len(event.Finishers) == 0 {
			continue // nothing to rate
		}
		if err := recalc.ValidateEvent(*event); err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].EventID < events[j].EventID
	})
	return events, nil
}

// parseDate accepts ISO dates, tolerating a trailing time component.
func parseDate(raw string) (time.Time, error) {
	if len(raw) > 10 {
		raw = raw[:10]
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
	}
	return t, nil
}
