// Package output renders parse results for people and machines.
package output

import (
	"time"

	"github.com/ccollicutt/babylog/pkg/parser"
)

// Report is the complete output for one parsed message.
type Report struct {
	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`

	// Timestamp is the resolved event time, nil when none was found.
	Timestamp *time.Time `json:"timestamp"`

	// Events carries each event with its kind.
	Events []EventRecord `json:"events"`

	// Errors are the parser diagnostics.
	Errors []string `json:"errors"`

	// Failures are the diaper (or other) combination failures.
	Failures []string `json:"failures,omitempty"`

	// Lines holds per-line classification details.
	Lines []parser.LineResult `json:"lines,omitempty"`

	// Metadata provides context about the message.
	Metadata Metadata `json:"metadata"`
}

// EventRecord tags an event with its kind so JSON consumers can dispatch.
type EventRecord struct {
	Kind  parser.EventKind `json:"kind"`
	Event parser.Event     `json:"event"`
}

// Summary provides aggregate counts.
type Summary struct {
	// Events is the number of finished events.
	Events int `json:"events"`

	// Errors is the number of diagnostics.
	Errors int `json:"errors"`

	// Failures is the number of combination failures.
	Failures int `json:"failures"`

	// Lines is the number of non-empty lines classified.
	Lines int `json:"lines"`
}

// Metadata provides context about where a message came from.
type Metadata struct {
	// Source names the file, chat or argument the message came from.
	Source string `json:"source"`

	// ReceivedAt is the reference instant the message was parsed against.
	ReceivedAt time.Time `json:"received_at"`

	// ParsedAt is when parsing finished.
	ParsedAt time.Time `json:"parsed_at"`
}

// NewReport creates a Report from a parse result.
func NewReport(result *parser.Result, source string, receivedAt time.Time) *Report {
	report := &Report{
		Timestamp: result.Timestamp,
		Events:    make([]EventRecord, 0, len(result.Events)),
		Errors:    result.Errors,
		Lines:     result.Lines,
		Metadata: Metadata{
			Source:     source,
			ReceivedAt: receivedAt,
			ParsedAt:   time.Now(),
		},
		Summary: Summary{
			Events:   len(result.Events),
			Errors:   len(result.Errors),
			Failures: len(result.CombineErrors),
			Lines:    len(result.Lines),
		},
	}

	for _, ev := range result.Events {
		report.Events = append(report.Events, EventRecord{Kind: ev.Kind(), Event: ev})
	}
	for _, ce := range result.CombineErrors {
		report.Failures = append(report.Failures, ce.Error())
	}

	return report
}

// HasProblems returns true if parsing produced diagnostics or failures.
func (r *Report) HasProblems() bool {
	return r.Summary.Errors > 0 || r.Summary.Failures > 0
}
