package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ccollicutt/babylog/pkg/parser"
)

// TimeLayout is how the preview prints the event timestamp.
const TimeLayout = "2006-01-02 15:04"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %d events, %d errors, %d failures, %d lines\n",
		sourceName(report),
		report.Summary.Events,
		report.Summary.Errors,
		report.Summary.Failures,
		report.Summary.Lines)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s ===\n", sourceName(report))

	if report.Timestamp != nil {
		writeTime(&b, report.Timestamp.Format(TimeLayout))
	}
	for _, rec := range report.Events {
		writeEvent(&b, rec.Event)
	}
	if len(report.Events) == 0 {
		b.WriteString("No events.\n\n")
	}

	if len(report.Errors) > 0 {
		b.WriteString("Errors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	if len(report.Failures) > 0 {
		b.WriteString("Failures:\n")
		for _, e := range report.Failures {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	if f.opts.Verbose {
		b.WriteString("Lines:\n")
		for _, l := range report.Lines {
			fmt.Fprintf(&b, "  %-40s %s\n", l.Line, formatMatches(l.Matches))
		}
		fmt.Fprintf(&b, "Received: %s\n", report.Metadata.ReceivedAt.Format(TimeLayout))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Preview renders the chat confirmation for a result with a timestamp.
// Diagnostics are listed as warnings above the question.
func Preview(result *parser.Result) string {
	var b strings.Builder
	if result.Timestamp != nil {
		writeTime(&b, result.Timestamp.Format(TimeLayout))
	}
	for _, ev := range result.Events {
		writeEvent(&b, ev)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "⚠️ %s\n", e)
	}
	for _, ce := range result.CombineErrors {
		fmt.Fprintf(&b, "⚠️ %s\n", ce.Error())
	}
	if result.HasProblems() {
		b.WriteString("\n")
	}
	b.WriteString("Confirm upload?")
	return b.String()
}

// FailureText renders the chat reply for a message that produced nothing to upload.
func FailureText(result *parser.Result) string {
	var b strings.Builder
	b.WriteString("❌ Could not parse event.")
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "\n- %s", e)
	}
	for _, ce := range result.CombineErrors {
		fmt.Fprintf(&b, "\n- %s", ce.Error())
	}
	return b.String()
}

func writeTime(b *strings.Builder, ts string) {
	fmt.Fprintf(b, "🕒 Time: %s\n\n", ts)
}

func writeEvent(b *strings.Builder, ev parser.Event) {
	switch e := ev.(type) {
	case *parser.BreastFeedingEvent:
		b.WriteString("🍼 Breastfeed\n")
		fmt.Fprintf(b, "  - Total: %s min\n", formatNumber(e.TotalMinutes()))
		fmt.Fprintf(b, "  - Left: %s min\n", formatNumber(e.LeftMinutes))
		fmt.Fprintf(b, "  - Right: %s min\n", formatNumber(e.RightMinutes))
	case *parser.BottleFeedingEvent:
		b.WriteString("🥛 Bottle\n")
		fmt.Fprintf(b, "  - %s: %s ml\n", e.FeedType, formatNumber(e.QuantityML))
	case *parser.DiaperEvent:
		b.WriteString("🧷 Diaper\n")
		fmt.Fprintf(b, "  - Type: %s\n", e.Type)
		writeOptional(b, "Pee", string(e.PeeSize))
		writeOptional(b, "Poo", string(e.PooSize))
		writeOptional(b, "Color", e.Color)
		writeOptional(b, "Consistency", e.Consistency)
	case *parser.SleepEvent:
		b.WriteString("😴 Sleep\n")
		fmt.Fprintf(b, "  - Duration: %d min\n", e.Minutes)
	default:
		fmt.Fprintf(b, "❓ %s\n", ev.Kind())
	}
	b.WriteString("\n")
}

func writeOptional(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "  - %s: %s\n", label, value)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMatches(matches []parser.Category) string {
	if len(matches) == 0 {
		return "(unrecognized)"
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = string(m)
	}
	return "[" + strings.Join(names, ",") + "]"
}

func sourceName(report *Report) string {
	if report.Metadata.Source == "" {
		return "message"
	}
	return report.Metadata.Source
}
