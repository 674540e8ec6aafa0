package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewJSONFormatter() returned nil")
	}
	if f.Name() != "json" {
		t.Errorf("Name() = %q, want %q", f.Name(), "json")
	}
}

type decodedReport struct {
	Summary   Summary `json:"summary"`
	Timestamp *string `json:"timestamp"`
	Events    []struct {
		Kind  string          `json:"kind"`
		Event json.RawMessage `json:"event"`
	} `json:"events"`
	Errors   []string          `json:"errors"`
	Lines    []json.RawMessage `json:"lines"`
	Metadata struct {
		Source string `json:"source"`
	} `json:"metadata"`
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	report := createTestReport("9:30pm\npee little\npoop big brown\nformula 90ml")

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed decodedReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if parsed.Summary.Events != 2 {
		t.Errorf("Summary.Events = %d, want 2", parsed.Summary.Events)
	}
	if parsed.Timestamp == nil || *parsed.Timestamp != "2024-03-10T21:30:00Z" {
		t.Errorf("Timestamp = %v", parsed.Timestamp)
	}
	if len(parsed.Events) != 2 || parsed.Events[0].Kind != "diaper" || parsed.Events[1].Kind != "bottle_feed" {
		t.Fatalf("Events = %+v", parsed.Events)
	}

	var diaper struct {
		Type    string `json:"diaper_type"`
		PooSize string `json:"poo_size"`
	}
	if err := json.Unmarshal(parsed.Events[0].Event, &diaper); err != nil {
		t.Fatalf("diaper event: %v", err)
	}
	if diaper.Type != "both" || diaper.PooSize != "big" {
		t.Errorf("diaper = %+v", diaper)
	}
	if len(parsed.Lines) != 0 {
		t.Errorf("Lines should be omitted without verbose, got %d", len(parsed.Lines))
	}
	if parsed.Metadata.Source != "chat 42" {
		t.Errorf("Metadata.Source = %q", parsed.Metadata.Source)
	}
}

func TestJSONFormatter_Format_Verbose(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Verbose: true})
	report := createTestReport("8am\nleft 10 min")

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed decodedReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(parsed.Lines) != 2 {
		t.Errorf("len(Lines) = %d, want 2", len(parsed.Lines))
	}
	if len(report.Lines) != 2 {
		t.Error("Format() must not modify the report")
	}
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})
	report := createTestReport("8am\nleft 10 min\nhello")

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	// Quiet mode should only output summary
	var parsed Summary
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	want := Summary{Events: 1, Errors: 1, Lines: 3}
	if parsed != want {
		t.Errorf("Summary = %+v, want %+v", parsed, want)
	}
}

func TestJSONFormatter_Format_NoTimestamp(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	report := createTestReport("nothing useful")

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed decodedReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.Timestamp != nil {
		t.Errorf("Timestamp = %v, want null", *parsed.Timestamp)
	}
	if parsed.Events == nil || len(parsed.Events) != 0 {
		t.Errorf("Events = %v, want empty array", parsed.Events)
	}
}
