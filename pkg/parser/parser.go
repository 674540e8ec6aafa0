package parser

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Parser turns caregiver messages into events. A Parser is safe for
// concurrent use.
type Parser struct {
	vocab *Vocabulary
}

// New creates a parser using vocab, or DefaultVocabulary when vocab is nil.
func New(vocab *Vocabulary) *Parser {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Parser{vocab: vocab}
}

// Vocabulary returns the keyword tables this parser classifies with.
func (p *Parser) Vocabulary() *Vocabulary {
	return p.vocab
}

var defaultParser = New(nil)

// Parse parses text with the default vocabulary.
func Parse(text string, ref time.Time) *Result {
	return defaultParser.Parse(text, ref)
}

// Parse parses one message. The first line carrying a clock time sets the
// timestamp of every event, with date and location taken from ref. When no
// line carries a clock time, nothing is classified and the result holds
// only NoTimestampMessage.
func (p *Parser) Parse(text string, ref time.Time) *Result {
	lines := SplitLines(text)
	result := &Result{Events: []Event{}, Errors: []string{}}

	ts, ok := resolveTimestamp(lines, ref)
	if !ok {
		result.Errors = append(result.Errors, NoTimestampMessage)
		return result
	}
	result.Timestamp = &ts

	classifier := NewClassifier(p.vocab, ref)
	var acc accumulator
	for _, l := range lines {
		lr := classifier.Classify(l)
		result.Errors = append(result.Errors, lr.Errors...)
		acc.add(lr.Observations)
		result.Lines = append(result.Lines, lr)
	}
	acc.combine(ts, result)

	return result
}

// SplitLines NFKC-normalizes text and returns its non-empty trimmed lines.
func SplitLines(text string) []string {
	text = norm.NFKC.String(text)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if l := strings.TrimSpace(f); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func resolveTimestamp(lines []string, ref time.Time) (time.Time, bool) {
	for _, l := range lines {
		if ts, ok := ParseTimeLine(l, ref); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}
