// Package parser turns free-form caregiver messages into structured baby-care events.
package parser

import (
	"errors"
	"fmt"
	"time"
)

// Category identifies which classifier produced a match on a line.
type Category string

const (
	CategoryTimestamp  Category = "timestamp"
	CategoryBreastfeed Category = "breastfeed"
	CategoryBottle     Category = "bottle"
	CategoryDiaperPee  Category = "diaper_pee"
	CategoryDiaperPoo  Category = "diaper_poo"
	CategorySleep      Category = "sleep"
	// CategoryDiaper labels combination failures over pee and poo samples.
	CategoryDiaper Category = "diaper"
)

// Side is the breast a feeding duration applies to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	// SideEach means the duration was spent on each side.
	SideEach Side = "each"
	// SideBoth means the duration is a total split evenly across sides.
	SideBoth Side = "both"
)

// DiaperKind is the content of a single diaper observation.
type DiaperKind string

const (
	DiaperPee  DiaperKind = "pee"
	DiaperPoo  DiaperKind = "poo"
	DiaperBoth DiaperKind = "both"
)

// Size is the amount recorded for a diaper observation.
type Size string

const (
	SizeNone   Size = ""
	SizeLittle Size = "little"
	SizeMedium Size = "medium"
	SizeBig    Size = "big"
)

// Observation is one line's raw extracted data for one category, before
// cross-line combination. Implementations are closed to this package.
type Observation interface {
	Category() Category
	observation()
}

// BreastfeedSide records a duration spent on one side (or each/both).
type BreastfeedSide struct {
	Side    Side `json:"side"`
	Minutes int  `json:"minutes"`
}

// BottleSample records a bottle volume of one feed type.
type BottleSample struct {
	FeedType   string  `json:"feed_type"`
	QuantityML float64 `json:"quantity_ml"`
}

// DiaperSample records a pee or poo observation.
type DiaperSample struct {
	Kind        DiaperKind `json:"kind"`
	Size        Size       `json:"size,omitempty"`
	Color       string     `json:"color,omitempty"`
	Consistency string     `json:"consistency,omitempty"`
}

// SleepSample records a sleep duration.
type SleepSample struct {
	Minutes int `json:"minutes"`
}

func (BreastfeedSide) Category() Category { return CategoryBreastfeed }
func (BottleSample) Category() Category   { return CategoryBottle }
func (SleepSample) Category() Category    { return CategorySleep }

// Category reports diaper_pee or diaper_poo depending on Kind.
func (d DiaperSample) Category() Category {
	if d.Kind == DiaperPoo {
		return CategoryDiaperPoo
	}
	return CategoryDiaperPee
}

func (BreastfeedSide) observation() {}
func (BottleSample) observation()   {}
func (DiaperSample) observation()   {}
func (SleepSample) observation()    {}

// EventKind names a finished event variant.
type EventKind string

const (
	KindBreastFeeding EventKind = "breastfeed"
	KindBottleFeeding EventKind = "bottle_feed"
	KindDiaper        EventKind = "diaper"
	KindSleep         EventKind = "sleep"
)

// Event is a finished, timestamped domain event. The set of variants is
// closed: BreastFeedingEvent, BottleFeedingEvent, DiaperEvent, SleepEvent.
// Consumers switch on the concrete type and treat anything else as an error.
type Event interface {
	Kind() EventKind
	At() time.Time
	event()
}

// BreastFeedingEvent holds per-side totals in minutes.
type BreastFeedingEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	LeftMinutes  float64   `json:"left_minutes"`
	RightMinutes float64   `json:"right_minutes"`
}

// BottleFeedingEvent holds the total volume of one feed type.
type BottleFeedingEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	QuantityML float64   `json:"quantity_ml"`
	FeedType   string    `json:"feed_type"`
}

// DiaperEvent is a single (possibly combined) diaper change.
type DiaperEvent struct {
	Timestamp   time.Time  `json:"timestamp"`
	Type        DiaperKind `json:"diaper_type"`
	PeeSize     Size       `json:"pee_size,omitempty"`
	PooSize     Size       `json:"poo_size,omitempty"`
	Color       string     `json:"color,omitempty"`
	Consistency string     `json:"consistency,omitempty"`
}

// SleepEvent holds a total sleep duration.
type SleepEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Minutes   int       `json:"minutes"`
}

func (e *BreastFeedingEvent) Kind() EventKind { return KindBreastFeeding }
func (e *BottleFeedingEvent) Kind() EventKind { return KindBottleFeeding }
func (e *DiaperEvent) Kind() EventKind        { return KindDiaper }
func (e *SleepEvent) Kind() EventKind         { return KindSleep }

func (e *BreastFeedingEvent) At() time.Time { return e.Timestamp }
func (e *BottleFeedingEvent) At() time.Time { return e.Timestamp }
func (e *DiaperEvent) At() time.Time        { return e.Timestamp }
func (e *SleepEvent) At() time.Time         { return e.Timestamp }

func (*BreastFeedingEvent) event() {}
func (*BottleFeedingEvent) event() {}
func (*DiaperEvent) event()        {}
func (*SleepEvent) event()         {}

// TotalMinutes returns the combined duration over both sides.
func (e *BreastFeedingEvent) TotalMinutes() float64 {
	return e.LeftMinutes + e.RightMinutes
}

// NoTimestampMessage is the only error reported when no line carried a clock time.
const NoTimestampMessage = "No valid time found."

// ErrUnpairedDiaper is returned when several diaper observations are not
// exactly one pee and one poo.
var ErrUnpairedDiaper = errors.New("diaper observations must be exactly one pee and one poo")

// CombineError is a hard failure while merging one category's observations.
type CombineError struct {
	Category     Category
	Observations int
	Err          error
}

func (e *CombineError) Error() string {
	return fmt.Sprintf("combining %d %s observation(s): %v", e.Observations, e.Category, e.Err)
}

func (e *CombineError) Unwrap() error { return e.Err }

// LineResult is the classification of one message line.
type LineResult struct {
	// Line is the trimmed original text.
	Line string `json:"line"`
	// Matches lists the categories that accepted the line, in evaluation order.
	Matches []Category `json:"matches,omitempty"`
	// Observations produced by the line.
	Observations []Observation `json:"-"`
	// Errors are line-soft diagnostics.
	Errors []string `json:"errors,omitempty"`
}

// Processed reports whether any category accepted the line.
func (r *LineResult) Processed() bool {
	return len(r.Matches) > 0
}

// Result is the outcome of parsing one message.
type Result struct {
	// Timestamp is nil when no line carried a usable clock time.
	Timestamp *time.Time `json:"timestamp"`
	// Events in combination order: diaper, breastfeeding, bottle, sleep.
	Events []Event `json:"events"`
	// Errors are human-readable diagnostics (message-fatal or line-soft).
	Errors []string `json:"errors"`
	// CombineErrors are hard per-category combination failures.
	CombineErrors []*CombineError `json:"-"`
	// Lines holds per-line classification details.
	Lines []LineResult `json:"lines,omitempty"`
}

// HasProblems reports whether the parse produced any diagnostic.
func (r *Result) HasProblems() bool {
	return len(r.Errors) > 0 || len(r.CombineErrors) > 0
}

// Err joins the combination failures, or returns nil.
func (r *Result) Err() error {
	if len(r.CombineErrors) == 0 {
		return nil
	}
	errs := make([]error, len(r.CombineErrors))
	for i, e := range r.CombineErrors {
		errs[i] = e
	}
	return errors.Join(errs...)
}
