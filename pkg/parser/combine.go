package parser

import (
	"errors"
	"time"
)

// CombineBreastfeeding merges side durations into a single event. "each"
// adds the full duration to both sides; "both" splits it in half.
// Returns nil when there are no samples.
func CombineBreastfeeding(samples []BreastfeedSide, ts time.Time) *BreastFeedingEvent {
	if len(samples) == 0 {
		return nil
	}
	ev := &BreastFeedingEvent{Timestamp: ts}
	for _, s := range samples {
		minutes := float64(s.Minutes)
		switch s.Side {
		case SideLeft:
			ev.LeftMinutes += minutes
		case SideRight:
			ev.RightMinutes += minutes
		case SideEach:
			ev.LeftMinutes += minutes
			ev.RightMinutes += minutes
		case SideBoth:
			ev.LeftMinutes += minutes / 2
			ev.RightMinutes += minutes / 2
		}
	}
	return ev
}

// CombineBottles sums volumes per feed type, one event per type in order
// of first appearance.
func CombineBottles(samples []BottleSample, ts time.Time) []*BottleFeedingEvent {
	var events []*BottleFeedingEvent
	byType := make(map[string]*BottleFeedingEvent)
	for _, s := range samples {
		ev, ok := byType[s.FeedType]
		if !ok {
			ev = &BottleFeedingEvent{Timestamp: ts, FeedType: s.FeedType}
			byType[s.FeedType] = ev
			events = append(events, ev)
		}
		ev.QuantityML += s.QuantityML
	}
	return events
}

// CombineDiapers merges diaper samples into one change. A single sample
// passes through; several must be exactly one pee and one poo, otherwise a
// *CombineError wrapping ErrUnpairedDiaper is returned.
func CombineDiapers(samples []DiaperSample, ts time.Time) (*DiaperEvent, error) {
	switch len(samples) {
	case 0:
		return nil, nil
	case 1:
		s := samples[0]
		ev := &DiaperEvent{Timestamp: ts, Type: s.Kind, Color: s.Color, Consistency: s.Consistency}
		if s.Kind == DiaperPoo {
			ev.PooSize = s.Size
		} else {
			ev.PeeSize = s.Size
		}
		return ev, nil
	}

	var pee, poo []DiaperSample
	for _, s := range samples {
		if s.Kind == DiaperPoo {
			poo = append(poo, s)
		} else {
			pee = append(pee, s)
		}
	}
	if len(samples) != 2 || len(pee) != 1 || len(poo) != 1 {
		return nil, &CombineError{Category: CategoryDiaper, Observations: len(samples), Err: ErrUnpairedDiaper}
	}

	ev := &DiaperEvent{
		Timestamp:   ts,
		Type:        DiaperBoth,
		PeeSize:     pee[0].Size,
		PooSize:     poo[0].Size,
		Color:       firstNonEmpty(poo[0].Color, pee[0].Color),
		Consistency: firstNonEmpty(poo[0].Consistency, pee[0].Consistency),
	}
	return ev, nil
}

// CombineSleep sums sleep durations. Returns nil when there are no samples.
func CombineSleep(samples []SleepSample, ts time.Time) *SleepEvent {
	if len(samples) == 0 {
		return nil
	}
	ev := &SleepEvent{Timestamp: ts}
	for _, s := range samples {
		ev.Minutes += s.Minutes
	}
	return ev
}

// accumulator collects observations per category across lines.
type accumulator struct {
	sides   []BreastfeedSide
	bottles []BottleSample
	diapers []DiaperSample
	sleeps  []SleepSample
}

func (a *accumulator) add(obs []Observation) {
	for _, o := range obs {
		switch o := o.(type) {
		case BreastfeedSide:
			a.sides = append(a.sides, o)
		case BottleSample:
			a.bottles = append(a.bottles, o)
		case DiaperSample:
			a.diapers = append(a.diapers, o)
		case SleepSample:
			a.sleeps = append(a.sleeps, o)
		}
	}
}

// combine appends finished events to r in the order diaper, breastfeeding,
// bottle, sleep. A failing category does not prevent the others.
func (a *accumulator) combine(ts time.Time, r *Result) {
	diaper, err := CombineDiapers(a.diapers, ts)
	if err != nil {
		var ce *CombineError
		if errors.As(err, &ce) {
			r.CombineErrors = append(r.CombineErrors, ce)
		}
	} else if diaper != nil {
		r.Events = append(r.Events, diaper)
	}

	if bf := CombineBreastfeeding(a.sides, ts); bf != nil {
		r.Events = append(r.Events, bf)
	}
	for _, b := range CombineBottles(a.bottles, ts) {
		r.Events = append(r.Events, b)
	}
	if s := CombineSleep(a.sleeps, ts); s != nil {
		r.Events = append(r.Events, s)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
