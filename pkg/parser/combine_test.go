package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var combineTS = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func TestCombineBreastfeeding(t *testing.T) {
	tests := []struct {
		name      string
		samples   []BreastfeedSide
		wantLeft  float64
		wantRight float64
	}{
		{
			name:      "left and right",
			samples:   []BreastfeedSide{{SideLeft, 10}, {SideRight, 15}},
			wantLeft:  10,
			wantRight: 15,
		},
		{
			name:      "each",
			samples:   []BreastfeedSide{{SideEach, 20}},
			wantLeft:  20,
			wantRight: 20,
		},
		{
			name:      "both splits in half",
			samples:   []BreastfeedSide{{SideBoth, 40}},
			wantLeft:  20,
			wantRight: 20,
		},
		{
			name:      "odd both keeps fraction",
			samples:   []BreastfeedSide{{SideBoth, 15}},
			wantLeft:  7.5,
			wantRight: 7.5,
		},
		{
			name:      "repeated side sums",
			samples:   []BreastfeedSide{{SideLeft, 5}, {SideLeft, 7}, {SideRight, 3}},
			wantLeft:  12,
			wantRight: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CombineBreastfeeding(tt.samples, combineTS)
			if got == nil {
				t.Fatal("CombineBreastfeeding() = nil")
			}
			if got.LeftMinutes != tt.wantLeft || got.RightMinutes != tt.wantRight {
				t.Errorf("CombineBreastfeeding() = (%v, %v), want (%v, %v)",
					got.LeftMinutes, got.RightMinutes, tt.wantLeft, tt.wantRight)
			}
			if !got.Timestamp.Equal(combineTS) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, combineTS)
			}
		})
	}

	if got := CombineBreastfeeding(nil, combineTS); got != nil {
		t.Errorf("CombineBreastfeeding(nil) = %+v, want nil", got)
	}
}

func TestCombineBottles(t *testing.T) {
	samples := []BottleSample{
		{FeedType: "Formula", QuantityML: 60},
		{FeedType: "Breast Milk", QuantityML: 30},
		{FeedType: "Formula", QuantityML: 60},
	}
	want := []*BottleFeedingEvent{
		{Timestamp: combineTS, FeedType: "Formula", QuantityML: 120},
		{Timestamp: combineTS, FeedType: "Breast Milk", QuantityML: 30},
	}

	got := CombineBottles(samples, combineTS)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CombineBottles() mismatch (-want +got):\n%s", diff)
	}

	if got := CombineBottles(nil, combineTS); len(got) != 0 {
		t.Errorf("CombineBottles(nil) = %v, want empty", got)
	}
}

func TestCombineDiapers(t *testing.T) {
	tests := []struct {
		name    string
		samples []DiaperSample
		want    *DiaperEvent
		wantErr bool
	}{
		{
			name:    "none",
			samples: nil,
			want:    nil,
		},
		{
			name:    "single pee",
			samples: []DiaperSample{{Kind: DiaperPee, Size: SizeLittle}},
			want:    &DiaperEvent{Timestamp: combineTS, Type: DiaperPee, PeeSize: SizeLittle},
		},
		{
			name:    "single poo keeps details",
			samples: []DiaperSample{{Kind: DiaperPoo, Size: SizeBig, Color: "green", Consistency: "runny"}},
			want: &DiaperEvent{
				Timestamp:   combineTS,
				Type:        DiaperPoo,
				PooSize:     SizeBig,
				Color:       "green",
				Consistency: "runny",
			},
		},
		{
			name: "pee and poo combine",
			samples: []DiaperSample{
				{Kind: DiaperPee, Size: SizeLittle},
				{Kind: DiaperPoo, Size: SizeBig, Color: "brown"},
			},
			want: &DiaperEvent{
				Timestamp: combineTS,
				Type:      DiaperBoth,
				PeeSize:   SizeLittle,
				PooSize:   SizeBig,
				Color:     "brown",
			},
		},
		{
			name: "poo before pee",
			samples: []DiaperSample{
				{Kind: DiaperPoo, Size: SizeMedium},
				{Kind: DiaperPee},
			},
			want: &DiaperEvent{Timestamp: combineTS, Type: DiaperBoth, PooSize: SizeMedium},
		},
		{
			name:    "two pees",
			samples: []DiaperSample{{Kind: DiaperPee}, {Kind: DiaperPee}},
			wantErr: true,
		},
		{
			name:    "pee and two poos",
			samples: []DiaperSample{{Kind: DiaperPee}, {Kind: DiaperPoo}, {Kind: DiaperPoo}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CombineDiapers(tt.samples, combineTS)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CombineDiapers() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnpairedDiaper) {
					t.Errorf("CombineDiapers() error = %v, want ErrUnpairedDiaper", err)
				}
				var ce *CombineError
				if !errors.As(err, &ce) || ce.Category != CategoryDiaper || ce.Observations != len(tt.samples) {
					t.Errorf("CombineDiapers() error = %#v, want *CombineError for %d diaper observations", err, len(tt.samples))
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CombineDiapers() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCombineSleep(t *testing.T) {
	got := CombineSleep([]SleepSample{{Minutes: 45}, {Minutes: 30}}, combineTS)
	if got == nil || got.Minutes != 75 {
		t.Fatalf("CombineSleep() = %+v, want 75 minutes", got)
	}
	if got := CombineSleep(nil, combineTS); got != nil {
		t.Errorf("CombineSleep(nil) = %+v, want nil", got)
	}
}
