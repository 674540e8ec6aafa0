package parser

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestClassifier_Classify(t *testing.T) {
	ref := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	classifier := NewClassifier(DefaultVocabulary(), ref)

	tests := []struct {
		name string
		line string
		want LineResult
	}{
		{
			name: "clock time",
			line: "8:00am",
			want: LineResult{Matches: []Category{CategoryTimestamp}},
		},
		{
			name: "breastfeed side",
			line: "left 10 min",
			want: LineResult{
				Matches:      []Category{CategoryBreastfeed},
				Observations: []Observation{BreastfeedSide{Side: SideLeft, Minutes: 10}},
			},
		},
		{
			name: "misspelled side",
			line: "rigth 15 min",
			want: LineResult{
				Matches:      []Category{CategoryBreastfeed},
				Observations: []Observation{BreastfeedSide{Side: SideRight, Minutes: 15}},
			},
		},
		{
			name: "side without duration",
			line: "left",
			want: LineResult{
				Errors: []string{"Side duration missing: left", "Unrecognized line: left"},
			},
		},
		{
			name: "bottle",
			line: "fed formula 120ml",
			want: LineResult{
				Matches:      []Category{CategoryBottle},
				Observations: []Observation{BottleSample{FeedType: "Formula", QuantityML: 120}},
			},
		},
		{
			name: "bottle in ounces",
			line: "breastmilk 2oz",
			want: LineResult{
				Matches:      []Category{CategoryBottle},
				Observations: []Observation{BottleSample{FeedType: "Breast Milk", QuantityML: 59.15}},
			},
		},
		{
			name: "feed type without volume",
			line: "formula",
			want: LineResult{Errors: []string{"Unrecognized line: formula"}},
		},
		{
			name: "pee with size",
			line: "pee little",
			want: LineResult{
				Matches:      []Category{CategoryDiaperPee},
				Observations: []Observation{DiaperSample{Kind: DiaperPee, Size: SizeLittle}},
			},
		},
		{
			name: "size synonym",
			line: "wet large",
			want: LineResult{
				Matches:      []Category{CategoryDiaperPee},
				Observations: []Observation{DiaperSample{Kind: DiaperPee, Size: SizeBig}},
			},
		},
		{
			name: "poo with details",
			line: "poop big brown seedy",
			want: LineResult{
				Matches: []Category{CategoryDiaperPoo},
				Observations: []Observation{DiaperSample{
					Kind:        DiaperPoo,
					Size:        SizeBig,
					Color:       "brown",
					Consistency: "seedy",
				}},
			},
		},
		{
			name: "pee and poo on one line",
			line: "wet and poop",
			want: LineResult{
				Matches: []Category{CategoryDiaperPee, CategoryDiaperPoo},
				Observations: []Observation{
					DiaperSample{Kind: DiaperPee},
					DiaperSample{Kind: DiaperPoo},
				},
			},
		},
		{
			name: "sleep",
			line: "slept 45 min",
			want: LineResult{
				Matches:      []Category{CategorySleep},
				Observations: []Observation{SleepSample{Minutes: 45}},
			},
		},
		{
			name: "sleep without duration still matches",
			line: "nap",
			want: LineResult{
				Matches: []Category{CategorySleep},
				Errors:  []string{"Sleep duration missing: nap"},
			},
		},
		{
			name: "unrecognized",
			line: "hello there",
			want: LineResult{Errors: []string{"Unrecognized line: hello there"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Line = tt.line
			got := classifier.Classify(tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestLineResult_Processed(t *testing.T) {
	r := LineResult{Line: "x"}
	if r.Processed() {
		t.Error("Processed() = true for a line without matches")
	}
	r.Matches = append(r.Matches, CategorySleep)
	if !r.Processed() {
		t.Error("Processed() = false for a matched line")
	}
}
