package parser

import (
	"fmt"
	"sort"
)

// keywordTable maps fuzzy keywords to canonical values. Keyword order is
// match priority for FuzzyExtract ties.
type keywordTable struct {
	words  []string
	values map[string]string
}

func newKeywordTable(pairs ...string) keywordTable {
	t := keywordTable{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.add(pairs[i], pairs[i+1])
	}
	return t
}

func (t *keywordTable) add(word, value string) {
	if _, ok := t.values[word]; !ok {
		t.words = append(t.words, word)
	}
	t.values[word] = value
}

func (t keywordTable) clone() keywordTable {
	c := keywordTable{
		words:  append([]string(nil), t.words...),
		values: make(map[string]string, len(t.values)),
	}
	for k, v := range t.values {
		c.values[k] = v
	}
	return c
}

// extract returns the canonical value of the best fuzzy keyword in text.
func (t keywordTable) extract(text string) (string, bool) {
	kw, ok := FuzzyExtract(text, t.words)
	if !ok {
		return "", false
	}
	return t.values[kw], true
}

// Vocabulary holds the keyword tables used by the line classifier.
// A Vocabulary is immutable once built and safe to share between goroutines.
type Vocabulary struct {
	sides         keywordTable
	feedTypes     keywordTable
	sizes         keywordTable
	colors        keywordTable
	consistencies keywordTable
	pee           []string
	poo           []string
	sleep         []string
}

// DefaultVocabulary returns the built-in English vocabulary.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		sides: newKeywordTable(
			"left", string(SideLeft),
			"right", string(SideRight),
			"each", string(SideEach),
			"both", string(SideBoth),
		),
		feedTypes: newKeywordTable(
			"formula", "Formula",
			"milk", "Breast Milk",
			"breastmilk", "Breast Milk",
		),
		sizes: newKeywordTable(
			"little", string(SizeLittle),
			"small", string(SizeLittle),
			"medium", string(SizeMedium),
			"big", string(SizeBig),
			"large", string(SizeBig),
		),
		colors: newKeywordTable(
			"yellow", "yellow",
			"green", "green",
			"brown", "brown",
			"black", "black",
			"red", "red",
			"orange", "orange",
		),
		consistencies: newKeywordTable(
			"runny", "runny",
			"seedy", "seedy",
			"soft", "soft",
			"solid", "solid",
			"hard", "hard",
			"mucousy", "mucousy",
		),
		pee:   []string{"pee", "wet", "urine"},
		poo:   []string{"poop", "potty", "dirty"},
		sleep: []string{"sleep", "slept", "nap"},
	}
}

// Extensions are extra keywords appended to a Vocabulary. Map-valued
// entries map a keyword to its canonical value.
type Extensions struct {
	Sides         map[string]string
	FeedTypes     map[string]string
	Sizes         map[string]string
	Colors        map[string]string
	Consistencies map[string]string
	Pee           []string
	Poo           []string
	Sleep         []string
}

var (
	validSides = map[string]bool{
		string(SideLeft): true, string(SideRight): true, string(SideEach): true, string(SideBoth): true,
	}
	validSizes = map[string]bool{
		string(SizeLittle): true, string(SizeMedium): true, string(SizeBig): true,
	}
)

// Extend returns a new Vocabulary with ext appended after the existing
// keywords. Map entries are appended in keyword order. The receiver is
// not modified.
func (v *Vocabulary) Extend(ext Extensions) (*Vocabulary, error) {
	out := &Vocabulary{
		sides:         v.sides.clone(),
		feedTypes:     v.feedTypes.clone(),
		sizes:         v.sizes.clone(),
		colors:        v.colors.clone(),
		consistencies: v.consistencies.clone(),
		pee:           append([]string(nil), v.pee...),
		poo:           append([]string(nil), v.poo...),
		sleep:         append([]string(nil), v.sleep...),
	}

	tables := []struct {
		name    string
		table   *keywordTable
		entries map[string]string
		allowed map[string]bool
	}{
		{"sides", &out.sides, ext.Sides, validSides},
		{"feed_types", &out.feedTypes, ext.FeedTypes, nil},
		{"sizes", &out.sizes, ext.Sizes, validSizes},
		{"colors", &out.colors, ext.Colors, nil},
		{"consistencies", &out.consistencies, ext.Consistencies, nil},
	}
	for _, tbl := range tables {
		words := make([]string, 0, len(tbl.entries))
		for w := range tbl.entries {
			words = append(words, w)
		}
		sort.Strings(words)
		for _, w := range words {
			if err := validateKeyword(w); err != nil {
				return nil, fmt.Errorf("%s: %w", tbl.name, err)
			}
			value := tbl.entries[w]
			if value == "" {
				return nil, fmt.Errorf("%s: keyword %q has no value", tbl.name, w)
			}
			if tbl.allowed != nil && !tbl.allowed[value] {
				return nil, fmt.Errorf("%s: keyword %q maps to unknown value %q", tbl.name, w, value)
			}
			tbl.table.add(w, value)
		}
	}

	lists := []struct {
		name  string
		list  *[]string
		words []string
	}{
		{"pee", &out.pee, ext.Pee},
		{"poo", &out.poo, ext.Poo},
		{"sleep", &out.sleep, ext.Sleep},
	}
	for _, l := range lists {
		for _, w := range l.words {
			if err := validateKeyword(w); err != nil {
				return nil, fmt.Errorf("%s: %w", l.name, err)
			}
			if !contains(*l.list, w) {
				*l.list = append(*l.list, w)
			}
		}
	}

	return out, nil
}

// validateKeyword requires a keyword to be exactly one lowercase token.
func validateKeyword(w string) error {
	tokens := tokenize(w)
	if len(tokens) != 1 || tokens[0] != w {
		return fmt.Errorf("keyword %q must be a single lowercase word", w)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the keywords the classifier uses for c.
// CategoryTimestamp and unknown categories have none.
func (v *Vocabulary) Keywords(c Category) []string {
	var words []string
	switch c {
	case CategoryBreastfeed:
		words = v.sides.words
	case CategoryBottle:
		words = v.feedTypes.words
	case CategoryDiaperPee:
		words = v.pee
	case CategoryDiaperPoo:
		words = v.poo
	case CategorySleep:
		words = v.sleep
	}
	return append([]string(nil), words...)
}

// Collision is a pair of trigger keywords from different categories that
// fuzzily match each other, so a line with one also triggers the other.
type Collision struct {
	A, B         Category
	WordA, WordB string
	Score        float64
}

func (c Collision) String() string {
	return fmt.Sprintf("%s %q ~ %s %q (%.0f)", c.A, c.WordA, c.B, c.WordB, c.Score)
}

// Collisions lists cross-category trigger keyword pairs scoring at least
// FuzzyThreshold.
func (v *Vocabulary) Collisions() []Collision {
	cats := []Category{CategoryBreastfeed, CategoryBottle, CategoryDiaperPee, CategoryDiaperPoo, CategorySleep}
	var out []Collision
	for i, a := range cats {
		for _, b := range cats[i+1:] {
			for _, wa := range v.Keywords(a) {
				for _, wb := range v.Keywords(b) {
					if score := Similarity(wa, wb); score >= FuzzyThreshold {
						out = append(out, Collision{A: a, B: b, WordA: wa, WordB: wb, Score: score})
					}
				}
			}
		}
	}
	return out
}
