package parser

import (
	"strings"
	"time"
)

// matcher is one category's classification rule. Each matcher inspects a
// line independently; categories are not mutually exclusive.
type matcher interface {
	// Category returns the category reported when the line matches.
	Category() Category

	// Match inspects one line and reports what it found.
	Match(ln line) match
}

// line is a trimmed message line and its lowercased form.
type line struct {
	raw   string
	lower string
}

// match is the outcome of one matcher on one line. A matcher can report a
// soft error with or without accepting the line.
type match struct {
	ok          bool
	observation Observation
	err         string
}

// Classifier runs every category matcher over single lines.
type Classifier struct {
	matchers []matcher
}

// NewClassifier creates a classifier using vocab. Clock times are resolved
// against ref.
func NewClassifier(vocab *Vocabulary, ref time.Time) *Classifier {
	return &Classifier{
		matchers: []matcher{
			timestampMatcher{ref: ref},
			breastfeedMatcher{sides: vocab.sides},
			bottleMatcher{feedTypes: vocab.feedTypes},
			peeMatcher{keywords: vocab.pee, sizes: vocab.sizes},
			pooMatcher{
				keywords:      vocab.poo,
				sizes:         vocab.sizes,
				colors:        vocab.colors,
				consistencies: vocab.consistencies,
			},
			sleepMatcher{keywords: vocab.sleep},
		},
	}
}

// Classify evaluates one trimmed line against all categories.
func (c *Classifier) Classify(text string) LineResult {
	ln := line{raw: text, lower: strings.ToLower(text)}
	result := LineResult{Line: text}

	for _, m := range c.matchers {
		got := m.Match(ln)
		if got.err != "" {
			result.Errors = append(result.Errors, got.err)
		}
		if got.observation != nil {
			result.Observations = append(result.Observations, got.observation)
		}
		if got.ok {
			result.Matches = append(result.Matches, m.Category())
		}
	}

	if !result.Processed() {
		result.Errors = append(result.Errors, "Unrecognized line: "+text)
	}
	return result
}

type timestampMatcher struct {
	ref time.Time
}

func (timestampMatcher) Category() Category { return CategoryTimestamp }

func (m timestampMatcher) Match(ln line) match {
	_, ok := ParseTimeLine(ln.raw, m.ref)
	return match{ok: ok}
}

type breastfeedMatcher struct {
	sides keywordTable
}

func (breastfeedMatcher) Category() Category { return CategoryBreastfeed }

func (m breastfeedMatcher) Match(ln line) match {
	side, ok := m.sides.extract(ln.lower)
	if !ok {
		return match{}
	}
	minutes, ok := ParseDuration(ln.lower)
	if !ok {
		return match{err: "Side duration missing: " + ln.raw}
	}
	return match{ok: true, observation: BreastfeedSide{Side: Side(side), Minutes: minutes}}
}

type bottleMatcher struct {
	feedTypes keywordTable
}

func (bottleMatcher) Category() Category { return CategoryBottle }

// Match is silent when a feed type appears without a volume.
func (m bottleMatcher) Match(ln line) match {
	label, ok := m.feedTypes.extract(ln.lower)
	if !ok || !HasAmount(ln.lower) {
		return match{}
	}
	ml, ok := ParseAmount(ln.lower)
	if !ok || ml <= 0 {
		return match{}
	}
	return match{ok: true, observation: BottleSample{FeedType: label, QuantityML: ml}}
}

type peeMatcher struct {
	keywords []string
	sizes    keywordTable
}

func (peeMatcher) Category() Category { return CategoryDiaperPee }

func (m peeMatcher) Match(ln line) match {
	if !FuzzyContains(ln.lower, m.keywords) {
		return match{}
	}
	size, _ := m.sizes.extract(ln.lower)
	return match{ok: true, observation: DiaperSample{Kind: DiaperPee, Size: Size(size)}}
}

type pooMatcher struct {
	keywords      []string
	sizes         keywordTable
	colors        keywordTable
	consistencies keywordTable
}

func (pooMatcher) Category() Category { return CategoryDiaperPoo }

func (m pooMatcher) Match(ln line) match {
	if !FuzzyContains(ln.lower, m.keywords) {
		return match{}
	}
	size, _ := m.sizes.extract(ln.lower)
	color, _ := m.colors.extract(ln.lower)
	consistency, _ := m.consistencies.extract(ln.lower)
	return match{ok: true, observation: DiaperSample{
		Kind:        DiaperPoo,
		Size:        Size(size),
		Color:       color,
		Consistency: consistency,
	}}
}

type sleepMatcher struct {
	keywords []string
}

func (sleepMatcher) Category() Category { return CategorySleep }

// Match accepts a sleep line even without a duration, reporting it as a
// soft error.
func (m sleepMatcher) Match(ln line) match {
	if !FuzzyContains(ln.lower, m.keywords) {
		return match{}
	}
	minutes, ok := ParseDuration(ln.lower)
	if !ok {
		return match{ok: true, err: "Sleep duration missing: " + ln.raw}
	}
	return match{ok: true, observation: SleepSample{Minutes: minutes}}
}
