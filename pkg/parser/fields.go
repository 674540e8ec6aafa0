package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OunceML is the number of milliliters in one US fluid ounce.
const OunceML = 29.5735

var (
	// Both parts are optional, so the pattern always matches (possibly empty).
	durationPattern = regexp.MustCompile(`(?i)(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?`)
	bareIntPattern  = regexp.MustCompile(`\d+`)
	amountPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml|oz)`)
	clockPattern    = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)?`)
	// A number directly followed by one of these is a quantity, not a clock time.
	unitSuffixPattern = regexp.MustCompile(`^\s*(?:h|hrs?|hours?|m|mins?|minutes?|minuts|ml|oz)\b`)
)

var durationWords = strings.NewReplacer(
	"hours", "h",
	"hour", "h",
	"minutes", "m",
	"minute", "m",
	"mins", "m",
	"minuts", "m",
)

// ParseDuration extracts a duration in minutes from text such as "2h30m",
// "90 minutes" or "left 10". When no hours/minutes pair adds up to a
// positive total, the first bare integer is taken as minutes. Zero is never
// reported as a duration.
func ParseDuration(text string) (int, bool) {
	normalized := durationWords.Replace(strings.ToLower(text))

	total := 0
	if m := durationPattern.FindStringSubmatch(normalized); m != nil {
		total = atoi(m[1])*60 + atoi(m[2])
	}
	if total == 0 {
		total = atoi(bareIntPattern.FindString(normalized))
	}
	return total, total > 0
}

// ParseAmount extracts a volume in milliliters from text such as "120ml" or
// "4 oz". Ounces are converted and rounded to two decimals.
func ParseAmount(text string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if strings.EqualFold(m[2], "oz") {
		return math.Round(value*OunceML*100) / 100, true
	}
	return value, true
}

// HasAmount reports whether text contains a volume pattern.
func HasAmount(text string) bool {
	return amountPattern.MatchString(text)
}

// ParseTimeLine finds a clock time such as "8:00am", "1:15 p.m." or "time 21"
// in text and applies it to ref. Only hour and minute are taken from the
// text; seconds and nanoseconds are zeroed, date and location come from ref.
// Out-of-range values yield false.
func ParseTimeLine(text string, ref time.Time) (time.Time, bool) {
	lower := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(text), "time", ""))

	for _, loc := range clockPattern.FindAllStringSubmatchIndex(lower, -1) {
		if !isClockCandidate(lower, loc) {
			continue
		}
		hour := atoi(lower[loc[2]:loc[3]])
		minute := 0
		if loc[4] >= 0 {
			minute = atoi(lower[loc[4]:loc[5]])
		}
		if loc[6] >= 0 {
			meridian := strings.ReplaceAll(lower[loc[6]:loc[7]], ".", "")
			if meridian == "pm" && hour != 12 {
				hour += 12
			}
			if meridian == "am" && hour == 12 {
				hour = 0
			}
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return time.Time{}, false
		}
		return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location()), true
	}
	return time.Time{}, false
}

// isClockCandidate rejects matches embedded in longer numbers ("120ml"),
// decimals ("2.5 oz") and quantities with a unit ("10 min").
func isClockCandidate(s string, loc []int) bool {
	if loc[0] > 0 && strings.ContainsRune("0123456789.,:", rune(s[loc[0]-1])) {
		return false
	}

	numEnd := loc[3]
	if loc[4] >= 0 {
		numEnd = loc[5]
	}
	rest := s[numEnd:]
	if rest != "" && isDigit(rest[0]) {
		return false
	}
	if len(rest) > 1 && (rest[0] == '.' || rest[0] == ',' || rest[0] == ':') && isDigit(rest[1]) {
		return false
	}

	if loc[6] >= 0 {
		after := s[loc[7]:]
		return after == "" || !isWordByte(after[0])
	}
	return !unitSuffixPattern.MatchString(rest)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isWordByte(b byte) bool {
	return isDigit(b) || b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// atoi returns 0 for empty or unparsable input.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
