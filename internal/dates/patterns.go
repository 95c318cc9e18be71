package dates

import (
	"regexp"
	"strconv"
	"strings"
)

// Heuristic fast path: resolve trivially unambiguous utterances without an
// LLM round trip. Returns ok=false when the text needs real extraction
// (explicit dates, ranges, comparisons, anything with a day-level qualifier).

var (
	todayRe     = regexp.MustCompile(`\btoday'?s?\b`)
	yesterdayRe = regexp.MustCompile(`\byesterday'?s?\b`)
	lastNDaysRe = regexp.MustCompile(`\b(?:last|past)\s+(\d+)\s+days?\b`)

	// Anything that smells like a specific date or a range keeps the fast
	// path out of the way: digits with ordinals, slashed or ISO dates, and
	// range connectives.
	explicitRefRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}(?:/\d{2,4})?|\b\d{1,2}(?:st|nd|rd|th)?\b|\b(?:from|to|through|between)\b`)

	comparisonRe = regexp.MustCompile(`\b(?:compare|compared|comparison|versus|vs|week over week|month over month|year over year)\b`)

	// Calendar-period vocabulary the fast path does not resolve itself:
	// "last week", "this quarter", "ytd" and friends go to real extraction.
	periodWordRe = regexp.MustCompile(`\b(?:week|weeks|month|months|quarter|quarters|q[1-4]|year|years|ytd|mtd|day|days|date|dates)\b`)

	monthNames = map[string]Label{
		"january": January, "jan": January,
		"february": February, "feb": February,
		"march": March, "mar": March,
		"april": April, "apr": April,
		"may":  May,
		"june": June, "jun": June,
		"july": July, "jul": July,
		"august": August, "aug": August,
		"september": September, "sep": September, "sept": September,
		"october": October, "oct": October,
		"november": November, "nov": November,
		"december": December, "dec": December,
	}
	monthNameRe = regexp.MustCompile(`\b(january|jan|february|feb|march|mar|april|apr|may|june|jun|july|jul|august|aug|september|sept|sep|october|oct|november|nov|december|dec)\b`)

	// "may" doubles as a modal verb, so it only counts as the month when a
	// calendar preposition or qualifier sits right in front of it.
	mayMonthRe = regexp.MustCompile(`\b(?:in|for|during|of|since|last|this)\s+may\b`)
)

// MatchPattern tries to resolve an utterance to a single label by regex
// alone. Priority order mirrors specificity: today, yesterday, last/past N
// days, a bare month name, then default when no date reference exists at
// all. Day counts matching a predefined window collapse to that window's
// label so downstream consumers see the canonical member.
func MatchPattern(question string) (Label, int, bool) {
	q := strings.ToLower(question)

	// Comparisons always carry two periods; the fast path handles one.
	if comparisonRe.MatchString(q) {
		return "", 0, false
	}

	if todayRe.MatchString(q) {
		return Today, 0, true
	}
	if yesterdayRe.MatchString(q) {
		return Yesterday, 0, true
	}

	if m := lastNDaysRe.FindStringSubmatch(q); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return "", 0, false
		}
		for label, days := range fixedWindowDays {
			if days == n {
				return label, 0, true
			}
		}
		return PastDays, n, true
	}

	hasExplicit := explicitRefRe.MatchString(q)

	// A month name with no day qualifier means the whole month.
	if !hasExplicit {
		if m := monthNameRe.FindStringSubmatch(q); m != nil {
			if m[1] == "may" && !mayMonthRe.MatchString(q) {
				return "", 0, false
			}
			return monthNames[m[1]], 0, true
		}
		if periodWordRe.MatchString(q) {
			return "", 0, false
		}
		return Default, 0, true
	}

	return "", 0, false
}
