// Package dates defines the closed date-label vocabulary and the calendar
// arithmetic that turns a label into a concrete ISO date range.
//
// Labels are the contract between the LLM extraction layer and the rest of
// the pipeline: the model may only answer with members of this set, and
// anything else is rejected at the boundary before it reaches pipeline state.
package dates

import (
	"fmt"
	"strings"
)

// Label is a symbolic name for a date range, resolved later into concrete
// ISO dates by a Calculator.
type Label string

// Relative labels.
const (
	Today     Label = "today"
	Yesterday Label = "yesterday"
	ThisWeek  Label = "this_week"
	LastWeek  Label = "last_week"
	ThisMonth Label = "this_month"
	MTD       Label = "mtd"
	LastMonth Label = "last_month"
	ThisYear  Label = "this_year"
	LastYear  Label = "last_year"
	YTD       Label = "ytd"
)

// Fixed past-N-day windows.
const (
	Past7Days   Label = "past_7_days"
	Past14Days  Label = "past_14_days"
	Past30Days  Label = "past_30_days"
	Past60Days  Label = "past_60_days"
	Past90Days  Label = "past_90_days"
	Past180Days Label = "past_180_days"
)

// PastDays is the generic past-N-days window. It requires a positive
// custom day count as companion metadata.
const PastDays Label = "past_days"

// Calendar months of the current year.
const (
	January   Label = "january"
	February  Label = "february"
	March     Label = "march"
	April     Label = "april"
	May       Label = "may"
	June      Label = "june"
	July      Label = "july"
	August    Label = "august"
	September Label = "september"
	October   Label = "october"
	November  Label = "november"
	December  Label = "december"
)

// Calendar quarters of the current year.
const (
	Q1 Label = "q1"
	Q2 Label = "q2"
	Q3 Label = "q3"
	Q4 Label = "q4"
)

// Special labels. ExplicitDate requires a companion ISO date; Default means
// the utterance expressed no date and resolves identically to Past7Days.
const (
	ExplicitDate Label = "explicit_date"
	Default      Label = "default"
)

// fixedWindowDays maps each predefined past-N-days label to its day count.
var fixedWindowDays = map[Label]int{
	Past7Days:   7,
	Past14Days:  14,
	Past30Days:  30,
	Past60Days:  60,
	Past90Days:  90,
	Past180Days: 180,
}

// monthNumber maps month labels to their calendar month (1-12).
var monthNumber = map[Label]int{
	January: 1, February: 2, March: 3, April: 4, May: 5, June: 6,
	July: 7, August: 8, September: 9, October: 10, November: 11, December: 12,
}

// quarterStartMonth maps quarter labels to their first month.
var quarterStartMonth = map[Label]int{
	Q1: 1, Q2: 4, Q3: 7, Q4: 10,
}

var allLabels = func() map[Label]struct{} {
	set := map[Label]struct{}{
		Today: {}, Yesterday: {}, ThisWeek: {}, LastWeek: {},
		ThisMonth: {}, MTD: {}, LastMonth: {}, ThisYear: {}, LastYear: {}, YTD: {},
		PastDays: {}, ExplicitDate: {}, Default: {},
	}
	for l := range fixedWindowDays {
		set[l] = struct{}{}
	}
	for l := range monthNumber {
		set[l] = struct{}{}
	}
	for l := range quarterStartMonth {
		set[l] = struct{}{}
	}
	return set
}()

// Valid reports whether l is a member of the closed vocabulary.
func (l Label) Valid() bool {
	_, ok := allLabels[l]
	return ok
}

// NeedsExplicitDate reports whether l requires a companion ISO date.
func (l Label) NeedsExplicitDate() bool { return l == ExplicitDate }

// NeedsCustomDays reports whether l requires a companion positive day count.
func (l Label) NeedsCustomDays() bool { return l == PastDays }

// ParseLabel normalizes and validates a raw label string from an untrusted
// source (typically an LLM response). The empty string maps to Default.
func ParseLabel(raw string) (Label, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Default, nil
	}
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown date label %q", raw)
	}
	return l, nil
}

// AllLabels returns every member of the vocabulary, in a stable order
// suitable for prompt construction.
func AllLabels() []Label {
	return []Label{
		Today, Yesterday, ThisWeek, LastWeek,
		ThisMonth, MTD, LastMonth, ThisYear, LastYear, YTD,
		Past7Days, Past14Days, Past30Days, Past60Days, Past90Days, Past180Days,
		PastDays,
		January, February, March, April, May, June,
		July, August, September, October, November, December,
		Q1, Q2, Q3, Q4,
		ExplicitDate, Default,
	}
}
