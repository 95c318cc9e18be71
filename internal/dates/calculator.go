package dates

import (
	"fmt"
	"time"
)

// ISO is the wire format for all dates produced by the calculator.
const ISO = "2006-01-02"

// Range is a concrete (start, end) ISO date pair. Start <= End always.
type Range struct {
	Start string `json:"date_start"`
	End   string `json:"date_end"`
}

// Calculator resolves labels into concrete date ranges, anchored to an
// injected current date rather than the wall clock so results are
// reproducible in tests and evaluations.
type Calculator struct {
	today time.Time
}

// NewCalculator returns a calculator anchored to the given date. Only the
// year, month and day of now are significant.
func NewCalculator(now time.Time) *Calculator {
	return &Calculator{today: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
}

// Calculate converts a label plus its companion metadata into a date range.
//
// Missing metadata for explicit_date or past_days is an input-contract
// violation and returns an error; so does a label outside the vocabulary,
// which should be unreachable once ParseLabel has run at the boundary.
func (c *Calculator) Calculate(label Label, explicitDate string, customDays int) (Range, error) {
	switch {
	case label == ExplicitDate:
		if explicitDate == "" {
			return Range{}, fmt.Errorf("label %q requires an explicit date", label)
		}
		return Range{Start: explicitDate, End: explicitDate}, nil

	case label == PastDays:
		if customDays <= 0 {
			return Range{}, fmt.Errorf("label %q requires a positive day count, got %d", label, customDays)
		}
		return c.pastDays(customDays), nil

	case label == Today:
		return c.singleDay(0), nil
	case label == Yesterday:
		return c.singleDay(-1), nil

	case label == ThisWeek:
		return c.weekOf(c.today), nil
	case label == LastWeek:
		return c.weekOf(c.today.AddDate(0, 0, -7)), nil

	case label == ThisMonth:
		return c.monthRange(c.today.Year(), int(c.today.Month())), nil
	case label == MTD:
		first := time.Date(c.today.Year(), c.today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: first.Format(ISO), End: c.today.Format(ISO)}, nil
	case label == LastMonth:
		prev := time.Date(c.today.Year(), c.today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		return c.monthRange(prev.Year(), int(prev.Month())), nil

	case label == ThisYear || label == YTD:
		jan1 := time.Date(c.today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: jan1.Format(ISO), End: c.today.Format(ISO)}, nil
	case label == LastYear:
		y := c.today.Year() - 1
		return Range{Start: fmt.Sprintf("%d-01-01", y), End: fmt.Sprintf("%d-12-31", y)}, nil

	case label == Default:
		return c.pastDays(7), nil
	}

	if days, ok := fixedWindowDays[label]; ok {
		return c.pastDays(days), nil
	}
	if month, ok := monthNumber[label]; ok {
		return c.monthRange(c.today.Year(), month), nil
	}
	if start, ok := quarterStartMonth[label]; ok {
		return c.quarterRange(start), nil
	}

	return Range{}, fmt.Errorf("unknown date label %q", label)
}

// ResolvePair resolves a (startLabel, endLabel) pair the way the extraction
// contract defines it: the start of the start label's range and the end of
// the end label's range. For every label family except explicit_date the two
// labels are equal, so this collapses to a single Calculate call.
func (c *Calculator) ResolvePair(startLabel, endLabel Label, explicitStart, explicitEnd string, customDays int) (Range, error) {
	startRange, err := c.Calculate(startLabel, explicitStart, customDays)
	if err != nil {
		return Range{}, err
	}
	if startLabel == endLabel && explicitStart == explicitEnd {
		return startRange, nil
	}
	endRange, err := c.Calculate(endLabel, explicitEnd, customDays)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: startRange.Start, End: endRange.End}, nil
}

// NormalizeExplicit applies year inference to an explicit date the model
// produced from a phrase without a year: anchored to the current year, and
// shifted back one year if that lands in the future relative to the anchor.
func (c *Calculator) NormalizeExplicit(iso string) (string, error) {
	d, err := time.Parse(ISO, iso)
	if err != nil {
		return "", fmt.Errorf("explicit date %q is not ISO format: %w", iso, err)
	}
	if d.After(c.today) {
		d = d.AddDate(-1, 0, 0)
	}
	return d.Format(ISO), nil
}

func (c *Calculator) singleDay(offset int) Range {
	d := c.today.AddDate(0, 0, offset).Format(ISO)
	return Range{Start: d, End: d}
}

// pastDays returns the N-day window ending today. "Past 7 days" includes
// today, so the window starts N-1 days back.
func (c *Calculator) pastDays(n int) Range {
	start := c.today.AddDate(0, 0, -(n - 1))
	return Range{Start: start.Format(ISO), End: c.today.Format(ISO)}
}

// weekOf returns the Monday-Sunday span containing d. Always the full
// seven days, never truncated at the anchor date.
func (c *Calculator) weekOf(d time.Time) Range {
	weekday := int(d.Weekday()+6) % 7 // Monday = 0
	monday := d.AddDate(0, 0, -weekday)
	sunday := monday.AddDate(0, 0, 6)
	return Range{Start: monday.Format(ISO), End: sunday.Format(ISO)}
}

func (c *Calculator) monthRange(year, month int) Range {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Range{Start: first.Format(ISO), End: last.Format(ISO)}
}

func (c *Calculator) quarterRange(startMonth int) Range {
	first := time.Date(c.today.Year(), time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 3, -1)
	return Range{Start: first.Format(ISO), End: last.Format(ISO)}
}
