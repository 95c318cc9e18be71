package dates

import (
	"testing"
	"time"
)

// anchor returns a calculator fixed at 2025-12-22 (a Monday), the reference
// date used throughout the date-resolution tests.
func anchor(t *testing.T) *Calculator {
	t.Helper()
	return NewCalculator(time.Date(2025, 12, 22, 15, 4, 5, 0, time.UTC))
}

func mustCalc(t *testing.T, c *Calculator, label Label, explicit string, days int) Range {
	t.Helper()
	r, err := c.Calculate(label, explicit, days)
	if err != nil {
		t.Fatalf("Calculate(%q): %v", label, err)
	}
	return r
}

func TestCalculate_RelativeLabels(t *testing.T) {
	c := anchor(t)

	tests := []struct {
		label      Label
		start, end string
	}{
		{Today, "2025-12-22", "2025-12-22"},
		{Yesterday, "2025-12-21", "2025-12-21"},
		{ThisWeek, "2025-12-22", "2025-12-28"},
		{LastWeek, "2025-12-15", "2025-12-21"},
		{ThisMonth, "2025-12-01", "2025-12-31"},
		{MTD, "2025-12-01", "2025-12-22"},
		{LastMonth, "2025-11-01", "2025-11-30"},
		{ThisYear, "2025-01-01", "2025-12-22"},
		{YTD, "2025-01-01", "2025-12-22"},
		{LastYear, "2024-01-01", "2024-12-31"},
		{Default, "2025-12-16", "2025-12-22"},
	}

	for _, tt := range tests {
		got := mustCalc(t, c, tt.label, "", 0)
		if got.Start != tt.start || got.End != tt.end {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", tt.label, got.Start, got.End, tt.start, tt.end)
		}
	}
}

func TestCalculate_FixedWindowsMatchPastDays(t *testing.T) {
	c := anchor(t)

	for label, n := range map[Label]int{
		Past7Days: 7, Past14Days: 14, Past30Days: 30,
		Past60Days: 60, Past90Days: 90, Past180Days: 180,
	} {
		fixed := mustCalc(t, c, label, "", 0)
		generic := mustCalc(t, c, PastDays, "", n)
		if fixed != generic {
			t.Errorf("%s: %+v != past_days(%d) %+v", label, fixed, n, generic)
		}
	}
}

func TestCalculate_PastDaysCustomCount(t *testing.T) {
	c := anchor(t)

	// Nov 30 .. Dec 22 inclusive is exactly 23 days.
	got := mustCalc(t, c, PastDays, "", 23)
	if got.Start != "2025-11-30" || got.End != "2025-12-22" {
		t.Errorf("past_days(23): got (%s, %s), want (2025-11-30, 2025-12-22)", got.Start, got.End)
	}

	// Single-day window.
	got = mustCalc(t, c, PastDays, "", 1)
	if got.Start != "2025-12-22" || got.End != "2025-12-22" {
		t.Errorf("past_days(1): got (%s, %s)", got.Start, got.End)
	}
}

func TestCalculate_PastDaysRequiresCount(t *testing.T) {
	c := anchor(t)
	for _, n := range []int{0, -3} {
		if _, err := c.Calculate(PastDays, "", n); err == nil {
			t.Errorf("past_days with count %d: expected error", n)
		}
	}
}

func TestCalculate_ExplicitDate(t *testing.T) {
	c := anchor(t)

	got := mustCalc(t, c, ExplicitDate, "2025-10-15", 0)
	if got.Start != "2025-10-15" || got.End != "2025-10-15" {
		t.Errorf("explicit_date: got (%s, %s)", got.Start, got.End)
	}

	// Idempotent regardless of anchor.
	other := NewCalculator(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	got2, err := other.Calculate(ExplicitDate, "2025-10-15", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got2 != got {
		t.Errorf("explicit_date should not depend on anchor: %+v != %+v", got2, got)
	}

	if _, err := c.Calculate(ExplicitDate, "", 0); err == nil {
		t.Error("explicit_date without a date: expected error")
	}
}

func TestCalculate_MonthLabels(t *testing.T) {
	c := anchor(t)

	tests := []struct {
		label      Label
		start, end string
	}{
		{January, "2025-01-01", "2025-01-31"},
		{February, "2025-02-01", "2025-02-28"},
		{September, "2025-09-01", "2025-09-30"},
		{December, "2025-12-01", "2025-12-31"},
	}
	for _, tt := range tests {
		got := mustCalc(t, c, tt.label, "", 0)
		if got.Start != tt.start || got.End != tt.end {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", tt.label, got.Start, got.End, tt.start, tt.end)
		}
	}
}

func TestCalculate_LeapYearFebruary(t *testing.T) {
	c := NewCalculator(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	got := mustCalc(t, c, February, "", 0)
	if got.End != "2024-02-29" {
		t.Errorf("leap-year february end: got %s, want 2024-02-29", got.End)
	}

	got = mustCalc(t, NewCalculator(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)), ThisMonth, "", 0)
	if got.Start != "2024-02-01" || got.End != "2024-02-29" {
		t.Errorf("this_month in leap february: got (%s, %s)", got.Start, got.End)
	}
}

func TestCalculate_Quarters(t *testing.T) {
	c := anchor(t)

	tests := []struct {
		label      Label
		start, end string
	}{
		{Q1, "2025-01-01", "2025-03-31"},
		{Q2, "2025-04-01", "2025-06-30"},
		{Q3, "2025-07-01", "2025-09-30"},
		{Q4, "2025-10-01", "2025-12-31"},
	}
	for _, tt := range tests {
		got := mustCalc(t, c, tt.label, "", 0)
		if got.Start != tt.start || got.End != tt.end {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", tt.label, got.Start, got.End, tt.start, tt.end)
		}
	}
}

func TestCalculate_DefaultEqualsPast7Days(t *testing.T) {
	for _, day := range []time.Time{
		time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		c := NewCalculator(day)
		def := mustCalc(t, c, Default, "", 0)
		p7 := mustCalc(t, c, Past7Days, "", 0)
		if def != p7 {
			t.Errorf("anchor %s: default %+v != past_7_days %+v", day.Format(ISO), def, p7)
		}
	}
}

func TestCalculate_StartNeverAfterEnd(t *testing.T) {
	c := anchor(t)
	for _, label := range AllLabels() {
		explicit := ""
		days := 0
		switch {
		case label.NeedsExplicitDate():
			explicit = "2025-06-01"
		case label.NeedsCustomDays():
			days = 11
		}
		got := mustCalc(t, c, label, explicit, days)
		if got.Start > got.End {
			t.Errorf("%s: start %s after end %s", label, got.Start, got.End)
		}
	}
}

func TestCalculate_WeekSpansAcrossYearBoundary(t *testing.T) {
	// 2026-01-01 is a Thursday; its week starts Monday 2025-12-29.
	c := NewCalculator(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	got := mustCalc(t, c, ThisWeek, "", 0)
	if got.Start != "2025-12-29" || got.End != "2026-01-04" {
		t.Errorf("this_week across year boundary: got (%s, %s)", got.Start, got.End)
	}

	got = mustCalc(t, c, LastWeek, "", 0)
	if got.Start != "2025-12-22" || got.End != "2025-12-28" {
		t.Errorf("last_week across year boundary: got (%s, %s)", got.Start, got.End)
	}
}

func TestCalculate_SundayWeek(t *testing.T) {
	// 2025-12-28 is a Sunday; this_week must still start the preceding Monday.
	c := NewCalculator(time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC))
	got := mustCalc(t, c, ThisWeek, "", 0)
	if got.Start != "2025-12-22" || got.End != "2025-12-28" {
		t.Errorf("this_week on sunday: got (%s, %s)", got.Start, got.End)
	}
}

func TestCalculate_UnknownLabel(t *testing.T) {
	c := anchor(t)
	if _, err := c.Calculate(Label("fortnight"), "", 0); err == nil {
		t.Error("unknown label: expected error")
	}
}

func TestResolvePair_ExplicitRange(t *testing.T) {
	c := anchor(t)
	got, err := c.ResolvePair(ExplicitDate, ExplicitDate, "2025-10-01", "2025-12-15", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Start != "2025-10-01" || got.End != "2025-12-15" {
		t.Errorf("explicit pair: got (%s, %s)", got.Start, got.End)
	}
}

func TestResolvePair_EqualLabels(t *testing.T) {
	c := anchor(t)
	got, err := c.ResolvePair(LastWeek, LastWeek, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Start != "2025-12-15" || got.End != "2025-12-21" {
		t.Errorf("last_week pair: got (%s, %s)", got.Start, got.End)
	}
}

func TestNormalizeExplicit_YearInference(t *testing.T) {
	c := anchor(t) // 2025-12-22

	// Past date in the current year stays put.
	got, err := c.NormalizeExplicit("2025-10-15")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2025-10-15" {
		t.Errorf("past date shifted: %s", got)
	}

	// A date still in the future means the phrase referred to its last
	// occurrence, one year back.
	got, err = c.NormalizeExplicit("2025-12-25")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-12-25" {
		t.Errorf("future date: got %s, want 2024-12-25", got)
	}

	if _, err := c.NormalizeExplicit("Oct 15"); err == nil {
		t.Error("non-ISO date: expected error")
	}
}
