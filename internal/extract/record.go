// Package extract turns a raw seller utterance into a structured extraction
// record: date labels for the primary and optional comparison period, their
// companion metadata, and an optional ASIN. The model does the reading; a
// regex cross-check and a schema normalization pass keep it honest.
package extract

import (
	"strings"

	"github.com/sellerchat/sellerchat/internal/dates"
	"github.com/sellerchat/sellerchat/internal/llm"
)

// Record is the structured output of one extraction attempt. It is produced
// fresh on every attempt and superseded wholesale on retry; fields are
// never merged across attempts.
type Record struct {
	DateStartLabel dates.Label `json:"date_start_label"`
	DateEndLabel   dates.Label `json:"date_end_label"`

	// Comparison labels: both present or both absent ("" means absent).
	CompareDateStartLabel dates.Label `json:"compare_date_start_label,omitempty"`
	CompareDateEndLabel   dates.Label `json:"compare_date_end_label,omitempty"`

	// Companion metadata for explicit_date labels (ISO dates).
	ExplicitDateStart    string `json:"explicit_date_start,omitempty"`
	ExplicitDateEnd      string `json:"explicit_date_end,omitempty"`
	ExplicitCompareStart string `json:"explicit_compare_start,omitempty"`
	ExplicitCompareEnd   string `json:"explicit_compare_end,omitempty"`

	// Companion metadata for past_days labels.
	CustomDaysCount        int `json:"custom_days_count,omitempty"`
	CustomCompareDaysCount int `json:"custom_compare_days_count,omitempty"`

	// 10-character alphanumeric product identifier, or empty.
	ASIN string `json:"asin,omitempty"`
}

// HasComparison reports whether any comparison label is set.
func (r Record) HasComparison() bool {
	return r.CompareDateStartLabel != "" || r.CompareDateEndLabel != ""
}

// DefaultRecord is the safe fallback when extraction cannot run: no date
// expressed, no product.
func DefaultRecord() Record {
	return Record{
		DateStartLabel: dates.Default,
		DateEndLabel:   dates.Default,
	}
}

// rawRecord mirrors Record with untyped strings, the shape the model
// actually returns.
type rawRecord struct {
	DateStartLabel         string `json:"date_start_label"`
	DateEndLabel           string `json:"date_end_label"`
	CompareDateStartLabel  string `json:"compare_date_start_label"`
	CompareDateEndLabel    string `json:"compare_date_end_label"`
	ExplicitDateStart      string `json:"explicit_date_start"`
	ExplicitDateEnd        string `json:"explicit_date_end"`
	ExplicitCompareStart   string `json:"explicit_compare_start"`
	ExplicitCompareEnd     string `json:"explicit_compare_end"`
	CustomDaysCount        int    `json:"custom_days_count"`
	CustomCompareDaysCount int    `json:"custom_compare_days_count"`
	ASIN                   string `json:"asin"`
}

// decodeRecord parses the model's JSON into a Record. Labels are normalized
// (lowercased, trimmed, "null" cleared) but deliberately NOT rejected here:
// membership in the closed vocabulary is the validator's check, so a bad
// label becomes retry feedback instead of a hard failure.
func decodeRecord(raw string) (Record, error) {
	var rr rawRecord
	if err := llm.DecodeJSON(raw, &rr); err != nil {
		return Record{}, err
	}

	rec := Record{
		DateStartLabel:         normalizeLabel(rr.DateStartLabel),
		DateEndLabel:           normalizeLabel(rr.DateEndLabel),
		CompareDateStartLabel:  normalizeLabel(rr.CompareDateStartLabel),
		CompareDateEndLabel:    normalizeLabel(rr.CompareDateEndLabel),
		ExplicitDateStart:      cleanField(rr.ExplicitDateStart),
		ExplicitDateEnd:        cleanField(rr.ExplicitDateEnd),
		ExplicitCompareStart:   cleanField(rr.ExplicitCompareStart),
		ExplicitCompareEnd:     cleanField(rr.ExplicitCompareEnd),
		CustomDaysCount:        rr.CustomDaysCount,
		CustomCompareDaysCount: rr.CustomCompareDaysCount,
		ASIN:                   strings.ToUpper(cleanField(rr.ASIN)),
	}

	if rec.DateStartLabel == "" {
		rec.DateStartLabel = dates.Default
	}
	if rec.DateEndLabel == "" {
		rec.DateEndLabel = dates.Default
	}

	return rec, nil
}

func normalizeLabel(s string) dates.Label {
	return dates.Label(cleanField(strings.ToLower(s)))
}

// cleanField trims whitespace and clears the "null"/"none" strings models
// emit for absent optional fields.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "none", "nil":
		return ""
	}
	return s
}
