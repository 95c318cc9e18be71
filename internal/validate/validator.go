// Package validate judges extraction records before they are allowed to
// drive a query. Cheap deterministic checks run first; only records that
// pass them are worth an LLM faithfulness review.
package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/sellerchat/sellerchat/internal/dates"
	"github.com/sellerchat/sellerchat/internal/extract"
	"github.com/sellerchat/sellerchat/internal/llm"
)

// Verdict is the outcome of validating one extraction attempt. Feedback is
// only meaningful when IsValid is false; it is written for the extractor,
// not the seller.
type Verdict struct {
	IsValid  bool   `json:"is_valid"`
	Feedback string `json:"feedback,omitempty"`
}

// Validator checks extraction records against the question they came from.
type Validator struct {
	provider llm.Provider
}

// NewValidator wires a validator to an LLM provider for the faithfulness
// review. A nil provider skips the review and validates on the
// deterministic checks alone.
func NewValidator(provider llm.Provider) *Validator {
	return &Validator{provider: provider}
}

// Validate runs the full check sequence. The LLM review fails open: when
// the judge cannot run, a deterministically sound record is accepted rather
// than burning retry attempts on infrastructure trouble.
func (v *Validator) Validate(ctx context.Context, question string, rec extract.Record, now time.Time) Verdict {
	if verdict := checkRecord(rec, now); !verdict.IsValid {
		return verdict
	}
	if v.provider == nil {
		return Verdict{IsValid: true}
	}
	return v.judge(ctx, question, rec, now)
}

// checkRecord enforces the structural contract: vocabulary membership,
// companion metadata, comparison pairing, and non-inverted resolved ranges.
func checkRecord(rec extract.Record, now time.Time) Verdict {
	for _, lc := range []struct {
		field string
		label dates.Label
	}{
		{"date_start_label", rec.DateStartLabel},
		{"date_end_label", rec.DateEndLabel},
	} {
		if !lc.label.Valid() {
			return invalid("%s %q is not in the label vocabulary; pick one of the listed labels", lc.field, lc.label)
		}
	}

	if (rec.CompareDateStartLabel == "") != (rec.CompareDateEndLabel == "") {
		return invalid("comparison labels must be set together; got start %q and end %q",
			rec.CompareDateStartLabel, rec.CompareDateEndLabel)
	}
	if rec.HasComparison() {
		if !rec.CompareDateStartLabel.Valid() {
			return invalid("compare_date_start_label %q is not in the label vocabulary", rec.CompareDateStartLabel)
		}
		if !rec.CompareDateEndLabel.Valid() {
			return invalid("compare_date_end_label %q is not in the label vocabulary", rec.CompareDateEndLabel)
		}
	}

	if verdict := checkMetadata("primary", rec.DateStartLabel, rec.DateEndLabel,
		rec.ExplicitDateStart, rec.ExplicitDateEnd, rec.CustomDaysCount); !verdict.IsValid {
		return verdict
	}
	if rec.HasComparison() {
		if verdict := checkMetadata("comparison", rec.CompareDateStartLabel, rec.CompareDateEndLabel,
			rec.ExplicitCompareStart, rec.ExplicitCompareEnd, rec.CustomCompareDaysCount); !verdict.IsValid {
			return verdict
		}
	}

	calc := dates.NewCalculator(now)
	primary, err := calc.ResolvePair(rec.DateStartLabel, rec.DateEndLabel,
		rec.ExplicitDateStart, rec.ExplicitDateEnd, rec.CustomDaysCount)
	if err != nil {
		return invalid("primary labels do not resolve: %v", err)
	}
	if primary.Start > primary.End {
		return invalid("primary range is inverted (%s after %s); start must not be later than end", primary.Start, primary.End)
	}
	if rec.HasComparison() {
		compare, err := calc.ResolvePair(rec.CompareDateStartLabel, rec.CompareDateEndLabel,
			rec.ExplicitCompareStart, rec.ExplicitCompareEnd, rec.CustomCompareDaysCount)
		if err != nil {
			return invalid("comparison labels do not resolve: %v", err)
		}
		if compare.Start > compare.End {
			return invalid("comparison range is inverted (%s after %s)", compare.Start, compare.End)
		}
	}

	return Verdict{IsValid: true}
}

func checkMetadata(scope string, start, end dates.Label, explicitStart, explicitEnd string, customDays int) Verdict {
	if start.NeedsExplicitDate() && explicitStart == "" {
		return invalid("%s start label is explicit_date but no explicit start date was given", scope)
	}
	if end.NeedsExplicitDate() && explicitEnd == "" {
		return invalid("%s end label is explicit_date but no explicit end date was given", scope)
	}
	for _, d := range []string{explicitStart, explicitEnd} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dates.ISO, d); err != nil {
			return invalid("%s explicit date %q is not YYYY-MM-DD", scope, d)
		}
	}
	if (start.NeedsCustomDays() || end.NeedsCustomDays()) && customDays <= 0 {
		return invalid("%s label is past_days but custom_days_count is %d; it must be a positive number", scope, customDays)
	}
	return Verdict{IsValid: true}
}

func invalid(format string, args ...any) Verdict {
	return Verdict{IsValid: false, Feedback: fmt.Sprintf(format, args...)}
}

// judge asks the model whether the record faithfully represents the
// question. Any failure to get a usable answer counts as acceptance.
func (v *Validator) judge(ctx context.Context, question string, rec extract.Record, now time.Time) Verdict {
	prompt, err := buildJudgePrompt(question, rec, now)
	if err != nil {
		return Verdict{IsValid: true}
	}

	raw, err := v.provider.Complete(ctx, prompt, llm.CompletionOpts{
		Format:      "json",
		Temperature: 0,
		System:      judgeSystem,
	})
	if err != nil {
		return Verdict{IsValid: true}
	}

	var verdict Verdict
	if err := llm.DecodeJSON(raw, &verdict); err != nil {
		return Verdict{IsValid: true}
	}
	if !verdict.IsValid && verdict.Feedback == "" {
		verdict.Feedback = "the extracted labels do not match the question; re-read it and choose again"
	}
	return verdict
}
