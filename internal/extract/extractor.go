package extract

import (
	"context"
	"regexp"
	"time"

	"github.com/sellerchat/sellerchat/internal/dates"
	"github.com/sellerchat/sellerchat/internal/llm"
)

// Extractor produces extraction records from seller utterances.
type Extractor struct {
	provider llm.Provider
}

// NewExtractor wires an extractor to an LLM provider.
func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Extract runs one extraction attempt. On the first attempt (no feedback) a
// regex fast path resolves trivially unambiguous questions without a model
// call. If the model call fails, the record degrades to the default period
// with no product rather than surfacing an error.
func (e *Extractor) Extract(ctx context.Context, question, feedback string, now time.Time) Record {
	if feedback == "" {
		if label, count, ok := dates.MatchPattern(question); ok {
			rec := Record{
				DateStartLabel:  label,
				DateEndLabel:    label,
				CustomDaysCount: count,
				ASIN:            FindASIN(question),
			}
			return rec
		}
	}

	prompt := buildExtractPrompt(question, now.UTC().Format(dates.ISO), feedback)
	raw, err := e.provider.Complete(ctx, prompt, llm.CompletionOpts{
		Format:      "json",
		Temperature: 0,
		System:      extractSystem,
	})
	if err != nil {
		return DefaultRecord()
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		return DefaultRecord()
	}

	e.reconcileASIN(&rec, question)
	e.inferYears(&rec, question, now)
	return rec
}

// reconcileASIN makes the regex scan of the question authoritative. A
// pattern hit replaces whatever the model claimed; no hit clears the claim,
// since an identifier the question never mentions is a hallucination.
func (e *Extractor) reconcileASIN(rec *Record, question string) {
	rec.ASIN = FindASIN(question)
}

// inferYears repairs future-dated explicit dates. Models given "October 15"
// in January tend to pick the upcoming October; when the seller never wrote
// a year, the most recent past occurrence is what they meant. Questions that
// state a year are left alone.
func (e *Extractor) inferYears(rec *Record, question string, now time.Time) {
	if yearRe.MatchString(question) {
		return
	}
	calc := dates.NewCalculator(now)
	rec.ExplicitDateStart, rec.ExplicitDateEnd = normalizeYearPair(calc, rec.ExplicitDateStart, rec.ExplicitDateEnd)
	rec.ExplicitCompareStart, rec.ExplicitCompareEnd = normalizeYearPair(calc, rec.ExplicitCompareStart, rec.ExplicitCompareEnd)
}

// normalizeYearPair infers years for a (start, end) pair together. Shifting
// only the end back, because only it was in the future, would invert the
// range; when that happens the start moves back with it.
func normalizeYearPair(calc *dates.Calculator, start, end string) (string, string) {
	start = normalizeYear(calc, start)
	end = normalizeYear(calc, end)
	if start != "" && end != "" && start > end {
		if d, err := time.Parse(dates.ISO, start); err == nil {
			start = d.AddDate(-1, 0, 0).Format(dates.ISO)
		}
	}
	return start, end
}

func normalizeYear(calc *dates.Calculator, iso string) string {
	if iso == "" {
		return iso
	}
	fixed, err := calc.NormalizeExplicit(iso)
	if err != nil {
		return iso
	}
	return fixed
}
