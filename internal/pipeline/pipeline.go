// Package pipeline orchestrates a seller question end to end: extraction
// with bounded retry, validation, date resolution and classification,
// yielding a Resolution a handler can act on.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sellerchat/sellerchat/internal/classify"
	"github.com/sellerchat/sellerchat/internal/dates"
	"github.com/sellerchat/sellerchat/internal/extract"
	"github.com/sellerchat/sellerchat/internal/validate"
)

// maxAttempts bounds the extract-validate loop. The final attempt is
// accepted regardless of the verdict; a degraded answer beats no answer.
const maxAttempts = 4

// Outcome says how the extraction loop ended.
type Outcome string

const (
	// Accepted means validation passed within the attempt budget.
	Accepted Outcome = "accepted"
	// ForcedAccept means the budget ran out and the last attempt was
	// taken as-is, its rejection feedback preserved for observability.
	ForcedAccept Outcome = "forced_accept"
	// Overridden means the caller supplied explicit dates and the
	// extraction loop never ran for the date portion.
	Overridden Outcome = "overridden"
)

// Request is one inbound seller interaction.
type Request struct {
	SessionID       string `json:"session_id"`
	Message         string `json:"message"`
	InteractionType string `json:"interaction_type,omitempty"`

	// Explicit ISO date overrides. When DateStart and DateEnd are set the
	// date extraction loop is skipped entirely.
	DateStart        string `json:"date_start,omitempty"`
	DateEnd          string `json:"date_end,omitempty"`
	CompareDateStart string `json:"compare_date_start,omitempty"`
	CompareDateEnd   string `json:"compare_date_end,omitempty"`

	// Product the seller was looking at when they asked, if any.
	ASIN string `json:"asin,omitempty"`
}

// Resolution is the fully resolved form of a request.
type Resolution struct {
	Category classify.Category `json:"category"`

	Primary dates.Range  `json:"primary"`
	Compare *dates.Range `json:"compare,omitempty"`

	ASIN string `json:"asin,omitempty"`

	Outcome    Outcome `json:"outcome"`
	IsValid    bool    `json:"is_valid"`
	RetryCount int     `json:"retry_count"`
	Feedback   string  `json:"feedback,omitempty"`

	// Record is the extraction the resolution was built from, kept for
	// transcripts and debugging.
	Record extract.Record `json:"record"`
}

// Engine runs the pipeline. All model-backed stages degrade rather than
// fail, so Resolve only errors on malformed input.
type Engine struct {
	extractor  *extract.Extractor
	validator  *validate.Validator
	classifier *classify.Classifier
	now        func() time.Time
}

// NewEngine assembles a pipeline from its stages. nowFn defaults to
// time.Now and exists so tests can pin the anchor date.
func NewEngine(ex *extract.Extractor, va *validate.Validator, cl *classify.Classifier, nowFn func() time.Time) *Engine {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Engine{extractor: ex, validator: va, classifier: cl, now: nowFn}
}

// Resolve turns a request into a resolution.
func (e *Engine) Resolve(ctx context.Context, req Request) (Resolution, error) {
	if req.Message == "" && req.InteractionType == "" {
		return Resolution{}, fmt.Errorf("request carries neither a message nor an interaction type")
	}
	if err := checkOverrides(req); err != nil {
		return Resolution{}, err
	}

	now := e.now()

	var res Resolution
	if req.DateStart != "" {
		res = e.resolveOverridden(req)
	} else {
		res = e.resolveExtracted(ctx, req, now)
	}

	// A comparison reads as "recent versus earlier". If the periods came
	// out the other way around, swap them.
	if res.Compare != nil && res.Compare.Start > res.Primary.Start {
		res.Primary, *res.Compare = *res.Compare, res.Primary
	}

	res.ASIN = res.Record.ASIN
	if req.ASIN != "" {
		res.ASIN = strings.ToUpper(req.ASIN)
	}

	res.Category = e.classifier.Classify(ctx, classify.Input{
		Question:           req.Message,
		InteractionType:    req.InteractionType,
		ASINOverride:       req.ASIN,
		ExtractedASIN:      res.Record.ASIN,
		HasCompareOverride: req.CompareDateStart != "",
		HasComparison:      res.Compare != nil,
	})

	return res, nil
}

// checkOverrides enforces the override contract: dates in pairs, ISO
// formatted, start not after end.
func checkOverrides(req Request) error {
	pairs := []struct {
		name       string
		start, end string
	}{
		{"date", req.DateStart, req.DateEnd},
		{"compare date", req.CompareDateStart, req.CompareDateEnd},
	}
	for _, p := range pairs {
		if (p.start == "") != (p.end == "") {
			return fmt.Errorf("%s override requires both start and end", p.name)
		}
		if p.start == "" {
			continue
		}
		for _, d := range []string{p.start, p.end} {
			if _, err := time.Parse(dates.ISO, d); err != nil {
				return fmt.Errorf("%s override %q is not YYYY-MM-DD", p.name, d)
			}
		}
		if p.start > p.end {
			return fmt.Errorf("%s override starts after it ends (%s > %s)", p.name, p.start, p.end)
		}
	}
	if req.CompareDateStart != "" && req.DateStart == "" {
		return fmt.Errorf("compare date override requires a date override")
	}
	if req.ASIN != "" && !extract.ValidASIN(strings.ToUpper(req.ASIN)) {
		return fmt.Errorf("asin override %q is not a 10-character identifier", req.ASIN)
	}
	return nil
}

// resolveOverridden builds a resolution straight from caller-supplied
// dates. The extractor still scans the message for an ASIN.
func (e *Engine) resolveOverridden(req Request) Resolution {
	res := Resolution{
		Primary: dates.Range{Start: req.DateStart, End: req.DateEnd},
		Outcome: Overridden,
		IsValid: true,
		Record: extract.Record{
			DateStartLabel:    dates.ExplicitDate,
			DateEndLabel:      dates.ExplicitDate,
			ExplicitDateStart: req.DateStart,
			ExplicitDateEnd:   req.DateEnd,
			ASIN:              extract.FindASIN(req.Message),
		},
	}
	if req.CompareDateStart != "" {
		res.Compare = &dates.Range{Start: req.CompareDateStart, End: req.CompareDateEnd}
		res.Record.CompareDateStartLabel = dates.ExplicitDate
		res.Record.CompareDateEndLabel = dates.ExplicitDate
		res.Record.ExplicitCompareStart = req.CompareDateStart
		res.Record.ExplicitCompareEnd = req.CompareDateEnd
	}
	return res
}

// resolveExtracted runs the bounded extract-validate loop and resolves the
// surviving record into concrete ranges.
func (e *Engine) resolveExtracted(ctx context.Context, req Request, now time.Time) Resolution {
	var (
		rec     extract.Record
		verdict validate.Verdict
	)

	feedback := ""
	attempt := 0
	for ; attempt < maxAttempts; attempt++ {
		rec = e.extractor.Extract(ctx, req.Message, feedback, now)
		verdict = e.validator.Validate(ctx, req.Message, rec, now)
		if verdict.IsValid {
			break
		}
		feedback = verdict.Feedback
	}

	res := Resolution{
		Outcome:    Accepted,
		IsValid:    true,
		RetryCount: attempt,
		Record:     rec,
	}
	if !verdict.IsValid {
		res.Outcome = ForcedAccept
		res.RetryCount = maxAttempts - 1
		res.Feedback = verdict.Feedback
	}

	calc := dates.NewCalculator(now)
	primary, err := calc.ResolvePair(rec.DateStartLabel, rec.DateEndLabel,
		rec.ExplicitDateStart, rec.ExplicitDateEnd, rec.CustomDaysCount)
	if err != nil {
		// Only reachable after a forced accept of an unresolvable record.
		primary, _ = calc.Calculate(dates.Default, "", 0)
		res.IsValid = false
	}
	res.Primary = primary

	if rec.HasComparison() {
		compare, err := calc.ResolvePair(rec.CompareDateStartLabel, rec.CompareDateEndLabel,
			rec.ExplicitCompareStart, rec.ExplicitCompareEnd, rec.CustomCompareDaysCount)
		if err == nil {
			res.Compare = &compare
		} else {
			res.IsValid = false
		}
	}

	return res
}
