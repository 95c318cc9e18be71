package validate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sellerchat/sellerchat/internal/dates"
	"github.com/sellerchat/sellerchat/internal/extract"
)

const judgeSystem = `You review date-label extractions from Amazon seller questions. You reply with a single JSON object and nothing else.`

const judgePromptTemplate = `A model extracted date labels from a seller's question. Decide whether the
extraction faithfully represents what the seller asked.

Question: %q
Today's date: %s

Extraction:
%s

Judge ONLY faithfulness to the question:
- Does the primary period match the time the seller asked about?
- If the seller compared two periods, is the more recent one primary and
  the earlier one in the compare fields? If the seller named one period,
  are the compare fields empty?
- Do explicit dates match the dates the seller wrote?
- Labels that merely phrase the same period differently (past_7_days for
  "last 7 days") are correct. Do not reject stylistic choices.

Respond with JSON:
{"is_valid": true}
or
{"is_valid": false, "feedback": "<one sentence telling the extractor what to fix>"}`

func buildJudgePrompt(question string, rec extract.Record, now time.Time) (string, error) {
	encoded, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(judgePromptTemplate, question, now.UTC().Format(dates.ISO), encoded), nil
}
