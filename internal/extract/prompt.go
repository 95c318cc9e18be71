package extract

import (
	"fmt"
	"strings"

	"github.com/sellerchat/sellerchat/internal/dates"
)

const extractSystem = `You label date references in questions from Amazon sellers about their store performance. You reply with a single JSON object and nothing else.`

const extractPromptTemplate = `Analyze the seller's question and extract date period labels and any product ASIN.

Question: %q
Today's date: %s

Choose labels ONLY from this list (exact spelling):
%s

Rules:
- date_start_label and date_end_label describe the primary period. If the
  question names a single period, set both to the same label.
- If the question compares two periods, the MORE RECENT period is the
  primary one and the earlier period goes in compare_date_start_label and
  compare_date_end_label. Comparison labels are both set or both empty.
- A month name with a day qualifier ("October 15th", "Oct 1 to Oct 30") is
  explicit_date, not the month label. Put the resolved ISO dates (YYYY-MM-DD)
  in explicit_date_start and explicit_date_end. When the year is not stated,
  use the most recent occurrence that is not in the future.
- A month name alone ("October", "in Oct") is that month's label.
- "last 7 days" is past_7_days, not past_days with a count. Use past_days
  only for counts without a predefined label, and put the number of days in
  custom_days_count.
- "this week" and "last week" are Monday through Sunday calendar weeks.
- If the question has no date reference at all, use "default" for both
  primary labels.
- asin: a 10-character Amazon product identifier if one appears in the
  question, else "".

%sRespond with JSON:
{
  "date_start_label": "...",
  "date_end_label": "...",
  "compare_date_start_label": "",
  "compare_date_end_label": "",
  "explicit_date_start": "",
  "explicit_date_end": "",
  "explicit_compare_start": "",
  "explicit_compare_end": "",
  "custom_days_count": 0,
  "custom_compare_days_count": 0,
  "asin": ""
}`

// buildExtractPrompt renders the extraction prompt. Validator feedback from
// a rejected attempt is threaded in so the model can correct itself.
func buildExtractPrompt(question, today, feedback string) string {
	feedbackBlock := ""
	if feedback != "" {
		feedbackBlock = fmt.Sprintf("Your previous answer was rejected: %s\nFix that mistake in this answer.\n\n", feedback)
	}
	return fmt.Sprintf(extractPromptTemplate, question, today, labelList(), feedbackBlock)
}

func labelList() string {
	labels := dates.AllLabels()
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}
