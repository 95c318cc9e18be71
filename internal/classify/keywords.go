package classify

import (
	"regexp"
	"strings"
)

// hardcodedQuestions are demo prompts with canned responses. Matched after
// lowercasing and whitespace collapsing, so trailing spaces or casing in the
// chat box do not break the demo.
var hardcodedQuestions = map[string]struct{}{
	"show me performance insights":                                              {},
	"give me performance insights":                                              {},
	"what was the highest performance day?":                                     {},
	"what day had the best performance?":                                        {},
	"can you compare my store performance in august over august to september?":  {},
	"can you show me some insights about this product from oct 1 to oct 30":     {},
	"yes":                                                                       {},
}

// insightKeywords flag comparison and trend language. Any hit routes to the
// insight pipeline regardless of what the model would say.
var insightKeywords = []string{
	"compare", "compared", "comparison", "versus", "vs",
	"difference", "differences", "variance", "change", "shift", "shifted",
	"week over week", "month over month", "year over year",
	"loss", "losses", "why", "insight", "insights",
	"trend", "trends", "trending", "analyze", "analysis",
	"what happened", "dropped", "decreased", "increased",
}

// inventoryKeywords flag stock and fulfillment questions.
var inventoryKeywords = []string{
	"doi", "days of inventory", "storage fee", "storage fees", "storage cost",
	"inventory", "stock", "stockout", "safety stock", "in transit",
	"receiving", "low stock", "out of stock", "inventory turnover",
	"fba in-stock", "fba in stock",
}

// goalKeywords flag questions about targets the seller has set.
var goalKeywords = []string{"goal", "goals", "objective", "objectives", "target", "targets", "milestone"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeQuestion lowercases and collapses runs of whitespace.
func normalizeQuestion(q string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(q)), " ")
}

// isHardcoded reports whether the normalized question has a canned response.
func isHardcoded(q string) bool {
	_, ok := hardcodedQuestions[normalizeQuestion(q)]
	return ok
}

// Keyword patterns are compiled once at startup. Word boundaries keep
// "analysis" from firing on "paralysis".
var keywordPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, list := range [][]string{insightKeywords, inventoryKeywords, goalKeywords} {
		for _, kw := range list {
			keywordPatterns[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
}

func containsKeyword(q string, keywords []string) bool {
	norm := normalizeQuestion(q)
	for _, kw := range keywords {
		if keywordPatterns[kw].MatchString(norm) {
			return true
		}
	}
	return false
}

// asinTokenRe matches the literal word ASIN, which signals a product
// question even without an identifier in the text.
var asinTokenRe = regexp.MustCompile(`(?i)\basins?\b`)
