package classify

import (
	"context"

	"github.com/sellerchat/sellerchat/internal/llm"
)

// Input carries everything the ladder looks at: the question text plus the
// out-of-band signals the chat frontend and the extractor provide.
type Input struct {
	Question        string
	InteractionType string

	// ASIN provided outside the text, e.g. the product page the seller
	// asked from.
	ASINOverride string
	// ASIN the extractor found in the text.
	ExtractedASIN string

	// The request carried explicit comparison date overrides.
	HasCompareOverride bool
	// The extractor found a comparison period in the text.
	HasComparison bool
}

// Classifier assigns categories. The model is consulted only for the final
// metrics-versus-other rung.
type Classifier struct {
	provider llm.Provider
}

// NewClassifier wires a classifier to an LLM provider. A nil provider makes
// the final rung always answer metrics_query.
func NewClassifier(provider llm.Provider) *Classifier {
	return &Classifier{provider: provider}
}

// Classify walks the ladder top to bottom and returns the first rung that
// claims the question. Rung order is load-bearing: an out-of-band goal event
// must win even when the text mentions an ASIN, and canned demo questions
// must never reach the model.
func (c *Classifier) Classify(ctx context.Context, in Input) Category {
	if in.InteractionType == InteractionGoalCreated ||
		in.InteractionType == InteractionGoalCreateFault ||
		containsKeyword(in.Question, goalKeywords) {
		return GoalQuery
	}

	if in.InteractionType == InteractionDashboardLoad {
		return DashboardLoad
	}

	if isHardcoded(in.Question) {
		return Hardcoded
	}

	if containsKeyword(in.Question, inventoryKeywords) {
		return InventoryQuery
	}

	if in.ASINOverride != "" || in.ExtractedASIN != "" || asinTokenRe.MatchString(in.Question) {
		return ASINProduct
	}

	if in.HasCompareOverride || in.HasComparison || containsKeyword(in.Question, insightKeywords) {
		return InsightQuery
	}

	return c.metricsOrOther(ctx, in.Question)
}

// metricsOrOther is the only model-backed rung: is the seller asking for a
// number, or for an explanation? Ambiguity and infrastructure trouble both
// resolve to metrics_query, the answer that degrades best.
func (c *Classifier) metricsOrOther(ctx context.Context, question string) Category {
	if c.provider == nil {
		return MetricsQuery
	}

	raw, err := c.provider.Complete(ctx, buildBinaryPrompt(question), llm.CompletionOpts{
		Format:      "json",
		Temperature: 0,
		System:      binarySystem,
	})
	if err != nil {
		return MetricsQuery
	}

	var reply struct {
		Category string `json:"category"`
	}
	if err := llm.DecodeJSON(raw, &reply); err != nil {
		return MetricsQuery
	}
	if Category(reply.Category) == OtherQuery {
		return OtherQuery
	}
	return MetricsQuery
}
