package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/sellerchat/sellerchat/internal/llm"
)

type mockProvider struct {
	reply string
	err   error
	calls int
}

func (m *mockProvider) Complete(context.Context, string, llm.CompletionOpts) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockProvider) Name() string { return "mock/mock" }

func TestClassify_Ladder(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Category
	}{
		{
			"goal interaction",
			Input{Question: "", InteractionType: InteractionGoalCreated},
			GoalQuery,
		},
		{
			"failed goal interaction",
			Input{Question: "", InteractionType: InteractionGoalCreateFault},
			GoalQuery,
		},
		{
			"goal vocabulary",
			Input{Question: "am I on track to hit my revenue goal?"},
			GoalQuery,
		},
		{
			"objective vocabulary",
			Input{Question: "did I meet my Q3 revenue objective?"},
			GoalQuery,
		},
		{
			"goal beats asin",
			Input{Question: "how close is B08XYZ1234 to its sales target?", ExtractedASIN: "B08XYZ1234"},
			GoalQuery,
		},
		{
			"dashboard load",
			Input{InteractionType: InteractionDashboardLoad},
			DashboardLoad,
		},
		{
			"hardcoded exact",
			Input{Question: "show me performance insights"},
			Hardcoded,
		},
		{
			"hardcoded survives casing and whitespace",
			Input{Question: "  Show  Me   Performance INSIGHTS "},
			Hardcoded,
		},
		{
			"hardcoded yes",
			Input{Question: "yes"},
			Hardcoded,
		},
		{
			"hardcoded beats insight keywords",
			Input{Question: "can you compare my store performance in august over august to september?"},
			Hardcoded,
		},
		{
			"inventory keywords",
			Input{Question: "how many days of inventory do I have left?"},
			InventoryQuery,
		},
		{
			"inventory beats asin",
			Input{Question: "is B08XYZ1234 at risk of stockout?", ExtractedASIN: "B08XYZ1234"},
			InventoryQuery,
		},
		{
			"asin override",
			Input{Question: "how is this one doing?", ASINOverride: "B07PGL2ZSL"},
			ASINProduct,
		},
		{
			"extracted asin",
			Input{Question: "how is B08XYZ1234 doing?", ExtractedASIN: "B08XYZ1234"},
			ASINProduct,
		},
		{
			"asin word only",
			Input{Question: "which ASINs sold best this month?"},
			ASINProduct,
		},
		{
			"insight keywords",
			Input{Question: "why did my sales drop month over month?"},
			InsightQuery,
		},
		{
			"compare override",
			Input{Question: "how did I do?", HasCompareOverride: true},
			InsightQuery,
		},
		{
			"extractor comparison",
			Input{Question: "september against december", HasComparison: true},
			InsightQuery,
		},
	}

	mock := &mockProvider{reply: `{"category": "other_query"}`}
	c := NewClassifier(mock)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(context.Background(), tt.in); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if mock.calls != 0 {
		t.Errorf("deterministic rungs must not call the model, got %d calls", mock.calls)
	}
}

func TestClassify_BinaryFallback(t *testing.T) {
	metrics := NewClassifier(&mockProvider{reply: `{"category": "metrics_query"}`})
	if got := metrics.Classify(context.Background(), Input{Question: "what was my revenue last week?"}); got != MetricsQuery {
		t.Errorf("got %s, want metrics_query", got)
	}

	other := NewClassifier(&mockProvider{reply: `{"category": "other_query"}`})
	if got := other.Classify(context.Background(), Input{Question: "what does conversion rate mean?"}); got != OtherQuery {
		t.Errorf("got %s, want other_query", got)
	}
}

func TestClassify_BinaryDefaultsToMetrics(t *testing.T) {
	for name, mock := range map[string]*mockProvider{
		"provider error":  {err: errors.New("upstream down")},
		"garbage reply":   {reply: "hard to say"},
		"unknown label":   {reply: `{"category": "banana"}`},
	} {
		c := NewClassifier(mock)
		if got := c.Classify(context.Background(), Input{Question: "how am I doing?"}); got != MetricsQuery {
			t.Errorf("%s: got %s, want metrics_query", name, got)
		}
	}

	nilProvider := NewClassifier(nil)
	if got := nilProvider.Classify(context.Background(), Input{Question: "how am I doing?"}); got != MetricsQuery {
		t.Errorf("nil provider: got %s, want metrics_query", got)
	}
}

func TestNormalizeQuestion(t *testing.T) {
	if got := normalizeQuestion("  What   WAS my\trevenue? "); got != "what was my revenue?" {
		t.Errorf("got %q", got)
	}
}

func TestKeywordBoundaries(t *testing.T) {
	if containsKeyword("my paralysis is acting up", insightKeywords) {
		t.Error("analysis must not match inside paralysis")
	}
	if !containsKeyword("run an analysis on my store", insightKeywords) {
		t.Error("analysis should match as a word")
	}
	if containsKeyword("the vstock report", insightKeywords) {
		t.Error("vs must not match inside vstock")
	}
}
