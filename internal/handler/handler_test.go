package handler

import (
	"context"
	"strings"
	"testing"

	"github.com/sellerchat/sellerchat/internal/classify"
	"github.com/sellerchat/sellerchat/internal/dates"
	"github.com/sellerchat/sellerchat/internal/pipeline"
)

func testResolution(cat classify.Category) pipeline.Resolution {
	return pipeline.Resolution{
		Category: cat,
		Primary:  dates.Range{Start: "2025-12-16", End: "2025-12-22"},
		Outcome:  pipeline.Accepted,
		IsValid:  true,
	}
}

func TestDispatch_RoutesByCategory(t *testing.T) {
	r := DefaultRegistry()

	resp, err := r.Dispatch(context.Background(),
		pipeline.Request{Message: "yes"},
		testResolution(classify.Hardcoded))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "Great, pulling that up for you now." {
		t.Errorf("got %q", resp.Text)
	}
	if resp.Category != classify.Hardcoded {
		t.Errorf("category not stamped: %s", resp.Category)
	}
}

func TestDispatch_FallbackForUnregistered(t *testing.T) {
	r := DefaultRegistry()

	res := testResolution(classify.MetricsQuery)
	resp, err := r.Dispatch(context.Background(), pipeline.Request{Message: "revenue?"}, res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Text, "2025-12-16 through 2025-12-22") {
		t.Errorf("query directive missing window: %q", resp.Text)
	}
}

func TestQuery_IncludesComparisonAndASIN(t *testing.T) {
	res := testResolution(classify.InsightQuery)
	res.Compare = &dates.Range{Start: "2025-09-01", End: "2025-09-30"}
	res.ASIN = "B08XYZ1234"

	resp, err := Query().Handle(context.Background(), pipeline.Request{}, res)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"2025-09-01", "B08XYZ1234", "compared with"} {
		if !strings.Contains(resp.Text, want) {
			t.Errorf("directive %q missing %q", resp.Text, want)
		}
	}
}

func TestGoal_InteractionTypes(t *testing.T) {
	tests := []struct {
		interaction string
		want        string
	}{
		{classify.InteractionGoalCreated, "has been created"},
		{classify.InteractionGoalCreateFault, "could not create"},
		{"", "where you stand"},
	}
	for _, tt := range tests {
		resp, err := Goal().Handle(context.Background(),
			pipeline.Request{InteractionType: tt.interaction},
			testResolution(classify.GoalQuery))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(resp.Text, tt.want) {
			t.Errorf("interaction %q: %q missing %q", tt.interaction, resp.Text, tt.want)
		}
	}
}

func TestHardcoded_NormalizesBeforeLookup(t *testing.T) {
	resp, err := Hardcoded().Handle(context.Background(),
		pipeline.Request{Message: "  Show  Me Performance  INSIGHTS "},
		testResolution(classify.Hardcoded))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Text, "performance insights") {
		t.Errorf("got %q", resp.Text)
	}
}
