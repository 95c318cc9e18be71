package handler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sellerchat/sellerchat/internal/classify"
	"github.com/sellerchat/sellerchat/internal/pipeline"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalize(q string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(q)), " ")
}

// cannedResponses are the demo scripts. Keys are normalized questions.
var cannedResponses = map[string]string{
	"show me performance insights": "Here are your store's performance insights for the selected period. Revenue and traffic are summarized below, with the biggest movers called out first.",
	"give me performance insights": "Here are your store's performance insights for the selected period. Revenue and traffic are summarized below, with the biggest movers called out first.",
	"what was the highest performance day?": "Your highest performance day in the selected period was driven by a spike in sessions and conversion. The daily breakdown below shows how it compares to your average day.",
	"what day had the best performance?":    "Your highest performance day in the selected period was driven by a spike in sessions and conversion. The daily breakdown below shows how it compares to your average day.",
	"can you compare my store performance in august over august to september?": "Comparing August against September: the summary below shows revenue, units and sessions side by side, with the largest changes highlighted.",
	"can you show me some insights about this product from oct 1 to oct 30":    "Here are the insights for this product from October 1 to October 30: sales, traffic and conversion for the window, with notable day-level changes flagged.",
	"yes": "Great, pulling that up for you now.",
}

const cannedFallback = "Here is the performance summary you asked for."

// Hardcoded answers the demo questions from a static script.
func Hardcoded() Handler {
	return HandlerFunc(func(_ context.Context, req pipeline.Request, _ pipeline.Resolution) (Response, error) {
		text, ok := cannedResponses[normalize(req.Message)]
		if !ok {
			text = cannedFallback
		}
		return Response{Text: text}, nil
	})
}

// Dashboard greets a seller whose dashboard just loaded with the period the
// default view covers.
func Dashboard() Handler {
	return HandlerFunc(func(_ context.Context, _ pipeline.Request, res pipeline.Resolution) (Response, error) {
		return Response{
			Text: fmt.Sprintf("Welcome back. Your dashboard is showing %s through %s. Ask me anything about your store's performance.",
				res.Primary.Start, res.Primary.End),
		}, nil
	})
}

// Goal acknowledges goal lifecycle events and answers goal questions.
func Goal() Handler {
	return HandlerFunc(func(_ context.Context, req pipeline.Request, res pipeline.Resolution) (Response, error) {
		switch req.InteractionType {
		case classify.InteractionGoalCreated:
			return Response{Text: "Your goal has been created. I will track progress against it and flag when you are ahead of or behind pace."}, nil
		case classify.InteractionGoalCreateFault:
			return Response{Text: "I could not create that goal. Check that the target and time frame are filled in, then try again."}, nil
		}
		return Response{
			Text: fmt.Sprintf("Here is where you stand against your goals for %s through %s.",
				res.Primary.Start, res.Primary.End),
		}, nil
	})
}

// Query is the fallback: it emits the resolved query directive for the
// downstream data service. Metrics, insight, ASIN, inventory and other
// questions all leave this process in the same shape.
func Query() Handler {
	return HandlerFunc(func(_ context.Context, _ pipeline.Request, res pipeline.Resolution) (Response, error) {
		var b strings.Builder
		fmt.Fprintf(&b, "Looking at %s through %s", res.Primary.Start, res.Primary.End)
		if res.Compare != nil {
			fmt.Fprintf(&b, ", compared with %s through %s", res.Compare.Start, res.Compare.End)
		}
		if res.ASIN != "" {
			fmt.Fprintf(&b, " for %s", res.ASIN)
		}
		b.WriteString(".")
		return Response{Text: b.String()}, nil
	})
}

// DefaultRegistry wires the standard category bindings.
func DefaultRegistry() *Registry {
	r := NewRegistry(Query())
	r.Register(classify.Hardcoded, Hardcoded())
	r.Register(classify.DashboardLoad, Dashboard())
	r.Register(classify.GoalQuery, Goal())
	return r
}
