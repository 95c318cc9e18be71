// Package classify assigns each seller question a routing category. The
// ladder runs deterministic rules from most to least authoritative and only
// falls back to a model for the one genuinely fuzzy distinction, metrics
// versus everything else.
package classify

// Category is a routing decision for a seller question.
type Category string

const (
	MetricsQuery   Category = "metrics_query"
	InsightQuery   Category = "insight_query"
	ASINProduct    Category = "asin_product"
	DashboardLoad  Category = "dashboard_load"
	Hardcoded      Category = "hardcoded"
	GoalQuery      Category = "goal_query"
	InventoryQuery Category = "inventory_query"
	OtherQuery     Category = "other_query"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case MetricsQuery, InsightQuery, ASINProduct, DashboardLoad,
		Hardcoded, GoalQuery, InventoryQuery, OtherQuery:
		return true
	}
	return false
}

// Interaction types the chat frontend stamps on non-typed events.
const (
	InteractionGoalCreated     = "goal_created"
	InteractionGoalCreateFault = "goal_created_failed"
	InteractionDashboardLoad   = "dashboard_load"
)
