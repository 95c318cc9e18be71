package classify

import "fmt"

const binarySystem = `You triage questions from Amazon sellers. You reply with a single JSON object and nothing else.`

const binaryPromptTemplate = `Decide whether the seller is asking for store metrics or for something else.

Question: %q

metrics_query: the seller wants numbers about their store or products.
Sales, revenue, units, sessions, conversion, traffic, ad spend, refunds,
fees, profit. "What is my revenue?" and "What is X?" phrasings default to
metrics_query when X is a store quantity.

other_query: the seller wants a definition, an explanation of a concept,
help using the product, or something unrelated to their store's numbers.
Only choose other_query when the question explicitly asks what a term
means, how something works, or is off-topic.

Respond with JSON: {"category": "metrics_query"} or {"category": "other_query"}`

func buildBinaryPrompt(question string) string {
	return fmt.Sprintf(binaryPromptTemplate, question)
}
