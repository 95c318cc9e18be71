package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON parses a model response into v, tolerating the markdown code
// fences many models wrap JSON in despite instructions not to.
func DecodeJSON(raw string, v any) error {
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("invalid JSON from model: %w (raw: %s)", err, truncate(raw, 300))
	}
	return nil
}

// StripFences removes a surrounding ``` code fence, if present.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	lines := strings.Split(cleaned, "\n")
	var kept []string
	inBlock := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inBlock = !inBlock
			continue
		}
		if inBlock {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
