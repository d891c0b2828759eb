// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"fmt"
	"strconv"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// ParseScore extracts a single float score from a model response and clamps
// it into [0, 1]. Tolerates surrounding prose by taking the first token that
// parses as a float.
func ParseScore(text string) (float64, error) {
	text = strings.TrimSpace(CleanJSONBlock(text))
	if text == "" {
		return 0, fmt.Errorf("empty score response")
	}

	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return clampScore(v), nil
	}

	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == ',' || r == ':'
	}) {
		field = strings.Trim(field, "\"'`")
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			return clampScore(v), nil
		}
	}

	return 0, fmt.Errorf("no numeric score in response: %q", text)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
