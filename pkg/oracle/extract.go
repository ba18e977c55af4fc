package oracle

import (
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON object span out of free-form completion text.
// A fenced ```json block wins; otherwise the outermost {...} span is taken.
// Text with neither fails with ErrMalformedOutput.
func ExtractJSON(content string) (string, error) {
	if span, ok := fencedBlock(content); ok {
		return span, nil
	}

	if span, ok := braceSpan(content); ok {
		return span, nil
	}

	return "", fmt.Errorf("%w: no JSON object in completion text", ErrMalformedOutput)
}

func fencedBlock(content string) (string, bool) {
	start := strings.Index(content, "```json")
	if start == -1 {
		return "", false
	}

	rest := content[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}

	span := strings.TrimSpace(rest[:end])
	return span, span != ""
}

func braceSpan(content string) (string, bool) {
	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first == -1 || last <= first {
		return "", false
	}
	return content[first : last+1], true
}
