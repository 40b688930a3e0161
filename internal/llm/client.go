package llm

import (
	"context"
	"strings"
)

// Generator is the code-generation capability. Implementations make a
// single best-effort call; retries and streaming are the caller's problem
// (and out of scope here).
type Generator interface {
	// Generate sends a system message and a user prompt and returns the raw
	// model output.
	Generate(ctx context.Context, systemMessage, prompt string) (string, error)
}

// Phrases that mean the model refused instead of producing code.
var refusalPhrases = []string{
	"sorry, you didn't provide",
	"please provide a python function",
	"i need the function code",
	"no function provided",
	"in order to provide",
	"could you please provide",
	"i would need to see",
}

// CleanResponse strips markdown fences from a model response and rejects
// refusals. Returns the cleaned code and false when the response is not
// usable as test code.
func CleanResponse(response string) (string, bool) {
	if idx := strings.Index(response, "```python"); idx != -1 {
		response = cutFence(response, idx+len("```python"))
	} else if idx := strings.Index(response, "```typescript"); idx != -1 {
		response = cutFence(response, idx+len("```typescript"))
	} else if idx := strings.Index(response, "```"); idx != -1 {
		response = cutFence(response, idx+3)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", false
	}

	lower := strings.ToLower(response)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return "", false
		}
	}
	return response, true
}

func cutFence(s string, start int) string {
	rest := s[start:]
	if end := strings.Index(rest, "```"); end != -1 {
		return rest[:end]
	}
	return rest
}
