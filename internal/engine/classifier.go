package engine

import (
	"context"
	"log"
	"strings"

	"github.com/driftlake/watershed/internal/llm"
)

// classifyMaxChars bounds the content sent to the classifier. Classification
// only needs the opening of the content, and capping it bounds cost.
const classifyMaxChars = 2000

// Classify maps content to one of the four memory kinds. Classification never
// blocks the pipeline: ambiguous or unparseable output defaults to semantic.
func Classify(ctx context.Context, client llm.Client, content string) Kind {
	if len(content) > classifyMaxChars {
		content = content[:classifyMaxChars]
	}

	resp, err := client.Complete(ctx, llm.Request{
		Prompt:    llm.ClassificationPrompt(content),
		MaxTokens: 16,
	})
	if err != nil {
		log.Printf("classify: completion failed, defaulting to semantic: %v", err)
		return KindSemantic
	}

	// The prompt asks for a bare kind name, but tolerate wrapper text: take
	// the first token that parses.
	for _, field := range strings.Fields(resp.Content) {
		field = strings.Trim(field, ".,:;\"'`")
		if kind, ok := ParseKind(field); ok {
			return kind
		}
	}

	log.Printf("classify: unparseable output %q, defaulting to semantic", firstLine(resp.Content))
	return KindSemantic
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
