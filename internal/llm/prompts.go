package llm

import "fmt"

// ClassificationPrompt generates the prompt for classifying content into a
// memory kind.
func ClassificationPrompt(content string) string {
	return fmt.Sprintf(`You are a memory classification system. Classify this content into exactly one memory kind.

CONTENT:
%s

Kinds:
- episodic: lived experience, observed events, things that happened (e.g., "User reported burnout after the review")
- semantic: facts, concepts, stable knowledge about the world (e.g., "The billing service owns invoice state")
- procedural: how-to knowledge, techniques, repeatable steps (e.g., "Rotate keys by re-issuing the token first")
- strategic: goals, plans, priorities, direction (e.g., "Q3 focus is reducing infra spend")

Rules:
- Pick the single best kind
- Return ONLY the kind name in lowercase, no other text

Answer:`, content)
}

// ExtractionPrompt generates the prompt for entity/relationship extraction,
// steered by the basin context and an optional strategy context.
func ExtractionPrompt(content, basinContext, strategyContext string) string {
	strategy := ""
	if strategyContext != "" {
		strategy = fmt.Sprintf("\nSTRATEGY CONTEXT:\n%s\n", strategyContext)
	}

	return fmt.Sprintf(`You are a knowledge extraction system. Extract entities and typed relationships from this content.

BASIN CONTEXT:
%s
%s
CONTENT:
%s

Rules:
- Entities are short noun phrases naming people, systems, projects, concepts
- Relationships connect two extracted entities with a snake_case relation type
- confidence is your calibrated belief in [0, 1] that the relationship holds
- evidence quotes or paraphrases the supporting text
- Only extract what the content actually supports
- Return ONLY a JSON object, no other text

Return a JSON object:
{
  "entities": ["entity name", ...],
  "relationships": [{
    "source": "entity name",
    "target": "entity name",
    "relation_type": "snake_case_type",
    "confidence": 0.0,
    "evidence": "supporting text"
  }]
}

If nothing worth extracting, return: {"entities": [], "relationships": []}`, basinContext, strategy, content)
}

// SummaryPrompt generates the prompt for compressing content into a dense
// one-sentence summary for the warm tier.
func SummaryPrompt(content string) string {
	return fmt.Sprintf(`You are a memory compression system. Compress this content into one dense sentence.

CONTENT:
%s

Rules:
- Exactly one sentence
- Keep names, numbers, and outcomes; drop filler
- Write it so the original could be re-derived in spirit, not in detail
- Return ONLY the sentence, no other text

Summary:`, content)
}
