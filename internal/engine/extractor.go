package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/driftlake/watershed/internal/llm"
	"github.com/driftlake/watershed/internal/store"
)

// relationshipCandidate is the JSON shape returned by the extraction LLM.
type relationshipCandidate struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	RelationType string  `json:"relation_type"`
	Confidence   float64 `json:"confidence"`
	Evidence     string  `json:"evidence"`
}

type extractionPayload struct {
	Entities      []string                `json:"entities"`
	Relationships []relationshipCandidate `json:"relationships"`
}

// ExtractionResult is what one extraction call produced. Err records a soft
// failure (completion or parse); the slices are then empty and nothing was
// written.
type ExtractionResult struct {
	Entities      []string
	Relationships []store.RelationshipProposal
	RunID         string
	Err           string
}

// Approved returns the relationships that cleared the confidence gate.
func (r *ExtractionResult) Approved() []store.RelationshipProposal {
	var out []store.RelationshipProposal
	for _, p := range r.Relationships {
		if p.Status == store.StatusApproved {
			out = append(out, p)
		}
	}
	return out
}

// Extractor asks the completion service for entities and typed relationships,
// gates them by confidence, and persists the outcome: approved relationships
// become graph edges, everything becomes an audit proposal.
type Extractor struct {
	DB        *store.DB
	LLM       llm.Client
	Threshold float64
	ModelID   string
}

// Extract runs one confidence-gated extraction. A completion or parse failure
// is soft: the result carries the error and no write happens. A storage
// failure is hard and returned as an error.
func (x *Extractor) Extract(ctx context.Context, content, basinContext, strategyContext string) (*ExtractionResult, error) {
	result := &ExtractionResult{
		Entities: []string{},
		RunID:    uuid.NewString(),
	}

	resp, err := x.LLM.Complete(ctx, llm.Request{
		Prompt: llm.ExtractionPrompt(content, basinContext, strategyContext),
	})
	if err != nil {
		result.Err = fmt.Sprintf("extraction completion: %v", err)
		return result, nil
	}

	payload, err := parseExtractionResponse(resp.Content)
	if err != nil {
		result.Err = fmt.Sprintf("extraction parse: %v", err)
		return result, nil
	}

	// Validate candidates at the boundary before anything touches storage.
	var candidates []relationshipCandidate
	for _, c := range payload.Relationships {
		vc, err := validateCandidate(c)
		if err != nil {
			log.Printf("extract: rejecting candidate %s→%s: %v", c.Source, c.Target, err)
			continue
		}
		candidates = append(candidates, vc)
	}

	for _, name := range payload.Entities {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		result.Entities = append(result.Entities, name)
		if err := x.DB.UpsertEntity(name); err != nil {
			return nil, err
		}
	}

	for _, c := range candidates {
		status := store.StatusPendingReview
		if c.Confidence >= x.Threshold {
			status = store.StatusApproved
		}

		proposal := store.RelationshipProposal{
			Source:     c.Source,
			Target:     c.Target,
			Relation:   c.RelationType,
			Confidence: c.Confidence,
			Evidence:   c.Evidence,
			Status:     status,
			RunID:      result.RunID,
			ModelID:    x.ModelID,
		}

		// Only approved relationships become graph edges. Pending ones are
		// recorded as proposals and nothing else.
		if status == store.StatusApproved {
			if err := x.DB.UpsertEntity(c.Source); err != nil {
				return nil, err
			}
			if err := x.DB.UpsertEntity(c.Target); err != nil {
				return nil, err
			}
			if err := x.DB.UpsertEdge(c.Source, c.Target, c.RelationType, c.Confidence, c.Evidence); err != nil {
				return nil, err
			}
		}

		// Proposals are recorded for both dispositions: the audit trail
		// covers everything the extractor ever produced.
		if err := x.DB.InsertProposal(&proposal); err != nil {
			return nil, err
		}
		result.Relationships = append(result.Relationships, proposal)
	}

	return result, nil
}

// validateCandidate checks a relationship candidate for obvious garbage.
func validateCandidate(c relationshipCandidate) (relationshipCandidate, error) {
	c.Source = strings.TrimSpace(c.Source)
	c.Target = strings.TrimSpace(c.Target)
	c.RelationType = strings.TrimSpace(c.RelationType)
	c.Evidence = strings.TrimSpace(c.Evidence)

	if c.Source == "" || c.Target == "" {
		return c, fmt.Errorf("empty endpoint")
	}
	if c.RelationType == "" {
		return c, fmt.Errorf("empty relation type")
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return c, fmt.Errorf("confidence %v outside [0,1]", c.Confidence)
	}
	return c, nil
}

// parseExtractionResponse extracts a JSON object from the LLM response.
// The response might contain markdown code fences or other wrapper text.
func parseExtractionResponse(content string) (*extractionPayload, error) {
	content = strings.TrimSpace(content)

	// Strip markdown code fences if present
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	content = strings.TrimSpace(content)

	// Find the JSON object
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal extraction payload: %w", err)
	}

	return &payload, nil
}
