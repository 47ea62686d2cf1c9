package engine

import (
	"context"
)

// route resolves the basin for a kind, reinforces it atomically, and runs the
// confidence-gated extraction under the basin's context. Reinforcement and
// extraction are independent: a failed extraction leaves the reinforcement in
// place, which is safe because reinforcement needs no rollback.
func (e *Engine) route(ctx context.Context, content string, kind Kind, sourceID string) (*RouteResult, error) {
	basin, err := e.DB.ReinforceBasin(kind.Seed())
	if err != nil {
		return nil, err
	}

	basinContext := FormatBasinContext(basin, kind)

	extraction, err := e.Extractor.Extract(ctx, content, basinContext, "")
	if err != nil {
		return nil, err
	}

	// Basin↔kind co-occurrence stats: how productive this routing was.
	if err := e.DB.RecordRouting(basin.Name, string(kind), len(extraction.Entities), len(extraction.Relationships)); err != nil {
		return nil, err
	}

	return &RouteResult{
		KindUsed:      string(kind),
		BasinName:     basin.Name,
		BasinContext:  basinContext,
		Entities:      extraction.Entities,
		Relationships: extraction.Relationships,
		SourceID:      sourceID,
		Error:         extraction.Err,
	}, nil
}
