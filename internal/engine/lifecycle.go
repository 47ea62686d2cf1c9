package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/driftlake/watershed/internal/llm"
	"github.com/driftlake/watershed/internal/store"
)

// TickResult aggregates one lifecycle tick's migration counts. Counts reflect
// successes only; failed items stay in their tier and retry next tick.
type TickResult struct {
	HotToWarm  int `json:"hot_to_warm"`
	WarmToCold int `json:"warm_to_cold"`
}

// Tick runs both migrations in sequence. Ticks are serialized: a concurrent
// caller blocks until the running tick completes.
func (e *Engine) Tick(ctx context.Context) TickResult {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	return e.tick(ctx)
}

func (e *Engine) tick(ctx context.Context) TickResult {
	return TickResult{
		HotToWarm:  e.migrateHotToWarm(ctx),
		WarmToCold: e.migrateWarmToCold(ctx),
	}
}

// migrateHotToWarm compresses hot items older than the retention window into
// warm records. Items are processed independently: one failure never aborts
// the batch.
func (e *Engine) migrateHotToWarm(ctx context.Context) int {
	retention := time.Duration(e.cfg.HotRetentionHours) * time.Hour
	cutoff := time.Now().Add(-retention)

	migrated := 0
	for _, item := range e.Hot.OlderThan(cutoff) {
		// A warm row carrying this origin means a prior run crashed between
		// the insert and the hot removal. Finish the removal without another
		// completion call, and do not count the item again.
		existing, err := e.DB.GetItem(item.ID)
		if err != nil {
			log.Printf("lifecycle: check warm for %s: %v", item.ID, err)
			continue
		}
		if existing != nil {
			e.Hot.Remove(item.ID)
			continue
		}

		summary, err := e.summarize(ctx, item.Content)
		if err != nil {
			log.Printf("lifecycle: summarize %s: %v", item.ID, err)
			continue
		}

		meta := map[string]string{"summary": summary, "origin_id": item.ID}
		for k, v := range item.Metadata {
			if _, exists := meta[k]; !exists {
				meta[k] = v
			}
		}

		warm := &store.MemoryItem{
			ID:          uuid.NewString(),
			OriginID:    item.ID,
			Content:     summary,
			Kind:        item.Kind,
			Importance:  item.Importance,
			ProjectID:   item.ProjectID,
			Metadata:    meta,
			AccessCount: item.AccessCount,
		}

		// Warm record first, then drop the hot copy: a concurrent reader sees
		// the item in one tier or the other, never in neither. The origin_id
		// uniqueness makes a re-run after a crash in between a no-op.
		inserted, err := e.DB.InsertWarm(warm)
		if err != nil {
			log.Printf("lifecycle: insert warm for %s: %v", item.ID, err)
			continue
		}
		e.Hot.Remove(item.ID)
		if inserted {
			migrated++
		}
	}
	return migrated
}

// migrateWarmToCold consolidates warm items into the knowledge graph by
// running their summaries through the extractor's ingestion path, then marks
// them cold. Already-marked items are never selected, so re-runs no-op.
func (e *Engine) migrateWarmToCold(ctx context.Context) int {
	items, err := e.DB.ListUnconsolidatedWarm(e.cfg.WarmBatchSize)
	if err != nil {
		log.Printf("lifecycle: list warm: %v", err)
		return 0
	}

	migrated := 0
	for _, item := range items {
		if e.cfg.MinAccessCount > 0 && item.AccessCount < e.cfg.MinAccessCount {
			continue
		}

		basinContext := e.consolidationContext(item.Kind)

		extraction, err := e.Extractor.Extract(ctx, item.Content, basinContext, "")
		if err != nil {
			log.Printf("lifecycle: consolidate %s: %v", item.ID, err)
			continue
		}
		if extraction.Err != "" {
			// Soft extraction failure: nothing was ingested, so leave the
			// item warm and retry next tick.
			log.Printf("lifecycle: consolidate %s: %s", item.ID, extraction.Err)
			continue
		}

		moved, err := e.DB.MarkConsolidated(item.ID)
		if err != nil {
			log.Printf("lifecycle: mark consolidated %s: %v", item.ID, err)
			continue
		}
		if moved {
			migrated++
		}
	}
	return migrated
}

// consolidationContext builds the extraction context for cold consolidation
// from the basin's current state, read-only: consolidating is not routing and
// must not reinforce.
func (e *Engine) consolidationContext(kindStr string) string {
	kind, ok := ParseKind(kindStr)
	if !ok {
		kind = KindSemantic
	}

	basin, err := e.DB.GetBasin(kind.BasinName())
	if err != nil || basin == nil {
		p := kind.profile()
		return "Basin: " + p.Basin + " - " + p.Description + "\nExtraction focus: " + p.Focus
	}
	return FormatBasinContext(basin, kind)
}

// summarize compresses content into a dense one-sentence summary.
func (e *Engine) summarize(ctx context.Context, content string) (string, error) {
	resp, err := e.LLM.Complete(ctx, llm.Request{
		Prompt:    llm.SummaryPrompt(content),
		MaxTokens: 256,
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary from completion service")
	}
	return summary, nil
}
