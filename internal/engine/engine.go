package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/driftlake/watershed/internal/config"
	"github.com/driftlake/watershed/internal/llm"
	"github.com/driftlake/watershed/internal/store"
)

// Engine wires the classifier, basin router, extractor, and tier lifecycle
// together over one database and one completion client.
type Engine struct {
	DB        *store.DB
	LLM       llm.Client
	Hot       *HotStore
	Extractor *Extractor

	cfg config.EngineConfig

	tickMu sync.Mutex
	cron   *cron.Cron
}

// New creates a new Engine. modelID stamps extraction proposals with the
// model that produced them.
func New(db *store.DB, client llm.Client, cfg config.EngineConfig, modelID string) *Engine {
	return &Engine{
		DB:  db,
		LLM: client,
		Hot: NewHotStore(),
		Extractor: &Extractor{
			DB:        db,
			LLM:       client,
			Threshold: cfg.ConfidenceThreshold,
			ModelID:   modelID,
		},
		cfg: cfg,
	}
}

// RouteResult is what route_memory returns. Always populated, even when
// extraction soft-failed: Error is then set and the slices are empty.
type RouteResult struct {
	KindUsed      string                       `json:"kind_used"`
	BasinName     string                       `json:"basin_name"`
	BasinContext  string                       `json:"basin_context"`
	Entities      []string                     `json:"entities"`
	Relationships []store.RelationshipProposal `json:"relationships"`
	ItemID        string                       `json:"item_id"`
	SourceID      string                       `json:"source_id,omitempty"`
	Error         string                       `json:"error,omitempty"`
}

// RouteMemory is the inbound operation: classify (if kind is empty), route to
// a basin, extract, and park the content in the hot tier. Storage failures
// are hard; extraction failures degrade to an empty result with Error set.
func (e *Engine) RouteMemory(ctx context.Context, content string, kind Kind, sourceID, projectID string) (*RouteResult, error) {
	if kind == "" {
		kind = Classify(ctx, e.LLM, content)
	}

	result, err := e.route(ctx, content, kind, sourceID)
	if err != nil {
		return nil, err
	}

	// The raw content enters the lifecycle in the hot tier regardless of how
	// extraction went: compression happens later, on the lifecycle's clock.
	now := time.Now().UnixMilli()
	item := store.MemoryItem{
		ID:         uuid.NewString(),
		Content:    content,
		Kind:       string(kind),
		Importance: 0.5,
		ProjectID:  projectID,
		Metadata:   map[string]string{},
		CreatedAt:  now,
	}
	if sourceID != "" {
		item.Metadata["source_id"] = sourceID
	}
	e.Hot.Put(item)
	result.ItemID = item.ID

	return result, nil
}

// StartLifecycle schedules periodic lifecycle ticks with the given cron
// expression. A tick that fires while the previous one is still running is
// skipped, never overlapped.
func (e *Engine) StartLifecycle(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if !e.tickMu.TryLock() {
			log.Printf("lifecycle: previous tick still running, skipping")
			return
		}
		defer e.tickMu.Unlock()

		res := e.tick(context.Background())
		log.Printf("lifecycle: tick hot_to_warm=%d warm_to_cold=%d", res.HotToWarm, res.WarmToCold)
	})
	if err != nil {
		return err
	}
	c.Start()
	e.cron = c
	return nil
}

// Stop halts the lifecycle scheduler and waits for a running tick to finish.
func (e *Engine) Stop() {
	if e.cron != nil {
		ctx := e.cron.Stop()
		<-ctx.Done()
	}
	e.tickMu.Lock()
	e.tickMu.Unlock()
}
