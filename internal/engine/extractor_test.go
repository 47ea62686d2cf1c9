package engine

import (
	"context"
	"testing"

	"github.com/driftlake/watershed/internal/llm"
	"github.com/driftlake/watershed/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const extractionResponse = `{
	"entities": ["user", "burnout", "quarterly review"],
	"relationships": [
		{
			"source": "user",
			"target": "burnout",
			"relation_type": "experiences",
			"confidence": 0.9,
			"evidence": "User reports burnout"
		},
		{
			"source": "burnout",
			"target": "quarterly review",
			"relation_type": "triggered_by",
			"confidence": 0.4,
			"evidence": "after quarterly review"
		}
	]
}`

func testExtractor(db *store.DB, client llm.Client) *Extractor {
	return &Extractor{DB: db, LLM: client, Threshold: 0.6, ModelID: "test-model"}
}

func TestExtractPartitionsByThreshold(t *testing.T) {
	db := testDB(t)
	mock := &llm.MockClient{Response: &llm.Response{Content: extractionResponse, Provider: "mock"}}
	x := testExtractor(db, mock)

	result, err := x.Extract(context.Background(), "User reports burnout after quarterly review", "basin context", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Err != "" {
		t.Fatalf("unexpected soft error: %s", result.Err)
	}

	if len(result.Entities) != 3 {
		t.Errorf("got %d entities, want 3", len(result.Entities))
	}
	if len(result.Relationships) != 2 {
		t.Fatalf("got %d relationships, want 2", len(result.Relationships))
	}

	// Approved iff confidence >= threshold; union covers everything, no loss.
	for _, p := range result.Relationships {
		wantStatus := store.StatusPendingReview
		if p.Confidence >= 0.6 {
			wantStatus = store.StatusApproved
		}
		if p.Status != wantStatus {
			t.Errorf("relationship %s→%s status = %s, want %s", p.Source, p.Target, p.Status, wantStatus)
		}
		if p.RunID != result.RunID {
			t.Errorf("relationship missing run id")
		}
		if p.ModelID != "test-model" {
			t.Errorf("ModelID = %q, want test-model", p.ModelID)
		}
	}
	if len(result.Approved()) != 1 {
		t.Errorf("got %d approved, want 1", len(result.Approved()))
	}
}

func TestExtractPersistsApprovedAsEdges(t *testing.T) {
	db := testDB(t)
	mock := &llm.MockClient{Response: &llm.Response{Content: extractionResponse, Provider: "mock"}}
	x := testExtractor(db, mock)

	if _, err := x.Extract(context.Background(), "content", "basin", ""); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// Only the 0.9 relationship became an edge.
	count, err := db.CountEdges()
	if err != nil {
		t.Fatalf("CountEdges: %v", err)
	}
	if count != 1 {
		t.Errorf("CountEdges = %d, want 1", count)
	}

	edges, err := db.EdgesFrom("user")
	if err != nil {
		t.Fatalf("EdgesFrom: %v", err)
	}
	if len(edges) != 1 || edges[0].Relation != "experiences" {
		t.Errorf("edges from user = %+v, want one 'experiences' edge", edges)
	}

	// Both endpoint entities exist.
	for _, name := range []string{"user", "burnout"} {
		e, err := db.GetEntity(name)
		if err != nil {
			t.Fatalf("GetEntity %s: %v", name, err)
		}
		if e == nil {
			t.Errorf("entity %q not persisted", name)
		}
	}

	// Proposals recorded for BOTH dispositions.
	all, err := db.ListProposals("", 100)
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d proposals, want 2", len(all))
	}
	pending, err := db.ListProposals(store.StatusPendingReview, 100)
	if err != nil {
		t.Fatalf("ListProposals pending: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("got %d pending proposals, want 1", len(pending))
	}
}

func TestExtractMalformedResponse(t *testing.T) {
	db := testDB(t)
	mock := &llm.MockClient{Response: &llm.Response{Content: "this is not json at all", Provider: "mock"}}
	x := testExtractor(db, mock)

	result, err := x.Extract(context.Background(), "content", "basin", "")
	if err != nil {
		t.Fatalf("Extract should not hard-fail on parse error: %v", err)
	}
	if result.Err == "" {
		t.Error("Err not recorded for malformed response")
	}
	if len(result.Entities) != 0 || len(result.Relationships) != 0 {
		t.Errorf("expected empty result, got %d entities, %d relationships",
			len(result.Entities), len(result.Relationships))
	}

	// Never a partial write.
	if count, _ := db.CountEdges(); count != 0 {
		t.Errorf("CountEdges = %d after parse failure, want 0", count)
	}
	if proposals, _ := db.ListProposals("", 100); len(proposals) != 0 {
		t.Errorf("%d proposals written after parse failure, want 0", len(proposals))
	}
}

func TestExtractCompletionFailure(t *testing.T) {
	db := testDB(t)
	mock := &llm.MockClient{Err: context.DeadlineExceeded}
	x := testExtractor(db, mock)

	result, err := x.Extract(context.Background(), "content", "basin", "")
	if err != nil {
		t.Fatalf("Extract should soft-fail on completion error: %v", err)
	}
	if result.Err == "" {
		t.Error("Err not recorded for completion failure")
	}
}

func TestExtractCodeFencedResponse(t *testing.T) {
	db := testDB(t)
	fenced := "```json\n" + extractionResponse + "\n```"
	mock := &llm.MockClient{Response: &llm.Response{Content: fenced, Provider: "mock"}}
	x := testExtractor(db, mock)

	result, err := x.Extract(context.Background(), "content", "basin", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Err != "" {
		t.Fatalf("unexpected soft error: %s", result.Err)
	}
	if len(result.Relationships) != 2 {
		t.Errorf("got %d relationships from fenced response, want 2", len(result.Relationships))
	}
}

func TestExtractRejectsGarbageCandidates(t *testing.T) {
	db := testDB(t)
	response := `{
		"entities": ["ok"],
		"relationships": [
			{"source": "", "target": "b", "relation_type": "uses", "confidence": 0.9},
			{"source": "a", "target": "b", "relation_type": "", "confidence": 0.9},
			{"source": "a", "target": "b", "relation_type": "uses", "confidence": 1.5},
			{"source": "a", "target": "b", "relation_type": "uses", "confidence": 0.9, "evidence": "fine"}
		]
	}`
	mock := &llm.MockClient{Response: &llm.Response{Content: response, Provider: "mock"}}
	x := testExtractor(db, mock)

	result, err := x.Extract(context.Background(), "content", "basin", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Relationships) != 1 {
		t.Errorf("got %d relationships, want 1 (garbage rejected)", len(result.Relationships))
	}
}
