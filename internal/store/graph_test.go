package store

import (
	"testing"
)

func TestUpsertEntity(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertEntity("quarterly review"); err != nil {
		t.Fatalf("UpsertEntity: %v", err)
	}
	if err := db.UpsertEntity("quarterly review"); err != nil {
		t.Fatalf("UpsertEntity repeat: %v", err)
	}

	e, err := db.GetEntity("quarterly review")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if e == nil {
		t.Fatal("entity not found")
	}
	if e.MentionCount != 2 {
		t.Errorf("MentionCount = %d, want 2", e.MentionCount)
	}
}

func TestUpsertEdge(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertEdge("user", "burnout", "experiences", 0.9, "reported after review"); err != nil {
		t.Fatalf("UpsertEdge: %v", err)
	}
	// Same triple again: refresh, not duplicate.
	if err := db.UpsertEdge("user", "burnout", "experiences", 0.95, "repeated report"); err != nil {
		t.Fatalf("UpsertEdge repeat: %v", err)
	}

	edges, err := db.EdgesFrom("user")
	if err != nil {
		t.Fatalf("EdgesFrom: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95 (refreshed)", edges[0].Confidence)
	}
	if edges[0].Evidence != "repeated report" {
		t.Errorf("Evidence = %q, want refreshed evidence", edges[0].Evidence)
	}

	count, err := db.CountEdges()
	if err != nil {
		t.Fatalf("CountEdges: %v", err)
	}
	if count != 1 {
		t.Errorf("CountEdges = %d, want 1", count)
	}
}

func TestInsertAndListProposals(t *testing.T) {
	db := testDB(t)

	approved := &RelationshipProposal{
		Source: "user", Target: "burnout", Relation: "experiences",
		Confidence: 0.9, Evidence: "direct report",
		Status: StatusApproved, RunID: "run-1", ModelID: "test-model",
	}
	pending := &RelationshipProposal{
		Source: "burnout", Target: "quarterly review", Relation: "caused_by",
		Confidence: 0.4, Evidence: "implied",
		Status: StatusPendingReview, RunID: "run-1",
	}

	if err := db.InsertProposal(approved); err != nil {
		t.Fatalf("InsertProposal approved: %v", err)
	}
	if err := db.InsertProposal(pending); err != nil {
		t.Fatalf("InsertProposal pending: %v", err)
	}
	if approved.ID == 0 || approved.CreatedAt == 0 {
		t.Error("InsertProposal did not backfill ID/CreatedAt")
	}

	all, err := db.ListProposals("", 100)
	if err != nil {
		t.Fatalf("ListProposals all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d proposals, want 2", len(all))
	}

	pendingOnly, err := db.ListProposals(StatusPendingReview, 100)
	if err != nil {
		t.Fatalf("ListProposals pending: %v", err)
	}
	if len(pendingOnly) != 1 {
		t.Fatalf("got %d pending proposals, want 1", len(pendingOnly))
	}
	if pendingOnly[0].Relation != "caused_by" {
		t.Errorf("Relation = %q, want caused_by", pendingOnly[0].Relation)
	}
	if pendingOnly[0].ModelID != "" {
		t.Errorf("ModelID = %q, want empty", pendingOnly[0].ModelID)
	}
}
