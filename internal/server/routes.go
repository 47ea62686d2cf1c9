package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/driftlake/watershed/internal/engine"
	"github.com/driftlake/watershed/internal/store"
)

func (s *Server) handleRouteMemory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content   string `json:"content"`
		Kind      string `json:"kind"`
		SourceID  string `json:"source_id"`
		ProjectID string `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}

	// Kind is optional; the classifier supplies it when absent. A kind
	// outside the four known values is a caller error, not a classification
	// default.
	var kind engine.Kind
	if req.Kind != "" {
		k, ok := engine.ParseKind(req.Kind)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown kind")
			return
		}
		kind = k
	}

	result, err := s.engine.RouteMemory(r.Context(), req.Content, kind, req.SourceID, req.ProjectID)
	if err != nil {
		log.Printf("route memory: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleLifecycleTick(w http.ResponseWriter, r *http.Request) {
	res := s.engine.Tick(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleListBasins(w http.ResponseWriter, r *http.Request) {
	basins, err := s.db.ListBasins()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]any, 0, len(basins))
	for _, b := range basins {
		out = append(out, basinJSON(&b))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"basins": out})
}

func (s *Server) handleGetBasin(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	basin, err := s.db.GetBasin(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if basin == nil {
		writeError(w, http.StatusNotFound, "basin not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(basinJSON(basin))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	// Hot first, then the durable tiers.
	if s.engine != nil {
		if item, ok := s.engine.Hot.Get(itemID); ok {
			writeItem(w, item)
			return
		}
	}

	item, err := s.db.GetItem(itemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	// Durable reads count as accesses too.
	if err := s.db.TouchItem(item.ID); err != nil {
		log.Printf("touch item %s: %v", item.ID, err)
	}
	writeItem(w, item)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != store.StatusApproved && status != store.StatusPendingReview {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	proposals, err := s.db.ListProposals(status, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if proposals == nil {
		proposals = []store.RelationshipProposal{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"proposals": proposals})
}

// writeError emits a JSON error body. Encoding the message keeps the body
// valid JSON whatever characters the message carries.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func basinJSON(b *store.Basin) map[string]any {
	return map[string]any{
		"name":             b.Name,
		"description":      b.Description,
		"concepts":         b.Concepts,
		"strength":         b.Strength,
		"stability":        b.Stability,
		"activation_count": b.ActivationCount,
		"last_activated":   b.LastActivated,
		"created_at":       b.CreatedAt,
	}
}

func writeItem(w http.ResponseWriter, item *store.MemoryItem) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":           item.ID,
		"origin_id":    item.OriginID,
		"content":      item.Content,
		"kind":         item.Kind,
		"tier":         item.Tier,
		"importance":   item.Importance,
		"project_id":   item.ProjectID,
		"metadata":     item.Metadata,
		"access_count": item.AccessCount,
		"created_at":   item.CreatedAt,
	})
}
