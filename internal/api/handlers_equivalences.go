package api

import (
	"encoding/json"
	"net/http"
)

type addEquivalenceRequest struct {
	CanonicalName string   `json:"canonical_name"`
	Aliases       []string `json:"aliases"`
	Submitter     string   `json:"submitter"`
}

// handleAddEquivalence records a manual supply-name equivalence.
func (s *Server) handleAddEquivalence(w http.ResponseWriter, r *http.Request) {
	var req addEquivalenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.CanonicalName == "" {
		jsonError(w, "canonical_name is required", http.StatusBadRequest)
		return
	}

	entry, err := s.equivalences.Add(r.Context(), req.CanonicalName, req.Aliases, req.Submitter, false)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

type suggestEquivalencesRequest struct {
	Names []string `json:"names"`
}

// handleSuggestEquivalences groups similar supply names for a reviewer.
// Nothing is persisted; the reviewer confirms via POST /api/equivalences.
func (s *Server) handleSuggestEquivalences(w http.ResponseWriter, r *http.Request) {
	var req suggestEquivalencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Names) < 2 {
		jsonError(w, "at least two names are required", http.StatusBadRequest)
		return
	}

	suggestions := s.equivalences.Suggest(req.Names)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"suggestions": suggestions})
}
