package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/recall-ai/recall/pkg/cache"
	"github.com/recall-ai/recall/pkg/models"
)

type lookupRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

type lookupResponse struct {
	Found bool          `json:"found"`
	Match string        `json:"match,omitempty"`
	Entry *models.Entry `json:"entry,omitempty"`
}

type insertRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Context  string `json:"context,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type saveResponse struct {
	Saved bool `json:"saved"`
}

type clearResponse struct {
	Cleared int `json:"cleared"`
}

type healthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, match := s.cache.Lookup(req.Question, req.Context)
	resp := lookupResponse{Found: match != cache.LookupMiss}
	if resp.Found {
		resp.Match = match.String()
		resp.Entry = &entry
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.cache.Insert(req.Question, req.Answer, req.Context); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleHitRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.cache.HitRateStats())
}

func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.cache.ResetStats()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMaintain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Maintain())
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.cache.SaveNow(); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "snapshot save failed")
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Saved: true})
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	n := s.cache.Clear()
	writeJSON(w, http.StatusOK, clearResponse{Cleared: n})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := healthResponse{Status: "ok"}
	if degraded, reason := s.cache.Degraded(); degraded {
		resp.Status = "degraded"
		resp.Reason = reason
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"recall_error","code":%d}}`, message, code)
}
