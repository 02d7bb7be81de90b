package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"criticdeck/models"
	scorespkg "criticdeck/services/scores"
)

type scoreResolver interface {
	Resolve(context.Context, models.ScoreQuery) models.ScoreResult
	ClearCache() error
}

var _ scoreResolver = (*scorespkg.Service)(nil)

type ScoresHandler struct {
	Service scoreResolver
}

func NewScoresHandler(s scoreResolver) *ScoresHandler {
	return &ScoresHandler{Service: s}
}

// GetScore resolves a title to its score record. Domain failures (no match,
// missing details) come back as 200 with found=false and an error string;
// only a missing title parameter is a client error.
func (h *ScoresHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	platform := strings.TrimSpace(r.URL.Query().Get("platform"))

	result := h.Service.Resolve(r.Context(), models.ScoreQuery{Title: title, PlatformHint: platform})
	writeJSON(w, http.StatusOK, result)
}

// ClearCache drops every cached score record.
func (h *ScoresHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearCache(); err != nil {
		log.Printf("[handlers] failed to clear score cache: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[handlers] failed to encode response: %v", err)
	}
}
