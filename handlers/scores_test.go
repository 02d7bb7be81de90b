package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"criticdeck/models"
)

type stubResolver struct {
	result    models.ScoreResult
	clearErr  error
	lastQuery models.ScoreQuery
	calls     int
}

func (s *stubResolver) Resolve(_ context.Context, q models.ScoreQuery) models.ScoreResult {
	s.calls++
	s.lastQuery = q
	return s.result
}

func (s *stubResolver) ClearCache() error {
	return s.clearErr
}

func TestGetScoreRequiresTitle(t *testing.T) {
	stub := &stubResolver{}
	h := NewScoresHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/scores?title=%20%20", nil)
	rec := httptest.NewRecorder()
	h.GetScore(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if stub.calls != 0 {
		t.Fatalf("resolver must not run without a title")
	}
}

func TestGetScorePassesQueryThrough(t *testing.T) {
	score := 93.0
	stub := &stubResolver{result: models.ScoreResult{Found: true, Slug: "hades", Score: &score}}
	h := NewScoresHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/scores?title=Hades&platform=Nintendo+Switch", nil)
	rec := httptest.NewRecorder()
	h.GetScore(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastQuery.Title != "Hades" || stub.lastQuery.PlatformHint != "Nintendo Switch" {
		t.Fatalf("unexpected query: %+v", stub.lastQuery)
	}

	var payload models.ScoreResult
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Found || payload.Slug != "hades" || payload.Score == nil || *payload.Score != 93 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestGetScoreDomainFailureIsStill200(t *testing.T) {
	stub := &stubResolver{result: models.ScoreResult{Error: "No Metacritic entry found"}}
	h := NewScoresHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/scores?title=zzzqqqxyz123", nil)
	rec := httptest.NewRecorder()
	h.GetScore(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("domain failures ride in the payload, expected 200, got %d", rec.Code)
	}
	var payload models.ScoreResult
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Found || payload.Error == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestClearCache(t *testing.T) {
	stub := &stubResolver{}
	h := NewScoresHandler(stub)

	rec := httptest.NewRecorder()
	h.ClearCache(rec, httptest.NewRequest(http.MethodPost, "/api/scores/cache/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	stub.clearErr = errors.New("disk gone")
	rec = httptest.NewRecorder()
	h.ClearCache(rec, httptest.NewRequest(http.MethodPost, "/api/scores/cache/clear", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
