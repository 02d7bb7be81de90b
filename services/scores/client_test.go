package scores

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
)

func TestScoreClientSendsIdentifyingHeaders(t *testing.T) {
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("unexpected User-Agent: %q", got)
		}
		if got := req.Header.Get("Accept"); got != "application/json" {
			t.Errorf("unexpected Accept: %q", got)
		}
		return jsonResponse(http.StatusOK, `{"data":{"items":[]}}`), nil
	})}

	client := newScoreClient(httpc)
	if _, err := client.search(context.Background(), "hades"); err != nil {
		t.Fatalf("search returned error: %v", err)
	}
}

func TestScoreClientEscapesSearchQuery(t *testing.T) {
	var requested string
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		requested = req.URL.EscapedPath()
		return jsonResponse(http.StatusOK, `{"data":{"items":[]}}`), nil
	})}

	client := newScoreClient(httpc)
	if _, err := client.search(context.Background(), "ratchet & clank/rift apart"); err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if strings.Contains(requested, "/rift") {
		t.Fatalf("query slash must be escaped, requested path %q", requested)
	}
	if !strings.HasPrefix(requested, "/finder/metacritic/search/") {
		t.Fatalf("unexpected path: %q", requested)
	}
	want := url.PathEscape("ratchet & clank/rift apart")
	if !strings.Contains(requested, want) {
		t.Fatalf("expected escaped query %q in path %q", want, requested)
	}
}

func TestScoreClientStatusError(t *testing.T) {
	var calls int
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})}

	client := newScoreClient(httpc)
	_, err := client.search(context.Background(), "hades")
	if err == nil || !strings.Contains(err.Error(), "Metacritic request failed (404)") {
		t.Fatalf("expected status error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", calls)
	}
}

func TestScoreClientRetriesServerErrors(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return jsonResponse(http.StatusInternalServerError, `{}`), nil
		}
		return jsonResponse(http.StatusOK, `{"data":{"items":[{"title":"Hades","slug":"hades","type":"game-title"}]}}`), nil
	})}

	client := newScoreClient(httpc)
	items, err := client.search(context.Background(), "hades")
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if len(items) != 1 || items[0].Slug != "hades" {
		t.Fatalf("unexpected items: %+v", items)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected a retry after 500, got %d calls", calls)
	}
}

func TestUserStatsRequireNumericScore(t *testing.T) {
	httpc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":{"item":{"reviewCount":10,"sentiment":"Mixed"}}}`), nil
	})}

	client := newScoreClient(httpc)
	stats, err := client.userStats(context.Background(), "hades")
	if err != nil {
		t.Fatalf("userStats returned error: %v", err)
	}
	if stats != nil {
		t.Fatalf("stats without a score must be treated as absent, got %+v", stats)
	}
}
