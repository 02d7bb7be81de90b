// Package scores resolves free-text game titles to Metacritic score records.
//
// Resolution runs search, best-match selection, a detail fetch, and a pair of
// concurrent supplemental stat fetches, wrapped in a TTL cache keyed by the
// normalized title. Expired cache entries are kept around and served when a
// fresh fetch fails, preferring degraded data over no data.
package scores

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"criticdeck/models"
	"criticdeck/utils/textnorm"
)

const (
	defaultCacheTTLHours = 24
	defaultPlatformHint  = "PC"
)

type Service struct {
	client       *scoreClient
	cache        *scoreCache
	ttl          time.Duration
	platformHint string
	now          func() time.Time

	// In-flight deduplication: concurrent resolutions for the same
	// normalized title share one pipeline execution.
	inflightMu sync.Mutex
	inflight   map[string]*inflightResolution
}

type inflightResolution struct {
	wg     sync.WaitGroup
	result models.ScoreResult
}

// NewService builds a resolver that persists its cache under cacheDir.
func NewService(cacheDir string, ttlHours int, platformHint string) *Service {
	if ttlHours <= 0 {
		ttlHours = defaultCacheTTLHours
	}
	if strings.TrimSpace(platformHint) == "" {
		platformHint = defaultPlatformHint
	}
	return &Service{
		client:       newScoreClient(&http.Client{Timeout: 15 * time.Second}),
		cache:        newScoreCache(afero.NewOsFs(), cacheDir, time.Now),
		ttl:          time.Duration(ttlHours) * time.Hour,
		platformHint: platformHint,
		now:          time.Now,
		inflight:     make(map[string]*inflightResolution),
	}
}

// ClearCache removes every cached score record.
func (s *Service) ClearCache() error {
	return s.cache.clear()
}

// Resolve returns the score record for a title. It never returns an error:
// failures surface as a Found=false result carrying a human-readable message,
// or as a stale cached payload when one exists.
func (s *Service) Resolve(ctx context.Context, query models.ScoreQuery) models.ScoreResult {
	title := strings.TrimSpace(query.Title)
	if title == "" {
		return models.ScoreResult{Error: "Missing title"}
	}
	platform := strings.TrimSpace(query.PlatformHint)
	if platform == "" {
		platform = s.platformHint
	}
	key := textnorm.Normalize(title)

	// Titles that normalize to nothing (pure punctuation, non-Latin scripts)
	// would all alias one cache slot; they bypass the cache and the
	// in-flight registry entirely.
	if key == "" {
		return s.resolveAndCache(ctx, title, platform, key)
	}

	if entry, ok := s.cache.get(key); ok && entry.age(s.now()) < s.ttl {
		return entry.Payload
	}

	s.inflightMu.Lock()
	if inflight, exists := s.inflight[key]; exists {
		s.inflightMu.Unlock()
		log.Printf("[scores] waiting for inflight resolution title=%q", title)
		inflight.wg.Wait()
		return inflight.result
	}
	inflight := &inflightResolution{}
	inflight.wg.Add(1)
	s.inflight[key] = inflight
	s.inflightMu.Unlock()

	result := s.resolveAndCache(ctx, title, platform, key)

	inflight.result = result
	inflight.wg.Done()

	s.inflightMu.Lock()
	delete(s.inflight, key)
	s.inflightMu.Unlock()

	return result
}

// resolveAndCache runs the remote pipeline and applies the caching policy:
// only positive results are written through, and a transient fetch failure
// falls back to a stale cache entry when one exists.
func (s *Service) resolveAndCache(ctx context.Context, title, platform, key string) models.ScoreResult {
	result, err := s.fetchScore(ctx, title, platform)
	if err != nil {
		if key != "" {
			if entry, ok := s.cache.get(key); ok {
				log.Printf("[scores] serving stale cache for %q after fetch error: %v", title, err)
				return entry.Payload
			}
		}
		return models.ScoreResult{Error: err.Error()}
	}
	if result.Found && key != "" {
		s.cache.put(key, result)
	}
	return result
}

// fetchScore drives the remote pipeline. Terminal conditions (no candidate,
// empty detail payload) come back as a Found=false result with nil error;
// a non-nil error means a transient failure eligible for stale fallback.
func (s *Service) fetchScore(ctx context.Context, title, platform string) (models.ScoreResult, error) {
	items, err := s.client.search(ctx, title)
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("search %q: %w", title, err)
	}

	match := pickBestMatch(items, title, platform)
	if match == nil || match.Slug == "" {
		return models.ScoreResult{Error: "No Metacritic entry found"}, nil
	}

	detail, err := s.client.scoreDetails(ctx, match.Slug)
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("score details %q: %w", match.Slug, err)
	}
	if detail == nil {
		return models.ScoreResult{Error: "Unable to load Metacritic details"}, nil
	}

	// Prefer the platform variant matching the hint; fall back to the
	// top-level detail fields when they describe the hinted platform. With
	// neither, the result carries detail fields but no critic summary.
	preferred := textnorm.Normalize(platform)
	var variant *platformVariant
	for i := range detail.Platforms {
		if textnorm.Normalize(detail.Platforms[i].Name) == preferred {
			variant = &detail.Platforms[i]
			break
		}
	}
	detailMatchesPreferred := variant == nil && textnorm.Normalize(detail.Platform) == preferred

	var summary *criticSummary
	var releaseDate, platformName string
	fallbackPlatformSlug := "pc"
	switch {
	case variant != nil:
		summary = variant.CriticScoreSummary
		releaseDate = variant.ReleaseDate
		platformName = variant.Name
		if variant.Slug != "" {
			fallbackPlatformSlug = strings.ToLower(variant.Slug)
		}
	case detailMatchesPreferred:
		summary = detail.CriticScoreSummary
		releaseDate = detail.ReleaseDate
		platformName = detail.Platform
	}

	// The stat endpoints have no ordering dependency; either may fail or
	// come back empty without aborting the resolution.
	var userStats, criticStats *reviewStats
	var wg conc.WaitGroup
	wg.Go(func() {
		stats, err := s.client.userStats(ctx, match.Slug)
		if err != nil {
			log.Printf("[scores] user stats unavailable for %q: %v", match.Slug, err)
			return
		}
		userStats = stats
	})
	wg.Go(func() {
		stats, err := s.client.criticStats(ctx, match.Slug)
		if err != nil {
			log.Printf("[scores] critic stats unavailable for %q: %v", match.Slug, err)
			return
		}
		criticStats = stats
	})
	wg.Wait()

	reviewsPath := fmt.Sprintf("/game/%s/critic-reviews/?platform=%s", match.Slug, fallbackPlatformSlug)
	if summary != nil && summary.URL != "" {
		reviewsPath = summary.URL
	}

	result := models.ScoreResult{
		Found:         summary != nil,
		Title:         detail.Title,
		MatchedTitle:  match.Title,
		Slug:          match.Slug,
		Platform:      platformName,
		ReleaseDate:   releaseDate,
		Description:   detail.Description,
		MetacriticURL: absoluteURL(reviewsPath),
		MustPlay:      detail.MustPlay,
	}
	if result.Title == "" {
		result.Title = match.Title
	}
	if result.Platform == "" {
		result.Platform = platform
	}
	for _, p := range detail.Platforms {
		if p.Name != "" {
			result.Platforms = append(result.Platforms, p.Name)
		}
	}
	if summary != nil {
		// A zero score or scale is emitted as absent, matching what the
		// frontend payload has always carried.
		result.Score = nonZeroScore(summary.Score)
		result.ScoreMax = nonZeroScore(summary.Max)
		result.Sentiment = summary.Sentiment
	}
	if userStats != nil {
		result.UserScore = userStats.Score
		result.UserSentiment = userStats.Sentiment
		if userStats.ReviewCount != nil {
			result.UserReviewCount = formatReviewCount(*userStats.ReviewCount, "Ratings")
		}
		result.UserReviewBreakdown = &models.ReviewBreakdown{
			Positive: userStats.PositiveCount,
			Mixed:    userStats.NeutralCount,
			Negative: userStats.NegativeCount,
		}
	}
	if criticStats != nil {
		if criticStats.ReviewCount != nil {
			result.CriticReviewCount = formatReviewCount(*criticStats.ReviewCount, "Critic Reviews")
		}
		result.CriticReviewBreakdown = &models.ReviewBreakdown{
			Positive: criticStats.PositiveCount,
			Mixed:    criticStats.NeutralCount,
			Negative: criticStats.NegativeCount,
		}
	}
	return result, nil
}

var countPrinter = message.NewPrinter(language.English)

// formatReviewCount renders the display label shown under a score badge,
// e.g. "Based on 1,234 Ratings".
func formatReviewCount(count int, noun string) string {
	return countPrinter.Sprintf("Based on %d %s", count, noun)
}

func nonZeroScore(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

// absoluteURL resolves an aggregator-relative path against the public site.
func absoluteURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http") {
		return pathOrURL
	}
	return webBaseURL + pathOrURL
}
