package scores

import (
	"math"
	"strings"

	"criticdeck/utils/textnorm"
)

// Only game entries are ever matched; the finder can surface people, movies,
// and franchise pages alongside games.
const gameTitleType = "game-title"

// Matcher weights. These are a tuned bag-of-signals ranker, not a string
// distance metric; displayed titles and slugs depend on which candidate wins,
// so the exact values matter.
const (
	exactMatchBonus     = 1000.0
	prefixBonus         = 120.0
	containsBonus       = 40.0
	tokenOverlapWeight  = 8.0
	lengthPenaltyWeight = 0.3
	overlapRatioBonus   = 10.0
	platformHintBonus   = 12.0
	quickScoreBonus     = 1.0
)

// matchScore rates one candidate against a normalized target. candidate,
// target, and platform must already be normalized; targetTokens are target's
// tokens.
func matchScore(item *searchCandidate, candidate, target string, targetTokens []string, platform string) float64 {
	candidateTokens := make(map[string]struct{})
	for _, tok := range textnorm.Tokens(candidate) {
		candidateTokens[tok] = struct{}{}
	}
	overlap := 0
	for _, tok := range targetTokens {
		if _, ok := candidateTokens[tok]; ok {
			overlap++
		}
	}

	score := 0.0
	if candidate == target {
		score += exactMatchBonus
	}
	if strings.HasPrefix(candidate, target) {
		score += prefixBonus
	} else if strings.Contains(candidate, target) {
		score += containsBonus
	}
	score += float64(overlap) * tokenOverlapWeight
	score -= math.Abs(float64(len(candidate)-len(target))) * lengthPenaltyWeight
	if overlap > 0 && len(targetTokens) > 0 {
		score += float64(overlap) / float64(len(targetTokens)) * overlapRatioBonus
	}
	if platform != "" {
		for _, p := range item.Platforms {
			if textnorm.Normalize(p.Name) == platform {
				score += platformHintBonus
				break
			}
		}
	}
	if item.CriticScoreSummary != nil && item.CriticScoreSummary.Score != 0 {
		score += quickScoreBonus
	}
	return score
}

// pickBestMatch scores every game-type candidate against the target title and
// returns the highest scorer. Ties keep the first-seen candidate. Returns nil
// only when no candidate survives the type/empty-title filters.
func pickBestMatch(items []searchCandidate, title, platformHint string) *searchCandidate {
	target := textnorm.Normalize(title)
	platform := textnorm.Normalize(platformHint)
	targetTokens := textnorm.Tokens(target)

	bestScore := math.Inf(-1)
	var bestMatch *searchCandidate

	for i := range items {
		item := &items[i]
		if item.Type != gameTitleType {
			continue
		}
		candidate := textnorm.Normalize(item.Title)
		if candidate == "" {
			continue
		}
		if score := matchScore(item, candidate, target, targetTokens, platform); score > bestScore {
			bestScore = score
			bestMatch = item
		}
	}

	return bestMatch
}
