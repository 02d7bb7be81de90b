package models

// ScoreQuery is a request to resolve a free-text game title. PlatformHint
// biases matching and platform-variant selection; it defaults to "PC" when
// empty.
type ScoreQuery struct {
	Title        string `json:"title"`
	PlatformHint string `json:"platform"`
}

// ReviewBreakdown partitions reviews by sentiment. The three counts are not
// guaranteed to sum to the total review count.
type ReviewBreakdown struct {
	Positive int `json:"positive"`
	Mixed    int `json:"mixed"`
	Negative int `json:"negative"`
}

// ScoreResult is the resolved payload returned to callers. Field names match
// the wire format consumed by the CriticDeck frontend, so they stay snake_case.
// Found=false results carry only the Error field and are never cached.
type ScoreResult struct {
	Found                 bool             `json:"found"`
	Title                 string           `json:"title,omitempty"`
	MatchedTitle          string           `json:"matched_title,omitempty"`
	Slug                  string           `json:"slug,omitempty"`
	Platform              string           `json:"platform,omitempty"`
	Platforms             []string         `json:"platforms,omitempty"`
	Score                 *float64         `json:"score,omitempty"`
	ScoreMax              *float64         `json:"score_max,omitempty"`
	Sentiment             string           `json:"sentiment,omitempty"`
	ReleaseDate           string           `json:"release_date,omitempty"`
	Description           string           `json:"description,omitempty"`
	MetacriticURL         string           `json:"metacritic_url,omitempty"`
	UserScore             *float64         `json:"user_score,omitempty"`
	UserSentiment         string           `json:"user_sentiment,omitempty"`
	UserReviewCount       string           `json:"user_review_count,omitempty"`
	UserReviewBreakdown   *ReviewBreakdown `json:"user_review_breakdown,omitempty"`
	CriticReviewCount     string           `json:"critic_review_count,omitempty"`
	CriticReviewBreakdown *ReviewBreakdown `json:"critic_review_breakdown,omitempty"`
	MustPlay              *bool            `json:"must_play,omitempty"`
	Error                 string           `json:"error,omitempty"`
}
