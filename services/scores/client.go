package scores

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	apiBaseURL = "https://backend.metacritic.com"
	webBaseURL = "https://www.metacritic.com"

	userAgent = "CriticDeck/0.1 (+https://github.com/chrismichaelps/metacritic)"

	// Search is restricted to game entries via mcoTypeId; the candidate type
	// filter in the matcher is a second line of defense.
	searchPath      = "/finder/metacritic/search/%s/web?offset=0&limit=50&mcoTypeId=13"
	scoresPath      = "/games/metacritic/%s/web?componentName=scores&componentDisplayName=Scores&componentType=ScoreSummary"
	userStatsPath   = "/reviews/metacritic/user/games/%s/stats/web?componentName=user-score-summary&componentDisplayName=User+Score+Summary&componentType=MetaScoreSummary"
	criticStatsPath = "/reviews/metacritic/critic/games/%s/stats/web?componentName=critic-score-summary&componentDisplayName=Critic+Score+Summary&componentType=MetaScoreSummary"
)

// searchCandidate is one entry returned by the finder endpoint.
type searchCandidate struct {
	Title              string              `json:"title"`
	Slug               string              `json:"slug"`
	Type               string              `json:"type"`
	Platforms          []candidatePlatform `json:"platforms"`
	CriticScoreSummary *quickScore         `json:"criticScoreSummary"`
}

type candidatePlatform struct {
	Name string `json:"name"`
}

// quickScore is the abbreviated critic summary attached to search results.
type quickScore struct {
	Score float64 `json:"score"`
}

// criticSummary is the aggregated critic score for one title/platform pair.
type criticSummary struct {
	URL       string   `json:"url"`
	Max       *float64 `json:"max"`
	Score     *float64 `json:"score"`
	Sentiment string   `json:"sentiment"`
}

// platformVariant carries per-platform score divergence; a game may score
// differently on different platforms.
type platformVariant struct {
	Name               string         `json:"name"`
	Slug               string         `json:"slug"`
	ReleaseDate        string         `json:"releaseDate"`
	CriticScoreSummary *criticSummary `json:"criticScoreSummary"`
}

// scoreDetail is the scores component payload for one matched slug.
type scoreDetail struct {
	Title              string            `json:"title"`
	Slug               string            `json:"slug"`
	Description        string            `json:"description"`
	MustPlay           *bool             `json:"mustPlay"`
	Platform           string            `json:"platform"`
	ReleaseDate        string            `json:"releaseDate"`
	CriticScoreSummary *criticSummary    `json:"criticScoreSummary"`
	Platforms          []platformVariant `json:"platforms"`
}

// reviewStats is the shared shape of the user and critic stats endpoints.
type reviewStats struct {
	Max           *float64 `json:"max"`
	Score         *float64 `json:"score"`
	ReviewCount   *int     `json:"reviewCount"`
	PositiveCount int      `json:"positiveCount"`
	NeutralCount  int      `json:"neutralCount"`
	NegativeCount int      `json:"negativeCount"`
	Sentiment     string   `json:"sentiment"`
	URL           string   `json:"url"`
}

type scoreClient struct {
	httpc *http.Client
}

func newScoreClient(httpc *http.Client) *scoreClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &scoreClient{httpc: httpc}
}

// doGET performs a GET against the Metacritic backend and decodes the JSON
// body into v, retrying transient failures (network errors, 429, 5xx) with
// exponential backoff. Other non-2xx statuses fail immediately.
func (c *scoreClient) doGET(ctx context.Context, endpoint string, v any) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBaseURL+endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", userAgent)
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("Metacritic request failed (%d)", resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("Metacritic request failed (%d)", resp.StatusCode))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// search queries the finder endpoint for candidate titles.
func (c *scoreClient) search(ctx context.Context, title string) ([]searchCandidate, error) {
	var resp struct {
		Data struct {
			Items []searchCandidate `json:"items"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf(searchPath, url.PathEscape(title))
	if err := c.doGET(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Items, nil
}

// scoreDetails fetches the scores component for a slug. A missing item is
// returned as nil, nil; the caller decides whether that is terminal.
func (c *scoreClient) scoreDetails(ctx context.Context, slug string) (*scoreDetail, error) {
	var resp struct {
		Data struct {
			Item *scoreDetail `json:"item"`
		} `json:"data"`
	}
	if err := c.doGET(ctx, fmt.Sprintf(scoresPath, url.PathEscape(slug)), &resp); err != nil {
		return nil, err
	}
	return resp.Data.Item, nil
}

// userStats fetches the aggregate user score for a slug. Entries without a
// numeric score are treated as absent.
func (c *scoreClient) userStats(ctx context.Context, slug string) (*reviewStats, error) {
	var resp struct {
		Data struct {
			Item *reviewStats `json:"item"`
		} `json:"data"`
	}
	if err := c.doGET(ctx, fmt.Sprintf(userStatsPath, url.PathEscape(slug)), &resp); err != nil {
		return nil, err
	}
	if resp.Data.Item == nil || resp.Data.Item.Score == nil {
		return nil, nil
	}
	return resp.Data.Item, nil
}

// criticStats fetches the aggregate critic review counts for a slug.
func (c *scoreClient) criticStats(ctx context.Context, slug string) (*reviewStats, error) {
	var resp struct {
		Data struct {
			Item *reviewStats `json:"item"`
		} `json:"data"`
	}
	if err := c.doGET(ctx, fmt.Sprintf(criticStatsPath, url.PathEscape(slug)), &resp); err != nil {
		return nil, err
	}
	return resp.Data.Item, nil
}
