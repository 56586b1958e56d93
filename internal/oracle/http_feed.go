package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// roundResponse is the JSON document served by a price endpoint
type roundResponse struct {
	RoundID   uint64 `json:"round_id"`
	Answer    int64  `json:"answer"`
	UpdatedAt int64  `json:"updated_at"` // unix seconds
}

// HTTPFeed reads rounds from a JSON price endpoint
type HTTPFeed struct {
	client *resty.Client
	url    string
}

var _ Feed = (*HTTPFeed)(nil)

// NewHTTPFeed creates a feed polling url on every read
func NewHTTPFeed(url string, timeout time.Duration) *HTTPFeed {
	client := resty.New().
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "payperview-api/1.0").
		SetTimeout(timeout)

	return &HTTPFeed{
		client: client,
		url:    url,
	}
}

// LatestRound fetches the current round
func (f *HTTPFeed) LatestRound(ctx context.Context) (Round, error) {
	var result roundResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(f.url)
	if err != nil {
		return Round{}, fmt.Errorf("failed to query price feed: %w", err)
	}

	if resp.IsError() {
		return Round{}, fmt.Errorf("price feed error (status %d): %s", resp.StatusCode(), resp.String())
	}

	return Round{
		RoundID:   result.RoundID,
		Answer:    result.Answer,
		UpdatedAt: time.Unix(result.UpdatedAt, 0),
	}, nil
}
