// Package remote implements rank.Scorer against an external model-serving
// HTTP endpoint. The service receives the raw feature batch and must answer
// with one score per vector.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"inciq/pkg/rank"
)

// Scorer calls an external scoring service over HTTP.
type Scorer struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
}

// NewScorerParams contains configuration options for creating a new Scorer.
type NewScorerParams struct {
	BaseURL string
	ApiKey  string
	Timeout time.Duration
}

// NewScorer creates a scorer against the service at BaseURL. An empty
// timeout defaults to 30 seconds; per-request deadlines should additionally
// come in through the context.
func NewScorer(params NewScorerParams) (*Scorer, error) {
	u, err := url.Parse(params.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Scorer{
		baseURL:    u,
		apiKey:     params.ApiKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type scoreRequest struct {
	Features []rank.FeatureVector `json:"features"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// Score posts the feature batch to the service's /score endpoint. The
// response must carry exactly one score per vector; a shorter or longer
// answer is an error so the caller can fall back.
func (s *Scorer) Score(ctx context.Context, batch []rank.FeatureVector) ([]float64, error) {
	body, err := json.Marshal(scoreRequest{Features: batch})
	if err != nil {
		return nil, err
	}

	endpoint := s.baseURL.JoinPath("score")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("scorer service returned %d: %s", res.StatusCode, msg)
	}

	var parsed scoreResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Scores) != len(batch) {
		return nil, fmt.Errorf("scorer service returned %d scores for %d vectors", len(parsed.Scores), len(batch))
	}
	return parsed.Scores, nil
}

var _ rank.Scorer = (*Scorer)(nil)
