// Package sheets talks to the spreadsheet-backed endpoint that stores
// finished evaluations and the recruiter shortlist.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"candidate-evaluation-workers/internal/common/config"
	httpclient "candidate-evaluation-workers/internal/common/http"
	"candidate-evaluation-workers/internal/models"
)

var (
	// ErrRequestFailed covers transport errors and non-2xx answers.
	ErrRequestFailed = errors.New("sheets request failed")
	// ErrNotAcknowledged means the endpoint answered without success: true.
	ErrNotAcknowledged = errors.New("sheets save not acknowledged")
)

const apiKeyHeader = "X-API-Key"

type Client struct {
	http          *httpclient.Client
	baseURL       string
	savePath      string
	shortlistPath string
	apiKey        string
}

func NewClient(cfg config.PersistenceConfig) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:          httpclient.NewClient(timeout),
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		savePath:      cfg.SavePath,
		shortlistPath: cfg.ShortlistPath,
		apiKey:        cfg.APIKey,
	}
}

// savePayload flattens the input model next to the computed values. Section
// field names do not collide, so embedding keeps them at the top level.
type savePayload struct {
	models.CandidateProfile
	models.BookComposition
	models.GeographyProductMix
	models.RelationshipMetrics
	models.NNMProjection

	SessionID string            `json:"session_id"`
	Tool      string            `json:"tool"`
	Score     int               `json:"score"`
	Verdict   string            `json:"verdict"`
	Notes     string            `json:"notes"`
	AINotes   string            `json:"ai_notes"`
	Prospects []models.Prospect `json:"prospects"`
	Timestamp string            `json:"timestamp"`
}

func newSavePayload(s models.Submission) savePayload {
	prospects := s.Prospects
	if prospects == nil {
		prospects = []models.Prospect{}
	}
	return savePayload{
		CandidateProfile:    s.Input.Profile,
		BookComposition:     s.Input.Book,
		GeographyProductMix: s.Input.Geography,
		RelationshipMetrics: s.Input.Relationships,
		NNMProjection:       s.Input.Projection,
		SessionID:           s.SessionID,
		Tool:                s.Tool,
		Score:               s.Score,
		Verdict:             s.Verdict,
		Notes:               s.Notes,
		AINotes:             s.AINotes,
		Prospects:           prospects,
		Timestamp:           s.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

// Save posts one submission. An HTTP 200 whose body lacks success: true is
// reported as ErrNotAcknowledged.
func (c *Client) Save(ctx context.Context, s models.Submission) (*models.SubmissionReceipt, error) {
	resp, err := c.http.PostJSON(ctx, c.baseURL+c.savePath, c.headers(), newSavePayload(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, truncate(resp.Body))
	}

	var receipt models.SubmissionReceipt
	if err := resp.Decode(&receipt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAcknowledged, err)
	}
	if !receipt.Success {
		msg := receipt.Message
		if msg == "" {
			msg = "success flag missing or false"
		}
		return &receipt, fmt.Errorf("%w: %s", ErrNotAcknowledged, msg)
	}
	return &receipt, nil
}

// SetShortlist posts a shortlist change. Any 2xx answer counts as applied.
func (c *Client) SetShortlist(ctx context.Context, u models.ShortlistUpdate) error {
	resp, err := c.http.PostJSON(ctx, c.baseURL+c.shortlistPath, c.headers(), u)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, truncate(resp.Body))
	}
	return nil
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{apiKeyHeader: c.apiKey}
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
