// Package client is a Go API client for the Timecast server. It drives the
// cosmetic progress tracker alongside the generation request the same way
// the web client does: the timer and the network call run concurrently, and
// the timer learns the outcome only when the request resolves.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"timecast/internal/models"
	"timecast/internal/progress"
)

type Client struct {
	baseURL    string
	idToken    string
	httpClient *http.Client

	History *progress.History

	// trackerOpts shorten timings in tests.
	trackerOpts []progress.Option
}

func New(baseURL, idToken string, opts ...progress.Option) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		idToken:     idToken,
		httpClient:  &http.Client{},
		History:     progress.NewHistory(),
		trackerOpts: opts,
	}
}

type generatePayload struct {
	IDToken    string   `json:"idToken"`
	Categories []string `json:"categories"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Language   string   `json:"language"`
	Region     string   `json:"region"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Generate submits one generation request, maintaining a pending history
// entry and its progress until the server responds.
func (c *Client) Generate(ctx context.Context, input models.GenerationRequest) (models.PodcastRecord, error) {
	pendingID := c.History.AddPending(input)

	tracker := progress.New(func(pct int) {
		c.History.SetProgress(pendingID, pct)
	}, c.trackerOpts...)
	tracker.Start()

	record, err := c.postGenerate(ctx, input)
	if err != nil {
		c.History.MarkFailed(pendingID, tracker.Fail())
		return models.PodcastRecord{}, err
	}

	tracker.Finish()
	c.History.Complete(pendingID, record)
	return record, nil
}

func (c *Client) postGenerate(ctx context.Context, input models.GenerationRequest) (models.PodcastRecord, error) {
	payload := generatePayload{
		IDToken:    c.idToken,
		Categories: input.Categories,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Language:   input.Language,
		Region:     input.Region,
	}

	var record models.PodcastRecord
	if err := c.postJSON(ctx, "/api/podcasts", payload, &record); err != nil {
		return models.PodcastRecord{}, err
	}
	return record, nil
}

// ListMine fetches the listing for the authenticated user.
func (c *Client) ListMine(ctx context.Context) ([]models.PodcastSummary, error) {
	var out struct {
		Items []models.PodcastSummary `json:"items"`
	}
	payload := map[string]string{"idToken": c.idToken}
	if err := c.postJSON(ctx, "/api/my/podcasts", payload, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr errorPayload
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SetTimeout adjusts the underlying HTTP client timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}
