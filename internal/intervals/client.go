// Package intervals talks to an intervals.icu-style training platform:
// completed activities with their streams, the upcoming planned calendar,
// and athlete settings.
package intervals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://intervals.icu/api/v1"

type Client struct {
	apiKey     string
	athleteID  string
	baseURL    string
	httpClient *http.Client
	cache      *SettingsCache
	logger     *slog.Logger
}

func NewClient(apiKey, athleteID, baseURL string, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:    apiKey,
		athleteID: athleteID,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:  NewSettingsCache(cacheTTL),
		logger: logger,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// The API uses basic auth with the literal API_KEY username.
	req.SetBasicAuth("API_KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("intervals API request", "method", method, "path", path)

	var resp *http.Response
	maxRetries := 3
	requestStart := time.Now()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err = c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries {
				c.logger.Error("API request transport error", "method", method, "path", path, "error", err, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("sending request: %w", err)
			}
			c.logger.Debug("API request transport error, retrying", "method", method, "path", path, "attempt", attempt+1, "error", err)
			time.Sleep(backoff(attempt))
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				c.logger.Error("API request failed after retries", "method", method, "path", path, "status", resp.StatusCode, "attempts", maxRetries+1, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("API returned status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.logger.Debug("API request retryable error", "method", method, "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			time.Sleep(backoff(attempt))
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("intervals API response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("API request failed", "method", method, "path", path, "status", resp.StatusCode, "response", truncate(string(respBody), 200))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ListActivities returns completed activities in the date range, oldest
// first.
func (c *Client) ListActivities(ctx context.Context, oldest, newest time.Time) ([]Activity, error) {
	path := fmt.Sprintf("/athlete/%s/activities?oldest=%s&newest=%s",
		c.athleteID, oldest.Format("2006-01-02"), newest.Format("2006-01-02"))
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	var activities []Activity
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("parsing activities response: %w", err)
	}
	return activities, nil
}

// GetStreams fetches the sample channels for one activity.
func (c *Client) GetStreams(ctx context.Context, activityID string) (*Streams, error) {
	path := fmt.Sprintf("/activity/%s/streams?types=time,heartrate,velocity_smooth,cadence,altitude,glucose", activityID)
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting streams: %w", err)
	}

	var streams Streams
	if err := json.Unmarshal(data, &streams); err != nil {
		return nil, fmt.Errorf("parsing streams response: %w", err)
	}
	return &streams, nil
}

// ListEvents returns planned calendar events in the date range.
func (c *Client) ListEvents(ctx context.Context, oldest, newest time.Time) ([]Event, error) {
	path := fmt.Sprintf("/athlete/%s/events?oldest=%s&newest=%s",
		c.athleteID, oldest.Format("2006-01-02"), newest.Format("2006-01-02"))
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing events response: %w", err)
	}
	return events, nil
}

// UpdateEvent pushes an adapted description and fueling plan back to the
// calendar.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, update EventUpdate) error {
	path := fmt.Sprintf("/athlete/%s/events/%s", c.athleteID, eventID)
	if _, err := c.doRequest(ctx, http.MethodPut, path, update); err != nil {
		return fmt.Errorf("updating event %s: %w", eventID, err)
	}
	return nil
}

// GetAthlete returns the athlete's settings, cached for the configured TTL
// since zone boundaries change rarely.
func (c *Client) GetAthlete(ctx context.Context) (*Athlete, error) {
	if cached := c.cache.Get(); cached != nil {
		return cached, nil
	}

	path := fmt.Sprintf("/athlete/%s", c.athleteID)
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting athlete: %w", err)
	}

	var athlete Athlete
	if err := json.Unmarshal(data, &athlete); err != nil {
		return nil, fmt.Errorf("parsing athlete response: %w", err)
	}

	c.cache.Set(&athlete)
	return &athlete, nil
}
