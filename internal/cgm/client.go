// Package cgm reads live glucose from a Nightscout-style feed and derives
// the short-term trend the readiness assessment needs.
package cgm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/psjostrom/springa/internal/model"
	"github.com/psjostrom/springa/internal/stream"
)

// trendWindow is how far back entries contribute to the trend slope.
const trendWindow = 30 * time.Minute

type entry struct {
	Date int64   `json:"date"` // ms since epoch
	SGV  float64 `json:"sgv"`  // mg/dL
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Latest returns the most recent reading with a trend slope fitted over the
// last half hour of entries. The slope is nil when fewer than two entries
// fall inside the window.
func (c *Client) Latest(ctx context.Context) (*model.GlucoseReading, error) {
	entries, err := c.fetchEntries(ctx, 12)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("glucose feed returned no entries")
	}

	// Newest first by convention, but don't rely on it.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	newest := entries[0]
	newestAt := time.UnixMilli(newest.Date)

	reading := &model.GlucoseReading{
		Time: newestAt,
		Mmol: model.MmolFromMgdl(newest.SGV),
	}

	var recent []model.TimeSample
	for _, e := range entries {
		at := time.UnixMilli(e.Date)
		if newestAt.Sub(at) > trendWindow {
			continue
		}
		recent = append(recent, model.TimeSample{
			Offset: int(at.Sub(newestAt).Seconds()),
			Value:  model.MmolFromMgdl(e.SGV),
		})
	}
	if len(recent) >= 2 {
		slope := stream.SlopePer10Min(recent)
		reading.TrendSlope = &slope
	}

	c.logger.Debug("fetched glucose reading",
		"mmol", reading.Mmol,
		"entries", len(entries),
		"slope_available", reading.TrendSlope != nil)
	return reading, nil
}

func (c *Client) fetchEntries(ctx context.Context, count int) ([]entry, error) {
	url := fmt.Sprintf("%s/api/v1/entries/sgv.json?count=%d", c.baseURL, count)
	if c.token != "" {
		url += "&token=" + c.token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching glucose entries: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("glucose feed error (status %d)", resp.StatusCode)
	}

	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing entries response: %w", err)
	}
	return entries, nil
}
