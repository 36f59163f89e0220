package eight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
)

// wire types for the interval endpoint

type intervalsEnvelope struct {
	Result struct {
		Intervals []wireInterval `json:"intervals"`
	} `json:"result"`
}

type wireInterval struct {
	ID         string                     `json:"id"`
	TS         time.Time                  `json:"ts"`
	Stages     []wireStage                `json:"stages"`
	Score      int                        `json:"score"`
	Timeseries map[string][]wirePoint     `json:"timeseries"`
	Incomplete bool                       `json:"incomplete"`
}

type wireStage struct {
	Stage    string `json:"stage"`
	Duration int    `json:"duration"`
}

// wirePoint is a [timestamp, value] tuple in the provider's JSON.
type wirePoint struct {
	Time  time.Time
	Value float64
}

func (p *wirePoint) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &p.Time); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &p.Value)
}

// FetchIntervals is the primary, typed path: strict decode into the
// domain interval shape. Any failure here makes the orchestrator fall
// back to FetchIntervalsRaw.
func (c *Client) FetchIntervals(ctx context.Context, accessToken, eightUserID string) ([]internal.Interval, error) {
	url := fmt.Sprintf("%s/users/%s/intervals", c.baseURL, eightUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create intervals request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intervals request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intervals request returned status %d", resp.StatusCode)
	}

	var envelope intervalsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse intervals response: %w", err)
	}

	intervals := make([]internal.Interval, 0, len(envelope.Result.Intervals))
	for _, w := range envelope.Result.Intervals {
		intervals = append(intervals, w.toDomain())
	}
	return intervals, nil
}

func (w wireInterval) toDomain() internal.Interval {
	iv := internal.Interval{
		ID:         w.ID,
		StartTime:  w.TS,
		Score:      w.Score,
		Incomplete: w.Incomplete,
	}
	for _, s := range w.Stages {
		iv.Stages = append(iv.Stages, internal.SleepStage{Stage: s.Stage, Duration: s.Duration})
	}
	if len(w.Timeseries) > 0 {
		iv.Timeseries = make(map[string][]internal.TimeseriesPoint, len(w.Timeseries))
		for metric, points := range w.Timeseries {
			converted := make([]internal.TimeseriesPoint, 0, len(points))
			for _, p := range points {
				converted = append(converted, internal.TimeseriesPoint{Time: p.Time, Value: p.Value})
			}
			iv.Timeseries[metric] = converted
		}
	}
	return iv
}

// FetchIntervalsRaw is the degraded path: a direct GET against the same
// endpoint with the provider-mimicking header set, parsing the body
// defensively. result.intervals may be absent; whatever is present is
// decoded best-effort and undecodable entries are skipped.
func (c *Client) FetchIntervalsRaw(ctx context.Context, accessToken, eightUserID string) ([]internal.Interval, error) {
	url := fmt.Sprintf("%s/users/%s/intervals", c.baseURL, eightUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create raw intervals request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("User-Agent", "Android App")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Host = c.host

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("raw intervals request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("raw intervals request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw intervals response: %w", err)
	}

	var raw struct {
		Result *struct {
			Intervals []json.RawMessage `json:"intervals"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse raw intervals response: %w", err)
	}
	if raw.Result == nil {
		return []internal.Interval{}, nil
	}

	intervals := make([]internal.Interval, 0, len(raw.Result.Intervals))
	for _, msg := range raw.Result.Intervals {
		var w wireInterval
		if err := json.Unmarshal(msg, &w); err != nil {
			c.logger.Warnf("skipping undecodable interval in raw response: %v", err)
			continue
		}
		intervals = append(intervals, w.toDomain())
	}
	return intervals, nil
}
