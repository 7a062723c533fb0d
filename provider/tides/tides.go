// Package tides provides the tide / water level overlay provider, backed by
// the ekstremedia tide API with a long-lived file cache.
package tides

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/ekstremedia/pi-overlay-data/config"
	"github.com/ekstremedia/pi-overlay-data/overlay"
	"github.com/ekstremedia/pi-overlay-data/provider"
)

// Event is a coming high or low tide.
type Event struct {
	Time    string  `json:"time,omitempty"`
	LevelCM float64 `json:"level_cm,omitempty"`
}

// State is the current water level with the next tide events.
type State struct {
	Location    string  `json:"location"`
	LevelM      float64 `json:"level"`
	LevelCM     float64 `json:"level_cm"`
	Trend       string  `json:"trend"`
	NextEvent   string  `json:"next_event"`
	NextHigh    Event   `json:"next_high"`
	NextLow     Event   `json:"next_low"`
	GeneratedAt string  `json:"generated_at"`
}

func (s State) Ref() string { return s.Location }

func (s State) OverlayLine() string {
	if s.NextEvent != "" {
		return fmt.Sprintf("Tide: %.1fm, %s (%s)", s.LevelM, s.Trend, s.NextEvent)
	}
	return fmt.Sprintf("Tide: %.1fm, %s", s.LevelM, s.Trend)
}

// apiResponse mirrors the tide API payload. Legacy responses carry
// precomputed current/next fields; newer ones only the points series.
type apiResponse struct {
	Location string `json:"location"`
	Current  struct {
		LevelCM *float64 `json:"level_cm"`
		Trend   string   `json:"trend"`
	} `json:"current"`
	NextHigh    Event   `json:"next_high"`
	NextLow     Event   `json:"next_low"`
	Points      []point `json:"points"`
	GeneratedAt string  `json:"generated_at"`
}

type point struct {
	Time    string  `json:"time"`
	LevelCM float64 `json:"level_cm"`
}

type parsedPoint struct {
	at      time.Time
	levelCM float64
}

type Provider struct {
	apiURL     string
	httpClient *http.Client
	cache      *provider.FileCache
}

func New(cfg config.TidesConfig, dataDir string) *Provider {
	return &Provider{
		apiURL:     cfg.APIURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      provider.NewFileCache(filepath.Join(dataDir, "tide.json"), time.Duration(cfg.CacheHours)*time.Hour),
	}
}

func (p *Provider) Name() string { return "tides" }

// Collect returns the current tide state, computed from the cached points
// series when the API does not precompute it. Upstream failure with no
// cache yields empty data, not an error.
func (p *Provider) Collect(ctx context.Context, now time.Time) (overlay.Data, error) {
	raw, ok := p.cache.Get(now)
	if !ok {
		fetched, err := p.fetch(ctx)
		if err != nil {
			log.Printf("tides: fetch failed: %v", err)
			return overlay.NewData(p.Name(), now, nil), nil
		}
		if err := p.cache.Put(now, fetched); err != nil {
			log.Printf("tides: cache write failed: %v", err)
		}
		raw = fetched
	}

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return overlay.Data{}, fmt.Errorf("tides: decode: %w", err)
	}
	state := stateFromResponse(resp, now)
	return overlay.NewData(p.Name(), now, []overlay.Item{state}), nil
}

func (p *Provider) fetch(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, p.apiURL)
	}
	return io.ReadAll(resp.Body)
}

func stateFromResponse(resp apiResponse, now time.Time) State {
	state := State{
		Location:    resp.Location,
		Trend:       resp.Current.Trend,
		NextHigh:    resp.NextHigh,
		NextLow:     resp.NextLow,
		GeneratedAt: resp.GeneratedAt,
	}
	if state.Location == "" {
		state.Location = "Unknown"
	}

	if resp.Current.LevelCM != nil {
		state.LevelCM = *resp.Current.LevelCM
	} else if len(resp.Points) > 0 {
		level, trend, high, low := deriveFromPoints(resp.Points, now)
		state.LevelCM = level
		state.Trend = trend
		state.NextHigh = high
		state.NextLow = low
	}
	state.LevelM = state.LevelCM / 100
	if state.Trend == "" {
		state.Trend = "unknown"
	}
	state.NextEvent = nextEvent(state.NextHigh, state.NextLow)
	return state
}

// deriveFromPoints computes the current level, trend and the next local
// extrema from the forecast points series.
func deriveFromPoints(points []point, now time.Time) (levelCM float64, trend string, high, low Event) {
	parsed := make([]parsedPoint, 0, len(points))
	for _, pt := range points {
		at, err := time.Parse(time.RFC3339, pt.Time)
		if err != nil {
			continue
		}
		parsed = append(parsed, parsedPoint{at: at, levelCM: pt.LevelCM})
	}
	if len(parsed) == 0 {
		return 0, "unknown", Event{}, Event{}
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].at.Before(parsed[j].at) })

	// Current level: the latest point at or before now.
	current := 0
	for i, pt := range parsed {
		if pt.at.After(now) {
			break
		}
		current = i
	}
	levelCM = parsed[current].levelCM

	trend = "stable"
	if current > 0 {
		switch {
		case levelCM > parsed[current-1].levelCM:
			trend = "rising"
		case levelCM < parsed[current-1].levelCM:
			trend = "falling"
		}
	}

	// Next extrema among future points.
	future := parsed[current+1:]
	for i := 1; i < len(future)-1; i++ {
		prev, cur, next := future[i-1].levelCM, future[i].levelCM, future[i+1].levelCM
		if high.Time == "" && cur > prev && cur >= next {
			high = Event{Time: future[i].at.Format(time.RFC3339), LevelCM: cur}
		}
		if low.Time == "" && cur < prev && cur <= next {
			low = Event{Time: future[i].at.Format(time.RFC3339), LevelCM: cur}
		}
		if high.Time != "" && low.Time != "" {
			break
		}
	}
	return levelCM, trend, high, low
}

// nextEvent picks whichever of high/low comes first, formatted as
// "high at 14:30".
func nextEvent(high, low Event) string {
	highAt, highErr := time.Parse(time.RFC3339, high.Time)
	lowAt, lowErr := time.Parse(time.RFC3339, low.Time)

	switch {
	case highErr == nil && lowErr == nil:
		if highAt.Before(lowAt) {
			return "high at " + highAt.Format("15:04")
		}
		return "low at " + lowAt.Format("15:04")
	case highErr == nil:
		return "high at " + highAt.Format("15:04")
	case lowErr == nil:
		return "low at " + lowAt.Format("15:04")
	default:
		return ""
	}
}
