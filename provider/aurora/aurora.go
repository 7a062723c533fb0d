// Package aurora provides the aurora / space-weather overlay provider,
// backed by the ekstremedia aurora API with a local file cache.
package aurora

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ekstremedia/pi-overlay-data/config"
	"github.com/ekstremedia/pi-overlay-data/overlay"
	"github.com/ekstremedia/pi-overlay-data/provider"
)

// Conditions is one aurora forecast snapshot. Bz south is favorable for
// aurora; the overlay line marks it with an arrow.
type Conditions struct {
	Kp          float64 `json:"kp"`
	Bz          float64 `json:"bz"`
	BzStatus    string  `json:"bz_status"`
	SpeedKmS    float64 `json:"speed"`
	Storm       string  `json:"storm"`
	Conditions  string  `json:"conditions"`
	Favorable   bool    `json:"favorable"`
	GeneratedAt string  `json:"generated_at"`
}

func (c Conditions) Ref() string { return "aurora" }

func (c Conditions) OverlayLine() string {
	arrow := "↑"
	if c.BzStatus == "south" {
		arrow = "↓"
	}
	return fmt.Sprintf("Aurora: Kp %g, Bz %g%s, %s, %g km/s", c.Kp, c.Bz, arrow, c.Storm, c.SpeedKmS)
}

type Provider struct {
	apiURL     string
	httpClient *http.Client
	cache      *provider.FileCache
}

func New(cfg config.AuroraConfig, dataDir string) *Provider {
	return &Provider{
		apiURL:     cfg.APIURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      provider.NewFileCache(filepath.Join(dataDir, "aurora.json"), time.Duration(cfg.CacheMinutes)*time.Minute),
	}
}

func (p *Provider) Name() string { return "aurora" }

// Collect returns the current conditions, from cache when fresh. An
// upstream failure with no cache yields empty data, not an error: the
// overlay simply shows nothing for aurora that cycle.
func (p *Provider) Collect(ctx context.Context, now time.Time) (overlay.Data, error) {
	raw, ok := p.cache.Get(now)
	if !ok {
		fetched, err := p.fetch(ctx)
		if err != nil {
			log.Printf("aurora: fetch failed: %v", err)
			return overlay.NewData(p.Name(), now, nil), nil
		}
		if err := p.cache.Put(now, fetched); err != nil {
			log.Printf("aurora: cache write failed: %v", err)
		}
		raw = fetched
	}

	var cond Conditions
	if err := json.Unmarshal(raw, &cond); err != nil {
		return overlay.Data{}, fmt.Errorf("aurora: decode: %w", err)
	}
	return overlay.NewData(p.Name(), now, []overlay.Item{cond}), nil
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
