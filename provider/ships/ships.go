// Package ships is the Barentswatch AIS overlay provider: it fetches
// vessels seen near the configured zones, runs them through the
// zone-presence tracker and emits display-ready ship records.
package ships

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ekstremedia/pi-overlay-data/ais"
	"github.com/ekstremedia/pi-overlay-data/config"
	"github.com/ekstremedia/pi-overlay-data/geom"
	"github.com/ekstremedia/pi-overlay-data/overlay"
	"github.com/ekstremedia/pi-overlay-data/tracking"
)

// Fetcher is the slice of the AIS client the provider needs; tests swap in
// a fake.
type Fetcher interface {
	ShipsInArea(ctx context.Context, ring geom.Ring, now time.Time, lookback time.Duration) ([]ais.Vessel, error)
}

// Ship is one visible vessel, ready for the overlay and the JSON snapshot.
type Ship struct {
	tracking.Visible
	Zone       string   `json:"zone"`
	Display    string   `json:"display"`
	DistanceKM *float64 `json:"distance_km,omitempty"`
}

func (s Ship) Ref() string         { return strconv.Itoa(s.MMSI) }
func (s Ship) OverlayLine() string { return s.Display }

// Provider tracks all configured zones with a single tracker; sessions per
// zone are independent.
type Provider struct {
	client  Fetcher
	tracker *tracking.Tracker
	cfg     config.ShipsConfig
	camera  *config.CameraConfig
	exclude map[string]bool
}

func New(client Fetcher, zones []geom.Zone, cfg config.ShipsConfig, camera *config.CameraConfig) (*Provider, error) {
	tracker, err := tracking.NewTracker(zones, cfg.Lookback(), cfg.Persist())
	if err != nil {
		return nil, err
	}
	exclude := make(map[string]bool, len(cfg.ExcludeCategories))
	for _, c := range cfg.ExcludeCategories {
		exclude[c] = true
	}
	return &Provider{
		client:  client,
		tracker: tracker,
		cfg:     cfg,
		camera:  camera,
		exclude: exclude,
	}, nil
}

func (p *Provider) Name() string { return "ships" }

// Collect fetches the feed for every zone, runs one tracking cycle and
// returns the filtered visible ships in zone order, then MMSI order.
func (p *Provider) Collect(ctx context.Context, now time.Time) (overlay.Data, error) {
	var reports []tracking.Report
	for _, z := range p.tracker.Zones() {
		vessels, err := p.client.ShipsInArea(ctx, z.Ring, now, p.cfg.Lookback())
		if err != nil {
			return overlay.Data{}, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		reports = append(reports, ais.Reports(vessels)...)
	}

	visible := p.tracker.Update(now, reports)

	items := []overlay.Item{}
	for _, z := range p.tracker.Zones() {
		for _, v := range visible[z.ID] {
			if p.exclude[v.Category] {
				continue
			}
			if v.SpeedKts < p.cfg.MinSpeed() {
				continue
			}
			items = append(items, p.ship(z.ID, v))
		}
	}
	return overlay.NewData(p.Name(), now, items), nil
}

func (p *Provider) ship(zoneID string, v tracking.Visible) Ship {
	s := Ship{
		Visible: v,
		Zone:    zoneID,
		Display: displayLine(v),
	}
	if p.camera != nil {
		d := geom.HaversineKM(p.camera.Lat, p.camera.Lon, v.Lat, v.Lon)
		s.DistanceKM = &d
	}
	return s
}

// displayLine renders the overlay text for one vessel:
// "NAME (MMSI) 12.5 kts, north-west", or "NAME (MMSI) stationary".
func displayLine(v tracking.Visible) string {
	if v.Direction == geom.Stationary {
		return fmt.Sprintf("%s (%d) stationary", v.Name, v.MMSI)
	}
	return fmt.Sprintf("%s (%d) %.1f kts, %s", v.Name, v.MMSI, v.SpeedKts, v.Direction)
}
