package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstremedia/pi-overlay-data/ais"
	"github.com/ekstremedia/pi-overlay-data/config"
	"github.com/ekstremedia/pi-overlay-data/geom"
	"github.com/ekstremedia/pi-overlay-data/history"
	"github.com/ekstremedia/pi-overlay-data/overlay"
	"github.com/ekstremedia/pi-overlay-data/provider"
	"github.com/ekstremedia/pi-overlay-data/provider/ships"
	"github.com/ekstremedia/pi-overlay-data/service"
	"github.com/ekstremedia/pi-overlay-data/web"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type feedFetcher struct {
	vessels []ais.Vessel
}

func (f *feedFetcher) ShipsInArea(_ context.Context, _ geom.Ring, _ time.Time, _ time.Duration) ([]ais.Vessel, error) {
	return f.vessels, nil
}

func harbourZone(t *testing.T) []geom.Zone {
	t.Helper()
	ring, err := geom.NormalizeRing([]geom.Vertex{
		{Lon: 16.0, Lat: 68.4},
		{Lon: 16.2, Lat: 68.4},
		{Lon: 16.2, Lat: 68.5},
		{Lon: 16.0, Lat: 68.5},
	})
	require.NoError(t, err)
	return []geom.Zone{{ID: "harbour", Name: "Harbour", Ring: ring}}
}

func vessel(mmsi int, name string, lon, lat, sog, cog float64, at time.Time) ais.Vessel {
	noHeading := 511.0
	return ais.Vessel{
		MMSI:             mmsi,
		Name:             name,
		MsgTime:          at.Format(time.RFC3339),
		Latitude:         &lat,
		Longitude:        &lon,
		SpeedOverGround:  &sog,
		CourseOverGround: &cog,
		TrueHeading:      &noHeading,
		ShipType:         70,
	}
}

// Full pipeline: AIS feed fixture through tracker, writer, history and the
// HTTP API.
func TestPipeline_ShipThroughZone(t *testing.T) {
	dir := t.TempDir()
	writer, err := overlay.NewWriter(dir, time.Hour)
	require.NoError(t, err)
	store, err := history.Open(filepath.Join(dir, "overlay.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	feed := &feedFetcher{}
	minSpeed := 0.5
	shipsCfg := config.ShipsConfig{Enabled: true, LookbackHours: 3, PersistMinutes: 10, MinSpeedKts: &minSpeed}
	p, err := ships.New(feed, harbourZone(t), shipsCfg, &config.CameraConfig{Lat: 68.45, Lon: 16.1})
	require.NoError(t, err)

	svc := service.New([]provider.Provider{p}, writer, store)

	// Cycle 1: vessel inside the zone.
	feed.vessels = []ais.Vessel{vessel(257000001, "NORDKAPP", 16.1, 68.45, 12.5, 315, t0)}
	require.NoError(t, svc.RunOnce(context.Background(), t0))

	raw, err := os.ReadFile(filepath.Join(dir, "ships_current.json"))
	require.NoError(t, err)
	var snapshot struct {
		Count int `json:"count"`
		Items []struct {
			MMSI    int    `json:"mmsi"`
			Zone    string `json:"zone"`
			Display string `json:"display"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	require.Equal(t, 1, snapshot.Count)
	assert.Equal(t, "harbour", snapshot.Items[0].Zone)
	assert.Equal(t, "NORDKAPP (257000001) 12.5 kts, north-west", snapshot.Items[0].Display)

	// Cycle 2: vessel has left but stays displayed inside the persist window.
	feed.vessels = []ais.Vessel{vessel(257000001, "NORDKAPP", 17.5, 68.45, 12.5, 315, t0.Add(5*time.Minute))}
	require.NoError(t, svc.RunOnce(context.Background(), t0.Add(5*time.Minute)))
	raw, err = os.ReadFile(filepath.Join(dir, "ships_current.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, 1, snapshot.Count, "persist window keeps the vessel visible")

	// Cycle 3: past the persist window the vessel disappears.
	feed.vessels = nil
	require.NoError(t, svc.RunOnce(context.Background(), t0.Add(12*time.Minute)))
	raw, err = os.ReadFile(filepath.Join(dir, "ships_current.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Zero(t, snapshot.Count)

	combined, err := os.ReadFile(filepath.Join(dir, "combined_overlay.txt"))
	require.NoError(t, err)
	assert.Equal(t, "No data", string(combined))

	// The API serves the snapshot and three cycles of history.
	srv := web.NewServer(0, dir, store)
	req := httptest.NewRequest(http.MethodGet, "/api/ships", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	sightings, err := store.RecentSightings("ships", t0.Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, sightings, 2, "two cycles had the vessel visible")
}
