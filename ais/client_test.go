package ais

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstremedia/pi-overlay-data/geom"
)

func testRing(t *testing.T) geom.Ring {
	t.Helper()
	ring, err := geom.NormalizeRing([]geom.Vertex{
		{Lon: 14.0, Lat: 68.0}, {Lon: 14.0, Lat: 68.2}, {Lon: 14.4, Lat: 68.2}, {Lon: 14.4, Lat: 68.0},
	})
	require.NoError(t, err)
	return ring
}

func f(v float64) *float64 { return &v }

func TestShipsInArea(t *testing.T) {
	var historicPayload struct {
		MsgTimeFrom string `json:"msgtimefrom"`
		MsgTimeTo   string `json:"msgtimeto"`
		Polygon     struct {
			Type        string         `json:"type"`
			Coordinates [][][2]float64 `json:"coordinates"`
		} `json:"polygon"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/historic", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&historicPayload))
		_ = json.NewEncoder(w).Encode([]int{257000001})
	})
	mux.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			MMSI []int `json:"mmsi"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, []int{257000001}, payload.MMSI)
		_ = json.NewEncoder(w).Encode([]Vessel{{
			MMSI:            257000001,
			Name:            "NORDKAPP",
			MsgTime:         "2025-03-01T12:00:00Z",
			Latitude:        f(68.1),
			Longitude:       f(14.2),
			SpeedOverGround: f(12.5),
			TrueHeading:     f(344),
			ShipType:        60,
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(ClientConfig{
		HistoricURL: srv.URL + "/historic",
		LiveURL:     srv.URL + "/live",
	})

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	vessels, err := client.ShipsInArea(context.Background(), testRing(t), now, 3*time.Hour)
	require.NoError(t, err)
	require.Len(t, vessels, 1)
	assert.Equal(t, "Passenger", vessels[0].ShipTypeString)
	assert.Equal(t, "Passenger", vessels[0].ShipCategory)

	assert.Equal(t, "2025-03-01T09:00:00Z", historicPayload.MsgTimeFrom)
	assert.Equal(t, "2025-03-01T12:00:00Z", historicPayload.MsgTimeTo)
	require.Len(t, historicPayload.Polygon.Coordinates, 1)
	coords := historicPayload.Polygon.Coordinates[0]
	assert.Equal(t, coords[0], coords[len(coords)-1], "GeoJSON ring must be closed")
}

func TestShipsInAreaHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{HistoricURL: srv.URL, LiveURL: srv.URL})
	_, err := client.ShipsInArea(context.Background(), testRing(t), time.Now(), time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestVesselDetailsEmpty(t *testing.T) {
	client := NewClient(ClientConfig{})
	vessels, err := client.VesselDetails(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vessels)
}

func TestReportsConversion(t *testing.T) {
	vessels := []Vessel{
		{
			MMSI:            1,
			Name:            "A",
			MsgTime:         "2025-03-01T12:00:00Z",
			Latitude:        f(68.1),
			Longitude:       f(14.2),
			SpeedOverGround: f(5),
			TrueHeading:     f(90),
		},
		// Missing position: silently skipped.
		{MMSI: 2, Name: "B", MsgTime: "2025-03-01T12:00:00Z"},
		// Unparseable timestamp: silently skipped.
		{MMSI: 3, Name: "C", MsgTime: "yesterday", Latitude: f(68), Longitude: f(14)},
		// True heading 511 means unavailable; falls back to COG.
		{
			MMSI:             4,
			MsgTime:          "2025-03-01T12:01:00Z",
			Latitude:         f(68.0),
			Longitude:        f(14.0),
			TrueHeading:      f(511),
			CourseOverGround: f(180),
		},
	}

	reports := Reports(vessels)
	require.Len(t, reports, 2)

	assert.Equal(t, 1, reports[0].MMSI)
	require.NotNil(t, reports[0].Heading)
	assert.Equal(t, 90.0, *reports[0].Heading)

	assert.Equal(t, 4, reports[1].MMSI)
	assert.Equal(t, "Unknown", reports[1].Name)
	require.NotNil(t, reports[1].Heading)
	assert.Equal(t, 180.0, *reports[1].Heading)
	assert.Zero(t, reports[1].SpeedKts)
}

func TestShipTypeTables(t *testing.T) {
	tests := []struct {
		code     int
		label    string
		category string
	}{
		{0, "Unknown", "Unknown"},
		{30, "Fishing", "Fishing"},
		{52, "Tug", "Working"},
		{65, "Passenger", "Passenger"},
		{70, "Cargo", "Cargo"},
		{84, "Tanker", "Tanker"},
		{36, "Sailing", "Pleasure"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, ShipTypeString(tt.code), "code %d", tt.code)
		assert.Equal(t, tt.category, ShipCategory(tt.code), "code %d", tt.code)
	}
}
