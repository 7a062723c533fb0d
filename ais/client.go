// Package ais is a client for the Barentswatch AIS API. Authentication uses
// the OAuth2 client-credentials flow; tokens are cached and refreshed by the
// oauth2 transport.
package ais

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ekstremedia/pi-overlay-data/geom"
)

const (
	DefaultTokenURL    = "https://id.barentswatch.no/connect/token"
	DefaultHistoricURL = "https://historic.ais.barentswatch.no/v1/historic/mmsiinarea"
	DefaultLiveURL     = "https://live.ais.barentswatch.no/v1/latest/combined"

	defaultTimeout = 30 * time.Second
)

// ClientConfig carries credentials and endpoint overrides. Empty URL fields
// fall back to the production Barentswatch endpoints.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HistoricURL  string
	LiveURL      string
	Timeout      time.Duration
}

// Client queries the Barentswatch AIS endpoints.
type Client struct {
	httpClient  *http.Client
	historicURL string
	liveURL     string
}

// NewClient builds a client. With empty credentials requests go out
// unauthenticated, which is only useful against test servers.
func NewClient(cfg ClientConfig) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.HistoricURL == "" {
		cfg.HistoricURL = DefaultHistoricURL
	}
	if cfg.LiveURL == "" {
		cfg.LiveURL = DefaultLiveURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	base := &http.Client{Timeout: cfg.Timeout}
	httpClient := base
	if cfg.ClientID != "" {
		oauthCfg := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{"ais"},
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauthCfg.Client(ctx)
	}

	return &Client{
		httpClient:  httpClient,
		historicURL: cfg.HistoricURL,
		liveURL:     cfg.LiveURL,
	}
}

func (c *Client) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type geoJSONPolygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

func polygonPayload(ring geom.Ring) geoJSONPolygon {
	coords := make([][2]float64, 0, len(ring)+1)
	for _, v := range ring {
		coords = append(coords, [2]float64{v.Lon, v.Lat})
	}
	// GeoJSON rings are explicitly closed.
	coords = append(coords, coords[0])
	return geoJSONPolygon{Type: "Polygon", Coordinates: [][][2]float64{coords}}
}

// MMSIsInArea returns the MMSI numbers of vessels seen inside the polygon
// between from and to.
func (c *Client) MMSIsInArea(ctx context.Context, ring geom.Ring, from, to time.Time) ([]int, error) {
	payload := struct {
		MsgTimeFrom string         `json:"msgtimefrom"`
		MsgTimeTo   string         `json:"msgtimeto"`
		Polygon     geoJSONPolygon `json:"polygon"`
	}{
		MsgTimeFrom: from.UTC().Format(time.RFC3339),
		MsgTimeTo:   to.UTC().Format(time.RFC3339),
		Polygon:     polygonPayload(ring),
	}
	var mmsis []int
	if err := c.post(ctx, c.historicURL, payload, &mmsis); err != nil {
		return nil, fmt.Errorf("mmsi in area: %w", err)
	}
	return mmsis, nil
}

// VesselDetails fetches the latest combined position and voyage data for
// the given vessels, enriched with ship type labels.
func (c *Client) VesselDetails(ctx context.Context, mmsis []int) ([]Vessel, error) {
	if len(mmsis) == 0 {
		return nil, nil
	}
	payload := struct {
		MMSI []int `json:"mmsi"`
	}{MMSI: mmsis}

	var vessels []Vessel
	if err := c.post(ctx, c.liveURL, payload, &vessels); err != nil {
		return nil, fmt.Errorf("vessel details: %w", err)
	}
	for i := range vessels {
		vessels[i].ShipTypeString = ShipTypeString(vessels[i].ShipType)
		vessels[i].ShipCategory = ShipCategory(vessels[i].ShipType)
	}
	return vessels, nil
}

// ShipsInArea combines MMSIsInArea and VesselDetails over the lookback
// window ending at now.
func (c *Client) ShipsInArea(ctx context.Context, ring geom.Ring, now time.Time, lookback time.Duration) ([]Vessel, error) {
	mmsis, err := c.MMSIsInArea(ctx, ring, now.Add(-lookback), now)
	if err != nil {
		return nil, err
	}
	log.Printf("barentswatch: %d vessels in area over last %s", len(mmsis), lookback)
	return c.VesselDetails(ctx, mmsis)
}
