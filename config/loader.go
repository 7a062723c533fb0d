package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ekstremedia/pi-overlay-data/geom"
)

const (
	DefaultAuroraURL = "https://ekstremedia.no/api/pi/aurora"
	DefaultTidesURL  = "https://ekstremedia.no/api/pi/tide"
)

// Load reads, defaults and validates the configuration file. Invalid zone
// geometry is a startup-fatal configuration error; the tracker never sees a
// malformed zone.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}

	// Normalize zones early so malformed geometry fails at startup.
	if _, err := cfg.GeomZones(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if id := os.Getenv("BARENTSWATCH_CLIENT_ID"); id != "" {
		cfg.Ships.ClientID = id
	}
	if secret := os.Getenv("BARENTSWATCH_CLIENT_SECRET"); secret != "" {
		cfg.Ships.ClientSecret = secret
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8094
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.Ships.LookbackHours == 0 {
		cfg.Ships.LookbackHours = 3
	}
	if cfg.Ships.PersistMinutes == 0 {
		cfg.Ships.PersistMinutes = 10
	}
	if cfg.Ships.MinSpeedKts == nil {
		minSpeed := 0.5
		cfg.Ships.MinSpeedKts = &minSpeed
	}
	if cfg.Ships.ExcludeCategories == nil {
		cfg.Ships.ExcludeCategories = []string{"Unknown"}
	}
	if cfg.Aurora.APIURL == "" {
		cfg.Aurora.APIURL = DefaultAuroraURL
	}
	if cfg.Aurora.CacheMinutes == 0 {
		cfg.Aurora.CacheMinutes = 5
	}
	if cfg.Tides.APIURL == "" {
		cfg.Tides.APIURL = DefaultTidesURL
	}
	if cfg.Tides.CacheHours == 0 {
		cfg.Tides.CacheHours = 24
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "overlay.db"
	}
}

// GeomZones converts the configured zones into normalized geometry zones.
func (c AppConfig) GeomZones() ([]geom.Zone, error) {
	zones := make([]geom.Zone, 0, len(c.Zones))
	for _, zc := range c.Zones {
		vertices := make([]geom.Vertex, 0, len(zc.Polygon))
		for _, pair := range zc.Polygon {
			if len(pair) != 2 {
				return nil, fmt.Errorf("zone %s: vertex must be [lon, lat]", zc.ID)
			}
			vertices = append(vertices, geom.Vertex{Lon: pair[0], Lat: pair[1]})
		}
		ring, err := geom.NormalizeRing(vertices)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", zc.ID, err)
		}
		name := zc.Name
		if name == "" {
			name = zc.ID
		}
		zones = append(zones, geom.Zone{ID: zc.ID, Name: name, Ring: ring})
	}
	return zones, nil
}

// Zone returns the configured zone with the given ID.
func (c AppConfig) Zone(id string) (ZoneConfig, bool) {
	for _, z := range c.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return ZoneConfig{}, false
}
