package config

import (
	"time"
)

// ServerConfig contains the web dashboard server configuration.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// CameraConfig is the position of the timelapse camera; when set, ship
// records carry their distance from it.
type CameraConfig struct {
	Lat float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `yaml:"lon" validate:"gte=-180,lte=180"`
}

// ShipsConfig configures the Barentswatch AIS provider.
type ShipsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	LookbackHours  int    `yaml:"lookback_hours" validate:"gte=0"`
	PersistMinutes int    `yaml:"persist_minutes" validate:"gte=0"`
	// MinSpeedKts is a pointer so an explicit 0 (show drifting and
	// stationary vessels) is distinguishable from an absent key.
	MinSpeedKts       *float64 `yaml:"min_speed_kts" validate:"omitempty,gte=0"`
	ExcludeCategories []string `yaml:"exclude_categories"`
}

// Lookback is how far back the feed is searched; it must be at least the
// fetch interval or infrequently-updated vessels will flicker.
func (c ShipsConfig) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

// Persist is how long a vessel stays displayed after leaving a zone.
func (c ShipsConfig) Persist() time.Duration {
	return time.Duration(c.PersistMinutes) * time.Minute
}

// MinSpeed is the minimum display speed in knots; vessels below it are
// tracked but not shown.
func (c ShipsConfig) MinSpeed() float64 {
	if c.MinSpeedKts == nil {
		return 0
	}
	return *c.MinSpeedKts
}

// AuroraConfig configures the aurora forecast provider.
type AuroraConfig struct {
	Enabled      bool   `yaml:"enabled"`
	APIURL       string `yaml:"api_url" validate:"omitempty,url"`
	CacheMinutes int    `yaml:"cache_minutes" validate:"gte=0"`
}

// TidesConfig configures the tide level provider.
type TidesConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIURL     string `yaml:"api_url" validate:"omitempty,url"`
	CacheHours int    `yaml:"cache_hours" validate:"gte=0"`
}

// HistoryConfig configures the sqlite sighting history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ZoneConfig is one monitored polygon zone. Polygon vertices are
// [longitude, latitude] pairs; an open line string is auto-closed.
type ZoneConfig struct {
	ID      string      `yaml:"id" validate:"required"`
	Name    string      `yaml:"name"`
	Polygon [][]float64 `yaml:"polygon" validate:"required,dive,len=2"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	DataDir string        `yaml:"data_dir"`
	Camera  *CameraConfig `yaml:"camera"`
	Ships   ShipsConfig   `yaml:"ships"`
	Aurora  AuroraConfig  `yaml:"aurora"`
	Tides   TidesConfig   `yaml:"tides"`
	History HistoryConfig `yaml:"history"`
	Zones   []ZoneConfig  `yaml:"zones"`
}
