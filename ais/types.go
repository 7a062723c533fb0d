package ais

import (
	"time"

	"github.com/ekstremedia/pi-overlay-data/tracking"
)

// headingNotAvailable is the AIS sentinel for a missing true heading.
const headingNotAvailable = 511

// Vessel is one entry from the Barentswatch latest/combined endpoint.
// Position and kinematics fields are pointers because the feed reports null
// for vessels without a recent fix.
type Vessel struct {
	MMSI             int      `json:"mmsi"`
	Name             string   `json:"name"`
	MsgTime          string   `json:"msgtime"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	SpeedOverGround  *float64 `json:"speedOverGround"`
	CourseOverGround *float64 `json:"courseOverGround"`
	TrueHeading      *float64 `json:"trueHeading"`
	ShipType         int      `json:"shipType"`

	// Enriched locally from the ship type code.
	ShipTypeString string `json:"shipTypeString,omitempty"`
	ShipCategory   string `json:"shipCategory,omitempty"`
}

// heading picks true heading when valid, falling back to course over
// ground. Returns nil when neither is usable.
func (v Vessel) heading() *float64 {
	if v.TrueHeading != nil && *v.TrueHeading != headingNotAvailable {
		return v.TrueHeading
	}
	return v.CourseOverGround
}

// Reports converts vessels to tracker input. Vessels without a position are
// silently skipped: feed gaps are expected and must not halt the pipeline.
func Reports(vessels []Vessel) []tracking.Report {
	reports := make([]tracking.Report, 0, len(vessels))
	for _, v := range vessels {
		if v.Latitude == nil || v.Longitude == nil {
			continue
		}
		observed, err := time.Parse(time.RFC3339, v.MsgTime)
		if err != nil {
			continue
		}
		speed := 0.0
		if v.SpeedOverGround != nil {
			speed = *v.SpeedOverGround
		}
		name := v.Name
		if name == "" {
			name = "Unknown"
		}
		reports = append(reports, tracking.Report{
			MMSI:       v.MMSI,
			Name:       name,
			Lon:        *v.Longitude,
			Lat:        *v.Latitude,
			SpeedKts:   speed,
			Heading:    v.heading(),
			ObservedAt: observed.UTC(),
			ShipType:   v.ShipTypeString,
			Category:   v.ShipCategory,
		})
	}
	return reports
}
