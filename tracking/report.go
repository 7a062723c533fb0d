package tracking

import (
	"time"
)

// Report is a single position fix for a vessel, as delivered by the AIS
// feed. Reports are immutable once handed to the tracker.
type Report struct {
	MMSI     int
	Name     string
	Lon      float64
	Lat      float64
	SpeedKts float64
	// Heading is nil when the feed reported neither true heading nor
	// course over ground.
	Heading    *float64
	ObservedAt time.Time

	ShipType string
	Category string
}

// dedupeLatest collapses duplicate reports for the same MMSI, keeping the
// one with the latest ObservedAt. Order of first appearance is irrelevant;
// the tracker sorts its own output.
func dedupeLatest(reports []Report) map[int]Report {
	latest := make(map[int]Report, len(reports))
	for _, r := range reports {
		if prev, ok := latest[r.MMSI]; ok && !r.ObservedAt.After(prev.ObservedAt) {
			continue
		}
		latest[r.MMSI] = r
	}
	return latest
}
