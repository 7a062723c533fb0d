// Package tracking implements the zone-presence engine: it consumes batches
// of raw AIS position reports and maintains, per configured zone, a stable
// debounced set of currently visible vessels.
package tracking

import (
	"fmt"
	"sort"
	"time"

	"github.com/ekstremedia/pi-overlay-data/geom"
)

// Visible is one vessel in a zone's visible set for a cycle. Kinematics and
// position come from the most recent report seen for the vessel, which may
// be from outside the zone while the persistence window keeps it displayed.
type Visible struct {
	MMSI             int            `json:"mmsi"`
	Name             string         `json:"name"`
	SpeedKts         float64        `json:"speed"`
	Heading          *float64       `json:"heading"`
	Direction        geom.Direction `json:"direction"`
	StillInZone      bool           `json:"still_in_zone"`
	SecondsSinceSeen int            `json:"seconds_since_seen"`
	Lat              float64        `json:"latitude"`
	Lon              float64        `json:"longitude"`
	ShipType         string         `json:"ship_type"`
	Category         string         `json:"category"`
}

// Tracker turns report batches into per-zone visible sets. It is
// single-writer: the caller must not run overlapping Update calls. All
// blocking I/O happens outside; Update itself is pure in-memory work.
type Tracker struct {
	index    *geom.ZoneIndex
	zones    []geom.Zone
	lookback time.Duration
	persist  time.Duration
	store    *sessionStore
}

// NewTracker validates the zones and builds the spatial index. Lookback is
// the maximum report age before a report is ignored; persist is how long a
// vessel stays visible after it was last confirmed inside a zone.
func NewTracker(zones []geom.Zone, lookback, persist time.Duration) (*Tracker, error) {
	for _, z := range zones {
		if len(z.Ring) < 3 {
			return nil, fmt.Errorf("zone %s: ring has %d vertices, need at least 3", z.ID, len(z.Ring))
		}
	}
	index, err := geom.NewZoneIndex(zones)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		index:    index,
		zones:    index.Zones(),
		lookback: lookback,
		persist:  persist,
		store:    newSessionStore(),
	}, nil
}

// Update runs one tracking cycle and returns the visible set per zone ID,
// ordered by MMSI ascending. The returned map always carries a key for every
// configured zone. Calling Update twice with the same batch and the same now
// yields the same result.
func (t *Tracker) Update(now time.Time, reports []Report) map[string][]Visible {
	latest := dedupeLatest(reports)

	// insideNow records which vessels this cycle's surviving report placed
	// geometrically inside each zone. It feeds the still_in_zone flag.
	insideNow := make(map[string]map[int]bool, len(t.zones))
	for _, z := range t.zones {
		insideNow[z.ID] = map[int]bool{}
	}

	for mmsi, r := range latest {
		if now.Sub(r.ObservedAt) > t.lookback {
			// Stale report: this cycle does not see the vessel, but
			// existing session state stays untouched.
			continue
		}
		containing := map[string]bool{}
		for _, z := range t.index.Containing(r.Lon, r.Lat) {
			containing[z.ID] = true
		}
		for _, z := range t.zones {
			if containing[z.ID] {
				insideNow[z.ID][mmsi] = true
				sess := t.store.get(z.ID, mmsi)
				if sess == nil {
					sess = &session{}
					t.store.put(z.ID, mmsi, sess)
				}
				sess.lastReport = r
				sess.lastInsideAt = r.ObservedAt
			} else if sess := t.store.get(z.ID, mmsi); sess != nil {
				// Left the zone: keep showing it through the
				// persistence window with fresh kinematics.
				sess.lastReport = r
			}
		}
	}

	result := make(map[string][]Visible, len(t.zones))
	for _, z := range t.zones {
		visible := []Visible{}
		for mmsi, sess := range t.store.zone(z.ID) {
			if now.Sub(sess.lastInsideAt) > t.persist {
				continue
			}
			visible = append(visible, t.visibleFromSession(now, sess, insideNow[z.ID][mmsi]))
		}
		sort.Slice(visible, func(i, j int) bool { return visible[i].MMSI < visible[j].MMSI })
		result[z.ID] = visible
	}

	t.store.prune(now, t.persist)
	return result
}

func (t *Tracker) visibleFromSession(now time.Time, sess *session, stillInZone bool) Visible {
	r := sess.lastReport
	since := int(now.Sub(sess.lastInsideAt).Seconds())
	if since < 0 {
		since = 0
	}
	return Visible{
		MMSI:             r.MMSI,
		Name:             r.Name,
		SpeedKts:         r.SpeedKts,
		Heading:          r.Heading,
		Direction:        geom.ResolveDirection(r.Heading, r.SpeedKts),
		StillInZone:      stillInZone,
		SecondsSinceSeen: since,
		Lat:              r.Lat,
		Lon:              r.Lon,
		ShipType:         r.ShipType,
		Category:         r.Category,
	}
}

// Zones returns the tracked zones in configuration order.
func (t *Tracker) Zones() []geom.Zone { return t.zones }

// Clear drops all session state.
func (t *Tracker) Clear() { t.store = newSessionStore() }
