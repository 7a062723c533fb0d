package geom

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
)

const (
	indexDimensions  = 2
	indexMinChildren = 2
	indexMaxChildren = 8
	// padding keeps degenerate bounding boxes valid for the R-tree and
	// absorbs float error at zone edges; exact containment is always
	// confirmed with Ring.Contains afterwards.
	indexPadding = 1e-9
)

// Zone is a named polygonal geofence.
type Zone struct {
	ID   string
	Name string
	Ring Ring
}

type zoneEntry struct {
	zone *Zone
	rect *rtreego.Rect
}

func (e *zoneEntry) Bounds() *rtreego.Rect { return e.rect }

// ZoneIndex answers "which zones could contain this point" via an R-tree
// over zone bounding boxes. Candidates still need an exact Contains check.
type ZoneIndex struct {
	tree  *rtreego.Rtree
	zones []Zone
}

// NewZoneIndex builds the index. Zone rings must already be normalized.
func NewZoneIndex(zones []Zone) (*ZoneIndex, error) {
	idx := &ZoneIndex{
		tree:  rtreego.NewTree(indexDimensions, indexMinChildren, indexMaxChildren),
		zones: zones,
	}
	for i := range idx.zones {
		z := &idx.zones[i]
		min, max := z.Ring.BoundingBox()
		rect, err := rtreego.NewRect(
			rtreego.Point{min.Lon - indexPadding, min.Lat - indexPadding},
			[]float64{max.Lon - min.Lon + 2*indexPadding, max.Lat - min.Lat + 2*indexPadding},
		)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		idx.tree.Insert(&zoneEntry{zone: z, rect: rect})
	}
	return idx, nil
}

// Candidates returns the zones whose bounding box contains the point.
func (idx *ZoneIndex) Candidates(lon, lat float64) []*Zone {
	point := rtreego.Point{lon, lat}
	results := idx.tree.SearchIntersect(point.ToRect(indexPadding))
	zones := make([]*Zone, 0, len(results))
	for _, r := range results {
		zones = append(zones, r.(*zoneEntry).zone)
	}
	return zones
}

// Containing returns the zones that actually contain the point.
func (idx *ZoneIndex) Containing(lon, lat float64) []*Zone {
	var zones []*Zone
	for _, z := range idx.Candidates(lon, lat) {
		if z.Ring.Contains(lon, lat) {
			zones = append(zones, z)
		}
	}
	return zones
}

// Zones returns all indexed zones in configuration order.
func (idx *ZoneIndex) Zones() []Zone { return idx.zones }
