package geom

import (
	"fmt"
)

// Vertex is a single polygon vertex in WGS84 degrees.
type Vertex struct {
	Lon float64
	Lat float64
}

// Ring is an ordered sequence of vertices forming a polygon. The ring is
// implicitly closed: the last vertex connects back to the first.
type Ring []Vertex

// NormalizeRing prepares a configured polygon for containment testing.
// Open line strings are accepted; a duplicated closing vertex is dropped so
// the ring is stored open and treated as implicitly closed. Rings with fewer
// than 3 distinct vertices are a configuration error.
func NormalizeRing(vertices []Vertex) (Ring, error) {
	ring := Ring(vertices)
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(ring))
	}
	return ring, nil
}

// Contains reports whether the point is inside the ring, using the even-odd
// ray casting rule. It is correct for convex and concave simple polygons;
// self-intersecting rings yield a deterministic even-odd result.
//
// Boundary policy: the test is half-open. A point exactly on an edge facing
// the lower coordinate side (e.g. the west or south edge of a rectangle) is
// inside; a point on the opposite edge is outside.
func (r Ring) Contains(lon, lat float64) bool {
	inside := false
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		xi, yi := r[i].Lon, r[i].Lat
		xj, yj := r[j].Lon, r[j].Lat
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// BoundingBox returns the min and max corners of the ring's envelope.
func (r Ring) BoundingBox() (min, max Vertex) {
	min = r[0]
	max = r[0]
	for _, v := range r[1:] {
		if v.Lon < min.Lon {
			min.Lon = v.Lon
		}
		if v.Lat < min.Lat {
			min.Lat = v.Lat
		}
		if v.Lon > max.Lon {
			max.Lon = v.Lon
		}
		if v.Lat > max.Lat {
			max.Lat = v.Lat
		}
	}
	return min, max
}
