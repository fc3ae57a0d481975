package explorer

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Helpers for turning a user-drawn point list into the area of
// interest a tile request needs, plus the area figures the boundary
// layer displays.

// AOIPolygon closes a drawn point sequence into a polygon. At least
// three distinct points are required; the ring is closed automatically
// if the caller did not repeat the first point.
func AOIPolygon(points []orb.Point) (orb.Polygon, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("area of interest needs at least 3 points, got %d", len(points))
	}

	ring := make(orb.Ring, 0, len(points)+1)
	ring = append(ring, points...)
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}, nil
}

// AOIBound returns the bounding box of the area of interest, which is
// what the imagery service takes as the tile extent.
func AOIBound(poly orb.Polygon) orb.Bound {
	return poly.Bound()
}

// AreaSquareMeters returns the geodesic area of the polygon in m²,
// independent of ring winding.
func AreaSquareMeters(poly orb.Polygon) float64 {
	return math.Abs(geo.Area(poly))
}

// AreaHectares returns the geodesic area of the polygon in hectares.
func AreaHectares(poly orb.Polygon) float64 {
	return AreaSquareMeters(poly) / 10000.0
}
