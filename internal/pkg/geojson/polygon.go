package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrNotPolygon    = errors.New("geometry type must be 'Polygon'")
	ErrRingMissing   = errors.New("polygon must have at least one coordinate ring")
	ErrRingTooShort  = errors.New("polygon exterior ring must have at least 4 coordinate pairs")
	ErrRingNotClosed = errors.New("polygon exterior ring must be closed (first and last coordinate must be identical)")
	ErrBadCoordinate = errors.New("each coordinate must be a [longitude, latitude] pair")
)

// Polygon is a validated single-ring polygon. Ring holds the exterior ring
// as ordered (longitude, latitude) pairs, first pair equal to the last.
type Polygon struct {
	Ring [][2]float64
}

// BoundingBox is the axis-aligned extent of a polygon
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// rawGeometry mirrors the GeoJSON wire shape before validation
type rawGeometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// ParsePolygon normalizes and validates a serialized GeoJSON geometry into a
// single-ring Polygon. Only ring index 0 is consumed; any further rings
// (holes) are silently ignored.
func ParsePolygon(data []byte) (*Polygon, error) {
	var raw rawGeometry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw rawGeometry) (*Polygon, error) {
	if raw.Type != "Polygon" {
		return nil, ErrNotPolygon
	}
	if len(raw.Coordinates) == 0 {
		return nil, ErrRingMissing
	}

	outer := raw.Coordinates[0]
	if len(outer) < 4 {
		return nil, ErrRingTooShort
	}

	ring := make([][2]float64, len(outer))
	for i, pair := range outer {
		// Positions may legally carry an altitude element; anything past
		// longitude and latitude is dropped.
		if len(pair) < 2 {
			return nil, ErrBadCoordinate
		}
		ring[i] = [2]float64{pair[0], pair[1]}
	}

	// Exact-match closure check, not a distance tolerance.
	first, last := ring[0], ring[len(ring)-1]
	if first[0] != last[0] || first[1] != last[1] {
		return nil, ErrRingNotClosed
	}

	return &Polygon{Ring: ring}, nil
}

// BoundingBox returns the axis-aligned extent of the exterior ring
func (p *Polygon) BoundingBox() BoundingBox {
	bbox := BoundingBox{
		MinLon: p.Ring[0][0],
		MinLat: p.Ring[0][1],
		MaxLon: p.Ring[0][0],
		MaxLat: p.Ring[0][1],
	}
	for _, pt := range p.Ring[1:] {
		if pt[0] < bbox.MinLon {
			bbox.MinLon = pt[0]
		}
		if pt[0] > bbox.MaxLon {
			bbox.MaxLon = pt[0]
		}
		if pt[1] < bbox.MinLat {
			bbox.MinLat = pt[1]
		}
		if pt[1] > bbox.MaxLat {
			bbox.MaxLat = pt[1]
		}
	}
	return bbox
}

// MarshalGeoJSON serializes the polygon back to its normalized single-ring
// GeoJSON form
func (p *Polygon) MarshalGeoJSON() ([]byte, error) {
	coords := make([][]float64, len(p.Ring))
	for i, pt := range p.Ring {
		coords[i] = []float64{pt[0], pt[1]}
	}
	return json.Marshal(rawGeometry{
		Type:        "Polygon",
		Coordinates: [][][]float64{coords},
	})
}
