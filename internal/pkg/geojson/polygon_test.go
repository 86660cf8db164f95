package geojson

import (
	"errors"
	"testing"
)

func TestParsePolygon_ValidSquare(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[[[34.7,-0.3],[34.8,-0.3],[34.8,-0.2],[34.7,-0.2],[34.7,-0.3]]]}`)

	poly, err := ParsePolygon(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(poly.Ring) != 5 {
		t.Fatalf("expected 5 coordinate pairs, got %d", len(poly.Ring))
	}
	if poly.Ring[0] != poly.Ring[4] {
		t.Fatal("expected ring to stay closed after parsing")
	}
}

func TestParsePolygon_RejectsUnclosedRing(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[[[34.7,-0.3],[34.8,-0.3],[34.8,-0.2],[34.7,-0.2]]]}`)

	_, err := ParsePolygon(raw)
	if !errors.Is(err, ErrRingNotClosed) {
		t.Fatalf("expected ErrRingNotClosed, got %v", err)
	}
}

func TestParsePolygon_RejectsShortRing(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[[[34.7,-0.3],[34.8,-0.3],[34.7,-0.3]]]}`)

	_, err := ParsePolygon(raw)
	if !errors.Is(err, ErrRingTooShort) {
		t.Fatalf("expected ErrRingTooShort, got %v", err)
	}
}

func TestParsePolygon_RejectsNonPolygon(t *testing.T) {
	raw := []byte(`{"type":"Point","coordinates":[[[34.7,-0.3]]]}`)

	_, err := ParsePolygon(raw)
	if !errors.Is(err, ErrNotPolygon) {
		t.Fatalf("expected ErrNotPolygon, got %v", err)
	}
}

func TestParsePolygon_RejectsMissingRing(t *testing.T) {
	_, err := ParsePolygon([]byte(`{"type":"Polygon","coordinates":[]}`))
	if !errors.Is(err, ErrRingMissing) {
		t.Fatalf("expected ErrRingMissing, got %v", err)
	}
}

func TestParsePolygon_RejectsBadCoordinatePair(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[[[34.7],[34.8,-0.3],[34.8,-0.2],[34.7]]]}`)

	_, err := ParsePolygon(raw)
	if !errors.Is(err, ErrBadCoordinate) {
		t.Fatalf("expected ErrBadCoordinate, got %v", err)
	}
}

func TestParsePolygon_DropsAltitudeElement(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[[[34.7,-0.3,1200],[34.8,-0.3,1210],[34.8,-0.2,1195],[34.7,-0.2,1190],[34.7,-0.3,1200]]]}`)

	poly, err := ParsePolygon(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if poly.Ring[0] != [2]float64{34.7, -0.3} {
		t.Fatalf("expected altitude truncated, got %v", poly.Ring[0])
	}

	out, err := poly.MarshalGeoJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	reparsed, err := ParsePolygon(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	for _, pt := range reparsed.Ring {
		if pt[0] < 34.6 || pt[0] > 34.9 {
			t.Fatalf("normalized form leaked non-coordinate data: %v", pt)
		}
	}
}

func TestParsePolygon_RejectsGarbage(t *testing.T) {
	if _, err := ParsePolygon([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestParsePolygon_IgnoresInnerRings(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[
		[[0,0],[4,0],[4,4],[0,4],[0,0]],
		[[1,1],[2,1],[2,2],[1,2],[1,1]]
	]}`)

	poly, err := ParsePolygon(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(poly.Ring) != 5 {
		t.Fatalf("expected only the exterior ring to survive, got %d pairs", len(poly.Ring))
	}

	out, err := poly.MarshalGeoJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	reparsed, err := ParsePolygon(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(reparsed.Ring) != 5 {
		t.Fatal("normalized form should carry a single ring")
	}
}

func TestBoundingBox(t *testing.T) {
	raw := []byte(`{"type":"Polygon","coordinates":[[[34.75,-0.25],[34.8,-0.3],[34.7,-0.2],[34.75,-0.25]],[]]}`)

	poly, err := ParsePolygon(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bbox := poly.BoundingBox()
	if bbox.MinLon != 34.7 || bbox.MaxLon != 34.8 {
		t.Fatalf("longitude extent wrong: %+v", bbox)
	}
	if bbox.MinLat != -0.3 || bbox.MaxLat != -0.2 {
		t.Fatalf("latitude extent wrong: %+v", bbox)
	}
}
