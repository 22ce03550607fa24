package vector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geometry.geojson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestFromFile_PointDefaultsToWGS84(t *testing.T) {
	path := writeTemp(t, `{"type":"Point","coordinates":[22.45794,49.367854]}`)
	f, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if f.EPSG != EPSGWGS84 {
		t.Fatalf("EPSG got %d want %d", f.EPSG, EPSGWGS84)
	}
	if !strings.HasPrefix(f.WKT, "POINT") {
		t.Fatalf("WKT got %q want a POINT", f.WKT)
	}
}

func TestFromFile_FeatureCollectionLAEA(t *testing.T) {
	path := writeTemp(t, `{
		"type": "FeatureCollection",
		"crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::3035"}},
		"features": [
			{"type": "Feature", "properties": {}, "geometry":
				{"type": "Polygon", "coordinates": [[[5021771,2936812],[5021871,2936812],[5021871,2936912],[5021771,2936812]]]}}
		]
	}`)
	f, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if f.EPSG != EPSGLAEA {
		t.Fatalf("EPSG got %d want %d", f.EPSG, EPSGLAEA)
	}
	if !strings.HasPrefix(f.WKT, "POLYGON") {
		t.Fatalf("WKT got %q want a POLYGON", f.WKT)
	}
}

func TestFromFile_CombinesPolygons(t *testing.T) {
	path := writeTemp(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry":
				{"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}},
			{"type": "Feature", "properties": {}, "geometry":
				{"type": "Polygon", "coordinates": [[[2,2],[3,2],[3,3],[2,2]]]}}
		]
	}`)
	f, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if !strings.HasPrefix(f.WKT, "MULTIPOLYGON") {
		t.Fatalf("WKT got %q want a MULTIPOLYGON", f.WKT)
	}
}

func TestFromFile_BareFeature(t *testing.T) {
	path := writeTemp(t, `{"type": "Feature", "properties": {}, "geometry":
		{"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}`)
	f, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if !strings.HasPrefix(f.WKT, "POLYGON") {
		t.Fatalf("WKT got %q want a POLYGON", f.WKT)
	}
}

func TestFromFile_UnsupportedGeometryType(t *testing.T) {
	path := writeTemp(t, `{"type":"LineString","coordinates":[[0,0],[1,1]]}`)
	if _, err := FromFile(path); err == nil {
		t.Fatal("expected error for a LineString geometry")
	}
}

func TestFromFile_UnsupportedCRS(t *testing.T) {
	path := writeTemp(t, `{
		"type": "FeatureCollection",
		"crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::2154"}},
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0,0]}}
		]
	}`)
	if _, err := FromFile(path); err == nil {
		t.Fatal("expected error for an unsupported CRS")
	}
}

func TestFromFile_MissingFile(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "nope.geojson")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestFromFile_NotGeoJSON(t *testing.T) {
	path := writeTemp(t, `just text`)
	if _, err := FromFile(path); err == nil {
		t.Fatal("expected error for a non-GeoJSON file")
	}
}

func TestFromFile_EmptyCollection(t *testing.T) {
	path := writeTemp(t, `{"type": "FeatureCollection", "features": []}`)
	if _, err := FromFile(path); err == nil {
		t.Fatal("expected error for a collection without features")
	}
}

func TestParseEPSG(t *testing.T) {
	cases := []struct {
		name string
		want int
		ok   bool
	}{
		{"", EPSGWGS84, true},
		{"EPSG:4326", EPSGWGS84, true},
		{"urn:ogc:def:crs:EPSG::4326", EPSGWGS84, true},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", EPSGWGS84, true},
		{"EPSG:3035", EPSGLAEA, true},
		{"urn:ogc:def:crs:EPSG::3035", EPSGLAEA, true},
		{"EPSG:2154", 0, false},
	}
	for _, c := range cases {
		got, err := parseEPSG(c.name)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("parseEPSG(%q) got (%d, %v) want (%d, nil)", c.name, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("parseEPSG(%q) expected error", c.name)
		}
	}
}

func TestValidateWKT(t *testing.T) {
	valid := []string{
		"POINT(22.457940 49.367854)",
		"POLYGON((11 55,12 55,12 56,11 55))",
		"MULTIPOLYGON(((0 0,1 0,1 1,0 0)))",
	}
	for _, w := range valid {
		if err := ValidateWKT(w); err != nil {
			t.Fatalf("ValidateWKT(%q): %v", w, err)
		}
	}
	invalid := []string{
		"LINESTRING(0 0,1 1)",
		"POINT(",
		"not wkt at all",
	}
	for _, w := range invalid {
		if err := ValidateWKT(w); err == nil {
			t.Fatalf("ValidateWKT(%q) expected error", w)
		}
	}
}
