// Package vector resolves user-supplied spatial filters (GeoJSON vector
// files or bare WKT text) into the WKT + EPSG pair the catalogue accepts.
package vector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

const (
	EPSGWGS84 = 4326
	EPSGLAEA  = 3035
)

// Filter is a spatial filter resolved from a vector file: WKT text plus the
// EPSG code of its coordinate system.
type Filter struct {
	WKT  string
	EPSG int
}

// legacy GeoJSON crs member; absent means EPSG:4326
type crsEnvelope struct {
	CRS *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// FromFile loads a GeoJSON vector file (FeatureCollection, Feature or bare
// geometry), resolves its coordinate system to EPSG:4326 or EPSG:3035 and
// returns the combined geometry as WKT. Multiple polygonal features are
// merged into a single MultiPolygon.
func FromFile(path string) (Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Filter{}, fmt.Errorf("read geometry file: %w", err)
	}

	epsg := EPSGWGS84
	var env crsEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.CRS != nil {
		epsg, err = parseEPSG(env.CRS.Properties.Name)
		if err != nil {
			return Filter{}, err
		}
	}

	geoms, err := collectGeometries(data)
	if err != nil {
		return Filter{}, err
	}
	geom, err := combine(geoms)
	if err != nil {
		return Filter{}, err
	}
	return Filter{WKT: wkt.MarshalString(geom), EPSG: epsg}, nil
}

// ValidateWKT parses user-supplied WKT text and enforces the same geometry
// whitelist the catalogue supports.
func ValidateWKT(s string) error {
	g, err := wkt.Unmarshal(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("parse wkt: %w", err)
	}
	_, err = checkType(g)
	return err
}

func parseEPSG(name string) (int, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case n == "", strings.HasSuffix(n, "CRS84"), strings.HasSuffix(n, "4326"):
		return EPSGWGS84, nil
	case strings.HasSuffix(n, "3035"):
		return EPSGLAEA, nil
	}
	return 0, fmt.Errorf("unsupported coordinate system %q: EPSG must be 4326 or 3035", name)
}

func collectGeometries(data []byte) ([]orb.Geometry, error) {
	var kind struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	switch kind.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse feature collection: %w", err)
		}
		geoms := make([]orb.Geometry, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f.Geometry != nil {
				geoms = append(geoms, f.Geometry)
			}
		}
		return geoms, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parse feature: %w", err)
		}
		return []orb.Geometry{f.Geometry}, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("parse geometry: %w", err)
		}
		return []orb.Geometry{g.Geometry()}, nil
	}
}

func combine(geoms []orb.Geometry) (orb.Geometry, error) {
	if len(geoms) == 0 {
		return nil, errors.New("geometry file contains no features")
	}
	if len(geoms) == 1 {
		return checkType(geoms[0])
	}
	var mp orb.MultiPolygon
	for _, g := range geoms {
		switch t := g.(type) {
		case orb.Polygon:
			mp = append(mp, t)
		case orb.MultiPolygon:
			mp = append(mp, t...)
		default:
			return nil, fmt.Errorf("geometry type %s not supported when combining features, want Polygon or MultiPolygon", g.GeoJSONType())
		}
	}
	return mp, nil
}

func checkType(g orb.Geometry) (orb.Geometry, error) {
	switch g.(type) {
	case orb.Point, orb.Polygon, orb.MultiPolygon:
		return g, nil
	}
	return nil, fmt.Errorf("geometry type %s not supported, want Point, Polygon or MultiPolygon", g.GeoJSONType())
}
