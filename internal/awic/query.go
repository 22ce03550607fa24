// Package awic queries the CLMS HR-WSI catalogue for AWIC water/ice
// observation statistics and the river-segment geometries they refer to.
package awic

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public HR-WSI catalogue root.
const DefaultBaseURL = "https://wsi.land.copernicus.eu/awic/"

const (
	awicProc     = "get_awic"
	geometryProc = "get_geometries"

	paramGeometryWGS84  = "geometrywkt_wgs84"
	paramGeometryLAEA   = "geometrywkt_laea"
	paramStartDate      = "startdate"
	paramCompletionDate = "completiondate"
	paramCloudMax       = "cloudcoveragemax"
	paramOutputSRID     = "output_srid"
)

// Query describes one catalogue request: a spatial filter in exactly one of
// the two supported coordinate systems plus optional date and cloud bounds.
// Date bounds are inclusive calendar dates in YYYY-MM-DD form.
type Query struct {
	GeometryWKTWGS84 string // WKT in EPSG:4326
	GeometryWKTLAEA  string // WKT in EPSG:3035
	StartDate        string
	CompletionDate   string
	CloudCoverageMax int // 0..100; negative means unconstrained
}

// Validate checks the spatial filter, date formats and cloud ceiling.
func (q Query) Validate() error {
	hasWGS84 := strings.TrimSpace(q.GeometryWKTWGS84) != ""
	hasLAEA := strings.TrimSpace(q.GeometryWKTLAEA) != ""
	if hasWGS84 && hasLAEA {
		return fmt.Errorf("geometry must be either WGS84 or LAEA (EPSG:3035), not both")
	}
	if !hasWGS84 && !hasLAEA {
		return fmt.Errorf("a geometry is required (either WGS84 or LAEA WKT)")
	}
	if q.StartDate != "" {
		if err := validateDate(q.StartDate); err != nil {
			return fmt.Errorf("startdate: %w", err)
		}
	}
	if q.CompletionDate != "" {
		if err := validateDate(q.CompletionDate); err != nil {
			return fmt.Errorf("completiondate: %w", err)
		}
	}
	if q.CloudCoverageMax > 100 {
		return fmt.Errorf("cloudcoveragemax must be between 0 and 100, got %d", q.CloudCoverageMax)
	}
	return nil
}

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("incorrect date format %q, should be YYYY-MM-DD", s)
	}
	return nil
}

// geometryParam picks the populated spatial-filter variant and returns its
// parameter key, percent-encoded value and matching output SRID.
func (q Query) geometryParam() (key, value, srid string) {
	if strings.TrimSpace(q.GeometryWKTWGS84) != "" {
		return paramGeometryWGS84, url.QueryEscape(q.GeometryWKTWGS84), "wgs84"
	}
	return paramGeometryLAEA, url.QueryEscape(q.GeometryWKTLAEA), "laea"
}

// ProductQuery builds the get_awic query string. Parameters keep a fixed
// order so the encoded form matches the catalogue's documented examples.
func (q Query) ProductQuery() (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	key, val, _ := q.geometryParam()
	var b strings.Builder
	fmt.Fprintf(&b, "%s?%s=%s", awicProc, key, val)
	if q.CloudCoverageMax >= 0 {
		fmt.Fprintf(&b, "&%s=%d", paramCloudMax, q.CloudCoverageMax)
	}
	if q.StartDate != "" {
		fmt.Fprintf(&b, "&%s=%s", paramStartDate, q.StartDate)
	}
	if q.CompletionDate != "" {
		fmt.Fprintf(&b, "&%s=%s", paramCompletionDate, q.CompletionDate)
	}
	return b.String(), nil
}

// GeometryQuery builds the get_geometries query string. It shares the
// product query's spatial-filter encoding and requests output in the same
// coordinate system the filter was supplied in.
func (q Query) GeometryQuery() (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	key, val, srid := q.geometryParam()
	return fmt.Sprintf("%s?%s=%s&%s=%s", geometryProc, key, val, paramOutputSRID, srid), nil
}
