package awic

import (
	"encoding/json"
	"fmt"
	"time"
)

const datetimeLayout = "20060102T150405"

// Mission labels as published by the catalogue; any other code means an
// unknown source and maps to the empty string.
var missionLabels = map[int64]string{
	0: "Sentinel-1 Sentinel-2",
	1: "Sentinel-1",
	2: "Sentinel-2",
}

// Product is one normalized AWIC observation row. Percentage fields keep the
// catalogue's numeric text verbatim. A Product is never mutated after
// construction.
type Product struct {
	ID         int // 1-based position in the response
	GeometryID string
	Datetime   time.Time
	WaterPerc  json.Number
	IcePerc    json.Number
	OtherPerc  json.Number
	CloudPerc  json.Number
	ShadowPerc json.Number
	NoDataPerc json.Number
	QA         string
	S1Perc     json.Number
	S2Perc     json.Number
	Mission    string
}

// Geometry is one river-segment feature, passed through from the catalogue
// without content validation.
type Geometry struct {
	ID         string
	WKT        string
	BasinName  string
	EUHydroID  string
	ObjectName string
	Area       string
	RiverKM    string
}

// normalizeProduct maps one raw field array into a Product. The second and
// third fields hold the observation date (YYYYMMDD) and time of day (HHMMSS,
// zero-padded to six digits); a malformed pair is an error that names the
// offending values so the whole pass can abort.
func normalizeProduct(raw []any, index int) (Product, error) {
	if len(raw) < 12 {
		return Product{}, fmt.Errorf("awic row %d has %d fields, want at least 12", index, len(raw))
	}
	date := fieldString(raw[1])
	tod := fieldString(raw[2])
	for len(tod) < 6 {
		tod = "0" + tod
	}
	ts, err := time.Parse(datetimeLayout, date+"T"+tod)
	if err != nil {
		return Product{}, fmt.Errorf("invalid date/time in awic row %d: date=%q time=%q", index, fieldString(raw[1]), fieldString(raw[2]))
	}

	p := Product{
		ID:         index + 1,
		GeometryID: fieldString(raw[0]),
		Datetime:   ts,
		WaterPerc:  fieldNumber(raw[3]),
		IcePerc:    fieldNumber(raw[4]),
		OtherPerc:  fieldNumber(raw[5]),
		CloudPerc:  fieldNumber(raw[6]),
		ShadowPerc: fieldNumber(raw[7]),
		NoDataPerc: fieldNumber(raw[8]),
		QA:         fieldString(raw[9]),
		S1Perc:     fieldNumber(raw[10]),
		S2Perc:     fieldNumber(raw[11]),
	}
	if len(raw) > 12 {
		if code, ok := raw[12].(json.Number); ok {
			if n, err := code.Int64(); err == nil {
				p.Mission = missionLabels[n]
			}
		}
	}
	return p, nil
}

// normalizeGeometry reorders one raw field array into the fixed Geometry
// schema.
func normalizeGeometry(raw []any, index int) (Geometry, error) {
	if len(raw) < 7 {
		return Geometry{}, fmt.Errorf("geometry row %d has %d fields, want 7", index, len(raw))
	}
	return Geometry{
		ID:         fieldString(raw[0]),
		WKT:        fieldString(raw[1]),
		BasinName:  fieldString(raw[2]),
		EUHydroID:  fieldString(raw[3]),
		ObjectName: fieldString(raw[4]),
		Area:       fieldString(raw[5]),
		RiverKM:    fieldString(raw[6]),
	}, nil
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func fieldNumber(v any) json.Number {
	switch t := v.(type) {
	case json.Number:
		return t
	case string:
		return json.Number(t)
	case nil:
		return ""
	default:
		return json.Number(fmt.Sprint(t))
	}
}
