package awic

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	productsFileName   = "awic.csv"
	geometriesFileName = "geometries.csv"
	metadataFileName   = "AWIC_MTD.xml"

	// Public catalogue entry describing the AWIC product line.
	metadataCatalogueURL = "https://sdi.eea.europa.eu/catalogue/srv/eng/catalog.search#/metadata/5752e8b5-ecda-4013-8eb9-e27f8515b87e"

	exportTimeLayout = "2006-01-02T15:04:05"
)

var productsHeader = []string{
	"id", "geometries_id", "datetime",
	"water_perc", "ice_perc", "other_perc", "cloud_perc", "shdw_perc", "nd_perc",
	"qa", "s1_perc", "s2_perc", "source",
}

var geometriesHeader = []string{
	"id", "geometry", "basin_name", "eu_hydro_id", "object_nam", "area", "river_km",
}

// WriteProducts writes the semicolon-delimited observations table into dir.
// An empty product set still produces a header-only file.
func WriteProducts(dir string, products []Product) (string, error) {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			p.GeometryID,
			p.Datetime.Format(exportTimeLayout),
			p.WaterPerc.String(),
			p.IcePerc.String(),
			p.OtherPerc.String(),
			p.CloudPerc.String(),
			p.ShadowPerc.String(),
			p.NoDataPerc.String(),
			p.QA,
			p.S1Perc.String(),
			p.S2Perc.String(),
			p.Mission,
		})
	}
	return writeTable(filepath.Join(dir, productsFileName), productsHeader, rows)
}

// WriteGeometries writes the semicolon-delimited geometries table into dir.
func WriteGeometries(dir string, geometries []Geometry) (string, error) {
	rows := make([][]string, 0, len(geometries))
	for _, g := range geometries {
		rows = append(rows, []string{g.ID, g.WKT, g.BasinName, g.EUHydroID, g.ObjectName, g.Area, g.RiverKM})
	}
	return writeTable(filepath.Join(dir, geometriesFileName), geometriesHeader, rows)
}

func writeTable(path string, header []string, rows [][]string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

type metadataLink struct {
	XMLName xml.Name `xml:"MT_Metadata"`
	URL     string   `xml:"url,attr"`
}

// WriteMetadata writes the fixed metadata-link descriptor pointing at the
// public catalogue entry. The content is always identical.
func WriteMetadata(dir string) (string, error) {
	path := filepath.Join(dir, metadataFileName)
	b, err := xml.Marshal(metadataLink{URL: metadataCatalogueURL})
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(xml.Header), b...), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
