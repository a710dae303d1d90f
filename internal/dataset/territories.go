package dataset

import (
	"fmt"
	"io"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"github.com/sirupsen/logrus"

	"dvfmap/internal/models"
)

var (
	codeProperties = []string{"code", "id", "insee", "code_insee"}
	nameProperties = []string{"nom", "name", "libelle"}
)

// LoadTerritories reads territory boundaries from GeoJSON. The code comes
// from the first of code/id/insee that is set, the name from nom/name and
// defaults to the code. Features that are not polygons are skipped.
func (l *Loader) LoadTerritories(r io.Reader, scale models.Scale) ([]models.Territory, Report, error) {
	var report Report

	features, err := readFeatures(r)
	if err != nil {
		return nil, report, err
	}

	territories := make([]models.Territory, 0, len(features))
	for i, f := range features {
		report.Read++

		code := propString(f.Properties, codeProperties...)
		if code == "" {
			report.Skipped++
			l.logger.WithField("feature", i).Warn("Skipping territory without code")
			continue
		}

		geom, err := polygonal(f.Geometry)
		if err != nil {
			report.Skipped++
			l.logger.WithError(err).WithFields(logrus.Fields{
				"feature": i,
				"code":    code,
			}).Warn("Skipping territory")
			continue
		}

		name := propString(f.Properties, nameProperties...)
		if name == "" {
			name = code
		}

		territories = append(territories, models.Territory{
			Code:     code,
			Name:     name,
			Scale:    scale,
			Geometry: l.simplify(geom),
		})
		report.Kept++
	}

	l.summary(scale.String()+" boundaries", report)
	return territories, report, nil
}

// LoadTerritoriesShapefile reads territory boundaries from an ESRI
// shapefile in WGS84. Outer rings are clockwise and holes counter-clockwise,
// as the format requires.
func (l *Loader) LoadTerritoriesShapefile(path string, scale models.Scale, codeField, nameField string) ([]models.Territory, Report, error) {
	var report Report

	reader, err := shp.Open(path)
	if err != nil {
		return nil, report, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer reader.Close()

	codeIdx, nameIdx := -1, -1
	for i, f := range reader.Fields() {
		switch {
		case strings.EqualFold(f.String(), codeField):
			codeIdx = i
		case nameField != "" && strings.EqualFold(f.String(), nameField):
			nameIdx = i
		}
	}
	if codeIdx < 0 {
		return nil, report, fmt.Errorf("%w: %s", ErrMissingColumn, codeField)
	}

	territories := make([]models.Territory, 0)
	for reader.Next() {
		row, shape := reader.Shape()
		report.Read++

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			report.Skipped++
			l.logger.WithField("row", row).Warn("Skipping non-polygon shape")
			continue
		}

		code := attribute(reader, row, codeIdx)
		if code == "" {
			report.Skipped++
			l.logger.WithField("row", row).Warn("Skipping territory without code")
			continue
		}

		geom, err := polygonal(shapeGeometry(poly))
		if err != nil {
			report.Skipped++
			l.logger.WithError(err).WithField("row", row).Warn("Skipping territory")
			continue
		}

		name := code
		if nameIdx >= 0 {
			if n := attribute(reader, row, nameIdx); n != "" {
				name = n
			}
		}

		territories = append(territories, models.Territory{
			Code:     code,
			Name:     name,
			Scale:    scale,
			Geometry: l.simplify(geom),
		})
		report.Kept++
	}
	if err := reader.Err(); err != nil {
		return nil, report, fmt.Errorf("failed to read shapefile: %w", err)
	}

	l.summary(scale.String()+" boundaries", report)
	return territories, report, nil
}

// attribute reads a DBF value. Unwritten fields are NUL padded.
func attribute(reader *shp.Reader, row, field int) string {
	return strings.Trim(reader.ReadAttribute(row, field), " \x00")
}

// shapeGeometry splits the flat point list into rings and groups each
// counter-clockwise ring as a hole of the preceding outer ring.
func shapeGeometry(poly *shp.Polygon) orb.Geometry {
	var polygons orb.MultiPolygon
	for part := 0; part < len(poly.Parts); part++ {
		start := int(poly.Parts[part])
		end := len(poly.Points)
		if part+1 < len(poly.Parts) {
			end = int(poly.Parts[part+1])
		}
		if start < 0 || start >= end || end > len(poly.Points) {
			continue
		}

		ring := make(orb.Ring, 0, end-start)
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}

		if ring.Orientation() == orb.CCW && len(polygons) > 0 {
			last := len(polygons) - 1
			polygons[last] = append(polygons[last], ring)
			continue
		}
		polygons = append(polygons, orb.Polygon{ring})
	}

	if len(polygons) == 1 {
		return polygons[0]
	}
	return polygons
}

// polygonal keeps polygons and multipolygons with at least one usable ring.
func polygonal(g orb.Geometry) (orb.Geometry, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		if !intact(geom) {
			return nil, fmt.Errorf("%w: degenerate polygon", ErrUnsupportedGeometry)
		}
		return geom, nil
	case orb.MultiPolygon:
		kept := make(orb.MultiPolygon, 0, len(geom))
		for _, p := range geom {
			if intact(p) {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			return nil, fmt.Errorf("%w: empty multipolygon", ErrUnsupportedGeometry)
		}
		return kept, nil
	case nil:
		return nil, fmt.Errorf("%w: no geometry", ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// simplify reduces vertex count, keeping the original geometry if any
// polygon would collapse.
func (l *Loader) simplify(g orb.Geometry) orb.Geometry {
	if l.options.SimplifyTolerance <= 0 {
		return g
	}

	simplified := simplify.DouglasPeucker(l.options.SimplifyTolerance).Simplify(orb.Clone(g))
	switch s := simplified.(type) {
	case orb.Polygon:
		if intact(s) {
			return s
		}
	case orb.MultiPolygon:
		original, ok := g.(orb.MultiPolygon)
		if !ok || len(s) != len(original) {
			return g
		}
		for _, p := range s {
			if !intact(p) {
				return g
			}
		}
		return s
	}
	return g
}

func intact(p orb.Polygon) bool {
	return len(p) > 0 && len(p[0]) >= 4
}
