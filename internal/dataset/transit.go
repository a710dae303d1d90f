package dataset

import (
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"dvfmap/internal/models"
)

var (
	lineIDProperties = []string{"indice_lig", "ligne", "line", "line_id"}
	colorProperties  = []string{"colourweb_hexa", "couleur", "color", "colour"}
)

// lineMode reads the "mode" property, then falls back on the modal flags.
func lineMode(props geojson.Properties) models.TransitMode {
	if raw := propString(props, "mode"); raw != "" {
		if mode := models.ParseTransitMode(raw); mode != models.ModeOther {
			return mode
		}
	}
	return models.ModeFromFlags(
		propBool(props, "metro"),
		propBool(props, "rer"),
		propBool(props, "tramway"),
		propBool(props, "train"),
	)
}

// LoadTransitLines reads the line catalogue. One feature per line segment
// is common; duplicates are kept since colour lookup takes the first match.
// A missing or malformed colour is left empty and resolved to the fallback
// colour at match time.
func (l *Loader) LoadTransitLines(r io.Reader) ([]models.TransitLine, Report, error) {
	var report Report

	features, err := readFeatures(r)
	if err != nil {
		return nil, report, err
	}

	lines := make([]models.TransitLine, 0, len(features))
	for i, f := range features {
		report.Read++

		lineID := propString(f.Properties, lineIDProperties...)
		if lineID == "" || f.Geometry == nil {
			report.Skipped++
			l.logger.WithField("feature", i).Warn("Skipping transit line without identifier or geometry")
			continue
		}

		line := models.TransitLine{
			Mode:   lineMode(f.Properties),
			LineID: lineID,
		}
		if raw := propString(f.Properties, colorProperties...); raw != "" {
			color, ok := models.NormalizeColor(raw)
			if !ok {
				l.logger.WithFields(logrus.Fields{
					"feature": i,
					"line":    lineID,
					"color":   raw,
				}).Debug("Ignoring malformed line colour")
			}
			line.Color = color
		}

		lines = append(lines, line)
		report.Kept++
	}

	l.summary("transit lines", report)
	return lines, report, nil
}

// LoadTransitStops reads station points. Features without a point or a
// line identifier are dropped.
func (l *Loader) LoadTransitStops(r io.Reader) ([]models.TransitStop, Report, error) {
	var report Report

	features, err := readFeatures(r)
	if err != nil {
		return nil, report, err
	}

	stops := make([]models.TransitStop, 0, len(features))
	for _, f := range features {
		report.Read++

		point, ok := f.Geometry.(orb.Point)
		lineID := propString(f.Properties, lineIDProperties...)
		if !ok || lineID == "" {
			report.Skipped++
			continue
		}

		stops = append(stops, models.TransitStop{
			Position: point,
			Mode:     lineMode(f.Properties),
			LineID:   lineID,
		})
		report.Kept++
	}

	l.summary("transit stops", report)
	return stops, report, nil
}
