// Package geometry answers "which transit lines serve this territory".
package geometry

import (
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/sirupsen/logrus"

	"dvfmap/internal/models"
)

const (
	// DefaultBufferMeters is the distance from the zone centroid within which
	// a stop outside the polygon still serves the zone.
	DefaultBufferMeters = 1000.0

	// FallbackLineColor is used for lines missing from the catalogue.
	FallbackLineColor = "#808080"
)

// Centroid returns the area centroid of a polygonal geometry, falling back
// to the centre of its bounding box for degenerate shapes. ok is false for
// an empty geometry.
func Centroid(zone orb.Geometry) (c orb.Point, ok bool) {
	if zone == nil {
		return orb.Point{}, false
	}
	bound := zone.Bound()
	if bound.IsEmpty() {
		return orb.Point{}, false
	}

	centroid, area := planar.CentroidArea(zone)
	if area == 0 || !validPoint(centroid) {
		return bound.Center(), true
	}
	return centroid, true
}

// Contains reports whether point lies in zone. Holes are excluded and points
// on the boundary, vertices included, count as inside.
func Contains(zone orb.Geometry, point orb.Point) bool {
	switch g := zone.(type) {
	case orb.Polygon:
		return polygonContains(g, point)
	case orb.MultiPolygon:
		for _, p := range g {
			if polygonContains(p, point) {
				return true
			}
		}
	case orb.Ring:
		return len(g) >= 3 && planar.RingContains(g, point)
	case orb.Bound:
		return g.Contains(point)
	case orb.Collection:
		for _, sub := range g {
			if Contains(sub, point) {
				return true
			}
		}
	}
	return false
}

func polygonContains(p orb.Polygon, point orb.Point) bool {
	if len(p) == 0 || len(p[0]) < 3 {
		return false
	}
	return planar.PolygonContains(p, point)
}

// Serves is the two-stage spatial predicate: the stop is inside the zone, or
// within bufferMeters of its centroid (great-circle distance).
func Serves(stop orb.Point, zone orb.Geometry, centroid orb.Point, bufferMeters float64) bool {
	if !validPoint(stop) {
		return false
	}
	if Contains(zone, stop) {
		return true
	}
	return geo.DistanceHaversine(centroid, stop) <= bufferMeters
}

func validPoint(p orb.Point) bool {
	lng, lat := p[0], p[1]
	if math.IsNaN(lng) || math.IsNaN(lat) || math.IsInf(lng, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// ResolveColor returns the colour of the first catalogue line with the same
// key, or FallbackLineColor.
func ResolveColor(key models.LineKey, catalog []models.TransitLine) string {
	for _, line := range catalog {
		if line.Key() == key {
			if line.Color == "" {
				break
			}
			return line.Color
		}
	}
	return FallbackLineColor
}

// LinesServingZone returns the distinct lines with at least one stop
// serving zone, using DefaultBufferMeters.
func LinesServingZone(zone orb.Geometry, stops []models.TransitStop, catalog []models.TransitLine) []models.TransitLine {
	lines, _ := collectLines(zone, stops, catalog, DefaultBufferMeters)
	return lines
}

// collectLines returns the serving lines, ordered by first serving stop,
// and the number of stops skipped for bad coordinates.
func collectLines(zone orb.Geometry, stops []models.TransitStop, catalog []models.TransitLine, bufferMeters float64) ([]models.TransitLine, int) {
	lines := []models.TransitLine{}
	centroid, ok := Centroid(zone)
	if !ok {
		return lines, 0
	}

	skipped := 0
	seen := make(map[models.LineKey]bool)
	for _, stop := range stops {
		if !validPoint(stop.Position) {
			skipped++
			continue
		}
		key := stop.Key()
		if seen[key] {
			continue
		}
		if !Serves(stop.Position, zone, centroid, bufferMeters) {
			continue
		}
		seen[key] = true
		lines = append(lines, models.TransitLine{
			Mode:   key.Mode,
			LineID: key.LineID,
			Color:  ResolveColor(key, catalog),
		})
	}
	return lines, skipped
}

// MatcherOptions tunes a Matcher. Zero values select the defaults.
type MatcherOptions struct {
	BufferMeters float64
	// GeohashPrecision enables the stop index when > 0.
	GeohashPrecision uint
}

// Matcher holds the stop set and line catalogue of a session.
type Matcher struct {
	logger       *logrus.Logger
	bufferMeters float64
	stops        []models.TransitStop
	catalog      []models.TransitLine
	index        *StopIndex
}

// NewMatcher creates a matcher over stops and catalog.
func NewMatcher(stops []models.TransitStop, catalog []models.TransitLine, opts MatcherOptions, logger *logrus.Logger) *Matcher {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if opts.BufferMeters <= 0 {
		opts.BufferMeters = DefaultBufferMeters
	}

	m := &Matcher{
		logger:       logger,
		bufferMeters: opts.BufferMeters,
		stops:        stops,
		catalog:      catalog,
	}
	if opts.GeohashPrecision > 0 {
		m.index = NewStopIndex(stops, opts.GeohashPrecision)
		logger.WithFields(logrus.Fields{
			"stops":     len(stops),
			"cells":     m.index.Cells(),
			"precision": opts.GeohashPrecision,
		}).Debug("Built transit stop index")
	}
	return m
}

// LinesServingZone returns the lines serving zone.
func (m *Matcher) LinesServingZone(zone orb.Geometry) []models.TransitLine {
	stops := m.stops
	if m.index != nil {
		stops = m.index.Candidates(zone, m.bufferMeters)
	}

	lines, skipped := collectLines(zone, stops, m.catalog, m.bufferMeters)
	if skipped > 0 {
		m.logger.WithField("skipped", skipped).Warn("Skipped transit stops with invalid coordinates")
	}
	m.logger.WithFields(logrus.Fields{
		"candidates": len(stops),
		"lines":      len(lines),
	}).Debug("Matched transit lines")
	return lines
}
