package geometry

import (
	"math"
	"sort"

	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"

	"dvfmap/internal/models"
)

const (
	metersPerDegree = orb.EarthRadius * math.Pi / 180

	// maxScanCells bounds the cell enumeration; larger zones fall back to a
	// full scan.
	maxScanCells = 4096
)

// StopIndex buckets stops by geohash cell so a zone only tests the stops
// near its bounding box.
type StopIndex struct {
	precision uint
	stops     []models.TransitStop
	cells     map[string][]int
}

// NewStopIndex indexes stops at the given geohash precision (characters).
// Stops with invalid coordinates are left out; they could never match.
func NewStopIndex(stops []models.TransitStop, precision uint) *StopIndex {
	if precision == 0 {
		precision = 5
	}
	if precision > 12 {
		precision = 12
	}
	idx := &StopIndex{
		precision: precision,
		stops:     stops,
		cells:     make(map[string][]int),
	}
	for i, stop := range stops {
		if !validPoint(stop.Position) {
			continue
		}
		hash := geohash.EncodeWithPrecision(stop.Position.Lat(), stop.Position.Lon(), precision)
		idx.cells[hash] = append(idx.cells[hash], i)
	}
	return idx
}

// Cells returns the number of non-empty cells.
func (idx *StopIndex) Cells() int {
	return len(idx.cells)
}

// Candidates returns, in their original order, the stops lying in a cell
// that intersects the zone's bounding box padded by bufferMeters.
func (idx *StopIndex) Candidates(zone orb.Geometry, bufferMeters float64) []models.TransitStop {
	if zone == nil {
		return nil
	}
	bound := zone.Bound()
	if bound.IsEmpty() {
		return nil
	}

	padded := padBound(bound, bufferMeters)
	minLat, maxLat := clamp(padded.Min.Lat(), -90, 90), clamp(padded.Max.Lat(), -90, 90)
	minLng, maxLng := clamp(padded.Min.Lon(), -180, 180), clamp(padded.Max.Lon(), -180, 180)

	cell := geohash.BoundingBox(geohash.EncodeWithPrecision(minLat, minLng, idx.precision))
	lats := steps(minLat, maxLat, cell.MaxLat-cell.MinLat)
	lngs := steps(minLng, maxLng, cell.MaxLng-cell.MinLng)
	if len(lats)*len(lngs) > maxScanCells {
		return idx.stops
	}

	var hits []int
	visited := make(map[string]bool)
	for _, lat := range lats {
		for _, lng := range lngs {
			hash := geohash.EncodeWithPrecision(lat, lng, idx.precision)
			if visited[hash] {
				continue
			}
			visited[hash] = true
			hits = append(hits, idx.cells[hash]...)
		}
	}

	sort.Ints(hits)
	candidates := make([]models.TransitStop, len(hits))
	for i, h := range hits {
		candidates[i] = idx.stops[h]
	}
	return candidates
}

// padBound grows b by meters on every side, using the latitude farthest
// from the equator so the longitude margin is never too small.
func padBound(b orb.Bound, meters float64) orb.Bound {
	latPad := meters / metersPerDegree * 1.1
	maxAbsLat := math.Max(math.Abs(b.Min.Lat()), math.Abs(b.Max.Lat())) + latPad
	if maxAbsLat >= 89 {
		return orb.Bound{Min: orb.Point{-180, b.Min.Lat() - latPad}, Max: orb.Point{180, b.Max.Lat() + latPad}}
	}
	lngPad := latPad / math.Cos(maxAbsLat*math.Pi/180)
	return orb.Bound{
		Min: orb.Point{b.Min.Lon() - lngPad, b.Min.Lat() - latPad},
		Max: orb.Point{b.Max.Lon() + lngPad, b.Max.Lat() + latPad},
	}
}

// steps samples [min, max] every half cell so no cell between min and max
// is stepped over.
func steps(min, max, size float64) []float64 {
	if size <= 0 {
		return []float64{min, max}
	}
	var out []float64
	for v := min; v < max; v += size / 2 {
		out = append(out, v)
		if len(out) > maxScanCells {
			break
		}
	}
	return append(out, max)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
