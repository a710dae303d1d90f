package session

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"dvfmap/internal/affordability"
	"dvfmap/internal/aggregator"
	"dvfmap/internal/comparison"
	"dvfmap/internal/filter"
	"dvfmap/internal/models"
	"dvfmap/internal/stats"
)

// TransitLines returns the lines serving a territory. Territories without
// geometry, or a session without transit data, have none.
func (s *Session) TransitLines(scale models.Scale, code string) ([]models.TransitLine, error) {
	t, err := s.Territory(scale, code)
	if err != nil {
		return nil, err
	}
	return s.linesFor(t), nil
}

func (s *Session) linesFor(t models.Territory) []models.TransitLine {
	if s.transit == nil || t.Geometry == nil {
		return []models.TransitLine{}
	}
	return s.transit.LinesServingZone(t.Geometry)
}

// criteriaLines only runs the spatial match when a criterion needs it.
func (s *Session) criteriaLines(t models.Territory) []models.TransitLine {
	if !s.filters.Criteria().RequireTransit {
		return nil
	}
	return s.linesFor(t)
}

// ZoneStats aggregates every transaction of a territory, ignoring filters.
func (s *Session) ZoneStats(scale models.Scale, code string) (models.TerritoryStats, error) {
	if _, err := s.Territory(scale, code); err != nil {
		return models.TerritoryStats{}, err
	}
	return aggregator.ComputeStats(s.indexes.Lookup(scale, code)), nil
}

// StatsByTerritory aggregates every territory of a scale that has sales.
func (s *Session) StatsByTerritory(scale models.Scale) map[string]models.TerritoryStats {
	if scale == models.ScaleDepartment {
		return aggregator.ComputeStatsByDept(s.transactions)
	}
	return aggregator.ComputeStatsByKey(s.transactions, aggregator.KeyFor(scale))
}

// FilteredZoneStats recomputes the statistics of a territory from the
// transactions passing the active filters.
func (s *Session) FilteredZoneStats(scale models.Scale, code string) (filter.FilteredStats, error) {
	t, err := s.Territory(scale, code)
	if err != nil {
		return filter.FilteredStats{}, err
	}
	return s.filters.GetFilteredStats(s.indexes.Lookup(scale, code), s.criteriaLines(t)), nil
}

// Compatibility scores one territory against the active filters.
func (s *Session) Compatibility(scale models.Scale, code string) (filter.Compatibility, error) {
	t, err := s.Territory(scale, code)
	if err != nil {
		return filter.Compatibility{}, err
	}
	return s.filters.CalculateCompatibilityScore(s.indexes.Lookup(scale, code), s.criteriaLines(t)), nil
}

// CompatibilityMap scores every territory of a scale. This drives the
// gradient of the map once filters are set.
func (s *Session) CompatibilityMap(scale models.Scale) map[string]filter.Compatibility {
	territories := s.AllTerritories(scale)
	scores := make(map[string]filter.Compatibility, len(territories))
	for _, t := range territories {
		scores[t.Code] = s.filters.CalculateCompatibilityScore(s.indexes.Lookup(scale, t.Code), s.criteriaLines(t))
	}
	s.logger.WithFields(logrus.Fields{
		"scale":       scale.String(),
		"territories": len(scores),
	}).Debug("Computed compatibility map")
	return scores
}

// MedianPrices returns the median price per m² of every territory of a
// scale with sales.
func (s *Session) MedianPrices(scale models.Scale) map[string]float64 {
	return aggregator.AggregateMedianByKey(s.transactions, aggregator.KeyFor(scale))
}

// Legend returns the choropleth buckets of a scale.
func (s *Session) Legend(scale models.Scale) stats.Legend {
	medians := s.MedianPrices(scale)
	values := make([]float64, 0, len(medians))
	for _, v := range medians {
		values = append(values, v)
	}
	return stats.BuildLegend(values)
}

// SetFilters changes the given criteria and keeps the others.
func (s *Session) SetFilters(opts ...filter.Option) {
	s.filters.SetFilters(opts...)
	s.logger.WithField("active", s.filters.IsActive()).Debug("Filters updated")
}

// ResetFilters clears every criterion.
func (s *Session) ResetFilters() {
	s.filters.ResetFilters()
}

// Criteria returns a copy of the active criteria.
func (s *Session) Criteria() models.FilterCriteria {
	return s.filters.Criteria()
}

// Comparison exposes the comparison set of the session.
func (s *Session) Comparison() *comparison.Set {
	return s.comparison
}

// AddToComparison snapshots a territory into the comparison set. The
// boolean is false when the set is full or already holds the zone.
func (s *Session) AddToComparison(scale models.Scale, code string) (bool, error) {
	t, err := s.Territory(scale, code)
	if err != nil {
		return false, err
	}
	if !s.comparison.CanAdd() || s.comparison.Contains(code) {
		return false, nil
	}

	zone := models.ComparisonZone{
		ID:           t.Code,
		Name:         t.Name,
		Scale:        scale,
		Stats:        aggregator.ComputeStats(s.indexes.Lookup(scale, code)),
		TransitLines: s.linesFor(t),
	}
	return s.comparison.Add(zone), nil
}

// Affordability ranks the territories of a scale by the surface budget
// buys at their median price. At the current scale only the territories
// inside the current parent are scanned. n <= 0 returns every result.
func (s *Session) Affordability(budget float64, scale models.Scale, n int) ([]affordability.Result, error) {
	if scale < models.ScaleDepartment || scale > models.ScaleSection {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}

	catalog := s.AllTerritories(scale)
	if scale == s.scale {
		catalog = s.Territories()
	}

	results := affordability.Analyze(budget, s.MedianPrices(scale), catalog)
	if n > 0 {
		results = affordability.TopN(results, n)
	}
	return results, nil
}
