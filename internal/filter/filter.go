// Package filter holds the active search criteria and scores territories
// against them.
package filter

import (
	"math"

	"dvfmap/internal/models"
	"dvfmap/internal/stats"
)

// Option replaces one criterion. Passing nil clears it.
type Option func(*models.FilterCriteria)

func WithMaxBudget(v *float64) Option {
	return func(c *models.FilterCriteria) {
		c.MaxBudget = clonePtr(v)
	}
}

func WithMinSurface(v *float64) Option {
	return func(c *models.FilterCriteria) {
		c.MinSurface = clonePtr(v)
	}
}

func WithPropertyType(v *models.PropertyType) Option {
	return func(c *models.FilterCriteria) {
		c.PropertyType = clonePtr(v)
	}
}

func WithRequireTransit(v bool) Option {
	return func(c *models.FilterCriteria) {
		c.RequireTransit = v
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Engine owns the filter criteria of a session. SetFilters and ResetFilters
// are the only ways to change them.
type Engine struct {
	criteria models.FilterCriteria
}

func NewEngine() *Engine {
	return &Engine{}
}

// SetFilters applies opts; criteria not mentioned are left untouched.
func (e *Engine) SetFilters(opts ...Option) {
	for _, opt := range opts {
		opt(&e.criteria)
	}
}

// ResetFilters clears every criterion.
func (e *Engine) ResetFilters() {
	e.criteria = models.FilterCriteria{}
}

// Criteria returns a copy of the current criteria.
func (e *Engine) Criteria() models.FilterCriteria {
	return e.criteria.Clone()
}

// IsActive reports whether any criterion is set.
func (e *Engine) IsActive() bool {
	return e.criteria.IsActive()
}

// MatchesFilters reports whether tx passes every active criterion given the
// transit lines serving its territory.
func (e *Engine) MatchesFilters(tx models.Transaction, transitLines []models.TransitLine) bool {
	return e.criteria.IsTransactionAllowed(tx, transitLines)
}

// FilteredStats is recomputed from the transactions that survive the
// validity checks and the active filters.
type FilteredStats struct {
	Count          int                  `json:"count"`
	HouseCount     int                  `json:"house_count"`
	ApartmentCount int                  `json:"apartment_count"`
	MedianPrice    *float64             `json:"median_price"`
	Transactions   []models.Transaction `json:"-"`
}

// GetFilteredStats filters transactions and aggregates the survivors. The
// median is the upper-middle element of the sorted prices per m² (see
// stats.UpperMiddle), which is what the filtered panels have always shown.
func (e *Engine) GetFilteredStats(transactions []models.Transaction, transitLines []models.TransitLine) FilteredStats {
	result := FilteredStats{Transactions: []models.Transaction{}}
	prices := make([]float64, 0, len(transactions))

	for _, tx := range transactions {
		if !tx.IsValid() || !e.MatchesFilters(tx, transitLines) {
			continue
		}
		result.Transactions = append(result.Transactions, tx)
		prices = append(prices, tx.PricePerM2())
		switch tx.PropertyType {
		case models.PropertyHouse:
			result.HouseCount++
		case models.PropertyApartment:
			result.ApartmentCount++
		}
	}

	result.Count = len(result.Transactions)
	result.MedianPrice = stats.UpperMiddle(prices)
	return result
}

// Compatibility is the share of a territory's transactions matching the
// active criteria.
type Compatibility struct {
	Score   int `json:"score"`
	Matched int `json:"matched"`
	Total   int `json:"total"`
}

// CalculateCompatibilityScore returns 100 when no criterion is active,
// whatever the data. Otherwise it is the rounded percentage of valid
// transactions passing every criterion, and 0 when there is none.
func (e *Engine) CalculateCompatibilityScore(transactions []models.Transaction, transitLines []models.TransitLine) Compatibility {
	if !e.IsActive() {
		return Compatibility{Score: 100, Matched: len(transactions), Total: len(transactions)}
	}

	var c Compatibility
	for _, tx := range transactions {
		if !tx.IsValid() {
			continue
		}
		c.Total++
		if e.MatchesFilters(tx, transitLines) {
			c.Matched++
		}
	}
	if c.Total == 0 {
		return c
	}

	c.Score = int(math.Round(float64(c.Matched) / float64(c.Total) * 100))
	return c
}
