// Package affordability ranks territories by the surface a budget buys.
package affordability

import (
	"math"
	"sort"

	"dvfmap/internal/models"
)

// Result is one ranked territory.
type Result struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	PricePerM2        float64 `json:"price_per_m2"`
	AffordableSurface int     `json:"affordable_surface"`
}

// Analyze computes floor(budget/price) for every catalogued territory with a
// known positive price and sorts the results by surface, largest first.
// Ties keep catalogue order. Territories without a usable price are left out.
func Analyze(budget float64, prices map[string]float64, catalog []models.Territory) []Result {
	results := make([]Result, 0, len(catalog))
	for _, t := range catalog {
		price, ok := prices[t.Code]
		if !ok || math.IsNaN(price) || price <= 0 {
			continue
		}
		results = append(results, Result{
			ID:                t.Code,
			Name:              t.Name,
			PricePerM2:        price,
			AffordableSurface: int(math.Floor(budget / price)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AffordableSurface > results[j].AffordableSurface
	})
	return results
}

// TopN returns the first n results. n <= 0 yields an empty list.
func TopN(results []Result, n int) []Result {
	if n <= 0 {
		return []Result{}
	}
	if n > len(results) {
		n = len(results)
	}
	return results[:n]
}
