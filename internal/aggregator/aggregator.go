// Package aggregator turns DVF transactions into per-territory statistics
// and lookup indexes.
package aggregator

import (
	"dvfmap/internal/models"
	"dvfmap/internal/stats"
)

// KeyFunc extracts the territorial key a transaction is grouped on. An
// empty key means the transaction has no such territory.
type KeyFunc func(models.Transaction) string

// ByDept, ByCommune and BySection are the three territorial keys.
var (
	ByDept    KeyFunc = func(tx models.Transaction) string { return tx.DeptCode }
	ByCommune KeyFunc = func(tx models.Transaction) string { return tx.CommuneCode }
	BySection KeyFunc = func(tx models.Transaction) string { return tx.SectionCode }
)

// KeyFor returns the KeyFunc of a scale.
func KeyFor(scale models.Scale) KeyFunc {
	switch scale {
	case models.ScaleCommune:
		return ByCommune
	case models.ScaleSection:
		return BySection
	default:
		return ByDept
	}
}

// accumulator collects one group's tallies in a single pass.
type accumulator struct {
	count      int
	houses     int
	apartments int
	prices     []float64
	housePx    []float64
	apartPx    []float64
}

func (a *accumulator) add(tx models.Transaction) {
	if !tx.IsValid() {
		return
	}
	price := tx.PricePerM2()
	a.count++
	a.prices = append(a.prices, price)
	switch tx.PropertyType {
	case models.PropertyHouse:
		a.houses++
		a.housePx = append(a.housePx, price)
	case models.PropertyApartment:
		a.apartments++
		a.apartPx = append(a.apartPx, price)
	}
}

func (a *accumulator) stats() models.TerritoryStats {
	return models.TerritoryStats{
		Count:                a.count,
		MedianPrice:          stats.Median(a.prices),
		HouseCount:           a.houses,
		ApartmentCount:       a.apartments,
		MedianHousePrice:     stats.Median(a.housePx),
		MedianApartmentPrice: stats.Median(a.apartPx),
	}
}

// ComputeStats aggregates an arbitrary list of transactions. Records with a
// non-positive value or surface are ignored.
func ComputeStats(transactions []models.Transaction) models.TerritoryStats {
	var acc accumulator
	for _, tx := range transactions {
		acc.add(tx)
	}
	return acc.stats()
}

// ComputeStatsByKey groups transactions on key and aggregates each group.
// Groups that only hold unusable records are reported with zero counts.
func ComputeStatsByKey(transactions []models.Transaction, key KeyFunc) map[string]models.TerritoryStats {
	groups := make(map[string]*accumulator)
	for _, tx := range transactions {
		k := key(tx)
		if k == "" {
			continue
		}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{}
			groups[k] = acc
		}
		acc.add(tx)
	}

	result := make(map[string]models.TerritoryStats, len(groups))
	for k, acc := range groups {
		result[k] = acc.stats()
	}
	return result
}

// ComputeStatsByDept aggregates transactions per department code.
func ComputeStatsByDept(transactions []models.Transaction) map[string]models.TerritoryStats {
	return ComputeStatsByKey(transactions, ByDept)
}

// AggregateMedianByKey returns the median price per m² of each group.
// Groups without any usable transaction are left out.
func AggregateMedianByKey(transactions []models.Transaction, key KeyFunc) map[string]float64 {
	prices := make(map[string][]float64)
	for _, tx := range transactions {
		k := key(tx)
		if k == "" || !tx.IsValid() {
			continue
		}
		prices[k] = append(prices[k], tx.PricePerM2())
	}

	medians := make(map[string]float64, len(prices))
	for k, values := range prices {
		if m := stats.Median(values); m != nil {
			medians[k] = *m
		}
	}
	return medians
}
