package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvfmap/internal/models"
)

// sale builds a transaction whose value is surface*price.
func sale(dept, commune, section string, kind models.PropertyType, surface, price float64) models.Transaction {
	return models.Transaction{
		DeptCode:     dept,
		CommuneCode:  commune,
		SectionCode:  section,
		PropertyType: kind,
		Surface:      surface,
		Value:        surface * price,
	}
}

func ptr(v float64) *float64 {
	return &v
}

func TestComputeStats(t *testing.T) {
	t.Run("Paris commune scenario", func(t *testing.T) {
		txs := []models.Transaction{
			sale("75", "75056", "75056000AB", models.PropertyApartment, 50, 8000),
			sale("75", "75056", "75056000AB", models.PropertyApartment, 40, 9000),
			sale("75", "75056", "75056000AC", models.PropertyHouse, 100, 10000),
		}

		s := ComputeStats(txs)
		assert.Equal(t, 3, s.Count)
		require.NotNil(t, s.MedianPrice)
		assert.InDelta(t, 9000, *s.MedianPrice, 1e-9)
		assert.Equal(t, 1, s.HouseCount)
		assert.Equal(t, 2, s.ApartmentCount)
		assert.InDelta(t, 10000, *s.MedianHousePrice, 1e-9)
		assert.InDelta(t, 8500, *s.MedianApartmentPrice, 1e-9)
	})

	t.Run("Empty input is zero statistics", func(t *testing.T) {
		s := ComputeStats(nil)
		assert.Equal(t, models.TerritoryStats{}, s)
		assert.Nil(t, s.MedianPrice, "median of nothing is nil, never 0")
	})

	t.Run("Invalid records are excluded", func(t *testing.T) {
		txs := []models.Transaction{
			sale("75", "75056", "", models.PropertyHouse, 0, 5000),
			{DeptCode: "75", Surface: 30, Value: 0},
			{DeptCode: "75", Surface: -10, Value: 100000},
			sale("75", "75056", "", models.PropertyOther, 20, 4000),
		}
		s := ComputeStats(txs)
		assert.Equal(t, 1, s.Count)
		assert.Equal(t, ptr(4000), s.MedianPrice)
		assert.Equal(t, 0, s.HouseCount)
	})

	t.Run("Type counts never exceed the total", func(t *testing.T) {
		txs := []models.Transaction{
			sale("92", "92012", "", models.PropertyHouse, 80, 6000),
			sale("92", "92012", "", models.PropertyOther, 30, 3000),
			sale("92", "92012", "", models.PropertyApartment, 45, 7000),
			sale("92", "92012", "", models.PropertyOther, 60, 2000),
		}
		s := ComputeStats(txs)
		assert.LessOrEqual(t, s.HouseCount+s.ApartmentCount, s.Count)
		assert.Equal(t, 4, s.Count)
	})
}

func TestComputeStatsByDept(t *testing.T) {
	txs := []models.Transaction{
		sale("75", "75056", "", models.PropertyApartment, 50, 10000),
		sale("75", "75056", "", models.PropertyApartment, 50, 12000),
		sale("93", "93066", "", models.PropertyHouse, 90, 4000),
		sale("", "", "", models.PropertyHouse, 90, 4000),
		sale("94", "94028", "", models.PropertyHouse, 0, 4000),
	}

	byDept := ComputeStatsByDept(txs)
	require.Len(t, byDept, 3)

	assert.Equal(t, 2, byDept["75"].Count)
	assert.Equal(t, ptr(11000), byDept["75"].MedianPrice)
	assert.Equal(t, 1, byDept["93"].HouseCount)
	assert.Equal(t, 0, byDept["94"].Count)
	assert.Nil(t, byDept["94"].MedianPrice)

	assert.Empty(t, ComputeStatsByDept(nil))
}

func TestAggregateMedianByKey(t *testing.T) {
	txs := []models.Transaction{
		sale("75", "75056", "75056000AB", models.PropertyApartment, 50, 8000),
		sale("75", "75056", "75056000AB", models.PropertyApartment, 50, 9000),
		sale("75", "75056", "", models.PropertyApartment, 50, 20000),
		sale("77", "77288", "77288000ZK", models.PropertyHouse, 0, 20000),
	}

	byCommune := AggregateMedianByKey(txs, ByCommune)
	assert.Equal(t, map[string]float64{"75056": 9000}, byCommune)

	bySection := AggregateMedianByKey(txs, BySection)
	assert.Equal(t, map[string]float64{"75056000AB": 8500}, bySection, "missing keys and unusable records are skipped")

	assert.Empty(t, AggregateMedianByKey(nil, BySection))
}

func TestBuildIndexes(t *testing.T) {
	txs := []models.Transaction{
		sale("75", "75056", "75056000AB", models.PropertyApartment, 50, 8000),
		sale("75", "75056", "", models.PropertyApartment, 50, 9000),
		sale("91", "", "", models.PropertyHouse, 120, 3500),
	}

	idx := BuildIndexes(txs)
	assert.Len(t, idx.ByDept["75"], 2)
	assert.Len(t, idx.ByDept["91"], 1)
	assert.Len(t, idx.ByCommune, 1)
	assert.Len(t, idx.BySection, 1)
	assert.Equal(t, txs[0], idx.BySection["75056000AB"][0])

	empty := BuildIndexes(nil)
	assert.Empty(t, empty.ByDept)
	assert.Empty(t, empty.ByCommune)
	assert.Empty(t, empty.BySection)
}

func TestIndexes_LookupReturnsCopy(t *testing.T) {
	txs := []models.Transaction{
		sale("75", "75056", "", models.PropertyApartment, 50, 8000),
		sale("75", "75056", "", models.PropertyApartment, 50, 9000),
	}
	idx := BuildIndexes(txs)

	got := idx.Lookup(models.ScaleCommune, "75056")
	require.Len(t, got, 2)
	got[0].Value = 1

	assert.Equal(t, 400000.0, idx.ByCommune["75056"][0].Value)
	assert.Nil(t, idx.Lookup(models.ScaleSection, "unknown"))

	var nilIdx *Indexes
	assert.Nil(t, nilIdx.Lookup(models.ScaleDepartment, "75"))
}

func TestIndexes_Codes(t *testing.T) {
	txs := []models.Transaction{
		sale("75", "75056", "", models.PropertyApartment, 50, 8000),
		sale("75", "75056", "", models.PropertyApartment, 50, 10000),
		sale("92", "92012", "", models.PropertyHouse, 0, 5000),
	}
	idx := BuildIndexes(txs)

	assert.ElementsMatch(t, []string{"75", "92"}, idx.Codes(models.ScaleDepartment))
	assert.ElementsMatch(t, []string{"75056", "92012"}, idx.Codes(models.ScaleCommune))
}
