package models

// FilterCriteria stores the active search filters. A nil field means the
// criterion is not set.
type FilterCriteria struct {
	MaxBudget      *float64      `json:"max_budget"`
	MinSurface     *float64      `json:"min_surface"`
	PropertyType   *PropertyType `json:"property_type"`
	RequireTransit bool          `json:"require_transit"`
}

// IsActive reports whether at least one criterion is set.
func (f FilterCriteria) IsActive() bool {
	return f.MaxBudget != nil || f.MinSurface != nil || f.PropertyType != nil || f.RequireTransit
}

// Clone returns a copy that shares no pointers with f.
func (f FilterCriteria) Clone() FilterCriteria {
	f.MaxBudget = cloneFloat(f.MaxBudget)
	f.MinSurface = cloneFloat(f.MinSurface)
	if f.PropertyType != nil {
		t := *f.PropertyType
		f.PropertyType = &t
	}
	return f
}

// IsTransactionAllowed checks if a transaction matches the filter criteria.
// The budget is a ceiling on the price per square metre: a sale passes when
// its value is at most MaxBudget times its surface.
func (f *FilterCriteria) IsTransactionAllowed(tx Transaction, transitLines []TransitLine) bool {
	if f == nil {
		return true // No filters means allow all
	}

	if f.MaxBudget != nil && tx.Value > *f.MaxBudget*tx.Surface {
		return false
	}

	if f.MinSurface != nil && tx.Surface < *f.MinSurface {
		return false
	}

	if f.PropertyType != nil && tx.PropertyType != *f.PropertyType {
		return false
	}

	if f.RequireTransit && len(transitLines) == 0 {
		return false
	}

	return true
}
