package config

import "dvfmap/internal/models"

// Department represents a department of the Île-de-France region
type Department struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// Departments is the top of the drill-down and the catalogue scanned by the
// purchasing-power analysis at department scale
var Departments = []Department{
	{Code: "75", Name: "Paris", Center: []float64{48.8566, 2.3522}, ZoomLevel: 12},
	{Code: "77", Name: "Seine-et-Marne", Center: []float64{48.6090, 2.9990}, ZoomLevel: 9},
	{Code: "78", Name: "Yvelines", Center: []float64{48.7850, 1.8260}, ZoomLevel: 10},
	{Code: "91", Name: "Essonne", Center: []float64{48.5220, 2.2430}, ZoomLevel: 10},
	{Code: "92", Name: "Hauts-de-Seine", Center: []float64{48.8400, 2.2450}, ZoomLevel: 11},
	{Code: "93", Name: "Seine-Saint-Denis", Center: []float64{48.9100, 2.4780}, ZoomLevel: 11},
	{Code: "94", Name: "Val-de-Marne", Center: []float64{48.7770, 2.4690}, ZoomLevel: 11},
	{Code: "95", Name: "Val-d'Oise", Center: []float64{49.0740, 2.1740}, ZoomLevel: 10},
}

// GetDepartmentByCode returns a department by its code, nil if unknown
func GetDepartmentByCode(code string) *Department {
	for _, dept := range Departments {
		if dept.Code == code {
			return &dept
		}
	}
	return nil
}

// DepartmentTerritories returns the departments as a territory catalogue
// without geometry.
func DepartmentTerritories() []models.Territory {
	out := make([]models.Territory, len(Departments))
	for i, dept := range Departments {
		out[i] = models.Territory{Code: dept.Code, Name: dept.Name, Scale: models.ScaleDepartment}
	}
	return out
}
