package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Data source locations
	Data struct {
		// DVF geo-dvf CSV export for Île-de-France
		TransactionsPath string `env:"DVF_TRANSACTIONS_PATH" envDefault:"data/dvf_idf.csv"`

		// Territory boundaries, one GeoJSON per scale
		DepartmentsPath string `env:"DVF_DEPARTMENTS_PATH" envDefault:"data/departements.geojson"`
		CommunesPath    string `env:"DVF_COMMUNES_PATH" envDefault:"data/communes.geojson"`

		// Sections may also be a .shp file, read with the DBF fields below
		SectionsPath      string `env:"DVF_SECTIONS_PATH" envDefault:"data/sections.geojson"`
		SectionsCodeField string `env:"DVF_SECTIONS_CODE_FIELD" envDefault:"code"`
		SectionsNameField string `env:"DVF_SECTIONS_NAME_FIELD" envDefault:"nom"`

		TransitLinesPath string `env:"DVF_TRANSIT_LINES_PATH" envDefault:"data/traces_reseau_ferre.geojson"`
		TransitStopsPath string `env:"DVF_TRANSIT_STOPS_PATH" envDefault:"data/gares.geojson"`

		// Official line colours, optional
		LineColorsPath string `env:"DVF_LINE_COLORS_PATH" envDefault:"config/line_colors.yaml"`
	}

	Transit struct {
		// Distance from the zone centroid under which a stop serves the zone
		BufferMeters float64 `env:"TRANSIT_BUFFER_METERS" envDefault:"1000"`

		// Geohash precision of the stop index cells
		GeohashPrecision uint `env:"TRANSIT_GEOHASH_PRECISION" envDefault:"5"`
	}

	Geometry struct {
		// Douglas-Peucker tolerance in degrees, 0 disables simplification
		SimplifyTolerance float64 `env:"GEOMETRY_SIMPLIFY_TOLERANCE" envDefault:"0"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
		JSON  bool   `env:"LOG_JSON" envDefault:"true"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Transit.BufferMeters <= 0 {
		return nil, fmt.Errorf("TRANSIT_BUFFER_METERS must be positive, got %v", cfg.Transit.BufferMeters)
	}
	return cfg, nil
}
