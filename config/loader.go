package config

import (
	"fmt"
	"os"
	"path/filepath"

	"dvfmap/internal/models"

	"gopkg.in/yaml.v3"
)

type lineColorFile struct {
	Lines []struct {
		Mode  string `yaml:"mode"`
		Line  string `yaml:"line"`
		Color string `yaml:"color"`
	} `yaml:"lines"`
}

// LoadLineColors loads the official line colours from a YAML file. The
// result is meant to be placed in front of the line catalogue so that it
// wins the first-match colour lookup.
func LoadLineColors(path string) ([]models.TransitLine, error) {
	// Get absolute path to config file
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read line colours: %w", err)
	}

	return ParseLineColors(data)
}

// ParseLineColors decodes a line colour document
func ParseLineColors(data []byte) ([]models.TransitLine, error) {
	var file lineColorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse line colours: %w", err)
	}

	lines := make([]models.TransitLine, 0, len(file.Lines))
	for i, entry := range file.Lines {
		if entry.Line == "" {
			return nil, fmt.Errorf("line colour entry %d has no line", i)
		}
		color, ok := models.NormalizeColor(entry.Color)
		if !ok {
			return nil, fmt.Errorf("invalid colour %q for %s %s", entry.Color, entry.Mode, entry.Line)
		}
		lines = append(lines, models.TransitLine{
			Mode:   models.ParseTransitMode(entry.Mode),
			LineID: entry.Line,
			Color:  color,
		})
	}
	return lines, nil
}
