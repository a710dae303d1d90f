package models

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var ErrUnknownScale = errors.New("unknown scale")

// Scale is one of the three nested territorial levels.
type Scale int

const (
	ScaleDepartment Scale = iota
	ScaleCommune
	ScaleSection
)

// String returns the string representation of a Scale
func (s Scale) String() string {
	switch s {
	case ScaleDepartment:
		return "department"
	case ScaleCommune:
		return "commune"
	case ScaleSection:
		return "section"
	default:
		return "unknown"
	}
}

func (s Scale) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scale) UnmarshalText(text []byte) error {
	parsed, err := ParseScale(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScale accepts the English names and the French ones used by the
// map layers ("departement", "commune", "section").
func ParseScale(s string) (Scale, error) {
	switch Fold(s) {
	case "DEPARTMENT", "DEPARTEMENT", "DEPT", "DEP":
		return ScaleDepartment, nil
	case "COMMUNE":
		return ScaleCommune, nil
	case "SECTION":
		return ScaleSection, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScale, s)
}

// Child returns the next scale down and false at the finest scale.
func (s Scale) Child() (Scale, bool) {
	switch s {
	case ScaleDepartment:
		return ScaleCommune, true
	case ScaleCommune:
		return ScaleSection, true
	}
	return s, false
}

// Territory is a catalogued zone. Geometry is nil when only the code and
// name are known (e.g. the built-in department list).
type Territory struct {
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Scale    Scale        `json:"scale"`
	Geometry orb.Geometry `json:"-"`
}

// ComparisonZone is a snapshot taken when a zone joins the comparison set.
type ComparisonZone struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Scale        Scale          `json:"scale"`
	Stats        TerritoryStats `json:"stats"`
	TransitLines []TransitLine  `json:"transit_lines"`
}

// Clone returns a deep copy of z.
func (z ComparisonZone) Clone() ComparisonZone {
	z.Stats = z.Stats.Clone()
	if z.TransitLines != nil {
		lines := make([]TransitLine, len(z.TransitLines))
		copy(lines, z.TransitLines)
		z.TransitLines = lines
	}
	return z
}
