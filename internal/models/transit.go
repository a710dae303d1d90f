package models

import (
	"strings"

	"github.com/paulmach/orb"
)

// TransitMode is the closed set of transport modes.
type TransitMode int

const (
	ModeOther TransitMode = iota
	ModeMetro
	ModeRER
	ModeTramway
	ModeTrain
)

// String returns the string representation of a TransitMode
func (m TransitMode) String() string {
	switch m {
	case ModeMetro:
		return "METRO"
	case ModeRER:
		return "RER"
	case ModeTramway:
		return "TRAMWAY"
	case ModeTrain:
		return "TRAIN"
	default:
		return "OTHER"
	}
}

func (m TransitMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *TransitMode) UnmarshalText(text []byte) error {
	*m = ParseTransitMode(string(text))
	return nil
}

// ParseTransitMode normalises a free-form mode label. Matching ignores case
// and accents; unknown labels map to ModeOther.
func ParseTransitMode(s string) TransitMode {
	switch Fold(s) {
	case "METRO":
		return ModeMetro
	case "RER":
		return ModeRER
	case "TRAMWAY", "TRAM":
		return ModeTramway
	case "TRAIN", "TRANSILIEN", "TER":
		return ModeTrain
	default:
		return ModeOther
	}
}

// ModeFromFlags resolves the modal indicator flags of a line record.
// Exactly one flag must be set; any other combination is ModeOther.
func ModeFromFlags(metro, rer, tramway, train bool) TransitMode {
	mode := ModeOther
	set := 0
	for _, f := range []struct {
		on   bool
		mode TransitMode
	}{
		{metro, ModeMetro},
		{rer, ModeRER},
		{tramway, ModeTramway},
		{train, ModeTrain},
	} {
		if f.on {
			mode = f.mode
			set++
		}
	}
	if set != 1 {
		return ModeOther
	}
	return mode
}

// LineKey identifies a transit line. Two records with the same key are the
// same line.
type LineKey struct {
	Mode   TransitMode
	LineID string
}

type TransitLine struct {
	Mode   TransitMode `json:"mode"`
	LineID string      `json:"line_id"`
	Color  string      `json:"color"`
}

func (l TransitLine) Key() LineKey {
	return LineKey{Mode: l.Mode, LineID: l.LineID}
}

// TransitStop is only an input to spatial matching.
type TransitStop struct {
	Position orb.Point
	Mode     TransitMode
	LineID   string
}

func (s TransitStop) Key() LineKey {
	return LineKey{Mode: s.Mode, LineID: s.LineID}
}

// NormalizeColor turns "ffcd00", "#FFCD00" or the short "#fc0" form into
// "#FFCD00". It returns false for anything that is not a hex colour.
func NormalizeColor(s string) (string, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return "", false
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return "", false
		}
	}
	return "#" + strings.ToUpper(hex), true
}
