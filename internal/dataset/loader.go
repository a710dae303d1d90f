// Package dataset reads the raw sources (DVF CSV, territory boundaries,
// transit network) into the in-memory model. Malformed rows are skipped and
// counted, never fatal.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingColumn       = errors.New("missing required column")
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
)

// Report summarises one load.
type Report struct {
	Read    int `json:"read"`
	Kept    int `json:"kept"`
	Skipped int `json:"skipped"`
}

func (r Report) String() string {
	return fmt.Sprintf("read=%d kept=%d skipped=%d", r.Read, r.Kept, r.Skipped)
}

type LoaderOptions struct {
	// SimplifyTolerance is the Douglas-Peucker threshold applied to territory
	// boundaries, in degrees. 0 keeps the geometry as is.
	SimplifyTolerance float64
}

type Loader struct {
	logger  *logrus.Logger
	options LoaderOptions
}

func NewLoader(opts LoaderOptions, logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Loader{logger: logger, options: opts}
}

func (l *Loader) summary(source string, report Report) {
	l.logger.WithFields(logrus.Fields{
		"source":  source,
		"read":    report.Read,
		"kept":    report.Kept,
		"skipped": report.Skipped,
	}).Info("Loaded dataset")
}

// readFeatures accepts either a FeatureCollection or a single Feature.
func readFeatures(r io.Reader) ([]*geojson.Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GeoJSON: %w", err)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feature collection: %w", err)
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feature: %w", err)
		}
		return []*geojson.Feature{f}, nil
	default:
		return nil, fmt.Errorf("%w: GeoJSON type %q", ErrUnsupportedGeometry, head.Type)
	}
}

// propString returns the first non-empty property among keys. Numeric codes
// are formatted without a fractional part.
func propString(props geojson.Properties, keys ...string) string {
	for _, key := range keys {
		switch v := props[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// propBool reads the modal flags, which open data exports encode as
// booleans, 0/1 numbers or strings.
func propBool(props geojson.Properties, key string) bool {
	switch v := props[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "oui", "yes", "y", "o":
			return true
		}
	}
	return false
}
