package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"dvfmap/internal/filter"
	"dvfmap/internal/models"
	"dvfmap/internal/session"
)

// scopeFlags select where in the drill-down a command looks.
type scopeFlags struct {
	scale  string
	within []string
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scale, "scale", "", "territorial scale (department|commune|section), defaults to the scale reached by --within")
	cmd.Flags().StringSliceVar(&f.within, "within", nil, "drill-down path, e.g. --within 75,75056")
}

// apply drills the session down the --within path and returns the scale
// the command works at.
func (f *scopeFlags) apply(s *session.Session) (models.Scale, error) {
	for _, code := range f.within {
		if err := s.DrillDown(code); err != nil {
			return 0, WrapExitError(ExitCommandError, "invalid --within path", err)
		}
	}
	if f.scale == "" {
		return s.Scale(), nil
	}
	scale, err := models.ParseScale(f.scale)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid --scale", err)
	}
	return scale, nil
}

// filterFlags mirror the search panel. Unset flags leave the criterion off.
type filterFlags struct {
	maxPrice     float64
	minSurface   float64
	propertyType string
	transit      bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.maxPrice, "budget", 0, "maximum price per m²")
	cmd.Flags().Float64Var(&f.minSurface, "min-surface", 0, "minimum surface in m²")
	cmd.Flags().StringVar(&f.propertyType, "type", "", "property type (house|apartment)")
	cmd.Flags().BoolVar(&f.transit, "transit", false, "require at least one transit line serving the territory")
}

func (f *filterFlags) apply(cmd *cobra.Command, s *session.Session) error {
	var opts []filter.Option
	if cmd.Flags().Changed("budget") {
		opts = append(opts, filter.WithMaxBudget(&f.maxPrice))
	}
	if cmd.Flags().Changed("min-surface") {
		opts = append(opts, filter.WithMinSurface(&f.minSurface))
	}
	if cmd.Flags().Changed("type") {
		t := models.ParsePropertyType(f.propertyType)
		if t == models.PropertyOther {
			return NewExitError(ExitCommandError, "invalid --type: must be house or apartment")
		}
		opts = append(opts, filter.WithPropertyType(&t))
	}
	if cmd.Flags().Changed("transit") {
		opts = append(opts, filter.WithRequireTransit(f.transit))
	}
	s.SetFilters(opts...)
	return nil
}

// territoriesAt lists the territories a command reports on: those under the
// current parent at the current scale, the whole catalogue otherwise.
func territoriesAt(s *session.Session, scale models.Scale) []models.Territory {
	if scale == s.Scale() {
		return s.Territories()
	}
	return s.AllTerritories(scale)
}

// lookupError maps session errors to exit codes.
func lookupError(err error) error {
	if errors.Is(err, session.ErrUnknownTerritory) || errors.Is(err, session.ErrInvalidScale) {
		return WrapExitError(ExitCommandError, "lookup failed", err)
	}
	return err
}
