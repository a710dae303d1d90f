package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"dvfmap/config"
	"dvfmap/internal/dataset"
	"dvfmap/internal/geometry"
	"dvfmap/internal/models"
	"dvfmap/internal/session"
)

// catalogs gathers the optional reference data of a session. Each field is
// written by exactly one loader goroutine.
type catalogs struct {
	territories [models.ScaleSection + 1][]models.Territory
	lines       []models.TransitLine
	stops       []models.TransitStop
	colors      []models.TransitLine
}

// openSession loads every configured dataset and builds a session over it.
// Transactions are required. Boundaries, transit data and line colours are
// optional: a missing file is logged and the matching feature degrades.
func openSession(opts *RootOptions) (*session.Session, error) {
	cfg := opts.Config
	logger := opts.Logger
	loader := dataset.NewLoader(dataset.LoaderOptions{
		SimplifyTolerance: cfg.Geometry.SimplifyTolerance,
	}, logger)

	var (
		cat  catalogs
		errs [7]error
		wg   sync.WaitGroup
	)
	run := func(slot int, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[slot] = fn()
		}()
	}

	run(0, func() error {
		return loadTerritories(loader, logger, cfg.Data.DepartmentsPath, models.ScaleDepartment, &cat.territories[models.ScaleDepartment])
	})
	run(1, func() error {
		return loadTerritories(loader, logger, cfg.Data.CommunesPath, models.ScaleCommune, &cat.territories[models.ScaleCommune])
	})
	run(2, func() error {
		if strings.EqualFold(filepath.Ext(cfg.Data.SectionsPath), ".shp") {
			return loadSectionsShapefile(loader, logger, cfg, &cat.territories[models.ScaleSection])
		}
		return loadTerritories(loader, logger, cfg.Data.SectionsPath, models.ScaleSection, &cat.territories[models.ScaleSection])
	})
	run(3, func() error {
		return optional(logger, cfg.Data.TransitLinesPath, func(f *os.File) (err error) {
			cat.lines, _, err = loader.LoadTransitLines(f)
			return err
		})
	})
	run(4, func() error {
		return optional(logger, cfg.Data.TransitStopsPath, func(f *os.File) (err error) {
			cat.stops, _, err = loader.LoadTransitStops(f)
			return err
		})
	})
	run(5, func() error {
		colors, err := config.LoadLineColors(cfg.Data.LineColorsPath)
		if errors.Is(err, fs.ErrNotExist) {
			logger.WithField("path", cfg.Data.LineColorsPath).Warn("Line colours not found, using dataset colours")
			return nil
		}
		cat.colors = colors
		return err
	})

	var transactions []models.Transaction
	run(6, func() error {
		f, err := os.Open(cfg.Data.TransactionsPath)
		if err != nil {
			return fmt.Errorf("failed to open transactions: %w", err)
		}
		defer f.Close()
		transactions, _, err = loader.LoadTransactions(f)
		return err
	})

	wg.Wait()
	if err := errors.Join(errs[:]...); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load datasets", err)
	}

	// Loaded boundaries come first so they win over the built-in list.
	var territories []models.Territory
	for _, scaled := range cat.territories {
		territories = append(territories, scaled...)
	}
	territories = append(territories, config.DepartmentTerritories()...)

	var transit session.TransitLookup
	if len(cat.stops) > 0 {
		// Official colours first: colour lookup is first match.
		catalog := append(append([]models.TransitLine{}, cat.colors...), cat.lines...)
		transit = geometry.NewMatcher(cat.stops, catalog, geometry.MatcherOptions{
			BufferMeters:     cfg.Transit.BufferMeters,
			GeohashPrecision: cfg.Transit.GeohashPrecision,
		}, logger)
	}

	return session.New(session.Options{
		Transactions: transactions,
		Territories:  territories,
		Transit:      transit,
		Logger:       logger,
	}), nil
}

// optional opens path and hands it to load. A missing file is not an error.
func optional(logger *logrus.Logger, path string, load func(f *os.File) error) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.WithField("path", path).Warn("Optional dataset not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := load(f); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadTerritories(loader *dataset.Loader, logger *logrus.Logger, path string, scale models.Scale, out *[]models.Territory) error {
	return optional(logger, path, func(f *os.File) (err error) {
		*out, _, err = loader.LoadTerritories(f, scale)
		return err
	})
}

func loadSectionsShapefile(loader *dataset.Loader, logger *logrus.Logger, cfg *config.Config, out *[]models.Territory) error {
	path := cfg.Data.SectionsPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.WithField("path", path).Warn("Optional dataset not found, skipping")
		return nil
	}

	sections, _, err := loader.LoadTerritoriesShapefile(path, models.ScaleSection, cfg.Data.SectionsCodeField, cfg.Data.SectionsNameField)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	*out = sections
	return nil
}
