// Package session holds the mutable state of one exploration: navigation,
// filters and the comparison set, over read-only indexes and catalogues.
package session

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"dvfmap/internal/aggregator"
	"dvfmap/internal/comparison"
	"dvfmap/internal/filter"
	"dvfmap/internal/models"
)

var (
	ErrUnknownTerritory = errors.New("unknown territory")
	ErrInvalidScale     = errors.New("invalid scale")
)

// TransitLookup answers which lines serve a zone. geometry.Matcher is the
// production implementation.
type TransitLookup interface {
	LinesServingZone(zone orb.Geometry) []models.TransitLine
}

type Options struct {
	Transactions []models.Transaction
	// Territories of any scale. Scales without a catalogue fall back on the
	// codes found in the transactions.
	Territories []models.Territory
	Transit     TransitLookup
	Logger      *logrus.Logger
}

type Session struct {
	ID     string
	logger *logrus.Entry

	transactions []models.Transaction
	indexes      *aggregator.Indexes
	territories  map[models.Scale][]models.Territory
	byCode       map[models.Scale]map[string]models.Territory
	transit      TransitLookup

	filters    *filter.Engine
	comparison *comparison.Set

	scale models.Scale
	path  []string
}

func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	id := uuid.NewString()
	s := &Session{
		ID:           id,
		logger:       logger.WithField("session", id),
		transactions: opts.Transactions,
		indexes:      aggregator.BuildIndexes(opts.Transactions),
		territories:  make(map[models.Scale][]models.Territory),
		byCode:       make(map[models.Scale]map[string]models.Territory),
		transit:      opts.Transit,
		filters:      filter.NewEngine(),
		comparison:   comparison.NewSet(logger),
		scale:        models.ScaleDepartment,
	}

	for _, t := range opts.Territories {
		if s.byCode[t.Scale] == nil {
			s.byCode[t.Scale] = make(map[string]models.Territory)
		}
		if _, dup := s.byCode[t.Scale][t.Code]; dup {
			continue
		}
		s.byCode[t.Scale][t.Code] = t
		s.territories[t.Scale] = append(s.territories[t.Scale], t)
	}

	s.logger.WithFields(logrus.Fields{
		"transactions": len(opts.Transactions),
		"departments":  len(s.indexes.ByDept),
		"communes":     len(s.indexes.ByCommune),
		"sections":     len(s.indexes.BySection),
	}).Info("Session ready")
	return s
}

// Scale returns the scale currently displayed.
func (s *Session) Scale() models.Scale {
	return s.scale
}

// Parent returns the code of the territory drilled into, or "" at the top.
func (s *Session) Parent() string {
	if len(s.path) == 0 {
		return ""
	}
	return s.path[len(s.path)-1]
}

// DrillDown moves to the children of code, which must be a territory of the
// current scale.
func (s *Session) DrillDown(code string) error {
	child, ok := s.scale.Child()
	if !ok {
		return fmt.Errorf("%w: cannot drill below %s", ErrInvalidScale, s.scale)
	}
	if _, err := s.Territory(s.scale, code); err != nil {
		return err
	}

	s.path = append(s.path, code)
	s.scale = child
	s.logger.WithFields(logrus.Fields{
		"code":  code,
		"scale": child.String(),
	}).Debug("Drilled down")
	return nil
}

// Back returns to the parent scale. It is false at the top.
func (s *Session) Back() bool {
	if len(s.path) == 0 {
		return false
	}
	s.path = s.path[:len(s.path)-1]
	switch s.scale {
	case models.ScaleSection:
		s.scale = models.ScaleCommune
	default:
		s.scale = models.ScaleDepartment
	}
	return true
}

// Select routes a map click. In comparison mode the zone is added to the
// comparison set, otherwise the session drills into it. The boolean is
// false when the comparison set refused the zone.
func (s *Session) Select(code string) (bool, error) {
	if s.comparison.IsActive() {
		return s.AddToComparison(s.scale, code)
	}
	if err := s.DrillDown(code); err != nil {
		return false, err
	}
	return true, nil
}

// Territory returns a catalogued territory, or one synthesised from the
// transaction index when the scale has no catalogue entry for code.
func (s *Session) Territory(scale models.Scale, code string) (models.Territory, error) {
	if t, ok := s.byCode[scale][code]; ok {
		return t, nil
	}
	if txs := s.indexes.Lookup(scale, code); len(txs) > 0 {
		return models.Territory{Code: code, Name: nameFromTransactions(scale, code, txs), Scale: scale}, nil
	}
	return models.Territory{}, fmt.Errorf("%w: %s %q", ErrUnknownTerritory, scale, code)
}

func nameFromTransactions(scale models.Scale, code string, txs []models.Transaction) string {
	if scale == models.ScaleCommune {
		for _, tx := range txs {
			if tx.CommuneName != "" {
				return tx.CommuneName
			}
		}
	}
	return code
}

// AllTerritories returns the whole catalogue of a scale.
func (s *Session) AllTerritories(scale models.Scale) []models.Territory {
	if catalog := s.territories[scale]; len(catalog) > 0 {
		out := make([]models.Territory, len(catalog))
		copy(out, catalog)
		return out
	}

	codes := s.indexes.Codes(scale)
	sort.Strings(codes)
	out := make([]models.Territory, 0, len(codes))
	for _, code := range codes {
		t, err := s.Territory(scale, code)
		if err == nil {
			out = append(out, t)
		}
	}
	return out
}

// Territories returns the territories of the current scale inside the
// current parent. Communes belong to the department of their first two
// digits and sections to the commune their code starts with.
func (s *Session) Territories() []models.Territory {
	all := s.AllTerritories(s.scale)
	parent := s.Parent()
	if parent == "" {
		return all
	}

	out := make([]models.Territory, 0, len(all))
	for _, t := range all {
		if strings.HasPrefix(t.Code, parent) {
			out = append(out, t)
		}
	}
	return out
}
