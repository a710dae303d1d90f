package comparison

import (
	"dvfmap/internal/models"

	"github.com/sirupsen/logrus"
)

// Capacity is the maximum number of zones compared side by side.
const Capacity = 3

// Set represents the bounded, ordered selection of zones to compare
type Set struct {
	zones    []models.ComparisonZone
	maxSize  int
	active   bool
	logger   *logrus.Logger
	handlers []func([]models.ComparisonZone)
}

// NewSet creates an empty comparison set. A nil logger is replaced by a
// JSON logger on stdout.
func NewSet(logger *logrus.Logger) *Set {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Set{
		zones:    make([]models.ComparisonZone, 0, Capacity),
		maxSize:  Capacity,
		logger:   logger,
		handlers: make([]func([]models.ComparisonZone), 0),
	}
}

// CanAdd reports whether there is room for another zone
func (s *Set) CanAdd() bool {
	return len(s.zones) < s.maxSize
}

// Contains checks identity by zone id only
func (s *Set) Contains(id string) bool {
	return s.indexOf(id) >= 0
}

func (s *Set) indexOf(id string) int {
	for i, z := range s.zones {
		if z.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a snapshot of zone. It returns false and leaves the set
// untouched when the set is full or the id is already present.
func (s *Set) Add(zone models.ComparisonZone) bool {
	if !s.CanAdd() {
		s.logger.WithField("zone_id", zone.ID).Debug("Comparison set is full")
		return false
	}
	if s.Contains(zone.ID) {
		s.logger.WithField("zone_id", zone.ID).Debug("Zone already in comparison set")
		return false
	}

	s.zones = append(s.zones, zone.Clone())
	s.logger.WithFields(logrus.Fields{
		"zone_id": zone.ID,
		"scale":   zone.Scale.String(),
		"size":    len(s.zones),
	}).Debug("Added zone to comparison set")
	s.notify()
	return true
}

// Remove drops the zone with the given id, false if it was not there
func (s *Set) Remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.zones = append(s.zones[:i], s.zones[i+1:]...)
	s.notify()
	return true
}

// Clear empties the set unconditionally
func (s *Set) Clear() {
	s.zones = s.zones[:0]
	s.notify()
}

// ToggleMode flips whether map clicks select zones for comparison instead
// of drilling down. It returns the new state.
func (s *Set) ToggleMode() bool {
	s.active = !s.active
	return s.active
}

// IsActive returns whether comparison mode is on
func (s *Set) IsActive() bool {
	return s.active
}

// Zones returns deep copies of the zones in insertion order
func (s *Set) Zones() []models.ComparisonZone {
	out := make([]models.ComparisonZone, len(s.zones))
	for i, z := range s.zones {
		out[i] = z.Clone()
	}
	return out
}

// Len returns the current number of zones
func (s *Set) Len() int {
	return len(s.zones)
}

// Subscribe adds a handler called with the zones after every change
func (s *Set) Subscribe(handler func([]models.ComparisonZone)) {
	s.handlers = append(s.handlers, handler)
}

func (s *Set) notify() {
	if len(s.handlers) == 0 {
		return
	}
	zones := s.Zones()
	for _, handler := range s.handlers {
		handler(zones)
	}
}
