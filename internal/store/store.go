// Package store owns the single mutable bed configuration and notifies
// subscribers after every change.
package store

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/logger"
)

var (
	// ErrUnknownSelector is returned for ids the catalog does not define.
	ErrUnknownSelector = errors.New("unknown selector")
	// ErrInvalidPrice is returned for negative or non-finite unit prices.
	ErrInvalidPrice = errors.New("invalid unit price")
	// ErrReentrantMutation is returned when a subscriber mutates the store.
	ErrReentrantMutation = errors.New("store mutated from a subscriber")
)

// Listener receives the new configuration after a mutation.
type Listener func(bed.Configuration)

type subscription struct {
	id int
	fn Listener
}

// Store holds the current configuration. Mutations validate against the
// catalog, replace the configuration as a whole and notify every subscriber
// in registration order before returning. Store is not safe for concurrent
// use; it belongs to the logic goroutine.
type Store struct {
	cat    *catalog.Catalog
	cfg    bed.Configuration
	preset string

	subs      []subscription
	nextID    int
	notifying bool
}

// New creates a store holding the catalog's default configuration.
func New(cat *catalog.Catalog) *Store {
	s := &Store{cat: cat, cfg: cat.DefaultConfiguration()}
	s.preset = s.matchPreset(s.cfg.Dimensions)
	return s
}

// Current returns the current configuration.
func (s *Store) Current() bed.Configuration {
	return s.cfg
}

// Preset returns the active dimension preset id, or "" after a manual
// dimension change.
func (s *Store) Preset() string {
	return s.preset
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.subs = lo.Reject(s.subs, func(sub subscription, _ int) bool { return sub.id == id })
	}
}

// SelectMaterial binds a material type, color and unit price to slot.
func (s *Store) SelectMaterial(slot bed.Slot, materialType, colorID string, unitPrice float64) error {
	if err := s.checkSlot(slot); err != nil {
		return err
	}
	if unitPrice < 0 || math.IsNaN(unitPrice) || math.IsInf(unitPrice, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, unitPrice)
	}
	key := bed.Key{MaterialType: materialType, ColorID: colorID}
	if _, _, ok := s.cat.ColorOption(key); !ok {
		return fmt.Errorf("%w: material %s", ErrUnknownSelector, key)
	}

	sel := bed.SlotSelection{MaterialType: materialType, ColorID: colorID, UnitPrice: unitPrice}
	return s.commit(s.cfg.WithSelection(slot, sel), s.preset)
}

// SelectMaterialType switches slot to materialType, picking its first color
// and its catalog unit price.
func (s *Store) SelectMaterialType(slot bed.Slot, materialType string) error {
	if err := s.checkSlot(slot); err != nil {
		return err
	}
	entry, ok := s.cat.Material(materialType)
	if !ok {
		return fmt.Errorf("%w: material type %q", ErrUnknownSelector, materialType)
	}
	return s.SelectMaterial(slot, materialType, entry.Colors[0].ID, entry.UnitPrice)
}

// SelectColor changes the color of slot, keeping its material type and price.
func (s *Store) SelectColor(slot bed.Slot, colorID string) error {
	if err := s.checkSlot(slot); err != nil {
		return err
	}
	sel := s.cfg.Selection(slot)
	return s.SelectMaterial(slot, sel.MaterialType, colorID, sel.UnitPrice)
}

// SetDimension sets one axis from raw user input. Input that is not a
// number or lies outside the catalog bounds is replaced by the axis
// default; the mutation still succeeds.
func (s *Store) SetDimension(axis bed.Axis, raw string) error {
	if err := s.checkAxis(axis); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		v = math.NaN()
	}
	return s.setDimension(axis, v, raw)
}

// SetDimensionValue sets one axis from a number, with the same coercion as
// SetDimension.
func (s *Store) SetDimensionValue(axis bed.Axis, v float64) error {
	if err := s.checkAxis(axis); err != nil {
		return err
	}
	return s.setDimension(axis, v, strconv.FormatFloat(v, 'g', -1, 64))
}

func (s *Store) setDimension(axis bed.Axis, v float64, raw string) error {
	if s.notifying {
		return ErrReentrantMutation
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || !s.cat.DimensionBounds.Contains(v) {
		def := s.cat.Defaults.Dimensions.Get(axis)
		logger.Warn("invalid dimension, using default",
			zap.String("axis", string(axis)),
			zap.String("input", raw),
			zap.Float64("default", def),
			zap.Float64("min", s.cat.DimensionBounds.Min),
			zap.Float64("max", s.cat.DimensionBounds.Max))
		v = def
	}

	next := s.cfg
	next.Dimensions = next.Dimensions.With(axis, v)
	return s.commit(next, "")
}

// ApplyPreset sets all dimensions from a named preset.
func (s *Store) ApplyPreset(id string) error {
	p, ok := s.cat.DimensionPreset(id)
	if !ok {
		return fmt.Errorf("%w: dimension preset %q", ErrUnknownSelector, id)
	}

	next := s.cfg
	next.Dimensions = p.Dimensions
	return s.commit(next, p.ID)
}

// SetHeadboardVariant activates a headboard variant.
func (s *Store) SetHeadboardVariant(id string) error {
	if _, ok := s.cat.Variant(id); !ok {
		return fmt.Errorf("%w: headboard variant %q", ErrUnknownSelector, id)
	}

	next := s.cfg
	next.HeadboardVariant = id
	return s.commit(next, s.preset)
}

// SetCameraView selects a camera preset.
func (s *Store) SetCameraView(id string) error {
	if _, ok := s.cat.CameraPreset(id); !ok {
		return fmt.Errorf("%w: camera view %q", ErrUnknownSelector, id)
	}

	next := s.cfg
	next.CameraView = id
	return s.commit(next, s.preset)
}

// commit installs next and notifies subscribers.
func (s *Store) commit(next bed.Configuration, preset string) error {
	if s.notifying {
		return ErrReentrantMutation
	}

	s.cfg = next
	s.preset = preset
	logger.Debug("configuration changed", zap.Stringer("config", next))

	s.notifying = true
	defer func() { s.notifying = false }()

	// Copy so listeners may unsubscribe while being notified.
	subs := append([]subscription(nil), s.subs...)
	for _, sub := range subs {
		sub.fn(next)
	}
	return nil
}

func (s *Store) checkSlot(slot bed.Slot) error {
	if !lo.Contains(bed.Slots, slot) {
		return fmt.Errorf("%w: slot %q", ErrUnknownSelector, slot)
	}
	return nil
}

func (s *Store) checkAxis(axis bed.Axis) error {
	if !lo.Contains(bed.Axes, axis) {
		return fmt.Errorf("%w: axis %q", ErrUnknownSelector, axis)
	}
	return nil
}

func (s *Store) matchPreset(d bed.Dimensions) string {
	p, _ := lo.Find(s.cat.DimensionPresets, func(p catalog.DimensionPreset) bool {
		return p.Dimensions == d
	})
	return p.ID
}
