// Package bed defines the product configuration shared by the store, the
// price calculator and the scene binder.
package bed

import "fmt"

// Slot is a named binding point whose material is chosen independently.
type Slot string

const (
	SlotFrame     Slot = "frame"
	SlotHeadboard Slot = "headboard"
)

// Slots lists every slot in binding order.
var Slots = []Slot{SlotFrame, SlotHeadboard}

// ParseSlot converts user input to a Slot.
func ParseSlot(s string) (Slot, bool) {
	switch Slot(s) {
	case SlotFrame, SlotHeadboard:
		return Slot(s), true
	}
	return "", false
}

// Axis names one of the three bed dimensions.
type Axis string

const (
	AxisWidth  Axis = "width"
	AxisHeight Axis = "height"
	AxisLength Axis = "length"
)

// Axes lists the dimension axes in display order.
var Axes = []Axis{AxisWidth, AxisHeight, AxisLength}

// ParseAxis converts user input to an Axis.
func ParseAxis(s string) (Axis, bool) {
	switch Axis(s) {
	case AxisWidth, AxisHeight, AxisLength:
		return Axis(s), true
	}
	return "", false
}

// Dimensions are bed measurements in centimeters.
type Dimensions struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
	Length float64 `yaml:"length" json:"length"`
}

// Get returns the value along an axis.
func (d Dimensions) Get(axis Axis) float64 {
	switch axis {
	case AxisWidth:
		return d.Width
	case AxisHeight:
		return d.Height
	case AxisLength:
		return d.Length
	}
	return 0
}

// With returns a copy of d with one axis replaced.
func (d Dimensions) With(axis Axis, v float64) Dimensions {
	switch axis {
	case AxisWidth:
		d.Width = v
	case AxisHeight:
		d.Height = v
	case AxisLength:
		d.Length = v
	}
	return d
}

// Key identifies a material/color pair; resolved bundles are cached per key.
type Key struct {
	MaterialType string `yaml:"material_type"`
	ColorID      string `yaml:"color_id"`
}

func (k Key) String() string {
	return k.MaterialType + "/" + k.ColorID
}

// SlotSelection is the material chosen for one slot.
type SlotSelection struct {
	MaterialType string  `yaml:"material_type" json:"materialType"`
	ColorID      string  `yaml:"color_id" json:"colorId"`
	UnitPrice    float64 `yaml:"unit_price" json:"unitPrice"`
}

// Key returns the cache key of the selection.
func (s SlotSelection) Key() Key {
	return Key{MaterialType: s.MaterialType, ColorID: s.ColorID}
}

// Configuration is the complete product selection. It is a value type:
// the store replaces it wholesale on every mutation.
type Configuration struct {
	Frame            SlotSelection
	Headboard        SlotSelection
	Dimensions       Dimensions
	HeadboardVariant string
	CameraView       string
}

// Selection returns the selection bound to a slot.
func (c Configuration) Selection(slot Slot) SlotSelection {
	if slot == SlotHeadboard {
		return c.Headboard
	}
	return c.Frame
}

// WithSelection returns a copy of c with the slot's selection replaced.
func (c Configuration) WithSelection(slot Slot, sel SlotSelection) Configuration {
	switch slot {
	case SlotFrame:
		c.Frame = sel
	case SlotHeadboard:
		c.Headboard = sel
	}
	return c
}

func (c Configuration) String() string {
	return fmt.Sprintf("frame=%s headboard=%s %gx%gx%g variant=%s view=%s",
		c.Frame.Key(), c.Headboard.Key(),
		c.Dimensions.Width, c.Dimensions.Height, c.Dimensions.Length,
		c.HeadboardVariant, c.CameraView)
}
