// Package catalog holds the static product data: materials and their
// texture channels, headboard variants, camera presets and dimension presets.
// A Catalog is immutable once loaded.
package catalog

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/pkg/math"
)

// DefaultFallbackColor is used when an entry does not declare its own flat color.
const DefaultFallbackColor = "#808080"

// Channel names one texture map of a material.
type Channel string

const (
	ChannelBaseColor    Channel = "base_color"
	ChannelNormal       Channel = "normal"
	ChannelRoughness    Channel = "roughness"
	ChannelMetallic     Channel = "metallic"
	ChannelAO           Channel = "ao"
	ChannelDisplacement Channel = "displacement"
)

// ChannelPaths are the asset names of a color option's texture maps.
// Only BaseColor is required.
type ChannelPaths struct {
	BaseColor    string `yaml:"base_color"`
	Normal       string `yaml:"normal,omitempty"`
	Roughness    string `yaml:"roughness,omitempty"`
	Metallic     string `yaml:"metallic,omitempty"`
	AO           string `yaml:"ao,omitempty"`
	Displacement string `yaml:"displacement,omitempty"`
}

// ChannelPath pairs a channel with its asset name.
type ChannelPath struct {
	Channel Channel
	Path    string
}

// Declared returns the non-empty channels in a fixed order.
func (p ChannelPaths) Declared() []ChannelPath {
	all := []ChannelPath{
		{ChannelBaseColor, p.BaseColor},
		{ChannelNormal, p.Normal},
		{ChannelRoughness, p.Roughness},
		{ChannelMetallic, p.Metallic},
		{ChannelAO, p.AO},
		{ChannelDisplacement, p.Displacement},
	}
	return lo.Filter(all, func(c ChannelPath, _ int) bool { return c.Path != "" })
}

// ColorOption is one selectable color of a material type.
type ColorOption struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Channels ChannelPaths `yaml:"channels"`
}

// RenderProperties are the surface parameters shared by every color of a type.
type RenderProperties struct {
	Roughness   float32 `yaml:"roughness"`
	Metalness   float32 `yaml:"metalness"`
	NormalScale float32 `yaml:"normal_scale"`
	Repeat      float32 `yaml:"repeat"`
	AOIntensity float32 `yaml:"ao_intensity"`
}

// Fallback describes the flat material shown when textures cannot be loaded.
// Nil roughness/metalness inherit the entry's render properties.
type Fallback struct {
	Color     string   `yaml:"color"`
	Roughness *float32 `yaml:"roughness,omitempty"`
	Metalness *float32 `yaml:"metalness,omitempty"`
}

// FlatMaterial is a resolved, untextured surface.
type FlatMaterial struct {
	BaseColor color.RGBA
	Roughness float32
	Metalness float32
}

// NeutralMaterial is the flat material for selections the catalog does not
// know.
var NeutralMaterial = FlatMaterial{
	BaseColor: color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	Roughness: 1,
}

// Entry is one material type.
type Entry struct {
	Type       string           `yaml:"type"`
	Name       string           `yaml:"name"`
	UnitPrice  float64          `yaml:"unit_price"`
	Colors     []ColorOption    `yaml:"colors"`
	Properties RenderProperties `yaml:"properties"`
	Fallback   Fallback         `yaml:"fallback"`

	flat FlatMaterial
}

// Color looks up a color option by id.
func (e *Entry) Color(id string) (ColorOption, bool) {
	return lo.Find(e.Colors, func(c ColorOption) bool { return c.ID == id })
}

// FallbackMaterial returns the entry's flat fallback surface.
func (e *Entry) FallbackMaterial() FlatMaterial {
	return e.flat
}

// Variant is one mutually exclusive headboard design.
type Variant struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Node        string `yaml:"node"`
}

// CameraPreset is a named resting camera pose.
type CameraPreset struct {
	ID       string    `yaml:"id"`
	Label    string    `yaml:"label"`
	Position math.Vec3 `yaml:"position"`
	Target   math.Vec3 `yaml:"target"`
}

// DimensionPreset is a named standard bed size.
type DimensionPreset struct {
	ID         string         `yaml:"id"`
	Label      string         `yaml:"label"`
	Dimensions bed.Dimensions `yaml:"dimensions"`
}

// Bounds is the accepted range for every dimension axis.
type Bounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies within the bounds (inclusive).
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Nodes names the scene nodes the binder drives besides the variants.
type Nodes struct {
	Root  string `yaml:"root"`
	Frame string `yaml:"frame"`
}

// Defaults is the configuration a session starts with.
type Defaults struct {
	Frame      bed.Key        `yaml:"frame"`
	Headboard  bed.Key        `yaml:"headboard"`
	Dimensions bed.Dimensions `yaml:"dimensions"`
	Variant    string         `yaml:"variant"`
	View       string         `yaml:"view"`
}

// Catalog is the complete static product description.
type Catalog struct {
	Materials        []*Entry          `yaml:"materials"`
	Variants         []Variant         `yaml:"variants"`
	CameraPresets    []CameraPreset    `yaml:"cameras"`
	DimensionPresets []DimensionPreset `yaml:"dimension_presets"`
	DimensionBounds  Bounds            `yaml:"dimension_bounds"`
	Reference        bed.Dimensions    `yaml:"reference"`
	Nodes            Nodes             `yaml:"nodes"`
	Defaults         Defaults          `yaml:"defaults"`

	byType map[string]*Entry
}

// Material looks up an entry by material type.
func (c *Catalog) Material(materialType string) (*Entry, bool) {
	e, ok := c.byType[materialType]
	return e, ok
}

// MaterialTypes returns the material types in catalog order.
func (c *Catalog) MaterialTypes() []string {
	return lo.Map(c.Materials, func(e *Entry, _ int) string { return e.Type })
}

// ColorOption resolves a key to its entry and color option.
func (c *Catalog) ColorOption(key bed.Key) (*Entry, ColorOption, bool) {
	e, ok := c.Material(key.MaterialType)
	if !ok {
		return nil, ColorOption{}, false
	}
	opt, ok := e.Color(key.ColorID)
	return e, opt, ok
}

// Variant looks up a headboard variant by id.
func (c *Catalog) Variant(id string) (Variant, bool) {
	return lo.Find(c.Variants, func(v Variant) bool { return v.ID == id })
}

// CameraPreset looks up a camera preset by id.
func (c *Catalog) CameraPreset(id string) (CameraPreset, bool) {
	return lo.Find(c.CameraPresets, func(p CameraPreset) bool { return p.ID == id })
}

// DimensionPreset looks up a dimension preset by id.
func (c *Catalog) DimensionPreset(id string) (DimensionPreset, bool) {
	return lo.Find(c.DimensionPresets, func(p DimensionPreset) bool { return p.ID == id })
}

// DefaultConfiguration builds the configuration a session starts with.
func (c *Catalog) DefaultConfiguration() bed.Configuration {
	return bed.Configuration{
		Frame:            c.defaultSelection(c.Defaults.Frame),
		Headboard:        c.defaultSelection(c.Defaults.Headboard),
		Dimensions:       c.Defaults.Dimensions,
		HeadboardVariant: c.Defaults.Variant,
		CameraView:       c.Defaults.View,
	}
}

func (c *Catalog) defaultSelection(key bed.Key) bed.SlotSelection {
	sel := bed.SlotSelection{MaterialType: key.MaterialType, ColorID: key.ColorID}
	if e, ok := c.Material(key.MaterialType); ok {
		sel.UnitPrice = e.UnitPrice
	}
	return sel
}

// init validates the catalog and builds lookup tables. Every problem is
// reported, not just the first.
func (c *Catalog) init() error {
	var errs error

	if len(c.Materials) == 0 {
		errs = multierr.Append(errs, errors.New("no materials"))
	}
	c.byType = make(map[string]*Entry, len(c.Materials))
	for _, e := range c.Materials {
		if e == nil || e.Type == "" {
			errs = multierr.Append(errs, errors.New("material without type"))
			continue
		}
		if _, dup := c.byType[e.Type]; dup {
			errs = multierr.Append(errs, fmt.Errorf("duplicate material type %q", e.Type))
			continue
		}
		c.byType[e.Type] = e
		errs = multierr.Append(errs, e.init())
	}

	if len(c.Variants) == 0 {
		errs = multierr.Append(errs, errors.New("no headboard variants"))
	}
	if dups := lo.FindDuplicatesBy(c.Variants, func(v Variant) string { return v.ID }); len(dups) > 0 {
		errs = multierr.Append(errs, fmt.Errorf("duplicate variant id %q", dups[0].ID))
	}
	for _, v := range c.Variants {
		if v.Node == "" {
			errs = multierr.Append(errs, fmt.Errorf("variant %q has no scene node", v.ID))
		}
	}

	if len(c.CameraPresets) == 0 {
		errs = multierr.Append(errs, errors.New("no camera presets"))
	}
	if c.DimensionBounds.Min <= 0 || c.DimensionBounds.Min >= c.DimensionBounds.Max {
		errs = multierr.Append(errs, fmt.Errorf("invalid dimension bounds %v..%v", c.DimensionBounds.Min, c.DimensionBounds.Max))
	}
	if c.Reference.Width <= 0 || c.Reference.Height <= 0 || c.Reference.Length <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("reference dimensions must be positive, got %+v", c.Reference))
	}
	if c.Nodes.Root == "" || c.Nodes.Frame == "" {
		errs = multierr.Append(errs, errors.New("root and frame node names are required"))
	}

	errs = multierr.Append(errs, c.validateDefaults())
	return errs
}

func (c *Catalog) validateDefaults() error {
	var errs error
	for _, key := range []bed.Key{c.Defaults.Frame, c.Defaults.Headboard} {
		if _, _, ok := c.ColorOption(key); !ok {
			errs = multierr.Append(errs, fmt.Errorf("default selection %s not in catalog", key))
		}
	}
	if _, ok := c.Variant(c.Defaults.Variant); !ok {
		errs = multierr.Append(errs, fmt.Errorf("default variant %q not in catalog", c.Defaults.Variant))
	}
	if _, ok := c.CameraPreset(c.Defaults.View); !ok {
		errs = multierr.Append(errs, fmt.Errorf("default view %q not in catalog", c.Defaults.View))
	}
	for _, axis := range bed.Axes {
		if v := c.Defaults.Dimensions.Get(axis); !c.DimensionBounds.Contains(v) {
			errs = multierr.Append(errs, fmt.Errorf("default %s %v outside bounds", axis, v))
		}
	}
	return errs
}

func (e *Entry) init() error {
	var errs error
	if len(e.Colors) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("material %q has no colors", e.Type))
	}
	for _, c := range e.Colors {
		if c.Channels.BaseColor == "" {
			errs = multierr.Append(errs, fmt.Errorf("material %q color %q has no base color map", e.Type, c.ID))
		}
	}
	if e.UnitPrice < 0 {
		errs = multierr.Append(errs, fmt.Errorf("material %q has negative unit price", e.Type))
	}
	if e.Properties.Repeat == 0 {
		e.Properties.Repeat = 1
	}

	hex := e.Fallback.Color
	if hex == "" {
		hex = DefaultFallbackColor
	}
	parsed, err := colorful.Hex(hex)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("material %q fallback color: %w", e.Type, err))
	}
	r, g, b := parsed.RGB255()
	e.flat = FlatMaterial{
		BaseColor: color.RGBA{R: r, G: g, B: b, A: 255},
		Roughness: e.Properties.Roughness,
		Metalness: e.Properties.Metalness,
	}
	if e.Fallback.Roughness != nil {
		e.flat.Roughness = *e.Fallback.Roughness
	}
	if e.Fallback.Metalness != nil {
		e.flat.Metalness = *e.Fallback.Metalness
	}
	return errs
}
