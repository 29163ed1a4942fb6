package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a catalog from a YAML file. Sections missing from the file are
// taken from the built-in catalog, so a file may declare only materials.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	base := Builtin()
	if len(c.Materials) == 0 {
		c.Materials = base.Materials
	}
	if len(c.Variants) == 0 {
		c.Variants = base.Variants
	}
	if len(c.CameraPresets) == 0 {
		c.CameraPresets = base.CameraPresets
	}
	if len(c.DimensionPresets) == 0 {
		c.DimensionPresets = base.DimensionPresets
	}
	if c.DimensionBounds == (Bounds{}) {
		c.DimensionBounds = base.DimensionBounds
	}
	if c.Reference.Width == 0 && c.Reference.Height == 0 && c.Reference.Length == 0 {
		c.Reference = base.Reference
	}
	if c.Nodes == (Nodes{}) {
		c.Nodes = base.Nodes
	}
	if c.Defaults == (Defaults{}) {
		c.Defaults = base.Defaults
	}

	if err := c.init(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}
