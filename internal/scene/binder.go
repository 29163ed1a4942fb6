package scene

import (
	"image/color"

	"go.uber.org/zap"

	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/logger"
	"github.com/Faultbox/bed-atelier/internal/material"
	"github.com/Faultbox/bed-atelier/pkg/math"
)

// Binder writes configurations into a graph. Applying the same inputs twice
// leaves the graph unchanged.
type Binder struct {
	cat   *catalog.Catalog
	graph *Graph

	textured map[*material.TextureBundle]*Material
	flat     map[bed.Key]*Material
	warned   map[string]bool
}

// NewBinder creates a binder for graph.
func NewBinder(cat *catalog.Catalog, graph *Graph) *Binder {
	return &Binder{
		cat:      cat,
		graph:    graph,
		textured: make(map[*material.TextureBundle]*Material),
		flat:     make(map[bed.Key]*Material),
		warned:   make(map[string]bool),
	}
}

// Graph returns the bound graph.
func (b *Binder) Graph() *Graph {
	return b.graph
}

// Apply brings the graph in line with cfg. resolutions holds the latest
// delivered resolution per slot; one whose key no longer matches the slot's
// selection is ignored.
func (b *Binder) Apply(cfg bed.Configuration, resolutions map[bed.Slot]material.Resolution) {
	for _, slot := range bed.Slots {
		nodes, ok := b.slotNodes(slot)
		if !ok {
			continue
		}

		key := cfg.Selection(slot).Key()
		res, have := resolutions[slot]
		for _, n := range nodes {
			switch {
			case have && res.Key == key:
				n.Material = b.descriptor(res)
			case n.Material == nil:
				n.Material = b.fallback(key, nil)
			}
		}

		if slot == bed.SlotHeadboard {
			b.showVariant(cfg.HeadboardVariant)
		}
	}

	if root := b.node(b.cat.Nodes.Root); root != nil {
		ref := b.cat.Reference
		d := cfg.Dimensions
		root.Scale = math.V3(
			float32(d.Width/ref.Width),
			float32(d.Height/ref.Height),
			float32(d.Length/ref.Length),
		)
	}
}

// slotNodes returns the nodes a slot's material is applied to. A slot with
// any missing node is skipped.
func (b *Binder) slotNodes(slot bed.Slot) ([]*Node, bool) {
	var names []string
	if slot == bed.SlotFrame {
		names = []string{b.cat.Nodes.Frame}
	} else {
		for _, v := range b.cat.Variants {
			names = append(names, v.Node)
		}
	}

	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		n := b.node(name)
		if n == nil {
			return nil, false
		}
		nodes = append(nodes, n)
	}
	return nodes, true
}

// showVariant makes the active variant's node the only visible one.
func (b *Binder) showVariant(id string) {
	for _, v := range b.cat.Variants {
		b.graph.Node(v.Node).Visible = v.ID == id
	}
}

// node looks up a node, warning once per missing name.
func (b *Binder) node(name string) *Node {
	n := b.graph.Node(name)
	if n == nil && !b.warned[name] {
		b.warned[name] = true
		logger.Warn("scene node missing, skipping", zap.String("node", name))
	}
	return n
}

func (b *Binder) descriptor(res material.Resolution) *Material {
	if res.IsFallback() {
		return b.fallback(res.Key, res.Fallback)
	}

	if m, ok := b.textured[res.Bundle]; ok {
		return m
	}

	bundle := res.Bundle
	p := bundle.Properties
	m := &Material{
		Key:          res.Key,
		Color:        color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		BaseMap:      bundle.Map(catalog.ChannelBaseColor),
		NormalMap:    bundle.Map(catalog.ChannelNormal),
		RoughnessMap: bundle.Map(catalog.ChannelRoughness),
		MetallicMap:  bundle.Map(catalog.ChannelMetallic),
		AOMap:        bundle.Map(catalog.ChannelAO),
		Tiling:       Tiling{Repeat: math.Vec2{X: p.Repeat, Y: p.Repeat}},
		NormalScale:  p.NormalScale,
		Roughness:    p.Roughness,
		Metalness:    p.Metalness,
		AOIntensity:  p.AOIntensity,
	}
	b.textured[bundle] = m
	return m
}

// fallback returns the flat descriptor for key. flat overrides the catalog
// lookup when the resolver already built one.
func (b *Binder) fallback(key bed.Key, flat *catalog.FlatMaterial) *Material {
	if m, ok := b.flat[key]; ok {
		return m
	}

	fm := catalog.NeutralMaterial
	if flat != nil {
		fm = *flat
	} else if e, ok := b.cat.Material(key.MaterialType); ok {
		fm = e.FallbackMaterial()
	}

	m := &Material{
		Key:       key,
		Flat:      true,
		Color:     fm.BaseColor,
		Tiling:    Tiling{Repeat: math.Vec2{X: 1, Y: 1}},
		Roughness: fm.Roughness,
		Metalness: fm.Metalness,
	}
	b.flat[key] = m
	return m
}
