// Package scene holds the node graph the configurator drives and the binder
// that writes a configuration into it.
package scene

import (
	"fmt"
	"image/color"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/bed-atelier/internal/bed"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/texture"
	"github.com/Faultbox/bed-atelier/pkg/math"
)

// Tiling is how a material's maps repeat across the surface.
type Tiling struct {
	Repeat math.Vec2
}

// Material is the shading descriptor assigned to nodes. Descriptors are
// shared between nodes and treated as immutable.
type Material struct {
	Key bed.Key
	// Flat materials carry no maps, only Color.
	Flat  bool
	Color color.RGBA

	BaseMap      *texture.Map
	NormalMap    *texture.Map
	RoughnessMap *texture.Map
	MetallicMap  *texture.Map
	AOMap        *texture.Map
	Tiling       Tiling

	NormalScale float32
	Roughness   float32
	Metalness   float32
	AOIntensity float32
}

// Node is a named node of a pre-loaded graph. Only its material, visibility
// and scale are changed by the configurator.
type Node struct {
	Name     string
	Material *Material
	Visible  bool
	Scale    math.Vec3
}

// NodeState is a comparable snapshot of a node.
type NodeState struct {
	Material *Material
	Visible  bool
	Scale    math.Vec3
}

// Graph is a flat, name-indexed set of nodes.
type Graph struct {
	root  string
	nodes map[string]*Node
}

// NewGraph creates a graph with the given root and additional nodes. New
// nodes are visible, unscaled and have no material.
func NewGraph(root string, names ...string) *Graph {
	g := &Graph{root: root, nodes: make(map[string]*Node, len(names)+1)}
	g.add(root)
	for _, name := range names {
		g.add(name)
	}
	return g
}

func (g *Graph) add(name string) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := &Node{Name: name, Visible: true, Scale: math.V3(1, 1, 1)}
	g.nodes[name] = n
	return n
}

// FromCatalog builds the graph a catalog expects: root, frame and one node
// per headboard variant.
func FromCatalog(cat *catalog.Catalog) *Graph {
	names := []string{cat.Nodes.Frame}
	for _, v := range cat.Variants {
		names = append(names, v.Node)
	}
	return NewGraph(cat.Nodes.Root, names...)
}

// Root returns the root node's name.
func (g *Graph) Root() string {
	return g.root
}

// Node returns the named node, or nil.
func (g *Graph) Node(name string) *Node {
	return g.nodes[name]
}

// Names returns all node names, sorted.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State snapshots every node.
func (g *Graph) State() map[string]NodeState {
	state := make(map[string]NodeState, len(g.nodes))
	for name, n := range g.nodes {
		state[name] = NodeState{Material: n.Material, Visible: n.Visible, Scale: n.Scale}
	}
	return state
}

// manifest is the YAML form of a graph.
type manifest struct {
	Root  string `yaml:"root"`
	Nodes []struct {
		Name    string `yaml:"name"`
		Visible *bool  `yaml:"visible,omitempty"`
	} `yaml:"nodes"`
}

// ParseManifest builds a graph from YAML.
func ParseManifest(data []byte) (*Graph, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing scene manifest: %w", err)
	}
	if m.Root == "" {
		return nil, fmt.Errorf("scene manifest has no root")
	}

	g := NewGraph(m.Root)
	for i, node := range m.Nodes {
		if node.Name == "" {
			return nil, fmt.Errorf("scene manifest node %d has no name", i)
		}
		n := g.add(node.Name)
		if node.Visible != nil {
			n.Visible = *node.Visible
		}
	}
	return g, nil
}

// LoadManifest reads a graph from a YAML file.
func LoadManifest(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene manifest: %w", err)
	}
	return ParseManifest(data)
}
