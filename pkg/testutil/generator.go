// Package testutil provides deterministic inventory fixtures and a fake
// backend for tests. All generators produce the same output for the same
// seed.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed             int64     // Random seed for determinism (0 = use current time)
	IDPrefix         string    // Prefix for node IDs (default: "loc")
	BaseTime         time.Time // Base time for timestamps (default: fixed time)
	ItemsPerLocation int       // Item leaves attached to each location
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		IDPrefix: "loc",
		BaseTime: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Generator creates trees and inventories of a requested shape.
type Generator struct {
	cfg    GeneratorConfig
	rng    *rand.Rand
	nextID int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "loc"
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

var (
	placeNames = []string{"Garage", "Attic", "Basement", "Kitchen", "Office", "Shed", "Closet", "Pantry", "Workshop", "Hallway"}
	spotNames  = []string{"Shelf", "Drawer", "Cabinet", "Box", "Bin", "Rack", "Crate", "Tray"}
	itemNames  = []string{"Hammer", "Drill", "Tape measure", "Flashlight", "Extension cord", "Glue gun", "Ladder", "Toolbox", "Sander", "Level"}
)

func (g *Generator) id(prefix string) string {
	g.nextID++
	return fmt.Sprintf("%s-%d", prefix, g.nextID)
}

func (g *Generator) locationName(depth int) string {
	if depth == 0 {
		return placeNames[g.rng.Intn(len(placeNames))]
	}
	return fmt.Sprintf("%s %d", spotNames[g.rng.Intn(len(spotNames))], g.rng.Intn(9)+1)
}

func (g *Generator) items() []model.TreeNode {
	var out []model.TreeNode
	for i := 0; i < g.cfg.ItemsPerLocation; i++ {
		out = append(out, model.TreeNode{
			ID:   g.id("item"),
			Name: itemNames[g.rng.Intn(len(itemNames))],
			Kind: model.KindItem,
		})
	}
	return out
}

// Tree creates a location tree with the given depth and branching factor.
// depth 1 yields only roots. Item leaves follow each location's children.
func (g *Generator) Tree(depth, breadth int) []model.TreeNode {
	if depth < 1 {
		depth = 1
	}
	if breadth < 1 {
		breadth = 1
	}
	var build func(level int) []model.TreeNode
	build = func(level int) []model.TreeNode {
		nodes := make([]model.TreeNode, 0, breadth)
		for i := 0; i < breadth; i++ {
			n := model.TreeNode{
				ID:   g.id(g.cfg.IDPrefix),
				Name: g.locationName(level),
				Kind: model.KindLocation,
			}
			if level+1 < depth {
				n.Children = build(level + 1)
			}
			n.Children = append(n.Children, g.items()...)
			nodes = append(nodes, n)
		}
		return nodes
	}
	return build(0)
}

// Chain creates a single path of nested locations, depth nodes long.
func (g *Generator) Chain(depth int) []model.TreeNode {
	if depth < 1 {
		return []model.TreeNode{}
	}
	n := model.TreeNode{ID: g.id(g.cfg.IDPrefix), Name: g.locationName(0), Kind: model.KindLocation}
	if depth > 1 {
		n.Children = g.Chain(depth - 1)
	}
	return []model.TreeNode{n}
}

// Inventory generates a FakeServer seed: depth x breadth locations, each
// holding ItemsPerLocation items, plus the given labels.
func (g *Generator) Inventory(depth, breadth int, labels ...string) Inventory {
	inv := Inventory{}
	for _, name := range labels {
		inv.Labels = append(inv.Labels, model.Label{ID: g.id("label"), Name: name, CreatedAt: g.cfg.BaseTime})
	}
	var walk func(parent string, level int)
	walk = func(parent string, level int) {
		for i := 0; i < breadth; i++ {
			loc := model.Location{
				ID:        g.id(g.cfg.IDPrefix),
				Name:      g.locationName(level),
				CreatedAt: g.cfg.BaseTime.Add(time.Duration(g.nextID) * time.Minute),
			}
			loc.UpdatedAt = loc.CreatedAt
			inv.Locations = append(inv.Locations, SeedLocation{Location: loc, ParentID: parent})
			for j := 0; j < g.cfg.ItemsPerLocation; j++ {
				item := model.Item{
					ID:            g.id("item"),
					Name:          itemNames[g.rng.Intn(len(itemNames))],
					Quantity:      g.rng.Intn(5) + 1,
					PurchasePrice: float64(g.rng.Intn(10000)) / 100,
					Location:      &model.Location{ID: loc.ID, Name: loc.Name},
					CreatedAt:     loc.CreatedAt,
					UpdatedAt:     loc.CreatedAt,
				}
				if len(inv.Labels) > 0 {
					item.Labels = []model.Label{inv.Labels[g.rng.Intn(len(inv.Labels))]}
				}
				inv.Items = append(inv.Items, item)
			}
			if level+1 < depth {
				walk(loc.ID, level+1)
			}
		}
	}
	walk("", 0)
	return inv
}

// GarageTree is the small fixture used across tests:
//
//	Garage (a)
//	├── Shelf 1 (b)
//	└── Tools (c)
func GarageTree() []model.TreeNode {
	return []model.TreeNode{
		{ID: "a", Name: "Garage", Kind: model.KindLocation, Children: []model.TreeNode{
			{ID: "b", Name: "Shelf 1", Kind: model.KindLocation, Children: []model.TreeNode{}},
			{ID: "c", Name: "Tools", Kind: model.KindLocation, Children: []model.TreeNode{}},
		}},
	}
}

// QuickTree creates a default-seeded tree.
func QuickTree(depth, breadth int) []model.TreeNode {
	return NewDefault().Tree(depth, breadth)
}
