package assembly

import (
	"sort"

	"github.com/rdszhao/cadkg/core"
	"github.com/rdszhao/cadkg/internal/util"
)

// GeometryRecord is the geometry analyst's view of one part.
type GeometryRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Vertices int    `json:"vertices"`
	Edges    int    `json:"edges"`
	Faces    int    `json:"faces"`
}

// HierarchyNode is the depth-capped projection sent to the hierarchy mapper.
// Truncated marks nodes whose children were cut by the depth cap, so the
// specialist can tell a capped subtree apart from a genuine leaf.
type HierarchyNode struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	IsAssembly bool            `json:"is_assembly"`
	Truncated  bool            `json:"truncated,omitempty"`
	Children   []HierarchyNode `json:"children"`
}

// HierarchyPayload wraps the capped set of root subtrees.
type HierarchyPayload struct {
	Assemblies []HierarchyNode `json:"assemblies"`
}

// ComponentRecord is the component classifier's view of one node.
type ComponentRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ShapeType  string `json:"shape_type,omitempty"`
	IsAssembly bool   `json:"is_assembly"`
}

// SpatialPart is one member of an assembly group.
type SpatialPart struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// SpatialGroup is one assembly with a bounded sample of its direct children,
// the unit of context for the spatial relations analyst.
type SpatialGroup struct {
	AssemblyID   string        `json:"assembly_id"`
	AssemblyName string        `json:"assembly_name"`
	Parts        []SpatialPart `json:"parts"`
}

// LabelRecord is the properties extractor's view of one node.
type LabelRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShapeType string `json:"shape_type,omitempty"`
	Level     int    `json:"level"`
}

// PrepareGeometry projects the trees into the top parts by vertex count,
// descending. Ties break on id so the same tree always yields the same
// payload bytes.
func PrepareGeometry(roots []*core.DomainNode, limit int) []GeometryRecord {
	records := []GeometryRecord{}
	core.WalkForest(roots, func(node, _ *core.DomainNode) bool {
		if node.Geometry == nil {
			return true
		}
		records = append(records, GeometryRecord{
			ID:       node.ID,
			Name:     node.Name,
			Vertices: node.Geometry.VertexCount,
			Edges:    node.Geometry.EdgeCount,
			Faces:    node.Geometry.FaceCount,
		})
		return true
	})

	sort.Slice(records, func(i, j int) bool {
		if records[i].Vertices != records[j].Vertices {
			return records[i].Vertices > records[j].Vertices
		}
		return records[i].ID < records[j].ID
	})
	return util.Head(records, limit)
}

// PrepareHierarchy projects up to rootCap root subtrees, each cut at
// depthCap levels. Subtrees cut by the cap are flagged truncated rather
// than silently emptied.
func PrepareHierarchy(roots []*core.DomainNode, depthCap, rootCap int) HierarchyPayload {
	capped := util.Head(roots, rootCap)
	assemblies := make([]HierarchyNode, 0, len(capped))
	for _, root := range capped {
		assemblies = append(assemblies, simplifyNode(root, depthCap, 0))
	}
	return HierarchyPayload{Assemblies: assemblies}
}

func simplifyNode(node *core.DomainNode, depthCap, depth int) HierarchyNode {
	out := HierarchyNode{
		ID:         node.ID,
		Name:       node.Name,
		IsAssembly: node.IsContainer(),
		Children:   []HierarchyNode{},
	}
	if depth >= depthCap {
		out.Truncated = len(node.Children) > 0
		return out
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, simplifyNode(child, depthCap, depth+1))
	}
	return out
}

// PrepareComponents projects every node in preorder, capped at limit.
func PrepareComponents(roots []*core.DomainNode, limit int) []ComponentRecord {
	components := []ComponentRecord{}
	core.WalkForest(roots, func(node, _ *core.DomainNode) bool {
		components = append(components, ComponentRecord{
			ID:         node.ID,
			Name:       node.Name,
			ShapeType:  node.AttrString("shape_type"),
			IsAssembly: node.IsContainer(),
		})
		return true
	})
	return util.Head(components, limit)
}

// PrepareSpatial collects assemblies that have children, each with a bounded
// sample of direct children, capped at groupLimit groups.
func PrepareSpatial(roots []*core.DomainNode, groupLimit, childLimit int) []SpatialGroup {
	groups := []SpatialGroup{}
	core.WalkForest(roots, func(node, _ *core.DomainNode) bool {
		if !node.IsContainer() || len(node.Children) == 0 {
			return true
		}
		parts := make([]SpatialPart, 0, childLimit)
		for _, child := range util.Head(node.Children, childLimit) {
			parts = append(parts, SpatialPart{
				ID:   child.ID,
				Name: child.Name,
				Type: child.AttrString("shape_type"),
			})
		}
		groups = append(groups, SpatialGroup{
			AssemblyID:   node.ID,
			AssemblyName: node.Name,
			Parts:        parts,
		})
		return true
	})
	return util.Head(groups, groupLimit)
}

// PreparePropertyLabels projects node labels with their tree level, capped
// at limit.
func PreparePropertyLabels(roots []*core.DomainNode, limit int) []LabelRecord {
	labels := []LabelRecord{}
	levels := map[string]int{}
	for _, root := range roots {
		markLevels(root, 0, levels)
	}
	core.WalkForest(roots, func(node, _ *core.DomainNode) bool {
		labels = append(labels, LabelRecord{
			ID:        node.ID,
			Name:      node.Name,
			ShapeType: node.AttrString("shape_type"),
			Level:     levels[node.ID],
		})
		return true
	})
	return util.Head(labels, limit)
}

func markLevels(node *core.DomainNode, depth int, levels map[string]int) {
	levels[node.ID] = depth
	for _, child := range node.Children {
		markLevels(child, depth+1, levels)
	}
}
