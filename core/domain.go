package core

// NodeKind discriminates the flavor of a DomainNode. The engine never
// interprets kinds beyond grouping and labeling; parsers own their semantics.
type NodeKind string

const (
	// KindAssembly is a CAD assembly (a container of parts or sub-assemblies).
	KindAssembly NodeKind = "assembly"
	// KindPart is a leaf CAD part.
	KindPart NodeKind = "part"
	// KindSection is a document section.
	KindSection NodeKind = "section"
	// KindCodeElement is a source-code element (package, type, function).
	KindCodeElement NodeKind = "code_element"
)

// GeometryInfo carries the geometric summary counts attached to CAD parts.
// Counts are summaries produced by the upstream parser, never raw meshes.
type GeometryInfo struct {
	VertexCount int `json:"vertex_count"`
	EdgeCount   int `json:"edge_count"`
	FaceCount   int `json:"face_count"`
}

// DomainNode is one element of a parsed engineering artifact. Nodes form a
// tree: the child list must be acyclic and identifiers must be unique across
// the whole tree materialized for a run. The engine treats trees as
// read-only; parsers are responsible for upholding both invariants.
type DomainNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Kind     NodeKind       `json:"kind"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Geometry *GeometryInfo  `json:"geometry,omitempty"`
	Children []*DomainNode  `json:"children,omitempty"`
}

// IsContainer reports whether the node can meaningfully contain children.
func (n *DomainNode) IsContainer() bool {
	return n.Kind == KindAssembly || n.Kind == KindSection
}

// AttrString returns the named attribute as a string, or "" when absent or
// of a different type.
func (n *DomainNode) AttrString(key string) string {
	if s, ok := n.Attrs[key].(string); ok {
		return s
	}
	return ""
}

// Walk visits the node and its descendants depth-first in child order,
// passing the parent (nil for the root) alongside each node. Traversal stops
// early when fn returns false.
func (n *DomainNode) Walk(fn func(node, parent *DomainNode) bool) {
	walk(n, nil, fn)
}

func walk(n, parent *DomainNode, fn func(node, parent *DomainNode) bool) bool {
	if !fn(n, parent) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, n, fn) {
			return false
		}
	}
	return true
}

// WalkForest applies Walk over a slice of root nodes.
func WalkForest(roots []*DomainNode, fn func(node, parent *DomainNode) bool) {
	for _, r := range roots {
		if !walk(r, nil, fn) {
			return
		}
	}
}

// CountNodes returns the total number of nodes in the forest.
func CountNodes(roots []*DomainNode) int {
	n := 0
	WalkForest(roots, func(*DomainNode, *DomainNode) bool { n++; return true })
	return n
}

// CountEdges returns the number of parent/child edges in the forest.
func CountEdges(roots []*DomainNode) int {
	n := 0
	WalkForest(roots, func(node, parent *DomainNode) bool {
		if parent != nil {
			n++
		}
		return true
	})
	return n
}
