package classgen

import "sort"

// Node is one class in a declared hierarchy.
type Node struct {
	Name     string  `json:"name" yaml:"name"`
	Parent   string  `json:"parent,omitempty" yaml:"parent,omitempty"`
	File     string  `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int     `json:"line,omitempty" yaml:"line,omitempty"`
	External bool    `json:"external,omitempty" yaml:"external,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Hierarchy builds the class forest declared by outputs. Parents that are
// not annotated in outputs (other packages, plain structs) appear as
// external roots. Roots and children are sorted by name.
func Hierarchy(outputs []*Output) []*Node {
	nodes := map[string]*Node{}
	var decls []*Decl
	for _, out := range outputs {
		for _, d := range out.Decls {
			nodes[d.Name] = &Node{Name: d.Name, Parent: d.ParentSrc, File: d.Pos.Filename, Line: d.Pos.Line}
			decls = append(decls, d)
		}
	}

	var roots []*Node
	for _, d := range decls {
		n := nodes[d.Name]
		if d.Kind != KindInherit {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[d.ParentSrc]
		if !ok {
			parent = &Node{Name: d.ParentSrc, External: true}
			nodes[d.ParentSrc] = parent
			roots = append(roots, parent)
		}
		parent.Children = append(parent.Children, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Depth returns the number of levels below n, 0 for a leaf.
func (n *Node) Depth() int {
	max := 0
	for _, c := range n.Children {
		if d := c.Depth() + 1; d > max {
			max = d
		}
	}
	return max
}
