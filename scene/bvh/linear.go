package bvh

import (
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
)

// LinearNode is the 32-byte GPU representation of a BVH node. The layout
// matches the following std430 struct:
//
//	struct Node {
//		vec3 boundsMin;
//		uint offset;
//		vec3 boundsMax;
//		uint packed;
//	};
//
// Leafs have a non-zero primitive count and offset points to their first
// triangle. Interior nodes have a zero primitive count; their first child
// is always stored right after them and offset points to the second child.
type LinearNode struct {
	Min    types.Vec3
	Offset uint32
	Max    types.Vec3

	// Bits 0-7: primitive count, bits 8-15: split axis.
	packed uint32
}

// Create a leaf node.
func NewLeafNode(bounds scene.Bounds, firstPrimOffset, numPrimitives uint32) LinearNode {
	return LinearNode{
		Min:    bounds.Min,
		Max:    bounds.Max,
		Offset: firstPrimOffset,
		packed: numPrimitives & 0xff,
	}
}

// Create an interior node.
func NewInteriorNode(bounds scene.Bounds, secondChild uint32, axis scene.Axis) LinearNode {
	return LinearNode{
		Min:    bounds.Min,
		Max:    bounds.Max,
		Offset: secondChild,
		packed: uint32(axis) << 8,
	}
}

// Bounds returns the node bounding box.
func (n LinearNode) Bounds() scene.Bounds {
	return scene.Bounds{Min: n.Min, Max: n.Max}
}

// NumPrimitives returns the number of triangles in a leaf; 0 for interior nodes.
func (n LinearNode) NumPrimitives() uint32 {
	return n.packed & 0xff
}

// SplitAxis returns the axis used for partitioning an interior node.
func (n LinearNode) SplitAxis() scene.Axis {
	return scene.Axis((n.packed >> 8) & 0xff)
}

// IsLeaf returns true if this node references triangles.
func (n LinearNode) IsLeaf() bool {
	return n.NumPrimitives() > 0
}

// Flatten the build tree into b.nodes using a depth-first pre-order walk.
func (b *builder) flattenTree(root *buildNode) {
	b.nodes = make([]LinearNode, 0, b.totalNodes)
	b.flatten(root)
}

// Append node and its subtree to the linear node list and return the index
// assigned to node.
func (b *builder) flatten(node *buildNode) uint32 {
	index := uint32(len(b.nodes))
	if node.isLeaf() {
		b.nodes = append(b.nodes, NewLeafNode(node.bounds, uint32(node.firstPrimOffset), uint32(node.numPrimitives)))
		return index
	}

	b.nodes = append(b.nodes, LinearNode{})
	b.flatten(node.children[0])
	secondChild := b.flatten(node.children[1])
	b.nodes[index] = NewInteriorNode(node.bounds, secondChild, node.splitAxis)
	return index
}

// A callback invoked for each leaf reachable from the root. The callback
// receives the leaf index, the leaf node and its depth.
type LeafVisitor func(index uint32, leaf LinearNode, depth int)

// VisitLeaves walks the flattened tree starting at the root using the same
// leaf/interior discrimination rules as the GPU traversal code and invokes
// visitor for every leaf. Leafs are visited in first-child-first order.
func VisitLeaves(nodes []LinearNode, visitor LeafVisitor) {
	if len(nodes) == 0 {
		return
	}

	type entry struct {
		index uint32
		depth int
	}

	stack := make([]entry, 1, 64)
	stack[0] = entry{0, 0}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := nodes[e.index]
		if node.IsLeaf() {
			visitor(e.index, node, e.depth)
			continue
		}

		// Push second child first so the first child is processed next
		stack = append(stack,
			entry{node.Offset, e.depth + 1},
			entry{e.index + 1, e.depth + 1},
		)
	}
}
