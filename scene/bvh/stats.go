package bvh

// Stats summarizes the shape of a flattened BVH.
type Stats struct {
	Nodes      int
	Leafs      int
	Interior   int
	Primitives int
	MaxDepth   int

	MinLeafPrimitives int
	MaxLeafPrimitives int

	// Sum of node surface areas relative to the root surface area.
	RelativeArea float32
}

// AvgLeafPrimitives returns the mean number of triangles per leaf.
func (s Stats) AvgLeafPrimitives() float32 {
	if s.Leafs == 0 {
		return 0
	}
	return float32(s.Primitives) / float32(s.Leafs)
}

// Collect statistics for a flattened BVH.
func CollectStats(nodes []LinearNode) Stats {
	stats := Stats{Nodes: len(nodes)}
	if len(nodes) == 0 {
		return stats
	}

	rootArea := nodes[0].Bounds().SurfaceArea()
	var totalArea float32
	for _, node := range nodes {
		totalArea += node.Bounds().SurfaceArea()
		if !node.IsLeaf() {
			stats.Interior++
		}
	}
	if rootArea > 0 {
		stats.RelativeArea = totalArea / rootArea
	}

	VisitLeaves(nodes, func(_ uint32, leaf LinearNode, depth int) {
		count := int(leaf.NumPrimitives())
		stats.Leafs++
		stats.Primitives += count
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		if stats.MinLeafPrimitives == 0 || count < stats.MinLeafPrimitives {
			stats.MinLeafPrimitives = count
		}
		if count > stats.MaxLeafPrimitives {
			stats.MaxLeafPrimitives = count
		}
	})

	return stats
}
