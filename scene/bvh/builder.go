package bvh

import (
	"fmt"
	"time"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
)

type SplitMethod uint8

const (
	// Bucketed surface area heuristic. Ranges with few primitives fall back
	// to an equal count split.
	SplitSAH SplitMethod = iota

	// Split each range at the median centroid along the axis of maximum
	// centroid extent.
	SplitEqualCounts
)

const (
	// The packed node layout reserves 8 bits for the leaf primitive count.
	MaxLeafPrimitives = 255

	// Ranges with at most this many primitives skip SAH evaluation.
	smallRangeThreshold = 4

	numBuckets = 12

	// Relative cost of traversing an interior node vs intersecting a primitive.
	traversalCost float32 = 0.125
)

func (m SplitMethod) String() string {
	switch m {
	case SplitSAH:
		return "sah"
	case SplitEqualCounts:
		return "equal-counts"
	}
	return fmt.Sprintf("SplitMethod(%d)", uint8(m))
}

// Parse a split method name.
func ParseSplitMethod(name string) (SplitMethod, error) {
	switch name {
	case "sah", "":
		return SplitSAH, nil
	case "equal-counts", "equal":
		return SplitEqualCounts, nil
	}
	return SplitSAH, fmt.Errorf("bvh: unknown split method %q", name)
}

// A node of the build-time tree. Leafs have numPrimitives > 0.
type buildNode struct {
	bounds    scene.Bounds
	children  [2]*buildNode
	splitAxis scene.Axis

	// Offset into the ordered triangle list and number of triangles.
	firstPrimOffset int
	numPrimitives   int

	// Start of the primitive info range that formed this leaf.
	primStart int
}

func (n *buildNode) isLeaf() bool {
	return n.numPrimitives > 0
}

type bucket struct {
	count  int
	bounds scene.Bounds
}

type builder struct {
	logger log.Logger

	maxPrimsInNode int
	splitMethod    SplitMethod

	triangles []asset.Triangle
	primInfo  []PrimitiveInfo

	// Triangles re-ordered so that each leaf references a contiguous range.
	ordered []asset.Triangle

	// Scratch space for stable partitioning.
	scratch []PrimitiveInfo

	// Flattened tree.
	nodes []LinearNode

	totalNodes int
	leafs      int
	maxDepth   int
}

// Build constructs a BVH over the supplied triangles. It returns a copy of the
// triangle list reordered so that the primitives of each leaf are stored
// contiguously, and the flattened tree with the root at index 0.
//
// Building from an empty triangle list yields no nodes; callers must check
// the node count before uploading or traversing the tree.
func Build(vertices []asset.Vertex, triangles []asset.Triangle, maxPrimsPerNode int, splitMethod SplitMethod) ([]asset.Triangle, []LinearNode) {
	b := newBuilder(vertices, triangles, maxPrimsPerNode, splitMethod)
	if len(triangles) == 0 {
		b.logger.Debug("no triangles supplied; skipping BVH construction")
		return nil, nil
	}

	start := time.Now()
	root := b.recursiveBuild(0, len(b.primInfo), 0)
	b.flattenTree(root)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.maxDepth, b.totalNodes, b.leafs,
	)

	return b.ordered, b.nodes
}

func newBuilder(vertices []asset.Vertex, triangles []asset.Triangle, maxPrimsPerNode int, splitMethod SplitMethod) *builder {
	if maxPrimsPerNode > MaxLeafPrimitives {
		maxPrimsPerNode = MaxLeafPrimitives
	} else if maxPrimsPerNode < 1 {
		maxPrimsPerNode = 1
	}

	return &builder{
		logger:         log.New("bvh builder"),
		maxPrimsInNode: maxPrimsPerNode,
		splitMethod:    splitMethod,
		triangles:      triangles,
		primInfo:       primitiveInfos(vertices, triangles),
		ordered:        make([]asset.Triangle, 0, len(triangles)),
		scratch:        make([]PrimitiveInfo, 0, len(triangles)),
	}
}

// Partition primitive range [start, end) and return the subtree root.
func (b *builder) recursiveBuild(start, end, depth int) *buildNode {
	b.totalNodes++
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	bounds := scene.EmptyBounds()
	for i := start; i < end; i++ {
		bounds = bounds.Union(b.primInfo[i].Bounds)
	}

	numPrims := end - start
	if numPrims == 1 {
		return b.createLeaf(bounds, start, end)
	}

	centroidBounds := scene.EmptyBounds()
	for i := start; i < end; i++ {
		centroidBounds = centroidBounds.UnionPoint(b.primInfo[i].Centroid)
	}
	axis := centroidBounds.MaximumExtent()

	var mid int
	switch {
	case centroidBounds.IsDegenerate(axis):
		// All centroids coincide so no split can separate them
		if numPrims <= MaxLeafPrimitives {
			return b.createLeaf(bounds, start, end)
		}
		mid = start + numPrims/2
	case b.splitMethod == SplitEqualCounts:
		if numPrims <= b.maxPrimsInNode {
			return b.createLeaf(bounds, start, end)
		}
		mid = b.splitEqualCounts(start, end, axis)
	case numPrims <= smallRangeThreshold:
		mid = b.splitEqualCounts(start, end, axis)
	default:
		var split bool
		mid, split = b.splitSAH(start, end, bounds, centroidBounds, axis)
		if !split {
			return b.createLeaf(bounds, start, end)
		}
	}

	left := b.recursiveBuild(start, mid, depth+1)
	right := b.recursiveBuild(mid, end, depth+1)
	return &buildNode{
		bounds:    left.bounds.Union(right.bounds),
		children:  [2]*buildNode{left, right},
		splitAxis: axis,
	}
}

// Setup a leaf for primitive range [start, end) and append its triangles
// to the ordered triangle list.
func (b *builder) createLeaf(bounds scene.Bounds, start, end int) *buildNode {
	node := &buildNode{
		bounds:          bounds,
		firstPrimOffset: len(b.ordered),
		numPrimitives:   end - start,
		primStart:       start,
	}
	for i := start; i < end; i++ {
		b.ordered = append(b.ordered, b.triangles[b.primInfo[i].Index])
	}

	b.leafs++
	return node
}

// Partially sort the range so that the element at the midpoint is in its
// sorted position along axis and return the midpoint.
func (b *builder) splitEqualCounts(start, end int, axis scene.Axis) int {
	mid := (start + end) / 2
	nthElement(b.primInfo[start:end], mid-start, axis)
	return mid
}

// Evaluate the bucketed SAH along axis. If splitting is cheaper than
// creating a leaf (or the range is too large for a leaf) the primitive
// range is partitioned and the split position is returned.
func (b *builder) splitSAH(start, end int, bounds, centroidBounds scene.Bounds, axis scene.Axis) (int, bool) {
	var buckets [numBuckets]bucket
	for i := range buckets {
		buckets[i].bounds = scene.EmptyBounds()
	}

	for i := start; i < end; i++ {
		bi := bucketIndex(centroidBounds, b.primInfo[i].Centroid, axis)
		buckets[bi].count++
		buckets[bi].bounds = buckets[bi].bounds.Union(b.primInfo[i].Bounds)
	}

	totalArea := bounds.SurfaceArea()
	if totalArea <= 0 {
		totalArea = 1
	}

	minCost := float32(0)
	minCostBucket := -1
	for split := 0; split < numBuckets-1; split++ {
		b0, b1 := scene.EmptyBounds(), scene.EmptyBounds()
		count0, count1 := 0, 0
		for j := 0; j <= split; j++ {
			b0 = b0.Union(buckets[j].bounds)
			count0 += buckets[j].count
		}
		for j := split + 1; j < numBuckets; j++ {
			b1 = b1.Union(buckets[j].bounds)
			count1 += buckets[j].count
		}

		cost := traversalCost + (float32(count0)*b0.SurfaceArea()+float32(count1)*b1.SurfaceArea())/totalArea
		if minCostBucket == -1 || cost < minCost {
			minCost = cost
			minCostBucket = split
		}
	}

	numPrims := end - start
	leafCost := float32(numPrims)
	if numPrims <= b.maxPrimsInNode && minCost >= leafCost {
		return 0, false
	}

	mid := b.stablePartition(start, end, func(pi PrimitiveInfo) bool {
		return bucketIndex(centroidBounds, pi.Centroid, axis) <= minCostBucket
	})
	return mid, true
}

// Reorder range [start, end) so that entries satisfying pred come first
// while preserving the relative order within both groups. Returns the
// index of the first entry that does not satisfy pred.
func (b *builder) stablePartition(start, end int, pred func(PrimitiveInfo) bool) int {
	b.scratch = b.scratch[:0]
	for i := start; i < end; i++ {
		if pred(b.primInfo[i]) {
			b.scratch = append(b.scratch, b.primInfo[i])
		}
	}
	mid := start + len(b.scratch)
	for i := start; i < end; i++ {
		if !pred(b.primInfo[i]) {
			b.scratch = append(b.scratch, b.primInfo[i])
		}
	}
	copy(b.primInfo[start:end], b.scratch)
	return mid
}

func bucketIndex(centroidBounds scene.Bounds, centroid types.Vec3, axis scene.Axis) int {
	bi := int(numBuckets * centroidBounds.Offset(centroid)[axis])
	if bi >= numBuckets {
		bi = numBuckets - 1
	}
	return bi
}

// Quickselect: rearrange prims so that the element at index n is the one
// that would be there if the slice was sorted by centroid along axis, with
// no larger element before it and no smaller element after it.
func nthElement(prims []PrimitiveInfo, n int, axis scene.Axis) {
	lo, hi := 0, len(prims)-1
	for lo < hi {
		pivot := prims[(lo+hi)/2].Centroid[axis]
		i, j := lo, hi
		for i <= j {
			for prims[i].Centroid[axis] < pivot {
				i++
			}
			for prims[j].Centroid[axis] > pivot {
				j--
			}
			if i <= j {
				prims[i], prims[j] = prims[j], prims[i]
				i++
				j--
			}
		}

		switch {
		case n <= j:
			hi = j
		case n >= i:
			lo = i
		default:
			return
		}
	}
}
