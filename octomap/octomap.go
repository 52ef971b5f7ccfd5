// Package octomap implements a 3D occupancy octree compatible with the
// compact binary map exchange format, along with the load and query
// operations needed to serve a previously built map.
package octomap

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Each node in the tree is either an internal node linking to up to eight
// octants, a free leaf, or an occupied leaf. Leaves above the finest depth
// represent pruned cubes covering their whole octant.
const (
	internalNode = nodeType(iota)
	leafNodeFree
	leafNodeOccupied
)

type nodeType uint8

// treeDepth is the fixed maximum depth of the tree. The root cube spans
// resolution * 2^treeDepth per side, centered on the origin.
const treeDepth = 16

// Volume is a single occupied cube reported during enumeration: its center
// and edge length in metric units.
type Volume struct {
	Center r3.Vector
	Size   float64
}

type ocTreeNode struct {
	nodeType nodeType
	children [8]*ocTreeNode
}

// OcTree is a fixed-depth occupancy octree. It is read-only after loading;
// SetOccupied exists to build trees programmatically.
type OcTree struct {
	logger     golog.Logger
	root       *ocTreeNode
	resolution float64
}

// NewEmpty creates an empty octree with the given finest voxel edge length.
func NewEmpty(resolution float64, logger golog.Logger) (*OcTree, error) {
	if resolution <= 0 {
		return nil, errors.Errorf("invalid resolution (%f) for octree", resolution)
	}
	return &OcTree{
		logger:     logger,
		root:       &ocTreeNode{nodeType: internalNode},
		resolution: resolution,
	}, nil
}

// Resolution returns the finest voxel edge length.
func (t *OcTree) Resolution() float64 {
	return t.resolution
}

// rootSide is the edge length of the cube spanned by the whole tree.
func (t *OcTree) rootSide() float64 {
	return t.resolution * float64(uint(1)<<treeDepth)
}

// SetOccupied marks the finest-resolution voxel containing p as occupied.
// Octants that become fully occupied are pruned into a single larger leaf so
// enumeration reports maximal cubes.
func (t *OcTree) SetOccupied(p r3.Vector) error {
	half := t.rootSide() / 2
	if math.Abs(p.X) >= half || math.Abs(p.Y) >= half || math.Abs(p.Z) >= half {
		return errors.Errorf("point (%f, %f, %f) is outside the bounds of this octree", p.X, p.Y, p.Z)
	}
	setOccupied(t.root, r3.Vector{}, t.rootSide(), treeDepth, p)
	return nil
}

func setOccupied(n *ocTreeNode, center r3.Vector, side float64, depth int, p r3.Vector) {
	i := childIndex(center, p)
	child := n.children[i]
	if child != nil && child.nodeType == leafNodeOccupied {
		// already covered by a pruned leaf
		return
	}
	if depth == 1 {
		n.children[i] = &ocTreeNode{nodeType: leafNodeOccupied}
		return
	}
	if child == nil || child.nodeType != internalNode {
		inner := &ocTreeNode{nodeType: internalNode}
		if child != nil && child.nodeType == leafNodeFree {
			for j := range inner.children {
				inner.children[j] = &ocTreeNode{nodeType: leafNodeFree}
			}
		}
		child = inner
		n.children[i] = child
	}
	setOccupied(child, childCenter(center, side, i), side/2, depth-1, p)

	// prune a fully occupied octant into one leaf
	for _, c := range child.children {
		if c == nil || c.nodeType != leafNodeOccupied {
			return
		}
	}
	n.children[i] = &ocTreeNode{nodeType: leafNodeOccupied}
}

// childIndex picks the octant of p relative to center. Bit 0 is the X half,
// bit 1 the Y half, bit 2 the Z half; a set bit means the positive side.
func childIndex(center, p r3.Vector) int {
	i := 0
	if p.X >= center.X {
		i |= 1
	}
	if p.Y >= center.Y {
		i |= 2
	}
	if p.Z >= center.Z {
		i |= 4
	}
	return i
}

func childCenter(center r3.Vector, side float64, i int) r3.Vector {
	off := side / 4
	c := r3.Vector{X: center.X - off, Y: center.Y - off, Z: center.Z - off}
	if i&1 != 0 {
		c.X = center.X + off
	}
	if i&2 != 0 {
		c.Y = center.Y + off
	}
	if i&4 != 0 {
		c.Z = center.Z + off
	}
	return c
}

// IterateOccupied enumerates every occupied volume in a stable depth-first
// order and calls fn for each. If fn returns false, iteration stops.
func (t *OcTree) IterateOccupied(fn func(v Volume) bool) {
	iterateOccupied(t.root, r3.Vector{}, t.rootSide(), fn)
}

func iterateOccupied(n *ocTreeNode, center r3.Vector, side float64, fn func(v Volume) bool) bool {
	switch n.nodeType {
	case internalNode:
		for i, child := range n.children {
			if child == nil {
				continue
			}
			if !iterateOccupied(child, childCenter(center, side, i), side/2, fn) {
				return false
			}
		}
	case leafNodeOccupied:
		return fn(Volume{Center: center, Size: side})
	case leafNodeFree:
	}
	return true
}

// Size returns the total number of nodes in the tree. An empty tree has
// size 0.
func (t *OcTree) Size() int {
	n := countNodes(t.root)
	if n == 1 {
		return 0
	}
	return n
}

func countNodes(n *ocTreeNode) int {
	count := 1
	for _, child := range n.children {
		if child != nil {
			count += countNodes(child)
		}
	}
	return count
}

// NumOccupied returns the number of occupied volumes the tree enumerates.
func (t *OcTree) NumOccupied() int {
	count := 0
	t.IterateOccupied(func(v Volume) bool {
		count++
		return true
	})
	return count
}

// MetricBounds returns the per-axis metric extent of all occupied volumes,
// including their half-cube extents. The second return is false when the
// tree holds no occupied volumes.
func (t *OcTree) MetricBounds() (min, max r3.Vector, ok bool) {
	min = r3.Vector{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	max = r3.Vector{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}
	t.IterateOccupied(func(v Volume) bool {
		ok = true
		half := v.Size / 2
		min.X = math.Min(min.X, v.Center.X-half)
		min.Y = math.Min(min.Y, v.Center.Y-half)
		min.Z = math.Min(min.Z, v.Center.Z-half)
		max.X = math.Max(max.X, v.Center.X+half)
		max.Y = math.Max(max.Y, v.Center.Y+half)
		max.Z = math.Max(max.Z, v.Center.Z+half)
		return true
	})
	if !ok {
		return r3.Vector{}, r3.Vector{}, false
	}
	return min, max, true
}
