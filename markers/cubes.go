package markers

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// CubeListBuilder accumulates occupied cubes into per-size-level buckets
// during a single pass over a map. Level i holds all cubes whose edge
// length is resolution * 2^i.
type CubeListBuilder struct {
	resolution float64
	colorFn    func(z float64) ColorRGBA
	points     [NumLevels][]r3.Vector
	colors     [NumLevels][]ColorRGBA
}

// NewCubeListBuilder creates a builder for cubes on a grid with the given
// finest edge length. sizeHint estimates the total cube count and only
// affects allocation. When colorFn is non-nil, every added cube also gets a
// color derived from its center height.
func NewCubeListBuilder(resolution float64, sizeHint int, colorFn func(z float64) ColorRGBA) (*CubeListBuilder, error) {
	if resolution <= 0 {
		return nil, errors.Errorf("invalid resolution (%f) for cube list builder", resolution)
	}
	b := &CubeListBuilder{resolution: resolution, colorFn: colorFn}

	// rough heuristics for the expected number of cubes at the finest levels
	for i, hint := range []int{sizeHint, sizeHint / 2, sizeHint / 4, sizeHint / 4} {
		b.points[i] = make([]r3.Vector, 0, hint)
		if colorFn != nil {
			b.colors[i] = make([]ColorRGBA, 0, hint)
		}
	}
	return b, nil
}

// LevelFor computes the size level of a cube, rounding half up.
func (b *CubeListBuilder) LevelFor(size float64) int {
	return int(math.Floor(math.Log2(size/b.resolution) + 0.5))
}

// Add buckets one cube by its edge length. A cube whose level falls outside
// [0, NumLevels) breaks the resolution/size relationship the grid assumes
// and is an error, not a cube to skip.
func (b *CubeListBuilder) Add(center r3.Vector, size float64) error {
	idx := b.LevelFor(size)
	if idx < 0 || idx >= NumLevels {
		return errors.Errorf("cube of size %f on a grid of resolution %f classifies to level %d, outside [0, %d)",
			size, b.resolution, idx, NumLevels)
	}
	b.points[idx] = append(b.points[idx], center)
	if b.colorFn != nil {
		b.colors[idx] = append(b.colors[idx], b.colorFn(center.Z))
	}
	return nil
}

// Finalize stamps per-level metadata onto the accumulated buckets and
// returns the complete marker array. Levels holding no cubes get
// ActionDelete so a renderer clears any previous content at that size.
func (b *CubeListBuilder) Finalize(frameID string, stamp time.Time, color ColorRGBA) MarkerArray {
	arr := make(MarkerArray, NumLevels)
	for i := range arr {
		arr[i] = Marker{
			FrameID:   frameID,
			Stamp:     stamp,
			Namespace: Namespace,
			ID:        i,
			Action:    ActionAdd,
			Scale:     b.resolution * float64(uint(1)<<i),
			Color:     color,
			Points:    b.points[i],
			Colors:    b.colors[i],
		}
		if len(b.points[i]) == 0 {
			arr[i].Action = ActionDelete
		}
	}
	return arr
}
