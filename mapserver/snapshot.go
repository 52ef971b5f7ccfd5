package mapserver

import (
	"math"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/octoserve/markers"
	"go.viam.com/octoserve/octomap"
)

// BinaryMap is the opaque serialized occupancy map tagged with the frame it
// lives in.
type BinaryMap struct {
	FrameID string `json:"frame_id"`
	Data    []byte `json:"data"`
}

// Snapshot is the complete output of one conversion pass: the per-level
// cube markers, the serialized map, and build metadata. It is never mutated
// after BuildSnapshot returns.
type Snapshot struct {
	Markers     markers.MarkerArray
	Map         BinaryMap
	NumNodes    int
	NumOccupied int
	BuiltAt     time.Time
}

// BuildSnapshot runs a single pass over the tree's occupied volumes,
// buckets them by cube size, colors them per cfg, and assembles the
// snapshot. Any failure produces no snapshot at all.
func BuildSnapshot(tree *octomap.OcTree, cfg Config, logger golog.Logger) (*Snapshot, error) {
	var colorFn func(z float64) markers.ColorRGBA
	if cfg.UseHeightMap {
		min, max, ok := tree.MetricBounds()
		if ok {
			zMin, zMax := min.Z, max.Z
			colorFn = func(z float64) markers.ColorRGBA {
				return markers.HeightMapColor(normalizedHeight(z, zMin, zMax) * cfg.ColorFactor)
			}
		} else {
			colorFn = func(z float64) markers.ColorRGBA {
				return markers.HeightMapColor(0.5 * cfg.ColorFactor)
			}
		}
	}

	builder, err := markers.NewCubeListBuilder(tree.Resolution(), tree.NumOccupied(), colorFn)
	if err != nil {
		return nil, err
	}

	numVoxels := 0
	var addErr error
	tree.IterateOccupied(func(v octomap.Volume) bool {
		if addErr = builder.Add(v.Center, v.Size); addErr != nil {
			return false
		}
		numVoxels++
		return true
	})
	if addErr != nil {
		return nil, errors.Wrap(addErr, "occupied volume violates the level bucketing invariant")
	}

	data, err := tree.MarshalBinary()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	snap := &Snapshot{
		Markers:     builder.Finalize(cfg.FrameID, now, cfg.Color),
		Map:         BinaryMap{FrameID: cfg.FrameID, Data: data},
		NumNodes:    tree.Size(),
		NumOccupied: numVoxels,
		BuiltAt:     now,
	}
	logger.Infof("octree converted (%d nodes, %d occupied visualized)", snap.NumNodes, snap.NumOccupied)
	return snap, nil
}

// normalizedHeight maps z into [0, 1] within the given bounds. A degenerate
// range pins the result to the midpoint instead of dividing by zero.
func normalizedHeight(z, zMin, zMax float64) float64 {
	if zMax <= zMin {
		return 0.5
	}
	return math.Min(math.Max((z-zMin)/(zMax-zMin), 0), 1)
}
