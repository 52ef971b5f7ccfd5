// Package mapserver builds an immutable visualization snapshot from a
// loaded occupancy octree and serves it repeatedly without recomputation.
package mapserver

import "go.viam.com/octoserve/markers"

// Config is the build configuration. It is read once at startup and frozen
// into the snapshot.
type Config struct {
	// FrameID is the coordinate frame tag stamped onto the markers and the
	// binary map payload.
	FrameID string
	// UseHeightMap colors each cube by its center height instead of the
	// fixed Color.
	UseHeightMap bool
	// ColorFactor scales the normalized height fed to the gradient.
	ColorFactor float64
	// Color is the fixed base color of the markers.
	Color markers.ColorRGBA
}

// DefaultConfig returns the standard map server configuration.
func DefaultConfig() Config {
	return Config{
		FrameID:      "/map",
		UseHeightMap: true,
		ColorFactor:  0.8,
		Color:        markers.ColorRGBA{R: 0, G: 0, B: 1, A: 1},
	}
}
