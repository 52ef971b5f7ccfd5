package markers

import (
	"time"

	"github.com/golang/geo/r3"
)

// NumLevels is the number of cube-size levels a marker array holds, one per
// possible tree depth.
const NumLevels = 16

// Namespace tags every marker produced from an occupancy map.
const Namespace = "map"

// Action tells a rendering consumer whether a marker carries content or
// clears a previously rendered one.
type Action uint8

// Marker actions. The values match the common visualization convention
// (ADD 0, DELETE 2).
const (
	ActionAdd    Action = 0
	ActionDelete Action = 2
)

// Marker is one cube list: every occupied cube of a single edge length,
// with optional per-cube colors parallel to Points.
type Marker struct {
	FrameID   string      `json:"frame_id"`
	Stamp     time.Time   `json:"stamp"`
	Namespace string      `json:"ns"`
	ID        int         `json:"id"`
	Action    Action      `json:"action"`
	Scale     float64     `json:"scale"`
	Color     ColorRGBA   `json:"color"`
	Points    []r3.Vector `json:"points"`
	Colors    []ColorRGBA `json:"colors,omitempty"`
}

// MarkerArray is a fixed, ordered group of NumLevels markers where index i
// holds the cubes of the i-th size level.
type MarkerArray []Marker
