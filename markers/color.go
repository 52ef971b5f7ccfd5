// Package markers contains cube-list visualization markers for occupancy
// maps: the marker value types, the height-based color gradient, and a
// builder that buckets occupied volumes by cube size.
package markers

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// ColorRGBA is a render color with channels in [0, 1].
type ColorRGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// NewColorRGBAFromHex parses a color of the form "#0000ff". Alpha is always 1.
func NewColorRGBAFromHex(hex string) (ColorRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ColorRGBA{}, errors.Wrapf(err, "cannot parse color %q", hex)
	}
	return ColorRGBA{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// HeightMapColor blends h over HSV values with full saturation and value.
// The fractional remainder within a hue sextant is inverted for even
// sextants; this matches the gradient consumers of the map already render,
// so it must stay exactly as is.
func HeightMapColor(h float64) ColorRGBA {
	h -= math.Floor(h)
	h *= 6

	i := int(math.Floor(h))
	f := h - float64(i)
	if i%2 == 0 {
		f = 1 - f
	}
	// saturation and value are 1, so m is 0
	m := 0.0
	n := 1 - f

	v := 1.0
	switch i {
	case 0, 6:
		return ColorRGBA{R: v, G: n, B: m, A: 1}
	case 1:
		return ColorRGBA{R: n, G: v, B: m, A: 1}
	case 2:
		return ColorRGBA{R: m, G: v, B: n, A: 1}
	case 3:
		return ColorRGBA{R: m, G: n, B: v, A: 1}
	case 4:
		return ColorRGBA{R: n, G: m, B: v, A: 1}
	case 5:
		return ColorRGBA{R: v, G: m, B: n, A: 1}
	default:
		return ColorRGBA{R: 1, G: 0.5, B: 0.5, A: 1}
	}
}
