package mapserver

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"go.viam.com/octoserve/markers"
)

// RenderTopDown draws an orthographic top-down (XY) view of the occupied
// cells, colored the way a rendering consumer would color them. The longer
// image side is sizePx pixels.
func RenderTopDown(snap *Snapshot, sizePx int) (image.Image, error) {
	if sizePx <= 0 {
		return nil, errors.Errorf("invalid image size %d", sizePx)
	}

	var minX, minY, maxX, maxY float64
	found := false
	for _, m := range snap.Markers {
		half := m.Scale / 2
		for _, p := range m.Points {
			if !found {
				minX, maxX = p.X-half, p.X+half
				minY, maxY = p.Y-half, p.Y+half
				found = true
				continue
			}
			minX = math.Min(minX, p.X-half)
			maxX = math.Max(maxX, p.X+half)
			minY = math.Min(minY, p.Y-half)
			maxY = math.Max(maxY, p.Y+half)
		}
	}
	if !found {
		return nil, errors.New("snapshot has no occupied cells to render")
	}

	spanX, spanY := maxX-minX, maxY-minY
	scale := float64(sizePx) / math.Max(spanX, spanY)
	width := int(spanX*scale) + 1
	height := int(spanY*scale) + 1

	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	// draw coarse levels first so the finest cubes end up on top
	for i := len(snap.Markers) - 1; i >= 0; i-- {
		m := snap.Markers[i]
		if m.Action == markers.ActionDelete {
			continue
		}
		half := m.Scale / 2
		for j, p := range m.Points {
			c := m.Color
			if len(m.Colors) > 0 {
				c = m.Colors[j]
			}
			dc.SetRGBA(c.R, c.G, c.B, c.A)
			// image Y grows downward
			x := (p.X - half - minX) * scale
			y := (maxY - (p.Y + half)) * scale
			dc.DrawRectangle(x, y, m.Scale*scale, m.Scale*scale)
			dc.Fill()
		}
	}
	return dc.Image(), nil
}

// WritePreviewPNG renders the top-down view and writes it to fn.
func WritePreviewPNG(fn string, snap *Snapshot, sizePx int) error {
	img, err := RenderTopDown(snap, sizePx)
	if err != nil {
		return err
	}
	return gg.SavePNG(fn, img)
}
