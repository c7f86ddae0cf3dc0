package detection

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultOverlayColor is the hex colour used for room outlines.
const DefaultOverlayColor = "#00FF00"

// Overlay is one contour to draw with its label and colour.
type Overlay struct {
	Contour Contour
	Label   string
	Color   color.Color
}

// AnnotateOptions controls Annotate.
type AnnotateOptions struct {
	// Thickness of outlines in pixels. Defaults to 2.
	Thickness int
}

// ParseColor parses a "#rrggbb" or "#rgb" hex colour.
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}

// RoomOverlays labels rooms "Room 1", "Room 2", ... in the given colour.
func RoomOverlays(rooms []Contour, c color.Color) []Overlay {
	overlays := make([]Overlay, len(rooms))
	for i, r := range rooms {
		overlays[i] = Overlay{Contour: r, Label: fmt.Sprintf("Room %d", i+1), Color: c}
	}
	return overlays
}

// Annotate returns a copy of img with each overlay's boundary drawn and its
// label written just inside the top-left corner of its bounding box. The
// source image is not modified.
func Annotate(img image.Image, overlays []Overlay, opts AnnotateOptions) *image.NRGBA {
	canvas := imaging.Clone(img)
	thickness := opts.Thickness
	if thickness <= 0 {
		thickness = 2
	}

	for _, o := range overlays {
		pts := o.Contour.Points
		switch len(pts) {
		case 0:
			continue
		case 1:
			stamp(canvas, pts[0].X, pts[0].Y, thickness, o.Color)
		default:
			for i := range pts {
				drawLine(canvas, pts[i], pts[(i+1)%len(pts)], thickness, o.Color)
			}
		}
		if o.Label != "" {
			drawText(canvas, o.Contour.Box.X+thickness+2, o.Contour.Box.Y+thickness+12, o.Label, o.Color)
		}
	}
	return canvas
}

// drawLine rasterizes a segment with Bresenham's algorithm, stamping a
// square brush at each step.
func drawLine(dst *image.NRGBA, a, b image.Point, thickness int, c color.Color) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		stamp(dst, x, y, thickness, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func stamp(dst *image.NRGBA, x, y, thickness int, c color.Color) {
	off := (thickness - 1) / 2
	for j := 0; j < thickness; j++ {
		for i := 0; i < thickness; i++ {
			p := image.Pt(x-off+i, y-off+j)
			if p.In(dst.Bounds()) {
				dst.Set(p.X, p.Y, c)
			}
		}
	}
}

func drawText(dst *image.NRGBA, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
