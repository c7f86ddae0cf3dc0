package detection

import (
	"image"
	"math"
)

// BoundingBox is the axis-aligned box enclosing a contour, in pixels.
// Width and Height count pixels, so a single pixel has a 1x1 box.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LongestSide returns max(Width, Height).
func (b BoundingBox) LongestSide() int {
	if b.Width > b.Height {
		return b.Width
	}
	return b.Height
}

// Contour is the outer boundary of one connected blob of foreground pixels.
type Contour struct {
	// Points are the boundary pixels in tracing order (clockwise on screen),
	// with collinear runs reduced to their end points.
	Points []image.Point `json:"-"`

	// AreaPx is the polygon area enclosed by Points, in square pixels.
	AreaPx float64 `json:"area_px"`

	// PerimeterPx is the closed polygon length of Points, in pixels.
	PerimeterPx float64 `json:"perimeter_px"`

	// Box is the bounding box of Points.
	Box BoundingBox `json:"bounding_box"`
}

// ArcLength returns the length of the boundary polyline. When closed is
// false the segment from the last point back to the first is left out.
func (c Contour) ArcLength(closed bool) float64 {
	return arcLength(c.Points, closed)
}

// NewContour builds a Contour from boundary points, computing area,
// perimeter and bounding box.
func NewContour(points []image.Point) Contour {
	points = simplifyChain(points)
	return Contour{
		Points:      points,
		AreaPx:      polygonArea(points),
		PerimeterPx: arcLength(points, true),
		Box:         boundingBox(points),
	}
}

// RectContour returns the contour of a filled axis-aligned rectangle whose
// bounding box is exactly (x, y, width, height). A rectangle with no width or
// no height has no outline, zero area and a zero LongestSide.
func RectContour(x, y, width, height int) Contour {
	box := BoundingBox{X: x, Y: y, Width: max(width, 0), Height: max(height, 0)}
	if box.Width == 0 || box.Height == 0 {
		return Contour{Box: box}
	}
	var c Contour
	if width == 1 || height == 1 {
		c = NewContour([]image.Point{{X: x, Y: y}, {X: x + width - 1, Y: y + height - 1}})
	} else {
		c = NewContour([]image.Point{
			{X: x, Y: y},
			{X: x + width - 1, Y: y},
			{X: x + width - 1, Y: y + height - 1},
			{X: x, Y: y + height - 1},
		})
	}
	c.Box = box
	return c
}

// moore lists the 8 neighbours clockwise on screen, starting west.
var moore = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

func mooreIndex(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return 0
}

// binaryMask is a flat view of a Gray mask; any non-zero pixel is foreground.
type binaryMask struct {
	w, h int
	pix  []bool
}

func newBinaryMask(g *image.Gray) binaryMask {
	b := g.Bounds()
	m := binaryMask{w: b.Dx(), h: b.Dy(), pix: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < m.h; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < m.w; x++ {
			m.pix[y*m.w+x] = row[x] != 0
		}
	}
	return m
}

func (m binaryMask) at(p image.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.w && p.Y < m.h && m.pix[p.Y*m.w+p.X]
}

// FindExternalContours traces the outer boundary of every foreground blob
// that is not enclosed by another blob.
//
// Foreground is 8-connected and background 4-connected. A blob lying inside
// a hole of another blob (furniture drawn inside a room outline) is not
// reported; its pixels count towards nothing. The area outside the image is
// treated as background.
//
// Contours are returned in raster order of their top-left boundary pixel.
//
// # Algorithm
//
//  1. Flood the background reachable from the image border (4-connected)
//  2. Label foreground blobs by 8-connected flood fill in raster order
//  3. A blob is external when the pixel above its first pixel is outer
//     background or lies outside the image
//  4. Trace each external blob with Moore-neighbour boundary following,
//     stopping when the first step repeats (Jacob's criterion)
func FindExternalContours(mask *image.Gray) []Contour {
	m := newBinaryMask(mask)
	contours := make([]Contour, 0)
	if m.w == 0 || m.h == 0 {
		return contours
	}

	outer := floodOuterBackground(m)
	visited := make([]bool, m.w*m.h)

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			i := y*m.w + x
			if !m.pix[i] || visited[i] {
				continue
			}
			markBlob(m, visited, x, y)
			if y == 0 || outer[(y-1)*m.w+x] {
				contours = append(contours, NewContour(traceBoundary(m, image.Point{X: x, Y: y})))
			}
		}
	}
	return contours
}

// floodOuterBackground marks background pixels 4-connected to the border.
func floodOuterBackground(m binaryMask) []bool {
	outer := make([]bool, m.w*m.h)
	stack := make([]image.Point, 0, 2*(m.w+m.h))
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= m.w || y >= m.h {
			return
		}
		i := y*m.w + x
		if m.pix[i] || outer[i] {
			return
		}
		outer[i] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < m.w; x++ {
		push(x, 0)
		push(x, m.h-1)
	}
	for y := 0; y < m.h; y++ {
		push(0, y)
		push(m.w-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return outer
}

// markBlob marks every pixel 8-connected to (x, y) as visited. Iterative to
// stay off the goroutine stack on large blobs.
func markBlob(m binaryMask, visited []bool, x, y int) {
	stack := []image.Point{{X: x, Y: y}}
	visited[y*m.w+x] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range moore {
			q := p.Add(d)
			if !m.at(q) {
				continue
			}
			j := q.Y*m.w + q.X
			if !visited[j] {
				visited[j] = true
				stack = append(stack, q)
			}
		}
	}
}

// traceBoundary follows the outer boundary of the blob whose raster-first
// pixel is start.
func traceBoundary(m binaryMask, start image.Point) []image.Point {
	step := func(p, back image.Point) (image.Point, image.Point, bool) {
		k := mooreIndex(back.Sub(p))
		for i := 1; i <= 8; i++ {
			q := p.Add(moore[(k+i)%8])
			if m.at(q) {
				return q, p.Add(moore[(k+i-1)%8]), true
			}
		}
		return p, back, false
	}

	first, back, ok := step(start, start.Add(moore[0]))
	if !ok {
		return []image.Point{start}
	}

	points := []image.Point{start}
	p := first
	limit := 4*m.w*m.h + 8
	for n := 0; n < limit; n++ {
		next, nb, _ := step(p, back)
		if p == start && next == first {
			break
		}
		points = append(points, p)
		p, back = next, nb
	}
	return points
}

// simplifyChain drops points lying on a straight run between their
// neighbours, keeping the first point, so a traced rectangle reduces to its
// corners.
func simplifyChain(points []image.Point) []image.Point {
	if len(points) < 3 {
		return points
	}
	out := make([]image.Point, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points)-1; i++ {
		d1 := points[i].Sub(points[i-1])
		d2 := points[i+1].Sub(points[i])
		if d1 == d2 {
			continue
		}
		out = append(out, points[i])
	}
	out = append(out, points[len(points)-1])

	// The closing run back to the first point may also be straight.
	if n := len(out); n >= 3 {
		d1 := out[n-1].Sub(out[n-2])
		d2 := out[0].Sub(out[n-1])
		if d1.X*d2.Y == d1.Y*d2.X && d1.X*d2.X+d1.Y*d2.Y > 0 {
			out = out[:n-1]
		}
	}
	return out
}

// polygonArea is the shoelace area of a closed polygon.
func polygonArea(points []image.Point) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum int
	for i, p := range points {
		q := points[(i+1)%len(points)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

func arcLength(points []image.Point, closed bool) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += distance(points[i-1], points[i])
	}
	if closed {
		total += distance(points[len(points)-1], points[0])
	}
	return total
}

func distance(a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func boundingBox(points []image.Point) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}
