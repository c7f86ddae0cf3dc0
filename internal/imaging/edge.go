package imaging

import (
	"image"
	"math"
)

// Canny detects edges in a grayscale image and returns a binary mask with
// edges set to Foreground.
//
// The input is expected to be smoothed already (see Smooth). Thresholds are on
// the Sobel gradient magnitude of 8-bit intensities, so the familiar 50/150
// pair behaves like it does in other Canny implementations.
//
// # Algorithm
//
//  1. Sobel gradients Gx, Gy; magnitude = sqrt(Gx² + Gy²)
//  2. Non-maximum suppression along the gradient direction, quantized to
//     0°, 45°, 90° and 135°
//  3. Hysteresis: pixels at or above high are edges; pixels at or above low
//     are edges when 8-connected to an edge through such pixels
//
// Border pixels are never edges.
func Canny(g *image.Gray, low, high float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		return out
	}

	px := func(x, y int) float64 {
		return float64(g.Pix[y*g.Stride+x])
	}

	mag := make([]float64, w*h)
	dir := make([]uint8, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -px(x-1, y-1) + px(x+1, y-1) -
				2*px(x-1, y) + 2*px(x+1, y) -
				px(x-1, y+1) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)
			i := y*w + x
			mag[i] = math.Sqrt(gx*gx + gy*gy)
			dir[i] = quantizeDirection(math.Atan2(gy, gx))
		}
	}

	// Neighbour offsets for each quantized direction.
	offsets := [4][2]int{
		{1, 0},  // horizontal gradient: compare left/right
		{1, 1},  // 45°, y grows downward
		{0, 1},  // vertical gradient: compare up/down
		{1, -1}, // 135°
	}

	nms := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m < low {
				continue
			}
			o := offsets[dir[i]]
			n1 := mag[(y+o[1])*w+x+o[0]]
			n2 := mag[(y-o[1])*w+x-o[0]]
			if m >= n1 && m >= n2 {
				nms[i] = m
			}
		}
	}

	stack := make([]int, 0, 64)
	for i, m := range nms {
		if m >= high && out.Pix[(i/w)*out.Stride+i%w] == Background {
			out.Pix[(i/w)*out.Stride+i%w] = Foreground
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := j%w, j/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx <= 0 || ny <= 0 || nx >= w-1 || ny >= h-1 {
						continue
					}
					k := ny*w + nx
					if nms[k] >= low && out.Pix[ny*out.Stride+nx] == Background {
						out.Pix[ny*out.Stride+nx] = Foreground
						stack = append(stack, k)
					}
				}
			}
		}
	}
	return out
}

// quantizeDirection maps a gradient angle to one of four sectors:
// 0 = horizontal, 1 = 45°, 2 = vertical, 3 = 135°.
func quantizeDirection(angle float64) uint8 {
	deg := angle * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	switch {
	case deg < 22.5 || deg >= 157.5:
		return 0
	case deg < 67.5:
		return 1
	case deg < 112.5:
		return 2
	default:
		return 3
	}
}
