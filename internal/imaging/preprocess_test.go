package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createLineImage draws a 2px black vertical line at x on white.
func createLineImage(width, height, x int) *image.RGBA {
	img := solidImage(width, height, color.White)
	for y := 0; y < height; y++ {
		img.Set(x, y, color.Black)
		img.Set(x+1, y, color.Black)
	}
	return img
}

func countForeground(g *image.Gray) int {
	n := 0
	for _, v := range g.Pix {
		if v == Foreground {
			n++
		}
	}
	return n
}

func TestGrayscale_OriginBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 25, 15))
	g := Grayscale(src)
	if g.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Errorf("unexpected bounds %v", g.Bounds())
	}
}

func TestGrayscale_Luminance(t *testing.T) {
	g := Grayscale(solidImage(4, 4, color.White))
	if v := g.GrayAt(1, 1).Y; v != 255 {
		t.Errorf("white became %d", v)
	}
	g = Grayscale(solidImage(4, 4, color.Black))
	if v := g.GrayAt(1, 1).Y; v != 0 {
		t.Errorf("black became %d", v)
	}
}

func TestSmooth_ZeroRadius(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	if Smooth(g, 0) != g {
		t.Error("zero radius should return the input")
	}
}

func TestAdaptiveThreshold_Uniform(t *testing.T) {
	g := Grayscale(solidImage(40, 40, color.Gray{Y: 200}))
	if n := countForeground(AdaptiveThreshold(g, 11, 5)); n != 0 {
		t.Errorf("expected no foreground on a uniform page, got %d pixels", n)
	}
}

func TestAdaptiveThreshold_DarkLine(t *testing.T) {
	mask := AdaptiveThreshold(Grayscale(createLineImage(40, 30, 20)), 11, 5)

	for y := 0; y < 30; y++ {
		if mask.GrayAt(20, y).Y != Foreground || mask.GrayAt(21, y).Y != Foreground {
			t.Fatalf("row %d: line not foreground", y)
		}
		if mask.GrayAt(5, y).Y != Background || mask.GrayAt(34, y).Y != Background {
			t.Fatalf("row %d: page not background", y)
		}
	}
}

func TestAdaptiveThreshold_UnevenLighting(t *testing.T) {
	// Left half is a dim page, right half a bright one; the line on the dim
	// half must still be found and neither page may turn into ink.
	img := solidImage(60, 20, color.Gray{Y: 120})
	for y := 0; y < 20; y++ {
		for x := 30; x < 60; x++ {
			img.Set(x, y, color.Gray{Y: 240})
		}
		img.Set(10, y, color.Gray{Y: 60})
	}
	mask := AdaptiveThreshold(Grayscale(img), 11, 5)
	if mask.GrayAt(10, 10).Y != Foreground {
		t.Error("line on the dim half not detected")
	}
	if mask.GrayAt(2, 10).Y != Background || mask.GrayAt(50, 10).Y != Background {
		t.Error("flat page regions became foreground")
	}
}

func TestBinarize_Defaults(t *testing.T) {
	mask := Binarize(createLineImage(40, 30, 20), DefaultThresholdOptions())
	if mask.GrayAt(20, 15).Y != Foreground {
		t.Error("expected line to be foreground after smoothing")
	}
	if mask.GrayAt(3, 15).Y != Background {
		t.Error("expected page to be background")
	}
}

func TestDilate(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 9, 9))
	mask.SetGray(4, 4, color.Gray{Y: Foreground})

	out := Dilate(mask, 1)
	for _, p := range []image.Point{{X: 4, Y: 4}, {X: 3, Y: 4}, {X: 5, Y: 4}, {X: 4, Y: 3}, {X: 4, Y: 5}} {
		if out.GrayAt(p.X, p.Y).Y != Foreground {
			t.Errorf("expected %v dilated", p)
		}
	}
	if out.GrayAt(0, 0).Y != Background || out.GrayAt(8, 8).Y != Background {
		t.Error("dilation reached too far")
	}
	if Dilate(mask, 0) != mask {
		t.Error("zero radius should return the input")
	}
}

func TestInvert(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0] = 0
	g.Pix[1] = 200
	out := Invert(g)
	if out.Pix[0] != 255 || out.Pix[1] != 55 {
		t.Errorf("unexpected inversion %v", out.Pix)
	}
}

func TestInvert_SubImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range g.Pix {
		g.Pix[i] = uint8(i * 10)
	}
	sub := g.SubImage(image.Rect(2, 1, 4, 3)).(*image.Gray)

	out := Invert(sub)
	if out.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v, want origin-based 2x2", out.Bounds())
	}
	want := []uint8{255 - 60, 255 - 70, 255 - 100, 255 - 110}
	for i, w := range want {
		if got := out.Pix[(i/2)*out.Stride+i%2]; got != w {
			t.Errorf("pixel %d = %d, want %d", i, got, w)
		}
	}
	if g.Pix[6] != 60 {
		t.Error("input must not be modified")
	}
}
