package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Foreground and Background are the two levels of a binary mask produced by
// this package. Foreground marks ink (walls, lines, cracks).
const (
	Foreground uint8 = 255
	Background uint8 = 0
)

// ThresholdOptions controls Binarize.
type ThresholdOptions struct {
	// BlurRadius is the Gaussian smoothing radius applied before
	// thresholding. Zero disables smoothing.
	BlurRadius float64

	// BlockSize is the side of the neighbourhood used for the local mean.
	// It must be odd and at least 3.
	BlockSize int

	// C is subtracted from the local mean. A pixel is foreground when it is
	// at least C levels darker than its neighbourhood.
	C int
}

// DefaultThresholdOptions matches the usual setup for scanned plans: a light
// 5-pixel blur, an 11-pixel neighbourhood and C=5.
func DefaultThresholdOptions() ThresholdOptions {
	return ThresholdOptions{BlurRadius: 2, BlockSize: 11, C: 5}
}

// Grayscale converts img to a single-channel image whose bounds start at the
// origin.
func Grayscale(img image.Image) *image.Gray {
	return redChannel(effect.Grayscale(img))
}

// Smooth applies a Gaussian blur of the given radius to a grayscale image.
func Smooth(g *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return g
	}
	return redChannel(blur.Gaussian(g, radius))
}

// AdaptiveThreshold binarizes g against a Gaussian-weighted local mean.
//
// The result is inverted: a pixel is Foreground when
//
//	g(x,y) <= mean(x,y) - c
//
// where mean is taken over a blockSize neighbourhood. Dark lines on a light
// page therefore become the bright class regardless of uneven illumination,
// which a single global threshold cannot handle on scanned plans.
//
// Pixels inside ink wider than the block see only ink in their neighbourhood
// and fall back to Background, so solid fills come out hollow.
func AdaptiveThreshold(g *image.Gray, blockSize, c int) *image.Gray {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	mean := redChannel(blur.Gaussian(g, float64(blockSize-1)/2))

	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	mb := mean.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			src := int(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			m := int(mean.GrayAt(mb.Min.X+x, mb.Min.Y+y).Y)
			if src-m <= -c {
				out.Pix[y*out.Stride+x] = Foreground
			}
		}
	}
	return out
}

// Binarize runs the full preprocessing chain used for room detection:
// grayscale, smoothing, and inverted adaptive thresholding.
func Binarize(img image.Image, opts ThresholdOptions) *image.Gray {
	return AdaptiveThreshold(Smooth(Grayscale(img), opts.BlurRadius), opts.BlockSize, opts.C)
}

// Dilate grows the foreground of a binary mask by radius pixels.
func Dilate(mask *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return mask
	}
	return redChannel(effect.Dilate(mask, radius))
}

// Invert swaps foreground and background of a binary or grayscale image.
func Invert(g *image.Gray) *image.Gray {
	return redChannel(effect.Invert(g))
}

// redChannel copies the red channel of an RGBA image produced by bild into a
// grayscale image. bild keeps gray inputs gray, so R == G == B.
func redChannel(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = row[x*4]
		}
	}
	return out
}
