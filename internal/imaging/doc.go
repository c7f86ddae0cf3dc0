// Package imaging provides the raster plumbing shared by room and crack
// detection: loading and caching, grayscale conversion, smoothing, adaptive
// thresholding, Canny edges, dilation and artifact output.
//
// # Coordinate System
//
// All masks produced here start at the origin regardless of the bounds of the
// source image. (0,0) is the top-left pixel, X grows rightward and Y grows
// downward.
//
// # Binary Masks
//
// Masks are *image.Gray values holding only Foreground (255) and Background
// (0). Foreground is ink: walls on a floor plan, cracks on a photo.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is a pure
// transformation that allocates its output and never modifies its input.
package imaging
