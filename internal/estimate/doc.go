// Package estimate turns room contours and dimension annotations into a
// floor-area estimate.
//
// Calibration pairs the largest normalized dimension found in the plan's
// text with the largest room contour and assumes the dimension measures
// that contour's longest bounding-box side. The resulting pixels-per-meter
// factor converts the summed room area from square pixels to square
// meters.
//
// This is a heuristic. When it cannot run (no rooms, no usable dimension,
// or a zero-sized reference) the result still carries the pixel area and a
// Reason saying why no metric area is available; nothing in this package
// returns an error for a soft miss.
package estimate
