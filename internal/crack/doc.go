// Package crack measures and classifies surface cracks in photographs.
//
// Edges are found with Canny, thickened by a 3x3 dilation so a crack's two
// sides merge into one blob, and traced as external contours. Each contour
// above a small noise floor becomes a Crack whose length and width are
// converted to millimetres with a fixed ground sample distance (GSD).
//
// Width classes come from an ordered Table of half-open ranges. The first
// range containing the value wins and anything no range covers, including
// NaN, is Unknown.
package crack
