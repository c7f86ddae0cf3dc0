// Package detection finds room boundaries in floor-plan images.
//
// The package turns a binarized plan into contours: the outer boundaries of
// connected wall blobs. Each contour carries its enclosed area, perimeter and
// bounding box in pixels, which is what scale calibration and area
// estimation need downstream.
//
// # Pipeline
//
// RoomExtractor.Extract runs:
//
//  1. Binarization via the imaging package (grayscale, Gaussian smoothing,
//     inverted adaptive threshold) so walls become foreground
//  2. External contour tracing with FindExternalContours
//  3. Noise filtering with FilterRooms, dropping contours whose area is not
//     strictly above the configured noise floor
//
// # External Contours
//
// Only outermost boundaries are reported. A blob drawn inside a closed room
// (furniture, text, fixtures) sits in a hole of the wall blob and is
// skipped. A blob inside a room whose walls have a gap is reachable from
// the outside and is therefore reported like any other.
//
// Foreground is 8-connected and background 4-connected, so diagonally
// touching pixels join one blob while a diagonal gap does not let the
// outside leak into a room.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at the top-left corner of the mask
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes count pixels, so Width = maxX - minX + 1
//
// # Area
//
// Contour area is the shoelace area of the traced boundary polygon through
// pixel centres. A filled 10x6 block therefore has area 9*5 = 45, and a one
// pixel wide line has area zero.
//
// # Annotation
//
// Annotate draws contours and labels onto a copy of an image for human
// review. Labels use the fixed 7x13 bitmap face from golang.org/x/image.
package detection
