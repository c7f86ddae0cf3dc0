package detection

import (
	"image"

	"github.com/ironsheep/floorplan-area-mcp/internal/imaging"
)

// DefaultNoiseFloorPx is the minimum enclosed area, in square pixels, for a
// contour to count as a room.
const DefaultNoiseFloorPx = 1000.0

// RoomConfig holds the tunables of room extraction.
type RoomConfig struct {
	// NoiseFloorPx drops contours whose area is not strictly above it.
	NoiseFloorPx float64

	// Threshold controls binarization of the plan.
	Threshold imaging.ThresholdOptions
}

// DefaultRoomConfig returns the settings used for typical scanned plans.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		NoiseFloorPx: DefaultNoiseFloorPx,
		Threshold:    imaging.DefaultThresholdOptions(),
	}
}

// RoomsResult is the output of RoomExtractor.Extract.
type RoomsResult struct {
	// Rooms are the retained contours in raster order.
	Rooms []Contour `json:"rooms"`

	// Count is len(Rooms).
	Count int `json:"count"`

	// TotalAreaPx is the summed area of Rooms.
	TotalAreaPx float64 `json:"total_area_px"`

	// Discarded counts external contours at or below the noise floor.
	Discarded int `json:"discarded"`

	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`
}

// RoomExtractor finds room-like closed boundaries in floor-plan images.
// It holds no mutable state and is safe for concurrent use.
type RoomExtractor struct {
	cfg RoomConfig
}

// NewRoomExtractor returns an extractor for cfg.
func NewRoomExtractor(cfg RoomConfig) *RoomExtractor {
	return &RoomExtractor{cfg: cfg}
}

// Config returns the extractor's configuration.
func (e *RoomExtractor) Config() RoomConfig {
	return e.cfg
}

// Extract binarizes img, traces the outer boundary of every wall blob and
// keeps those enclosing more than the noise floor.
//
// Finding nothing is a normal outcome and yields an empty result.
func (e *RoomExtractor) Extract(img image.Image) *RoomsResult {
	b := img.Bounds()
	result := &RoomsResult{
		Rooms:       make([]Contour, 0),
		ImageWidth:  b.Dx(),
		ImageHeight: b.Dy(),
	}
	if b.Empty() {
		return result
	}

	mask := imaging.Binarize(img, e.cfg.Threshold)
	all := FindExternalContours(mask)

	result.Rooms, result.Discarded = FilterRooms(all, e.cfg.NoiseFloorPx)
	result.Count = len(result.Rooms)
	result.TotalAreaPx = TotalArea(result.Rooms)
	return result
}

// FilterRooms keeps the contours whose area is strictly greater than
// noiseFloor, preserving order, and reports how many were dropped.
func FilterRooms(contours []Contour, noiseFloor float64) ([]Contour, int) {
	kept := make([]Contour, 0, len(contours))
	for _, c := range contours {
		if c.AreaPx > noiseFloor {
			kept = append(kept, c)
		}
	}
	return kept, len(contours) - len(kept)
}

// TotalArea sums the areas of contours.
func TotalArea(contours []Contour) float64 {
	var total float64
	for _, c := range contours {
		total += c.AreaPx
	}
	return total
}
