package estimate

import (
	"fmt"
	"math"

	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/dimension"
)

// AreaResult is the outcome of an area estimation. AreaSqm, AreaSqft and
// Scale are set together or not at all.
type AreaResult struct {
	TotalAreaPx       float64  `json:"total_area_px"`
	NumRooms          int      `json:"num_rooms"`
	Scale             *Scale   `json:"scale,omitempty"`
	AreaSqm           *float64 `json:"area_sqm,omitempty"`
	AreaSqft          *float64 `json:"area_sqft,omitempty"`
	CalculationMethod string   `json:"calculation_method"`
	Reason            Reason   `json:"reason,omitempty"`
}

// Calibrated reports whether a metric area is available.
func (r AreaResult) Calibrated() bool {
	return r.Scale != nil && r.AreaSqm != nil
}

// Estimate converts a total pixel area using scale. When scale is nil, or
// unusable, the areas are left unset and the method names reason.
func Estimate(totalAreaPx float64, numRooms int, scale *Scale, reason Reason) AreaResult {
	result := AreaResult{TotalAreaPx: totalAreaPx, NumRooms: numRooms}

	if scale == nil || !(scale.PixelsPerMeter > 0) || math.IsInf(scale.PixelsPerMeter, 0) {
		if scale != nil && reason == ReasonNone {
			reason = ReasonZeroReference
		}
		result.Reason = reason
		result.CalculationMethod = reason.Message()
		return result
	}

	sqm := totalAreaPx / (scale.PixelsPerMeter * scale.PixelsPerMeter)
	sqft := dimension.SquareFeet(sqm)
	result.Scale = scale
	result.AreaSqm = &sqm
	result.AreaSqft = &sqft
	result.CalculationMethod = fmt.Sprintf("Heuristic scale (%s) applied to total pixel area.", scale.Method)
	return result
}

// Measure runs calibration and estimation over already-extracted rooms and
// normalized dimensions. Rooms are checked first, so an image without rooms
// reports ReasonNoContours even when no dimensions were found either.
func (c *Calibrator) Measure(rooms []detection.Contour, dims []dimension.Normalized) AreaResult {
	if len(rooms) == 0 {
		return Estimate(0, 0, nil, ReasonNoContours)
	}
	scale, reason := c.Calibrate(dims, rooms)
	return Estimate(detection.TotalArea(rooms), len(rooms), scale, reason)
}

// MeasureTokens is Measure for raw parser tokens.
func (c *Calibrator) MeasureTokens(rooms []detection.Contour, tokens []dimension.Token) AreaResult {
	if len(rooms) == 0 {
		return Estimate(0, 0, nil, ReasonNoContours)
	}
	scale, reason := c.CalibrateTokens(tokens, rooms)
	return Estimate(detection.TotalArea(rooms), len(rooms), scale, reason)
}
