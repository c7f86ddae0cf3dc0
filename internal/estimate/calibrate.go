package estimate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/dimension"
)

// Reason says why no scale could be derived.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNoContours        Reason = "no_contours"
	ReasonNoDimensions      Reason = "no_dimensions"
	ReasonNoValidDimensions Reason = "no_valid_dimensions"
	ReasonZeroReference     Reason = "zero_reference"
)

// Message returns the human-readable form used in calculation methods.
func (r Reason) Message() string {
	switch r {
	case ReasonNoContours:
		return "No contours found"
	case ReasonNoDimensions:
		return "No linear dimensions found by OCR"
	case ReasonNoValidDimensions:
		return "No valid metric dimensions found after conversion"
	case ReasonZeroReference:
		return "Could not derive scale (dimension or contour size zero)"
	case ReasonNone:
		return "Scale not available"
	}
	return string(r)
}

// Scale is a derived pixels-per-meter factor and the evidence behind it.
type Scale struct {
	PixelsPerMeter   float64              `json:"pixels_per_meter"`
	Reference        dimension.Normalized `json:"reference_dimension"`
	ReferenceContour detection.Contour    `json:"reference_contour"`
	Method           string               `json:"method"`
}

// Calibrator derives a Scale from dimensions and contours. It is stateless
// apart from its logger.
type Calibrator struct {
	logger *slog.Logger
}

// NewCalibrator returns a Calibrator. A nil logger discards output.
func NewCalibrator(logger *slog.Logger) *Calibrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Calibrator{logger: logger}
}

// Calibrate pairs the largest dimension with the largest contour.
//
// The dimension with the strictly largest ValueM and the contour with the
// strictly largest AreaPx are chosen; on ties the first one wins. The
// contour's longest bounding-box side in pixels divided by the dimension in
// meters is the scale. Non-finite dimension values are never chosen.
//
// A nil Scale is returned with the Reason when either input is empty or the
// chosen pair has a zero size.
func (c *Calibrator) Calibrate(dims []dimension.Normalized, contours []detection.Contour) (*Scale, Reason) {
	if len(dims) == 0 {
		return nil, ReasonNoDimensions
	}
	if len(contours) == 0 {
		return nil, ReasonNoContours
	}

	ref := -1
	for i, d := range dims {
		if math.IsNaN(d.ValueM) || math.IsInf(d.ValueM, 0) {
			continue
		}
		if ref < 0 || d.ValueM > dims[ref].ValueM {
			ref = i
		}
	}
	if ref < 0 {
		return nil, ReasonNoValidDimensions
	}

	largest := 0
	for i := 1; i < len(contours); i++ {
		if contours[i].AreaPx > contours[largest].AreaPx {
			largest = i
		}
	}

	dim := dims[ref]
	contour := contours[largest]
	extent := contour.Box.LongestSide()
	if dim.ValueM <= 0 || extent <= 0 {
		c.logger.Debug("zero-sized calibration reference",
			"dimension_m", dim.ValueM, "extent_px", extent)
		return nil, ReasonZeroReference
	}

	ppm := float64(extent) / dim.ValueM
	c.logger.Debug("derived scale",
		"ppm", ppm, "reference", dim.Source.RawText, "extent_px", extent)

	return &Scale{
		PixelsPerMeter:   ppm,
		Reference:        dim,
		ReferenceContour: contour,
		Method: fmt.Sprintf("%.2f px/m (derived from OCR text '%s' and largest contour)",
			ppm, dim.Source.RawText),
	}, ReasonNone
}

// CalibrateTokens normalizes raw tokens and calibrates against contours.
//
// Tokens that all fail normalization give ReasonNoValidDimensions, or
// ReasonZeroReference when at least one of them read as zero.
func (c *Calibrator) CalibrateTokens(tokens []dimension.Token, contours []detection.Contour) (*Scale, Reason) {
	if len(tokens) == 0 {
		return nil, ReasonNoDimensions
	}
	dims, rejected := dimension.NormalizeAll(tokens)
	if rejected > 0 {
		c.logger.Debug("rejected dimension tokens", "rejected", rejected, "tokens", len(tokens))
	}
	if len(dims) == 0 {
		for _, t := range tokens {
			if t.Value == 0 {
				return nil, ReasonZeroReference
			}
		}
		return nil, ReasonNoValidDimensions
	}
	return c.Calibrate(dims, contours)
}
