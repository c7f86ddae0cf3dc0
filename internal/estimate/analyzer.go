package estimate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/dimension"
)

// AnalyzerConfig configures an Analyzer.
type AnalyzerConfig struct {
	Rooms detection.RoomConfig

	// OverlayColor is the hex colour of room outlines on the annotated
	// image. Empty means detection.DefaultOverlayColor.
	OverlayColor string
}

// DefaultAnalyzerConfig returns the default room settings and overlay.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		Rooms:        detection.DefaultRoomConfig(),
		OverlayColor: detection.DefaultOverlayColor,
	}
}

// Analysis is everything Analyze found, for reports and review.
type Analysis struct {
	Result     AreaResult             `json:"result"`
	Tokens     []dimension.Token      `json:"tokens"`
	Dimensions []dimension.Normalized `json:"dimensions"`
	Rejected   int                    `json:"rejected_tokens"`
	Rooms      *detection.RoomsResult `json:"rooms"`

	// Annotated is a copy of the input with retained rooms outlined.
	Annotated *image.NRGBA `json:"-"`
}

// Analyzer runs the full estimation over one decoded plan and its text.
// It keeps no per-call state and is safe for concurrent use.
type Analyzer struct {
	rooms      *detection.RoomExtractor
	calibrator *Calibrator
	overlay    color.Color
	logger     *slog.Logger
}

// NewAnalyzer validates cfg and returns an Analyzer. A nil logger discards
// output.
func NewAnalyzer(cfg AnalyzerConfig, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	hex := cfg.OverlayColor
	if hex == "" {
		hex = detection.DefaultOverlayColor
	}
	overlay, err := detection.ParseColor(hex)
	if err != nil {
		return nil, fmt.Errorf("failed to configure overlay: %w", err)
	}
	return &Analyzer{
		rooms:      detection.NewRoomExtractor(cfg.Rooms),
		calibrator: NewCalibrator(logger),
		overlay:    overlay,
		logger:     logger,
	}, nil
}

// Analyze extracts rooms from img, parses dimensions from text and derives
// an area estimate. text is whatever OCR produced and may be empty.
//
// The only error is ctx's, checked between stages. Every soft miss is
// reported through the AreaResult. A nil img has no rooms and no annotated
// copy.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image, text string) (*Analysis, error) {
	rooms := &detection.RoomsResult{Rooms: []detection.Contour{}}
	if img != nil {
		rooms = a.rooms.Extract(img)
	}
	a.logger.Debug("rooms extracted", "rooms", rooms.Count, "discarded", rooms.Discarded)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := dimension.Parse(text)
	dims, rejected := dimension.NormalizeAll(tokens)
	a.logger.Debug("dimensions parsed", "tokens", len(tokens), "rejected", rejected)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := a.calibrator.MeasureTokens(rooms.Rooms, tokens)
	if result.Calibrated() {
		a.logger.Info("area estimated",
			"rooms", result.NumRooms, "ppm", result.Scale.PixelsPerMeter, "area_sqm", *result.AreaSqm)
	} else {
		a.logger.Info("area not calibrated",
			"rooms", result.NumRooms, "reason", string(result.Reason))
	}

	analysis := &Analysis{
		Result:     result,
		Tokens:     tokens,
		Dimensions: dims,
		Rejected:   rejected,
		Rooms:      rooms,
	}
	if img != nil {
		analysis.Annotated = detection.Annotate(img, detection.RoomOverlays(rooms.Rooms, a.overlay), detection.AnnotateOptions{})
	}
	return analysis, nil
}

// Calibrator returns the analyzer's calibrator for callers that already
// hold contours and dimensions.
func (a *Analyzer) Calibrator() *Calibrator {
	return a.calibrator
}
