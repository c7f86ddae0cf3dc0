package estimate

import (
	"math"
	"testing"

	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/dimension"
)

func mustNormalize(t *testing.T, value float64, unit dimension.Unit, raw string) dimension.Normalized {
	t.Helper()
	n, err := dimension.Normalize(dimension.Token{Value: value, Unit: unit, RawText: raw})
	if err != nil {
		t.Fatalf("Normalize(%v %v): %v", value, unit, err)
	}
	return n
}

func contour(width, height int, area float64) detection.Contour {
	return detection.Contour{AreaPx: area, Box: detection.BoundingBox{Width: width, Height: height}}
}

func TestCalibrate_LargestPair(t *testing.T) {
	dims := []dimension.Normalized{
		mustNormalize(t, 5.0, dimension.Meter, "5.0 m"),
		mustNormalize(t, 3.0, dimension.Foot, "3.0 ft"),
	}
	contours := []detection.Contour{
		contour(100, 50, 5000),
		contour(500, 200, 100000),
	}

	scale, reason := NewCalibrator(nil).Calibrate(dims, contours)
	if reason != ReasonNone {
		t.Fatalf("unexpected reason %q", reason)
	}
	if scale == nil {
		t.Fatal("expected a scale")
	}
	if math.Abs(scale.PixelsPerMeter-100) > 1e-9 {
		t.Errorf("expected 100 px/m, got %v", scale.PixelsPerMeter)
	}
	if scale.Reference.Source.RawText != "5.0 m" {
		t.Errorf("expected 5.0 m reference, got %q", scale.Reference.Source.RawText)
	}
	if scale.ReferenceContour.Box.Width != 500 {
		t.Errorf("expected the 500 px contour, got %+v", scale.ReferenceContour.Box)
	}
	want := "100.00 px/m (derived from OCR text '5.0 m' and largest contour)"
	if scale.Method != want {
		t.Errorf("method = %q, want %q", scale.Method, want)
	}
}

func TestCalibrate_UsesLongestSide(t *testing.T) {
	dims := []dimension.Normalized{mustNormalize(t, 2, dimension.Meter, "2m")}
	scale, _ := NewCalibrator(nil).Calibrate(dims, []detection.Contour{contour(80, 300, 20000)})
	if scale == nil || scale.PixelsPerMeter != 150 {
		t.Fatalf("expected 150 px/m from the 300 px height, got %+v", scale)
	}
}

func TestCalibrate_EmptyInputs(t *testing.T) {
	c := NewCalibrator(nil)
	dims := []dimension.Normalized{mustNormalize(t, 5, dimension.Meter, "5m")}
	contours := []detection.Contour{contour(100, 100, 9000)}

	tests := []struct {
		name     string
		dims     []dimension.Normalized
		contours []detection.Contour
		want     Reason
	}{
		{"no dimensions", nil, contours, ReasonNoDimensions},
		{"no contours", dims, nil, ReasonNoContours},
		{"neither", nil, nil, ReasonNoDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, reason := c.Calibrate(tt.dims, tt.contours)
			if scale != nil {
				t.Errorf("expected no scale, got %+v", scale)
			}
			if reason != tt.want {
				t.Errorf("reason = %q, want %q", reason, tt.want)
			}
		})
	}
}

func TestCalibrate_TiesFirstWins(t *testing.T) {
	dims := []dimension.Normalized{
		mustNormalize(t, 4, dimension.Meter, "first"),
		mustNormalize(t, 4, dimension.Meter, "second"),
	}
	contours := []detection.Contour{
		contour(200, 10, 7000),
		contour(400, 10, 7000),
	}
	scale, _ := NewCalibrator(nil).Calibrate(dims, contours)
	if scale == nil {
		t.Fatal("expected a scale")
	}
	if scale.Reference.Source.RawText != "first" {
		t.Errorf("expected first dimension, got %q", scale.Reference.Source.RawText)
	}
	if scale.ReferenceContour.Box.Width != 200 {
		t.Errorf("expected first contour, got %+v", scale.ReferenceContour.Box)
	}
}

func TestCalibrate_ZeroReference(t *testing.T) {
	c := NewCalibrator(nil)
	contours := []detection.Contour{contour(100, 100, 9000)}

	scale, reason := c.Calibrate([]dimension.Normalized{{ValueM: 0}}, contours)
	if scale != nil || reason != ReasonZeroReference {
		t.Errorf("zero dimension: got %+v, %q", scale, reason)
	}

	dims := []dimension.Normalized{mustNormalize(t, 5, dimension.Meter, "5m")}
	scale, reason = c.Calibrate(dims, []detection.Contour{contour(0, 0, 9000)})
	if scale != nil || reason != ReasonZeroReference {
		t.Errorf("zero extent: got %+v, %q", scale, reason)
	}
	if msg := reason.Message(); msg != "Could not derive scale (dimension or contour size zero)" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCalibrateTokens_EmptyRectangle(t *testing.T) {
	c := NewCalibrator(nil)
	rect := detection.RectContour(10, 10, 0, 0)
	rect.AreaPx = 5000
	tokens := []dimension.Token{{Value: 5, Unit: dimension.Meter, RawText: "5m"}}

	scale, reason := c.CalibrateTokens(tokens, []detection.Contour{rect})
	if scale != nil || reason != ReasonZeroReference {
		t.Errorf("got %+v, %q, want zero reference", scale, reason)
	}

	res := c.MeasureTokens([]detection.Contour{rect}, tokens)
	if res.Calibrated() || res.Reason != ReasonZeroReference {
		t.Errorf("expected an uncalibrated zero-reference result, got %+v", res)
	}
}

func TestCalibrate_ZeroNeverPreferred(t *testing.T) {
	dims := []dimension.Normalized{{ValueM: 0}, mustNormalize(t, 2, dimension.Meter, "2m")}
	scale, reason := NewCalibrator(nil).Calibrate(dims, []detection.Contour{contour(100, 40, 4000)})
	if reason != ReasonNone || scale == nil {
		t.Fatalf("expected a scale, got reason %q", reason)
	}
	if scale.Reference.ValueM != 2 {
		t.Errorf("expected the 2 m reference, got %v", scale.Reference.ValueM)
	}
}

func TestCalibrate_NonFiniteSkipped(t *testing.T) {
	c := NewCalibrator(nil)
	contours := []detection.Contour{contour(100, 40, 4000)}

	dims := []dimension.Normalized{{ValueM: math.NaN()}, {ValueM: math.Inf(1)}, mustNormalize(t, 1, dimension.Meter, "1m")}
	scale, reason := c.Calibrate(dims, contours)
	if scale == nil || scale.PixelsPerMeter != 100 {
		t.Fatalf("expected 100 px/m, got %+v (%q)", scale, reason)
	}

	scale, reason = c.Calibrate([]dimension.Normalized{{ValueM: math.NaN()}}, contours)
	if scale != nil || reason != ReasonNoValidDimensions {
		t.Errorf("expected no valid dimensions, got %+v, %q", scale, reason)
	}
}

func TestCalibrateTokens(t *testing.T) {
	c := NewCalibrator(nil)
	contours := []detection.Contour{contour(500, 200, 100000)}

	tests := []struct {
		name   string
		tokens []dimension.Token
		want   Reason
	}{
		{"none", nil, ReasonNoDimensions},
		{"all zero", []dimension.Token{{Value: 0, Unit: dimension.Meter, RawText: "0m"}}, ReasonZeroReference},
		{"all negative", []dimension.Token{{Value: -3, Unit: dimension.Foot, RawText: "-3ft"}}, ReasonNoValidDimensions},
		{"valid", []dimension.Token{{Value: 0, Unit: dimension.Meter}, {Value: 5, Unit: dimension.Meter, RawText: "5m"}}, ReasonNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, reason := c.CalibrateTokens(tt.tokens, contours)
			if reason != tt.want {
				t.Errorf("reason = %q, want %q", reason, tt.want)
			}
			if (scale != nil) != (tt.want == ReasonNone) {
				t.Errorf("scale presence mismatch: %+v", scale)
			}
		})
	}
}

func TestReason_Message(t *testing.T) {
	tests := map[Reason]string{
		ReasonNoContours:        "No contours found",
		ReasonNoDimensions:      "No linear dimensions found by OCR",
		ReasonNoValidDimensions: "No valid metric dimensions found after conversion",
	}
	for r, want := range tests {
		if got := r.Message(); got != want {
			t.Errorf("%q.Message() = %q, want %q", r, got, want)
		}
	}
}
