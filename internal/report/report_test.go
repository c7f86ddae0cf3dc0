package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/dimension"
	"github.com/ironsheep/floorplan-area-mcp/internal/estimate"
	"github.com/ironsheep/floorplan-area-mcp/internal/vision"
)

func calibratedAnalysis() *estimate.Analysis {
	tok := dimension.Token{Value: 5, Unit: dimension.Meter, RawText: "5 m", Start: 0, End: 3}
	scale := &estimate.Scale{
		PixelsPerMeter: 100,
		Reference:      dimension.Normalized{ValueM: 5, Source: tok},
		Method:         "100.00 px/m (derived from OCR text '5 m' and largest contour)",
	}
	rooms := []detection.Contour{
		detection.RectContour(0, 0, 500, 200),
		detection.RectContour(0, 300, 50, 100),
	}
	return &estimate.Analysis{
		Result: estimate.Estimate(105000, 2, scale, estimate.ReasonNone),
		Tokens: []dimension.Token{tok},
		Rooms:  &detection.RoomsResult{Rooms: rooms, Count: 2, Discarded: 3},
	}
}

func TestAssemble_Calibrated(t *testing.T) {
	r := Assemble("fixed-id", "plan.png", "5 m", calibratedAnalysis())

	if r.AnalysisID != "fixed-id" {
		t.Errorf("AnalysisID = %q", r.AnalysisID)
	}
	want := "Estimated area: 10.50 m² (113.02 ft²) across 2 room(s)"
	if r.Headline != want {
		t.Errorf("Headline = %q, want %q", r.Headline, want)
	}
	if r.Discarded != 3 || len(r.Rooms) != 2 {
		t.Errorf("rooms = %d, discarded = %d", len(r.Rooms), r.Discarded)
	}

	text := r.Text()
	for _, s := range []string{"fixed-id", "plan.png", "Scale: 100.00 px/m from '5 m'", "5 m (5 m)"} {
		if !strings.Contains(text, s) {
			t.Errorf("Text() missing %q:\n%s", s, text)
		}
	}
}

func TestAssemble_Uncalibrated(t *testing.T) {
	a := &estimate.Analysis{
		Result: estimate.Estimate(0, 0, nil, estimate.ReasonNoContours),
	}
	r := Assemble("", "", "", a)

	if r.AnalysisID == "" {
		t.Error("expected a generated analysis ID")
	}
	if !strings.HasPrefix(r.Headline, NoCalibration) {
		t.Errorf("Headline = %q", r.Headline)
	}
	if !strings.Contains(r.Headline, "No contours found") {
		t.Errorf("Headline should name the reason: %q", r.Headline)
	}
	if r.Dimensions == nil || r.Rooms == nil {
		t.Error("slices must be non-nil for JSON output")
	}
	if !strings.Contains(r.Text(), "(none)") {
		t.Error("Text() should say no dimensions were found")
	}
}

func TestSetAdvisory(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := Assemble("id", "", "", calibratedAnalysis())
		est := &vision.AreaEstimate{
			FoundDimensions:   true,
			EstimatedAreaSqft: "1200",
			EstimatedAreaSqm:  "111.5",
			Explanation:       "summed rooms",
			ProcessingTime:    1500 * time.Millisecond,
		}
		r.SetAdvisory("gemini-1.5-flash", est, nil)

		want := &Advisory{Model: "gemini-1.5-flash", Estimate: est, ProcessingSecs: 1.5}
		if diff := cmp.Diff(want, r.Advisory); diff != "" {
			t.Errorf("Advisory mismatch (-want +got):\n%s", diff)
		}
		if len(r.Warnings) != 0 {
			t.Errorf("unexpected warnings %v", r.Warnings)
		}
		if !strings.Contains(r.Text(), "1200 ft²") {
			t.Error("Text() missing advisory area")
		}
	})

	t.Run("format error keeps raw reply", func(t *testing.T) {
		r := Assemble("id", "", "", calibratedAnalysis())
		err := fmt.Errorf("estimate failed: %w", &vision.FormatError{Raw: "about 1200 sqft", Err: errors.New("not JSON")})
		r.SetAdvisory("m", nil, err)

		if r.Advisory == nil || r.Advisory.RawText != "about 1200 sqft" {
			t.Fatalf("Advisory = %+v", r.Advisory)
		}
		if len(r.Warnings) != 1 {
			t.Errorf("Warnings = %v", r.Warnings)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		r := Assemble("id", "", "", calibratedAnalysis())
		r.SetAdvisory("m", nil, errors.New("connection refused"))

		if r.Advisory != nil {
			t.Errorf("Advisory = %+v, want nil", r.Advisory)
		}
		if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "connection refused") {
			t.Errorf("Warnings = %v", r.Warnings)
		}
	})
}

func TestReport_JSON(t *testing.T) {
	r := Assemble("id", "", "", calibratedAnalysis())
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	result, ok := decoded["result"].(map[string]any)
	if !ok {
		t.Fatalf("result missing: %s", data)
	}
	if result["area_sqm"] != 10.5 {
		t.Errorf("area_sqm = %v", result["area_sqm"])
	}
	if _, ok := decoded["advisory"]; ok {
		t.Error("advisory should be omitted when absent")
	}
}
