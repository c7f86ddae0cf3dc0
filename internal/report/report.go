// Package report assembles the user-facing result of a floor-plan analysis:
// the calibrated (or uncalibrated) area, the raw OCR findings, and the
// advisory estimate from the vision model.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/dimension"
	"github.com/ironsheep/floorplan-area-mcp/internal/estimate"
	"github.com/ironsheep/floorplan-area-mcp/internal/vision"
)

// NoCalibration is the headline used whenever no metric area could be
// derived.
const NoCalibration = "No calibrated measurement available"

// Advisory is the vision model's free-text estimate. It is never used for
// calibration.
type Advisory struct {
	Model    string               `json:"model"`
	Estimate *vision.AreaEstimate `json:"estimate,omitempty"`

	// RawText holds the model reply when it could not be parsed.
	RawText        string  `json:"raw_text,omitempty"`
	ProcessingSecs float64 `json:"processing_seconds"`
}

// Report is the complete outcome of one analysis.
type Report struct {
	AnalysisID string    `json:"analysis_id"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Headline string              `json:"headline"`
	Result   estimate.AreaResult `json:"result"`

	OCRText        string              `json:"ocr_text"`
	Dimensions     []dimension.Token   `json:"dimensions"`
	RejectedTokens int                 `json:"rejected_tokens"`
	Rooms          []detection.Contour `json:"rooms"`
	Discarded      int                 `json:"discarded_contours"`

	Advisory *Advisory `json:"advisory,omitempty"`

	AnnotatedPath string   `json:"annotated_path,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// NewID returns a fresh analysis identifier.
func NewID() string {
	return uuid.NewString()
}

// Assemble builds a report for one analysis. ocrText is the text the
// dimensions were parsed from.
func Assemble(id, source, ocrText string, a *estimate.Analysis) *Report {
	if id == "" {
		id = NewID()
	}
	r := &Report{
		AnalysisID: id,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
		Result:     a.Result,
		OCRText:    ocrText,
		Dimensions: a.Tokens,
		Rooms:      make([]detection.Contour, 0),
	}
	r.RejectedTokens = a.Rejected
	if r.Dimensions == nil {
		r.Dimensions = make([]dimension.Token, 0)
	}
	if a.Rooms != nil {
		r.Rooms = a.Rooms.Rooms
		r.Discarded = a.Rooms.Discarded
	}
	r.Headline = Headline(a.Result)
	return r
}

// Headline summarizes an AreaResult in one line.
func Headline(res estimate.AreaResult) string {
	if !res.Calibrated() {
		return fmt.Sprintf("%s: %s", NoCalibration, res.CalculationMethod)
	}
	return fmt.Sprintf("Estimated area: %.2f m² (%.2f ft²) across %d room(s)", *res.AreaSqm, *res.AreaSqft, res.NumRooms)
}

// Warn records a non-fatal problem.
func (r *Report) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// SetAdvisory records the vision model's outcome. A failed call becomes a
// warning; a reply in the wrong format is kept verbatim.
func (r *Report) SetAdvisory(model string, est *vision.AreaEstimate, err error) {
	if err != nil {
		var fe *vision.FormatError
		if errors.As(err, &fe) {
			r.Advisory = &Advisory{Model: model, RawText: fe.Raw}
		}
		r.Warn("Vision estimate unavailable: %v", err)
		return
	}
	if est == nil {
		return
	}
	r.Advisory = &Advisory{
		Model:          model,
		Estimate:       est,
		ProcessingSecs: est.ProcessingTime.Seconds(),
	}
}

// Text renders the report for humans.
func (r *Report) Text() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Floor Plan Analysis %s\n", r.AnalysisID)
	if r.Source != "" {
		fmt.Fprintf(&sb, "Source: %s\n", r.Source)
	}
	sb.WriteString("\n")
	sb.WriteString(r.Headline)
	sb.WriteString("\n")

	res := r.Result
	fmt.Fprintf(&sb, "\nRooms detected: %d (%d discarded as noise)\n", res.NumRooms, r.Discarded)
	fmt.Fprintf(&sb, "Total room area: %.0f px²\n", res.TotalAreaPx)
	if res.Scale != nil {
		fmt.Fprintf(&sb, "Scale: %.2f px/m from '%s'\n", res.Scale.PixelsPerMeter, res.Scale.Reference.Source.RawText)
	}
	fmt.Fprintf(&sb, "Method: %s\n", res.CalculationMethod)

	sb.WriteString("\nDimensions found by OCR:\n")
	if len(r.Dimensions) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, t := range r.Dimensions {
		fmt.Fprintf(&sb, "  %s (%g %s)\n", t.RawText, t.Value, t.Unit)
	}

	if r.Advisory != nil {
		fmt.Fprintf(&sb, "\nAI estimate (%s, advisory):\n", r.Advisory.Model)
		if e := r.Advisory.Estimate; e != nil {
			fmt.Fprintf(&sb, "  Area: %s ft² / %s m²\n", e.EstimatedAreaSqft, e.EstimatedAreaSqm)
			if e.Explanation != "" {
				fmt.Fprintf(&sb, "  %s\n", e.Explanation)
			}
		} else if r.Advisory.RawText != "" {
			fmt.Fprintf(&sb, "  Raw reply: %s\n", r.Advisory.RawText)
		}
	}

	if r.AnnotatedPath != "" {
		fmt.Fprintf(&sb, "\nAnnotated image: %s\n", r.AnnotatedPath)
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
	}
	return sb.String()
}
