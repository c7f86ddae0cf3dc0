package crack

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/imaging"
)

// Config holds crack detection settings.
type Config struct {
	// GSDmm is the ground sample distance in millimetres per pixel.
	GSDmm float64

	// MinAreaPx drops contours whose area is below it.
	MinAreaPx float64

	// BlurRadius is the Gaussian smoothing radius before edge detection.
	BlurRadius float64

	// CannyLow and CannyHigh are the hysteresis thresholds.
	CannyLow  float64
	CannyHigh float64
}

// DefaultConfig returns settings for 0.5 mm/px imagery.
func DefaultConfig() Config {
	return Config{
		GSDmm:      0.5,
		MinAreaPx:  5,
		BlurRadius: 2,
		CannyLow:   50,
		CannyHigh:  150,
	}
}

// Crack is one measured crack.
type Crack struct {
	// ID is the 1-based index of the contour among all traced contours,
	// so IDs of noise contours are skipped.
	ID             int     `json:"id"`
	LengthMM       float64 `json:"length_mm"`
	MaxWidthMM     float64 `json:"max_width_mm"`
	Classification string  `json:"classification"`
	X              int     `json:"x"`
	Y              int     `json:"y"`

	Contour detection.Contour `json:"-"`
}

// Result is the output of Analyze.
type Result struct {
	Cracks      []Crack        `json:"cracks"`
	Count       int            `json:"count"`
	GSDmm       float64        `json:"gsd_mm"`
	ByClass     map[string]int `json:"by_class"`
	ImageWidth  int            `json:"image_width"`
	ImageHeight int            `json:"image_height"`

	// Annotated is a copy of the input with cracks outlined and labelled.
	Annotated *image.NRGBA `json:"-"`
}

// Analyzer detects cracks with a fixed configuration and class table.
type Analyzer struct {
	cfg    Config
	table  Table
	colors map[string]color.Color
	logger *slog.Logger
}

// NewAnalyzer returns an Analyzer. A nil table means DefaultTable and a nil
// logger discards output.
func NewAnalyzer(cfg Config, table Table, logger *slog.Logger) (*Analyzer, error) {
	if table == nil {
		table = DefaultTable()
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crack table: %w", err)
	}
	if !(cfg.GSDmm > 0) {
		return nil, fmt.Errorf("invalid GSD %v: must be positive", cfg.GSDmm)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{cfg: cfg, table: table, colors: classColors(table), logger: logger}, nil
}

// Table returns the analyzer's class table.
func (a *Analyzer) Table() Table {
	return a.table
}

// Analyze finds, measures and classifies cracks in img.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image) (*Result, error) {
	b := img.Bounds()
	result := &Result{
		Cracks:      make([]Crack, 0),
		GSDmm:       a.cfg.GSDmm,
		ByClass:     make(map[string]int),
		ImageWidth:  b.Dx(),
		ImageHeight: b.Dy(),
	}

	gray := imaging.Smooth(imaging.Grayscale(img), a.cfg.BlurRadius)
	edges := imaging.Dilate(imaging.Canny(gray, a.cfg.CannyLow, a.cfg.CannyHigh), 1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contours := detection.FindExternalContours(edges)
	overlays := make([]detection.Overlay, 0, len(contours))
	for i, c := range contours {
		if c.AreaPx < a.cfg.MinAreaPx {
			continue
		}
		width := float64(c.Box.LongestSide()) * a.cfg.GSDmm
		class := a.table.Classify(width)
		result.Cracks = append(result.Cracks, Crack{
			ID:             i + 1,
			LengthMM:       c.ArcLength(false) * a.cfg.GSDmm,
			MaxWidthMM:     width,
			Classification: class,
			X:              c.Box.X,
			Y:              c.Box.Y,
			Contour:        c,
		})
		result.ByClass[class]++
		overlays = append(overlays, detection.Overlay{Contour: c, Label: class, Color: a.colorFor(class)})
	}
	result.Count = len(result.Cracks)

	a.logger.Debug("cracks analyzed",
		"contours", len(contours), "cracks", result.Count, "gsd_mm", a.cfg.GSDmm)

	result.Annotated = detection.Annotate(img, overlays, detection.AnnotateOptions{Thickness: 1})
	return result, nil
}

func (a *Analyzer) colorFor(label string) color.Color {
	if c, ok := a.colors[label]; ok {
		return c
	}
	return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
}

// classColors spreads hues from green for the first class to red for the
// last.
func classColors(t Table) map[string]color.Color {
	colors := make(map[string]color.Color, len(t))
	for i, r := range t {
		hue := 120.0
		if len(t) > 1 {
			hue = 120.0 * float64(len(t)-1-i) / float64(len(t)-1)
		}
		colors[r.Label] = colorful.Hsv(hue, 0.9, 0.95).Clamped()
	}
	return colors
}
