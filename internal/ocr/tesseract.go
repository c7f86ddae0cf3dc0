package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	fpimaging "github.com/ironsheep/floorplan-area-mcp/internal/imaging"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is a recognized word with its location and confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result contains the complete results of text extraction from an image.
type Result struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Words may be empty if box extraction fails; FullText is still valid.
	Words []Word `json:"words"`
}

// Options configures a Tesseract engine.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "deu+eng".
	Language string

	// TessdataPrefix overrides the tessdata directory. Empty uses the
	// system default.
	TessdataPrefix string

	// Binarize converts images to black-on-white before recognition.
	Binarize bool
}

// Tesseract is an Engine backed by a local Tesseract installation. Each call
// uses its own gosseract client, so a Tesseract value is safe for concurrent
// use.
type Tesseract struct {
	opts   Options
	logger *slog.Logger
}

// NewTesseract returns a Tesseract engine. A nil logger discards output.
func NewTesseract(opts Options, logger *slog.Logger) *Tesseract {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tesseract{opts: opts, logger: logger}
}

// Language returns the configured language.
func (t *Tesseract) Language() string {
	return t.opts.Language
}

// WithLanguage returns a copy of t using another language.
func (t *Tesseract) WithLanguage(language string) *Tesseract {
	opts := t.opts
	opts.Language = language
	return NewTesseract(opts, t.logger)
}

// TextFromImage returns the text Tesseract recognizes in img.
func (t *Tesseract) TextFromImage(ctx context.Context, img image.Image) (string, error) {
	res, err := t.recognize(ctx, img, false)
	if err != nil {
		return "", err
	}
	return res.FullText, nil
}

// Recognize returns the text in img along with word boxes.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	return t.recognize(ctx, img, true)
}

// RecognizeRegion runs OCR on the part of img inside rect. Word bounds are
// reported in the coordinates of img.
func (t *Tesseract) RecognizeRegion(ctx context.Context, img image.Image, rect image.Rectangle) (*Result, error) {
	clipped := rect.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("region %v lies outside the image", rect)
	}
	res, err := t.recognize(ctx, imaging.Crop(img, clipped), true)
	if err != nil {
		return nil, err
	}
	offsetWords(res.Words, clipped.Min.X-img.Bounds().Min.X, clipped.Min.Y-img.Bounds().Min.Y)
	return res, nil
}

func (t *Tesseract) recognize(ctx context.Context, img image.Image, withWords bool) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := encodeForOCR(img, t.opts.Binarize)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.opts.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(t.opts.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	res := &Result{FullText: text, Words: make([]Word, 0)}
	if withWords {
		boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
		if err != nil {
			t.logger.Debug("word boxes unavailable", "error", err)
		}
		for _, box := range boxes {
			res.Words = append(res.Words, Word{
				Text:       box.Word,
				Confidence: box.Confidence / 100.0,
				Bounds: Bounds{
					X1: box.Box.Min.X,
					Y1: box.Box.Min.Y,
					X2: box.Box.Max.X,
					Y2: box.Box.Max.Y,
				},
			})
		}
	}

	t.logger.Debug("ocr complete", "chars", len(text), "words", len(res.Words), "language", t.opts.Language)
	return res, nil
}

// encodeForOCR returns img as PNG bytes, binarized to black text on white
// when requested.
func encodeForOCR(img image.Image, binarize bool) ([]byte, error) {
	if binarize {
		img = Prepare(img)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}
	return buf.Bytes(), nil
}

// Prepare converts img to black text on a white page using an adaptive
// threshold.
func Prepare(img image.Image) *image.Gray {
	opts := fpimaging.DefaultThresholdOptions()
	mask := fpimaging.AdaptiveThreshold(fpimaging.Grayscale(img), opts.BlockSize, opts.C)
	return fpimaging.Invert(mask)
}

func offsetWords(words []Word, dx, dy int) {
	for i := range words {
		words[i].Bounds.X1 += dx
		words[i].Bounds.Y1 += dy
		words[i].Bounds.X2 += dx
		words[i].Bounds.Y2 += dy
	}
}

// Info describes the OCR subsystem.
type Info struct {
	Available bool     `json:"available"`
	Version   string   `json:"version,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Error     string   `json:"error,omitempty"`
	Backend   string   `json:"backend"`
}

// GetInfo reports the Tesseract version and installed languages.
func GetInfo() Info {
	info := Info{Backend: "gosseract", Version: gosseract.Version()}
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Languages = langs
	info.Available = len(langs) > 0
	if !info.Available {
		info.Error = "no tessdata languages installed"
	}
	return info
}
