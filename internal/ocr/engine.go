package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Engine turns an image into text.
type Engine interface {
	TextFromImage(ctx context.Context, img image.Image) (string, error)
}

// Fixed is an Engine that always returns the same text. It stands in for
// OCR when the caller already has the plan's text.
type Fixed string

// TextFromImage returns f.
func (f Fixed) TextFromImage(ctx context.Context, _ image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(f), nil
}

// RecognizeRegion runs e on the part of img inside rect. A *Tesseract also
// reports word boxes in img's coordinates; any other engine returns text
// with no words.
func RecognizeRegion(ctx context.Context, e Engine, img image.Image, rect image.Rectangle) (*Result, error) {
	if t, ok := e.(*Tesseract); ok {
		return t.RecognizeRegion(ctx, img, rect)
	}
	clipped := rect.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("region %v lies outside the image", rect)
	}
	text, err := e.TextFromImage(ctx, imaging.Crop(img, clipped))
	if err != nil {
		return nil, err
	}
	return &Result{FullText: text, Words: []Word{}}, nil
}
