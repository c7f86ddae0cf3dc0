// Package ocr reads text from images using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Floor-plan
// analysis only needs the recognized text, so the main entry point is the
// Engine interface with a single TextFromImage method; Tesseract implements
// it and also exposes word boxes for tools that show where text was found.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A non-default tessdata directory can be given with Options.TessdataPrefix.
//
// # Preprocessing
//
// Scanned plans often have grey backgrounds and faint print. With
// Options.Binarize set, images are converted to black text on a white page
// with the same adaptive threshold used for room detection before they are
// handed to Tesseract.
package ocr
