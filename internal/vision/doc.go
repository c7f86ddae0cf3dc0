// Package vision asks a Gemini vision model about floor-plan images.
//
// The model's area estimate is advisory: it is shown next to the calibrated
// measurement but never feeds into it. Requests go to the generateContent
// REST endpoint with the image inlined as base64 PNG.
package vision
