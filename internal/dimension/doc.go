// Package dimension extracts linear measurements from recognized text.
//
// Floor plans print their dimensions as free text ("5.2m", "12 ft", 10'6").
// After OCR that text is noisy, so parsing is a best-effort scan rather than a
// grammar: every unit family is matched independently over the whole input and
// anything that does not look like a number followed by a unit is ignored.
//
// # Units
//
// Three unit families are recognized:
//
//   - Meter: "m", "meter", "meters", "metre", "metres"
//   - Foot: "ft", "feet", "foot", or a trailing apostrophe (10')
//   - Inch: "in", "inch", "inches", or a trailing double quote (6")
//
// Matching is case-insensitive. Values use a decimal point and no thousands
// separators.
//
// # Overlapping Matches
//
// The families are scanned independently and their results are not merged by
// span. A substring that satisfies two families produces two tokens. This is
// kept on purpose so the calibration input is exactly what the text says.
//
// # Normalization
//
// Tokens are converted to meters with fixed factors (foot = 0.3048 m,
// inch = 0.0254 m). Non-positive values are rejected during normalization.
package dimension
