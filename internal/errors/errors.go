// Package errors defines the error taxonomy for collaborator failures:
// image decoding, OCR, the vision model and artifact storage.
//
// Soft misses in the estimation core (no rooms, no dimensions, no scale)
// are not errors and never use these types.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode classifies an AnalysisError.
type ErrorCode string

const (
	ErrorImageDecodeFailed  ErrorCode = "IMAGE_DECODE_FAILED"
	ErrorOCRFailed          ErrorCode = "OCR_FAILED"
	ErrorVisionUnavailable  ErrorCode = "VISION_UNAVAILABLE"
	ErrorVisionFailed       ErrorCode = "VISION_FAILED"
	ErrorArtifactSaveFailed ErrorCode = "ARTIFACT_SAVE_FAILED"
)

// AnalysisError is a structured collaborator failure.
type AnalysisError struct {
	Code       ErrorCode
	Message    string
	AnalysisID string
	Timestamp  time.Time
	Details    map[string]any
	Cause      error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Factory functions for common errors

func NewImageDecodeError(path string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:      ErrorImageDecodeFailed,
		Message:   fmt.Sprintf("Could not decode image: %s", path),
		Timestamp: time.Now(),
		Details: map[string]any{
			"path": path,
		},
		Cause: cause,
	}
}

func NewOCRFailedError(analysisID, language string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:       ErrorOCRFailed,
		Message:    "Text recognition failed",
		AnalysisID: analysisID,
		Timestamp:  time.Now(),
		Details: map[string]any{
			"language": language,
		},
		Cause: cause,
	}
}

func NewVisionUnavailableError(analysisID string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:       ErrorVisionUnavailable,
		Message:    "Vision model is not configured",
		AnalysisID: analysisID,
		Timestamp:  time.Now(),
		Cause:      cause,
	}
}

func NewVisionFailedError(analysisID, model string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:       ErrorVisionFailed,
		Message:    fmt.Sprintf("Vision model %s did not return a usable answer", model),
		AnalysisID: analysisID,
		Timestamp:  time.Now(),
		Details: map[string]any{
			"model": model,
		},
		Cause: cause,
	}
}

func NewArtifactSaveError(analysisID, path string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:       ErrorArtifactSaveFailed,
		Message:    "Failed to save analysis artifact",
		AnalysisID: analysisID,
		Timestamp:  time.Now(),
		Details: map[string]any{
			"path": path,
		},
		Cause: cause,
	}
}

// ToMap converts the error to a map for JSON error payloads.
func (e *AnalysisError) ToMap() map[string]any {
	result := map[string]any{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp.UTC().Format(time.RFC3339),
	}
	if e.AnalysisID != "" {
		result["analysis_id"] = e.AnalysisID
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}

// As returns the AnalysisError in err's chain, if any.
func As(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HasCode reports whether err's chain holds an AnalysisError with code.
func HasCode(err error, code ErrorCode) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}
