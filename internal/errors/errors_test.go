package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAnalysisError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("tesseract missing")
	err := NewOCRFailedError("a-1", "eng", cause)

	if !strings.HasPrefix(err.Error(), "OCR_FAILED: Text recognition failed") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !strings.Contains(err.Error(), "tesseract missing") {
		t.Errorf("cause missing from %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestAnalysisError_NoCause(t *testing.T) {
	err := NewVisionUnavailableError("", nil)
	if err.Error() != "VISION_UNAVAILABLE: Vision model is not configured" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestToMap(t *testing.T) {
	err := NewArtifactSaveError("a-2", "/out/plan.png", stderrors.New("disk full"))
	m := err.ToMap()

	want := map[string]string{
		"error_code":  "ARTIFACT_SAVE_FAILED",
		"analysis_id": "a-2",
		"path":        "/out/plan.png",
		"cause":       "disk full",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %v", k, m[k], v)
		}
	}
	if _, ok := m["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestAsAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("analyze failed: %w", NewImageDecodeError("x.png", stderrors.New("bad header")))

	ae, ok := As(wrapped)
	if !ok {
		t.Fatal("expected to find AnalysisError in chain")
	}
	if ae.Details["path"] != "x.png" {
		t.Errorf("unexpected details %v", ae.Details)
	}
	if !HasCode(wrapped, ErrorImageDecodeFailed) {
		t.Error("expected HasCode to match")
	}
	if HasCode(wrapped, ErrorOCRFailed) {
		t.Error("unexpected code match")
	}
	if _, ok := As(stderrors.New("plain")); ok {
		t.Error("plain error must not match")
	}
}

func TestFactories(t *testing.T) {
	tests := []struct {
		err  *AnalysisError
		code ErrorCode
	}{
		{NewImageDecodeError("p", nil), ErrorImageDecodeFailed},
		{NewOCRFailedError("", "eng", nil), ErrorOCRFailed},
		{NewVisionUnavailableError("", nil), ErrorVisionUnavailable},
		{NewVisionFailedError("", "gemini-1.5-flash", nil), ErrorVisionFailed},
		{NewArtifactSaveError("", "p", nil), ErrorArtifactSaveFailed},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("got code %s, want %s", tt.err.Code, tt.code)
		}
		if tt.err.Timestamp.IsZero() {
			t.Errorf("%s: timestamp not set", tt.code)
		}
	}
}
