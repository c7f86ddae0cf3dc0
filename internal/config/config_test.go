package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		EnvNoiseFloorPx, EnvBlurRadius, EnvThresholdBlock, EnvThresholdC,
		EnvOutputDir, EnvOverlayColor, EnvOCRLanguage, EnvAPIKey,
		EnvVisionModel, EnvVisionTimeout, EnvCrackGSD, EnvCrackMinArea,
		EnvLogLevel, EnvLegacyLogLevel,
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	def := DefaultConfig()

	if *cfg != *def {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, def)
	}
	if cfg.NoiseFloorPx != 1000 {
		t.Errorf("NoiseFloorPx = %v, want 1000", cfg.NoiseFloorPx)
	}
	if cfg.VisionEnabled() {
		t.Error("vision must be disabled without an API key")
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level() = %v, want info", cfg.Level())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvNoiseFloorPx, "2500")
	t.Setenv(EnvThresholdBlock, "15")
	t.Setenv(EnvOverlayColor, "#ff0000")
	t.Setenv(EnvAPIKey, "secret")
	t.Setenv(EnvVisionTimeout, "90")
	t.Setenv(EnvCrackGSD, "0.25")
	t.Setenv(EnvLogLevel, "debug")

	cfg := Load()

	if cfg.NoiseFloorPx != 2500 {
		t.Errorf("NoiseFloorPx = %v", cfg.NoiseFloorPx)
	}
	if cfg.ThresholdBlock != 15 {
		t.Errorf("ThresholdBlock = %v", cfg.ThresholdBlock)
	}
	if cfg.OverlayColor != "#ff0000" {
		t.Errorf("OverlayColor = %v", cfg.OverlayColor)
	}
	if !cfg.VisionEnabled() {
		t.Error("vision should be enabled")
	}
	if cfg.VisionTimeout != 90*time.Second {
		t.Errorf("VisionTimeout = %v", cfg.VisionTimeout)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v", cfg.Level())
	}

	rc := cfg.RoomConfig()
	if rc.NoiseFloorPx != 2500 || rc.Threshold.BlockSize != 15 {
		t.Errorf("RoomConfig() = %+v", rc)
	}
	if cc := cfg.CrackConfig(); cc.GSDmm != 0.25 {
		t.Errorf("CrackConfig().GSDmm = %v", cc.GSDmm)
	}
	if vc := cfg.VisionConfig(); vc.APIKey != "secret" {
		t.Errorf("VisionConfig().APIKey = %q", vc.APIKey)
	}
}

func TestLoad_LegacyLogLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLegacyLogLevel, "debug")

	if lvl := Load().Level(); lvl != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", lvl)
	}
}

func TestValidate_ClampsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Config)
		check func(*Config) bool
	}{
		{"negative noise floor", func(c *Config) { c.NoiseFloorPx = -1 }, func(c *Config) bool { return c.NoiseFloorPx == 1000 }},
		{"even block", func(c *Config) { c.ThresholdBlock = 10 }, func(c *Config) bool { return c.ThresholdBlock == 11 }},
		{"tiny block", func(c *Config) { c.ThresholdBlock = 1 }, func(c *Config) bool { return c.ThresholdBlock == 11 }},
		{"bad colour", func(c *Config) { c.OverlayColor = "green" }, func(c *Config) bool { return c.OverlayColor == "#00FF00" }},
		{"empty language", func(c *Config) { c.OCRLanguage = " " }, func(c *Config) bool { return c.OCRLanguage == "eng" }},
		{"zero timeout", func(c *Config) { c.VisionTimeout = 0 }, func(c *Config) bool { return c.VisionTimeout == 60*time.Second }},
		{"zero gsd", func(c *Config) { c.CrackGSDmm = 0 }, func(c *Config) bool { return c.CrackGSDmm == 0.5 }},
		{"unknown level", func(c *Config) { c.LogLevel = "chatty" }, func(c *Config) bool { return c.LogLevel == "info" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.apply(cfg)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("value not clamped: %+v", cfg)
			}
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("FP_TEST_INT", "abc")
	if got := getEnvAsIntOrDefault("FP_TEST_INT", 7); got != 7 {
		t.Errorf("unparsable int: got %d", got)
	}
	t.Setenv("FP_TEST_FLOAT", "1.5")
	if got := getEnvAsFloatOrDefault("FP_TEST_FLOAT", 0); got != 1.5 {
		t.Errorf("float: got %v", got)
	}
	t.Setenv("FP_TEST_DUR", "2m")
	if got := getEnvAsDurationOrDefault("FP_TEST_DUR", 0); got != 2*time.Minute {
		t.Errorf("duration: got %v", got)
	}
	t.Setenv("FP_TEST_DUR", "soon")
	if got := getEnvAsDurationOrDefault("FP_TEST_DUR", time.Second); got != time.Second {
		t.Errorf("bad duration: got %v", got)
	}
}
