// Package config loads server settings from the environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/floorplan-area-mcp/internal/crack"
	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-area-mcp/internal/ocr"
	"github.com/ironsheep/floorplan-area-mcp/internal/vision"
)

// Environment keys.
const (
	EnvNoiseFloorPx   = "FLOORPLAN_NOISE_FLOOR_PX"
	EnvBlurRadius     = "FLOORPLAN_BLUR_RADIUS"
	EnvThresholdBlock = "FLOORPLAN_THRESHOLD_BLOCK"
	EnvThresholdC     = "FLOORPLAN_THRESHOLD_C"
	EnvOutputDir      = "FLOORPLAN_OUTPUT_DIR"
	EnvOverlayColor   = "FLOORPLAN_OVERLAY_COLOR"
	EnvOCRLanguage    = "FLOORPLAN_OCR_LANGUAGE"
	EnvAPIKey         = "GOOGLE_API_KEY"
	EnvVisionModel    = "FLOORPLAN_VISION_MODEL"
	EnvVisionTimeout  = "FLOORPLAN_VISION_TIMEOUT"
	EnvCrackGSD       = "CRACK_GSD_MM"
	EnvCrackMinArea   = "CRACK_MIN_AREA_PX"
	EnvLogLevel       = "FLOORPLAN_LOG_LEVEL"

	// EnvLegacyLogLevel is honoured when EnvLogLevel is unset.
	EnvLegacyLogLevel = "IMAGE_MCP_LOG_LEVEL"
)

const defaultVisionTimeout = 60 * time.Second

// Config holds all server settings. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	// Room extraction
	NoiseFloorPx   float64
	BlurRadius     float64
	ThresholdBlock int
	ThresholdC     int

	// Artifacts
	OutputDir    string
	OverlayColor string

	// OCR
	OCRLanguage string

	// Vision model
	APIKey        string
	VisionModel   string
	VisionTimeout time.Duration

	// Crack analysis
	CrackGSDmm     float64
	CrackMinAreaPx float64

	LogLevel string
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	th := imaging.DefaultThresholdOptions()
	cr := crack.DefaultConfig()
	return &Config{
		NoiseFloorPx:   detection.DefaultNoiseFloorPx,
		BlurRadius:     th.BlurRadius,
		ThresholdBlock: th.BlockSize,
		ThresholdC:     th.C,
		OutputDir:      filepath.Join(os.TempDir(), "floorplan-area"),
		OverlayColor:   detection.DefaultOverlayColor,
		OCRLanguage:    ocr.DefaultLanguage,
		VisionModel:    vision.DefaultModel,
		VisionTimeout:  defaultVisionTimeout,
		CrackGSDmm:     cr.GSDmm,
		CrackMinAreaPx: cr.MinAreaPx,
		LogLevel:       "info",
	}
}

// Load reads configuration from the environment, falling back to defaults
// for unset or unparsable values.
func Load() *Config {
	def := DefaultConfig()

	cfg := &Config{
		NoiseFloorPx:   getEnvAsFloatOrDefault(EnvNoiseFloorPx, def.NoiseFloorPx),
		BlurRadius:     getEnvAsFloatOrDefault(EnvBlurRadius, def.BlurRadius),
		ThresholdBlock: getEnvAsIntOrDefault(EnvThresholdBlock, def.ThresholdBlock),
		ThresholdC:     getEnvAsIntOrDefault(EnvThresholdC, def.ThresholdC),
		OutputDir:      getEnvOrDefault(EnvOutputDir, def.OutputDir),
		OverlayColor:   getEnvOrDefault(EnvOverlayColor, def.OverlayColor),
		OCRLanguage:    getEnvOrDefault(EnvOCRLanguage, def.OCRLanguage),
		APIKey:         os.Getenv(EnvAPIKey),
		VisionModel:    getEnvOrDefault(EnvVisionModel, def.VisionModel),
		VisionTimeout:  getEnvAsDurationOrDefault(EnvVisionTimeout, def.VisionTimeout),
		CrackGSDmm:     getEnvAsFloatOrDefault(EnvCrackGSD, def.CrackGSDmm),
		CrackMinAreaPx: getEnvAsFloatOrDefault(EnvCrackMinArea, def.CrackMinAreaPx),
		LogLevel:       getEnvOrDefault(EnvLogLevel, getEnvOrDefault(EnvLegacyLogLevel, def.LogLevel)),
	}

	_ = cfg.Validate()
	return cfg
}

// Validate clamps values to safe ranges.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.NoiseFloorPx < 0 {
		c.NoiseFloorPx = def.NoiseFloorPx
	}
	if c.BlurRadius < 0 {
		c.BlurRadius = def.BlurRadius
	}
	if c.ThresholdBlock < 3 || c.ThresholdBlock%2 == 0 {
		c.ThresholdBlock = def.ThresholdBlock
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if _, err := detection.ParseColor(c.OverlayColor); err != nil {
		c.OverlayColor = def.OverlayColor
	}
	if strings.TrimSpace(c.OCRLanguage) == "" {
		c.OCRLanguage = def.OCRLanguage
	}
	if c.VisionModel == "" {
		c.VisionModel = def.VisionModel
	}
	if c.VisionTimeout <= 0 {
		c.VisionTimeout = def.VisionTimeout
	}
	if c.CrackGSDmm <= 0 {
		c.CrackGSDmm = def.CrackGSDmm
	}
	if c.CrackMinAreaPx < 0 {
		c.CrackMinAreaPx = def.CrackMinAreaPx
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		c.LogLevel = def.LogLevel
	}
	return nil
}

// VisionEnabled reports whether an API key is configured.
func (c *Config) VisionEnabled() bool {
	return c.APIKey != ""
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// RoomConfig returns the room extraction settings.
func (c *Config) RoomConfig() detection.RoomConfig {
	return detection.RoomConfig{
		NoiseFloorPx: c.NoiseFloorPx,
		Threshold: imaging.ThresholdOptions{
			BlurRadius: c.BlurRadius,
			BlockSize:  c.ThresholdBlock,
			C:          c.ThresholdC,
		},
	}
}

// CrackConfig returns the crack analysis settings.
func (c *Config) CrackConfig() crack.Config {
	cfg := crack.DefaultConfig()
	cfg.GSDmm = c.CrackGSDmm
	cfg.MinAreaPx = c.CrackMinAreaPx
	return cfg
}

// OCROptions returns the Tesseract settings.
func (c *Config) OCROptions() ocr.Options {
	return ocr.Options{
		Language: c.OCRLanguage,
		Binarize: true,
	}
}

// VisionConfig returns the vision client settings.
func (c *Config) VisionConfig() vision.Config {
	return vision.Config{
		APIKey:  c.APIKey,
		Model:   c.VisionModel,
		Timeout: c.VisionTimeout,
	}
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloatOrDefault gets environment variable as float64 or returns default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDurationOrDefault accepts Go durations ("90s") or whole seconds.
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
