package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ironsheep/floorplan-area-mcp/internal/config"
	"github.com/ironsheep/floorplan-area-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("floorplan-area-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(os.Stderr, cfg.Level())
	logger.Debug("starting server",
		"version", Version, "built", BuildTime, "commit", GitCommit,
		"output_dir", cfg.OutputDir, "vision", cfg.VisionEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(server.Options{Config: cfg, Logger: logger, Version: Version})
	if err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("floorplan-area-mcp - MCP server for floor-plan area estimation")
	fmt.Println()
	fmt.Println("Usage: floorplan-area-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	fmt.Println("  FLOORPLAN_LOG_LEVEL=debug       Log level: debug, info, warn, error")
	fmt.Println("  FLOORPLAN_NOISE_FLOOR_PX=1000   Minimum room area in square pixels")
	fmt.Println("  FLOORPLAN_BLUR_RADIUS=2         Blur radius before thresholding")
	fmt.Println("  FLOORPLAN_THRESHOLD_BLOCK=11    Adaptive threshold block size (odd)")
	fmt.Println("  FLOORPLAN_THRESHOLD_C=5         Adaptive threshold constant")
	fmt.Println("  FLOORPLAN_OUTPUT_DIR            Directory for annotated images and CSVs")
	fmt.Println("  FLOORPLAN_OVERLAY_COLOR=#00FF00 Room outline colour")
	fmt.Println("  FLOORPLAN_OCR_LANGUAGE=eng      Tesseract language")
	fmt.Println("  GOOGLE_API_KEY                  Enables the vision model estimate")
	fmt.Println("  FLOORPLAN_VISION_MODEL          Vision model name")
	fmt.Println("  FLOORPLAN_VISION_TIMEOUT=60s    Vision request timeout")
	fmt.Println("  CRACK_GSD_MM=0.5                Crack image mm per pixel")
	fmt.Println("  CRACK_MIN_AREA_PX=5             Smallest crack contour")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
