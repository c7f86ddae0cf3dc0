package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/floorplan-area-mcp/internal/config"
	"github.com/ironsheep/floorplan-area-mcp/internal/estimate"
	"github.com/ironsheep/floorplan-area-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-area-mcp/internal/ocr"
	"github.com/ironsheep/floorplan-area-mcp/internal/vision"
)

// ServerName is reported in the initialize handshake.
const ServerName = "floorplan-area-mcp"

// VisionModel is the part of the vision client the server uses.
type VisionModel interface {
	Model() string
	EstimateArea(ctx context.Context, img image.Image) (*vision.AreaEstimate, error)
	Ask(ctx context.Context, img image.Image, question string) (*vision.Answer, error)
}

// Options configures a Server. Zero values fall back to the configuration:
// a nil OCR engine means Tesseract, and a nil Vision model means a Gemini
// client when an API key is set.
type Options struct {
	Config  *config.Config
	OCR     ocr.Engine
	Vision  VisionModel
	Logger  *slog.Logger
	Version string
}

// Server handles MCP protocol communication
type Server struct {
	cfg       *config.Config
	cache     *imaging.ImageCache
	analyzer  *estimate.Analyzer
	ocr       ocr.Engine
	tesseract *ocr.Tesseract
	vision    VisionModel
	logger    *slog.Logger
	version   string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes used by the server.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// New creates a new MCP server instance
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	analyzer, err := estimate.NewAnalyzer(estimate.AnalyzerConfig{
		Rooms:        cfg.RoomConfig(),
		OverlayColor: cfg.OverlayColor,
	}, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		cache:    imaging.NewImageCache(),
		analyzer: analyzer,
		ocr:      opts.OCR,
		vision:   opts.Vision,
		logger:   logger,
		version:  version,
	}

	if s.ocr == nil {
		s.tesseract = ocr.NewTesseract(cfg.OCROptions(), logger)
		s.ocr = s.tesseract
	} else if t, ok := s.ocr.(*ocr.Tesseract); ok {
		s.tesseract = t
	}

	if s.vision == nil && cfg.VisionEnabled() {
		client, err := vision.NewClient(cfg.VisionConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to configure vision client: %w", err)
		}
		s.vision = client
	}

	return s, nil
}

// Run serves MCP on stdin and stdout until stdin closes.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads line-delimited JSON-RPC requests from r and writes responses
// to w. It returns when r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    codeMethodNotFound,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}
