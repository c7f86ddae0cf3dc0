package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/floorplan-area-mcp/internal/crack"
	"github.com/ironsheep/floorplan-area-mcp/internal/detection"
	"github.com/ironsheep/floorplan-area-mcp/internal/dimension"
	apperrors "github.com/ironsheep/floorplan-area-mcp/internal/errors"
	"github.com/ironsheep/floorplan-area-mcp/internal/imaging"
	"github.com/ironsheep/floorplan-area-mcp/internal/ocr"
	"github.com/ironsheep/floorplan-area-mcp/internal/report"
	"github.com/ironsheep/floorplan-area-mcp/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "floorplan_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// argsError marks a problem with the caller's arguments rather than with
// running the tool.
type argsError struct {
	err error
}

func (e *argsError) Error() string { return e.err.Error() }
func (e *argsError) Unwrap() error { return e.err }

func invalidArgs(format string, args ...any) error {
	return &argsError{err: fmt.Errorf(format, args...)}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &argsError{err: err}
	}
	return nil
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602. Other failures return -32000, with the
// error's map form as data when it is an AnalysisError.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrorVisionUnavailable) {
			s.logger.Info("tool needs a vision model", "tool", params.Name)
		} else {
			s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		}

		var ae *argsError
		if errors.As(err, &ae) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		if appErr, ok := apperrors.As(err); ok {
			return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", appErr.ToMap())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Floor Plan Analysis
	case "floorplan_analyze":
		return s.handleFloorplanAnalyze(ctx, args)
	case "floorplan_parse_dimensions":
		return s.handleParseDimensions(args)
	case "floorplan_detect_rooms":
		return s.handleDetectRooms(args)
	case "floorplan_calibrate":
		return s.handleCalibrate(args)
	case "floorplan_ask":
		return s.handleAsk(ctx, args)

	// Crack Analysis
	case "crack_analyze":
		return s.handleCrackAnalyze(ctx, args)
	case "crack_classify":
		return s.handleCrackClassify(args)

	// Image Utilities
	case "image_load":
		return s.handleImageLoad(args)
	case "image_ocr_full":
		return s.handleImageOCRFull(ctx, args)
	case "image_ocr_region":
		return s.handleImageOCRRegion(ctx, args)
	case "image_ocr_info":
		return s.handleImageOCRInfo()

	default:
		return nil, invalidArgs("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Floor Plan Handlers ===

type floorplanAnalyzeArgs struct {
	Path          string  `json:"path"`
	Text          *string `json:"text"`
	UseVision     *bool   `json:"use_vision"`
	SaveAnnotated bool    `json:"save_annotated"`
	IncludeImage  bool    `json:"include_image"`
}

type floorplanAnalyzeResult struct {
	*report.Report
	Summary        string                `json:"summary"`
	AnnotatedImage *imaging.EncodedImage `json:"annotated_image,omitempty"`
}

func (s *Server) handleFloorplanAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a floorplanAnalyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, apperrors.NewImageDecodeError(a.Path, err)
	}

	id := report.NewID()
	logger := s.logger.With("analysis_id", id, "path", a.Path)

	var warnings []string
	text := ""
	if a.Text != nil {
		text = *a.Text
	} else {
		text, err = s.ocr.TextFromImage(ctx, img)
		if err != nil {
			ocrErr := apperrors.NewOCRFailedError(id, s.cfg.OCRLanguage, err)
			logger.Warn("ocr failed", "error", ocrErr)
			warnings = append(warnings, fmt.Sprintf("OCR unavailable, continuing without dimensions: %v", ocrErr))
			text = ""
		}
	}

	analysis, err := s.analyzer.Analyze(ctx, img, text)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", a.Path, err)
	}

	rep := report.Assemble(id, a.Path, text, analysis)
	rep.Warnings = append(rep.Warnings, warnings...)

	if a.UseVision == nil || *a.UseVision {
		s.addAdvisory(ctx, rep, img)
	}

	if a.SaveAnnotated {
		name := imaging.ArtifactName(a.Path, "rooms_"+shortID(id))
		path, err := imaging.SaveArtifact(analysis.Annotated, s.cfg.OutputDir, name)
		if err != nil {
			saveErr := apperrors.NewArtifactSaveError(id, filepath.Join(s.cfg.OutputDir, name), err)
			logger.Warn("artifact not saved", "error", saveErr)
			rep.Warn("%v", saveErr)
		} else {
			rep.AnnotatedPath = path
		}
	}

	result := &floorplanAnalyzeResult{Report: rep, Summary: rep.Text()}
	if a.IncludeImage {
		enc, err := imaging.EncodePNG(analysis.Annotated)
		if err != nil {
			rep.Warn("annotated image not encoded: %v", err)
		} else {
			result.AnnotatedImage = enc
		}
	}

	logger.Info("floor plan analyzed",
		"rooms", rep.Result.NumRooms, "tokens", len(rep.Dimensions), "reason", string(rep.Result.Reason))
	return result, nil
}

// addAdvisory asks the vision model for its estimate. Any failure becomes a
// report warning.
func (s *Server) addAdvisory(ctx context.Context, rep *report.Report, img image.Image) {
	if s.vision == nil {
		rep.Warn("%v", apperrors.NewVisionUnavailableError(rep.AnalysisID, vision.ErrNoAPIKey))
		return
	}

	model := s.vision.Model()
	est, err := s.vision.EstimateArea(ctx, img)
	if err != nil {
		err = apperrors.NewVisionFailedError(rep.AnalysisID, model, err)
		s.logger.Warn("vision estimate failed", "analysis_id", rep.AnalysisID, "error", err)
	}
	rep.SetAdvisory(model, est, err)
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type parseDimensionsArgs struct {
	Text string          `json:"text"`
	Unit *dimension.Unit `json:"unit"`
}

type parseDimensionsResult struct {
	Tokens     []dimension.Token      `json:"tokens"`
	Dimensions []dimension.Normalized `json:"dimensions"`
	Rejected   int                    `json:"rejected"`
	LargestM   *float64               `json:"largest_m,omitempty"`
}

func (s *Server) handleParseDimensions(args json.RawMessage) (interface{}, error) {
	var a parseDimensionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var tokens []dimension.Token
	if a.Unit != nil {
		tokens = dimension.ParseUnitFamily(a.Text, *a.Unit)
	} else {
		tokens = dimension.Parse(a.Text)
	}
	dims, rejected := dimension.NormalizeAll(tokens)
	result := &parseDimensionsResult{Tokens: tokens, Dimensions: dims, Rejected: rejected}

	for _, d := range dims {
		if result.LargestM == nil || d.ValueM > *result.LargestM {
			v := d.ValueM
			result.LargestM = &v
		}
	}
	return result, nil
}

type detectRoomsArgs struct {
	Path         string   `json:"path"`
	NoiseFloor   *float64 `json:"noise_floor"`
	IncludeImage bool     `json:"include_image"`
}

type detectRoomsResult struct {
	*detection.RoomsResult
	NoiseFloorPx   float64               `json:"noise_floor_px"`
	AnnotatedImage *imaging.EncodedImage `json:"annotated_image,omitempty"`
}

func (s *Server) handleDetectRooms(args json.RawMessage) (interface{}, error) {
	var a detectRoomsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}

	cfg := s.cfg.RoomConfig()
	if a.NoiseFloor != nil {
		if *a.NoiseFloor < 0 || math.IsNaN(*a.NoiseFloor) {
			return nil, invalidArgs("noise_floor must be non-negative, got %v", *a.NoiseFloor)
		}
		cfg.NoiseFloorPx = *a.NoiseFloor
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, apperrors.NewImageDecodeError(a.Path, err)
	}

	rooms := detection.NewRoomExtractor(cfg).Extract(img)
	result := &detectRoomsResult{RoomsResult: rooms, NoiseFloorPx: cfg.NoiseFloorPx}

	if a.IncludeImage {
		overlay, err := detection.ParseColor(s.cfg.OverlayColor)
		if err != nil {
			return nil, err
		}
		annotated := detection.Annotate(img, detection.RoomOverlays(rooms.Rooms, overlay), detection.AnnotateOptions{})
		if result.AnnotatedImage, err = imaging.EncodePNG(annotated); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type calibrateDimension struct {
	Value   float64         `json:"value"`
	Unit    *dimension.Unit `json:"unit"`
	RawText string          `json:"raw_text"`
}

type calibrateContour struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	AreaPx *float64 `json:"area_px"`
}

type calibrateArgs struct {
	Dimensions []calibrateDimension `json:"dimensions"`
	Contours   []calibrateContour   `json:"contours"`
}

func (s *Server) handleCalibrate(args json.RawMessage) (interface{}, error) {
	var a calibrateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	tokens := make([]dimension.Token, 0, len(a.Dimensions))
	for i, d := range a.Dimensions {
		if d.Unit == nil {
			return nil, invalidArgs("dimension %d: unit is required", i)
		}
		raw := d.RawText
		if raw == "" {
			raw = fmt.Sprintf("%g %s", d.Value, *d.Unit)
		}
		tokens = append(tokens, dimension.Token{Value: d.Value, Unit: *d.Unit, RawText: raw})
	}

	contours := make([]detection.Contour, 0, len(a.Contours))
	for i, c := range a.Contours {
		if c.Width < 0 || c.Height < 0 {
			return nil, invalidArgs("contour %d: width and height must be non-negative", i)
		}
		contour := detection.RectContour(c.X, c.Y, c.Width, c.Height)
		if c.AreaPx != nil {
			contour.AreaPx = *c.AreaPx
		}
		contours = append(contours, contour)
	}

	return s.analyzer.Calibrator().MeasureTokens(contours, tokens), nil
}

type askArgs struct {
	Path     string `json:"path"`
	Question string `json:"question"`
}

type askResult struct {
	Question       string  `json:"question"`
	Response       string  `json:"response"`
	Model          string  `json:"model"`
	ProcessingSecs float64 `json:"processing_seconds"`
}

func (s *Server) handleAsk(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a askArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || strings.TrimSpace(a.Question) == "" {
		return nil, invalidArgs("path and question are required")
	}
	if s.vision == nil {
		return nil, apperrors.NewVisionUnavailableError("", vision.ErrNoAPIKey)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, apperrors.NewImageDecodeError(a.Path, err)
	}

	answer, err := s.vision.Ask(ctx, img, a.Question)
	if err != nil {
		return nil, apperrors.NewVisionFailedError("", s.vision.Model(), err)
	}
	return &askResult{
		Question:       a.Question,
		Response:       answer.Text,
		Model:          s.vision.Model(),
		ProcessingSecs: answer.ProcessingTime.Seconds(),
	}, nil
}

// === Crack Handlers ===

type crackAnalyzeArgs struct {
	Path         string   `json:"path"`
	GSDmm        *float64 `json:"gsd_mm"`
	MinAreaPx    *float64 `json:"min_area_px"`
	SaveOutputs  bool     `json:"save_outputs"`
	IncludeImage bool     `json:"include_image"`
}

type crackAnalyzeResult struct {
	*crack.Result
	Report         string                `json:"report"`
	CSV            string                `json:"csv"`
	AnnotatedPath  string                `json:"annotated_path,omitempty"`
	CSVPath        string                `json:"csv_path,omitempty"`
	AnnotatedImage *imaging.EncodedImage `json:"annotated_image,omitempty"`
}

func (s *Server) handleCrackAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a crackAnalyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidArgs("path is required")
	}

	cfg := s.cfg.CrackConfig()
	if a.GSDmm != nil {
		cfg.GSDmm = *a.GSDmm
	}
	if a.MinAreaPx != nil {
		cfg.MinAreaPx = *a.MinAreaPx
	}
	analyzer, err := crack.NewAnalyzer(cfg, nil, s.logger)
	if err != nil {
		return nil, invalidArgs("%v", err)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, apperrors.NewImageDecodeError(a.Path, err)
	}

	res, err := analyzer.Analyze(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze cracks in %s: %w", a.Path, err)
	}

	var csvBuf bytes.Buffer
	if err := crack.WriteCSV(&csvBuf, res.Cracks); err != nil {
		return nil, err
	}
	result := &crackAnalyzeResult{
		Result: res,
		Report: crack.Summary(filepath.Base(a.Path), res),
		CSV:    csvBuf.String(),
	}

	if a.SaveOutputs {
		id := shortID(report.NewID())
		path, err := imaging.SaveArtifact(res.Annotated, s.cfg.OutputDir, imaging.ArtifactName(a.Path, "cracks_"+id))
		if err != nil {
			return nil, apperrors.NewArtifactSaveError(id, s.cfg.OutputDir, err)
		}
		result.AnnotatedPath = path

		csvPath := strings.TrimSuffix(path, ".png") + ".csv"
		if err := os.WriteFile(csvPath, csvBuf.Bytes(), 0o644); err != nil {
			return nil, apperrors.NewArtifactSaveError(id, csvPath, err)
		}
		result.CSVPath = csvPath
	}

	if a.IncludeImage {
		if result.AnnotatedImage, err = imaging.EncodePNG(res.Annotated); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type crackClassifyArgs struct {
	WidthMM *float64 `json:"width_mm"`
}

type crackClassifyResult struct {
	WidthMM        float64  `json:"width_mm"`
	Classification string   `json:"classification"`
	Classes        []string `json:"classes"`
}

func (s *Server) handleCrackClassify(args json.RawMessage) (interface{}, error) {
	var a crackClassifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.WidthMM == nil {
		return nil, invalidArgs("width_mm is required")
	}

	table := crack.DefaultTable()
	return &crackClassifyResult{
		WidthMM:        *a.WidthMM,
		Classification: table.Classify(*a.WidthMM),
		Classes:        table.Labels(),
	}, nil
}

// === Image Utility Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, apperrors.NewImageDecodeError(a.Path, err)
	}
	return info, nil
}

type imageOCRFullArgs struct {
	Path     string `json:"path"`
	Language string `json:"language"`
}

type ocrFullResult struct {
	Text       string            `json:"text"`
	Language   string            `json:"language"`
	Words      []ocr.Word        `json:"words,omitempty"`
	Dimensions []dimension.Token `json:"dimensions"`
}

func (s *Server) handleImageOCRFull(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageOCRFullArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, apperrors.NewImageDecodeError(a.Path, err)
	}

	result := &ocrFullResult{Language: s.cfg.OCRLanguage}
	if s.tesseract != nil {
		engine := s.tesseract
		if a.Language != "" {
			engine = engine.WithLanguage(a.Language)
		}
		result.Language = engine.Language()

		res, err := engine.Recognize(ctx, img)
		if err != nil {
			return nil, apperrors.NewOCRFailedError("", result.Language, err)
		}
		result.Text, result.Words = res.FullText, res.Words
	} else {
		result.Text, err = s.ocr.TextFromImage(ctx, img)
		if err != nil {
			return nil, apperrors.NewOCRFailedError("", result.Language, err)
		}
	}

	result.Dimensions = dimension.Parse(result.Text)
	return result, nil
}

type imageOCRRegionArgs struct {
	Path     string `json:"path"`
	X1       int    `json:"x1"`
	Y1       int    `json:"y1"`
	X2       int    `json:"x2"`
	Y2       int    `json:"y2"`
	Language string `json:"language"`
}

type ocrRegionResult struct {
	Region     ocr.Bounds        `json:"region"`
	Text       string            `json:"text"`
	Language   string            `json:"language"`
	Words      []ocr.Word        `json:"words"`
	Dimensions []dimension.Token `json:"dimensions"`
}

// handleImageOCRRegion reads the text inside one rectangle, typically a
// dimension callout the full-page pass missed.
func (s *Server) handleImageOCRRegion(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageOCRRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.X2 <= a.X1 || a.Y2 <= a.Y1 {
		return nil, invalidArgs("region (%d,%d)-(%d,%d) is empty", a.X1, a.Y1, a.X2, a.Y2)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, apperrors.NewImageDecodeError(a.Path, err)
	}
	rect := image.Rect(a.X1, a.Y1, a.X2, a.Y2)
	if !rect.Overlaps(img.Bounds()) {
		b := img.Bounds()
		return nil, invalidArgs("region (%d,%d)-(%d,%d) lies outside the %dx%d image", a.X1, a.Y1, a.X2, a.Y2, b.Dx(), b.Dy())
	}

	engine, language := s.ocr, s.cfg.OCRLanguage
	if s.tesseract != nil {
		t := s.tesseract
		if a.Language != "" {
			t = t.WithLanguage(a.Language)
		}
		engine, language = t, t.Language()
	}

	res, err := ocr.RecognizeRegion(ctx, engine, img, rect)
	if err != nil {
		return nil, apperrors.NewOCRFailedError("", language, err)
	}
	return &ocrRegionResult{
		Region:     ocr.Bounds{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2},
		Text:       res.FullText,
		Language:   language,
		Words:      res.Words,
		Dimensions: dimension.Parse(res.FullText),
	}, nil
}

type ocrInfoResult struct {
	ocr.Info
	Engine   string `json:"engine"`
	Language string `json:"language"`
}

func (s *Server) handleImageOCRInfo() (interface{}, error) {
	result := &ocrInfoResult{Info: ocr.GetInfo(), Engine: "external", Language: s.cfg.OCRLanguage}
	if s.tesseract != nil {
		result.Engine = "tesseract"
		result.Language = s.tesseract.Language()
	}
	return result, nil
}
