package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Floor Plan Analysis
		{
			Name: "floorplan_analyze",
			Description: "Estimate the floor area of a floor-plan image. Detects rooms, reads printed dimensions " +
				"(OCR unless text is supplied), calibrates pixels per meter from the largest dimension and the " +
				"largest room, and reports area in m² and ft². Optionally adds an advisory estimate from a vision model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Dimension text to use instead of running OCR",
					},
					"use_vision": map[string]interface{}{
						"type":        "boolean",
						"description": "Ask the vision model for an advisory estimate when configured. Default true",
						"default":     true,
					},
					"save_annotated": map[string]interface{}{
						"type":        "boolean",
						"description": "Save the image with room outlines to the output directory. Default false",
						"default":     false,
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the annotated image as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "floorplan_parse_dimensions",
			Description: "Extract linear dimensions (meters, feet, inches) from text and convert them to meters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Recognized text, e.g. \"Kitchen 12' x 10'\"",
					},
					"unit": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"m", "ft", "in"},
						"description": "Only report dimensions in this unit family",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "floorplan_detect_rooms",
			Description: "Detect closed room boundaries in a floor-plan image and report their pixel area, perimeter and bounding box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"noise_floor": map[string]interface{}{
						"type":        "number",
						"description": "Minimum room area in square pixels. Default from configuration (1000)",
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the annotated image as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "floorplan_calibrate",
			Description: "Compute the area result from supplied dimensions and room boxes without reading an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dimensions": map[string]interface{}{
						"type":        "array",
						"description": "Linear dimensions",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"value": map[string]interface{}{"type": "number"},
								"unit": map[string]interface{}{
									"type": "string",
									"enum": []string{"m", "ft", "in"},
								},
								"raw_text": map[string]interface{}{"type": "string"},
							},
							"required": []string{"value", "unit"},
						},
					},
					"contours": map[string]interface{}{
						"type":        "array",
						"description": "Room bounding boxes; area_px defaults to the area enclosed by the box outline",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":       map[string]interface{}{"type": "integer"},
								"y":       map[string]interface{}{"type": "integer"},
								"width":   map[string]interface{}{"type": "integer"},
								"height":  map[string]interface{}{"type": "integer"},
								"area_px": map[string]interface{}{"type": "number"},
							},
							"required": []string{"width", "height"},
						},
					},
				},
				"required": []string{"dimensions", "contours"},
			},
		},
		{
			Name:        "floorplan_ask",
			Description: "Ask the vision model a follow-up question about a floor plan.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"question": map[string]interface{}{
						"type":        "string",
						"description": "Question about the plan",
					},
				},
				"required": []string{"path", "question"},
			},
		},

		// Crack Analysis
		{
			Name:        "crack_analyze",
			Description: "Detect cracks in a surface photo, measure length and width in millimeters, and classify them by width.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"gsd_mm": map[string]interface{}{
						"type":        "number",
						"description": "Ground sample distance in mm per pixel. Default from configuration (0.5)",
					},
					"min_area_px": map[string]interface{}{
						"type":        "number",
						"description": "Ignore contours smaller than this many square pixels",
					},
					"save_outputs": map[string]interface{}{
						"type":        "boolean",
						"description": "Save the annotated image and a CSV report to the output directory. Default false",
						"default":     false,
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the annotated image as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "crack_classify",
			Description: "Classify a crack width in millimeters (Hairline, Fine, Medium, Wide).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width_mm": map[string]interface{}{
						"type":        "number",
						"description": "Crack width in millimeters",
					},
				},
				"required": []string{"width_mm"},
			},
		},

		// Image Utilities
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop any cached copy and read the file again",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_ocr_full",
			Description: "Extract all text from an image using Tesseract OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default from configuration (eng)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_ocr_region",
			Description: "Extract text from a rectangular region of the image, such as a single dimension callout.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1":   map[string]interface{}{"type": "integer"},
					"y1":   map[string]interface{}{"type": "integer"},
					"x2":   map[string]interface{}{"type": "integer"},
					"y2":   map[string]interface{}{"type": "integer"},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default from configuration (eng)",
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "image_ocr_info",
			Description: "Report the OCR engine, its version and the installed Tesseract languages.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
