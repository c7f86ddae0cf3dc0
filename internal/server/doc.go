// Package server implements the MCP (Model Context Protocol) server for
// floor-plan area estimation.
//
// The server speaks JSON-RPC 2.0 over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Floor Plan Analysis:
//   - floorplan_analyze: Rooms, OCR dimensions, calibration and area report
//   - floorplan_parse_dimensions: Extract and normalize dimensions from text
//   - floorplan_detect_rooms: Room contours with pixel geometry
//   - floorplan_calibrate: Area result from supplied dimensions and boxes
//   - floorplan_ask: Follow-up question to the vision model
//
// Crack Analysis:
//   - crack_analyze: Detect, measure and classify cracks
//   - crack_classify: Classify a single width
//
// Image Utilities:
//   - image_load: Image metadata
//   - image_ocr_full: Full-image OCR
//   - image_ocr_region: OCR of one rectangle
//   - image_ocr_info: OCR engine and installed languages
//
// # Degradation
//
// floorplan_analyze never fails because a collaborator is missing. OCR and
// vision failures become warnings in the report, and a plan that cannot be
// calibrated still returns room and dimension findings with the reason.
// Only an unreadable image is an error.
//
// # Image Caching
//
// Images are cached by path and reused across tool calls for the lifetime of
// the server process.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses:
//   - code: -32602 for bad arguments, -32000 for tool failures
//   - message: Human-readable error description
//   - data: the error code map for collaborator failures, otherwise the error string
//
// # Usage
//
//	srv, err := server.New(server.Options{Config: config.Load()})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
