// Package server implements the MCP (Model Context Protocol) server for lane detection tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the lane pipeline
// through the MCP protocol, so MCP-compatible clients can run detection on
// road frames and inspect each intermediate stage.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr only
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Detection:
//   - lane_detect: Lanes of a single frame, optionally annotated
//   - lane_detect_sequence: Lanes of a directory of frames with fallback memory
//
// Intermediate stages:
//   - lane_edge_map: Grayscale, mask or edge image
//   - lane_roi_mask: ROI polygon and mask for a frame size
//
// Configuration:
//   - lane_config: Effective tuning values
//
// Every tool except lane_config accepts config_path to run with a different
// tuning file for that call.
//
// # Image Caching
//
// Single-frame tools load images through an in-memory cache keyed by path.
// Detection always draws on a private copy, so cached images stay pristine.
// Sequences are streamed from disk and not cached.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv, err := server.New(cfg, server.NewStderrLog(false))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
