package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func integerProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

var (
	pathProp       = stringProp("Absolute path to the frame image")
	maxWidthProp   = integerProp("Optional: downscale frames wider than this many pixels. Default 0 (no scaling)")
	configPathProp = stringProp("Optional: path to a .json tuning file used for this call instead of the server configuration")
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Detection
		{
			Name:        "lane_detect",
			Description: "Detect the left and right lane boundaries in a single road image. Returns the detected segments, the left/right candidates, the fitted line per side with its draw endpoints, and optionally the annotated frame as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProp,
					"max_width":   maxWidthProp,
					"config_path": configPathProp,
					"output_path": stringProp("Optional: save the annotated frame to this path (format from extension)"),
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the annotated frame as base64 PNG in the result. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_detect_sequence",
			Description: "Run lane detection over a directory of frames in file-name order. When a side finds nothing in a frame, the segments of the last frame that had that side are reused. Returns a per-frame summary and counts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir":         stringProp("Absolute path to a directory of frame images"),
					"output_dir":  stringProp("Optional: directory to write annotated frames into as PNG"),
					"max_width":   maxWidthProp,
					"config_path": configPathProp,
					"max_frames":  integerProp("Optional: stop after this many frames. Default 0 (all)"),
				},
				"required": []string{"dir"},
			},
		},

		// Intermediate stages
		{
			Name:        "lane_edge_map",
			Description: "Return an intermediate pipeline image as base64 PNG: the smoothed grayscale frame, the ROI mask, or the Canny edge map that segment detection runs on.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
					"stage": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"edges", "gray", "mask"},
						"description": "Pipeline stage to return. Default edges",
						"default":     "edges",
					},
					"max_width":   maxWidthProp,
					"config_path": configPathProp,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_roi_mask",
			Description: "Return the region-of-interest polygon, its top height and the rasterised mask for a frame size, given either an image path or an explicit width and height.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        stringProp("Optional: image whose size is used"),
					"width":       integerProp("Frame width in pixels (when no path is given)"),
					"height":      integerProp("Frame height in pixels (when no path is given)"),
					"config_path": configPathProp,
				},
			},
		},

		// Configuration
		{
			Name:        "lane_config",
			Description: "Return the effective tuning configuration with every default filled in. With config_path, validates and returns that file instead.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config_path": configPathProp,
				},
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
