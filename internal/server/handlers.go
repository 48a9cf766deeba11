package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/ironsheep/lane-tools/internal/config"
	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/video"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lane_detect", "lane_edge_map").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warnf("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Picks the server pipeline, or builds one from a per-call config file
//  3. Loads frames from cache or disk
//  4. Runs the requested pipeline stages
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Detection
	case "lane_detect":
		return s.handleLaneDetect(args)
	case "lane_detect_sequence":
		return s.handleLaneDetectSequence(args)

	// Intermediate stages
	case "lane_edge_map":
		return s.handleLaneEdgeMap(args)
	case "lane_roi_mask":
		return s.handleLaneROIMask(args)

	// Configuration
	case "lane_config":
		return s.handleLaneConfig(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// pipelineFor returns the server pipeline, or one built from configPath
// when it is set.
func (s *Server) pipelineFor(configPath string) (*lane.Pipeline, error) {
	if configPath == "" {
		return s.pipeline, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return newPipeline(cfg, s.log)
}

// === Detection Handlers ===

type laneDetectArgs struct {
	Path       string `json:"path"`
	MaxWidth   int    `json:"max_width"`
	ConfigPath string `json:"config_path"`
	OutputPath string `json:"output_path"`
	Annotate   *bool  `json:"annotate"`
}

// LaneDetectResult is the outcome of lane_detect.
type LaneDetectResult struct {
	*lane.Result

	// Annotated is the frame with lane overlays, when requested.
	Annotated *imaging.EncodedImage `json:"annotated,omitempty"`

	// OutputPath is where the annotated frame was saved, if anywhere.
	OutputPath string `json:"output_path,omitempty"`
}

func (s *Server) handleLaneDetect(args json.RawMessage) (interface{}, error) {
	var a laneDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	annotate := a.Annotate == nil || *a.Annotate

	p, err := s.pipelineFor(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	frame, err := s.cache.Frame(a.Path, a.MaxWidth)
	if err != nil {
		return nil, err
	}

	res, _, err := p.Process(frame, lane.Memory{})
	if err != nil {
		return nil, err
	}

	out := &LaneDetectResult{Result: res}
	if a.OutputPath != "" {
		if err := imaging.SaveFrame(frame, a.OutputPath); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	}
	if annotate {
		if out.Annotated, err = imaging.EncodePNG(frame); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type laneDetectSequenceArgs struct {
	Dir        string `json:"dir"`
	OutputDir  string `json:"output_dir"`
	MaxWidth   int    `json:"max_width"`
	ConfigPath string `json:"config_path"`
	MaxFrames  int    `json:"max_frames"`
}

// FrameSummary describes the lanes found in one frame of a sequence.
type FrameSummary struct {
	Index      int            `json:"index"`
	Name       string         `json:"name"`
	Segments   int            `json:"segments"`
	Left       *lane.LaneLine `json:"left,omitempty"`
	Right      *lane.LaneLine `json:"right,omitempty"`
	OutputPath string         `json:"output_path,omitempty"`
}

// SequenceResult is the outcome of lane_detect_sequence.
type SequenceResult struct {
	Frames        []FrameSummary `json:"frames"`
	FramesTotal   int            `json:"frames_total"`
	FramesLeft    int            `json:"frames_with_left"`
	FramesRight   int            `json:"frames_with_right"`
	LeftFallback  int            `json:"left_from_memory"`
	RightFallback int            `json:"right_from_memory"`
}

func (s *Server) handleLaneDetectSequence(args json.RawMessage) (interface{}, error) {
	var a laneDetectSequenceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Dir == "" {
		return nil, errors.New("dir is required")
	}

	p, err := s.pipelineFor(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	src, err := video.NewDirSource(a.Dir, a.MaxWidth)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var sink *video.DirSink
	if a.OutputDir != "" {
		if sink, err = video.NewDirSink(a.OutputDir); err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	result := &SequenceResult{Frames: []FrameSummary{}}
	var mem lane.Memory
	for a.MaxFrames <= 0 || result.FramesTotal < a.MaxFrames {
		f, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		var res *lane.Result
		res, mem, err = p.Process(f.Image, mem)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", f.Index, err)
		}

		summary := FrameSummary{
			Index:    f.Index,
			Name:     f.Name,
			Segments: len(res.Segments),
			Left:     res.Left,
			Right:    res.Right,
		}
		if sink != nil {
			if summary.OutputPath, err = sink.Write(f); err != nil {
				return nil, err
			}
		}
		result.add(summary)
	}
	return result, nil
}

func (r *SequenceResult) add(f FrameSummary) {
	r.Frames = append(r.Frames, f)
	r.FramesTotal++
	if f.Left != nil {
		r.FramesLeft++
		if f.Left.FromMemory {
			r.LeftFallback++
		}
	}
	if f.Right != nil {
		r.FramesRight++
		if f.Right.FromMemory {
			r.RightFallback++
		}
	}
}

// === Intermediate Stage Handlers ===

type laneEdgeMapArgs struct {
	Path       string `json:"path"`
	Stage      string `json:"stage"`
	MaxWidth   int    `json:"max_width"`
	ConfigPath string `json:"config_path"`
}

// StageResult is an intermediate pipeline image.
type StageResult struct {
	Stage string `json:"stage"`

	// OnPixels counts non-zero pixels: edges, or mask pixels inside the ROI.
	OnPixels int `json:"on_pixels"`

	Image *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleLaneEdgeMap(args json.RawMessage) (interface{}, error) {
	var a laneEdgeMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Stage == "" {
		a.Stage = "edges"
	}

	p, err := s.pipelineFor(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if a.MaxWidth > 0 {
		img = imaging.FitFrame(img, a.MaxWidth)
	}

	st := p.Stages(img)
	var out *image.Gray
	switch a.Stage {
	case "edges":
		out = st.Edges
	case "gray":
		out = st.Gray
	case "mask":
		out = st.Mask
	default:
		return nil, fmt.Errorf("invalid stage: %s (use edges, gray or mask)", a.Stage)
	}

	enc, err := imaging.EncodePNG(out)
	if err != nil {
		return nil, err
	}
	return &StageResult{Stage: a.Stage, OnPixels: countOn(out), Image: enc}, nil
}

type laneROIMaskArgs struct {
	Path       string `json:"path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ConfigPath string `json:"config_path"`
}

// ROIMaskResult describes the ROI for one frame size.
type ROIMaskResult struct {
	Polygon  []image.Point         `json:"polygon"`
	TopY     int                   `json:"top_y"`
	OnPixels int                   `json:"on_pixels"`
	Image    *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleLaneROIMask(args json.RawMessage) (interface{}, error) {
	var a laneROIMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Path != "" {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		info := imaging.Info(img)
		a.Width, a.Height = info.Width, info.Height
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d: give a path or a positive width and height", a.Width, a.Height)
	}

	p, err := s.pipelineFor(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	roi := p.Params().ROI
	mask := p.Mask(a.Width, a.Height)

	enc, err := imaging.EncodePNG(mask)
	if err != nil {
		return nil, err
	}
	return &ROIMaskResult{
		Polygon:  roi.Polygon(a.Width, a.Height),
		TopY:     roi.TopY(a.Width, a.Height),
		OnPixels: countOn(mask),
		Image:    enc,
	}, nil
}

func countOn(g *image.Gray) int {
	n := 0
	for _, v := range g.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// === Configuration Handlers ===

type laneConfigArgs struct {
	ConfigPath string `json:"config_path"`
}

func (s *Server) handleLaneConfig(args json.RawMessage) (interface{}, error) {
	var a laneConfigArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cfg := s.cfg
	if a.ConfigPath != "" {
		loaded, err := config.LoadConfig(a.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return cfg.Resolved(), nil
}
