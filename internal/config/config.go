// Package config loads lane detection tuning from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/lane-tools/internal/detection"
	"github.com/ironsheep/lane-tools/internal/imaging"
	"github.com/ironsheep/lane-tools/internal/lane"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/lanes.defaults.json"

// maxFileSize bounds the size of a config file.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds every tunable of the lane pipeline. All fields are optional;
// the Get* methods supply the default of any field left out.
type Config struct {
	// ROI params
	ROIMode    *string        `json:"roi_mode,omitempty"` // "fraction" or "pixels"
	ROIPolygon *[]lane.Vertex `json:"roi_polygon,omitempty"`
	ROITopY    *int           `json:"roi_top_y,omitempty"`

	// Edge params
	CannyLow   *int     `json:"canny_low,omitempty"`
	CannyHigh  *int     `json:"canny_high,omitempty"`
	BlurRadius *float64 `json:"blur_radius,omitempty"`
	EdgeOrder  *string  `json:"edge_order,omitempty"` // "mask-first" or "mask-after"

	// Hough params
	HoughRho         *float64 `json:"hough_rho,omitempty"`
	HoughTheta       *float64 `json:"hough_theta,omitempty"` // radians
	HoughThreshold   *int     `json:"hough_threshold,omitempty"`
	HoughMinLength   *int     `json:"hough_min_length,omitempty"`
	HoughMaxGap      *int     `json:"hough_max_gap,omitempty"`
	HoughSeed        *uint64  `json:"hough_seed,omitempty"`
	HoughMaxSegments *int     `json:"hough_max_segments,omitempty"`

	// Classification params
	SlopeThreshold *float64 `json:"slope_threshold,omitempty"`
	BorderMargin   *int     `json:"border_margin,omitempty"`
	BorderFilter   *bool    `json:"border_filter,omitempty"`
	MemoryFallback *bool    `json:"memory_fallback,omitempty"`

	// Overlay params
	LineColor *string  `json:"line_color,omitempty"`
	LineWidth *float64 `json:"line_width,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// EmptyConfig returns a Config with all fields unset.
func EmptyConfig() *Config {
	return &Config{}
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	return EmptyConfig().Resolved()
}

// Resolved returns a copy of c with every unset field filled in from the
// defaults, as used by the pipeline.
func (c *Config) Resolved() *Config {
	return &Config{
		ROIMode:          ptr(c.GetROIMode()),
		ROIPolygon:       ptr(c.GetROIPolygon()),
		ROITopY:          c.ROITopY,
		CannyLow:         ptr(c.GetCannyLow()),
		CannyHigh:        ptr(c.GetCannyHigh()),
		BlurRadius:       ptr(c.GetBlurRadius()),
		EdgeOrder:        ptr(c.GetEdgeOrder()),
		HoughRho:         ptr(c.GetHoughRho()),
		HoughTheta:       ptr(c.GetHoughTheta()),
		HoughThreshold:   ptr(c.GetHoughThreshold()),
		HoughMinLength:   ptr(c.GetHoughMinLength()),
		HoughMaxGap:      ptr(c.GetHoughMaxGap()),
		HoughSeed:        ptr(c.GetHoughSeed()),
		HoughMaxSegments: ptr(c.GetHoughMaxSegments()),
		SlopeThreshold:   ptr(c.GetSlopeThreshold()),
		BorderMargin:     ptr(c.GetBorderMargin()),
		BorderFilter:     ptr(c.GetBorderFilter()),
		MemoryFallback:   ptr(c.GetMemoryFallback()),
		LineColor:        ptr(c.GetLineColor()),
		LineWidth:        ptr(c.GetLineWidth()),
	}
}

// LoadConfig loads a Config from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the file keep their defaults, so partial configs are safe.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates a JSON config document.
func ParseConfig(data []byte) (*Config, error) {
	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repository
// root. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable. Unset fields are
// not checked; their defaults are always valid.
func (c *Config) Validate() error {
	if c.ROIPolygon != nil && len(*c.ROIPolygon) != 4 {
		return fmt.Errorf("roi_polygon must have 4 corners, got %d", len(*c.ROIPolygon))
	}
	if c.GetROIMode() == string(lane.ROIPixels) && c.ROIPolygon == nil {
		return fmt.Errorf("roi_polygon is required when roi_mode is %q", lane.ROIPixels)
	}
	if c.CannyLow != nil && c.CannyHigh != nil && *c.CannyLow > *c.CannyHigh {
		return fmt.Errorf("canny_low (%d) must not exceed canny_high (%d)", *c.CannyLow, *c.CannyHigh)
	}
	if c.LineColor != nil {
		if _, err := imaging.ParseColor(*c.LineColor); err != nil {
			return fmt.Errorf("invalid line_color: %w", err)
		}
	}

	params, err := c.params()
	if err != nil {
		return err
	}
	return params.Validate()
}

// Params converts the configuration to pipeline parameters.
func (c *Config) Params() (lane.Params, error) {
	params, err := c.params()
	if err != nil {
		return lane.Params{}, err
	}
	if err := params.Validate(); err != nil {
		return lane.Params{}, err
	}
	return params, nil
}

func (c *Config) params() (lane.Params, error) {
	style, err := lane.ParseStyle(c.GetLineColor(), c.GetLineWidth())
	if err != nil {
		return lane.Params{}, err
	}
	return lane.Params{
		ROI:        c.GetROI(),
		CannyLow:   c.GetCannyLow(),
		CannyHigh:  c.GetCannyHigh(),
		BlurRadius: c.GetBlurRadius(),
		EdgeOrder:  lane.EdgeOrder(c.GetEdgeOrder()),
		Hough: detection.HoughParams{
			Rho:         c.GetHoughRho(),
			Theta:       c.GetHoughTheta(),
			Threshold:   c.GetHoughThreshold(),
			MinLength:   c.GetHoughMinLength(),
			MaxGap:      c.GetHoughMaxGap(),
			Seed:        c.GetHoughSeed(),
			MaxSegments: c.GetHoughMaxSegments(),
		},
		SlopeThreshold: c.GetSlopeThreshold(),
		BorderMargin:   c.GetBorderMargin(),
		BorderFilter:   c.GetBorderFilter(),
		MemoryFallback: c.GetMemoryFallback(),
		Style:          style,
	}, nil
}

// GetROI assembles the ROI from roi_mode, roi_polygon and roi_top_y.
func (c *Config) GetROI() lane.ROI {
	roi := lane.ROI{Mode: lane.ROIMode(c.GetROIMode()), TopY: c.ROITopY}
	copy(roi.Corners[:], c.GetROIPolygon())
	return roi
}

// GetROIMode returns the roi_mode value or the default.
func (c *Config) GetROIMode() string {
	if c.ROIMode == nil {
		return string(lane.ROIFraction) // default
	}
	return *c.ROIMode
}

// GetROIPolygon returns the roi_polygon corners or the default trapezoid.
func (c *Config) GetROIPolygon() []lane.Vertex {
	if c.ROIPolygon == nil {
		d := lane.DefaultROI()
		return d.Corners[:]
	}
	return append([]lane.Vertex(nil), *c.ROIPolygon...)
}

// GetCannyLow returns the canny_low value or the default.
func (c *Config) GetCannyLow() int {
	if c.CannyLow == nil {
		return imaging.DefaultCannyLow
	}
	return *c.CannyLow
}

// GetCannyHigh returns the canny_high value or the default.
func (c *Config) GetCannyHigh() int {
	if c.CannyHigh == nil {
		return imaging.DefaultCannyHigh
	}
	return *c.CannyHigh
}

// GetBlurRadius returns the blur_radius value or the default.
func (c *Config) GetBlurRadius() float64 {
	if c.BlurRadius == nil {
		return imaging.DefaultBlurRadius
	}
	return *c.BlurRadius
}

// GetEdgeOrder returns the edge_order value or the default.
func (c *Config) GetEdgeOrder() string {
	if c.EdgeOrder == nil {
		return string(lane.MaskFirst)
	}
	return *c.EdgeOrder
}

func (c *Config) GetHoughRho() float64 {
	if c.HoughRho == nil {
		return detection.DefaultHoughParams().Rho
	}
	return *c.HoughRho
}

func (c *Config) GetHoughTheta() float64 {
	if c.HoughTheta == nil {
		return detection.DefaultHoughParams().Theta
	}
	return *c.HoughTheta
}

func (c *Config) GetHoughThreshold() int {
	if c.HoughThreshold == nil {
		return detection.DefaultHoughParams().Threshold
	}
	return *c.HoughThreshold
}

func (c *Config) GetHoughMinLength() int {
	if c.HoughMinLength == nil {
		return detection.DefaultHoughParams().MinLength
	}
	return *c.HoughMinLength
}

func (c *Config) GetHoughMaxGap() int {
	if c.HoughMaxGap == nil {
		return detection.DefaultHoughParams().MaxGap
	}
	return *c.HoughMaxGap
}

func (c *Config) GetHoughSeed() uint64 {
	if c.HoughSeed == nil {
		return detection.DefaultHoughParams().Seed
	}
	return *c.HoughSeed
}

func (c *Config) GetHoughMaxSegments() int {
	if c.HoughMaxSegments == nil {
		return 0 // no cap
	}
	return *c.HoughMaxSegments
}

// GetSlopeThreshold returns the slope_threshold value or the default.
func (c *Config) GetSlopeThreshold() float64 {
	if c.SlopeThreshold == nil {
		return lane.DefaultSlopeThreshold
	}
	return *c.SlopeThreshold
}

// GetBorderMargin returns the border_margin value or the default.
func (c *Config) GetBorderMargin() int {
	if c.BorderMargin == nil {
		return lane.DefaultBorderMargin
	}
	return *c.BorderMargin
}

// GetBorderFilter returns the border_filter value or the default.
func (c *Config) GetBorderFilter() bool {
	if c.BorderFilter == nil {
		return true // default
	}
	return *c.BorderFilter
}

// GetMemoryFallback returns the memory_fallback value or the default.
func (c *Config) GetMemoryFallback() bool {
	if c.MemoryFallback == nil {
		return true // default
	}
	return *c.MemoryFallback
}

// GetLineColor returns the line_color value or the default.
func (c *Config) GetLineColor() string {
	if c.LineColor == nil {
		return lane.DefaultLineColor
	}
	return *c.LineColor
}

// GetLineWidth returns the line_width value or the default.
func (c *Config) GetLineWidth() float64 {
	if c.LineWidth == nil {
		return lane.DefaultLineWidth
	}
	return *c.LineWidth
}
