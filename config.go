package correspond

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/correspond/transform"
)

// Interpolator names for Config.Interpolator.
const (
	// InterpolatorThinPlateSpline warps with the biharmonic spline.
	InterpolatorThinPlateSpline = "thin_plate_spline"
)

// Aligner names for Config.Aligner.
const (
	// AlignerSimilarity aligns rigidly on the mesh's landmarks alone.
	AlignerSimilarity = "similarity"
	// AlignerICP aligns by iterative closest point against a dense template.
	AlignerICP = "icp"
)

// Config contains the parameters of a Corresponder.
type Config struct {
	// Interpolator selects the non-rigid 2D warp; empty selects thin plate
	// splines.
	Interpolator string `json:"interpolator"`
	// Aligner selects the rigid alignment policy; empty follows the
	// constructor used.
	Aligner string `json:"aligner"`
	// ImageWidth is the rasterized atlas width in pixels. The height is
	// derived from the flattened target's aspect ratio.
	ImageWidth int `json:"image_width"`
	// ClipSpaceScale is the fraction of clip space the flattened target
	// occupies, leaving a margin for geometry hanging past the landmarks.
	ClipSpaceScale float64 `json:"clip_space_scale"`
	// MaskDilation grows the valid-pixel mask by this many 4-connected
	// passes, reclaiming pixels just outside the landmark hull.
	MaskDilation int `json:"mask_dilation"`
	// SamplingRate is the pixel stride of the output sampling grid.
	SamplingRate int `json:"sampling_rate"`
	// CyDeadZone is the fraction of the unwrapped half-circumference near
	// the rear seam whose spanning triangles are dropped.
	CyDeadZone float64 `json:"cy_dead_zone"`
	// ICP bounds the iterative alignment solve, when used.
	ICP transform.ICPConfig `json:"icp"`
}

// DefaultConfig returns the standard correspondence parameters.
func DefaultConfig() *Config {
	return &Config{
		Interpolator:   InterpolatorThinPlateSpline,
		Aligner:        AlignerSimilarity,
		ImageWidth:     1000,
		ClipSpaceScale: 0.9,
		MaskDilation:   20,
		SamplingRate:   1,
		CyDeadZone:     0.1,
		ICP:            transform.DefaultICPConfig(),
	}
}

// LoadConfig loads a Config from a json file.
func LoadConfig(file string) (*Config, error) {
	var config Config
	filePath := filepath.Clean(file)
	configFile, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(configFile.Close)
	jsonParser := json.NewDecoder(configFile)
	err = jsonParser.Decode(&config)
	if err != nil {
		return nil, err
	}
	err = config.Validate(file)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate ensures all parts of the Config are valid.
func (config *Config) Validate(path string) error {
	switch config.Interpolator {
	case "", InterpolatorThinPlateSpline:
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown interpolator %q, supported: %q", config.Interpolator, InterpolatorThinPlateSpline))
	}
	switch config.Aligner {
	case "", AlignerSimilarity, AlignerICP:
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown aligner %q, supported: %q, %q", config.Aligner, AlignerSimilarity, AlignerICP))
	}
	if config.ImageWidth < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("image_width should be >= 1, got %d", config.ImageWidth))
	}
	if config.ClipSpaceScale <= 0 || config.ClipSpaceScale > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("clip_space_scale should be in (0, 1], got %v", config.ClipSpaceScale))
	}
	if config.MaskDilation < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("mask_dilation should be >= 0, got %d", config.MaskDilation))
	}
	if config.SamplingRate < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("sampling_rate should be >= 1, got %d", config.SamplingRate))
	}
	if config.CyDeadZone < 0 || config.CyDeadZone >= 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("cy_dead_zone should be in [0, 1), got %v", config.CyDeadZone))
	}
	if config.ICP.MaxIterations < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("icp.max_iterations should be >= 0, got %d", config.ICP.MaxIterations))
	}
	if config.ICP.Tolerance < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("icp.tolerance should be >= 0, got %v", config.ICP.Tolerance))
	}
	return nil
}
