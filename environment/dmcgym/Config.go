package dmcgym

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/dmcgym/environment/suite"
)

// ErrConfig is wrapped by every error caused by an illegal Config
var ErrConfig = errors.New("illegal configuration")

// Config configures an Env
type Config struct {
	Domain            string                  `yaml:"domain" mapstructure:"domain"`
	Task              string                  `yaml:"task" mapstructure:"task"`
	TaskKwargs        suite.TaskKwargs        `yaml:"task_kwargs" mapstructure:"task_kwargs"`
	VisualizeReward   bool                    `yaml:"visualize_reward" mapstructure:"visualize_reward"`
	EnvironmentKwargs suite.EnvironmentKwargs `yaml:"environment_kwargs" mapstructure:"environment_kwargs"`

	// FromPixels makes observations rendered frames of the environment
	FromPixels bool `yaml:"from_pixels" mapstructure:"from_pixels"`

	// FromEncodedState makes observations encodings of rendered frames
	FromEncodedState bool `yaml:"from_encoded_state" mapstructure:"from_encoded_state"`
	EncodedStateDim  int  `yaml:"encoded_state_dim,omitempty" mapstructure:"encoded_state_dim"`

	// Height, Width, and CameraID determine how frames are rendered
	Height   int `yaml:"height" mapstructure:"height"`
	Width    int `yaml:"width" mapstructure:"width"`
	CameraID int `yaml:"camera_id" mapstructure:"camera_id"`

	// ChannelsFirst lays out pixel observations as (3, Height, Width)
	// rather than (Height, Width, 3)
	ChannelsFirst bool `yaml:"channels_first" mapstructure:"channels_first"`

	// FrameSkip is the number of simulator steps in each step
	FrameSkip int `yaml:"frame_skip" mapstructure:"frame_skip"`

	// UseDenseReward replaces the task reward with a dense pole
	// balancing reward
	UseDenseReward bool `yaml:"use_dense_reward" mapstructure:"use_dense_reward"`

	LogDir          string `yaml:"log_dir,omitempty" mapstructure:"log_dir"`
	LogPixelImages  bool   `yaml:"log_pixel_images" mapstructure:"log_pixel_images"`
	LogMeasurements bool   `yaml:"log_measurements" mapstructure:"log_measurements"`
}

// Validate returns an error wrapping ErrConfig if c is illegal
func (c Config) Validate() error {
	if c.TaskKwargs.Random == nil {
		return fmt.Errorf("%w: please specify a seed, for deterministic "+
			"behaviour", ErrConfig)
	}
	if c.FrameSkip < 1 {
		return fmt.Errorf("%w: frame skip must be at least 1, got %v",
			ErrConfig, c.FrameSkip)
	}
	if c.FromPixels && c.FromEncodedState {
		return fmt.Errorf("%w: at most one of from pixels and from encoded "+
			"state may be set", ErrConfig)
	}
	if c.FromEncodedState && c.EncodedStateDim <= 0 {
		return fmt.Errorf("%w: encoded state dimension must be positive, "+
			"got %v", ErrConfig, c.EncodedStateDim)
	}
	if c.Height <= 0 || c.Width <= 0 {
		return fmt.Errorf("%w: render size must be positive, got %vx%v",
			ErrConfig, c.Height, c.Width)
	}
	if (c.LogPixelImages || c.LogMeasurements) && c.LogDir == "" {
		return fmt.Errorf("%w: logging requires a log directory", ErrConfig)
	}
	return nil
}

// Seed returns the seed of the task, or 0 if there is none
func (c Config) Seed() uint64 {
	if c.TaskKwargs.Random == nil {
		return 0
	}
	return *c.TaskKwargs.Random
}
