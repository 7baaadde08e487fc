// Package envconfig loads and saves adapter configurations. Configurations
// are stored as YAML and can be overridden by DMCGYM_ prefixed environment
// variables, for example DMCGYM_TASK_KWARGS_RANDOM=3 or
// DMCGYM_FRAME_SKIP=4.
package envconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/samuelfneumann/dmcgym/environment/dmcgym"
	"github.com/samuelfneumann/dmcgym/environment/suite"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of environment variables which override
// configuration keys
const EnvPrefix string = "dmcgym"

// Default configuration values
const (
	DefaultDomain    string = "cartpole"
	DefaultTask      string = "swingup"
	DefaultHeight    int    = 84
	DefaultWidth     int    = 84
	DefaultFrameSkip int    = 1
)

// keys lists every configuration key, so that each can be overridden
// from the environment even when the file omits it
var keys = []string{
	"domain",
	"task",
	"task_kwargs.random",
	"task_kwargs.time_limit",
	"visualize_reward",
	"environment_kwargs.n_sub_steps",
	"environment_kwargs.flat_observation",
	"from_pixels",
	"from_encoded_state",
	"encoded_state_dim",
	"height",
	"width",
	"camera_id",
	"channels_first",
	"frame_skip",
	"use_dense_reward",
	"log_dir",
	"log_pixel_images",
	"log_measurements",
}

// Default returns the default configuration. The default configuration
// has no seed, which must be set before an adapter can be created.
func Default() dmcgym.Config {
	return dmcgym.Config{
		Domain:        DefaultDomain,
		Task:          DefaultTask,
		Height:        DefaultHeight,
		Width:         DefaultWidth,
		CameraID:      0,
		ChannelsFirst: true,
		FrameSkip:     DefaultFrameSkip,
	}
}

// Load reads the YAML configuration at path into v and decodes it on
// top of the default configuration. If path is empty, only defaults and
// environment overrides are used.
func Load(v *viper.Viper, path string) (dmcgym.Config, error) {
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return dmcgym.Config{}, fmt.Errorf("load: could not bind %v: %v",
				key, err)
		}
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return dmcgym.Config{}, fmt.Errorf("load: could not open "+
				"config: %v", err)
		}
		defer f.Close()

		if err := v.ReadConfig(f); err != nil {
			return dmcgym.Config{}, fmt.Errorf("load: could not read "+
				"config %v: %v", path, err)
		}
	}

	var c dmcgym.Config
	if err := v.Unmarshal(&c); err != nil {
		return dmcgym.Config{}, fmt.Errorf("load: could not decode config: "+
			"%v", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper, c dmcgym.Config) {
	v.SetDefault("domain", c.Domain)
	v.SetDefault("task", c.Task)
	v.SetDefault("task_kwargs.time_limit", c.TaskKwargs.TimeLimit)
	v.SetDefault("visualize_reward", c.VisualizeReward)
	v.SetDefault("environment_kwargs.n_sub_steps", c.EnvironmentKwargs.NSubSteps)
	v.SetDefault("environment_kwargs.flat_observation",
		c.EnvironmentKwargs.FlatObservation)
	v.SetDefault("from_pixels", c.FromPixels)
	v.SetDefault("from_encoded_state", c.FromEncodedState)
	v.SetDefault("encoded_state_dim", c.EncodedStateDim)
	v.SetDefault("height", c.Height)
	v.SetDefault("width", c.Width)
	v.SetDefault("camera_id", c.CameraID)
	v.SetDefault("channels_first", c.ChannelsFirst)
	v.SetDefault("frame_skip", c.FrameSkip)
	v.SetDefault("use_dense_reward", c.UseDenseReward)
	v.SetDefault("log_dir", c.LogDir)
	v.SetDefault("log_pixel_images", c.LogPixelImages)
	v.SetDefault("log_measurements", c.LogMeasurements)
}

// Save writes c to path as YAML
func Save(c dmcgym.Config, path string) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("save: could not marshal config: %v", err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("save: could not write config: %v", err)
	}
	return nil
}

// WithSeed returns a copy of c seeded with seed
func WithSeed(c dmcgym.Config, seed uint64) dmcgym.Config {
	c.TaskKwargs = suite.TaskKwargs{
		Random:    &seed,
		TimeLimit: c.TaskKwargs.TimeLimit,
	}
	return c
}
