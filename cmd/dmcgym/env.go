package main

import (
	"fmt"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/dmcgym/environment/dmcgym"
	"github.com/samuelfneumann/dmcgym/environment/envconfig"
	"github.com/samuelfneumann/dmcgym/internal/loggers"
	"github.com/samuelfneumann/dmcgym/network"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Encoder defaults used when observations are encoded frames
const (
	encoderHidden int     = 256
	pixelMean     float64 = 0.5
	pixelStd      float64 = 0.5
)

func errorText(err error) string {
	return fmt.Sprintf("%v %v", aurora.BrightRed("error:"), err)
}

func loadConfig() (dmcgym.Config, error) {
	return envconfig.Load(viper.New(), configPath)
}

func newLogger() (*zap.Logger, error) {
	return loggers.New(logFile, verbose)
}

// newEnv creates an adapter for c. Encoded observations use a randomly
// initialized MLP encoder seeded by the task seed.
func newEnv(c dmcgym.Config, logger *zap.Logger,
	opts ...dmcgym.Option) (*dmcgym.Env, error) {
	opts = append(opts, dmcgym.WithLogger(logger))

	if c.FromEncodedState {
		model, err := network.NewMLP(3*c.Height*c.Width, c.EncodedStateDim,
			[]int{encoderHidden}, []*network.Activation{network.ReLU()},
			c.Seed())
		if err != nil {
			return nil, fmt.Errorf("could not create encoder: %v", err)
		}
		opts = append(opts,
			dmcgym.WithNormaliser(dmcgym.PixelNormaliser{
				Mean: pixelMean,
				Std:  pixelStd,
			}),
			dmcgym.WithStateEncoder(dmcgym.FlatEncoder{}),
			dmcgym.WithModel(model),
		)
	}

	return dmcgym.New(c, opts...)
}
