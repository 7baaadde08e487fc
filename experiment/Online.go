package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Online runs an agent online for a fixed number of episodes. Data is
// recorded by the observers of the Environment.
type Online struct {
	env      Environment
	agent    Agent
	episodes int
	logger   *zap.Logger

	returns []float64
	lengths []int
}

// NewOnline creates and returns a new online experiment which runs
// agent on env for the given number of episodes
func NewOnline(env Environment, agent Agent, episodes int,
	logger *zap.Logger) *Online {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Online{
		env:      env,
		agent:    agent,
		episodes: episodes,
		logger:   logger,
	}
}

// RunEpisode runs a single episode of the experiment to completion and
// returns its return and length
func (o *Online) RunEpisode(ctx context.Context) (float64, int, error) {
	obs, err := o.env.Reset()
	if err != nil {
		return 0, 0, fmt.Errorf("runEpisode: %v", err)
	}

	var (
		ret   float64
		steps int
	)
	for done := false; !done; {
		if err := ctx.Err(); err != nil {
			return ret, steps, err
		}

		action := o.agent.SelectAction(obs)

		var reward float64
		obs, reward, done, _, err = o.env.Step(action)
		if err != nil {
			return ret, steps, fmt.Errorf("runEpisode: %v", err)
		}
		ret += reward
		steps++
	}
	return ret, steps, nil
}

// Run runs every episode of the experiment. After each episode,
// onEpisode is called if it is not nil.
func (o *Online) Run(ctx context.Context, onEpisode func()) error {
	for i := len(o.returns); i < o.episodes; i++ {
		ret, steps, err := o.RunEpisode(ctx)
		if err != nil {
			return fmt.Errorf("run: episode %v: %w", i, err)
		}

		o.returns = append(o.returns, ret)
		o.lengths = append(o.lengths, steps)
		o.logger.Debug("episode finished", zap.Int("episode", i),
			zap.Float64("return", ret), zap.Int("steps", steps))

		if onEpisode != nil {
			onEpisode()
		}
	}
	return nil
}

// Returns returns the return of each finished episode
func (o *Online) Returns() []float64 {
	return append([]float64{}, o.returns...)
}

// Lengths returns the length of each finished episode
func (o *Online) Lengths() []int {
	return append([]int{}, o.lengths...)
}
