//go:build mujoco
// +build mujoco

package suite

import (
	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/samuelfneumann/dmcgym/environment/mujoco"
)

func init() {
	Register("mujoco", mujocoLoader{})
}

// mujocoLoader loads MuJoCo models, where the task is the path to the
// model's XML file
type mujocoLoader struct{}

func (mujocoLoader) Load(task string, seed uint64, taskKwargs TaskKwargs,
	envKwargs EnvironmentKwargs,
	visualizeReward bool) (environment.Environment, error) {
	return mujoco.New(task, mujoco.Config{
		Seed:      seed,
		TimeLimit: taskKwargs.TimeLimit,
		NSubSteps: envKwargs.NSubSteps,
	})
}

func (mujocoLoader) Tasks() []string {
	return nil
}
