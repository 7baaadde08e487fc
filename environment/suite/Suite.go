// Package suite loads the simulated control tasks by domain and task
// name.
//
// The cartpole and pendulum domains are always available. Further
// domains, such as the MuJoCo domain built with the mujoco build tag,
// register themselves with Register.
package suite

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/samuelfneumann/dmcgym/environment/suite/cartpole"
	"github.com/samuelfneumann/dmcgym/environment/suite/pendulum"
)

// TaskKwargs configures the task of a loaded environment
type TaskKwargs struct {
	// Random seeds the task. A nil seed seeds the task from the clock.
	Random *uint64 `yaml:"random,omitempty" mapstructure:"random"`

	// TimeLimit is the length of an episode in seconds. A non-positive
	// time limit uses the default time limit of the domain.
	TimeLimit float64 `yaml:"time_limit,omitempty" mapstructure:"time_limit"`
}

// EnvironmentKwargs configures the control loop of a loaded environment
type EnvironmentKwargs struct {
	// NSubSteps is the number of physics steps in each control step
	NSubSteps int `yaml:"n_sub_steps,omitempty" mapstructure:"n_sub_steps"`

	// FlatObservation concatenates every observation field into a
	// single field named "observations"
	FlatObservation bool `yaml:"flat_observation,omitempty" mapstructure:"flat_observation"`
}

// Loader constructs the named task of a domain
type Loader interface {
	Load(task string, seed uint64, taskKwargs TaskKwargs,
		envKwargs EnvironmentKwargs,
		visualizeReward bool) (environment.Environment, error)

	// Tasks returns the names of the tasks of the domain. Domains
	// whose tasks are not known in advance return nil.
	Tasks() []string
}

var (
	mu      sync.RWMutex
	domains = make(map[string]Loader)
)

func init() {
	Register("cartpole", cartpoleLoader{})
	Register("pendulum", pendulumLoader{})
}

// Register makes a domain available to Load. Register panics if a
// domain with the same name has already been registered.
func Register(domain string, loader Loader) {
	mu.Lock()
	defer mu.Unlock()

	if loader == nil {
		panic("register: loader is nil")
	}
	if _, dup := domains[domain]; dup {
		panic(fmt.Sprintf("register: domain %v already registered", domain))
	}
	domains[domain] = loader
}

// Domains returns the sorted names of the registered domains
func Domains() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(domains))
	for name := range domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tasks returns the names of the tasks of a registered domain
func Tasks(domain string) ([]string, error) {
	mu.RLock()
	loader, ok := domains[domain]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("tasks: unknown domain %q, must be one of %v",
			domain, Domains())
	}
	return loader.Tasks(), nil
}

// Load returns the environment of the named domain and task
func Load(domain, task string, taskKwargs TaskKwargs,
	envKwargs EnvironmentKwargs,
	visualizeReward bool) (environment.Environment, error) {
	mu.RLock()
	loader, ok := domains[domain]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("load: unknown domain %q, must be one of %v",
			domain, Domains())
	}

	var seed uint64
	if taskKwargs.Random != nil {
		seed = *taskKwargs.Random
	} else {
		seed = uint64(time.Now().UnixNano())
	}

	env, err := loader.Load(task, seed, taskKwargs, envKwargs,
		visualizeReward)
	if err != nil {
		return nil, fmt.Errorf("load: could not load %v/%v: %w", domain, task,
			err)
	}

	if envKwargs.FlatObservation {
		return NewFlat(env), nil
	}
	return env, nil
}

type cartpoleLoader struct{}

func (cartpoleLoader) Load(task string, seed uint64, taskKwargs TaskKwargs,
	envKwargs EnvironmentKwargs,
	visualizeReward bool) (environment.Environment, error) {
	return cartpole.New(task, cartpole.Config{
		Seed:            seed,
		TimeLimit:       taskKwargs.TimeLimit,
		NSubSteps:       envKwargs.NSubSteps,
		VisualizeReward: visualizeReward,
	})
}

func (cartpoleLoader) Tasks() []string {
	return cartpole.Tasks()
}

type pendulumLoader struct{}

func (pendulumLoader) Load(task string, seed uint64, taskKwargs TaskKwargs,
	envKwargs EnvironmentKwargs,
	visualizeReward bool) (environment.Environment, error) {
	return pendulum.New(task, pendulum.Config{
		Seed:            seed,
		TimeLimit:       taskKwargs.TimeLimit,
		NSubSteps:       envKwargs.NSubSteps,
		VisualizeReward: visualizeReward,
	})
}

func (pendulumLoader) Tasks() []string {
	return pendulum.Tasks()
}
