//go:build mujoco
// +build mujoco

package mujoco

// #cgo CFLAGS: -O2 -mavx -pthread
// #cgo LDFLAGS: -lmujoco200nogl
// #include "mujoco.h"
// #include <stdlib.h>
//
// void setQPos(mjData* data, double* positions, int len) {
// 	for (int i = 0; i < len; i++) {
// 		data->qpos[i] = positions[i];
// 	}
// }
//
// void setQVel(mjData* data, double* velocities, int len) {
// 	for (int i = 0; i < len; i++) {
// 		data->qvel[i] = velocities[i];
// 	}
// }
//
// void setCtrl(mjData* data, double* ctrl, int len) {
// 	for (int i = 0; i < len; i++) {
// 		data->ctrl[i] = ctrl[i];
// 	}
// }
import "C"

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/samuelfneumann/dmcgym/environment/internal/control"
	ts "github.com/samuelfneumann/dmcgym/timestep"
	"github.com/samuelfneumann/dmcgym/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultTimeLimit is the default length of an episode in seconds
	DefaultTimeLimit float64 = 10.0

	// ResetNoise bounds the uniform noise added to the initial
	// positions and velocities when an episode starts
	ResetNoise float64 = 0.005
)

func init() {
	keyPath := os.Getenv("MUJOCO_KEY")
	if keyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		keyPath = filepath.Join(home, ".mujoco", "mjkey.txt")
	}

	mjKey := C.CString(keyPath)
	defer C.free(unsafe.Pointer(mjKey))
	C.mj_activate(mjKey)
}

// Config configures a MuJoCo environment
type Config struct {
	Seed uint64

	// TimeLimit is the length of an episode in seconds. A non-positive
	// time limit uses DefaultTimeLimit.
	TimeLimit float64

	// NSubSteps is the number of physics steps in each control step
	NSubSteps int
}

// MuJoCo implements an environment simulating the model in a MuJoCo
// XML file. Actions are the controls of the model's actuators, bounded
// by their control ranges. Observations have two fields: position, the
// generalized positions, and velocity, the generalized velocities.
//
// The model has no task, so every reward is 0.
//
// MuJoCo implements both the environment.Environment and
// environment.Physics interfaces
type MuJoCo struct {
	model *C.mjModel
	data  *C.mjData

	nq, nv, nu int
	initQPos   []float64
	initQVel   []float64
	ctrlLow    []float64
	ctrlHigh   []float64

	noise     distuv.Uniform
	episode   *control.Episode
	nSubSteps int
}

// New returns a new MuJoCo environment simulating the model in the XML
// file at xmlPath
func New(xmlPath string, c Config) (*MuJoCo, error) {
	if _, err := os.Stat(xmlPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("new: no such path '%v'", xmlPath)
	}

	model, data, err := loadXML(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("new: could not load XML: %v", err)
	}

	nSubSteps := c.NSubSteps
	if nSubSteps <= 0 {
		nSubSteps = 1
	}
	timeLimit := c.TimeLimit
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	nq, nv, nu := int(model.nq), int(model.nv), int(model.nu)
	bounds := f64SliceC2Go(cDoubles(model.actuator_ctrlrange), 2*nu)
	low := make([]float64, nu)
	high := make([]float64, nu)
	for i := 0; i < nu; i++ {
		low[i] = bounds[2*i]
		high[i] = bounds[2*i+1]
	}

	controlTimestep := float64(model.opt.timestep) * float64(nSubSteps)

	return &MuJoCo{
		model:    model,
		data:     data,
		nq:       nq,
		nv:       nv,
		nu:       nu,
		initQPos: f64SliceC2Go(cDoubles(data.qpos), nq),
		initQVel: f64SliceC2Go(cDoubles(data.qvel), nv),
		ctrlLow:  low,
		ctrlHigh: high,
		noise: distuv.Uniform{
			Min: -ResetNoise,
			Max: ResetNoise,
			Src: rand.NewSource(c.Seed),
		},
		episode:   control.NewEpisode(timeLimit, controlTimestep),
		nSubSteps: nSubSteps,
	}, nil
}

// Reset starts a new episode from the initial state of the model,
// perturbed by uniform noise
func (m *MuJoCo) Reset() (ts.TimeStep, error) {
	C.mj_resetData(m.model, m.data)

	qpos := make([]float64, m.nq)
	for i := range qpos {
		qpos[i] = m.initQPos[i] + m.noise.Rand()
	}
	qvel := make([]float64, m.nv)
	for i := range qvel {
		qvel[i] = m.initQVel[i] + m.noise.Rand()
	}

	if err := m.setState(qpos, qvel); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	return m.episode.Begin(m.observation()), nil
}

// Step takes one control step. Controls are clipped to the control
// ranges of the actuators.
func (m *MuJoCo) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if m.episode.ResetNext() {
		step, err := m.Reset()
		return step, false, err
	}
	if a == nil || a.Len() != m.nu {
		return ts.TimeStep{}, false, fmt.Errorf("step: invalid control "+
			"dimensions \n\thave(%v) \n\twant(%v)", lenOf(a), m.nu)
	}

	ctrl := make([]float64, m.nu)
	for i := range ctrl {
		ctrl[i] = floatutils.Clip(a.AtVec(i), m.ctrlLow[i], m.ctrlHigh[i])
	}
	if m.nu > 0 {
		C.setCtrl(m.data, (*C.double)(unsafe.Pointer(&ctrl[0])), C.int(m.nu))
	}

	for i := 0; i < m.nSubSteps; i++ {
		C.mj_step(m.model, m.data)
	}

	step, last := m.episode.Advance(0, m.observation())
	return step, last, nil
}

func (m *MuJoCo) setState(qpos, qvel []float64) error {
	if len(qpos) != m.nq {
		return fmt.Errorf("setState: invalid position dimensions \n\t"+
			"have(%v) \n\twant(%v)", len(qpos), m.nq)
	}
	if len(qvel) != m.nv {
		return fmt.Errorf("setState: invalid velocity dimensions \n\t"+
			"have(%v) \n\twant(%v)", len(qvel), m.nv)
	}

	if m.nq > 0 {
		C.setQPos(m.data, (*C.double)(unsafe.Pointer(&qpos[0])), C.int(m.nq))
	}
	if m.nv > 0 {
		C.setQVel(m.data, (*C.double)(unsafe.Pointer(&qvel[0])), C.int(m.nv))
	}

	C.mj_forward(m.model, m.data)
	return nil
}

func (m *MuJoCo) observation() ts.Observation {
	qpos := f64SliceC2Go(cDoubles(m.data.qpos), m.nq)
	qvel := f64SliceC2Go(cDoubles(m.data.qvel), m.nv)

	return ts.Observation{
		ts.NewField("position", []int{m.nq}, qpos),
		ts.NewField("velocity", []int{m.nv}, qvel),
	}
}

// ActionSpec returns the action specification of the environment,
// bounded by the control ranges of the actuators
func (m *MuJoCo) ActionSpec() environment.Spec {
	return environment.NewBoundedSpec("action", []int{m.nu},
		environment.Action, environment.Float64, m.ctrlLow, m.ctrlHigh)
}

// ObservationSpec returns the specifications of the position and
// velocity observation fields
func (m *MuJoCo) ObservationSpec() []environment.Spec {
	return []environment.Spec{
		environment.NewSpec("position", []int{m.nq}, environment.Observation,
			environment.Float64),
		environment.NewSpec("velocity", []int{m.nv}, environment.Observation,
			environment.Float64),
	}
}

// Physics returns the simulation underlying the environment
func (m *MuJoCo) Physics() environment.Physics {
	return m
}

// State returns the generalized positions followed by the generalized
// velocities
func (m *MuJoCo) State() []float64 {
	return append(f64SliceC2Go(cDoubles(m.data.qpos), m.nq),
		f64SliceC2Go(cDoubles(m.data.qvel), m.nv)...)
}

// Render is not supported, since the environment is linked against the
// MuJoCo library without OpenGL
func (m *MuJoCo) Render(height, width, cameraID int) (*image.RGBA, error) {
	return nil, fmt.Errorf("render: rendering is not supported by the " +
		"mujoco domain")
}

// ControlTimestep returns the number of seconds in each control step
func (m *MuJoCo) ControlTimestep() float64 {
	return float64(m.model.opt.timestep) * float64(m.nSubSteps)
}

// Close frees the MuJoCo model and data
func (m *MuJoCo) Close() {
	C.mj_deleteData(m.data)
	C.mj_deleteModel(m.model)
}

func lenOf(v mat.Vector) int {
	if v == nil {
		return 0
	}
	return v.Len()
}

func loadXML(file string) (*C.mjModel, *C.mjData, error) {
	modelName := C.CString(file)
	defer C.free(unsafe.Pointer(modelName))

	var err [1000]C.char
	model := C.mj_loadXML(modelName, nil, &err[0], C.int(len(err)))
	goErr := C.GoString(&err[0])
	if model == nil || len(goErr) != 0 {
		return nil, nil, fmt.Errorf("could not construct model: %v", goErr)
	}

	data := C.mj_makeData(model)
	if data == nil {
		C.mj_deleteModel(model)
		return nil, nil, fmt.Errorf("could not construct mjData")
	}

	return model, data, nil
}

// cDoubles views an array of mjtNum as an array of C doubles
func cDoubles(array *C.mjtNum) *C.double {
	return (*C.double)(unsafe.Pointer(array))
}

// f64SliceC2Go converts a copy of a C double array to a Go []float64
//
// See https://github.com/golang/go/wiki/cgo#turning-c-arrays-into-go-slices
func f64SliceC2Go(array *C.double, n int) []float64 {
	if n == 0 {
		return []float64{}
	}
	list := (*[1 << 30]float64)(unsafe.Pointer(array))[:n:n]

	newList := make([]float64, n)
	copy(newList, list)
	return newList
}
