package dmcgym

import (
	"github.com/samuelfneumann/dmcgym/environment"
	"github.com/samuelfneumann/dmcgym/experiment/savers"
	"go.uber.org/zap"
)

// Option configures the collaborators of an Env
type Option func(*Env)

// WithEnvironment wraps env instead of loading the configured domain
// and task from the suite
func WithEnvironment(env environment.Environment) Option {
	return func(e *Env) {
		e.env = env
	}
}

// WithNormaliser sets the Normaliser used to encode frames
func WithNormaliser(n Normaliser) Option {
	return func(e *Env) {
		e.normaliser = n
	}
}

// WithStateEncoder sets the StateEncoder used to encode frames
func WithStateEncoder(s StateEncoder) Option {
	return func(e *Env) {
		e.encoder = s
	}
}

// WithModel sets the Model used to encode frames
func WithModel(m Model) Option {
	return func(e *Env) {
		e.model = m
	}
}

// WithLogger sets the logger of the Env
func WithLogger(l *zap.Logger) Option {
	return func(e *Env) {
		e.logger = l
	}
}

// WithObserver adds a Saver which is notified of every step
func WithObserver(s savers.Saver) Option {
	return func(e *Env) {
		e.observers = append(e.observers, s)
	}
}

// RenderOption overrides the configured frame size or camera of a
// call to Render
type RenderOption func(*renderConfig)

type renderConfig struct {
	height, width, cameraID int
}

// WithHeight sets the height of the rendered frame
func WithHeight(h int) RenderOption {
	return func(r *renderConfig) {
		r.height = h
	}
}

// WithWidth sets the width of the rendered frame
func WithWidth(w int) RenderOption {
	return func(r *renderConfig) {
		r.width = w
	}
}

// WithCamera sets the camera to render from. Any camera id, including
// 0, overrides the configured camera.
func WithCamera(id int) RenderOption {
	return func(r *renderConfig) {
		r.cameraID = id
	}
}
