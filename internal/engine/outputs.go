package engine

import (
	"fmt"
	"log/slog"

	"github.com/saaga0h/sundial/pkg/display"
)

type outputState int

const (
	// statePending: discovered, gamma control requested or unavailable
	statePending outputState = iota
	// stateReady: ramp size known and buffer allocated
	stateReady
	// stateFailed: gamma control failed; sticky for the process lifetime
	stateFailed
)

// Output is one display output under management
type Output struct {
	Name     uint32
	RampSize uint32
	Buffer   *display.RampBuffer

	state     outputState
	needsPush bool
}

// Registry owns every output record and its shared ramp buffer. Nothing else
// mutates output state.
type Registry struct {
	svc     display.Service
	logger  *slog.Logger
	outputs map[uint32]*Output
}

// NewRegistry creates an empty output registry backed by the display service
func NewRegistry(svc display.Service, logger *slog.Logger) *Registry {
	return &Registry{
		svc:     svc,
		logger:  logger,
		outputs: make(map[uint32]*Output),
	}
}

// Add records a newly discovered output and requests gamma control for it.
// Without a gamma control manager the record stays unmanaged.
func (r *Registry) Add(name uint32) {
	if _, exists := r.outputs[name]; exists {
		return
	}
	r.outputs[name] = &Output{Name: name}

	if !r.svc.HasGammaManager() {
		r.logger.Warn("skipping setup of output: gamma control manager missing", "output", name)
		return
	}
	if err := r.svc.RequestGamma(name); err != nil {
		r.logger.Warn("failed to request gamma control", "output", name, "error", err)
	}
}

// SetGammaSize (re)allocates the output's shared buffer for the given ramp
// size, marks it ready and flags it for an initial push
func (r *Registry) SetGammaSize(name, rampSize uint32) error {
	out, ok := r.outputs[name]
	if !ok {
		return fmt.Errorf("gamma size for unknown output %d", name)
	}
	if out.state == stateFailed {
		return nil
	}
	if out.Buffer != nil {
		out.Buffer.Close()
		out.Buffer = nil
	}

	buf, err := display.NewRampBuffer(rampSize)
	if err != nil {
		return fmt.Errorf("could not create gamma table for output %d: %w", name, err)
	}
	out.Buffer = buf
	out.RampSize = rampSize
	out.state = stateReady
	out.needsPush = true
	r.logger.Info("output ready", "output", name, "ramp_size", rampSize)
	return nil
}

// SetFailed marks an output permanently unmanaged and releases its resources.
// The record stays so rediscovery of the same name is not retried.
func (r *Registry) SetFailed(name uint32) {
	out, ok := r.outputs[name]
	if !ok {
		return
	}
	r.logger.Warn("gamma control of output failed", "output", name)
	r.svc.ReleaseGamma(name)
	if out.Buffer != nil {
		out.Buffer.Close()
		out.Buffer = nil
	}
	out.state = stateFailed
	out.needsPush = false
}

// Remove releases the output's gamma control and buffer and deletes the
// record
func (r *Registry) Remove(name uint32) {
	out, ok := r.outputs[name]
	if !ok {
		return
	}
	r.logger.Info("removing output", "output", name)
	r.svc.ReleaseGamma(name)
	if out.Buffer != nil {
		out.Buffer.Close()
	}
	delete(r.outputs, name)
}

// ReadyOutputs returns the names of outputs that can receive a push
func (r *Registry) ReadyOutputs() []uint32 {
	var names []uint32
	for name, out := range r.outputs {
		if out.state == stateReady {
			names = append(names, name)
		}
	}
	return names
}

// NeedsPush reports whether any ready output still waits for its first ramp
// since (re)gaining gamma control
func (r *Registry) NeedsPush() bool {
	for _, out := range r.outputs {
		if out.state == stateReady && out.needsPush {
			return true
		}
	}
	return false
}

// Push fills and submits ramps. The fill callback writes a complete table
// for the output's ramp size into the shared buffer; the buffer is always
// overwritten in full before submission. With onlyStale set, outputs that
// already carry the current ramp are skipped. Returns the number of outputs
// pushed to.
func (r *Registry) Push(fill func(table []uint16, rampSize int), onlyStale bool) (int, error) {
	pushed := 0
	for name, out := range r.outputs {
		if out.state != stateReady {
			continue
		}
		if onlyStale && !out.needsPush {
			continue
		}
		fill(out.Buffer.Table(), int(out.RampSize))
		if err := r.svc.SubmitGamma(name, out.Buffer); err != nil {
			return pushed, fmt.Errorf("failed to submit gamma ramp for output %d: %w", name, err)
		}
		out.needsPush = false
		pushed++
	}
	return pushed, nil
}

// Close releases every buffer and gamma control
func (r *Registry) Close() {
	for name := range r.outputs {
		r.Remove(name)
	}
}
