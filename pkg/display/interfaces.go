package display

import "time"

// Service is the compositor-facing capability consumed by the engine: output
// discovery, per-output gamma control and a single blocking wait point.
// Implementations are not safe for concurrent use; the engine drives them
// from one loop.
type Service interface {
	// Roundtrip flushes all queued requests and blocks until the server has
	// processed them, dispatching any events received meanwhile
	Roundtrip() error

	// Wait flushes queued requests and blocks until the connection becomes
	// readable or the deadline passes, whichever comes first. A zero
	// deadline blocks indefinitely. Received events are queued for Drain.
	Wait(deadline time.Time) error

	// Drain returns the queued events in arrival order and clears the queue
	Drain() []Event

	// HasGammaManager reports whether the compositor advertised a gamma
	// control manager. Checked once after the initial roundtrip.
	HasGammaManager() bool

	// RequestGamma asks for gamma control over an output. The outcome
	// arrives asynchronously as a GammaSizeEvent or GammaFailedEvent.
	RequestGamma(output uint32) error

	// ReleaseGamma destroys the gamma control of an output, if any
	ReleaseGamma(output uint32)

	// SubmitGamma hands the buffer's current contents to the compositor,
	// replacing the output's active gamma ramp wholesale
	SubmitGamma(output uint32, buf *RampBuffer) error

	// Close terminates the connection; any blocked Wait returns
	Close() error
}

// Event is a notification delivered by the display service. Events are
// drained synchronously at the top of each engine iteration; there is no
// concurrent callback delivery.
type Event interface {
	isEvent()
}

// OutputAddedEvent reports a newly discovered output
type OutputAddedEvent struct {
	Name uint32
}

// OutputRemovedEvent reports that an output disappeared
type OutputRemovedEvent struct {
	Name uint32
}

// GammaSizeEvent reports the ramp size of an output whose gamma control
// request succeeded. It is also sent again if the size changes.
type GammaSizeEvent struct {
	Name     uint32
	RampSize uint32
}

// GammaFailedEvent reports that gamma control of an output failed and will
// not recover for the lifetime of this process
type GammaFailedEvent struct {
	Name uint32
}

func (OutputAddedEvent) isEvent()   {}
func (OutputRemovedEvent) isEvent() {}
func (GammaSizeEvent) isEvent()     {}
func (GammaFailedEvent) isEvent()   {}
