package engine

import (
	"time"

	"github.com/saaga0h/sundial/pkg/display"
)

// fakeService records every call so tests can assert on the engine's
// interactions without a live compositor
type fakeService struct {
	hasManager bool
	events     []display.Event

	requested  []uint32
	released   []uint32
	submitted  []uint32
	waits      []time.Time
	requestErr error
}

func newFakeService() *fakeService {
	return &fakeService{hasManager: true}
}

func (f *fakeService) Roundtrip() error { return nil }

func (f *fakeService) Wait(deadline time.Time) error {
	f.waits = append(f.waits, deadline)
	return nil
}

func (f *fakeService) Drain() []display.Event {
	events := f.events
	f.events = nil
	return events
}

func (f *fakeService) HasGammaManager() bool { return f.hasManager }

func (f *fakeService) RequestGamma(output uint32) error {
	if f.requestErr != nil {
		return f.requestErr
	}
	f.requested = append(f.requested, output)
	return nil
}

func (f *fakeService) ReleaseGamma(output uint32) {
	f.released = append(f.released, output)
}

func (f *fakeService) SubmitGamma(output uint32, buf *display.RampBuffer) error {
	f.submitted = append(f.submitted, output)
	return nil
}

func (f *fakeService) Close() error { return nil }
