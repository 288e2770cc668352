package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saaga0h/sundial/internal/color"
	"github.com/saaga0h/sundial/internal/solar"
	"github.com/saaga0h/sundial/pkg/config"
	"github.com/saaga0h/sundial/pkg/display"
)

const (
	// Wake bounds for the resampling interval while a ramp is animating
	minWake = 2 * time.Second
	maxWake = 5 * time.Minute

	// kelvinStep sizes the resample interval so each wake moves the
	// temperature by roughly this many Kelvin
	kelvinStep = 25
)

// Scheduler is the single control loop: it advances the clock, recomputes
// the schedule when stale, decides whether to push new ramps and blocks on
// the display connection with a finite deadline.
type Scheduler struct {
	cfg    *config.Config
	svc    display.Service
	reg    *Registry
	logger *slog.Logger

	calc         solar.Calculator
	rampDuration time.Duration
	now          func() time.Time

	sched    solar.Schedule
	phase    solar.Phase
	lastTemp int // last pushed temperature; 0 before the first push
}

// NewScheduler wires the control loop to a display service and registry
func NewScheduler(cfg *config.Config, svc display.Service, reg *Registry, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		svc:          svc,
		reg:          reg,
		logger:       logger,
		calc:         solar.Calculator{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
		rampDuration: time.Duration(cfg.DurationMin) * time.Minute,
		now:          time.Now,
	}
}

// Run blocks until ctx is cancelled or the display connection fails. The
// first roundtrip delivers the registry globals; outputs discovered there
// queue their gamma control requests, which the second roundtrip flushes
// and answers.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.svc.Roundtrip(); err != nil {
		return fmt.Errorf("display roundtrip: %w", err)
	}
	if err := s.applyEvents(); err != nil {
		return err
	}
	if !s.svc.HasGammaManager() {
		return errors.New("compositor does not support wlr-gamma-control-unstable-v1")
	}
	if err := s.svc.Roundtrip(); err != nil {
		return fmt.Errorf("display roundtrip: %w", err)
	}

	for ctx.Err() == nil {
		if err := s.applyEvents(); err != nil {
			return err
		}
		now := s.now()
		if err := s.Tick(now); err != nil {
			return err
		}
		if err := s.svc.Wait(s.Deadline(now)); err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
	}
	return nil
}

// applyEvents drains the display service's event queue and applies each
// notification to the output registry
func (s *Scheduler) applyEvents() error {
	for _, ev := range s.svc.Drain() {
		switch ev := ev.(type) {
		case display.OutputAddedEvent:
			s.reg.Add(ev.Name)
		case display.OutputRemovedEvent:
			s.reg.Remove(ev.Name)
		case display.GammaSizeEvent:
			if err := s.reg.SetGammaSize(ev.Name, ev.RampSize); err != nil {
				return err
			}
		case display.GammaFailedEvent:
			s.reg.SetFailed(ev.Name)
		}
	}
	return nil
}

// Tick runs one scheduler iteration for the given instant: recompute the
// schedule if stale, evaluate the target temperature and push ramps when the
// temperature changed or an output still waits for its first ramp
func (s *Scheduler) Tick(now time.Time) error {
	if s.sched.Stale(now) {
		sched, err := solar.Compute(s.calc, now, s.rampDuration)
		if err != nil {
			return err
		}
		s.sched = sched
		s.logger.Info("calculated new sun trajectory",
			"dawn", sched.Dawn.Local().Format("15:04"),
			"sunrise", sched.Sunrise.Local().Format("15:04"),
			"sunset", sched.Sunset.Local().Format("15:04"),
			"dusk", sched.Dusk.Local().Format("15:04"),
			"condition", sched.Condition.String())
	}

	phase, temp := solar.Evaluate(now, s.sched, s.cfg.LowTemp, s.cfg.HighTemp)
	s.phase = phase

	switch {
	case temp != s.lastTemp:
		if err := s.apply(temp, false); err != nil {
			return err
		}
		s.lastTemp = temp
	case s.reg.NeedsPush():
		if err := s.apply(temp, true); err != nil {
			return err
		}
	}
	return nil
}

// apply builds the ramp for temp once per output and pushes it. With
// onlyStale set, only outputs flagged for an initial push receive it.
func (s *Scheduler) apply(temp int, onlyStale bool) error {
	wr, wg, wb := color.Whitepoint(temp)
	gamma := s.cfg.Gamma
	pushed, err := s.reg.Push(func(table []uint16, rampSize int) {
		color.FillRamp(table, rampSize, wr, wg, wb, gamma)
	}, onlyStale)
	if err != nil {
		return err
	}
	if pushed > 0 {
		s.logger.Info("setting temperature",
			"kelvin", temp, "phase", s.phase.String(), "outputs", pushed)
	}
	return nil
}

// Deadline computes the next wake instant. Stable phases sleep until their
// boundary; ramping phases resample at a bounded interval so visible steps
// stay smooth. The result is always after now.
func (s *Scheduler) Deadline(now time.Time) time.Time {
	var deadline time.Time
	switch {
	case s.sched.Condition != solar.ConditionNormal:
		deadline = s.sched.Dusk
	case s.phase == solar.PhaseNight:
		deadline = s.sched.Dawn
	case s.phase == solar.PhaseDay:
		deadline = s.sched.Sunset
	default:
		deadline = now.Add(s.rampStep())
	}

	if floor := now.Add(minWake); deadline.Before(floor) {
		deadline = floor
	}
	return deadline
}

// rampStep spaces wake-ups so each one advances the ramp by about
// kelvinStep Kelvin, clamped to the wake bounds
func (s *Scheduler) rampStep() time.Duration {
	span := s.sched.Dusk.Sub(s.sched.Sunset)
	if s.phase == solar.PhaseRampUp {
		span = s.sched.Sunrise.Sub(s.sched.Dawn)
	}
	diff := s.cfg.HighTemp - s.cfg.LowTemp
	if diff < 0 {
		diff = -diff
	}

	step := time.Duration(int64(span) * kelvinStep / int64(diff))
	if step < minWake {
		return minWake
	}
	if step > maxWake {
		return maxWake
	}
	return step
}
