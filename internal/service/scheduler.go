package service

import (
	"fmt"
	"time"

	"sentinel_cam/internal/device"
	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
)

// DecisionKind says whether the board stays up between cycles.
type DecisionKind int

const (
	SleepFor DecisionKind = iota
	PowerOff
)

func (k DecisionKind) String() string {
	if k == PowerOff {
		return "power_off"
	}
	return "sleep"
}

// Decision is the outcome of one scheduling step.
type Decision struct {
	Kind      DecisionKind
	Sleep     time.Duration   // SleepFor only
	Wake      device.WakeSpec // PowerOff only
	Remaining time.Duration   // period minus runtime, floored at zero
}

func (d Decision) String() string {
	if d.Kind == PowerOff {
		return "power off, wake " + d.Wake.String()
	}
	return "sleep " + d.Sleep.String()
}

const (
	DefaultShutdownThreshold    = 40 * time.Second
	DefaultBootShutdownOverhead = 20 * time.Second

	// minWakeDelay keeps a relative alarm strictly in the future
	minWakeDelay = time.Second
)

// Scheduler decides between an in-process sleep and a full power-off.
// Powering off only pays when the remaining wait exceeds ShutdownThreshold;
// the wake-up is then advanced by BootShutdownOverhead.
type Scheduler struct {
	ShutdownThreshold    time.Duration
	BootShutdownOverhead time.Duration

	log *logger.Logger
}

func NewScheduler(threshold, overhead time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{ShutdownThreshold: threshold, BootShutdownOverhead: overhead, log: log}
}

// Decide maps the active period and the cycle runtime to the next action.
// An off window wakes at its end, localized with clock. An off window whose
// end has already passed yields a short in-place sleep so the next cycle
// selects the window that follows it.
func (s *Scheduler) Decide(period int, runtime time.Duration, windowEnd models.TimeOfDay, clock device.Clock) (Decision, error) {
	if period == models.OffPeriod {
		if tod := clock.TimeOfDay(); !tod.Before(windowEnd) {
			var wait time.Duration
			if tod == windowEnd {
				wait = time.Second - time.Duration(clock.Now().Nanosecond())
			}
			s.log.Warnw("off window already ended, reselecting", "end", windowEnd, "now", tod)
			return Decision{Kind: SleepFor, Sleep: wait}, nil
		}
		at, err := clock.Localize(windowEnd)
		if err != nil {
			return Decision{}, fmt.Errorf("localize wake time %s: %w", windowEnd, err)
		}
		return Decision{Kind: PowerOff, Wake: device.WakeAt(at)}, nil
	}

	remaining := time.Duration(period)*time.Second - runtime
	if remaining < 0 {
		remaining = 0
	}
	if remaining > s.ShutdownThreshold {
		off := remaining - s.BootShutdownOverhead
		if off < minWakeDelay {
			off = minWakeDelay
		}
		return Decision{Kind: PowerOff, Wake: device.WakeAfter(off), Remaining: remaining}, nil
	}
	if remaining == 0 {
		s.log.Warnw("period shorter than processing time", "period", period, "runtime", runtime)
	}
	return Decision{Kind: SleepFor, Sleep: remaining, Remaining: remaining}, nil
}
