package lifecycle

import (
	"context"
	"fmt"

	"sentinel_cam/internal/models"
	"sentinel_cam/internal/service"
)

func (m *Machine) handleInit(ctx context.Context) (State, error) {
	m.deps.Journal.Prune(ctx, m.deps.JournalRetention)
	if err := m.deps.Camera.Start(ctx); err != nil {
		return Init, err
	}
	return CreateMessage, nil
}

func (m *Machine) handleCreateMessage(ctx context.Context) (State, error) {
	m.refreshActive()

	msg, err := m.deps.Messages.Create(ctx, m.cycle.Active.Quality)
	if err != nil {
		return CreateMessage, err
	}
	m.cycle.Message = msg
	m.deps.Journal.Record(ctx, models.EventHardware, "hardware sample", msg.Hardware)
	if msg.CaptureErr != nil {
		m.deps.Metrics.RecordCaptureFailure()
		m.deps.Journal.Record(ctx, models.EventCaptureErr, msg.CaptureErr.Error(), nil)
	}

	if !m.deps.Transport.IsConnected() {
		if err := m.deps.Transport.Connect(ctx); err != nil {
			return CreateMessage, err
		}
		m.deps.Shipper.Start(m.deps.Transport, m.deps.Topics.Log, func(err error) {
			m.deps.Log.Local().Warnw("remote log line not delivered", "err", err)
		})
		m.flushLoadError(ctx)
	}
	return ConfigCheck, nil
}

// flushLoadError reports a startup config failure once the link exists.
func (m *Machine) flushLoadError(ctx context.Context) {
	err := m.deps.Configs.TakeLoadError()
	if err == nil {
		return
	}
	m.deps.Syncer.Report(service.RejectionReport(err.Error()))
	m.deps.Journal.Record(ctx, models.EventConfigError, err.Error(), nil)
}

func (m *Machine) handleConfigCheck(ctx context.Context) (State, error) {
	id := m.cycle.Active.ID
	outcome, err := m.deps.Syncer.Sync(ctx, id, m.deps.SyncTimeout)
	if err != nil {
		return ConfigCheck, err
	}
	m.deps.Metrics.RecordSync(outcome.String())
	m.deps.Journal.Record(ctx, models.EventSync, "sync "+outcome.String(), map[string]string{"uuid": id, "outcome": outcome.String()})

	// the document may have changed, and so may the time of day
	m.refreshActive()
	return Transmit, nil
}

func (m *Machine) refreshActive() {
	if err := m.deps.Configs.Refresh(); err != nil {
		m.deps.Log.Errorw("active config refresh failed", "err", err)
	}
	m.cycle.Active = m.deps.Configs.Active()
}

func (m *Machine) handleTransmit(ctx context.Context) (State, error) {
	if len(m.cycle.Message.Payload) == 0 {
		return Transmit, errNoPayload
	}
	if err := m.deps.Transport.Send(m.cycle.Message.Payload, m.deps.Topics.Image); err != nil {
		return Transmit, err
	}
	m.cycle.Transmitted++
	m.deps.Metrics.RecordTransmit()
	m.deps.Log.Infow("message sent", "topic", m.deps.Topics.Image, "bytes", len(m.cycle.Message.Payload),
		"captured", m.cycle.Message.Telemetry.HasImage())
	return Idle, nil
}

func (m *Machine) handleIdle(ctx context.Context) (State, error) {
	// transmitting may have carried the clock into the next window
	m.refreshActive()
	active := m.cycle.Active
	runtime := m.cycle.Runtime.Elapsed()

	d, err := m.deps.Planner.Decide(active.Period, runtime, active.WindowEnd, m.deps.Clock)
	if err != nil {
		return Idle, err
	}
	m.cycle.LastDecision = d
	m.deps.Metrics.RecordDecision(d.Kind.String(), runtime.Seconds())
	m.deps.Journal.Record(ctx, models.EventDecision, d.String(), map[string]any{
		"period":          active.Period,
		"off_window":      active.PoweredOff(),
		"window_end":      active.WindowEnd,
		"runtime_seconds": runtime.Seconds(),
		"remaining":       d.Remaining.Seconds(),
	})
	m.deps.Log.Infow("idle decision", "period", active.Period, "off_window", active.PoweredOff(),
		"runtime", runtime, "remaining", d.Remaining, "decision", d.String())

	if d.Kind == service.SleepFor {
		fired, stop := m.deps.Clock.Timer(d.Sleep)
		defer stop()
		select {
		case <-ctx.Done():
			return Idle, ctx.Err()
		case <-fired:
		}
		m.cycle.Runtime.Reset()
		return CreateMessage, nil
	}

	m.deps.Log.Infow("shutting down", "wake", d.Wake.String())
	m.deps.Shipper.Stop()
	m.deps.Transport.Disconnect()
	if err := m.deps.Power.ScheduleWakeup(ctx, d.Wake); err != nil {
		return Idle, fmt.Errorf("schedule wake-up %s: %w", d.Wake, err)
	}
	return Halted, nil
}
