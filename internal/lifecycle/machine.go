package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"sentinel_cam/internal/models"
	"sentinel_cam/internal/service"
)

// CycleContext is the state owned by the machine for one process wake.
// Only the goroutine running the machine touches it.
type CycleContext struct {
	State        State
	Active       models.ActiveConfig
	Runtime      Runtime
	Message      service.Message
	LastDecision service.Decision
	Transmitted  int
}

type Machine struct {
	deps  Deps
	cycle CycleContext
}

func New(deps Deps) *Machine {
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Shipper == nil {
		deps.Shipper = nopShipper{}
	}
	return &Machine{deps: deps, cycle: CycleContext{State: Init}}
}

// Cycle returns a copy of the current cycle context.
func (m *Machine) Cycle() CycleContext { return m.cycle }

// Run steps the machine until it halts. It returns nil once the wake-up is
// armed and the board is going down; any error stops the machine in the
// state that failed. Callers classify errors with models.IsFatal.
func (m *Machine) Run(ctx context.Context) error {
	for m.cycle.State != Halted {
		if err := m.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step runs the handler of the current state once.
func (m *Machine) Step(ctx context.Context) error {
	cur := m.cycle.State
	next, err := m.timed(ctx, cur)
	if err != nil {
		err = fmt.Errorf("%s: %w", cur, err)
		if models.IsFatal(err) {
			m.deps.Journal.Record(ctx, models.EventFatal, err.Error(), map[string]string{"state": cur.String()})
		}
		return err
	}
	if next != cur {
		m.deps.Log.Debugw("transition", "from", cur, "to", next)
		m.deps.Journal.Record(ctx, models.EventState, next.String(), nil)
	}
	m.cycle.State = next
	m.publishStatus(ctx)
	return nil
}

// timed wraps a state handler: it measures the handler with the injected
// clock and folds the elapsed time into the cycle runtime, except for Idle.
func (m *Machine) timed(ctx context.Context, s State) (State, error) {
	start := m.deps.Clock.Now()
	next, err := m.step(ctx, s)
	took := m.deps.Clock.Now().Sub(start)

	if s != Idle {
		m.cycle.Runtime.Add(took)
	}
	m.deps.Metrics.ObserveState(s.String(), took.Seconds())
	m.deps.Log.Infow("state_handled", "state", s, "took", took, "runtime", m.cycle.Runtime.Elapsed())
	return next, err
}

// step is the transition function.
func (m *Machine) step(ctx context.Context, s State) (State, error) {
	switch s {
	case Init:
		return m.handleInit(ctx)
	case CreateMessage:
		return m.handleCreateMessage(ctx)
	case ConfigCheck:
		return m.handleConfigCheck(ctx)
	case Transmit:
		return m.handleTransmit(ctx)
	case Idle:
		return m.handleIdle(ctx)
	case Halted:
		return Halted, nil
	default:
		return s, fmt.Errorf("unknown state %d", int(s))
	}
}

func (m *Machine) publishStatus(ctx context.Context) {
	status := models.DeviceStatus{
		State:          m.cycle.State.String(),
		ConfigID:       m.cycle.Active.ID,
		Period:         m.cycle.Active.Period,
		WindowEnd:      string(m.cycle.Active.WindowEnd),
		RuntimeSeconds: m.cycle.Runtime.Seconds(),
		Connected:      m.deps.Transport.IsConnected(),
		UpdatedAt:      m.deps.Clock.Now().UTC(),
	}
	if m.cycle.State == Idle || m.cycle.State == Halted {
		status.LastDecision = m.cycle.LastDecision.String()
	}
	m.deps.Journal.UpdateStatus(ctx, status)
}

var errNoPayload = errors.New("no payload assembled")
