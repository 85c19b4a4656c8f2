package lifecycle

import (
	"context"
	"time"

	"sentinel_cam/internal/comms"
	"sentinel_cam/internal/config"
	"sentinel_cam/internal/device"
	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
	"sentinel_cam/internal/service"
)

// testClock only moves when told to, or when a timer is requested.
type testClock struct {
	now    time.Time
	slept  time.Duration
	stalls bool
}

func newTestClock(tod string) *testClock {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", "2025-06-02 "+tod, time.UTC)
	if err != nil {
		panic(err)
	}
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time              { return c.now }
func (c *testClock) advance(d time.Duration)     { c.now = c.now.Add(d) }
func (c *testClock) TimeOfDay() models.TimeOfDay { return models.TimeOfDayOf(c.now) }

func (c *testClock) Timer(d time.Duration) (<-chan time.Time, func() bool) {
	if c.stalls {
		return nil, func() bool { return true }
	}
	c.now = c.now.Add(d)
	c.slept += d
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch, func() bool { return false }
}

func (c *testClock) Localize(tod models.TimeOfDay) (time.Time, error) {
	return device.NextOccurrence(c.now, tod)
}

type fakeCamera struct {
	clock    *testClock
	cost     time.Duration
	startErr error
	starts   int
}

func (c *fakeCamera) Start(_ context.Context) error {
	c.starts++
	c.clock.advance(c.cost)
	return c.startErr
}

func (c *fakeCamera) Capture(_ context.Context, _ models.Quality) ([]byte, error) {
	return []byte("jpeg"), nil
}

type fakeTransport struct {
	clock      *testClock
	sendCost   time.Duration
	connected  bool
	connectErr error
	sendErr    error
	connects   int
	disconnect int
	sent       map[string][][]byte
	box        *comms.Mailbox
}

func newFakeTransport(clock *testClock) *fakeTransport {
	return &fakeTransport{clock: clock, sent: map[string][][]byte{}, box: comms.NewMailbox()}
}

func (t *fakeTransport) Connect(_ context.Context) error {
	t.connects++
	if t.connectErr != nil {
		return t.connectErr
	}
	t.connected = true
	return nil
}

func (t *fakeTransport) Disconnect() {
	t.disconnect++
	t.connected = false
}

func (t *fakeTransport) IsConnected() bool { return t.connected }

func (t *fakeTransport) Send(payload []byte, topic string) error {
	t.clock.advance(t.sendCost)
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent[topic] = append(t.sent[topic], payload)
	return nil
}

func (t *fakeTransport) Responses() *comms.Mailbox { return t.box }

// fakeConfigs serves a fixed active config unless selectAt is set, in which
// case every refresh selects again for the clock's time of day.
type fakeConfigs struct {
	clock     *testClock
	active    models.ActiveConfig
	selectAt  func(models.TimeOfDay) models.ActiveConfig
	loadErr   error
	refreshes int
}

func (c *fakeConfigs) Active() models.ActiveConfig { return c.active }

func (c *fakeConfigs) Refresh() error {
	c.refreshes++
	if c.selectAt != nil {
		c.active = c.selectAt(c.clock.TimeOfDay())
	}
	return nil
}

func (c *fakeConfigs) TakeLoadError() error {
	err := c.loadErr
	c.loadErr = nil
	return err
}

type fakeSyncer struct {
	clock   *testClock
	cost    time.Duration
	outcome models.SyncOutcome
	err     error
	ids     []string
	reports []string
	onSync  func()
}

func (s *fakeSyncer) Sync(_ context.Context, id string, _ time.Duration) (models.SyncOutcome, error) {
	s.ids = append(s.ids, id)
	s.clock.advance(s.cost)
	if s.onSync != nil {
		s.onSync()
	}
	return s.outcome, s.err
}

func (s *fakeSyncer) Report(msg string) { s.reports = append(s.reports, msg) }

type fakeComposer struct {
	clock      *testClock
	cost       time.Duration
	captureErr error
	qualities  []models.Quality
}

func (c *fakeComposer) Create(_ context.Context, q models.Quality) (service.Message, error) {
	c.qualities = append(c.qualities, q)
	c.clock.advance(c.cost)
	msg := service.Message{
		Payload:    []byte(`{"image":"..."}`),
		Telemetry:  models.TelemetryMessage{Image: "..."},
		Hardware:   models.HardwareInfo{CPUTemperature: 42},
		CaptureErr: c.captureErr,
	}
	if c.captureErr != nil {
		msg.Telemetry.Image = models.CaptureFailedImage
	}
	return msg, nil
}

type fakePower struct {
	specs []device.WakeSpec
	err   error
}

func (p *fakePower) ScheduleWakeup(_ context.Context, spec device.WakeSpec) error {
	p.specs = append(p.specs, spec)
	return p.err
}

type recordedEvent struct {
	typ, description string
}

type fakeJournal struct {
	events   []recordedEvent
	statuses []models.DeviceStatus
	pruned   []time.Duration
}

func (j *fakeJournal) Record(_ context.Context, typ, description string, _ any) {
	j.events = append(j.events, recordedEvent{typ: typ, description: description})
}

func (j *fakeJournal) UpdateStatus(_ context.Context, s models.DeviceStatus) {
	j.statuses = append(j.statuses, s)
}

func (j *fakeJournal) Prune(_ context.Context, retention time.Duration) {
	j.pruned = append(j.pruned, retention)
}

func (j *fakeJournal) count(typ string) int {
	n := 0
	for _, e := range j.events {
		if e.typ == typ {
			n++
		}
	}
	return n
}

type fakeShipper struct {
	starts, stops int
	topic         string
}

func (s *fakeShipper) Start(_ logger.Publisher, topic string, _ func(error)) {
	s.starts++
	s.topic = topic
}

func (s *fakeShipper) Stop() { s.stops++ }

type fakeMetrics struct {
	states    map[string]int
	syncs     []string
	decisions []string
	transmits int
	captures  int
}

func (m *fakeMetrics) ObserveState(state string, _ float64) {
	if m.states == nil {
		m.states = map[string]int{}
	}
	m.states[state]++
}
func (m *fakeMetrics) RecordSync(o string)                   { m.syncs = append(m.syncs, o) }
func (m *fakeMetrics) RecordDecision(kind string, _ float64) { m.decisions = append(m.decisions, kind) }
func (m *fakeMetrics) RecordTransmit()                       { m.transmits++ }
func (m *fakeMetrics) RecordCaptureFailure()                 { m.captures++ }

// rig wires a machine whose collaborators charge fixed costs on the clock.
type rig struct {
	clock     *testClock
	camera    *fakeCamera
	transport *fakeTransport
	configs   *fakeConfigs
	syncer    *fakeSyncer
	composer  *fakeComposer
	power     *fakePower
	journal   *fakeJournal
	shipper   *fakeShipper
	metrics   *fakeMetrics
}

func newRig(tod string, active models.ActiveConfig) *rig {
	clock := newTestClock(tod)
	return &rig{
		clock:     clock,
		camera:    &fakeCamera{clock: clock},
		transport: newFakeTransport(clock),
		configs:   &fakeConfigs{clock: clock, active: active},
		syncer:    &fakeSyncer{clock: clock, outcome: models.SyncAcknowledged},
		composer:  &fakeComposer{clock: clock},
		power:     &fakePower{},
		journal:   &fakeJournal{},
		shipper:   &fakeShipper{},
		metrics:   &fakeMetrics{},
	}
}

func (r *rig) machine() *Machine {
	return New(Deps{
		Clock:     r.clock,
		Camera:    r.camera,
		Power:     r.power,
		Transport: r.transport,
		Configs:   r.configs,
		Syncer:    r.syncer,
		Planner:   service.NewScheduler(service.DefaultShutdownThreshold, service.DefaultBootShutdownOverhead, logger.NewNop()),
		Messages:  r.composer,
		Journal:   r.journal,
		Shipper:   r.shipper,
		Metrics:   r.metrics,
		Log:       logger.NewNop(),
		Topics: config.Topics{
			Identity: "cam4/uuid",
			Config:   "config/er-edge",
			Confirm:  "er-edge/confirm",
			Image:    "mqtt/rpi/image",
			Log:      "cam4/log",
		},
		SyncTimeout:      time.Minute,
		JournalRetention: 24 * time.Hour,
	})
}

func activeWindow(period int, start, end models.TimeOfDay) models.ActiveConfig {
	return models.ActiveConfig{
		ID:          "3f2b8c1e-9d4a-4b6f-8e2a-1c5d7e9f0a3b",
		Quality:     models.QualityHD,
		Period:      period,
		WindowStart: start,
		WindowEnd:   end,
	}
}
