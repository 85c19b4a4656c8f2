package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sentinel_cam/internal/comms"
	"sentinel_cam/internal/device"
	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
	"sentinel_cam/internal/schedule"
)

// fakeClock is a manually driven clock in the device zone. Timers fire at
// once and move the clock forward.
type fakeClock struct {
	now time.Time
}

func newFakeClock(tod string) *fakeClock {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", "2025-06-02 "+tod, time.UTC)
	if err != nil {
		panic(err)
	}
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Timer(d time.Duration) (<-chan time.Time, func() bool) {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch, func() bool { return false }
}

func (c *fakeClock) TimeOfDay() models.TimeOfDay { return models.TimeOfDayOf(c.now) }

func (c *fakeClock) Localize(tod models.TimeOfDay) (time.Time, error) {
	return device.NextOccurrence(c.now, tod)
}

type sentMessage struct {
	topic   string
	payload string
}

// fakeLink plays the config authority: every id advertisement is answered
// with reply, when set.
type fakeLink struct {
	box      *comms.Mailbox
	reply    []byte
	sendErr  error
	failOn   string
	sent     []sentMessage
	identity string
}

func newFakeLink(reply []byte) *fakeLink {
	return &fakeLink{box: comms.NewMailbox(), reply: reply, identity: "cam4/uuid"}
}

func (l *fakeLink) Send(payload []byte, topic string) error {
	if l.sendErr != nil && (l.failOn == "" || l.failOn == topic) {
		return l.sendErr
	}
	l.sent = append(l.sent, sentMessage{topic: topic, payload: string(payload)})
	if topic == l.identity && l.reply != nil {
		l.box.Put(l.reply)
	}
	return nil
}

func (l *fakeLink) Responses() *comms.Mailbox { return l.box }

func (l *fakeLink) sentOn(topic string) []string {
	var out []string
	for _, m := range l.sent {
		if m.topic == topic {
			out = append(out, m.payload)
		}
	}
	return out
}

func newConfigService(t *testing.T, clock device.Clock) (*ConfigService, *schedule.Store) {
	t.Helper()
	store := schedule.NewStore(filepath.Join(t.TempDir(), "sentinel_app_config.json"), schedule.DefaultBounds())
	return NewConfigService(store, schedule.DefaultBounds(), clock, logger.NewNop()), store
}

const replacementPayload = `{
    "uuid": "3f2b8c1e-9d4a-4b6f-8e2a-1c5d7e9f0a3b",
    "quality": "HD",
    "timing": [
        {"period": 60, "start": "00:00:00", "end": "12:00:00"},
        {"period": -1, "start": "12:00:00", "end": "23:59:59"}
    ]
}`

type stubCamera struct {
	frame []byte
	err   error
	asked []models.Quality
}

func (c *stubCamera) Start(_ context.Context) error { return nil }

func (c *stubCamera) Capture(_ context.Context, q models.Quality) ([]byte, error) {
	c.asked = append(c.asked, q)
	return c.frame, c.err
}

type stubSystem struct {
	info models.HardwareInfo
	err  error
}

func (s *stubSystem) HardwareInfo(_ context.Context) (models.HardwareInfo, error) {
	return s.info, s.err
}

var errStub = errors.New("stub failure")
