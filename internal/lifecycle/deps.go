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

// Configs is the schedule owner as seen by the lifecycle.
type Configs interface {
	Active() models.ActiveConfig
	Refresh() error
	TakeLoadError() error
}

type Syncer interface {
	Sync(ctx context.Context, currentID string, timeout time.Duration) (models.SyncOutcome, error)
	Report(msg string)
}

type Planner interface {
	Decide(period int, runtime time.Duration, windowEnd models.TimeOfDay, clock device.Clock) (service.Decision, error)
}

type Composer interface {
	Create(ctx context.Context, quality models.Quality) (service.Message, error)
}

// LogShipper forwards log lines to the remote log topic while the link is up.
type LogShipper interface {
	Start(pub logger.Publisher, topic string, onErr func(error))
	Stop()
}

type Metrics interface {
	ObserveState(state string, seconds float64)
	RecordSync(outcome string)
	RecordDecision(kind string, runtimeSeconds float64)
	RecordTransmit()
	RecordCaptureFailure()
}

// Deps are the collaborators of a Machine. Shipper and Metrics may be nil.
type Deps struct {
	Clock     device.Clock
	Camera    device.Camera
	Power     device.PowerControl
	Transport comms.Transport

	Configs  Configs
	Syncer   Syncer
	Planner  Planner
	Messages Composer
	Journal  service.Journal

	Shipper LogShipper
	Metrics Metrics
	Log     *logger.Logger

	Topics           config.Topics
	SyncTimeout      time.Duration
	JournalRetention time.Duration
}

type nopMetrics struct{}

func (nopMetrics) ObserveState(string, float64)   {}
func (nopMetrics) RecordSync(string)              {}
func (nopMetrics) RecordDecision(string, float64) {}
func (nopMetrics) RecordTransmit()                {}
func (nopMetrics) RecordCaptureFailure()          {}

type nopShipper struct{}

func (nopShipper) Start(logger.Publisher, string, func(error)) {}
func (nopShipper) Stop()                                       {}
