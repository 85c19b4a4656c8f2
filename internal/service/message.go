package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"sentinel_cam/internal/device"
	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
)

// Message is one assembled telemetry payload plus what went into it.
type Message struct {
	Payload    []byte
	Telemetry  models.TelemetryMessage
	Hardware   models.HardwareInfo
	CaptureErr error // non-nil when the image field carries the failure sentinel
}

type MessageCreator struct {
	camera device.Camera
	system device.System
	clock  device.Clock
	loc    *time.Location
	log    *logger.Logger
}

func NewMessageCreator(camera device.Camera, system device.System, clock device.Clock, loc *time.Location, log *logger.Logger) *MessageCreator {
	if loc == nil {
		loc = time.Local
	}
	return &MessageCreator{camera: camera, system: system, clock: clock, loc: loc, log: log}
}

// Create captures an image at quality and samples the hardware. A failed
// capture does not fail the message: the image field carries
// models.CaptureFailedImage and CaptureErr is set. Sensor read failures
// are logged and the readable values are still sent.
func (m *MessageCreator) Create(ctx context.Context, quality models.Quality) (Message, error) {
	hw, err := m.system.HardwareInfo(ctx)
	if err != nil {
		m.log.Warnw("hardware sample incomplete", "err", err)
	}
	m.logHardware(hw)

	msg := Message{Hardware: hw}
	image := models.CaptureFailedImage
	raw, err := m.camera.Capture(ctx, quality)
	if err != nil {
		msg.CaptureErr = err
		m.log.Errorw("image capture failed", "quality", quality, "err", err)
	} else {
		image = base64.StdEncoding.EncodeToString(raw)
	}

	msg.Telemetry = models.TelemetryMessage{
		Timestamp:     m.clock.Now().In(m.loc).Format(time.RFC3339),
		Image:         image,
		CPUTemp:       hw.CPUTemperature,
		BatteryTemp:   hw.BatteryTemperature,
		BatteryCharge: hw.BatteryPercentage,
	}
	payload, err := json.Marshal(msg.Telemetry)
	if err != nil {
		return Message{}, fmt.Errorf("encode telemetry: %w", err)
	}
	msg.Payload = payload
	return msg, nil
}

func (m *MessageCreator) logHardware(hw models.HardwareInfo) {
	m.log.Infow("hardware sample",
		"battery_temperature", hw.BatteryTemperature,
		"battery_percentage", hw.BatteryPercentage,
		"cpu_temperature", hw.CPUTemperature,
		"battery_voltage_now", hw.BatteryVoltageNow,
		"battery_voltage_avg", hw.BatteryVoltageAvg,
		"battery_current_now", hw.BatteryCurrentNow,
		"battery_current_avg", hw.BatteryCurrentAvg,
		"charger_voltage_now", hw.ChargerVoltageNow,
		"charger_current_now", hw.ChargerCurrentNow,
	)
}
