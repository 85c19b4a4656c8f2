package models

// CaptureFailedImage replaces the image field when the camera produced nothing.
const CaptureFailedImage = "Error: Camera was unable to capture the image."

// TelemetryMessage is the JSON payload published on the image topic.
type TelemetryMessage struct {
	Timestamp     string  `json:"timestamp"`
	Image         string  `json:"image"` // base64 JPEG or CaptureFailedImage
	CPUTemp       float64 `json:"cpuTemp"`
	BatteryTemp   float64 `json:"batteryTemp"`
	BatteryCharge float64 `json:"batteryCharge"`
}

// HasImage reports whether the payload carries a real capture.
func (m TelemetryMessage) HasImage() bool {
	return m.Image != "" && m.Image != CaptureFailedImage
}

// HardwareInfo is one hardware-health sample.
type HardwareInfo struct {
	CPUTemperature     float64 `json:"cpu_temperature"`     // °C
	BatteryTemperature float64 `json:"battery_temperature"` // °C
	BatteryPercentage  float64 `json:"battery_percentage"`  // 0..100
	BatteryVoltageNow  float64 `json:"battery_voltage_now"` // V
	BatteryVoltageAvg  float64 `json:"battery_voltage_avg"` // V
	BatteryCurrentNow  float64 `json:"battery_current_now"` // A
	BatteryCurrentAvg  float64 `json:"battery_current_avg"` // A
	ChargerVoltageNow  float64 `json:"charger_voltage_now"` // V
	ChargerCurrentNow  float64 `json:"charger_current_now"` // A
}
