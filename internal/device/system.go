package device

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/procfs/sysfs"

	"sentinel_cam/internal/models"
)

// System samples hardware health.
type System interface {
	HardwareInfo(ctx context.Context) (models.HardwareInfo, error)
}

// SysfsSystem reads the CPU thermal zone and the fuel-gauge and charger
// power_supply classes from a sysfs mount. Values it cannot read stay zero;
// the returned error joins every failed read.
type SysfsSystem struct {
	root        string
	thermalZone string
	battery     string
	charger     string
}

// NewSysfsSystem reads under root (normally /sys). thermalZone is the zone
// number; battery and charger are power_supply device names.
func NewSysfsSystem(root, thermalZone, battery, charger string) *SysfsSystem {
	return &SysfsSystem{root: root, thermalZone: thermalZone, battery: battery, charger: charger}
}

func (s *SysfsSystem) HardwareInfo(_ context.Context) (models.HardwareInfo, error) {
	var info models.HardwareInfo
	fs, err := sysfs.NewFS(s.root)
	if err != nil {
		return info, fmt.Errorf("open sysfs: %w", err)
	}

	errs := []error{s.readThermal(fs, &info)}

	supplies, err := fs.PowerSupplyClass()
	if err != nil {
		errs = append(errs, fmt.Errorf("read power_supply class: %w", err))
		return info, errors.Join(errs...)
	}

	bat, ok := supplies[s.battery]
	if !ok {
		errs = append(errs, fmt.Errorf("power supply %q not found", s.battery))
	} else {
		errs = append(errs,
			scaled(s.battery, "temp", bat.Temp, 10, &info.BatteryTemperature), // tenths of °C
			scaled(s.battery, "capacity", bat.Capacity, 1, &info.BatteryPercentage),
			scaled(s.battery, "voltage_now", bat.VoltageNow, 1e6, &info.BatteryVoltageNow), // µV
			scaled(s.battery, "voltage_avg", bat.VoltageAvg, 1e6, &info.BatteryVoltageAvg),
			scaled(s.battery, "current_now", bat.CurrentNow, 1e6, &info.BatteryCurrentNow), // µA
			scaled(s.battery, "current_avg", bat.CurrentAvg, 1e6, &info.BatteryCurrentAvg),
		)
	}

	chg, ok := supplies[s.charger]
	if !ok {
		errs = append(errs, fmt.Errorf("power supply %q not found", s.charger))
	} else {
		errs = append(errs,
			scaled(s.charger, "voltage_now", chg.VoltageNow, 1e6, &info.ChargerVoltageNow),
			scaled(s.charger, "current_now", chg.CurrentNow, 1e6, &info.ChargerCurrentNow),
		)
	}

	return info, errors.Join(errs...)
}

func (s *SysfsSystem) readThermal(fs sysfs.FS, info *models.HardwareInfo) error {
	zones, err := fs.ClassThermalZoneStats()
	if err != nil {
		return fmt.Errorf("read thermal zones: %w", err)
	}
	for _, z := range zones {
		if z.Name == s.thermalZone {
			info.CPUTemperature = round2(float64(z.Temp) / 1000) // m°C
			return nil
		}
	}
	return fmt.Errorf("thermal zone %s not found", s.thermalZone)
}

func scaled(supply, attr string, v *int64, scale float64, dst *float64) error {
	if v == nil {
		return fmt.Errorf("%s: %s not reported", supply, attr)
	}
	*dst = round2(float64(*v) / scale)
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// SimulatedSystem returns a slowly draining battery.
type SimulatedSystem struct {
	samples int
}

func NewSimulatedSystem() *SimulatedSystem { return &SimulatedSystem{} }

func (s *SimulatedSystem) HardwareInfo(_ context.Context) (models.HardwareInfo, error) {
	s.samples++
	charge := math.Max(100-float64(s.samples)*0.5, 0)
	return models.HardwareInfo{
		CPUTemperature:     round2(45 + math.Sin(float64(s.samples))*3),
		BatteryTemperature: 24.5,
		BatteryPercentage:  charge,
		BatteryVoltageNow:  round2(3.6 + charge/100*0.6),
		BatteryVoltageAvg:  round2(3.6 + charge/100*0.6),
		BatteryCurrentNow:  -0.42,
		BatteryCurrentAvg:  -0.40,
	}, nil
}
