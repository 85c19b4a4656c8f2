// Package config loads the device settings from configs/config.yml, the
// SENTINEL_* environment and the command line.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Device modes select the collaborator implementations.
const (
	ModeHardware  = "hardware"
	ModeSimulated = "simulated"
)

const envPrefix = "SENTINEL"

type Settings struct {
	Device    DeviceSettings    `mapstructure:"device"`
	Schedule  ScheduleSettings  `mapstructure:"schedule"`
	Scheduler SchedulerSettings `mapstructure:"scheduler"`
	Sync      SyncSettings      `mapstructure:"sync"`
	MQTT      MQTTSettings      `mapstructure:"mqtt"`
	Log       LogSettings       `mapstructure:"log"`
	Journal   JournalSettings   `mapstructure:"journal"`
	Diag      DiagSettings      `mapstructure:"diag"`
	Camera    CameraSettings    `mapstructure:"camera"`
	Power     PowerSettings     `mapstructure:"power"`
	System    SystemSettings    `mapstructure:"system"`

	// IssueToken is only set from the command line: print a diagnostics
	// token for this subject and exit.
	IssueToken string `mapstructure:"issue-token"`
}

type DeviceSettings struct {
	Mode     string `mapstructure:"mode"`     // hardware | simulated
	Timezone string `mapstructure:"timezone"` // IANA name or "Local"
}

type ScheduleSettings struct {
	Path      string `mapstructure:"path"`
	MinPeriod int    `mapstructure:"min_period"`
	MaxPeriod int    `mapstructure:"max_period"`
}

type SchedulerSettings struct {
	ShutdownThreshold    time.Duration `mapstructure:"shutdown_threshold"`
	BootShutdownOverhead time.Duration `mapstructure:"boot_shutdown_overhead"`
}

type SyncSettings struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	AckToken string        `mapstructure:"ack_token"`
}

type MQTTSettings struct {
	Broker               string        `mapstructure:"broker"`
	ClientID             string        `mapstructure:"client_id"`
	Username             string        `mapstructure:"username"`
	Password             string        `mapstructure:"password"`
	QoS                  byte          `mapstructure:"qos"`
	PublishTimeout       time.Duration `mapstructure:"publish_timeout"`
	ConnectAttempts      int           `mapstructure:"connect_attempts"`
	ConnectRetryInterval time.Duration `mapstructure:"connect_retry_interval"`
	Topics               Topics        `mapstructure:"topics"`
}

// Topics holds the logical topic names of the device link.
type Topics struct {
	Identity string `mapstructure:"identity"` // device publishes its config uuid
	Config   string `mapstructure:"config"`   // authority answers with ack or a new document
	Confirm  string `mapstructure:"confirm"`  // device reports config-ok / config-nok|reason
	Image    string `mapstructure:"image"`
	Log      string `mapstructure:"log"`
}

type LogSettings struct {
	Level           string `mapstructure:"level"`
	RemoteQueueSize int    `mapstructure:"remote_queue_size"`
}

type JournalSettings struct {
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention"`
}

type DiagSettings struct {
	Enabled   bool          `mapstructure:"enabled"`
	Port      string        `mapstructure:"port"`
	JWTSecret string        `mapstructure:"jwt_secret"` // empty leaves the API unguarded
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type CameraSettings struct {
	Command     string        `mapstructure:"command"`
	JPEGQuality int           `mapstructure:"jpeg_quality"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PowerSettings struct {
	WakeAlarmPath   string   `mapstructure:"wakealarm_path"`
	ShutdownCommand []string `mapstructure:"shutdown_command"`
}

// SystemSettings names the sysfs devices read for hardware health.
type SystemSettings struct {
	SysfsRoot   string `mapstructure:"sysfs_root"`
	ThermalZone string `mapstructure:"thermal_zone"` // zone number, as in thermal_zone<N>
	Battery     string `mapstructure:"battery"`      // power_supply name of the fuel gauge
	Charger     string `mapstructure:"charger"`      // power_supply name of the charger
}

var errNoBroker = errors.New("mqtt.broker must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.mode", ModeHardware)
	v.SetDefault("device.timezone", "Local")

	v.SetDefault("schedule.path", "/home/admin/config/sentinel_app_config.json")
	v.SetDefault("schedule.min_period", 5)
	v.SetDefault("schedule.max_period", 3600)

	v.SetDefault("scheduler.shutdown_threshold", 40*time.Second)
	v.SetDefault("scheduler.boot_shutdown_overhead", 20*time.Second)

	v.SetDefault("sync.timeout", 60*time.Second)
	v.SetDefault("sync.ack_token", "config-ok")

	v.SetDefault("mqtt.broker", "tcp://192.168.0.232:1883")
	v.SetDefault("mqtt.client_id", "sentinel-cam")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 2)
	v.SetDefault("mqtt.publish_timeout", 5*time.Second)
	v.SetDefault("mqtt.connect_attempts", 20)
	v.SetDefault("mqtt.connect_retry_interval", time.Second)
	v.SetDefault("mqtt.topics.identity", "cam4/uuid")
	v.SetDefault("mqtt.topics.config", "config/er-edge")
	v.SetDefault("mqtt.topics.confirm", "er-edge/confirm")
	v.SetDefault("mqtt.topics.image", "mqtt/rpi/image")
	v.SetDefault("mqtt.topics.log", "cam4/log")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.remote_queue_size", 512)

	v.SetDefault("journal.path", "/home/admin/config/sentinel.db")
	v.SetDefault("journal.retention", 7*24*time.Hour)

	v.SetDefault("diag.enabled", false)
	v.SetDefault("diag.port", "8080")
	v.SetDefault("diag.jwt_secret", "")
	v.SetDefault("diag.token_ttl", 12*time.Hour)

	v.SetDefault("camera.command", "rpicam-still")
	v.SetDefault("camera.jpeg_quality", 95)
	v.SetDefault("camera.timeout", 20*time.Second)

	v.SetDefault("power.wakealarm_path", "/sys/class/rtc/rtc0/wakealarm")
	v.SetDefault("power.shutdown_command", []string{"sudo", "shutdown", "-h", "now"})

	v.SetDefault("system.sysfs_root", "/sys")
	v.SetDefault("system.thermal_zone", "0")
	v.SetDefault("system.battery", "bq27441-0")
	v.SetDefault("system.charger", "bq2562x-charger")
}

// Load reads config.yml from the given directories (first match wins). A
// missing file is not an error: defaults and environment still apply. Flags
// that were set on the command line take precedence over both.
func Load(flags *pflag.FlagSet, dirs ...string) (Settings, error) {
	v := viper.New()
	setDefaults(v)
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Settings{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.MQTT.Broker == "" {
		return errNoBroker
	}
	switch s.Device.Mode {
	case ModeHardware, ModeSimulated:
	default:
		return fmt.Errorf("device.mode %q must be %q or %q", s.Device.Mode, ModeHardware, ModeSimulated)
	}
	if s.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos %d must be 0, 1 or 2", s.MQTT.QoS)
	}
	if s.Schedule.MinPeriod <= 0 || s.Schedule.MinPeriod > s.Schedule.MaxPeriod {
		return fmt.Errorf("schedule period bounds [%d,%d] are invalid", s.Schedule.MinPeriod, s.Schedule.MaxPeriod)
	}
	if s.Sync.Timeout <= 0 {
		return fmt.Errorf("sync.timeout must be positive, got %s", s.Sync.Timeout)
	}
	if s.MQTT.ConnectAttempts < 1 {
		return fmt.Errorf("mqtt.connect_attempts must be at least 1, got %d", s.MQTT.ConnectAttempts)
	}
	return nil
}

// Location resolves the device timezone.
func (d DeviceSettings) Location() (*time.Location, error) {
	if d.Timezone == "" || d.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(d.Timezone)
}
