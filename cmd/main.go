// @title                      sentinel-cam diagnostics API
// @version                    1.0
// @description                Local status and journal of the camera unit while it is awake.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/pflag"

	"sentinel_cam/internal/comms"
	"sentinel_cam/internal/config"
	"sentinel_cam/internal/device"
	"sentinel_cam/internal/handlers"
	"sentinel_cam/internal/lifecycle"
	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/metrics"
	"sentinel_cam/internal/models"
	"sentinel_cam/internal/repository"
	"sentinel_cam/internal/repository/db"
	"sentinel_cam/internal/schedule"
	"sentinel_cam/internal/server"
	"sentinel_cam/internal/service"
)

const shutdownTimeout = 5 * time.Second

var configDirs = []string{"configs", "/etc/sentinel-cam"}

func main() {
	pflag.String("issue-token", "", "print a diagnostics API token for `subject` and exit")
	pflag.Parse()

	cfg, err := config.Load(pflag.CommandLine, configDirs...)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.RemoteQueueSize)

	if cfg.IssueToken != "" {
		if err := printToken(cfg.Diag, cfg.IssueToken); err != nil {
			log.Fatalw("issuing token failed", "err", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, log)
	if errors.Is(err, context.Canceled) {
		log.Infow("terminated")
	} else {
		log.Errorw("controller stopped", "err", err, "fatal", models.IsFatal(err))
	}
	_ = log.Sync()
	os.Exit(1)
}

// run owns every collaborator of the controller. It returns only on a
// failure or when ctx ends; a halted hardware unit waits here for the
// shutdown it requested.
func run(ctx context.Context, cfg config.Settings, log *logger.Logger) error {
	loc, err := cfg.Device.Location()
	if err != nil {
		return fmt.Errorf("device timezone: %w", err)
	}

	conn, err := db.InitDB(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close journal", "err", cerr)
		}
	}()

	var tokens service.Authorization
	if cfg.Diag.JWTSecret != "" {
		tokens = service.NewTokenService(cfg.Diag.JWTSecret, cfg.Diag.TokenTTL)
	}
	services := service.NewService(repository.NewRepository(conn), tokens, log)
	collector := metrics.NewCollector(log.Shipper())

	clock := device.NewRTC(loc)
	camera, system, power := buildDevices(cfg, clock)
	client := comms.NewClient(cfg.MQTT, log)

	bounds := schedule.Bounds{MinPeriod: cfg.Schedule.MinPeriod, MaxPeriod: cfg.Schedule.MaxPeriod}
	configs := service.NewConfigService(schedule.NewStore(cfg.Schedule.Path, bounds), bounds, clock, log)
	// a load failure falls back to the default and is reported after connecting
	_ = configs.Load()

	if cfg.Diag.Enabled {
		srv := &server.Server{}
		api := handlers.NewHandler(services, collector.Handler(), log)
		go func() {
			if err := srv.Run(cfg.Diag.Port, api.InitRoutes()); err != nil {
				log.Errorw("diagnostics server failed", "err", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Errorw("diagnostics server forced to shutdown", "err", err)
			}
		}()
	}

	syncer := service.NewSyncService(client, configs, clock, log,
		cfg.Sync.AckToken, cfg.MQTT.Topics.Identity, cfg.MQTT.Topics.Confirm)
	deps := lifecycle.Deps{
		Clock:            clock,
		Camera:           camera,
		Power:            power,
		Transport:        client,
		Configs:          configs,
		Syncer:           syncer,
		Planner:          service.NewScheduler(cfg.Scheduler.ShutdownThreshold, cfg.Scheduler.BootShutdownOverhead, log),
		Messages:         service.NewMessageCreator(camera, system, clock, loc, log),
		Journal:          services.Journal,
		Shipper:          log.Shipper(),
		Metrics:          collector,
		Log:              log,
		Topics:           cfg.MQTT.Topics,
		SyncTimeout:      cfg.Sync.Timeout,
		JournalRetention: cfg.Journal.Retention,
	}

	log.Infow("controller starting", "mode", cfg.Device.Mode, "timezone", loc.String(), "broker", cfg.MQTT.Broker)
	for {
		if err := lifecycle.New(deps).Run(ctx); err != nil {
			return err
		}
		sim, ok := power.(*device.SimulatedPower)
		if !ok {
			log.Infow("wake-up armed, waiting for power-off")
			<-ctx.Done()
			return ctx.Err()
		}
		wake, _ := sim.WakeTime()
		log.Infow("simulated power-off", "wake", wake.In(loc).Format(time.RFC3339))
		if err := sim.WaitForWake(ctx); err != nil {
			return err
		}
	}
}

func buildDevices(cfg config.Settings, clock device.Clock) (device.Camera, device.System, device.PowerControl) {
	if cfg.Device.Mode == config.ModeSimulated {
		return device.NewSimulatedCamera(), device.NewSimulatedSystem(), device.NewSimulatedPower(clock)
	}
	return device.NewStillCamera(cfg.Camera.Command, cfg.Camera.JPEGQuality, cfg.Camera.Timeout),
		device.NewSysfsSystem(cfg.System.SysfsRoot, cfg.System.ThermalZone, cfg.System.Battery, cfg.System.Charger),
		device.NewRTCWakePower(clock, cfg.Power.WakeAlarmPath, cfg.Power.ShutdownCommand)
}

func printToken(diag config.DiagSettings, subject string) error {
	if diag.JWTSecret == "" {
		return errors.New("diag.jwt_secret is not set")
	}
	tok, err := service.NewTokenService(diag.JWTSecret, diag.TokenTTL).GenerateToken(subject)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
