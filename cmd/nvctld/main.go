package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mqasimca/nvctl/internal/alert"
	"github.com/mqasimca/nvctl/internal/alert/notify"
	"github.com/mqasimca/nvctl/internal/config"
	"github.com/mqasimca/nvctl/internal/curvedaemon"
	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/mqasimca/nvctl/internal/health"
	"github.com/mqasimca/nvctl/internal/logger"
	"github.com/mqasimca/nvctl/internal/metrics"
	"github.com/mqasimca/nvctl/internal/metricsexport"
	"github.com/mqasimca/nvctl/internal/monitor"
	"github.com/mqasimca/nvctl/internal/pid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	exitOK int = iota
	exitAlreadyRunning
	exitDeviceInit
	exitConfig
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
		os.Exit(exitConfig)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())

	if err := pid.Write(); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) && appErr.Code() == errors.ErrAlreadyRunning {
			logger.Error().Msg("another instance is already running")
		} else {
			logger.Error().Err(err).Msg("failed to write lock file")
		}

		os.Exit(exitAlreadyRunning)
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove lock file")
		}
	}()

	manager, err := gpu.NewManager()
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize GPU manager")
		os.Exit(exitDeviceInit)
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("failed to shut down GPU manager")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleSignals(cancel)

	run(ctx, cfg, manager)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("received termination signal")
	cancel()
}

func run(ctx context.Context, cfg *config.Config, manager gpu.Manager) {
	log := logger.Default()

	rules, err := config.LoadAlertRules(cfg.AlertsFile)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load alert rules, continuing with none")
	}

	alertMgr := alert.NewManager(alert.DefaultManagerConfig(), rules)
	notifier := notify.NewManager(notify.NewTerminal(os.Stdout))
	alertSvc := alert.NewService(alertMgr, notifier, log)

	metricsCollector, err := metrics.NewService(metrics.Config{
		DBPath:  cfg.MetricsDB,
		Enabled: cfg.Metrics,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics collector")
		metricsCollector = nil
	}
	defer func() {
		if metricsCollector != nil {
			if err := metricsCollector.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close metrics collector")
			}
		}
	}()

	exporter := metricsexport.NewExporter(prometheus.DefaultRegisterer)
	server := metricsexport.NewDefaultServer(cfg.MetricsAddr)

	go func() {
		if err := server.ListenAndServe(ctx); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	state := curvedaemon.NewState()
	loadDefaultCurves(cfg, manager, state, log)

	daemon := curvedaemon.New(manager, state, log)

	if cfg.Monitor {
		log.Info().Msg("nvctld: monitor mode, curve daemon not started")
	} else {
		daemon.Start()

		defer func() {
			daemon.Stop()
			curvedaemon.RestoreAuto(manager, enabledKeys(state), log)
		}()
	}

	powerServices := buildPowerServices(cfg, manager, log)

	mon := monitor.New(
		monitor.Config{
			Interval:      intervalFromConfig(cfg),
			DryRun:        cfg.Monitor,
			Performance:   cfg.Performance,
			Retry:         true,
			RetryInterval: intervalFromConfig(cfg),
		},
		manager,
		alertSvc,
		health.DefaultCalculator(),
		powerServices,
		metricsCollector,
		exporter,
		log,
	)

	if err := mon.Run(ctx); err != nil {
		log.Error().Err(err).Msg("control loop exited with error")
	}

	log.Info().Msg("exiting")
}
