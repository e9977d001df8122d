package main

import (
	"time"

	"github.com/mqasimca/nvctl/internal/config"
	"github.com/mqasimca/nvctl/internal/curvedaemon"
	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/gpu"
	"github.com/mqasimca/nvctl/internal/logger"
	"github.com/mqasimca/nvctl/internal/monitor"
)

func intervalFromConfig(cfg *config.Config) time.Duration {
	if cfg.Interval <= 0 {
		return 2 * time.Second
	}

	return time.Duration(cfg.Interval) * time.Second
}

// loadDefaultCurves seeds the curve daemon's shared table with a "default"
// profile for every fan on every GPU, when one exists in cfg.ProfilesDir. A
// missing profile leaves every fan unmanaged by the curve daemon rather than
// failing startup.
func loadDefaultCurves(cfg *config.Config, manager gpu.Manager, state *curvedaemon.State, log logger.Logger) {
	curve, err := config.LoadProfile(cfg.ProfilesDir, "default")
	if err != nil {
		log.Debug().Err(err).Msg("nvctld: no default fan curve profile, curve daemon idle")
		return
	}

	devices, err := manager.AllDevices()
	if err != nil {
		log.Warn().Err(err).Msg("nvctld: failed to enumerate devices for curve assignment")
		return
	}

	for _, device := range devices {
		fanCount, err := device.FanCount()
		if err != nil {
			continue
		}

		for fanIndex := 0; fanIndex < fanCount; fanIndex++ {
			key := curvedaemon.Key{GpuIndex: device.Index(), FanIndex: fanIndex}
			state.SetCurve(key, curve, true)
		}
	}
}

func enabledKeys(state *curvedaemon.State) []curvedaemon.Key {
	enabled := state.EnabledCurves()
	keys := make([]curvedaemon.Key, len(enabled))

	for i, ec := range enabled {
		keys[i] = ec.Key
	}

	return keys
}

// buildPowerServices builds one PowerService per device, all sharing the
// single configured watt target (0 means unconfigured, leaving every
// service a no-op until a per-GPU target is wired from configuration).
func buildPowerServices(cfg *config.Config, manager gpu.Manager, log logger.Logger) map[int]*monitor.PowerService {
	services := make(map[int]*monitor.PowerService)

	devices, err := manager.AllDevices()
	if err != nil {
		log.Warn().Err(err).Msg("nvctld: failed to enumerate devices for power service setup")
		return services
	}

	var target *domain.PowerLimit

	if cfg.PowerWatts > 0 {
		limit, err := domain.PowerLimitFromWatts(cfg.PowerWatts)
		if err != nil {
			log.Warn().Err(err).Msg("nvctld: invalid configured power limit, ignoring")
		} else {
			target = &limit
		}
	}

	for _, device := range devices {
		services[device.Index()] = monitor.NewPowerService(target, cfg.Monitor, log)
	}

	return services
}
