package config

import (
	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/mqasimca/nvctl/internal/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Interval    int
	Temperature int
	FanSpeed    int
	Hysteresis  int
	Performance bool
	Monitor     bool
	Verbose     bool
	Debug       bool
	Metrics     bool
	MetricsDB   string
	AlertsFile  string
	ProfilesDir string
	PowerWatts  int
	MetricsAddr string
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	defineFlags(v)

	if err := bindFlags(v); err != nil {
		return nil, err
	}

	if err := loadConfigFile(v); err != nil {
		return nil, err
	}

	bindEnvVariables(v)

	cfg := createConfig(v)

	if cfg.Monitor && !cfg.Debug {
		cfg.Verbose = true
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	setLogLevel(cfg)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", 2)
	v.SetDefault("temperature", 80)
	v.SetDefault("fanspeed", 100)
	v.SetDefault("hysteresis", 4)
	v.SetDefault("performance", false)
	v.SetDefault("monitor", false)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("metrics", false)
	v.SetDefault("database", "/var/lib/nvctl/metrics.db")
	v.SetDefault("alerts-file", "/etc/nvctl/alerts.toml")
	v.SetDefault("profiles-dir", "/etc/nvctl/profiles")
	v.SetDefault("power-watts", 0)
	v.SetDefault("metrics-addr", ":9400")
}

func defineFlags(v *viper.Viper) {
	pflag.Bool("debug", v.GetBool("debug"), "Enable debugging mode")
	pflag.Bool("verbose", v.GetBool("verbose"), "Enable verbose logging")
	pflag.Int("interval", v.GetInt("interval"), "Interval between updates (in seconds)")
	pflag.Int("temperature", v.GetInt("temperature"), "Maximum allowed temperature (in Celsius)")
	pflag.Int("fanspeed", v.GetInt("fanspeed"), "Maximum allowed fan speed (in percent)")
	pflag.Int("hysteresis", v.GetInt("hysteresis"), "Temperature change required before adjusting fan speed")
	pflag.Bool("performance", v.GetBool("performance"), "Enable performance mode (disable power limit adjustments)")
	pflag.Bool("monitor", v.GetBool("monitor"), "Enable monitor mode (only log, don't change settings)")
	pflag.Bool("metrics", v.GetBool("metrics"), "Enable historical metrics collection")
	pflag.String("database", v.GetString("database"), "Path to the metrics database file")
	pflag.String("alerts-file", v.GetString("alerts-file"), "Path to the alert rules TOML document")
	pflag.String("profiles-dir", v.GetString("profiles-dir"), "Directory of fan curve profile TOML documents")
	pflag.Int("power-watts", v.GetInt("power-watts"), "Explicit power limit to enforce, in watts (0 disables)")
	pflag.String("metrics-addr", v.GetString("metrics-addr"), "Address to serve Prometheus metrics on")
	pflag.Parse()
}

func bindFlags(v *viper.Viper) error {
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return errors.New().Wrap(errors.ErrBindFlags, err)
	}

	return nil
}

func loadConfigFile(v *viper.Viper) error {
	v.SetConfigName("nvctl")
	v.SetConfigType("toml")

	v.AddConfigPath("/etc/nvctl")
	v.AddConfigPath(".")

	configFile := v.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.Info().Msg("No config file found. Using defaults and flags.")
			return nil
		}

		return errors.New().Wrap(errors.ErrReadConfig, err)
	}

	logger.Info().Msgf("Using config file: %s", v.ConfigFileUsed())

	return nil
}

func bindEnvVariables(v *viper.Viper) {
	v.SetEnvPrefix("NVCTL")
	v.AutomaticEnv()
}

func createConfig(v *viper.Viper) *Config {
	return &Config{
		Interval:    v.GetInt("interval"),
		Temperature: v.GetInt("temperature"),
		FanSpeed:    v.GetInt("fanspeed"),
		Hysteresis:  v.GetInt("hysteresis"),
		Performance: v.GetBool("performance"),
		Monitor:     v.GetBool("monitor"),
		Debug:       v.GetBool("debug"),
		Verbose:     v.GetBool("verbose"),
		Metrics:     v.GetBool("metrics"),
		MetricsDB:   v.GetString("database"),
		AlertsFile:  v.GetString("alerts-file"),
		ProfilesDir: v.GetString("profiles-dir"),
		PowerWatts:  v.GetInt("power-watts"),
		MetricsAddr: v.GetString("metrics-addr"),
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, cfg.Interval)
	}

	return nil
}

func setLogLevel(cfg *Config) {
	switch {
	case cfg.Debug:
		logger.SetLogLevel(logger.DebugLevel)
	case cfg.Verbose:
		logger.SetLogLevel(logger.InfoLevel)
	default:
		logger.SetLogLevel(logger.WarnLevel)
	}
}
