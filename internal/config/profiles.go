package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mqasimca/nvctl/internal/domain"
	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/spf13/viper"
)

// profilePointDoc mirrors a [[points]] table in a fan curve profile document.
type profilePointDoc struct {
	Temperature int32 `mapstructure:"temperature"`
	Speed       int   `mapstructure:"speed"`
}

type profileDoc struct {
	DefaultSpeed int               `mapstructure:"default_speed"`
	Points       []profilePointDoc `mapstructure:"points"`
}

// LoadProfile reads a single named fan curve profile TOML document from dir
// (file name "<name>.toml") and returns the validated domain.FanCurve it
// describes.
func LoadProfile(dir, name string) (domain.FanCurve, error) {
	errFactory := errors.New()
	path := filepath.Join(dir, name+".toml")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return domain.FanCurve{}, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	var doc profileDoc
	if err := v.Unmarshal(&doc); err != nil {
		return domain.FanCurve{}, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	defaultSpeed, err := domain.NewFanSpeed(doc.DefaultSpeed)
	if err != nil {
		return domain.FanCurve{}, err
	}

	points := make([]domain.FanCurvePoint, 0, len(doc.Points))

	for _, p := range doc.Points {
		speed, err := domain.NewFanSpeed(p.Speed)
		if err != nil {
			return domain.FanCurve{}, err
		}

		points = append(points, domain.FanCurvePoint{TemperatureC: p.Temperature, Speed: speed})
	}

	return domain.NewFanCurve(points, defaultSpeed)
}

// ListProfiles returns the profile names available in dir, derived from
// "<name>.toml" file names. A missing directory yields an empty list rather
// than an error, matching the tool's tolerance for an unconfigured profile
// store.
func ListProfiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInternal, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), ".toml"))
	}

	return names, nil
}
