package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type SessionConfig struct {
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
	Timezone          string        `mapstructure:"timezone"`
	FavorableFromHour int           `mapstructure:"favorable_from_hour"`
	FavorableToHour   int           `mapstructure:"favorable_to_hour"`
}

func (config SessionConfig) Location() (*time.Location, error) {
	return time.LoadLocation(config.Timezone)
}

func (config SessionConfig) validate() error {
	var errs []error

	if config.IdleTTL <= 0 {
		errs = append(errs, fmt.Errorf("idle_ttl must be positive"))
	}
	if _, err := config.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", config.Timezone, err))
	}
	if config.FavorableFromHour < 0 || config.FavorableToHour > 23 || config.FavorableFromHour > config.FavorableToHour {
		errs = append(errs, fmt.Errorf("favorable hours must satisfy 0 <= from <= to <= 23"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (config SessionConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("session.timezone", "SOLON_TIMEZONE"); err != nil {
		return err
	}
	return v.BindEnv("session.idle_ttl", "SESSION_IDLE_TTL")
}
