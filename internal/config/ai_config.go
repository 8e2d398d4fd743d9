package config

import (
	"errors"
	"fmt"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type AIConfig struct {
	// Key is the shared api key. Empty means every user has to activate with their own key.
	Key                  string        `mapstructure:"key"`
	Model                string        `mapstructure:"model"`
	MaxRequestsPerMinute float32       `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay    float32       `mapstructure:"max_requests_per_day"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	CredentialCheckCron  string        `mapstructure:"credential_check_cron"`
}

func (config AIConfig) validate() error {

	var errs []error

	if config.Model == "" {
		errs = append(errs, fmt.Errorf("missing variable: model"))
	}
	if config.MaxRequestsPerMinute < 0 || config.MaxRequestsPerDay < 0 {
		errs = append(errs, fmt.Errorf("rate limits must not be negative"))
	}
	if config.MaxRequestsPerDay > 0 && config.MaxRequestsPerDay < 1 {
		errs = append(errs, fmt.Errorf("max_requests_per_day must be 0 (unlimited) or at least 1"))
	}
	if config.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative"))
	}
	if _, err := cron.ParseStandard(config.CredentialCheckCron); err != nil {
		errs = append(errs, fmt.Errorf("invalid credential_check_cron %q: %w", config.CredentialCheckCron, err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (config AIConfig) bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	bindings := map[string]string{
		"ai.key":                     "AI_KEY",
		"ai.model":                   "AI_MODEL",
		"ai.max_requests_per_minute": "AI_MAX_REQUESTS_PER_MINUTE",
		"ai.max_requests_per_day":    "AI_MAX_REQUESTS_PER_DAY",
		"ai.request_timeout":         "AI_REQUEST_TIMEOUT",
		"ai.credential_check_cron":   "AI_CREDENTIAL_CHECK_CRON",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", strings.ToLower(env), err))
		}
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}
	return nil
}

func createMultiError(errs []error) error {
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}
