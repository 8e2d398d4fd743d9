package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
	"time"
)

type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger"`
	Bot     BotConfig     `mapstructure:"bot"`
	AI      AIConfig      `mapstructure:"ai"`
	Session SessionConfig `mapstructure:"session"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

const defaultConfigFile = "./configs/config.yaml"

// Get loads .env (if any), the yaml file from CONFIG_PATH or ./configs/config.yaml and the
// environment overrides. Any error is fatal.
func Get() *Config {

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("couldn't load .env file: %v", err)
	}

	configFile := defaultConfigFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		configFile = value
	}

	config, err := Load(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func Load(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	setDefaults(v)

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %v: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", string(LevelInfo))
	v.SetDefault("logger.app_name", "solon")
	v.SetDefault("logger.output_file", "./logs/errors.log")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.credential_check_cron", "@hourly")
	v.SetDefault("session.idle_ttl", 24*time.Hour)
	v.SetDefault("session.timezone", "Local")
	v.SetDefault("session.favorable_from_hour", 9)
	v.SetDefault("session.favorable_to_hour", 18)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.address", ":8080")
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	bot, ai, logger, session := BotConfig{}, AIConfig{}, LoggerConfig{}, SessionConfig{}

	if err := bot.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("BotConfig: %w", err))
	}

	if err := ai.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := session.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("SessionConfig: %w", err))
	}

	if err := v.BindEnv("metrics.address", "METRICS_ADDRESS"); err != nil {
		errs = append(errs, fmt.Errorf("MetricsConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

// validate checks everything but the bot section, which only the bot command needs.
func (config Config) validate() error {
	var errs []error

	if err := config.AI.validate(); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := config.Session.validate(); err != nil {
		errs = append(errs, fmt.Errorf("SessionConfig: %w", err))
	}

	if err := config.Metrics.validate(); err != nil {
		errs = append(errs, fmt.Errorf("MetricsConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) ValidateBot() error {
	if err := config.Bot.validate(); err != nil {
		return fmt.Errorf("BotConfig: %w", err)
	}
	return nil
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

func (config MetricsConfig) validate() error {
	if config.Enabled && config.Address == "" {
		return fmt.Errorf("missing variable: address")
	}
	return nil
}
