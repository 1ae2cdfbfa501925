package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Logger LoggerConfig `mapstructure:"logger"`
	Apify  ApifyConfig  `mapstructure:"apify"`
	AI     AIConfig     `mapstructure:"ai"`
	Google GoogleConfig `mapstructure:"google"`
	DB     DBConfig     `mapstructure:"db"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if value, _ := os.LookupEnv("CONFIG_PATH"); value != "" {
		configFile = value
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	setDefaults()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("ai.model", "gemini-1.5-flash")
	viper.SetDefault("db.connection_string", "./data/upwork-hunter.db")
	viper.SetDefault("watch.schedule", "@every 3h")
	viper.SetDefault("watch.ledger_expiration_days", 30)
}

func bindEnvironmentVariables() error {
	var errs []error

	apify, ai, google := ApifyConfig{}, AIConfig{}, GoogleConfig{}
	db, watch, logger := DBConfig{}, WatchConfig{}, LoggerConfig{}

	if err := apify.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ApifyConfig: %w", err))
	}

	if err := ai.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("AIConfig: %w", err))
	}

	if err := google.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("GoogleConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := watch.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("WatchConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.Apify.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ApifyConfig: %w", err))
	}

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}
