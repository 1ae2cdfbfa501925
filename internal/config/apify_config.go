package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ApifyConfig struct {
	Token                string  `mapstructure:"token"`
	MaxRequestsPerSecond float32 `mapstructure:"max_requests_per_second"`
}

func (config ApifyConfig) validate() error {
	if config.Token == "" {
		return fmt.Errorf("missing required variable: token")
	}
	return nil
}

func (config ApifyConfig) bindEnvironmentVariables() error {

	if err := viper.BindEnv("apify.token", "APIFY_API_TOKEN"); err != nil {
		return err
	}

	return viper.BindEnv("apify.max_requests_per_second", "APIFY_MAX_REQUESTS_PER_SECOND")
}
