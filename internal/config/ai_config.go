package config

import (
	"github.com/spf13/viper"
)

type AIConfig struct {
	Key                  string  `mapstructure:"key"`
	Model                string  `mapstructure:"model"`
	MaxRequestsPerMinute float32 `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay    float32 `mapstructure:"max_requests_per_day"`
}

// Key is only required by the outreach pipeline; the scrape command runs
// without it, so the check lives there instead of validate().

func (config AIConfig) bindEnvironmentVariables() error {

	if err := viper.BindEnv("ai.key", "AI_KEY"); err != nil {
		return err
	}

	if err := viper.BindEnv("ai.model", "AI_MODEL"); err != nil {
		return err
	}

	if err := viper.BindEnv("ai.max_requests_per_minute", "AI_MAX_REQUESTS_PER_MINUTE"); err != nil {
		return err
	}

	return viper.BindEnv("ai.max_requests_per_day", "AI_MAX_REQUESTS_PER_DAY")
}
