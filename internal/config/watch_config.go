package config

import (
	"github.com/spf13/viper"
)

type WatchConfig struct {
	Schedule             string  `mapstructure:"schedule"`
	OutputPath           string  `mapstructure:"output_path"`
	SheetID              string  `mapstructure:"sheet_id"`
	OutreachEnabled      bool    `mapstructure:"outreach_enabled"`
	LedgerExpirationDays int     `mapstructure:"ledger_expiration_days"`
	TelegramToken        string  `mapstructure:"telegram_token"`
	TelegramChatID       int64   `mapstructure:"telegram_chat_id"`
	SearchQueries        string  `mapstructure:"search_queries"`
	Limit                int     `mapstructure:"limit"`
	DaysBack             int     `mapstructure:"days_back"`
	VerifiedPayment      bool    `mapstructure:"verified_payment"`
	MinSpent             float64 `mapstructure:"min_spent"`
	ExperienceLevels     string  `mapstructure:"experience_levels"`
}

func (config WatchConfig) bindEnvironmentVariables() error {

	if err := viper.BindEnv("watch.telegram_token", "TG_TOKEN"); err != nil {
		return err
	}

	if err := viper.BindEnv("watch.telegram_chat_id", "TG_CHAT_ID"); err != nil {
		return err
	}

	return viper.BindEnv("watch.schedule", "WATCH_SCHEDULE")
}
