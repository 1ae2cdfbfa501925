package config

import (
	"github.com/spf13/viper"
)

type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	BioFile         string `mapstructure:"bio_file"`
}

func (config GoogleConfig) bindEnvironmentVariables() error {

	if err := viper.BindEnv("google.credentials_file", "GOOGLE_CREDENTIALS_FILE"); err != nil {
		return err
	}

	return viper.BindEnv("google.bio_file", "BIO_FILE")
}
