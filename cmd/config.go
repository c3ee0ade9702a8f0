package cmd

import (
	"errors"

	"github.com/spf13/viper"
)

// Config is the CLI configuration, read from a YAML file and overridable
// through MBK_* environment variables.
type Config struct {
	DataDir         string       `mapstructure:"data_dir"`
	DefaultCurrency string       `mapstructure:"default_currency"`
	Remote          RemoteConfig `mapstructure:"remote"`
}

// RemoteConfig locates the user-supplied replica.
type RemoteConfig struct {
	URL            string `mapstructure:"url"`
	Database       string `mapstructure:"database"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LoadConfig reads the configuration at path, or searches the usual spots
// when path is empty. A missing file is not an error; defaults apply.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", ".moneybook")
	v.SetDefault("default_currency", "EUR")
	v.SetDefault("remote.timeout_seconds", 30)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("moneybook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/moneybook")
	}
	v.SetEnvPrefix("MBK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
