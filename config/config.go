package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	ErrorInterval int
	RunsDir       string
	UploadsDir    string
	Persist       bool
	Addr          string
	LogLevel      string
	LogFile       string
	CacheSize     int
	MaxTextBytes  int64
	PreviewBits   int
	PreviewText   int
}

func init() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("ErrorInterval", 50)
	viper.SetDefault("RunsDir", "runs")
	viper.SetDefault("UploadsDir", "uploads")
	viper.SetDefault("Persist", true)
	viper.SetDefault("Addr", ":5000")
	viper.SetDefault("LogLevel", "warn")
	viper.SetDefault("LogFile", "")
	viper.SetDefault("CacheSize", 32)
	viper.SetDefault("MaxTextBytes", 1<<20)
	viper.SetDefault("PreviewBits", 200)
	viper.SetDefault("PreviewText", 300)

	viper.SetEnvPrefix("INFOPIPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// SetConfigFile reads configFile into the global viper registry. An empty
// name keeps the defaults.
func SetConfigFile(configFile string) error {
	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "reading config file %s", configFile)
	}
	return nil
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if config.ErrorInterval < 1 {
		return nil, errors.Errorf("ErrorInterval must be >= 1, got %d", config.ErrorInterval)
	}
	if config.CacheSize < 1 {
		config.CacheSize = 1
	}
	return &config, nil
}
