package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/Pablu23/tftpc/internal/client"
	"github.com/Pablu23/tftpc/internal/common"
)

type Config struct {
	Server          string        `mapstructure:"server"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	UploadTimeout   time.Duration `mapstructure:"upload_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	Retries         int           `mapstructure:"retries"`
	LogLevel        string        `mapstructure:"log_level"`
}

// Load reads tftpc.toml from path, or when path is empty from the working
// directory or ~/.tftpc. A missing file is only an error when path is given.
// TFTPC_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tftpc")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tftpc"))
		}
	}

	v.SetEnvPrefix("TFTPC")
	v.AutomaticEnv()

	defaults := client.NewDefaultOptions()
	v.SetDefault("server", "127.0.0.1")
	v.SetDefault("port", defaults.Port)
	v.SetDefault("mode", defaults.Mode)
	v.SetDefault("upload_timeout", defaults.UploadTimeout)
	v.SetDefault("download_timeout", defaults.DownloadTimeout)
	v.SetDefault("retries", defaults.Retries)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Mode == "" {
		cfg.Mode = common.DefaultMode
	}
	return &cfg, nil
}

// ClientOptions applies the configuration to client.Options.
func (cfg *Config) ClientOptions() func(*client.Options) {
	return func(o *client.Options) {
		o.Port = cfg.Port
		o.Mode = cfg.Mode
		o.UploadTimeout = cfg.UploadTimeout
		o.DownloadTimeout = cfg.DownloadTimeout
		o.Retries = cfg.Retries
	}
}
