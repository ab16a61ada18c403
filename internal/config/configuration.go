package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// Executable locations. Empty values fall back to PATH lookup.
	FFmpegPath  string `mapstructure:"FFMPEG_PATH"`
	FFprobePath string `mapstructure:"FFPROBE_PATH"`

	// Termination grace period in seconds between SIGTERM and SIGKILL.
	GracePeriodSeconds int `mapstructure:"GRACE_PERIOD_SECONDS" validate:"gte=0"`

	// Directory ffmpeg builds are downloaded into. Empty means next to
	// the executable.
	DownloadDir string `mapstructure:"DOWNLOAD_DIR"`

	// Log level for the CLI: debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
}

// GracePeriod returns the grace period as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag != "" {
			viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("FFMPEG_PATH", "ffmpeg")
	viper.SetDefault("FFPROBE_PATH", "ffprobe")
	viper.SetDefault("GRACE_PERIOD_SECONDS", 5)
	viper.SetDefault("LOG_LEVEL", "info")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Debug("Loaded configuration", "config", cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
