package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	Secret       string        `mapstructure:"secret"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
}

var ErrNoSecret = errors.New("secret is not configured")

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("ping_period", "54s")

	// the shared JWT secret normally arrives via environment, not the file
	_ = v.BindEnv("secret", "SKETCH_SECRET")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	fmt.Printf("🧩 Mode: %s | Port: %d\n", cfg.Mode, cfg.Port)
	return &cfg, nil
}
