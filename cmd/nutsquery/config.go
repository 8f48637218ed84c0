package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is read from, in increasing priority, the config file, NUTSQUERY_*
// environment variables and command line flags.
type Config struct {
	Catalog      string `mapstructure:"catalog"`
	Snapshot     string `mapstructure:"snapshot"`
	DefaultLimit int    `mapstructure:"default_limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
	NodeNum      int64  `mapstructure:"node_num"`
	LogLevel     string `mapstructure:"log_level"`
}

func loadConfig(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("catalog", "catalog.yaml")
	v.SetDefault("snapshot", "nutsquery.snap")
	v.SetDefault("default_limit", 100)
	v.SetDefault("max_limit", 10000)
	v.SetDefault("node_num", 1)
	v.SetDefault("log_level", "info")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	v.SetEnvPrefix("NUTSQUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// flags are named with dashes, keys with underscores
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr == nil {
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// initLogger initializes the zap logger
func initLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "console"
	return config.Build()
}

// zapLogger routes engine diagnostics into zap.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Printf(format string, args ...any) {
	l.s.Infof(format, args...)
}
