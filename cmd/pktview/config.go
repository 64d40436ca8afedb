package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soypat/pktview/internal"
)

// config is read from an optional YAML file and PKTVIEW_ prefixed environment
// variables, i.e: PKTVIEW_LOG_LEVEL=debug. Explicitly set flags take precedence.
type config struct {
	Log    logConfig    `mapstructure:"log"`
	Format formatConfig `mapstructure:"format"`
	Dump   dumpConfig   `mapstructure:"dump"`
}

type logConfig struct {
	Level string `mapstructure:"level"`
}

type formatConfig struct {
	FieldSep string `mapstructure:"field_sep"`
	FrameSep string `mapstructure:"frame_sep"`
}

type dumpConfig struct {
	Limit int `mapstructure:"limit"`
}

// flagKeys maps command line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"field-sep": "format.field_sep",
	"limit":     "dump.limit",
}

func loadConfig(path string, flags *pflag.FlagSet) (*config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PKTVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}
	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if _, err := cfg.Log.level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("format.field_sep", "; ")
	v.SetDefault("format.frame_sep", " | ")
	v.SetDefault("dump.limit", 0)
}

func (lc logConfig) level() (slog.Level, error) {
	if strings.EqualFold(lc.Level, "trace") {
		return internal.LevelTrace, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(lc.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	return lvl, nil
}
