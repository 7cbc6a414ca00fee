// Package config layers defaults, a config file, .env, FEATURIZER_*
// environment variables and command line flags into one Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "FEATURIZER"

// Secondary structure sources.
const (
	SSInternal = "internal"
	SSMkdssp   = "mkdssp"
)

// Config holds the settings of one run.
type Config struct {
	OutputDir   string  `mapstructure:"output_dir"`
	LogLevel    string  `mapstructure:"log_level"`
	LogFormat   string  `mapstructure:"log_format"`
	EmitSS      bool    `mapstructure:"emit_ss"`
	SSSource    string  `mapstructure:"ss_source"`
	MkdsspPath  string  `mapstructure:"mkdssp_path"`
	HBondCutoff float64 `mapstructure:"hbond_cutoff"`
	Atomic      bool    `mapstructure:"atomic"`
	Strict      bool    `mapstructure:"strict"`
	Path        string  `mapstructure:"path"` // search directory for list files
}

// Error is returned for invalid configuration.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "config: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("emit_ss", true)
	v.SetDefault("ss_source", SSInternal)
	v.SetDefault("mkdssp_path", "mkdssp")
	v.SetDefault("hbond_cutoff", -0.5)
	v.SetDefault("atomic", false)
	v.SetDefault("strict", false)
	v.SetDefault("path", ".")
}

// RegisterFlags adds the configuration flags to a flag set.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("config", "", "config file (yaml, toml or json)")
	f.StringP("path", "p", ".", "search directory for list file entries")
	f.String("output_dir", ".", "directory for .dat files")
	f.String("log_level", "info", "debug, info, warn or error")
	f.String("log_format", "text", "text or json")
	f.Bool("no_ss", false, "omit the secondary structure column")
	f.String("ss_source", SSInternal, "secondary structure source: internal or mkdssp")
	f.Float64("hbond_cutoff", -0.5, "hydrogen bond energy cutoff in kcal/mol")
	f.Bool("atomic", false, "write through a temporary file renamed on success")
	f.Bool("strict", false, "exit with an error status when any chain fails")
}

var flagKeys = []string{"path", "output_dir", "log_level", "log_format", "ss_source", "hbond_cutoff", "atomic", "strict"}

// Load reads the configuration. dotenv names a .env file loaded without
// overriding the environment; a missing file is ignored. flags may be nil.
func Load(flags *pflag.FlagSet, dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{fmt.Errorf("load %s: %w", dotenv, err)}
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range flagKeys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, &Error{err}
				}
			}
		}
	}

	file := v.GetString("config")
	if flags != nil {
		if s, err := flags.GetString("config"); err == nil && s != "" {
			file = s
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, &Error{fmt.Errorf("read %s: %w", file, err)}
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{err}
	}
	if flags != nil {
		if noSS, err := flags.GetBool("no_ss"); err == nil && noSS {
			cfg.EmitSS = false
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &Error{err}
	}
	return cfg, nil
}

// Validate checks values that cannot be checked by type.
func (c *Config) Validate() error {
	switch c.SSSource {
	case SSInternal, SSMkdssp:
	default:
		return fmt.Errorf("ss_source must be %s or %s, got %q", SSInternal, SSMkdssp, c.SSSource)
	}
	if c.SSSource == SSMkdssp && c.MkdsspPath == "" {
		return errors.New("mkdssp_path not set")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.HBondCutoff >= 0 {
		return fmt.Errorf("hbond_cutoff must be negative, got %g", c.HBondCutoff)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output_dir not set")
	}
	return nil
}
