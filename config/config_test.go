package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "." || !cfg.EmitSS || cfg.SSSource != SSInternal ||
		cfg.HBondCutoff != -0.5 || cfg.Atomic || cfg.Strict || cfg.Path != "." {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLayering(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "featurizer.yaml")
	yaml := "output_dir: from-file\nlog_level: debug\nhbond_cutoff: -1.0\nstrict: true\n"
	if err := os.WriteFile(file, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	dotenv := filepath.Join(dir, ".env")
	if err := os.WriteFile(dotenv, []byte("FEATURIZER_LOG_FORMAT=json\nFEATURIZER_ATOMIC=true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FEATURIZER_CONFIG", file)
	t.Setenv("FEATURIZER_LOG_LEVEL", "warn")
	// Unset after the test, since the .env loader writes to the environment.
	t.Setenv("FEATURIZER_LOG_FORMAT", "")
	os.Unsetenv("FEATURIZER_LOG_FORMAT")
	t.Setenv("FEATURIZER_ATOMIC", "")
	os.Unsetenv("FEATURIZER_ATOMIC")

	cfg, err := Load(newFlags(t, "--output_dir", "from-flag", "--no_ss"), dotenv)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.OutputDir != "from-flag" {
		t.Errorf("expected the flag to win, got %s", cfg.OutputDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected the environment to override the file, got %s", cfg.LogLevel)
	}
	if cfg.HBondCutoff != -1.0 || !cfg.Strict {
		t.Errorf("expected file values, got %+v", cfg)
	}
	if cfg.LogFormat != "json" || !cfg.Atomic {
		t.Errorf("expected .env values, got %+v", cfg)
	}
	if cfg.EmitSS {
		t.Errorf("expected --no_ss to disable secondary structure")
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "none.yaml")), "")
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Errorf("expected a config error, got %v", err)
	}
}

func TestMissingDotEnv(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("expected a missing .env to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		args []string
		ok   bool
	}{
		{[]string{"--ss_source", "mkdssp"}, true},
		{[]string{"--ss_source", "stride"}, false},
		{[]string{"--log_format", "xml"}, false},
		{[]string{"--hbond_cutoff", "0.5"}, false},
		{[]string{"--output_dir", " "}, false},
	}
	for _, tt := range tests {
		_, err := Load(newFlags(t, tt.args...), "")
		if (err == nil) != tt.ok {
			t.Errorf("%v: expected ok=%v, got %v", tt.args, tt.ok, err)
		}
	}
}
