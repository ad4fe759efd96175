package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lucasnoah/defendercheck/internal/report"
)

// Environment variables read on top of the YAML file.
const (
	EnvConfig      = "DEFENDER_CONFIG"
	EnvLogLevel    = "DEFENDER_LOG_LEVEL"
	EnvDatabaseURL = "DEFENDER_DATABASE_URL"
	EnvNATSURL     = "DEFENDER_NATS_URL"
)

// DefaultSubjectPrefix is the NATS subject prefix results are published under.
const DefaultSubjectPrefix = "defender.results"

// Load reads and parses a defender configuration from the given YAML file path.
// Unknown keys are rejected. After parsing, defaults fill everything the file
// leaves out and the environment overrides connection settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	cfg.Path = path
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration with environment overrides applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg
}

// LoadDefault searches for a config in standard locations and loads the first
// one found. Search order: $DEFENDER_CONFIG, ./defender.yaml,
// ~/.defender/config.yaml. Without any file the built-in defaults are used.
func LoadDefault() (*Config, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return Load(p)
	}

	candidates := []string{"defender.yaml"}
	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".defender", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// builtinLevels are the limits the agent plugin has always shipped with.
var builtinLevels = map[string]AgeLevels{
	report.SignatureAntispyware.Key(): {Warn: Duration(3 * day), Crit: Duration(7 * day)},
	report.SignatureAntivirus.Key():   {Warn: Duration(2 * day), Crit: Duration(7 * day)},
	report.SignatureNIS.Key():         {Warn: Duration(5 * day), Crit: Duration(7 * day)},
	report.ScanFull.Key():             {Warn: Duration(7 * day), Crit: Duration(14 * day)},
	report.ScanQuick.Key():            {Warn: Duration(2 * day), Crit: Duration(7 * day)},
}

func fillLevels(l *AgeLevels, key string) *AgeLevels {
	def := builtinLevels[key]
	if l == nil {
		return &def
	}
	if l.Warn == 0 {
		l.Warn = def.Warn
	}
	if l.Crit == 0 {
		l.Crit = def.Crit
	}
	return l
}

// applyDefaults fills every setting the file leaves out.
func applyDefaults(cfg *Config) {
	if cfg.DateFormat == "" {
		cfg.DateFormat = report.DateEuropean.String()
	}
	if cfg.ClockSkew == nil {
		skew := Duration(day)
		cfg.ClockSkew = &skew
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Signatures == nil {
		cfg.Signatures = make(map[string]*AgeLevels)
	}
	for _, kind := range report.SignatureKinds {
		cfg.Signatures[kind.Key()] = fillLevels(cfg.Signatures[kind.Key()], kind.Key())
	}

	if cfg.Scans.NeverRunState == "" {
		cfg.Scans.NeverRunState = "crit"
	}
	cfg.Scans.Full = fillLevels(cfg.Scans.Full, report.ScanFull.Key())
	cfg.Scans.Quick = fillLevels(cfg.Scans.Quick, report.ScanQuick.Key())

	if cfg.Services == nil {
		cfg.Services = make(map[string]*ServiceConfig)
	}
	for _, svc := range report.Services {
		sc := cfg.Services[svc.Key()]
		if sc == nil {
			sc = &ServiceConfig{}
			cfg.Services[svc.Key()] = sc
		}
		if sc.Expected == "" {
			sc.Expected = "enabled"
		}
		if sc.MismatchState == "" {
			sc.MismatchState = "warn"
		}
		if sc.Monitor == nil {
			on := true
			sc.Monitor = &on
		}
	}

	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = DefaultSubjectPrefix
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv(EnvNATSURL); v != "" {
		cfg.NATS.URL = v
	}
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("rendering config: %w", err)
	}
	return string(data), nil
}
